package services

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/campusworks/booking-backend/internal/database"
	"github.com/campusworks/booking-backend/internal/models"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ----- pure unit tests -----

func TestNormalizeSlot(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	in := time.Date(2026, 10, 28, 13, 0, 0, 123456789, loc)

	got := normalizeSlot(in)

	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
	if got.Hour() != 10 {
		t.Errorf("expected 10:00 UTC, got %v", got)
	}
	if got.Nanosecond() != 123000000 {
		t.Errorf("expected millisecond precision, got %dns", got.Nanosecond())
	}
}

func TestDiffSlots(t *testing.T) {
	t1 := time.Date(2026, 10, 28, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t1.Add(2 * time.Hour)

	tests := []struct {
		name      string
		published []time.Time
		booked    []time.Time
		want      []time.Time
	}{
		{"no bookings", []time.Time{t1, t2, t3}, nil, []time.Time{t1, t2, t3}},
		{"one booked", []time.Time{t1, t2, t3}, []time.Time{t2}, []time.Time{t1, t3}},
		{"all booked", []time.Time{t1, t2}, []time.Time{t1, t2}, []time.Time{}},
		{"booking outside published list", []time.Time{t1}, []time.Time{t3}, []time.Time{t1}},
		{"empty published", []time.Time{}, []time.Time{t1}, []time.Time{}},
		{"zone-shifted duplicate", []time.Time{t1}, []time.Time{t1.In(time.FixedZone("X", 3600))}, []time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := diffSlots(tt.published, tt.booked)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d slots, got %d", len(tt.want), len(got))
			}
			for i := range got {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("slot %d: expected %v, got %v", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestContainsSlot(t *testing.T) {
	t1 := time.Date(2026, 10, 28, 10, 0, 0, 0, time.UTC)
	slots := []time.Time{t1, t1.Add(time.Hour)}

	if !containsSlot(slots, normalizeSlot(t1.In(time.FixedZone("X", -5*3600)))) {
		t.Error("zone-shifted instant should match")
	}
	if containsSlot(slots, normalizeSlot(t1.Add(time.Minute))) {
		t.Error("different instant should not match")
	}
}

// ----- DB-gated integration tests -----

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("db: %v", err)
	}
	database.DB = db
	if err := database.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, role string) *models.User {
	t.Helper()
	hash, _ := bcrypt.GenerateFromPassword([]byte("testpass123"), bcrypt.MinCost)
	u := models.User{
		ID:       uuid.New(),
		Name:     "Test " + role,
		Email:    fmt.Sprintf("test-%s@test.com", uuid.New().String()[:8]),
		Password: string(hash),
		Role:     role,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return &u
}

func futureSlot(hoursFromNow int) time.Time {
	return normalizeSlot(time.Now().Add(time.Duration(hoursFromNow) * time.Hour))
}

func publish(t *testing.T, svc *BookingService, prof *models.User, slots ...time.Time) {
	t.Helper()
	if _, err := svc.PublishAvailability(prof.ID, slots); err != nil {
		t.Fatalf("publish availability: %v", err)
	}
}

func TestPublishAvailabilityReplaces(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)

	publish(t, svc, prof, futureSlot(10), futureSlot(11))
	publish(t, svc, prof, futureSlot(12))

	free, err := svc.FreeSlots(prof.ID)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != 1 {
		t.Fatalf("expected overwrite to 1 slot, got %d", len(free))
	}

	// empty list is a valid overwrite too
	publish(t, svc, prof)
	free, _ = svc.FreeSlots(prof.ID)
	if len(free) != 0 {
		t.Errorf("expected empty availability, got %d slots", len(free))
	}
}

func TestFreeSlotsRoundTrip(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)

	slots := []time.Time{futureSlot(20), futureSlot(21), futureSlot(22)}
	publish(t, svc, prof, slots...)

	free, err := svc.FreeSlots(prof.ID)
	if err != nil {
		t.Fatalf("free slots: %v", err)
	}
	if len(free) != len(slots) {
		t.Fatalf("expected %d free slots, got %d", len(slots), len(free))
	}
	for i := range slots {
		if !free[i].Equal(slots[i]) {
			t.Errorf("slot %d: expected %v, got %v", i, slots[i], free[i])
		}
	}
}

func TestFreeSlotsUnknownProfessor(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)

	if _, err := svc.FreeSlots(uuid.New()); !errors.Is(err, ErrProfessorNotFound) {
		t.Errorf("expected ErrProfessorNotFound, got %v", err)
	}

	// a student id is not a professor either
	student := createUser(t, db, models.RoleStudent)
	if _, err := svc.FreeSlots(student.ID); !errors.Is(err, ErrProfessorNotFound) {
		t.Errorf("expected ErrProfessorNotFound for student id, got %v", err)
	}
}

func TestBookUnofferedSlot(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	publish(t, svc, prof, futureSlot(30))

	_, err := svc.Book(student, prof.ID, futureSlot(31))
	if !errors.Is(err, ErrSlotNotOffered) {
		t.Errorf("expected ErrSlotNotOffered, got %v", err)
	}
}

func TestBookUnknownProfessor(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	student := createUser(t, db, models.RoleStudent)

	_, err := svc.Book(student, uuid.New(), futureSlot(32))
	if !errors.Is(err, ErrProfessorNotFound) {
		t.Errorf("expected ErrProfessorNotFound, got %v", err)
	}
}

func TestBookRemovesFreeSlot(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	t1, t2 := futureSlot(40), futureSlot(41)
	publish(t, svc, prof, t1, t2)

	appt, err := svc.Book(student, prof.ID, t1)
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if appt.Status != models.StatusBooked {
		t.Errorf("expected status booked, got %s", appt.Status)
	}

	free, _ := svc.FreeSlots(prof.ID)
	if len(free) != 1 || !free[0].Equal(t2) {
		t.Errorf("expected only %v free, got %v", t2, free)
	}
}

func TestDoubleBooking(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	s1 := createUser(t, db, models.RoleStudent)
	s2 := createUser(t, db, models.RoleStudent)

	slot := futureSlot(50)
	publish(t, svc, prof, slot)

	if _, err := svc.Book(s1, prof.ID, slot); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := svc.Book(s2, prof.ID, slot); !errors.Is(err, ErrSlotTaken) {
		t.Errorf("expected ErrSlotTaken, got %v", err)
	}
}

func TestConcurrentBooking(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)

	slot := futureSlot(60)
	publish(t, svc, prof, slot)

	const n = 10
	students := make([]*models.User, n)
	for i := range students {
		students[i] = createUser(t, db, models.RoleStudent)
	}

	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Book(students[i], prof.ID, slot)
			results <- err
		}(i)
	}
	wg.Wait()
	close(results)

	successes, conflicts := 0, 0
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, ErrSlotTaken):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}

	if successes != 1 {
		t.Errorf("expected exactly 1 success, got %d", successes)
	}
	if conflicts != n-1 {
		t.Errorf("expected %d conflicts, got %d", n-1, conflicts)
	}
}

func TestCancelNotFound(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)

	if _, err := svc.Cancel(prof.ID, uuid.New()); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("expected ErrAppointmentNotFound, got %v", err)
	}
}

func TestCancelOwnership(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	other := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	slot := futureSlot(70)
	publish(t, svc, prof, slot)
	appt, err := svc.Book(student, prof.ID, slot)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Cancel(other.ID, appt.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("another professor: expected ErrNotOwner, got %v", err)
	}
	if _, err := svc.Cancel(student.ID, appt.ID); !errors.Is(err, ErrNotOwner) {
		t.Errorf("the student on it: expected ErrNotOwner, got %v", err)
	}

	cancelled, err := svc.Cancel(prof.ID, appt.ID)
	if err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if cancelled.Status != models.StatusCancelled {
		t.Errorf("expected cancelled, got %s", cancelled.Status)
	}
}

func TestCancelFreesSlotAndIsIdempotent(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	slot := futureSlot(80)
	publish(t, svc, prof, slot)
	appt, err := svc.Book(student, prof.ID, slot)
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := svc.Cancel(prof.ID, appt.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// the slot is free again
	free, _ := svc.FreeSlots(prof.ID)
	if len(free) != 1 || !free[0].Equal(slot) {
		t.Errorf("expected slot freed after cancel, got %v", free)
	}

	// and bookable again
	if _, err := svc.Book(student, prof.ID, slot); err != nil {
		t.Errorf("rebooking a freed slot should succeed: %v", err)
	}

	// re-cancelling an already-cancelled appointment succeeds silently
	again, err := svc.Cancel(prof.ID, appt.ID)
	if err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if again.Status != models.StatusCancelled {
		t.Errorf("expected cancelled, got %s", again.Status)
	}
}

func TestListMineResolvesParties(t *testing.T) {
	db := setupDB(t)
	svc := NewBookingService(db)
	prof := createUser(t, db, models.RoleProfessor)
	student := createUser(t, db, models.RoleStudent)

	slot := futureSlot(90)
	publish(t, svc, prof, slot)
	if _, err := svc.Book(student, prof.ID, slot); err != nil {
		t.Fatalf("book: %v", err)
	}

	for _, caller := range []*models.User{prof, student} {
		appts, err := svc.ListMine(caller)
		if err != nil {
			t.Fatalf("list for %s: %v", caller.Role, err)
		}
		if len(appts) != 1 {
			t.Fatalf("%s: expected 1 appointment, got %d", caller.Role, len(appts))
		}
		a := appts[0]
		if a.Professor.Name != prof.Name || a.Professor.Email != prof.Email {
			t.Errorf("%s: professor not resolved: %+v", caller.Role, a.Professor)
		}
		if a.Student.Name != student.Name || a.Student.Email != student.Email {
			t.Errorf("%s: student not resolved: %+v", caller.Role, a.Student)
		}
	}
}
