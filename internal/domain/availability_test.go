package domain

import (
	"reflect"
	"testing"
	"time"
)

var testCatalog = []string{"09:00", "11:00", "15:00", "17:00"}

func booking(date time.Time, slot string, status Status) Booking {
	return Booking{
		Name:        "n",
		Phone:       "p",
		Address:     "a",
		ServiceDate: date,
		SlotTime:    slot,
		ServiceType: "maintenance",
		Description: "d",
		Status:      status,
	}
}

func TestOccupancy_DateFullAtCap(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	occ := NewOccupancy([]Booking{
		booking(date, "09:00", StatusPending),
		booking(date, "11:00", StatusPending),
		booking(date, "15:00", StatusCompleted),
	}, testCatalog, 3)

	if got := occ.BookingsForDate(date); got != 3 {
		t.Fatalf("BookingsForDate = %d, want 3", got)
	}
	if !occ.IsDateFullyBooked(date) {
		t.Fatalf("expected date to be fully booked at cap")
	}
	today := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	if occ.IsDateSelectable(date, today) {
		t.Fatalf("fully booked date must not be selectable")
	}
	if got := occ.OfferedSlots(date); !reflect.DeepEqual(got, []string{"17:00"}) {
		t.Fatalf("OfferedSlots = %v, want [17:00]", got)
	}
}

func TestOccupancy_CancelledReleasesSlotAndCapacity(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	occ := NewOccupancy([]Booking{
		booking(date, "09:00", StatusPending),
		booking(date, "11:00", StatusCancelled),
		booking(date, "15:00", StatusPending),
	}, testCatalog, 3)

	if got := occ.BookingsForDate(date); got != 2 {
		t.Fatalf("BookingsForDate = %d, want 2", got)
	}
	if occ.IsDateFullyBooked(date) {
		t.Fatalf("date with a cancelled booking below cap must not be full")
	}
	if !occ.IsSlotAvailable(date, "11:00") {
		t.Fatalf("cancelled slot must be available again")
	}
	if got := occ.OfferedSlots(date); !reflect.DeepEqual(got, []string{"11:00", "17:00"}) {
		t.Fatalf("OfferedSlots = %v, want [11:00 17:00]", got)
	}
}

func TestOccupancy_SlotTakenByAnyNonCancelledStatus(t *testing.T) {
	date := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	occ := NewOccupancy([]Booking{
		booking(date, "09:00", StatusCompleted),
	}, testCatalog, 3)

	if occ.IsSlotAvailable(date, "09:00") {
		t.Fatalf("completed booking must still hold its slot")
	}
	if !occ.IsSlotAvailable(date, "11:00") {
		t.Fatalf("untouched slot must be available")
	}
}

func TestOccupancy_PastDateNeverSelectable(t *testing.T) {
	occ := NewOccupancy(nil, testCatalog, 3)

	today := time.Date(2026, 9, 10, 14, 30, 0, 0, time.UTC)
	yesterday := time.Date(2026, 9, 9, 0, 0, 0, 0, time.UTC)
	if occ.IsDateSelectable(yesterday, today) {
		t.Fatalf("past date must not be selectable even when empty")
	}
	if !occ.IsDateSelectable(today, today) {
		t.Fatalf("the current day stays selectable while it has room")
	}
}

func TestOccupancy_DaysRange(t *testing.T) {
	d1 := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)
	d3 := time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC)

	occ := NewOccupancy([]Booking{
		booking(d1, "09:00", StatusPending),
		booking(d1, "11:00", StatusPending),
		booking(d1, "15:00", StatusPending),
		booking(d2, "09:00", StatusPending),
	}, testCatalog, 3)

	today := time.Date(2026, 9, 11, 8, 0, 0, 0, time.UTC)
	days := occ.Days(d1, d3, today)
	if len(days) != 3 {
		t.Fatalf("len(days) = %d, want 3", len(days))
	}

	if days[0].Bookings != 3 || !days[0].FullyBooked || days[0].Selectable {
		t.Fatalf("day 1 = %+v, want full and unselectable (past)", days[0])
	}
	if days[1].Bookings != 1 || days[1].FullyBooked || !days[1].Selectable {
		t.Fatalf("day 2 = %+v, want one booking and selectable", days[1])
	}
	if days[2].Bookings != 0 || days[2].FullyBooked || !days[2].Selectable {
		t.Fatalf("day 3 = %+v, want empty and selectable", days[2])
	}
}

func TestStatus_Transitions(t *testing.T) {
	if !StatusPending.Valid() || !StatusCompleted.Valid() || !StatusCancelled.Valid() {
		t.Fatalf("lifecycle statuses must be valid")
	}
	if Status("archived").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
	if StatusPending.Terminal() {
		t.Fatalf("pending is not terminal")
	}
	if !StatusCompleted.Terminal() || !StatusCancelled.Terminal() {
		t.Fatalf("completed and cancelled are terminal")
	}
	if !StatusCompleted.Occupies() {
		t.Fatalf("completed bookings keep their slot")
	}
	if StatusCancelled.Occupies() {
		t.Fatalf("cancelled bookings release their slot")
	}
}

func TestDateOnly_KeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("LoadLocation error: %v", err)
	}
	in := time.Date(2026, 9, 10, 23, 45, 0, 0, loc)
	out := DateOnly(in)
	if out.Hour() != 0 || out.Minute() != 0 {
		t.Fatalf("DateOnly = %v, want midnight", out)
	}
	if out.Location() != loc {
		t.Fatalf("location = %v, want %v", out.Location(), loc)
	}
	if DateKey(out) != "2026-09-10" {
		t.Fatalf("DateKey = %q, want 2026-09-10", DateKey(out))
	}
}
