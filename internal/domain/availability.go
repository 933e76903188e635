package domain

import "time"

// DateLayout is the canonical date-only form used for slot keys.
const DateLayout = "2006-01-02"

func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOnly drops the time-of-day component, keeping the location so that
// "today" comparisons happen in the caller's calendar.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// Occupancy is a pure view over a snapshot of bookings. It answers which
// dates and slots are still offerable; cancelled bookings never count.
// The snapshot is not refreshed: callers re-query the store and rebuild
// before any decision that must be current.
type Occupancy struct {
	catalog    []string
	maxPerDate int
	perDate    map[string]int
	perSlot    map[string]map[string]bool
}

func NewOccupancy(bookings []Booking, catalog []string, maxPerDate int) *Occupancy {
	o := &Occupancy{
		catalog:    catalog,
		maxPerDate: maxPerDate,
		perDate:    make(map[string]int),
		perSlot:    make(map[string]map[string]bool),
	}
	for _, b := range bookings {
		if !b.Status.Occupies() {
			continue
		}
		day := DateKey(b.ServiceDate)
		o.perDate[day]++
		slots := o.perSlot[day]
		if slots == nil {
			slots = make(map[string]bool)
			o.perSlot[day] = slots
		}
		slots[b.SlotTime] = true
	}
	return o
}

func (o *Occupancy) BookingsForDate(date time.Time) int {
	return o.perDate[DateKey(date)]
}

func (o *Occupancy) IsDateFullyBooked(date time.Time) bool {
	return o.BookingsForDate(date) >= o.maxPerDate
}

func (o *Occupancy) IsSlotAvailable(date time.Time, slot string) bool {
	return !o.perSlot[DateKey(date)][slot]
}

// IsDateSelectable reports whether a new booking may target date. Past
// dates are never selectable regardless of occupancy; the current day
// stays selectable until it fills (no same-day cutoff).
func (o *Occupancy) IsDateSelectable(date, today time.Time) bool {
	if DateOnly(date).Before(DateOnly(today)) {
		return false
	}
	return !o.IsDateFullyBooked(date)
}

// OfferedSlots returns the slot catalog filtered down to free slots for
// date, preserving catalog order.
func (o *Occupancy) OfferedSlots(date time.Time) []string {
	out := make([]string, 0, len(o.catalog))
	for _, slot := range o.catalog {
		if o.IsSlotAvailable(date, slot) {
			out = append(out, slot)
		}
	}
	return out
}

type DayAvailability struct {
	Date        time.Time `json:"date"`
	Bookings    int       `json:"bookings"`
	FullyBooked bool      `json:"fully_booked"`
	Selectable  bool      `json:"selectable"`
}

// Days walks the inclusive date range and reports per-date occupancy
// together with the selectable flag.
func (o *Occupancy) Days(rangeStart, rangeEnd, today time.Time) []DayAvailability {
	start := DateOnly(rangeStart)
	end := DateOnly(rangeEnd)

	var out []DayAvailability
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		out = append(out, DayAvailability{
			Date:        d,
			Bookings:    o.BookingsForDate(d),
			FullyBooked: o.IsDateFullyBooked(d),
			Selectable:  o.IsDateSelectable(d, today),
		})
	}
	return out
}
