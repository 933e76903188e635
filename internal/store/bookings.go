package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"climabook/internal/domain"
)

// BookingRepository is the persistence contract the booking core depends
// on. ListRange is inclusive on both ends and returns cancelled rows too:
// the availability engine filters by status itself, and a slot freed by a
// cancellation must be observable on the very next read.
type BookingRepository interface {
	Insert(ctx context.Context, b domain.Booking) (domain.Booking, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Booking, error)
	ListRange(ctx context.Context, rangeStart, rangeEnd time.Time) ([]domain.Booking, error)

	// TransitionStatus updates status only when the current value equals
	// from. It returns ErrNotFound when id is absent and ErrStaleStatus
	// when the row exists but its status already moved on.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Booking, error)

	Delete(ctx context.Context, id uuid.UUID) error

	// List pages all bookings ordered by service_date then slot_time and
	// returns the total row count alongside the page.
	List(ctx context.Context, page, pageSize int) ([]domain.Booking, int, error)
}
