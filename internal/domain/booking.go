package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is the closed set of booking lifecycle states. Completed and
// Cancelled are terminal: the only operation left on them is deletion.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Occupies reports whether a booking in this status holds its slot.
// Cancelled bookings release the slot for future requesters.
func (s Status) Occupies() bool {
	return s != StatusCancelled
}

type Booking struct {
	bun.BaseModel `bun:"table:bookings"`

	ID          uuid.UUID `bun:"id,pk,type:uuid"`
	Name        string    `bun:"name,notnull"`
	Email       string    `bun:"email"`
	Phone       string    `bun:"phone,notnull"`
	Address     string    `bun:"address,notnull"`
	ServiceDate time.Time `bun:"service_date,notnull,type:date"`
	SlotTime    string    `bun:"slot_time,notnull"`
	ServiceType string    `bun:"service_type,notnull"`
	Description string    `bun:"description,notnull"`
	AudioRef    string    `bun:"audio_ref"`
	Status      Status    `bun:"status,notnull"`
	CreatedAt   time.Time `bun:"created_at,notnull"`
	UpdatedAt   time.Time `bun:"updated_at,notnull"`
}

func (b *Booking) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if b.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			b.ID = id
		}
		if b.CreatedAt.IsZero() {
			b.CreatedAt = now
		}
		if b.UpdatedAt.IsZero() {
			b.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		b.UpdatedAt = now
	}
	return nil
}
