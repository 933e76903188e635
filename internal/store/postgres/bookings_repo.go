package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"climabook/internal/domain"
	"climabook/internal/store"
)

// slotUniqueConstraint is the partial unique index on
// (service_date, slot_time) among non-cancelled rows. It is the last
// line of defense against two requesters racing for the same slot.
const slotUniqueConstraint = "bookings_slot_active_key"

type BookingRepo struct {
	db *bun.DB
}

func NewBookingRepo(db *bun.DB) *BookingRepo {
	return &BookingRepo{db: db}
}

func (r *BookingRepo) Insert(ctx context.Context, b domain.Booking) (domain.Booking, error) {
	var out domain.Booking
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockServiceDate(ctx, tx, b.ServiceDate); err != nil {
			return err
		}

		m := b
		if _, err := tx.NewInsert().Model(&m).Exec(ctx); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == slotUniqueConstraint {
				return store.ErrConflict
			}
			return err
		}
		out = m
		return nil
	})
	if err != nil {
		return domain.Booking{}, translate(err)
	}
	return out, nil
}

// lockServiceDate serializes writers touching the same calendar day so
// that the unique-index check and the insert see a stable snapshot.
func lockServiceDate(ctx context.Context, tx bun.Tx, serviceDate time.Time) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", domain.DateKey(serviceDate)).Exec(ctx)
	return err
}

func (r *BookingRepo) Get(ctx context.Context, id uuid.UUID) (domain.Booking, error) {
	var m domain.Booking
	err := r.db.NewSelect().
		Model(&m).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, translate(err)
	}
	return m, nil
}

func (r *BookingRepo) ListRange(ctx context.Context, rangeStart, rangeEnd time.Time) ([]domain.Booking, error) {
	var rows []domain.Booking
	err := r.db.NewSelect().
		Model(&rows).
		Where("service_date >= ?", domain.DateOnly(rangeStart)).
		Where("service_date <= ?", domain.DateOnly(rangeEnd)).
		Scan(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return rows, nil
}

func (r *BookingRepo) TransitionStatus(ctx context.Context, id uuid.UUID, from, to domain.Status) (domain.Booking, error) {
	var m domain.Booking
	res, err := r.db.NewUpdate().
		Model(&m).
		Set("status = ?", to).
		Set("updated_at = ?", time.Now().UTC()).
		Where("id = ?", id).
		Where("status = ?", from).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return domain.Booking{}, translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.Booking{}, err
	}
	if affected == 0 {
		exists, err := r.db.NewSelect().
			Model((*domain.Booking)(nil)).
			Where("id = ?", id).
			Exists(ctx)
		if err != nil {
			return domain.Booking{}, translate(err)
		}
		if !exists {
			return domain.Booking{}, store.ErrNotFound
		}
		return domain.Booking{}, store.ErrStaleStatus
	}
	return m, nil
}

func (r *BookingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.NewDelete().
		Model((*domain.Booking)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return translate(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *BookingRepo) List(ctx context.Context, page, pageSize int) ([]domain.Booking, int, error) {
	var rows []domain.Booking
	total, err := r.db.NewSelect().
		Model(&rows).
		OrderExpr("service_date ASC, slot_time ASC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, translate(err)
	}
	return rows, total, nil
}

// translate wraps infrastructure-level postgres failures (connection,
// resource, operator-intervention classes) in store.ErrUnavailable so
// callers can distinguish "retry later" from domain outcomes.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		switch pgErr.Code[:2] {
		case "08", "53", "57":
			return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
		}
	}
	return err
}
