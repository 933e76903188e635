package http

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"climabook/internal/cache"
	"climabook/internal/domain"
	"climabook/internal/media"
	"climabook/internal/service/bookings"
)

type bookingService interface {
	Submit(ctx context.Context, in bookings.SubmitInput) (domain.Booking, error)
	StageAttachment(ctx context.Context, r io.Reader, contentType string) (media.Reference, error)
	Availability(ctx context.Context, rangeStart, rangeEnd time.Time) ([]domain.DayAvailability, error)
	OfferedSlots(ctx context.Context, date time.Time) ([]string, error)
	MarkCompleted(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error)
	MarkCancelled(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error)
	Remove(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error)
	List(ctx context.Context, operator bool, page, pageSize int) (bookings.Page, error)
	AudioPlaybackURL(ctx context.Context, operator bool, id uuid.UUID) (string, error)
}

type RouterConfig struct {
	Service       bookingService
	Cache         *cache.AvailabilityCache
	DB            *bun.DB
	Log           *slog.Logger
	OperatorToken string
	Version       string
}

func NewRouter(cfg RouterConfig) http.Handler {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}
	log = log.With(slog.String("component", "http"))

	h := &handlers{
		svc:   cfg.Service,
		cache: cfg.Cache,
		log:   log,
	}

	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))

	health := newHealthHandler(cfg.DB, cfg.Version)
	r.Get("/health/live", health.liveness)
	r.Get("/health/ready", health.readiness)

	r.Get("/availability", h.availability)
	r.Get("/availability/{date}/slots", h.offeredSlots)
	r.Post("/bookings", h.submitBooking)

	r.Group(func(r chi.Router) {
		r.Use(requireOperator(cfg.OperatorToken))
		r.Get("/bookings", h.listBookings)
		r.Post("/bookings/{id}/complete", h.markCompleted)
		r.Post("/bookings/{id}/cancel", h.markCancelled)
		r.Delete("/bookings/{id}", h.removeBooking)
		r.Get("/bookings/{id}/audio", h.audioPlayback)
	})

	return r
}
