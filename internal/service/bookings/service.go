package bookings

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"climabook/internal/domain"
	"climabook/internal/media"
	"climabook/internal/store"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type Config struct {
	// SlotCatalog and MaxBookingsPerDate are independent knobs: the cap
	// may be lower than the catalog size.
	SlotCatalog        []string
	MaxBookingsPerDate int

	// SignedURLTTL bounds the lifetime of audio playback links.
	SignedURLTTL time.Duration

	// Now supplies "today" for past-date checks; defaults to time.Now.
	Now func() time.Time
}

type Service struct {
	repo       store.BookingRepository
	media      media.Store
	catalog    []string
	maxPerDate int
	urlTTL     time.Duration
	now        func() time.Time
}

// NewService wires the booking core. media may be nil when no blob store
// is configured; submissions then cannot carry attachments.
func NewService(repo store.BookingRepository, mediaStore media.Store, cfg Config) *Service {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.SignedURLTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Service{
		repo:       repo,
		media:      mediaStore,
		catalog:    cfg.SlotCatalog,
		maxPerDate: cfg.MaxBookingsPerDate,
		urlTTL:     ttl,
		now:        now,
	}
}

type SubmitInput struct {
	Name        string
	Email       string
	Phone       string
	Address     string
	ServiceDate time.Time
	SlotTime    string
	ServiceType string
	Description string

	// AudioRef must already be durably uploaded (see StageAttachment).
	// Submit never accepts raw bytes.
	AudioRef media.Reference
}

// Submit validates a candidate against a fresh occupancy read and
// persists it as Pending. Exactly one row is written on success and none
// on any rejection.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (domain.Booking, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Booking{}, validationError("name is required")
	}
	phone := strings.TrimSpace(in.Phone)
	if phone == "" {
		return domain.Booking{}, validationError("phone is required")
	}
	address := strings.TrimSpace(in.Address)
	if address == "" {
		return domain.Booking{}, validationError("address is required")
	}
	serviceType := strings.TrimSpace(in.ServiceType)
	if serviceType == "" {
		return domain.Booking{}, validationError("service_type is required")
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return domain.Booking{}, validationError("description is required")
	}
	if in.ServiceDate.IsZero() {
		return domain.Booking{}, validationError("service_date is required")
	}
	slot := strings.TrimSpace(in.SlotTime)
	if slot == "" {
		return domain.Booking{}, validationError("slot_time is required")
	}
	if !slices.Contains(s.catalog, slot) {
		return domain.Booking{}, validationError("slot_time is not in the slot catalog")
	}

	serviceDate := domain.DateOnly(in.ServiceDate)
	today := domain.DateOnly(s.now())
	if serviceDate.Before(today) {
		return domain.Booking{}, ErrPastDate
	}

	// Fresh read, never a cached snapshot: cancellations since the
	// caller last looked must be visible here.
	occ, err := s.occupancyFor(ctx, serviceDate)
	if err != nil {
		return domain.Booking{}, err
	}
	if !occ.IsSlotAvailable(serviceDate, slot) {
		return domain.Booking{}, ErrSlotUnavailable
	}
	if occ.IsDateFullyBooked(serviceDate) {
		return domain.Booking{}, ErrDateFullyBooked
	}

	stored, err := s.repo.Insert(ctx, domain.Booking{
		Name:        name,
		Email:       strings.TrimSpace(in.Email),
		Phone:       phone,
		Address:     address,
		ServiceDate: serviceDate,
		SlotTime:    slot,
		ServiceType: serviceType,
		Description: description,
		AudioRef:    string(in.AudioRef),
		Status:      domain.StatusPending,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost the race between the pre-check and the insert; the
			// unique index is the source of truth.
			return domain.Booking{}, ErrSlotUnavailable
		}
		return domain.Booking{}, err
	}
	return stored, nil
}

// StageAttachment uploads an audio recording ahead of Submit and returns
// the reference the submission will carry. A failed upload never leaves
// a booking row behind because no row exists yet at this point.
func (s *Service) StageAttachment(ctx context.Context, r io.Reader, contentType string) (media.Reference, error) {
	if s.media == nil {
		return "", media.ErrUpload
	}
	return s.media.Upload(ctx, r, contentType)
}

// Availability reports per-date occupancy and selectability over an
// inclusive date range.
func (s *Service) Availability(ctx context.Context, rangeStart, rangeEnd time.Time) ([]domain.DayAvailability, error) {
	start := domain.DateOnly(rangeStart)
	end := domain.DateOnly(rangeEnd)
	if end.Before(start) {
		return nil, validationError("range end must not be before range start")
	}

	rows, err := s.repo.ListRange(ctx, start, end)
	if err != nil {
		return nil, err
	}
	occ := domain.NewOccupancy(rows, s.catalog, s.maxPerDate)
	return occ.Days(start, end, s.now()), nil
}

// OfferedSlots returns the free subset of the slot catalog for date, in
// catalog order. Past dates offer nothing.
func (s *Service) OfferedSlots(ctx context.Context, date time.Time) ([]string, error) {
	day := domain.DateOnly(date)
	if day.Before(domain.DateOnly(s.now())) {
		return []string{}, nil
	}
	occ, err := s.occupancyFor(ctx, day)
	if err != nil {
		return nil, err
	}
	return occ.OfferedSlots(day), nil
}

func (s *Service) occupancyFor(ctx context.Context, day time.Time) (*domain.Occupancy, error) {
	rows, err := s.repo.ListRange(ctx, day, day)
	if err != nil {
		return nil, err
	}
	return domain.NewOccupancy(rows, s.catalog, s.maxPerDate), nil
}

// MarkCompleted moves a Pending booking to Completed. The slot stays
// historically occupied. The returned record is the store's confirmed
// row; callers reconcile against it rather than assuming their write.
func (s *Service) MarkCompleted(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error) {
	return s.transition(ctx, operator, id, domain.StatusCompleted)
}

// MarkCancelled moves a Pending booking to Cancelled, releasing its slot
// for future availability queries.
func (s *Service) MarkCancelled(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error) {
	return s.transition(ctx, operator, id, domain.StatusCancelled)
}

func (s *Service) transition(ctx context.Context, operator bool, id uuid.UUID, to domain.Status) (domain.Booking, error) {
	if !operator {
		return domain.Booking{}, ErrOperatorRequired
	}
	if id == uuid.Nil {
		return domain.Booking{}, validationError("booking id is required")
	}
	updated, err := s.repo.TransitionStatus(ctx, id, domain.StatusPending, to)
	if err != nil {
		if errors.Is(err, store.ErrStaleStatus) {
			return domain.Booking{}, ErrInvalidTransition
		}
		return domain.Booking{}, err
	}
	return updated, nil
}

// Remove deletes a booking outright regardless of status and returns
// the removed record. Irreversible; the boundary layer is responsible
// for operator confirmation.
func (s *Service) Remove(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error) {
	if !operator {
		return domain.Booking{}, ErrOperatorRequired
	}
	if id == uuid.Nil {
		return domain.Booking{}, validationError("booking id is required")
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return domain.Booking{}, err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

type Page struct {
	Bookings []domain.Booking
	Page     int
	PageSize int
	Total    int
}

// List pages all bookings ordered by service date then slot time.
func (s *Service) List(ctx context.Context, operator bool, page, pageSize int) (Page, error) {
	if !operator {
		return Page{}, ErrOperatorRequired
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	rows, total, err := s.repo.List(ctx, page, pageSize)
	if err != nil {
		return Page{}, err
	}
	return Page{Bookings: rows, Page: page, PageSize: pageSize, Total: total}, nil
}

// AudioPlaybackURL resolves a short-lived playback link for a booking's
// staged recording.
func (s *Service) AudioPlaybackURL(ctx context.Context, operator bool, id uuid.UUID) (string, error) {
	if !operator {
		return "", ErrOperatorRequired
	}
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if b.AudioRef == "" {
		return "", ErrNoAudio
	}
	if s.media == nil {
		return "", ErrNoAudio
	}
	return s.media.PlaybackURL(ctx, media.Reference(b.AudioRef), s.urlTTL)
}
