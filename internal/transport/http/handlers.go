package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"climabook/internal/cache"
	"climabook/internal/domain"
	"climabook/internal/media"
	"climabook/internal/service/bookings"
)

const maxMultipartMemory = 16 << 20

type handlers struct {
	svc   bookingService
	cache *cache.AvailabilityCache
	log   *slog.Logger
}

func (h *handlers) availability(w http.ResponseWriter, r *http.Request) {
	start, end, err := availabilityRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
		return
	}

	wholeMonth := isWholeMonth(start, end)
	if wholeMonth {
		if days, ok := h.cache.Get(r.Context(), start); ok {
			writeJSON(w, http.StatusOK, toAvailabilityResponse(days))
			return
		}
	}

	days, err := h.svc.Availability(r.Context(), start, end)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if wholeMonth {
		h.cache.Set(r.Context(), start, days)
	}
	writeJSON(w, http.StatusOK, toAvailabilityResponse(days))
}

// availabilityRange parses the start/end query parameters, defaulting to
// the current calendar month.
func availabilityRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	end := start.AddDate(0, 1, -1)

	if raw := r.URL.Query().Get("start"); raw != "" {
		t, err := time.ParseInLocation(domain.DateLayout, raw, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}
	if raw := r.URL.Query().Get("end"); raw != "" {
		t, err := time.ParseInLocation(domain.DateLayout, raw, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}
	return start, end, nil
}

func isWholeMonth(start, end time.Time) bool {
	if start.Day() != 1 {
		return false
	}
	lastDay := start.AddDate(0, 1, -1)
	return end.Year() == lastDay.Year() && end.Month() == lastDay.Month() && end.Day() == lastDay.Day()
}

func (h *handlers) offeredSlots(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "date")
	date, err := time.ParseInLocation(domain.DateLayout, raw, time.Now().Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD")
		return
	}

	slots, err := h.svc.OfferedSlots(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, slotsResponse{Date: domain.DateKey(date), Slots: slots})
}

func (h *handlers) submitBooking(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	var audioRef media.Reference

	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse multipart form")
			return
		}
		req = submitRequest{
			Name:        r.FormValue("name"),
			Email:       r.FormValue("email"),
			Phone:       r.FormValue("phone"),
			Address:     r.FormValue("address"),
			ServiceDate: r.FormValue("service_date"),
			SlotTime:    r.FormValue("slot_time"),
			ServiceType: r.FormValue("service_type"),
			Description: r.FormValue("description"),
		}

		// The attachment is staged before the booking row exists, so an
		// upload failure aborts the submission with nothing written.
		file, hdr, err := r.FormFile("audio")
		if err == nil {
			defer file.Close()
			ref, upErr := h.svc.StageAttachment(r.Context(), file, hdr.Header.Get("Content-Type"))
			if upErr != nil {
				writeServiceError(w, upErr)
				return
			}
			audioRef = ref
		} else if err != http.ErrMissingFile {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not read audio part")
			return
		}
	} else {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
	}

	var serviceDate time.Time
	if req.ServiceDate != "" {
		t, err := time.ParseInLocation(domain.DateLayout, req.ServiceDate, time.Now().Location())
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "service_date must be YYYY-MM-DD")
			return
		}
		serviceDate = t
	}

	booking, err := h.svc.Submit(r.Context(), bookings.SubmitInput{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		ServiceDate: serviceDate,
		SlotTime:    req.SlotTime,
		ServiceType: req.ServiceType,
		Description: req.Description,
		AudioRef:    audioRef,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	h.invalidateMonth(r, booking.ServiceDate)
	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *handlers) listBookings(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	result, err := h.svc.List(r.Context(), operatorFrom(r.Context()), page, pageSize)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(result))
}

func (h *handlers) markCompleted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkCompleted)
}

func (h *handlers) markCancelled(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.MarkCancelled)
}

func (h *handlers) transition(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, operator bool, id uuid.UUID) (domain.Booking, error)) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	booking, err := apply(r.Context(), operatorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.invalidateMonth(r, booking.ServiceDate)
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *handlers) removeBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	removed, err := h.svc.Remove(r.Context(), operatorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.invalidateMonth(r, removed.ServiceDate)
	writeJSON(w, http.StatusOK, toBookingResponse(removed))
}

func (h *handlers) audioPlayback(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	url, err := h.svc.AudioPlaybackURL(r.Context(), operatorFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, audioResponse{URL: url})
}

func bookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_booking_id", "id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

func (h *handlers) invalidateMonth(r *http.Request, serviceDate time.Time) {
	if err := h.cache.Invalidate(r.Context(), serviceDate); err != nil {
		h.log.Warn("availability cache invalidation failed",
			slog.Any("err", err),
			slog.String("service_date", domain.DateKey(serviceDate)),
		)
	}
}
