package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"climabook/internal/media"
	"climabook/internal/service/bookings"
	"climabook/internal/store"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}

// writeServiceError maps the core's typed failures onto the JSON error
// envelope. The raw store conflict never reaches here: the workflow has
// already translated it into ErrSlotUnavailable.
func writeServiceError(w http.ResponseWriter, err error) {
	var vErr *bookings.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, "invalid_request", vErr.Error())
	case errors.Is(err, bookings.ErrPastDate):
		writeError(w, http.StatusUnprocessableEntity, "past_date", "service date is before today")
	case errors.Is(err, bookings.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot_unavailable", "that time slot was just taken, pick another")
	case errors.Is(err, bookings.ErrDateFullyBooked):
		writeError(w, http.StatusConflict, "date_fully_booked", "that date has no capacity left")
	case errors.Is(err, bookings.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", "booking is already completed or cancelled")
	case errors.Is(err, bookings.ErrOperatorRequired):
		writeError(w, http.StatusForbidden, "operator_required", "operator credentials required")
	case errors.Is(err, bookings.ErrNoAudio):
		writeError(w, http.StatusNotFound, "no_audio", "booking has no audio attachment")
	case errors.Is(err, media.ErrUpload):
		writeError(w, http.StatusBadGateway, "attachment_upload_failed", "audio upload failed, retry without the attachment")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "booking not found")
	case errors.Is(err, store.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store_unavailable", "storage is temporarily unavailable, retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}
