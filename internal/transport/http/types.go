package http

import (
	"time"

	"github.com/google/uuid"

	"climabook/internal/domain"
	"climabook/internal/service/bookings"
)

type submitRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Address     string `json:"address"`
	ServiceDate string `json:"service_date"`
	SlotTime    string `json:"slot_time"`
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
}

type bookingResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone"`
	Address     string    `json:"address"`
	ServiceDate string    `json:"service_date"`
	SlotTime    string    `json:"slot_time"`
	ServiceType string    `json:"service_type"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	HasAudio    bool      `json:"has_audio"`
	CreatedAt   time.Time `json:"created_at"`
}

func toBookingResponse(b domain.Booking) bookingResponse {
	return bookingResponse{
		ID:          b.ID,
		Name:        b.Name,
		Email:       b.Email,
		Phone:       b.Phone,
		Address:     b.Address,
		ServiceDate: domain.DateKey(b.ServiceDate),
		SlotTime:    b.SlotTime,
		ServiceType: b.ServiceType,
		Description: b.Description,
		Status:      string(b.Status),
		HasAudio:    b.AudioRef != "",
		CreatedAt:   b.CreatedAt,
	}
}

type listResponse struct {
	Bookings []bookingResponse `json:"bookings"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int               `json:"total"`
}

func toListResponse(p bookings.Page) listResponse {
	out := make([]bookingResponse, 0, len(p.Bookings))
	for _, b := range p.Bookings {
		out = append(out, toBookingResponse(b))
	}
	return listResponse{Bookings: out, Page: p.Page, PageSize: p.PageSize, Total: p.Total}
}

type availabilityResponse struct {
	Days []dayResponse `json:"days"`
}

type dayResponse struct {
	Date        string `json:"date"`
	Bookings    int    `json:"bookings"`
	FullyBooked bool   `json:"fully_booked"`
	Selectable  bool   `json:"selectable"`
}

func toAvailabilityResponse(days []domain.DayAvailability) availabilityResponse {
	out := make([]dayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, dayResponse{
			Date:        domain.DateKey(d.Date),
			Bookings:    d.Bookings,
			FullyBooked: d.FullyBooked,
			Selectable:  d.Selectable,
		})
	}
	return availabilityResponse{Days: out}
}

type slotsResponse struct {
	Date  string   `json:"date"`
	Slots []string `json:"slots"`
}

type audioResponse struct {
	URL string `json:"url"`
}
