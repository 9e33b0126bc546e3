package response

import (
	"time"

	"gastrotour/internal/data/entity"
)

type AttendeeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type EventResponse struct {
	ID             string             `json:"id"`
	Name           string             `json:"name"`
	Description    *string            `json:"description,omitempty"`
	Date           time.Time          `json:"date"`
	Address        string             `json:"address"`
	MenuURL        *string            `json:"menu_url,omitempty"`
	CuisineType    *string            `json:"cuisine_type,omitempty"`
	Status         entity.EventStatus `json:"status"`
	MaxSeats       int                `json:"max_seats"`
	SeatsTaken     int                `json:"seats_taken"`
	SeatsAvailable int                `json:"seats_available"`
	WaitlistCount  int                `json:"waitlist_count"`
	Attendees      []AttendeeResponse `json:"attendees,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
}

type AvailabilityResponse struct {
	EventID        string `json:"event_id"`
	MaxSeats       int    `json:"max_seats"`
	ConfirmedCount int    `json:"confirmed_count"`
	SeatsAvailable int    `json:"seats_available"`
	WaitlistCount  int    `json:"waitlist_count"`
}

// EventToResponse derives seat availability from the confirmed count.
// Availability is never stored, so it cannot drift from booking rows.
func EventToResponse(event *entity.Event, confirmed, waitlisted int, attendees []AttendeeResponse) EventResponse {
	available := event.MaxSeats - confirmed
	if available < 0 {
		available = 0
	}

	return EventResponse{
		ID:             event.ID.String(),
		Name:           event.Name,
		Description:    event.Description,
		Date:           event.Date,
		Address:        event.Address,
		MenuURL:        event.MenuURL,
		CuisineType:    event.CuisineType,
		Status:         event.Status(),
		MaxSeats:       event.MaxSeats,
		SeatsTaken:     confirmed,
		SeatsAvailable: available,
		WaitlistCount:  waitlisted,
		Attendees:      attendees,
		CreatedAt:      event.CreatedAt,
	}
}
