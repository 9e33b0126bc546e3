package response

import (
	"time"

	"gastrotour/internal/data/entity"
)

type EventSummary struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Date    time.Time `json:"date"`
	Address string    `json:"address"`
}

type BookingResponse struct {
	ID        string               `json:"id"`
	EventID   string               `json:"event_id"`
	UserID    string               `json:"user_id"`
	Status    entity.BookingStatus `json:"status"`
	Position  *int                 `json:"position,omitempty"`
	Event     *EventSummary        `json:"event,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

func BookingToResponse(booking *entity.Booking, event *entity.Event) BookingResponse {
	resp := BookingResponse{
		ID:        booking.ID.String(),
		EventID:   booking.EventID.String(),
		UserID:    booking.UserID.String(),
		Status:    booking.Status,
		Position:  booking.Position,
		CreatedAt: booking.CreatedAt,
	}

	if event != nil {
		resp.Event = &EventSummary{
			ID:      event.ID.String(),
			Name:    event.Name,
			Date:    event.Date,
			Address: event.Address,
		}
	}

	return resp
}
