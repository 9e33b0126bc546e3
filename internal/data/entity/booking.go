package entity

import (
	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaitlist  BookingStatus = "waitlist"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// Booking is a user's claim on a seat for an event. Position is only
// meaningful while Status is waitlist (1 = next in line).
type Booking struct {
	Base
	EventID  uuid.UUID     `db:"event_id"`
	UserID   uuid.UUID     `db:"user_id"`
	Status   BookingStatus `db:"status"`
	Position *int          `db:"position"`
}

// IsActive reports whether the booking still counts against the event,
// either holding a seat or a waitlist slot.
func (b *Booking) IsActive() bool {
	return b.Status != BookingStatusCancelled
}
