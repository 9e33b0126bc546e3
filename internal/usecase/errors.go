package usecase

import "errors"

// Domain errors. Handlers branch on these with errors.Is; anything else
// is treated as an unexpected failure and surfaced as a 500.
var (
	ErrEventNotFound   = errors.New("event not found")
	ErrBookingNotFound = errors.New("booking not found")

	// InvalidState: the operation is semantically disallowed right now.
	ErrEventInPast = errors.New("event is in the past")

	// InvalidState: reviews only open once the dinner has happened.
	ErrEventNotPast = errors.New("event has not taken place yet")

	// Conflict: a second active booking for the same event and user.
	ErrAlreadyBooked = errors.New("already booked this event")

	// Conflict: one review per member per event.
	ErrAlreadyReviewed = errors.New("already reviewed this event")

	// Forbidden: only members who held a confirmed seat may review.
	ErrNotAttended = errors.New("no confirmed booking for this event")

	// Forbidden: acting user is neither the booking owner nor an admin.
	ErrNotBookingOwner = errors.New("not the booking owner")

	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
