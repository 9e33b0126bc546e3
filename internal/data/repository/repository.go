package repository

import (
	"errors"

	"gastrotour/pkg/database"

	"go.uber.org/zap"
)

// ErrDuplicate is returned when an insert violates a uniqueness constraint,
// e.g. a second active booking for the same (event, user) pair.
var ErrDuplicate = errors.New("duplicate row")

type Repository struct {
	User     UserRepository
	Session  SessionRepository
	Event    EventRepository
	Booking  BookingRepository
	Review   ReviewRepository
	ErrorLog ErrorLogRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	return &Repository{
		User:     NewUserRepository(db, log),
		Session:  NewSessionRepository(db, log),
		Event:    NewEventRepository(db, log),
		Booking:  NewBookingRepository(db, log),
		Review:   NewReviewRepository(db, log),
		ErrorLog: NewErrorLogRepository(db, log),
	}
}
