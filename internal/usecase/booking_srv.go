package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gastrotour/internal/data/entity"
	"gastrotour/internal/data/repository"
	"gastrotour/internal/dto/request"
	"gastrotour/internal/dto/response"
	"gastrotour/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingNotifier dispatches booking emails. Implementations must not
// block the booking path and must swallow their own failures.
type BookingNotifier interface {
	SendBookingNotification(ctx context.Context, email, name string, event *entity.Event, status entity.BookingStatus, promoted bool)
}

type BookingService interface {
	CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	CancelBooking(ctx context.Context, userID string, isAdmin bool, bookingID string) error
	GetBookingByID(ctx context.Context, userID string, isAdmin bool, bookingID string) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)
	GetAvailability(ctx context.Context, eventID string) (*response.AvailabilityResponse, error)
}

type bookingService struct {
	repo     *repository.Repository
	notifier BookingNotifier
	log      *zap.Logger

	// Per-event locks serialize the count-then-write sequence in
	// CreateBooking and the cancel+promote pair. All contention is scoped
	// to a single event id, so no global lock is needed.
	mu         sync.Mutex
	eventLocks map[uuid.UUID]*sync.Mutex
}

func NewBookingService(repo *repository.Repository, notifier BookingNotifier, log *zap.Logger) BookingService {
	return &bookingService{
		repo:       repo,
		notifier:   notifier,
		log:        log.With(zap.String("service", "booking")),
		eventLocks: make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *bookingService) lockEvent(eventID uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	lock, ok := s.eventLocks[eventID]
	if !ok {
		lock = &sync.Mutex{}
		s.eventLocks[eventID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock
}

func (s *bookingService) CreateBooking(ctx context.Context, userID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	eventID, err := uuid.Parse(req.EventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", req.EventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", req.EventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrEventNotFound)
	}

	if event.IsPast() {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrEventInPast)
	}

	lock := s.lockEvent(eventID)
	defer lock.Unlock()

	existing, err := s.repo.Booking.FindActiveBooking(ctx, eventID, userUUID)
	if err != nil {
		return nil, fmt.Errorf("check existing booking: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrAlreadyBooked)
	}

	booking, err := s.allocateSeat(ctx, event, userUUID)
	if err != nil {
		return nil, err
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", req.EventID),
		zap.String("user_id", userID),
		zap.String("status", string(booking.Status)),
	)

	s.notifyUser(userUUID, event, booking.Status, false)

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

// allocateSeat decides confirmed-vs-waitlist from a single authoritative
// count and persists the booking. Must be called with the event lock held.
func (s *bookingService) allocateSeat(ctx context.Context, event *entity.Event, userID uuid.UUID) (*entity.Booking, error) {
	confirmed, err := s.repo.Booking.CountConfirmed(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}

	status := entity.BookingStatusConfirmed
	var position *int
	if confirmed >= event.MaxSeats {
		waitlisted, err := s.repo.Booking.CountWaitlisted(ctx, event.ID)
		if err != nil {
			return nil, fmt.Errorf("count waitlisted bookings: %w", err)
		}
		status = entity.BookingStatusWaitlist
		pos := waitlisted + 1
		position = &pos
	}

	now := time.Now()
	booking := &entity.Booking{
		Base: entity.Base{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		EventID:  event.ID,
		UserID:   userID,
		Status:   status,
		Position: position,
	}

	if err := s.repo.Booking.Create(ctx, booking); err != nil {
		// The partial unique index catches a duplicate that slipped past
		// the existence check in a concurrent request.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("event %s: %w", event.ID.String(), ErrAlreadyBooked)
		}
		s.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if status == entity.BookingStatusConfirmed {
		if _, err := s.demoteIfOverCapacity(ctx, event, booking); err != nil {
			// The booking stands as confirmed; a failed re-check only
			// matters in the cross-process race, so surface it loudly.
			s.log.Error("Failed to verify capacity after confirmed insert",
				zap.Error(err),
				zap.String("booking_id", booking.ID.String()),
				zap.String("event_id", event.ID.String()),
			)
		}
	}

	return booking, nil
}

// demoteIfOverCapacity re-checks the confirmed count after a confirmed
// insert. If another process claimed the last seat in the same instant,
// this booking lost the race and is retried as a waitlist join instead of
// failing outright. In-process the event lock makes this a no-op.
func (s *bookingService) demoteIfOverCapacity(ctx context.Context, event *entity.Event, booking *entity.Booking) (bool, error) {
	confirmed, err := s.repo.Booking.CountConfirmed(ctx, event.ID)
	if err != nil || confirmed <= event.MaxSeats {
		return false, err
	}

	waitlisted, err := s.repo.Booking.CountWaitlisted(ctx, event.ID)
	if err != nil {
		return false, err
	}

	pos := waitlisted + 1
	if err := s.repo.Booking.UpdateStatusPosition(ctx, booking.ID, entity.BookingStatusWaitlist, &pos); err != nil {
		return false, err
	}

	s.log.Warn("Lost last-seat race, booking moved to waitlist",
		zap.String("booking_id", booking.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.Int("position", pos),
	)

	booking.Status = entity.BookingStatusWaitlist
	booking.Position = &pos
	return true, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, userID string, isAdmin bool, bookingID string) error {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	if booking.UserID != userUUID && !isAdmin {
		return fmt.Errorf("booking %s: %w", bookingID, ErrNotBookingOwner)
	}

	// Cancelled is terminal, repeating the cancel is a no-op.
	if booking.Status == entity.BookingStatusCancelled {
		return nil
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		return fmt.Errorf("load event for booking %s: %w", bookingID, err)
	}
	if event == nil {
		return fmt.Errorf("event for booking %s: %w", bookingID, ErrEventNotFound)
	}

	if event.IsPast() {
		return fmt.Errorf("booking %s: %w", bookingID, ErrEventInPast)
	}

	lock := s.lockEvent(event.ID)
	defer lock.Unlock()

	priorStatus := booking.Status
	priorPosition := booking.Position

	// Soft cancel. The row stays for audit history, the partial unique
	// index frees the (event, user) slot for a future rebooking.
	if err := s.repo.Booking.UpdateStatusPosition(ctx, id, entity.BookingStatusCancelled, nil); err != nil {
		s.log.Error("Failed to cancel booking",
			zap.Error(err),
			zap.String("booking_id", bookingID),
		)
		return fmt.Errorf("cancel booking %s: %w", bookingID, err)
	}

	s.log.Info("Booking cancelled",
		zap.String("booking_id", bookingID),
		zap.String("event_id", event.ID.String()),
		zap.String("prior_status", string(priorStatus)),
	)

	switch priorStatus {
	case entity.BookingStatusConfirmed:
		// A cancelled confirmed booking frees a seat.
		s.promoteNext(ctx, event)
	case entity.BookingStatusWaitlist:
		// Close the gap so positions stay a dense 1..K; nobody is
		// promoted because no seat was freed.
		if priorPosition != nil {
			if err := s.repo.Booking.ShiftWaitlistPositions(ctx, event.ID, *priorPosition); err != nil {
				s.log.Error("Failed to renumber waitlist after cancellation",
					zap.Error(err),
					zap.String("event_id", event.ID.String()),
				)
			}
		}
	}

	return nil
}

// promoteNext moves the earliest waitlisted booking to confirmed and
// shifts the rest of the queue up by one. A failed promotion never rolls
// back the cancellation that freed the seat: availability is recomputed
// from booking rows on every read, so the freed seat is simply picked up
// by the next booking or the next promotion attempt.
func (s *bookingService) promoteNext(ctx context.Context, event *entity.Event) {
	next, err := s.repo.Booking.FindEarliestWaitlisted(ctx, event.ID)
	if err != nil {
		s.log.Error("Failed to look up waitlist for promotion",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
		return
	}
	if next == nil {
		return
	}

	promotedFrom := 0
	if next.Position != nil {
		promotedFrom = *next.Position
	}

	if err := s.repo.Booking.UpdateStatusPosition(ctx, next.ID, entity.BookingStatusConfirmed, nil); err != nil {
		s.log.Error("Failed to promote waitlisted booking",
			zap.Error(err),
			zap.String("booking_id", next.ID.String()),
			zap.String("event_id", event.ID.String()),
		)
		return
	}

	if err := s.repo.Booking.ShiftWaitlistPositions(ctx, event.ID, promotedFrom); err != nil {
		s.log.Error("Failed to renumber waitlist after promotion",
			zap.Error(err),
			zap.String("event_id", event.ID.String()),
		)
	}

	s.log.Info("Waitlisted booking promoted",
		zap.String("booking_id", next.ID.String()),
		zap.String("event_id", event.ID.String()),
		zap.String("user_id", next.UserID.String()),
	)

	s.notifyUser(next.UserID, event, entity.BookingStatusConfirmed, true)
}

func (s *bookingService) GetBookingByID(ctx context.Context, userID string, isAdmin bool, bookingID string) (*response.BookingResponse, error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, fmt.Errorf("invalid booking ID format %s: %w", bookingID, err)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load booking %s: %w", bookingID, err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrBookingNotFound)
	}

	if booking.UserID != userUUID && !isAdmin {
		return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotBookingOwner)
	}

	event, err := s.repo.Event.FindByID(ctx, booking.EventID)
	if err != nil {
		return nil, fmt.Errorf("load event for booking %s: %w", bookingID, err)
	}

	resp := response.BookingToResponse(booking, event)
	return &resp, nil
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID, status string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("invalid user ID format %s: %w", userID, err)
	}

	// An empty or unknown filter means all statuses.
	bookingStatus := entity.BookingStatus(status)
	switch bookingStatus {
	case entity.BookingStatusConfirmed, entity.BookingStatusWaitlist, entity.BookingStatusCancelled:
	default:
		bookingStatus = ""
	}

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, bookingStatus, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("get user bookings: %w", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID, bookingStatus)
	if err != nil {
		return nil, fmt.Errorf("count user bookings: %w", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		event, _ := s.repo.Event.FindByID(ctx, booking.EventID)
		bookingResponses[i] = response.BookingToResponse(booking, event)
	}

	return response.NewPaginatedResponse(bookingResponses, req.Page, req.PerPage, total), nil
}

func (s *bookingService) GetAvailability(ctx context.Context, eventID string) (*response.AvailabilityResponse, error) {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}

	confirmed, err := s.repo.Booking.CountConfirmed(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count confirmed bookings: %w", err)
	}

	waitlisted, err := s.repo.Booking.CountWaitlisted(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count waitlisted bookings: %w", err)
	}

	available := event.MaxSeats - confirmed
	if available < 0 {
		available = 0
	}

	return &response.AvailabilityResponse{
		EventID:        eventID,
		MaxSeats:       event.MaxSeats,
		ConfirmedCount: confirmed,
		SeatsAvailable: available,
		WaitlistCount:  waitlisted,
	}, nil
}

// notifyUser looks up the recipient and fires the email without blocking
// the request. A missing user or failed send only produces a log line.
func (s *bookingService) notifyUser(userID uuid.UUID, event *entity.Event, status entity.BookingStatus, promoted bool) {
	if s.notifier == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		user, err := s.repo.User.FindByID(ctx, userID)
		if err != nil || user == nil {
			s.log.Warn("Skipping booking notification, user not found",
				zap.String("user_id", userID.String()))
			return
		}

		s.notifier.SendBookingNotification(ctx, user.Email, user.FullName, event, status, promoted)
	}()
}
