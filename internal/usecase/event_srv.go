package usecase

import (
	"context"
	"fmt"
	"time"

	"gastrotour/internal/data/entity"
	"gastrotour/internal/data/repository"
	"gastrotour/internal/dto/request"
	"gastrotour/internal/dto/response"
	"gastrotour/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventService interface {
	GetEvents(ctx context.Context, upcomingOnly bool, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error)
	GetEventByID(ctx context.Context, eventID string) (*response.EventResponse, error)

	// Admin endpoints
	CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error)
	DeleteEvent(ctx context.Context, eventID string) error
}

type eventService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewEventService(repo *repository.Repository, log *zap.Logger) EventService {
	return &eventService{
		repo: repo,
		log:  log.With(zap.String("service", "event")),
	}
}

func (s *eventService) GetEvents(ctx context.Context, upcomingOnly bool, req *request.PaginatedRequest) (*response.PaginatedResponse[response.EventResponse], error) {
	events, err := s.repo.Event.FindAll(ctx, upcomingOnly, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get events", zap.Error(err))
		return nil, fmt.Errorf("get events: %w", err)
	}

	total, err := s.repo.Event.Count(ctx, upcomingOnly)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}

	eventResponses := make([]response.EventResponse, len(events))
	for i, event := range events {
		resp, err := s.buildEventResponse(ctx, event)
		if err != nil {
			return nil, err
		}
		eventResponses[i] = *resp
	}

	return response.NewPaginatedResponse(eventResponses, req.Page, req.PerPage, total), nil
}

func (s *eventService) GetEventByID(ctx context.Context, eventID string) (*response.EventResponse, error) {
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

	return s.buildEventResponse(ctx, event)
}

func (s *eventService) CreateEvent(ctx context.Context, req *request.CreateEventRequest) (*response.EventResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create event validation failed", zap.Any("errors", errs))
		return nil, fmt.Errorf("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	date, err := time.Parse(time.RFC3339, req.Date)
	if err != nil {
		return nil, fmt.Errorf("invalid event date %s: %w", req.Date, err)
	}
	if date.Before(time.Now()) {
		return nil, fmt.Errorf("invalid event date %s: date is in the past", req.Date)
	}

	event := &entity.Event{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		Name:        req.Name,
		Description: req.Description,
		Date:        date,
		Address:     req.Address,
		MenuURL:     req.MenuURL,
		CuisineType: req.CuisineType,
		MaxSeats:    req.MaxSeats,
	}

	if err := s.repo.Event.Create(ctx, event); err != nil {
		s.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("name", req.Name),
		)
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.log.Info("Event created",
		zap.String("event_id", event.ID.String()),
		zap.String("name", event.Name),
		zap.Time("date", event.Date),
		zap.Int("max_seats", event.MaxSeats),
	)

	resp := response.EventToResponse(event, 0, 0, nil)
	return &resp, nil
}

func (s *eventService) DeleteEvent(ctx context.Context, eventID string) error {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("load event %s: %w", eventID, err)
	}
	if event == nil {
		return fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}

	if err := s.repo.Event.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete event %s: %w", eventID, err)
	}

	s.log.Info("Event deleted",
		zap.String("event_id", eventID),
		zap.String("name", event.Name),
	)
	return nil
}

// buildEventResponse attaches derived availability and the attendee list.
func (s *eventService) buildEventResponse(ctx context.Context, event *entity.Event) (*response.EventResponse, error) {
	confirmedBookings, err := s.repo.Booking.FindConfirmedByEventID(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("load confirmed bookings for event %s: %w", event.ID.String(), err)
	}

	waitlisted, err := s.repo.Booking.CountWaitlisted(ctx, event.ID)
	if err != nil {
		return nil, fmt.Errorf("count waitlisted bookings for event %s: %w", event.ID.String(), err)
	}

	attendees := make([]response.AttendeeResponse, 0, len(confirmedBookings))
	for _, booking := range confirmedBookings {
		name := "Unknown"
		if user, err := s.repo.User.FindByID(ctx, booking.UserID); err == nil && user != nil {
			name = user.FullName
		}
		attendees = append(attendees, response.AttendeeResponse{
			ID:   booking.UserID.String(),
			Name: name,
		})
	}

	resp := response.EventToResponse(event, len(confirmedBookings), waitlisted, attendees)
	return &resp, nil
}
