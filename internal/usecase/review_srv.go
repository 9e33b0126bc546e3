package usecase

import (
	"context"
	"errors"
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

type ReviewService interface {
	CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error)
	GetEventReviews(ctx context.Context, eventID string, req *request.PaginatedRequest) (*response.EventReviewsResponse, error)
}

type reviewService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewReviewService(repo *repository.Repository, log *zap.Logger) ReviewService {
	return &reviewService{
		repo: repo,
		log:  log.With(zap.String("service", "review")),
	}
}

// CreateReview records a member's ratings for a dinner they attended.
// Reviews only open after the event date, and only for members who held a
// confirmed seat.
func (s *reviewService) CreateReview(ctx context.Context, userID string, req *request.CreateReviewRequest) (*response.ReviewResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create review validation failed", zap.Any("errors", errs))
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

	if !event.IsPast() {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrEventNotPast)
	}

	booking, err := s.repo.Booking.FindActiveBooking(ctx, eventID, userUUID)
	if err != nil {
		return nil, fmt.Errorf("check attendance: %w", err)
	}
	if booking == nil || booking.Status != entity.BookingStatusConfirmed {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrNotAttended)
	}

	existing, err := s.repo.Review.FindByEventAndUser(ctx, eventID, userUUID)
	if err != nil {
		return nil, fmt.Errorf("check existing review: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("event %s: %w", req.EventID, ErrAlreadyReviewed)
	}

	review := &entity.Review{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: time.Now(),
		},
		EventID:        eventID,
		UserID:         userUUID,
		FoodRating:     req.FoodRating,
		AmbianceRating: req.AmbianceRating,
		ServiceRating:  req.ServiceRating,
		ReviewText:     req.ReviewText,
	}

	if err := s.repo.Review.Create(ctx, review); err != nil {
		// The unique index catches a duplicate that slipped past the
		// existence check in a concurrent request.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("event %s: %w", req.EventID, ErrAlreadyReviewed)
		}
		s.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("event_id", req.EventID),
			zap.String("user_id", userID),
		)
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.log.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("event_id", req.EventID),
		zap.String("user_id", userID),
	)

	resp := response.ReviewToResponse(review, s.authorName(ctx, userUUID))
	return &resp, nil
}

func (s *reviewService) GetEventReviews(ctx context.Context, eventID string, req *request.PaginatedRequest) (*response.EventReviewsResponse, error) {
	eventUUID, err := uuid.Parse(eventID)
	if err != nil {
		return nil, fmt.Errorf("invalid event ID format %s: %w", eventID, err)
	}

	event, err := s.repo.Event.FindByID(ctx, eventUUID)
	if err != nil {
		return nil, fmt.Errorf("load event %s: %w", eventID, err)
	}
	if event == nil {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrEventNotFound)
	}

	reviews, err := s.repo.Review.FindByEventID(ctx, eventUUID, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to get event reviews",
			zap.Error(err),
			zap.String("event_id", eventID),
		)
		return nil, fmt.Errorf("get event reviews: %w", err)
	}

	total, err := s.repo.Review.CountByEventID(ctx, eventUUID)
	if err != nil {
		return nil, fmt.Errorf("count event reviews: %w", err)
	}

	stats, err := s.repo.Review.GetEventRatingStats(ctx, eventUUID)
	if err != nil {
		return nil, fmt.Errorf("get event rating stats: %w", err)
	}

	reviewResponses := make([]response.ReviewResponse, len(reviews))
	for i, review := range reviews {
		reviewResponses[i] = response.ReviewToResponse(review, s.authorName(ctx, review.UserID))
	}

	var averages *response.RatingStats
	if stats.Count > 0 {
		averages = &response.RatingStats{
			Food:     stats.Food,
			Ambiance: stats.Ambiance,
			Service:  stats.Service,
			Overall:  (stats.Food + stats.Ambiance + stats.Service) / 3,
		}
	}

	return &response.EventReviewsResponse{
		Reviews:        reviewResponses,
		AverageRatings: averages,
		TotalReviews:   total,
	}, nil
}

func (s *reviewService) authorName(ctx context.Context, userID uuid.UUID) string {
	user, _ := s.repo.User.FindByID(ctx, userID)
	if user == nil {
		return ""
	}
	return user.FullName
}
