package repository

import (
	"context"
	"errors"
	"fmt"

	"gastrotour/internal/data/entity"
	"gastrotour/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// RatingStats holds the aggregated ratings for one event.
type RatingStats struct {
	Food     float64
	Ambiance float64
	Service  float64
	Count    int64
}

type ReviewRepository interface {
	Create(ctx context.Context, review *entity.Review) error
	FindByEventID(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.Review, error)
	FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Review, error)
	CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error)
	GetEventRatingStats(ctx context.Context, eventID uuid.UUID) (*RatingStats, error)
}

type reviewRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewReviewRepository(db database.PgxIface, log *zap.Logger) ReviewRepository {
	return &reviewRepository{
		db:  db,
		log: log.With(zap.String("repository", "review")),
	}
}

func (r *reviewRepository) Create(ctx context.Context, review *entity.Review) error {
	query := `
		INSERT INTO reviews (id, event_id, user_id, food_rating, ambiance_rating, service_rating, review_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(ctx, query,
		review.ID,
		review.EventID,
		review.UserID,
		review.FoodRating,
		review.AmbianceRating,
		review.ServiceRating,
		review.ReviewText,
		review.CreatedAt,
	)

	if err != nil {
		// UNIQUE (event_id, user_id) rejects a second review even when two
		// requests race past the application-level existence check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create review for event %s by user %s: %w",
				review.EventID.String(), review.UserID.String(), ErrDuplicate)
		}
		r.log.Error("Failed to create review",
			zap.Error(err),
			zap.String("event_id", review.EventID.String()),
			zap.String("user_id", review.UserID.String()),
		)
		return fmt.Errorf("create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) FindByEventID(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	query := `
		SELECT id, event_id, user_id, food_rating, ambiance_rating, service_rating, review_text, created_at
		FROM reviews
		WHERE event_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, eventID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find reviews by event ID",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find reviews by event ID %s: %w", eventID.String(), err)
	}
	defer rows.Close()

	var reviews []*entity.Review
	for rows.Next() {
		var review entity.Review
		err := rows.Scan(
			&review.ID,
			&review.EventID,
			&review.UserID,
			&review.FoodRating,
			&review.AmbianceRating,
			&review.ServiceRating,
			&review.ReviewText,
			&review.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan review row", zap.Error(err))
			return nil, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, &review)
	}

	return reviews, nil
}

func (r *reviewRepository) FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Review, error) {
	query := `
		SELECT id, event_id, user_id, food_rating, ambiance_rating, service_rating, review_text, created_at
		FROM reviews
		WHERE event_id = $1 AND user_id = $2
		LIMIT 1
	`

	var review entity.Review
	err := r.db.QueryRow(ctx, query, eventID, userID).Scan(
		&review.ID,
		&review.EventID,
		&review.UserID,
		&review.FoodRating,
		&review.AmbianceRating,
		&review.ServiceRating,
		&review.ReviewText,
		&review.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find review by event and user",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find review by event %s and user %s: %w",
			eventID.String(), userID.String(), err)
	}

	return &review, nil
}

func (r *reviewRepository) CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM reviews WHERE event_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, eventID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count reviews by event ID",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return 0, fmt.Errorf("count reviews by event ID %s: %w", eventID.String(), err)
	}

	return count, nil
}

func (r *reviewRepository) GetEventRatingStats(ctx context.Context, eventID uuid.UUID) (*RatingStats, error) {
	query := `
		SELECT
			COALESCE(AVG(food_rating), 0),
			COALESCE(AVG(ambiance_rating), 0),
			COALESCE(AVG(service_rating), 0),
			COUNT(*)
		FROM reviews
		WHERE event_id = $1
	`

	var stats RatingStats
	err := r.db.QueryRow(ctx, query, eventID).Scan(
		&stats.Food,
		&stats.Ambiance,
		&stats.Service,
		&stats.Count,
	)
	if err != nil {
		r.log.Error("Failed to get event rating stats",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("get rating stats for event %s: %w", eventID.String(), err)
	}

	return &stats, nil
}
