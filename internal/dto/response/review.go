package response

import (
	"time"

	"gastrotour/internal/data/entity"
)

type ReviewResponse struct {
	ID             string    `json:"id"`
	EventID        string    `json:"event_id"`
	AuthorName     string    `json:"author_name"`
	FoodRating     int       `json:"food_rating"`
	AmbianceRating int       `json:"ambiance_rating"`
	ServiceRating  int       `json:"service_rating"`
	ReviewText     *string   `json:"review_text,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// RatingStats averages each rating dimension over all reviews of an event.
// Overall is the mean of the three dimensions.
type RatingStats struct {
	Food     float64 `json:"food"`
	Ambiance float64 `json:"ambiance"`
	Service  float64 `json:"service"`
	Overall  float64 `json:"overall"`
}

type EventReviewsResponse struct {
	Reviews        []ReviewResponse `json:"reviews"`
	AverageRatings *RatingStats     `json:"average_ratings"`
	TotalReviews   int64            `json:"total_reviews"`
}

func ReviewToResponse(review *entity.Review, authorName string) ReviewResponse {
	if authorName == "" {
		authorName = "Anonym"
	}
	return ReviewResponse{
		ID:             review.ID.String(),
		EventID:        review.EventID.String(),
		AuthorName:     authorName,
		FoodRating:     review.FoodRating,
		AmbianceRating: review.AmbianceRating,
		ServiceRating:  review.ServiceRating,
		ReviewText:     review.ReviewText,
		CreatedAt:      review.CreatedAt,
	}
}
