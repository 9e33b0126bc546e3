package entity

import (
	"github.com/google/uuid"
)

// Review is a member's verdict on a dinner they attended. Each rating is
// 1-5; one review per member per event.
type Review struct {
	BaseSimple
	EventID        uuid.UUID `db:"event_id"`
	UserID         uuid.UUID `db:"user_id"`
	FoodRating     int       `db:"food_rating"`
	AmbianceRating int       `db:"ambiance_rating"`
	ServiceRating  int       `db:"service_rating"`
	ReviewText     *string   `db:"review_text"`
}
