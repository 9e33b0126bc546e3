package request

type CreateReviewRequest struct {
	EventID        string  `json:"event_id" validate:"required,uuid4"`
	FoodRating     int     `json:"food_rating" validate:"required,min=1,max=5"`
	AmbianceRating int     `json:"ambiance_rating" validate:"required,min=1,max=5"`
	ServiceRating  int     `json:"service_rating" validate:"required,min=1,max=5"`
	ReviewText     *string `json:"review_text" validate:"omitempty,max=1000"`
}
