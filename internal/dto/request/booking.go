package request

type CreateBookingRequest struct {
	EventID string `json:"event_id" validate:"required,uuid4"`
}
