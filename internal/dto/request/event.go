package request

type CreateEventRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description *string `json:"description,omitempty"`
	Date        string  `json:"date" validate:"required"` // RFC 3339
	Address     string  `json:"address" validate:"required"`
	MenuURL     *string `json:"menu_url,omitempty" validate:"omitempty,url"`
	CuisineType *string `json:"cuisine_type,omitempty"`
	MaxSeats    int     `json:"max_seats" validate:"required,min=1,max=100"`
}
