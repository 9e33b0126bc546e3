package entity

import "time"

type EventStatus string

const (
	EventStatusUpcoming EventStatus = "upcoming"
	EventStatusPast     EventStatus = "past"
)

type Event struct {
	BaseSimple
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Date        time.Time `db:"date"`
	Address     string    `db:"address"`
	MenuURL     *string   `db:"menu_url"`
	CuisineType *string   `db:"cuisine_type"`
	MaxSeats    int       `db:"max_seats"`
}

// IsPast reports whether the event date is already behind us.
// Event status is always derived from the date, never stored.
func (e *Event) IsPast() bool {
	return e.Date.Before(time.Now())
}

func (e *Event) Status() EventStatus {
	if e.IsPast() {
		return EventStatusPast
	}
	return EventStatusUpcoming
}
