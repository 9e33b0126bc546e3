package repository

import (
	"context"
	"fmt"

	"gastrotour/internal/data/entity"
	"gastrotour/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EventRepository interface {
	Create(ctx context.Context, event *entity.Event) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error)
	FindAll(ctx context.Context, upcomingOnly bool, limit, offset int) ([]*entity.Event, error)
	Count(ctx context.Context, upcomingOnly bool) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type eventRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewEventRepository(db database.PgxIface, log *zap.Logger) EventRepository {
	return &eventRepository{
		db:  db,
		log: log.With(zap.String("repository", "event")),
	}
}

func (r *eventRepository) Create(ctx context.Context, event *entity.Event) error {
	query := `
		INSERT INTO events (id, name, description, date, address, menu_url, cuisine_type, max_seats, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		event.ID,
		event.Name,
		event.Description,
		event.Date,
		event.Address,
		event.MenuURL,
		event.CuisineType,
		event.MaxSeats,
		event.CreatedAt,
	)

	if err != nil {
		r.log.Error("Failed to create event",
			zap.Error(err),
			zap.String("name", event.Name),
		)
		return fmt.Errorf("create event %s: %w", event.Name, err)
	}

	return nil
}

func (r *eventRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	query := `
		SELECT id, name, description, date, address, menu_url, cuisine_type, max_seats, created_at
		FROM events
		WHERE id = $1
	`

	var event entity.Event
	err := r.db.QueryRow(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.Description,
		&event.Date,
		&event.Address,
		&event.MenuURL,
		&event.CuisineType,
		&event.MaxSeats,
		&event.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find event by ID",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return nil, fmt.Errorf("find event by ID %s: %w", id.String(), err)
	}

	return &event, nil
}

func (r *eventRepository) FindAll(ctx context.Context, upcomingOnly bool, limit, offset int) ([]*entity.Event, error) {
	// Upcoming events are listed soonest-first, past events newest-first.
	query := `
		SELECT id, name, description, date, address, menu_url, cuisine_type, max_seats, created_at
		FROM events
		ORDER BY date DESC
		LIMIT $1 OFFSET $2
	`
	if upcomingOnly {
		query = `
			SELECT id, name, description, date, address, menu_url, cuisine_type, max_seats, created_at
			FROM events
			WHERE date >= NOW()
			ORDER BY date ASC
			LIMIT $1 OFFSET $2
		`
	}

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		r.log.Error("Failed to find events",
			zap.Error(err),
			zap.Bool("upcoming_only", upcomingOnly),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find events: %w", err)
	}
	defer rows.Close()

	var events []*entity.Event
	for rows.Next() {
		var event entity.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.Description,
			&event.Date,
			&event.Address,
			&event.MenuURL,
			&event.CuisineType,
			&event.MaxSeats,
			&event.CreatedAt,
		)
		if err != nil {
			r.log.Error("Failed to scan event row", zap.Error(err))
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		events = append(events, &event)
	}

	return events, nil
}

func (r *eventRepository) Count(ctx context.Context, upcomingOnly bool) (int64, error) {
	query := `SELECT COUNT(*) FROM events`
	if upcomingOnly {
		query = `SELECT COUNT(*) FROM events WHERE date >= NOW()`
	}

	var count int64
	err := r.db.QueryRow(ctx, query).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count events", zap.Error(err))
		return 0, fmt.Errorf("count events: %w", err)
	}

	return count, nil
}

func (r *eventRepository) Delete(ctx context.Context, id uuid.UUID) error {
	// Bookings cascade via the FK constraint.
	query := `DELETE FROM events WHERE id = $1`

	result, err := r.db.Exec(ctx, query, id)
	if err != nil {
		r.log.Error("Failed to delete event",
			zap.Error(err),
			zap.String("event_id", id.String()),
		)
		return fmt.Errorf("delete event %s: %w", id.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("event %s not found", id.String())
	}

	r.log.Info("Event deleted", zap.String("event_id", id.String()))
	return nil
}
