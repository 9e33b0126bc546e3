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

type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) (int64, error)
	UpdateStatusPosition(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus, position *int) error

	// Seat allocation queries. Counts are always recomputed from booking
	// rows, never cached, so availability cannot drift.
	CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error)
	CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error)
	FindEarliestWaitlisted(ctx context.Context, eventID uuid.UUID) (*entity.Booking, error)
	FindActiveBooking(ctx context.Context, eventID, userID uuid.UUID) (*entity.Booking, error)
	FindConfirmedByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error)
	ShiftWaitlistPositions(ctx context.Context, eventID uuid.UUID, abovePosition int) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	query := `
		INSERT INTO bookings (id, event_id, user_id, status, position, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.Exec(ctx, query,
		booking.ID,
		booking.EventID,
		booking.UserID,
		booking.Status,
		booking.Position,
		booking.CreatedAt,
		booking.UpdatedAt,
	)

	if err != nil {
		// The partial unique index on (event_id, user_id) for non-cancelled
		// rows rejects a second active booking even when two requests race
		// past the application-level existence check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("create booking for event %s user %s: %w",
				booking.EventID.String(), booking.UserID.String(), ErrDuplicate)
		}
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("event_id", booking.EventID.String()),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, event_id, user_id, status, position, created_at, updated_at
		FROM bookings
		WHERE id = $1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, id).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Status,
		&booking.Position,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	// Empty status means no filter.
	query := `
		SELECT id, event_id, user_id, status, position, created_at, updated_at
		FROM bookings
		WHERE user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, userID, status, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.String("status", string(status)),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return scanBookings(rows, r.log)
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1 AND ($2 = '' OR status = $2)`

	var count int64
	err := r.db.QueryRow(ctx, query, userID, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) UpdateStatusPosition(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus, position *int) error {
	query := `UPDATE bookings SET status = $2, position = $3, updated_at = NOW() WHERE id = $1`

	result, err := r.db.Exec(ctx, query, bookingID, status, position)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(status)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(status), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s not found", bookingID.String())
	}

	return nil
}

func (r *bookingRepository) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.countByStatus(ctx, eventID, entity.BookingStatusConfirmed)
}

func (r *bookingRepository) CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.countByStatus(ctx, eventID, entity.BookingStatusWaitlist)
}

func (r *bookingRepository) countByStatus(ctx context.Context, eventID uuid.UUID, status entity.BookingStatus) (int, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE event_id = $1 AND status = $2`

	var count int
	err := r.db.QueryRow(ctx, query, eventID, status).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by status",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("status", string(status)),
		)
		return 0, fmt.Errorf("count %s bookings for event %s: %w", string(status), eventID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) FindEarliestWaitlisted(ctx context.Context, eventID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, event_id, user_id, status, position, created_at, updated_at
		FROM bookings
		WHERE event_id = $1 AND status = 'waitlist'
		ORDER BY position ASC
		LIMIT 1
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, eventID).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Status,
		&booking.Position,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find earliest waitlisted booking",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find earliest waitlisted booking for event %s: %w", eventID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindActiveBooking(ctx context.Context, eventID, userID uuid.UUID) (*entity.Booking, error) {
	query := `
		SELECT id, event_id, user_id, status, position, created_at, updated_at
		FROM bookings
		WHERE event_id = $1 AND user_id = $2 AND status <> 'cancelled'
	`

	var booking entity.Booking
	err := r.db.QueryRow(ctx, query, eventID, userID).Scan(
		&booking.ID,
		&booking.EventID,
		&booking.UserID,
		&booking.Status,
		&booking.Position,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find active booking",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
			zap.String("user_id", userID.String()),
		)
		return nil, fmt.Errorf("find active booking for event %s: %w", eventID.String(), err)
	}

	return &booking, nil
}

func (r *bookingRepository) FindConfirmedByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	query := `
		SELECT id, event_id, user_id, status, position, created_at, updated_at
		FROM bookings
		WHERE event_id = $1 AND status = 'confirmed'
		ORDER BY created_at
	`

	rows, err := r.db.Query(ctx, query, eventID)
	if err != nil {
		r.log.Error("Failed to find confirmed bookings",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return nil, fmt.Errorf("find confirmed bookings for event %s: %w", eventID.String(), err)
	}
	defer rows.Close()

	return scanBookings(rows, r.log)
}

// ShiftWaitlistPositions moves every waitlisted booking behind the given
// position up by one, keeping positions dense starting at 1 after a
// promotion or a mid-queue cancellation. Single statement so the queue is
// never observable in a half-renumbered state.
func (r *bookingRepository) ShiftWaitlistPositions(ctx context.Context, eventID uuid.UUID, abovePosition int) error {
	query := `
		UPDATE bookings
		SET position = position - 1, updated_at = NOW()
		WHERE event_id = $1 AND status = 'waitlist' AND position > $2
	`

	_, err := r.db.Exec(ctx, query, eventID, abovePosition)
	if err != nil {
		r.log.Error("Failed to shift waitlist positions",
			zap.Error(err),
			zap.String("event_id", eventID.String()),
		)
		return fmt.Errorf("shift waitlist positions for event %s: %w", eventID.String(), err)
	}

	return nil
}

func scanBookings(rows pgx.Rows, log *zap.Logger) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		var booking entity.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.EventID,
			&booking.UserID,
			&booking.Status,
			&booking.Position,
			&booking.CreatedAt,
			&booking.UpdatedAt,
		)
		if err != nil {
			log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, &booking)
	}
	return bookings, nil
}
