package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"gastrotour/internal/data/entity"
	"gastrotour/internal/data/repository"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the SQL behavior closely enough
// for service-level tests, including the partial unique index on active
// bookings, and are safe for concurrent use.

type memBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func copyBooking(b *entity.Booking) *entity.Booking {
	c := *b
	if b.Position != nil {
		pos := *b.Position
		c.Position = &pos
	}
	return &c
}

func (r *memBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.EventID == booking.EventID && b.UserID == booking.UserID && b.Status != entity.BookingStatusCancelled {
			return repository.ErrDuplicate
		}
	}
	r.bookings[booking.ID] = copyBooking(booking)
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.bookings[id]; ok {
		return copyBooking(b), nil
	}
	return nil, nil
}

func (r *memBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			matched = append(matched, copyBooking(b))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID, status entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, b := range r.bookings {
		if b.UserID == userID && (status == "" || b.Status == status) {
			count++
		}
	}
	return count, nil
}

func (r *memBookingRepo) UpdateStatusPosition(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus, position *int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[bookingID]
	if !ok {
		return nil
	}
	b.Status = status
	if position != nil {
		pos := *position
		b.Position = &pos
	} else {
		b.Position = nil
	}
	b.UpdatedAt = time.Now()
	return nil
}

func (r *memBookingRepo) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.countByStatus(eventID, entity.BookingStatusConfirmed), nil
}

func (r *memBookingRepo) CountWaitlisted(ctx context.Context, eventID uuid.UUID) (int, error) {
	return r.countByStatus(eventID, entity.BookingStatusWaitlist), nil
}

func (r *memBookingRepo) countByStatus(eventID uuid.UUID, status entity.BookingStatus) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, b := range r.bookings {
		if b.EventID == eventID && b.Status == status {
			count++
		}
	}
	return count
}

func (r *memBookingRepo) FindEarliestWaitlisted(ctx context.Context, eventID uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var earliest *entity.Booking
	for _, b := range r.bookings {
		if b.EventID != eventID || b.Status != entity.BookingStatusWaitlist || b.Position == nil {
			continue
		}
		if earliest == nil || *b.Position < *earliest.Position {
			earliest = b
		}
	}
	if earliest == nil {
		return nil, nil
	}
	return copyBooking(earliest), nil
}

func (r *memBookingRepo) FindActiveBooking(ctx context.Context, eventID, userID uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.EventID == eventID && b.UserID == userID && b.Status != entity.BookingStatusCancelled {
			return copyBooking(b), nil
		}
	}
	return nil, nil
}

func (r *memBookingRepo) FindConfirmedByEventID(ctx context.Context, eventID uuid.UUID) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Booking
	for _, b := range r.bookings {
		if b.EventID == eventID && b.Status == entity.BookingStatusConfirmed {
			matched = append(matched, copyBooking(b))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
}

func (r *memBookingRepo) ShiftWaitlistPositions(ctx context.Context, eventID uuid.UUID, abovePosition int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, b := range r.bookings {
		if b.EventID == eventID && b.Status == entity.BookingStatusWaitlist && b.Position != nil && *b.Position > abovePosition {
			*b.Position--
		}
	}
	return nil
}

type memEventRepo struct {
	mu     sync.Mutex
	events map[uuid.UUID]*entity.Event
}

func newMemEventRepo() *memEventRepo {
	return &memEventRepo{events: make(map[uuid.UUID]*entity.Event)}
}

func (r *memEventRepo) Create(ctx context.Context, event *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *event
	r.events[event.ID] = &copied
	return nil
}

func (r *memEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.events[id]; ok {
		copied := *e
		return &copied, nil
	}
	return nil, nil
}

func (r *memEventRepo) FindAll(ctx context.Context, upcomingOnly bool, limit, offset int) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var matched []*entity.Event
	for _, e := range r.events {
		if upcomingOnly && e.Date.Before(now) {
			continue
		}
		copied := *e
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(i, j int) bool {
		if upcomingOnly {
			return matched[i].Date.Before(matched[j].Date)
		}
		return matched[i].Date.After(matched[j].Date)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memEventRepo) Count(ctx context.Context, upcomingOnly bool) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	var count int64
	for _, e := range r.events {
		if upcomingOnly && e.Date.Before(now) {
			continue
		}
		count++
	}
	return count, nil
}

func (r *memEventRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.events, id)
	return nil
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*entity.User)}
}

func (r *memUserRepo) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrDuplicate
		}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *memUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (r *memUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*entity.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*entity.Session)}
}

func (r *memSessionRepo) Create(ctx context.Context, session *entity.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *session
	r.sessions[session.Token.String()] = &copied
	return nil
}

func (r *memSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[token]
	if !ok || s.RevokedAt != nil || s.ExpiresAt.Before(time.Now()) {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (r *memSessionRepo) Revoke(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[token]; ok {
		now := time.Now()
		s.RevokedAt = &now
	}
	return nil
}

func (r *memSessionRepo) CleanExpiredSessions(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for token, s := range r.sessions {
		if s.ExpiresAt.Before(now) {
			delete(r.sessions, token)
		}
	}
	return nil
}

type memReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*entity.Review
}

func newMemReviewRepo() *memReviewRepo {
	return &memReviewRepo{reviews: make(map[uuid.UUID]*entity.Review)}
}

func copyReview(rv *entity.Review) *entity.Review {
	c := *rv
	if rv.ReviewText != nil {
		text := *rv.ReviewText
		c.ReviewText = &text
	}
	return &c
}

func (r *memReviewRepo) Create(ctx context.Context, review *entity.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rv := range r.reviews {
		if rv.EventID == review.EventID && rv.UserID == review.UserID {
			return repository.ErrDuplicate
		}
	}
	r.reviews[review.ID] = copyReview(review)
	return nil
}

func (r *memReviewRepo) FindByEventID(ctx context.Context, eventID uuid.UUID, limit, offset int) ([]*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*entity.Review
	for _, rv := range r.reviews {
		if rv.EventID == eventID {
			matched = append(matched, copyReview(rv))
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *memReviewRepo) FindByEventAndUser(ctx context.Context, eventID, userID uuid.UUID) (*entity.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, rv := range r.reviews {
		if rv.EventID == eventID && rv.UserID == userID {
			return copyReview(rv), nil
		}
	}
	return nil, nil
}

func (r *memReviewRepo) CountByEventID(ctx context.Context, eventID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, rv := range r.reviews {
		if rv.EventID == eventID {
			count++
		}
	}
	return count, nil
}

func (r *memReviewRepo) GetEventRatingStats(ctx context.Context, eventID uuid.UUID) (*repository.RatingStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var stats repository.RatingStats
	for _, rv := range r.reviews {
		if rv.EventID != eventID {
			continue
		}
		stats.Food += float64(rv.FoodRating)
		stats.Ambiance += float64(rv.AmbianceRating)
		stats.Service += float64(rv.ServiceRating)
		stats.Count++
	}
	if stats.Count > 0 {
		n := float64(stats.Count)
		stats.Food /= n
		stats.Ambiance /= n
		stats.Service /= n
	}
	return &stats, nil
}

// notification records a single outbound email for assertions.
type notification struct {
	email    string
	status   entity.BookingStatus
	promoted bool
}

type recordingNotifier struct {
	ch chan notification
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{ch: make(chan notification, 32)}
}

func (n *recordingNotifier) SendBookingNotification(ctx context.Context, email, name string, event *entity.Event, status entity.BookingStatus, promoted bool) {
	n.ch <- notification{email: email, status: status, promoted: promoted}
}

// waitFor blocks until a notification arrives or the timeout passes.
func (n *recordingNotifier) waitFor(timeout time.Duration) (notification, bool) {
	select {
	case got := <-n.ch:
		return got, true
	case <-time.After(timeout):
		return notification{}, false
	}
}

func newTestRepo() *repository.Repository {
	return &repository.Repository{
		User:    newMemUserRepo(),
		Session: newMemSessionRepo(),
		Event:   newMemEventRepo(),
		Booking: newMemBookingRepo(),
		Review:  newMemReviewRepo(),
	}
}
