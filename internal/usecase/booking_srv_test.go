package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"gastrotour/internal/data/entity"
	"gastrotour/internal/data/repository"
	"gastrotour/internal/dto/request"
	"gastrotour/internal/dto/response"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func seedEvent(repo *repository.Repository, maxSeats int, date time.Time) *entity.Event {
	event := &entity.Event{
		BaseSimple: entity.BaseSimple{ID: uuid.New(), CreatedAt: time.Now()},
		Name:       "Abendessen im Tantris",
		Address:    "Johann-Fichte-Str. 7, München",
		Date:       date,
		MaxSeats:   maxSeats,
	}
	repo.Event.Create(context.Background(), event)
	return event
}

func seedUser(repo *repository.Repository, email string) *entity.User {
	now := time.Now()
	user := &entity.User{
		Base:     entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Email:    email,
		FullName: "Test Member",
	}
	repo.User.Create(context.Background(), user)
	return user
}

func newTestBookingService(repo *repository.Repository, notifier BookingNotifier) BookingService {
	return NewBookingService(repo, notifier, zap.NewNop())
}

func TestCreateBookingFillsSeatsThenWaitlists(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 8, time.Now().Add(48*time.Hour))

	for i := 0; i < 8; i++ {
		user := seedUser(repo, fmt.Sprintf("member%d@example.com", i))
		booking, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
		if err != nil {
			t.Fatalf("booking %d: unexpected error: %v", i, err)
		}
		if booking.Status != entity.BookingStatusConfirmed {
			t.Fatalf("booking %d: got status %s, want confirmed", i, booking.Status)
		}
		if booking.Position != nil {
			t.Fatalf("booking %d: confirmed booking should have no position, got %d", i, *booking.Position)
		}
	}

	// Ninth member lands on the waitlist at position 1.
	ninth := seedUser(repo, "member8@example.com")
	booking, err := svc.CreateBooking(context.Background(), ninth.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != entity.BookingStatusWaitlist {
		t.Fatalf("got status %s, want waitlist", booking.Status)
	}
	if booking.Position == nil || *booking.Position != 1 {
		t.Fatalf("got position %v, want 1", booking.Position)
	}

	// Tenth queues up behind at position 2.
	tenth := seedUser(repo, "member9@example.com")
	booking, err = svc.CreateBooking(context.Background(), tenth.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Position == nil || *booking.Position != 2 {
		t.Fatalf("got position %v, want 2", booking.Position)
	}

	availability, err := svc.GetAvailability(context.Background(), event.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.ConfirmedCount != 8 || availability.SeatsAvailable != 0 || availability.WaitlistCount != 2 {
		t.Fatalf("got availability %+v, want 8 confirmed, 0 available, 2 waitlisted", availability)
	}
}

func TestCreateBookingDuplicateRejected(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 4, time.Now().Add(48*time.Hour))
	user := seedUser(repo, "double@example.com")

	req := &request.CreateBookingRequest{EventID: event.ID.String()}
	first, err := svc.CreateBooking(context.Background(), user.ID.String(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.CreateBooking(context.Background(), user.ID.String(), req); !errors.Is(err, ErrAlreadyBooked) {
		t.Fatalf("got %v, want ErrAlreadyBooked", err)
	}

	// Cancelling frees the slot for a rebooking.
	if err := svc.CancelBooking(context.Background(), user.ID.String(), false, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if _, err := svc.CreateBooking(context.Background(), user.ID.String(), req); err != nil {
		t.Fatalf("rebooking after cancel failed: %v", err)
	}
}

func TestCreateBookingPastEvent(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 4, time.Now().Add(-time.Hour))
	user := seedUser(repo, "late@example.com")

	_, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if !errors.Is(err, ErrEventInPast) {
		t.Fatalf("got %v, want ErrEventInPast", err)
	}

	availability, err := svc.GetAvailability(context.Background(), event.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.ConfirmedCount != 0 || availability.WaitlistCount != 0 {
		t.Fatalf("no booking row should exist, got %+v", availability)
	}
}

func TestCreateBookingEventNotFound(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	user := seedUser(repo, "lost@example.com")

	_, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: uuid.NewString()})
	if !errors.Is(err, ErrEventNotFound) {
		t.Fatalf("got %v, want ErrEventNotFound", err)
	}
}

func TestCancelConfirmedPromotesEarliestWaitlisted(t *testing.T) {
	repo := newTestRepo()
	notifier := newRecordingNotifier()
	svc := newTestBookingService(repo, notifier)
	event := seedEvent(repo, 2, time.Now().Add(48*time.Hour))

	var bookings []string
	for i := 0; i < 4; i++ {
		user := seedUser(repo, fmt.Sprintf("guest%d@example.com", i))
		booking, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
		if err != nil {
			t.Fatalf("booking %d: unexpected error: %v", i, err)
		}
		bookings = append(bookings, booking.ID)
	}

	// Drain the four creation emails so only the promotion remains.
	for i := 0; i < 4; i++ {
		if _, ok := notifier.waitFor(2 * time.Second); !ok {
			t.Fatalf("missing creation notification %d", i)
		}
	}

	// Guest 0 holds a confirmed seat; cancelling frees it for guest 2.
	owner, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(bookings[0]))
	if err := svc.CancelBooking(context.Background(), owner.UserID.String(), false, bookings[0]); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	promoted, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(bookings[2]))
	if promoted.Status != entity.BookingStatusConfirmed {
		t.Fatalf("got status %s, want confirmed after promotion", promoted.Status)
	}
	if promoted.Position != nil {
		t.Fatalf("promoted booking should have no position, got %d", *promoted.Position)
	}

	// The remaining waitlisted booking shifts from position 2 to 1.
	waiting, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(bookings[3]))
	if waiting.Status != entity.BookingStatusWaitlist || waiting.Position == nil || *waiting.Position != 1 {
		t.Fatalf("got %s position %v, want waitlist position 1", waiting.Status, waiting.Position)
	}

	got, ok := notifier.waitFor(2 * time.Second)
	if !ok {
		t.Fatal("missing promotion notification")
	}
	if !got.promoted || got.status != entity.BookingStatusConfirmed {
		t.Fatalf("got notification %+v, want promoted confirmed", got)
	}
}

func TestCancelWaitlistedDoesNotPromote(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 1, time.Now().Add(48*time.Hour))

	holder := seedUser(repo, "holder@example.com")
	svc.CreateBooking(context.Background(), holder.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})

	waiter := seedUser(repo, "waiter@example.com")
	waitlisted, err := svc.CreateBooking(context.Background(), waiter.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CancelBooking(context.Background(), waiter.ID.String(), false, waitlisted.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	availability, _ := svc.GetAvailability(context.Background(), event.ID.String())
	if availability.ConfirmedCount != 1 || availability.WaitlistCount != 0 {
		t.Fatalf("got %+v, want 1 confirmed and empty waitlist", availability)
	}
}

func TestCancelWaitlistedKeepsPositionsDense(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 1, time.Now().Add(48*time.Hour))

	holder := seedUser(repo, "holder@example.com")
	if _, err := svc.CreateBooking(context.Background(), holder.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var waitlisted []*response.BookingResponse
	for i := 0; i < 3; i++ {
		user := seedUser(repo, fmt.Sprintf("queued%d@example.com", i))
		booking, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
		if err != nil {
			t.Fatalf("waitlist join %d: unexpected error: %v", i, err)
		}
		if booking.Position == nil || *booking.Position != i+1 {
			t.Fatalf("waitlist join %d: got position %v, want %d", i, booking.Position, i+1)
		}
		waitlisted = append(waitlisted, booking)
	}

	// Cancelling the head of the queue must pull everyone behind up by one.
	head, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(waitlisted[0].ID))
	if err := svc.CancelBooking(context.Background(), head.UserID.String(), false, waitlisted[0].ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	for i, want := range []int{1, 2} {
		b, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(waitlisted[i+1].ID))
		if b.Status != entity.BookingStatusWaitlist || b.Position == nil || *b.Position != want {
			t.Fatalf("booking %d: got %s position %v, want waitlist position %d", i+1, b.Status, b.Position, want)
		}
	}

	// A new member joins at the end of the shortened queue, not behind the
	// vacated slot.
	late := seedUser(repo, "late@example.com")
	booking, err := svc.CreateBooking(context.Background(), late.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Position == nil || *booking.Position != 3 {
		t.Fatalf("got position %v, want 3", booking.Position)
	}

	// Positions are exactly 1..3, no gaps, no duplicates.
	seen := make(map[int]int)
	bookingRepo := repo.Booking.(*memBookingRepo)
	bookingRepo.mu.Lock()
	for _, b := range bookingRepo.bookings {
		if b.EventID == event.ID && b.Status == entity.BookingStatusWaitlist && b.Position != nil {
			seen[*b.Position]++
		}
	}
	bookingRepo.mu.Unlock()
	for pos := 1; pos <= 3; pos++ {
		if seen[pos] != 1 {
			t.Errorf("position %d held by %d bookings, want exactly 1", pos, seen[pos])
		}
	}
	if len(seen) != 3 {
		t.Errorf("got %d distinct positions, want 3", len(seen))
	}
}

func TestCancelBookingIdempotent(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 2, time.Now().Add(48*time.Hour))
	user := seedUser(repo, "repeat@example.com")

	booking, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CancelBooking(context.Background(), user.ID.String(), false, booking.ID); err != nil {
		t.Fatalf("first cancel failed: %v", err)
	}
	if err := svc.CancelBooking(context.Background(), user.ID.String(), false, booking.ID); err != nil {
		t.Fatalf("second cancel should be a no-op, got %v", err)
	}
}

func TestCancelBookingOwnership(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 2, time.Now().Add(48*time.Hour))
	owner := seedUser(repo, "owner@example.com")
	other := seedUser(repo, "other@example.com")

	booking, err := svc.CreateBooking(context.Background(), owner.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.CancelBooking(context.Background(), other.ID.String(), false, booking.ID); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("got %v, want ErrNotBookingOwner", err)
	}

	// Admins may cancel on behalf of anyone.
	if err := svc.CancelBooking(context.Background(), other.ID.String(), true, booking.ID); err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
}

func TestConcurrentBookingsRespectCapacity(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 2, time.Now().Add(48*time.Hour))

	const members = 10
	var wg sync.WaitGroup
	for i := 0; i < members; i++ {
		user := seedUser(repo, fmt.Sprintf("rush%d@example.com", i))
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			if _, err := svc.CreateBooking(context.Background(), userID, &request.CreateBookingRequest{EventID: event.ID.String()}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(user.ID.String())
	}
	wg.Wait()

	availability, err := svc.GetAvailability(context.Background(), event.ID.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if availability.ConfirmedCount != 2 {
		t.Fatalf("got %d confirmed, want exactly 2", availability.ConfirmedCount)
	}
	if availability.WaitlistCount != members-2 {
		t.Fatalf("got %d waitlisted, want %d", availability.WaitlistCount, members-2)
	}

	// Waitlist positions must be a dense 1..8 with no duplicates.
	seen := make(map[int]bool)
	for pos := 1; pos <= members-2; pos++ {
		seen[pos] = false
	}
	next, _ := repo.Booking.FindEarliestWaitlisted(context.Background(), event.ID)
	if next == nil || *next.Position != 1 {
		t.Fatalf("earliest waitlisted should be at position 1, got %+v", next)
	}
	bookingRepo := repo.Booking.(*memBookingRepo)
	bookingRepo.mu.Lock()
	for _, b := range bookingRepo.bookings {
		if b.Status != entity.BookingStatusWaitlist {
			continue
		}
		if b.Position == nil {
			t.Error("waitlisted booking without position")
			continue
		}
		if done, ok := seen[*b.Position]; !ok || done {
			t.Errorf("unexpected or duplicate position %d", *b.Position)
		}
		seen[*b.Position] = true
	}
	bookingRepo.mu.Unlock()
	for pos, done := range seen {
		if !done {
			t.Errorf("position %d never assigned", pos)
		}
	}
}

// flakyCountBookingRepo fails CountConfirmed after a set number of calls,
// simulating the store dropping out between the allocation count and the
// post-insert capacity re-check.
type flakyCountBookingRepo struct {
	*memBookingRepo
	mu       sync.Mutex
	calls    int
	failFrom int
}

func (r *flakyCountBookingRepo) CountConfirmed(ctx context.Context, eventID uuid.UUID) (int, error) {
	r.mu.Lock()
	r.calls++
	calls := r.calls
	r.mu.Unlock()

	if calls >= r.failFrom {
		return 0, errors.New("connection reset")
	}
	return r.memBookingRepo.CountConfirmed(ctx, eventID)
}

func TestCreateBookingSurvivesFailedCapacityRecheck(t *testing.T) {
	repo := newTestRepo()
	repo.Booking = &flakyCountBookingRepo{memBookingRepo: newMemBookingRepo(), failFrom: 2}
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 4, time.Now().Add(48*time.Hour))
	user := seedUser(repo, "steady@example.com")

	booking, err := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != entity.BookingStatusConfirmed {
		t.Fatalf("got status %s, want confirmed", booking.Status)
	}

	stored, _ := repo.Booking.FindByID(context.Background(), uuid.MustParse(booking.ID))
	if stored == nil || stored.Status != entity.BookingStatusConfirmed {
		t.Fatalf("stored booking %+v, want confirmed row", stored)
	}
}

func TestGetBookingByIDOwnership(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	event := seedEvent(repo, 2, time.Now().Add(48*time.Hour))
	owner := seedUser(repo, "mine@example.com")
	other := seedUser(repo, "nosy@example.com")

	booking, err := svc.CreateBooking(context.Background(), owner.ID.String(), &request.CreateBookingRequest{EventID: event.ID.String()})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := svc.GetBookingByID(context.Background(), owner.ID.String(), false, booking.ID)
	if err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
	if got.Event == nil || got.Event.Name != event.Name {
		t.Fatalf("expected embedded event summary, got %+v", got.Event)
	}

	if _, err := svc.GetBookingByID(context.Background(), other.ID.String(), false, booking.ID); !errors.Is(err, ErrNotBookingOwner) {
		t.Fatalf("got %v, want ErrNotBookingOwner", err)
	}
	if _, err := svc.GetBookingByID(context.Background(), other.ID.String(), true, booking.ID); err != nil {
		t.Fatalf("admin read failed: %v", err)
	}
}

func TestGetUserBookingsFiltersByStatus(t *testing.T) {
	repo := newTestRepo()
	svc := newTestBookingService(repo, nil)
	user := seedUser(repo, "history@example.com")

	first := seedEvent(repo, 2, time.Now().Add(24*time.Hour))
	second := seedEvent(repo, 2, time.Now().Add(72*time.Hour))

	svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: first.ID.String()})
	cancelled, _ := svc.CreateBooking(context.Background(), user.ID.String(), &request.CreateBookingRequest{EventID: second.ID.String()})
	svc.CancelBooking(context.Background(), user.ID.String(), false, cancelled.ID)

	page := &request.PaginatedRequest{Page: 1, PerPage: 10}

	confirmed, err := svc.GetUserBookings(context.Background(), user.ID.String(), "confirmed", page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(confirmed.Data) != 1 || confirmed.Data[0].EventID != first.ID.String() {
		t.Fatalf("got %d confirmed bookings, want the one for the first event", len(confirmed.Data))
	}

	gone, err := svc.GetUserBookings(context.Background(), user.ID.String(), "cancelled", page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(gone.Data) != 1 || gone.Data[0].EventID != second.ID.String() {
		t.Fatalf("got %d cancelled bookings, want the one for the second event", len(gone.Data))
	}

	// No filter returns the whole history.
	all, err := svc.GetUserBookings(context.Background(), user.ID.String(), "", page)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all.Data) != 2 {
		t.Fatalf("got %d bookings without a filter, want 2", len(all.Data))
	}
}
