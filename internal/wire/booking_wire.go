package wire

import (
	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/middleware"
	"gastrotour/pkg/ratelimit"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	limiter *ratelimit.Limiter,
	trustProxy bool,
	log *zap.Logger,
) {
	// ==================== PROTECTED ROUTES (require auth) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/bookings - Book a seat or join the waitlist (rate limited)
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(limiter, trustProxy, log))
			r.Post("/api/bookings", bookingHandler.CreateBooking)
		})

		// GET /api/bookings - View own booking history
		r.Get("/api/bookings", bookingHandler.GetUserBookings)

		// GET /api/bookings/{id} - Booking details (owner or admin)
		r.Get("/api/bookings/{id}", bookingHandler.GetBookingByID)

		// DELETE /api/bookings/{id} - Cancel a booking (owner or admin)
		r.Delete("/api/bookings/{id}", bookingHandler.CancelBooking)
	})
}
