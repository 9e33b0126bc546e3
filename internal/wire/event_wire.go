package wire

import (
	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireEvent(
	r chi.Router,
	eventHandler *adaptor.EventHandler,
	bookingHandler *adaptor.BookingHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/events - List events with availability
	r.Get("/api/events", eventHandler.GetEvents)

	// GET /api/events/{id} - Event details with attendee list
	r.Get("/api/events/{id}", eventHandler.GetEventByID)

	// GET /api/events/{id}/availability - Live seat counts
	r.Get("/api/events/{id}/availability", bookingHandler.GetAvailability)

	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/events", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// POST /api/admin/events - Create a new dinner event
		r.Post("/", eventHandler.CreateEvent)

		// DELETE /api/admin/events/{id} - Remove an event and its bookings
		r.Delete("/{id}", eventHandler.DeleteEvent)
	})
}
