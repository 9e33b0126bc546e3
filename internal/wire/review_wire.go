package wire

import (
	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireReview(
	r chi.Router,
	reviewHandler *adaptor.ReviewHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// GET /api/reviews?event_id= - Reviews and average ratings for an event
	r.Get("/api/reviews", reviewHandler.GetEventReviews)

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/reviews - Review an attended event
		r.Post("/api/reviews", reviewHandler.CreateReview)
	})
}
