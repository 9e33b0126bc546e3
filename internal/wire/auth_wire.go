package wire

import (
	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/middleware"
	"gastrotour/pkg/ratelimit"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAuth(
	r chi.Router,
	authHandler *adaptor.AuthHandler,
	repo *repository.Repository,
	limiter *ratelimit.Limiter,
	trustProxy bool,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES (rate limited) ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(limiter, trustProxy, log))

		// POST /api/auth/register - Create a member account
		r.Post("/api/auth/register", authHandler.Register)

		// POST /api/auth/login - Exchange credentials for a session token
		r.Post("/api/auth/login", authHandler.Login)
	})

	// ==================== PROTECTED ROUTES ====================
	r.Group(func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))

		// POST /api/auth/logout - Revoke the current session
		r.Post("/api/auth/logout", authHandler.Logout)

		// GET /api/auth/me - Current user's profile
		r.Get("/api/auth/me", authHandler.Me)
	})
}
