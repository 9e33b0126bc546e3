package wire

import (
	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/pkg/middleware"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireSystem(
	r chi.Router,
	systemHandler *adaptor.SystemHandler,
	repo *repository.Repository,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	r.Route("/api/admin/errors", func(r chi.Router) {
		r.Use(middleware.AuthSession(repo.Session, repo.User, log))
		r.Use(middleware.Admin(log))

		// GET /api/admin/errors - Recent server-side errors
		r.Get("/", systemHandler.GetErrorLogs)
	})
}
