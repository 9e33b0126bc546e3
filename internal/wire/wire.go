package wire

import (
	"net/http"
	"time"

	"gastrotour/internal/adaptor"
	"gastrotour/internal/data/repository"
	"gastrotour/internal/usecase"
	"gastrotour/pkg/middleware"
	"gastrotour/pkg/ratelimit"
	"gastrotour/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired router.
type App struct {
	Router *chi.Mux
}

// Wiring initializes services, handlers and routes.
func Wiring(repo *repository.Repository, config *utils.Config, notifier usecase.BookingNotifier, logger *zap.Logger) *App {
	service := usecase.NewService(repo, config, notifier, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger, repo.ErrorLog))
	r.Use(middleware.CORS())

	// Rate limiters share one counter store, keyed per route group.
	store := ratelimit.NewMemoryStore()
	authLimiter := ratelimit.NewLimiter(store, time.Minute, config.RateLimit.AuthPerMinute)
	bookingLimiter := ratelimit.NewLimiter(store, time.Minute, config.RateLimit.BookingPerMinute)

	// Apply routes
	wireAuth(r, handler.Auth, repo, authLimiter, config.RateLimit.TrustProxy, logger)
	wireEvent(r, handler.Event, handler.Booking, repo, logger)
	wireBooking(r, handler.Booking, repo, bookingLimiter, config.RateLimit.TrustProxy, logger)
	wireReview(r, handler.Review, repo, logger)
	wireSystem(r, handler.System, repo, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
