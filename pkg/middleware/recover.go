package middleware

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"gastrotour/internal/data/entity"
	"gastrotour/internal/data/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Recover turns panics into 500 responses and records them in the
// error_logs table so they show up in the admin error view. Persisting
// is best effort with its own short deadline.
func Recover(logger *zap.Logger, errorLogs repository.ErrorLogRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("PANIC recovered",
						zap.Any("error", err),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
						zap.Stack("stack"),
					)

					if errorLogs != nil {
						stack := string(debug.Stack())
						path := r.URL.Path
						entry := &entity.ErrorLog{
							BaseSimple: entity.BaseSimple{
								ID:        uuid.New(),
								CreatedAt: time.Now(),
							},
							Level:      entity.ErrorLevelError,
							Message:    fmt.Sprintf("panic: %v", err),
							StackTrace: &stack,
							Path:       &path,
						}

						ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
						defer cancel()
						_ = errorLogs.Create(ctx, entry)
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					w.Write([]byte(`{"status":false,"message":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
