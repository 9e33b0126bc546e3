package response

import (
	"time"

	"gastrotour/internal/data/entity"
)

type ErrorLogResponse struct {
	ID         string            `json:"id"`
	Level      entity.ErrorLevel `json:"level"`
	Message    string            `json:"message"`
	StackTrace *string           `json:"stack_trace,omitempty"`
	Path       *string           `json:"path,omitempty"`
	UserEmail  *string           `json:"user_email,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

func ErrorLogToResponse(entry *entity.ErrorLog) ErrorLogResponse {
	return ErrorLogResponse{
		ID:         entry.ID.String(),
		Level:      entry.Level,
		Message:    entry.Message,
		StackTrace: entry.StackTrace,
		Path:       entry.Path,
		UserEmail:  entry.UserEmail,
		CreatedAt:  entry.CreatedAt,
	}
}
