package entity

type ErrorLevel string

const (
	ErrorLevelError ErrorLevel = "error"
	ErrorLevelWarn  ErrorLevel = "warn"
)

// ErrorLog is a database-backed stand-in for a hosted error tracker,
// sized for a hobby deployment.
type ErrorLog struct {
	BaseSimple
	Level      ErrorLevel `db:"level"`
	Message    string     `db:"message"`
	StackTrace *string    `db:"stack_trace"`
	Path       *string    `db:"path"`
	UserEmail  *string    `db:"user_email"`
}
