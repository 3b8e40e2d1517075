package log

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"moneyboard/internal/core"
)

type loggerKey struct{}

// NewContext returns ctx carrying logger.
func NewContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerKey{}).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: ComponentApp}
}

// Middleware puts logger on every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware tags the context logger with the ID extract returns.
// Requests without an ID keep the untagged logger.
func RequestIDMiddleware(extract func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := extract(r)
			if id == "" {
				next.ServeHTTP(w, r)
				return
			}
			logger := FromContext(r.Context()).With(FieldRequestID, id)
			next.ServeHTTP(w, r.WithContext(NewContext(r.Context(), logger)))
		})
	}
}

// StructuredLogger writes the ledger's audit trail: one line per change to a
// category or transaction, and one per failed change.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	if logger == nil {
		logger = Discard()
	}
	return &StructuredLogger{logger: logger}
}

// LogTransactionChanged records a successful create, update or delete.
func (sl *StructuredLogger) LogTransactionChanged(ctx context.Context, op, kind string, id int64, amount string, categoryID int64) {
	fields := NewFields().
		WithTransaction(kind, id, amount, categoryID).
		WithOperation(op).
		WithComponent(ComponentService)
	sl.logger.Fields(ctx, slog.LevelInfo, "Transaction "+op+"d", fields)
}

// LogCategoryChanged records a category change. name is empty for deletes.
func (sl *StructuredLogger) LogCategoryChanged(ctx context.Context, op string, id int64, name string) {
	fields := NewFields().
		With(FieldCategoryID, id).
		WithOperation(op).
		WithComponent(ComponentService)
	if name != "" {
		fields = fields.With("name", name)
	}
	sl.logger.Fields(ctx, slog.LevelInfo, "Category "+op+"d", fields)
}

// LogError records a failed operation. Validation and not-found failures are
// logged at warn since they are caller mistakes.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component string, operation string, fields LogFields) {
	if fields == nil {
		fields = NewFields()
	}
	errType := ErrorTypeOf(err)
	fields = fields.
		WithError(err).
		WithErrorType(errType).
		WithOperation(operation).
		WithComponent(component)

	level := slog.LevelError
	if errType == ErrorTypeValidation || errType == ErrorTypeNotFound {
		level = slog.LevelWarn
	}
	sl.logger.Fields(ctx, level, msg, fields)
}

// ErrorTypeOf classifies err into one of the ErrorType values.
func ErrorTypeOf(err error) string {
	var malformed *core.MalformedError
	switch {
	case errors.Is(err, core.ErrNotFound):
		return ErrorTypeNotFound
	case errors.As(err, &malformed):
		return ErrorTypeMalformed
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout
	}
	for _, v := range validationErrors {
		if errors.Is(err, v) {
			return ErrorTypeValidation
		}
	}
	return ErrorTypeInternal
}

var validationErrors = []error{
	core.ErrInvalidDate, core.ErrInvalidDay, core.ErrInvalidMonth, core.ErrInvalidAmount,
	core.ErrEmptyDescription, core.ErrDescriptionLong, core.ErrEmptyCategory,
	core.ErrUnknownCategory, core.ErrEmptyName,
}
