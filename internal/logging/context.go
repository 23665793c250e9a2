package logging

import (
	"context"
	"log/slog"

	"mailroom/internal/services"
)

// ContextFields extracts standardized attributes from context annotations.
func ContextFields(ctx context.Context) []Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]Attr, 0, 3)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, String(FieldItemID, id))
	}
	if component, ok := services.ComponentFromContext(ctx); ok {
		fields = append(fields, String(FieldComponent, component))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, String(FieldRequestID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with fields derived from the
// context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
