package logging

import (
	"context"
	"log/slog"
)

// Context keys for common log fields.
type contextKey string

const (
	// RequestIDKey is the context key for request IDs.
	RequestIDKey contextKey = "request_id"

	// StudentIDKey is the context key for the student a request concerns.
	StudentIDKey contextKey = "mssv"
)

// WithRequestID adds a request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// GetRequestID retrieves the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}

// WithStudentID adds a student id to the context.
func WithStudentID(ctx context.Context, studentID string) context.Context {
	return context.WithValue(ctx, StudentIDKey, studentID)
}

// GetStudentID retrieves the student id from the context.
func GetStudentID(ctx context.Context) string {
	if id, ok := ctx.Value(StudentIDKey).(string); ok {
		return id
	}
	return ""
}

// contextAttrs extracts common fields from context for logging.
func contextAttrs(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}

	var attrs []slog.Attr
	if requestID := GetRequestID(ctx); requestID != "" {
		attrs = append(attrs, slog.String(string(RequestIDKey), requestID))
	}
	if id := GetStudentID(ctx); id != "" {
		attrs = append(attrs, slog.String(string(StudentIDKey), id))
	}
	return attrs
}
