package common

import (
	"context"
	"time"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRequestID contextKey = "request_id"
	ContextKeyScanJobID contextKey = "scan_job_id"
)

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext extracts the request ID from context
func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return requestID
	}
	return ""
}

func WithScanJobID(ctx context.Context, jobID string) context.Context {
	return context.WithValue(ctx, ContextKeyScanJobID, jobID)
}

func ScanJobIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyScanJobID).(string); ok {
		return id
	}
	return ""
}

// WithTimeout returns ctx unchanged (with a no-op cancel) when timeout <= 0.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, timeout)
}
