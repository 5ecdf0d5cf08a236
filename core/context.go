package core

import (
	"context"
	"time"
)

// Context keys for analysis options
type contextKey string

const (
	suppressHeaderKey contextKey = "suppressHeader"
	referenceTimeKey  contextKey = "referenceTime"
)

// WithSuppressHeader marks the context so executors skip their progress header.
func WithSuppressHeader(ctx context.Context) context.Context {
	return context.WithValue(ctx, suppressHeaderKey, true)
}

// shouldSuppressHeader returns whether headers should be suppressed from context
func shouldSuppressHeader(ctx context.Context) bool {
	suppress, ok := ctx.Value(suppressHeaderKey).(bool)
	return ok && suppress
}

// WithReferenceTime pins the "today" used for heatmap windows.
func WithReferenceTime(ctx context.Context, ref time.Time) context.Context {
	return context.WithValue(ctx, referenceTimeKey, ref)
}

// referenceTime returns the pinned reference time, or the current time.
func referenceTime(ctx context.Context) time.Time {
	if ref, ok := ctx.Value(referenceTimeKey).(time.Time); ok && !ref.IsZero() {
		return ref.UTC()
	}
	return time.Now().UTC()
}
