package logger

import "context"

type contextKey string

const requestIDKey contextKey = "request_id"

// WithRequestID stores the request id so gorm query logs can be correlated.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
