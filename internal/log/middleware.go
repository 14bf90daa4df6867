package log

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// RequestID returns the id assigned to the request carried by ctx
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// Middleware assigns each request an id, stores a request-scoped logger in
// the context and logs the completed request.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	logger = logger.WithComponent(ComponentHTTP)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			reqLogger := logger.With(FieldRequestID, id)
			ctx := context.WithValue(r.Context(), requestIDKey{}, id)
			ctx = NewContext(ctx, reqLogger)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := slog.LevelInfo
			if status >= 500 {
				level = slog.LevelError
			} else if status >= 400 {
				level = slog.LevelWarn
			}

			reqLogger.Log(ctx, level, "HTTP request completed",
				FieldMethod, r.Method,
				FieldPath, r.URL.Path,
				FieldQuery, r.URL.RawQuery,
				FieldStatus, status,
				FieldBytes, ww.BytesWritten(),
				FieldDurationMs, time.Since(start).Milliseconds(),
			)
		})
	}
}
