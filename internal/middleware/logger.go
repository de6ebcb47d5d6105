package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// RequestLogger logs one line per request with status, size and latency.
// Request bodies are never logged.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		defer func() {
			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimw.GetReqID(r.Context()),
			}
			switch {
			case ww.Status() >= http.StatusInternalServerError:
				slog.Error("request", attrs...)
			case ww.Status() >= http.StatusBadRequest:
				slog.Warn("request", attrs...)
			default:
				slog.Info("request", attrs...)
			}
		}()

		next.ServeHTTP(ww, r)
	})
}
