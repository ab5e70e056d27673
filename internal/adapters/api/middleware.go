package api

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/linkgate/internal/infrastructure/metrics"
)

type contextKey string

const (
	CtxCredential contextKey = "credential"
	CtxRequestID  contextKey = "request_id"
)

// CredentialFromContext returns the raw credential stored by CredentialMiddleware.
func CredentialFromContext(ctx context.Context) string {
	cred, _ := ctx.Value(CtxCredential).(string)
	return cred
}

// CredentialMiddleware stores the caller's credential in the request context.
// The Authorization header carries the raw key; a "Bearer " prefix is accepted.
// A missing header is not rejected here: whether a credential is needed
// depends on the records being looked up.
func CredentialMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cred := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(cred) > 7 && strings.EqualFold(cred[:7], "bearer ") {
			cred = strings.TrimSpace(cred[7:])
		}

		ctx := context.WithValue(r.Context(), CtxCredential, cred)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestMiddleware assigns a request id, logs each request and counts it.
// Headers that may carry credentials are never logged.
func RequestMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := r.Header.Get("X-Request-ID")
			if reqID == "" {
				reqID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", reqID)
			ctx := context.WithValue(r.Context(), CtxRequestID, reqID)
			r = r.WithContext(ctx)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()

			logger.InfoContext(ctx, "request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
