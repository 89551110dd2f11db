package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	apperrors "verleih/pkg/errors"
	httputil "verleih/pkg/http"
	"verleih/pkg/logger"
	"verleih/pkg/metrics"
)

// Recovery turns a handler panic into a 500 AppError response. A panic inside
// a rental transaction leaves the depot lock to expire through its TTL.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				metrics.OperationErrorsTotal.WithLabelValues("panic").Inc()
				log.Error("Panic recovered",
					"request_id", RequestID(r.Context()),
					"actor", r.Header.Get(httputil.ActorHeader),
					"error", rec,
					"method", r.Method,
					"path", r.URL.Path,
					"stack", string(debug.Stack()),
				)

				err := apperrors.Internal("Internal server error", fmt.Errorf("panic: %v", rec))
				if writeErr := httputil.WriteError(w, err); writeErr != nil {
					log.Error("failed to write panic response", "error", writeErr)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
