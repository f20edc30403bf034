package middleware

import (
	"net/http"

	"github.com/flecs-run/edge-core/pkg/logger"
)

// Recovery turns a panic in any downstream handler into a 500 response
// instead of crashing the process, logging the recovered value.
func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.WithField("panic", rec).Error("recovered from panic")
					w.WriteHeader(http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
