package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"

	"verleih/pkg/metrics"
)

// Metrics records request durations labelled by the matched route pattern,
// so path parameters do not explode label cardinality.
func Metrics(router *httprouter.Router) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			metrics.HTTPRequestDuration.
				WithLabelValues(r.Method, routeOf(router, r), strconv.Itoa(wrapped.statusCode)).
				Observe(time.Since(start).Seconds())
		})
	}
}

func routeOf(router *httprouter.Router, r *http.Request) string {
	if router == nil {
		return "unmatched"
	}
	handle, ps, _ := router.Lookup(r.Method, r.URL.Path)
	if handle == nil {
		return "unmatched"
	}

	route := r.URL.Path
	for _, p := range ps {
		route = strings.Replace(route, "/"+p.Value, "/:"+p.Key, 1)
	}
	return route
}
