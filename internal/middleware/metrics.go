// AngelaMos | 2026
// metrics.go

package middleware

import (
	"net/http"
	"strconv"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/steamybeans/api/internal/core"
)

// Metrics records request counts and latency labelled by route pattern,
// never by raw path, to keep label cardinality bounded.
func Metrics(m *core.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			inFlight := m.InFlight.WithLabelValues(r.Method)
			inFlight.Inc()
			defer inFlight.Dec()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := routePattern(r)
			code := strconv.Itoa(status)

			m.RequestsTotal.WithLabelValues(r.Method, route, code).Inc()
			m.RequestsDuration.WithLabelValues(r.Method, route, code).
				Observe(time.Since(start).Seconds())
		})
	}
}
