package chi

import (
	"context"
	"net/http"

	"github.com/naturalis/museumapp-api/internal/metrics"
	"github.com/naturalis/museumapp-api/internal/usagelog"
	"github.com/naturalis/museumapp-api/internal/usecase/availability"
)

// Gatekeeper decides whether a request may proceed.
type Gatekeeper interface {
	Check(ctx context.Context) availability.Decision
}

// GateMiddleware rejects requests while documents are busy or the service is unavailable.
// Rejections keep status 200. Only unavailability is written to the usage log.
func GateMiddleware(g Gatekeeper, usage *usagelog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := g.Check(r.Context())
			switch d {
			case availability.Open:
				next.ServeHTTP(w, r)
				return
			case availability.Unavailable:
				usage.Error(r, d.Err().Error())
			}
			metrics.GateRejectionsTotal.WithLabelValues(d.String()).Inc()
			writeError(w, http.StatusOK, d.Err().Error())
		})
	}
}
