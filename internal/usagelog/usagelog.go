// Package usagelog writes the per-request audit line: who asked which
// endpoint with which parameters, and what came back.
package usagelog

import (
	"net/http"

	"go.uber.org/zap"
)

// Logger writes usage and error lines.
type Logger struct {
	log *zap.Logger
}

// New creates a usage logger writing through l.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}
	return &Logger{log: l.Named("usage")}
}

// Usage records a successful request with the parameters actually applied.
func (u *Logger) Usage(r *http.Request, params map[string]string, hits int) {
	u.log.Info("request served",
		zap.String("endpoint", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
		zap.Any("params", params),
		zap.Int("hits", hits),
	)
}

// Error records a failed request.
func (u *Logger) Error(r *http.Request, msg string) {
	u.log.Error("request failed",
		zap.String("endpoint", r.URL.Path),
		zap.String("remote_addr", r.RemoteAddr),
		zap.String("error", msg),
	)
}
