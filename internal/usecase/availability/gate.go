package availability

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// Decision is the outcome of a pre-request check.
type Decision int

const (
	// Open lets the request through.
	Open Decision = iota
	// Busy rejects the request while documents are being reloaded.
	Busy
	// Unavailable rejects the request because the service is unconfigured or the engine is down.
	Unavailable
)

func (d Decision) String() string {
	switch d {
	case Open:
		return "open"
	case Busy:
		return "busy"
	case Unavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Err maps a rejecting decision to its domain error. Open yields nil.
func (d Decision) Err() error {
	switch d {
	case Busy:
		return domain.ErrDocumentsBusy
	case Unavailable:
		return domain.ErrServiceUnavailable
	default:
		return nil
	}
}

// DefaultProbeTimeout bounds each status read and liveness probe.
const DefaultProbeTimeout = 5 * time.Second

// Option configures a Gate.
type Option func(*Gate)

// WithoutStatusPolling skips the documents status read; only configuration
// and liveness decide.
func WithoutStatusPolling() Option {
	return func(g *Gate) { g.pollStatus = false }
}

// WithProbeTimeout overrides DefaultProbeTimeout. Non-positive values are ignored.
func WithProbeTimeout(d time.Duration) Option {
	return func(g *Gate) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// Gate decides per request whether the service may answer.
// configured starts true and, once cleared, stays cleared.
type Gate struct {
	status     StatusReader
	engine     Pinger
	logger     *zap.Logger
	pollStatus bool
	timeout    time.Duration
	configured atomic.Bool
}

// New creates a gate. status may be nil when polling is disabled.
func New(status StatusReader, engine Pinger, logger *zap.Logger, opts ...Option) *Gate {
	if logger == nil {
		logger = zap.NewNop()
	}
	g := &Gate{status: status, engine: engine, logger: logger, pollStatus: true, timeout: DefaultProbeTimeout}
	for _, o := range opts {
		o(g)
	}
	if g.status == nil {
		g.pollStatus = false
	}
	g.configured.Store(true)
	return g
}

// MarkUnconfigured clears the configured flag for the life of the process.
func (g *Gate) MarkUnconfigured(reason string) {
	if g.configured.Swap(false) {
		g.logger.Error("Service marked unavailable", zap.String("reason", reason))
	}
}

// Configured reports whether startup checks passed.
func (g *Gate) Configured() bool { return g.configured.Load() }

// Check runs the busy check first, then configuration and a fresh liveness probe.
// A failed probe rejects only this request.
func (g *Gate) Check(ctx context.Context) Decision {
	if g.pollStatus && g.documentsStatus(ctx) != domain.StatusReady {
		return Busy
	}
	if !g.configured.Load() {
		return Unavailable
	}
	pctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	if err := g.engine.Ping(pctx); err != nil {
		g.logger.Warn("Engine liveness probe failed", zap.Error(err))
		return Unavailable
	}
	return Open
}

// documentsStatus fails open: any read error counts as ready.
func (g *Gate) documentsStatus(ctx context.Context) domain.DocumentsStatus {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	st, err := g.status.Get(ctx)
	if err != nil {
		g.logger.Error("Documents status unreadable, assuming ready", zap.Error(err))
		return domain.StatusReady
	}
	return st
}
