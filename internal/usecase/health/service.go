package health

import (
	"context"

	"github.com/naturalis/museumapp-api/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot answer at all.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckBusy indicates documents are being reloaded.
	CheckBusy CheckResult = "busy"
	// CheckUnknown indicates the control record could not be read.
	CheckUnknown CheckResult = "unknown"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine EnginePinger
	status StatusReader
	config ConfigChecker
}

// New creates a Service. status and config can be nil.
func New(engine EnginePinger, status StatusReader, config ConfigChecker) *Service {
	return &Service{engine: engine, status: status, config: config}
}

// Check runs health checks against all components.
// A busy or unreadable documents status is reported but never degrades the service.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.config != nil {
		if s.config.Configured() {
			checks["config"] = CheckOK
		} else {
			checks["config"] = CheckError
		}
	}

	if err := s.engine.Ping(ctx); err != nil {
		checks["engine"] = CheckError
	} else {
		checks["engine"] = CheckOK
	}

	if s.status != nil {
		st, err := s.status.Get(ctx)
		switch {
		case err != nil:
			checks["documents"] = CheckUnknown
		case st == domain.StatusBusy:
			checks["documents"] = CheckBusy
		default:
			checks["documents"] = CheckOK
		}
	}

	status := Healthy
	if checks["engine"] == CheckError {
		status = Degraded
	}
	if checks["config"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
