// Package health aggregates dependency checks for the health endpoint.
package health

import "context"

// Health statuses.
const (
	Healthy  = "healthy"
	Degraded = "degraded"
)

// Pinger checks database liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks model API availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}

// Report is the aggregated health state.
type Report struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Service runs the dependency checks.
type Service struct {
	db    Pinger
	model ModelChecker
}

// New creates a health service. model may be nil to skip the model check.
func New(db Pinger, model ModelChecker) *Service {
	return &Service{db: db, model: model}
}

// Check pings each dependency. A database failure degrades the service;
// the model check is informational only.
func (s *Service) Check(ctx context.Context) Report {
	report := Report{Status: Healthy, Checks: map[string]string{}}

	if err := s.db.Ping(ctx); err != nil {
		report.Status = Degraded
		report.Checks["database"] = "error: " + err.Error()
	} else {
		report.Checks["database"] = "ok"
	}

	if s.model != nil {
		if err := s.model.HealthCheck(ctx); err != nil {
			report.Checks["model"] = "error: " + err.Error()
		} else {
			report.Checks["model"] = "ok"
		}
	}

	return report
}
