package server

import (
	"context"
	"time"
)

// SystemStatus represents the overall health state of the daemon or a
// component.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ComponentHealth is the state of one dependency.
type ComponentHealth struct {
	Status SystemStatus `json:"status"`
	Detail string       `json:"detail,omitempty"`
}

// HealthReport contains the full daemon health report.
type HealthReport struct {
	SystemStatus SystemStatus               `json:"system_status"`
	Components   map[string]ComponentHealth `json:"components"`
}

// Pinger is implemented by optional backends such as the diagnostics store.
type Pinger interface {
	Ping(ctx context.Context) error
}

func (s *Server) checkHealth(ctx context.Context) HealthReport {
	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth),
	}

	active := len(s.cfg.Registry.Active())
	switch {
	case active == 0:
		report.Components["rules"] = ComponentHealth{Status: StatusCritical, Detail: "no active rules"}
	default:
		report.Components["rules"] = ComponentHealth{Status: StatusHealthy}
	}

	if s.cfg.Pinger != nil {
		ctx, cancel := context.WithTimeout(ctx, time.Second)
		defer cancel()
		if err := s.cfg.Pinger.Ping(ctx); err != nil {
			report.Components["diagnostics"] = ComponentHealth{Status: StatusDegraded, Detail: err.Error()}
		} else {
			report.Components["diagnostics"] = ComponentHealth{Status: StatusHealthy}
		}
	}

	// Aggregate status (worst case wins)
	for _, c := range report.Components {
		if c.Status == StatusCritical {
			report.SystemStatus = StatusCritical
			break
		}
		if c.Status == StatusDegraded {
			report.SystemStatus = StatusDegraded
		}
	}
	return report
}
