package health

import (
	"context"
	"time"

	corehealth "3tcapital/ms_numeracion_core/internal/core/health"
)

// Metadata contains immutable metadata about the running service.
type Metadata struct {
	Service     string
	Version     string
	Environment string
}

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service exposes health-check use cases to adapters.
type Service struct {
	meta      Metadata
	startedAt time.Time
	deps      map[string]Pinger
}

func NewService(meta Metadata) *Service {
	return &Service{
		meta:      meta,
		startedAt: time.Now().UTC(),
		deps:      make(map[string]Pinger),
	}
}

// WithDependency registers a dependency checked on every Status call.
func (s *Service) WithDependency(name string, p Pinger) *Service {
	if s.deps == nil {
		s.deps = make(map[string]Pinger)
	}
	s.deps[name] = p
	return s
}

// Status returns the current availability snapshot. The service reports
// DEGRADED when any registered dependency fails its ping.
func (s *Service) Status(ctx context.Context) corehealth.Status {
	uptime := time.Since(s.startedAt)
	status := corehealth.Status{
		Service:     s.meta.Service,
		Version:     s.meta.Version,
		Environment: s.meta.Environment,
		Status:      "UP",
		StartedAt:   s.startedAt,
		Uptime:      uptime.String(),
		UptimeSecs:  int64(uptime.Seconds()),
	}

	if len(s.deps) == 0 {
		return status
	}

	status.Dependencies = make(map[string]string, len(s.deps))
	for name, dep := range s.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			status.Dependencies[name] = "DOWN"
			status.Status = "DEGRADED"
			continue
		}
		status.Dependencies[name] = "UP"
	}
	return status
}
