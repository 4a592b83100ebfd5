package usecase

import (
	"context"
	"time"
)

const healthCheckTimeout = 2 * time.Second

// HealthCheck probes one backing service.
type HealthCheck func(ctx context.Context) error

type HealthUsecase interface {
	// Check runs every probe and reports per-service status. ok is false
	// when any probe failed.
	Check(ctx context.Context) (status map[string]string, ok bool)
}

type healthUsecase struct {
	checks map[string]HealthCheck
}

func NewHealthUsecase(checks map[string]HealthCheck) HealthUsecase {
	return &healthUsecase{checks: checks}
}

func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	status := map[string]string{"status": "ok"}
	ok := true
	for name, check := range u.checks {
		if check == nil {
			status[name] = "disabled"
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		err := check(cctx)
		cancel()
		if err != nil {
			status[name] = "down"
			ok = false
			continue
		}
		status[name] = "up"
	}
	if !ok {
		status["status"] = "degraded"
	}
	return status, ok
}
