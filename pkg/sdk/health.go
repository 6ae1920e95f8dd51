package docdex

import (
	"context"
	"errors"
	"time"

	healthuc "github.com/kailas-cloud/docdex/internal/usecase/health"
)

var errStoreUnreachable = errors.New("store unreachable")

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// HealthStatus is the outcome of Health.
//
// Status is "ok", "degraded" when only the completion provider failed, or "error"
// when the store is unreachable. Checks maps "database" and, when chat is
// configured, "llm" to "ok" or "error".
type HealthStatus struct {
	Status string
	Checks map[string]string
}

// Serving reports whether ingestion and search work. A degraded client still serves.
func (h HealthStatus) Serving() bool {
	return healthuc.Status(h.Status).Serving()
}

// Health probes the store and the completion provider.
func (c *Client) Health(ctx context.Context) HealthStatus {
	start := time.Now()
	report := c.healthSvc.Check(ctx)

	out := HealthStatus{Status: string(report.Status), Checks: make(map[string]string, len(report.Checks))}
	for name, res := range report.Checks {
		out.Checks[name] = string(res)
	}
	var err error
	if !out.Serving() {
		err = errStoreUnreachable
	}
	c.obs.observe("health", start, err)
	return out
}
