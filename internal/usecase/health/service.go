package health

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckTimeout bounds each component probe.
const DefaultCheckTimeout = 3 * time.Second

// Component names in Report.Checks.
const (
	ComponentDatabase = "database"
	ComponentLLM      = "llm"
)

// Status is the aggregated health.
type Status string

const (
	Healthy   Status = "ok"
	Degraded  Status = "degraded" // store up, chat provider down: ingestion and search still work
	Unhealthy Status = "error"    // store down
)

// Serving reports whether ingestion and search can be served.
func (s Status) Serving() bool { return s != Unhealthy }

// CheckResult is one component outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Report is the outcome of one Check call. The llm entry is absent when chat is not configured.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

type probe struct {
	name string
	fn   func(ctx context.Context) error
}

// Service probes the store and, when configured, the completion provider.
type Service struct {
	probes  []probe
	timeout time.Duration
}

// New creates a Service. llm can be nil when chat is not configured.
func New(db DBPinger, llm LLMChecker) *Service {
	s := &Service{
		probes:  []probe{{name: ComponentDatabase, fn: db.Ping}},
		timeout: DefaultCheckTimeout,
	}
	if llm != nil {
		s.probes = append(s.probes, probe{name: ComponentLLM, fn: llm.HealthCheck})
	}
	return s
}

// WithTimeout overrides the per-component probe timeout.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check probes every component concurrently. A slow provider cannot stall the
// report past the probe timeout.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.probes))

	var wg sync.WaitGroup
	for i, p := range s.probes {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := p.fn(pctx); err != nil {
				results[i] = CheckError
			}
		}()
	}
	wg.Wait()

	checks := make(map[string]CheckResult, len(s.probes))
	for i, p := range s.probes {
		checks[p.name] = results[i]
	}

	status := Healthy
	switch {
	case checks[ComponentDatabase] == CheckError:
		status = Unhealthy
	case checks[ComponentLLM] == CheckError:
		status = Degraded
	}
	return Report{Status: status, Checks: checks}
}
