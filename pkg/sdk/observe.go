package docdex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/docdex/internal/domain"
)

// Operation outcomes. Caller mistakes are "rejected" so that "error" only counts
// store or provider failures.
const (
	outcomeOK       = "ok"
	outcomeRejected = "rejected"
	outcomeError    = "error"
)

var callerErrors = []error{
	domain.ErrInvalidQuery,
	domain.ErrInvalidDocument,
	domain.ErrUnsupportedFormat,
	domain.ErrDocumentExists,
	domain.ErrDocumentNotFound,
	domain.ErrNotFound,
	domain.ErrNotImplemented,
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	for _, target := range callerErrors {
		if errors.Is(err, target) {
			return outcomeRejected
		}
	}
	return outcomeError
}

type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	searchHits prometheus.Histogram
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docdex",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "SDK operations by name and outcome (ok, rejected, error).",
		}, []string{"operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docdex",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"operation"}),
		searchHits: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "docdex",
			Subsystem: "sdk",
			Name:      "search_hits",
			Help:      "Hits returned per SDK search.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.searchHits); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered under
// the same descriptor so that several clients can share one registry.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("docdex: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("docdex: metric already registered as %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// observer logs and meters SDK operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg != nil {
		m, err := newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one finished operation. attrs are attached to the log line only.
func (o *observer) observe(op string, start time.Time, err error, attrs ...slog.Attr) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := outcomeOf(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, outcome).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}

	attrs = append(attrs, slog.String("op", op), slog.Duration("duration", dur))
	level, msg := slog.LevelDebug, "operation completed"
	switch outcome {
	case outcomeRejected:
		level, msg = slog.LevelInfo, "operation rejected"
		attrs = append(attrs, slog.Any("error", err))
	case outcomeError:
		level, msg = slog.LevelWarn, "operation failed"
		attrs = append(attrs, slog.Any("error", err))
	}
	o.logger.LogAttrs(context.Background(), level, msg, attrs...)
}

func (o *observer) hits(n int) {
	if o == nil || o.metrics == nil {
		return
	}
	o.metrics.searchHits.Observe(float64(n))
}
