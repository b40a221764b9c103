package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const HEALTHCHECK_TIMER = 15

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// ClassifierHealth tracks the last health check of the sentiment backend. It
// is informational and never gates an analysis.
type ClassifierHealth struct {
	healthy atomic.Bool
	checker HealthChecker
	metrics *Metrics
	period  time.Duration
}

func NewClassifierHealth(checker HealthChecker, metrics *Metrics) *ClassifierHealth {
	h := &ClassifierHealth{
		checker: checker,
		metrics: metrics,
		period:  time.Second * HEALTHCHECK_TIMER,
	}
	h.healthy.Store(true)
	return h
}

func (h *ClassifierHealth) Healthy() bool {
	return h.healthy.Load()
}

// Check runs one health check and stores the result.
func (h *ClassifierHealth) Check(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, h.period)
	defer cancel()

	isHealthy := h.checker.HealthCheck(ctx)
	h.healthy.Store(isHealthy)
	if h.metrics != nil {
		if isHealthy {
			h.metrics.ClassifierHealthy.Set(1)
		} else {
			h.metrics.ClassifierHealthy.Set(0)
		}
	}
	if !isHealthy {
		slog.Warn("[HealthCheck] Classifier is unhealthy")
	}
	return isHealthy
}

// Monitor checks on a ticker until ctx is done.
func (h *ClassifierHealth) Monitor(ctx context.Context) {
	h.Check(ctx)

	ticker := time.NewTicker(h.period)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.Check(ctx)
		}
	}
}
