package monitoring

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spacesedan/commentscope/internal/errs"
	"github.com/spacesedan/commentscope/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_ObserveFailure(t *testing.T) {
	m := NewMetrics()

	m.ObserveFailure(errs.Unavailable("youtube", 403, nil, nil))
	m.ObserveFailure(errs.Malformed("huggingface", nil, errors.New("bad")))
	m.ObserveFailure(errors.New("not upstream"))
	m.ObserveFailure(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues("youtube", "unavailable")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UpstreamFailures.WithLabelValues("huggingface", "malformed")))
}

func TestMetrics_ObserveStep(t *testing.T) {
	m := NewMetrics()

	m.ObserveStep("sentiment", models.StepReport{Status: models.StepFailed}, time.Second)
	m.ObserveStep("sentiment", models.StepReport{Status: models.StepFailed}, time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.AnalysesTotal.WithLabelValues("sentiment", "failed")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStep("fetch", models.StepReport{Status: models.StepOK}, 0)
		m.ObserveComments(3)
		m.ObserveFailure(errs.Unavailable("youtube", 0, nil, nil))
		m.ObserveRequest(http.MethodGet, "/", 200, 0)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveComments(42)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "commentscope_comments_fetched_count 1")
}

type stubChecker struct {
	healthy atomic.Bool
}

func (s *stubChecker) HealthCheck(context.Context) bool {
	return s.healthy.Load()
}

func TestClassifierHealth_Check(t *testing.T) {
	checker := &stubChecker{}
	m := NewMetrics()
	health := NewClassifierHealth(checker, m)

	assert.True(t, health.Healthy(), "healthy until proven otherwise")

	assert.False(t, health.Check(context.Background()))
	assert.False(t, health.Healthy())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ClassifierHealthy))

	checker.healthy.Store(true)
	assert.True(t, health.Check(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierHealthy))
}

func TestClassifierHealth_MonitorStops(t *testing.T) {
	health := NewClassifierHealth(&stubChecker{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		health.Monitor(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor did not stop after cancel")
	}
}
