package telemetry_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/b2breeze/internal/telemetry"
)

func TestProvider_Record(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()
	m := p.Metrics

	p.RecordStage(telemetry.StageOCR, nil, 120*time.Millisecond)
	p.RecordStage(telemetry.StageOCR, errors.New("boom"), time.Second)
	p.RecordExtraction([]string{"name", "email"}, 0.4, true)
	p.RecordIngest("duplicate")
	p.SetQueueDepth(3)
	done := p.WorkerStarted()

	assert.InDelta(t, 1, testutil.ToFloat64(m.StageTotal.WithLabelValues(telemetry.StageOCR, "ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.StageTotal.WithLabelValues(telemetry.StageOCR, "error")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FieldsFound.WithLabelValues("email")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.NeedsReview), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.FilesIngested.WithLabelValues("duplicate")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.QueueDepth), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.ActiveWorkers), 0)
	done()
	assert.InDelta(t, 0, testutil.ToFloat64(m.ActiveWorkers), 0)
}

func TestProvider_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a, b := telemetry.NewProvider(), telemetry.NewProvider()
	a.RecordIngest("new")

	assert.InDelta(t, 0, testutil.ToFloat64(b.Metrics.FilesIngested.WithLabelValues("new")), 0)
}

func TestProvider_NilIsNoop(t *testing.T) {
	t.Parallel()

	var p *telemetry.Provider
	p.RecordStage(telemetry.StageParse, nil, time.Millisecond)
	p.RecordExtraction([]string{"name"}, 1, false)
	p.RecordIngest("new")
	p.SetQueueDepth(1)
	p.WorkerStarted()()
}

func TestProvider_Handler(t *testing.T) {
	t.Parallel()
	p := telemetry.NewProvider()
	p.RecordIngest("new")

	rec := httptest.NewRecorder()
	p.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `b2breeze_files_ingested_total{result="new"} 1`))
}
