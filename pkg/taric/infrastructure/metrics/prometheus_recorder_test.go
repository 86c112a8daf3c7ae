package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func family(t *testing.T, r *PrometheusRecorder, name string) *dto.MetricFamily {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == name {
			return f
		}
	}
	t.Fatalf("metric %s not gathered", name)
	return nil
}

func label(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestRecorderCounters(t *testing.T) {
	r := NewPrometheusRecorder()
	r.RecordChunks("seed.xml", 3)
	r.RecordChunks("seed.xml", 2)
	r.RecordChunkStatus("DONE")
	r.RecordChunkStatus("DONE")
	r.RecordChunkStatus("ERRORED")
	r.RecordIssue("ERROR", "quota.order.number")
	r.RecordBatchStatus("SUCCEEDED")

	chunks := family(t, r, "taric_chunks_written_total").GetMetric()
	require.Len(t, chunks, 1)
	assert.Equal(t, "seed.xml", label(chunks[0], "batch"))
	assert.Equal(t, 5.0, chunks[0].GetCounter().GetValue())

	byStatus := map[string]float64{}
	for _, m := range family(t, r, "taric_chunk_status_total").GetMetric() {
		byStatus[label(m, "status")] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"DONE": 2, "ERRORED": 1}, byStatus)

	issues := family(t, r, "taric_import_issues_total").GetMetric()
	require.Len(t, issues, 1)
	assert.Equal(t, "quota.order.number", label(issues[0], "object_type"))
}

func TestRecorderHistograms(t *testing.T) {
	r := NewPrometheusRecorder()
	r.ObserveImport("SUCCEEDED", 4, 250*time.Millisecond)
	r.ObserveCommit("committed", time.Second)

	imports := family(t, r, "taric_import_duration_seconds").GetMetric()
	require.Len(t, imports, 1)
	assert.EqualValues(t, 1, imports[0].GetHistogram().GetSampleCount())
	assert.InDelta(t, 0.25, imports[0].GetHistogram().GetSampleSum(), 1e-9)

	messages := family(t, r, "taric_import_messages_total").GetMetric()
	require.Len(t, messages, 1)
	assert.Equal(t, 4.0, messages[0].GetCounter().GetValue())

	commits := family(t, r, "taric_commit_duration_seconds").GetMetric()
	require.Len(t, commits, 1)
	assert.Equal(t, "committed", label(commits[0], "outcome"))
}

func TestHandlerExposesMetrics(t *testing.T) {
	r := NewPrometheusRecorder()
	r.RecordBatchStatus("FAILED")

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `taric_batch_status_total{status="FAILED"} 1`)
}
