package prometheus

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	c := newTestCollector(t)
	return NewAppMetrics(c), c
}

func TestNewAppMetrics_AllMetricsRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	require.NotNil(t, m)

	assert.NotNil(t, m.MoleculesLoadedTotal)
	assert.NotNil(t, m.AddFailuresTotal)
	assert.NotNil(t, m.PairsComputedTotal)
	assert.NotNil(t, m.RunDuration)
	assert.NotNil(t, m.CacheHitsTotal)
	assert.NotNil(t, m.ReportsPublished)
}

func TestRecordLoad(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordLoad(m, "testdata/set1.smi", "query", 9, 1, 50*time.Millisecond)
	RecordLoad(m, "s3://bucket/set2.smi", "reference", 10, 0, 50*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_molecules_loaded_total{source="file"} 9`)
	assert.Contains(t, output, `test_unit_add_failures_total{source="file"} 1`)
	assert.Contains(t, output, `test_unit_molecules_loaded_total{source="s3"} 10`)
	assert.Contains(t, output, `test_unit_set_size{role="reference"} 10`)
	assert.Contains(t, output, `test_unit_source_load_duration_seconds_count{source="s3"} 1`)
}

func TestRecordRun_Success(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordRun(m, "inter", 100, 2*time.Second, nil)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_runs_total{mode="inter",status="success"} 1`)
	assert.Contains(t, output, `test_unit_pairs_computed_total{mode="inter"} 100`)
	assert.Contains(t, output, `test_unit_run_duration_seconds_sum{mode="inter"} 2`)
	assert.Contains(t, output, `test_unit_last_run_timestamp_seconds{mode="inter"}`)
}

func TestRecordRun_Failure(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordRun(m, "intra", 100, time.Second, errors.New("cancelled"))

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_runs_total{mode="intra",status="failure"} 1`)
	assert.NotContains(t, output, `test_unit_pairs_computed_total{mode="intra"}`)
}

func TestRecordCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordCacheAccess(m, "report", true)
	RecordCacheAccess(m, "report", false)
	RecordCacheAccess(m, "report", false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_cache_hits_total{cache="report"} 1`)
	assert.Contains(t, output, `test_unit_cache_misses_total{cache="report"} 2`)
}

func TestRecordPublishAndError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordPublish(m, "json")
	RecordError(m, "cache", "read")

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `test_unit_reports_published_total{format="json"} 1`)
	assert.Contains(t, output, `test_unit_errors_total{component="cache",error_type="read"} 1`)
}

func TestSourceKind(t *testing.T) {
	assert.Equal(t, "stdin", sourceKind("-"))
	assert.Equal(t, "s3", sourceKind("s3://b/k"))
	assert.Equal(t, "chembl", sourceKind("chembl:CHEMBL25"))
	assert.Equal(t, "file", sourceKind("/tmp/a.smi"))
}

//Personal.AI order the ending
