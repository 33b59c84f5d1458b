package prometheus

import (
	"strings"
	"time"
)

// AppMetrics holds the metrics recorded by one chemsim run.
type AppMetrics struct {
	// Inputs
	MoleculesLoadedTotal CounterVec
	AddFailuresTotal     CounterVec
	SourceLoadDuration   HistogramVec
	SetSize              GaugeVec

	// Similarity
	PairsComputedTotal CounterVec
	RunDuration        HistogramVec
	RunsTotal          CounterVec

	// Infrastructure
	CacheHitsTotal   CounterVec
	CacheMissesTotal CounterVec
	ReportsPublished CounterVec
	LastRunTimestamp GaugeVec
	ErrorsTotal      CounterVec
}

// Default Buckets
var (
	DefaultLoadDurationBuckets = []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60}
	DefaultRunDurationBuckets  = []float64{.001, .01, .1, .5, 1, 5, 10, 60, 300, 1800}
)

// NewAppMetrics registers all metrics and returns AppMetrics struct.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	m.MoleculesLoadedTotal = collector.RegisterCounter("molecules_loaded_total", "Structures accepted into a set", "source")
	m.AddFailuresTotal = collector.RegisterCounter("add_failures_total", "Structures rejected while loading a set", "source")
	m.SourceLoadDuration = collector.RegisterHistogram("source_load_duration_seconds", "Time to read and fingerprint a structure source", DefaultLoadDurationBuckets, "source")
	m.SetSize = collector.RegisterGauge("set_size", "Molecules in a loaded set", "role")

	m.PairsComputedTotal = collector.RegisterCounter("pairs_computed_total", "Pairwise similarity evaluations", "mode")
	m.RunDuration = collector.RegisterHistogram("run_duration_seconds", "Similarity report duration", DefaultRunDurationBuckets, "mode")
	m.RunsTotal = collector.RegisterCounter("runs_total", "Similarity reports produced", "mode", "status")

	m.CacheHitsTotal = collector.RegisterCounter("cache_hits_total", "Cache hits", "cache")
	m.CacheMissesTotal = collector.RegisterCounter("cache_misses_total", "Cache misses", "cache")
	m.ReportsPublished = collector.RegisterCounter("reports_published_total", "Reports uploaded to object storage", "format")
	m.LastRunTimestamp = collector.RegisterGauge("last_run_timestamp_seconds", "Unix time the last report finished", "mode")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

// sourceKind reduces a source location to a low-cardinality label.
func sourceKind(source string) string {
	switch {
	case source == "-":
		return "stdin"
	case strings.HasPrefix(source, "s3://"):
		return "s3"
	case strings.HasPrefix(source, "chembl:"):
		return "chembl"
	default:
		return "file"
	}
}

func RecordLoad(metrics *AppMetrics, source, role string, loaded, failed int, duration time.Duration) {
	kind := sourceKind(source)
	metrics.MoleculesLoadedTotal.WithLabelValues(kind).Add(float64(loaded))
	metrics.AddFailuresTotal.WithLabelValues(kind).Add(float64(failed))
	metrics.SourceLoadDuration.WithLabelValues(kind).Observe(duration.Seconds())
	metrics.SetSize.WithLabelValues(role).Set(float64(loaded))
}

func RecordRun(metrics *AppMetrics, mode string, pairs int, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	metrics.RunsTotal.WithLabelValues(mode, status).Inc()
	metrics.RunDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err == nil {
		metrics.PairsComputedTotal.WithLabelValues(mode).Add(float64(pairs))
		metrics.LastRunTimestamp.WithLabelValues(mode).Set(float64(time.Now().Unix()))
	}
}

func RecordCacheAccess(metrics *AppMetrics, cache string, hit bool) {
	if hit {
		metrics.CacheHitsTotal.WithLabelValues(cache).Inc()
	} else {
		metrics.CacheMissesTotal.WithLabelValues(cache).Inc()
	}
}

func RecordPublish(metrics *AppMetrics, format string) {
	metrics.ReportsPublished.WithLabelValues(format).Inc()
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

//Personal.AI order the ending
