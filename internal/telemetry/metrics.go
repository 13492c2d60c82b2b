package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the pipeline counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	sourceAttempts *prometheus.CounterVec
	resolutions    *prometheus.CounterVec
	writes         *prometheus.CounterVec
	runs           *prometheus.CounterVec
}

// NewMetrics registers the pipeline collectors on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksmarthub_image_cache_lookups_total",
			Help: "Image cache lookups by result (hit, negative_hit, miss).",
		}, []string{"result"}),
		sourceAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksmarthub_image_source_attempts_total",
			Help: "Image source attempts by source and result (found, none, error).",
		}, []string{"source", "result"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksmarthub_image_resolutions_total",
			Help: "Finished image resolutions by outcome (resolved, unresolved).",
		}, []string{"outcome"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksmarthub_image_writes_total",
			Help: "Image reference writes by target (dataset, database) and result.",
		}, []string{"target", "result"}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stocksmarthub_image_runs_total",
			Help: "Image runs by result (success, no_progress, error).",
		}, []string{"result"}),
	}
	reg.MustRegister(m.cacheLookups, m.sourceAttempts, m.resolutions, m.writes, m.runs)
	return m
}

func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) SourceAttempt(source, result string) {
	if m == nil {
		return
	}
	m.sourceAttempts.WithLabelValues(source, result).Inc()
}

func (m *Metrics) Resolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

func (m *Metrics) Write(target, result string) {
	if m == nil {
		return
	}
	m.writes.WithLabelValues(target, result).Inc()
}

func (m *Metrics) Run(result string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(result).Inc()
}
