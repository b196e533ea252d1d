package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "theseus"

// Registry holds the planning run metrics.
type Registry struct {
	RunsTotal           *prometheus.CounterVec
	PathsEnumerated     prometheus.Gauge
	PathsRanked         prometheus.Gauge
	GraphEdges          prometheus.Gauge
	GraphAssets         prometheus.Gauge
	EnumerationDuration prometheus.Histogram
	TopUtility          prometheus.Gauge

	registry *prometheus.Registry
}

// NewRegistry creates a registry with every planner metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Planning runs by final status",
		}, []string{"status"}),
		PathsEnumerated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paths_enumerated",
			Help:      "Candidate paths found by the last enumeration",
		}),
		PathsRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "paths_ranked",
			Help:      "Paths kept after top-k truncation in the last run",
		}),
		GraphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Technique edges in the last planned graph",
		}),
		GraphAssets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_assets",
			Help:      "Assets in the last planned graph",
		}),
		EnumerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "enumeration_duration_seconds",
			Help:      "Path enumeration latency",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		TopUtility: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "top_utility",
			Help:      "Utility of the best ranked path in the last run",
		}),
		registry: prometheus.NewRegistry(),
	}

	r.registry.MustRegister(
		r.RunsTotal,
		r.PathsEnumerated,
		r.PathsRanked,
		r.GraphEdges,
		r.GraphAssets,
		r.EnumerationDuration,
		r.TopUtility,
	)
	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

func (r *Registry) RecordGraph(assets, edges int) {
	r.GraphAssets.Set(float64(assets))
	r.GraphEdges.Set(float64(edges))
}

func (r *Registry) RecordEnumeration(paths int, d time.Duration) {
	r.PathsEnumerated.Set(float64(paths))
	r.EnumerationDuration.Observe(d.Seconds())
}

func (r *Registry) RecordRanking(kept int, topUtility float64) {
	r.PathsRanked.Set(float64(kept))
	if kept > 0 {
		r.TopUtility.Set(topUtility)
	}
}

func (r *Registry) RecordRun(status string) {
	r.RunsTotal.WithLabelValues(status).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (r *Registry) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
