package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prune reasons.
const (
	// ReasonNotFound labels links dropped because the page does not exist.
	ReasonNotFound = "not_found"
	// ReasonError labels links dropped because of any other failure.
	ReasonError = "error"
)

// Recorder collects crawl metrics.
type Recorder struct {
	registry *prometheus.Registry

	pagesFetched  prometheus.Counter
	linksPruned   *prometheus.CounterVec
	policyDenials *prometheus.CounterVec
	visitDuration prometheus.Histogram
}

// NewRecorder creates a Recorder with a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		pagesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "tagtree_pages_fetched_total",
			Help: "Total number of tag pages fetched and parsed.",
		}),
		linksPruned: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tagtree_links_pruned_total",
			Help: "Total number of links dropped from the tree after a failed visit.",
		}, []string{"reason"}),
		policyDenials: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "tagtree_policy_denials_total",
			Help: "Total number of visits denied by a crawl policy.",
		}, []string{"layer"}),
		visitDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "tagtree_visit_duration_seconds",
			Help:    "Time spent fetching and extracting a single tag page.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// PageFetched counts a fetched page.
func (r *Recorder) PageFetched() {
	if r == nil {
		return
	}
	r.pagesFetched.Inc()
}

// LinkPruned counts a link dropped for reason.
func (r *Recorder) LinkPruned(reason string) {
	if r == nil {
		return
	}
	r.linksPruned.WithLabelValues(reason).Inc()
}

// PolicyDenied counts a denial by the given policy layer.
func (r *Recorder) PolicyDenied(layer string) {
	if r == nil {
		return
	}
	r.policyDenials.WithLabelValues(layer).Inc()
}

// ObserveVisit records the duration of one page visit.
func (r *Recorder) ObserveVisit(d time.Duration) {
	if r == nil {
		return
	}
	r.visitDuration.Observe(d.Seconds())
}

// Registry returns the registry holding the recorder's collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics to path in the Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}
