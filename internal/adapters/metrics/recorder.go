// Package metrics records plugin hook performance as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.trai.ch/kiln/internal/core/ports"
)

const namespace = "kiln"

// Recorder implements ports.Metrics on a private Prometheus registry.
// A nil Recorder is valid and records nothing.
type Recorder struct {
	registry     *prom.Registry
	hookDuration *prom.HistogramVec
	hookResults  *prom.CounterVec
	builds       *prom.CounterVec
}

var _ ports.Metrics = (*Recorder)(nil)

// NewRecorder creates a Recorder and registers its collectors with reg.
// A nil reg gets a fresh registry that also exposes Go runtime metrics.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
	}

	r := &Recorder{
		registry: reg,
		hookDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "hook_duration_seconds",
			Help:      "Duration of plugin hook invocations",
			Buckets:   prom.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"hook"}),
		hookResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "hook_results_total",
			Help:      "Plugin hook invocations by outcome",
		}, []string{"hook", "outcome"}),
		builds: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Completed builds by outcome",
		}, []string{"outcome"}),
	}
	reg.MustRegister(r.hookDuration, r.hookResults, r.builds)

	return r
}

// ObserveHook records one hook invocation.
func (r *Recorder) ObserveHook(hook, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.hookDuration.WithLabelValues(hook).Observe(elapsed.Seconds())
	r.hookResults.WithLabelValues(hook, outcome).Inc()
}

// IncBuild counts a finished build.
func (r *Recorder) IncBuild(success bool) {
	if r == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failed"
	}
	r.builds.WithLabelValues(outcome).Inc()
}

// Registry returns the registry the recorder writes to.
func (r *Recorder) Registry() *prom.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
