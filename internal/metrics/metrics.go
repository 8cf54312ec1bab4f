// Package metrics exports match and compile counters to Prometheus.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/KromDaniel/regvm/pkg/regvm"
)

const namespace = "regvm"

// Match outcomes.
const (
	OutcomeMatch     = "match"
	OutcomeNoMatch   = "no_match"
	OutcomeExhausted = "exhausted"
)

// Compile results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Collector records match outcomes and the resources they used. A nil
// *Collector is valid and records nothing.
type Collector struct {
	matches  *prometheus.CounterVec
	compiles *prometheus.CounterVec
	threads  prometheus.Histogram
	blocks   prometheus.Histogram
	steps    prometheus.Histogram
	gatherer prometheus.Gatherer
}

// NewCollector creates the collectors and registers them with reg. A nil
// reg uses a private registry.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	var g prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		r := prometheus.NewRegistry()
		reg, g = r, r
	} else if r, ok := reg.(prometheus.Gatherer); ok {
		g = r
	}

	c := &Collector{
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Matches run, by outcome.",
		}, []string{"outcome"}),
		compiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compile_total",
			Help:      "Patterns compiled, by result.",
		}, []string{"result"}),
		threads: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_threads",
			Help:      "Peak pending backtrack threads per match.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		blocks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_blocks",
			Help:      "Peak allocator blocks in use per match.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		steps: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "match_steps",
			Help:      "Instructions executed per match.",
			Buckets:   prometheus.ExponentialBuckets(16, 8, 8),
		}),
		gatherer: g,
	}
	for _, m := range []prometheus.Collector{c.matches, c.compiles, c.threads, c.blocks, c.steps} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveMatch records the result of one match.
func (c *Collector) ObserveMatch(end int, st regvm.Stats, err error) {
	if c == nil {
		return
	}
	c.matches.WithLabelValues(Outcome(end, err)).Inc()
	c.threads.Observe(float64(st.PeakThreads))
	c.blocks.Observe(float64(st.PeakBlocks))
	c.steps.Observe(float64(st.Steps))
}

// ObserveCompile records whether p compiled.
func (c *Collector) ObserveCompile(p *regvm.Program) {
	if c == nil {
		return
	}
	if p.Err() != nil {
		c.compiles.WithLabelValues(ResultError).Inc()
		return
	}
	c.compiles.WithLabelValues(ResultOK).Inc()
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}

// Outcome classifies a match result.
func Outcome(end int, err error) string {
	switch {
	case errors.Is(err, regvm.ErrResourceExhausted):
		return OutcomeExhausted
	case end == regvm.NoMatch:
		return OutcomeNoMatch
	default:
		return OutcomeMatch
	}
}

// Serve exposes the metrics at /metrics on addr until the server fails.
func (c *Collector) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", c.Handler())
	return http.ListenAndServe(addr, mux)
}
