// Package telemetry exports posterior usage weights as Prometheus metrics.
//
// Collector reads its Source on every scrape, so it reflects the live
// statistics of a recorder without any push step:
//
//	<ns>_posterior_weight{node="..."}   gauge, running mean usage of a node
//	<ns>_iterations_total               counter, iterations folded in so far
//
// WriteTextfile dumps a registry in the node_exporter textfile format for
// batch jobs that never serve /metrics.
package telemetry

import (
	"errors"
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/pathrec/stats"
)

// ErrNilSource is returned by NewCollector for a nil Source.
var ErrNilSource = errors.New("telemetry: source is nil")

// Source is what the collector scrapes. *recorder.Recorder satisfies it.
type Source interface {
	PosteriorWeights() (map[string]float64, error)
	Iterations() int
}

// Collector is a prometheus.Collector over a Source. The Source must be
// safe to read from the scraping goroutine; wrap a live recorder
// accordingly or hand in a finished one.
type Collector struct {
	src        Source
	weight     *prometheus.Desc
	iterations *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a Collector whose metric names start with namespace.
func NewCollector(namespace string, src Source) (*Collector, error) {
	if src == nil {
		return nil, ErrNilSource
	}

	return &Collector{
		src: src,
		weight: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "posterior_weight"),
			"Running mean usage of a node on the sampled paths to the default output.",
			[]string{"node"}, nil,
		),
		iterations: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "iterations_total"),
			"Iterations folded into the posterior estimate.",
			nil, nil,
		),
	}, nil
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.weight
	ch <- c.iterations
}

// Collect implements prometheus.Collector. Before the first folded
// iteration only the counter is emitted.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.iterations, prometheus.CounterValue, float64(c.src.Iterations()))

	weights, err := c.src.PosteriorWeights()
	if errors.Is(err, stats.ErrNotAvailable) {
		return
	}
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.weight, err)
		return
	}

	nodes := make([]string, 0, len(weights))
	for id := range weights {
		nodes = append(nodes, id)
	}
	sort.Strings(nodes)
	for _, id := range nodes {
		ch <- prometheus.MustNewConstMetric(c.weight, prometheus.GaugeValue, weights[id], id)
	}
}

// WriteTextfile writes every metric of g to path in the text exposition
// format, atomically.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("telemetry: write %s: %w", path, err)
	}

	return nil
}
