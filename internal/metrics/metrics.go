// Package metrics exports the result of each crawl run as Prometheus gauges.
// Runs are short-lived, so the gauges are written to a node-exporter textfile
// instead of being served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"SecurityNewsScanner/internal/domain"
)

const namespace = "secnews"

// Recorder holds the gauges describing the most recent run.
type Recorder struct {
	registry *prometheus.Registry

	PagesScanned   prometheus.Gauge
	LinksSeen      prometheus.Gauge
	Persisted      *prometheus.GaugeVec
	Skipped        *prometheus.GaugeVec
	Aborted        prometheus.Gauge
	RunDuration    prometheus.Gauge
	LastRunSeconds prometheus.Gauge
}

// NewRecorder registers the run gauges on a private registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		PagesScanned: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pages_scanned",
			Help:      "Listing pages fetched in the last run",
		}),
		LinksSeen: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "links_seen",
			Help:      "Article links discovered in the last run",
		}),
		Persisted: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_persisted",
			Help:      "Articles stored in the last run by category",
		}, []string{"category"}),
		Skipped: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "articles_skipped",
			Help:      "Links dropped in the last run by reason",
		}, []string{"reason"}),
		Aborted: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_aborted",
			Help:      "1 when the last run stopped on a listing fetch failure",
		}),
		RunDuration: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		LastRunSeconds: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
}

// Observe replaces the gauges with the values of report.
func (r *Recorder) Observe(report *domain.Report, started, finished time.Time) {
	r.Persisted.Reset()
	r.Skipped.Reset()

	if report != nil {
		r.PagesScanned.Set(float64(report.Pages))
		r.LinksSeen.Set(float64(report.Links))
		for _, category := range domain.Categories {
			r.Persisted.WithLabelValues(string(category)).Set(0)
		}
		for _, article := range report.Persisted {
			r.Persisted.WithLabelValues(string(article.Category)).Inc()
		}
		for reason, n := range report.Skipped {
			r.Skipped.WithLabelValues(string(reason)).Set(float64(n))
		}
		if report.Aborted {
			r.Aborted.Set(1)
		} else {
			r.Aborted.Set(0)
		}
	}

	r.RunDuration.Set(finished.Sub(started).Seconds())
	r.LastRunSeconds.Set(float64(finished.Unix()))
}

// WriteTextfile atomically writes the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
