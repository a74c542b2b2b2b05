package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName labels pushed metrics on the Pushgateway.
const JobName = "geosheet"

type Metrics struct {
	RowsProcessed  *prometheus.CounterVec
	ProviderHits   *prometheus.CounterVec
	ProviderErrors *prometheus.CounterVec
	RequestSeconds *prometheus.HistogramVec
	LastRunSeconds prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RowsProcessed: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_rows_processed_total",
			Help: "Total number of processed spreadsheet rows by outcome.",
		}, []string{"status"}),
		ProviderHits: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_provider_hits_total",
			Help: "Total number of addresses resolved by each provider.",
		}, []string{"provider"}),
		ProviderErrors: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "geocoding_provider_api_errors_total",
			Help: "Total number of failed or empty answers from each geocoding provider.",
		}, []string{"provider"}),
		RequestSeconds: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "geocoding_provider_request_duration_seconds",
			Help:    "Duration of requests to the geocoding provider API.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
		LastRunSeconds: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "geocoding_last_run_duration_seconds",
			Help: "Wall time of the last batch run.",
		}),
	}
}

// Push sends everything gathered by g to the Pushgateway at url.
// Batch runs are too short-lived to be scraped.
func Push(ctx context.Context, url string, g prometheus.Gatherer) error {
	if err := push.New(url, JobName).Gatherer(g).PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}

	return nil
}
