package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/UnknownOlympus/geosheet/internal/metrics"
	"github.com/UnknownOlympus/geosheet/internal/models"
)

var errNilCoordinates = errors.New("provider returned no coordinates and no error")

// Resolver tries an ordered list of geocoding providers and keeps the first valid answer.
type Resolver struct {
	log       *slog.Logger
	providers []geocoding.Provider
	metrics   *metrics.Metrics
}

// NewResolver creates a Resolver over providers, tried in the given order.
func NewResolver(log *slog.Logger, providers []geocoding.Provider, metrics *metrics.Metrics) *Resolver {
	return &Resolver{log: log, providers: providers, metrics: metrics}
}

// Resolve returns the coordinates of address from the first available provider
// that answers with a valid point. Provider failures never escape: they are
// logged, counted and the next provider is tried. When every provider fails
// or is unavailable the zero Resolution (not found) is returned.
func (r *Resolver) Resolve(ctx context.Context, address string) models.Resolution {
	for _, provider := range r.providers {
		name := provider.Name()
		if !provider.Available() {
			r.log.DebugContext(ctx, "Provider not configured, skipping", "provider", name)
			continue
		}

		startTime := time.Now()
		coords, err := provider.Geocode(ctx, address)
		r.metrics.RequestSeconds.WithLabelValues(name).Observe(time.Since(startTime).Seconds())

		if err == nil && coords == nil {
			err = errNilCoordinates
		}
		if err == nil {
			err = coords.Validate()
		}

		if err != nil {
			r.metrics.ProviderErrors.WithLabelValues(name).Inc()
			if errors.Is(err, geocoding.ErrNoResult) {
				r.log.InfoContext(ctx, "Provider found nothing, trying next", "provider", name, "address", address)
			} else {
				r.log.WarnContext(ctx, "Provider failed, trying next", "provider", name, "address", address, "error", err)
			}
			continue
		}

		r.metrics.ProviderHits.WithLabelValues(name).Inc()

		return models.Found(*coords, name)
	}

	return models.Resolution{}
}
