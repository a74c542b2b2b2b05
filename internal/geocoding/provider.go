package geocoding

import (
	"context"
	"errors"
	"net/http"

	"github.com/UnknownOlympus/geosheet/internal/models"
)

// ErrNoResult is wrapped by every provider error meaning "the service answered, but found nothing".
var ErrNoResult = errors.New("no geocoding result")

// Provider is an interface that defines a method for geocoding an address.
// The Geocode method takes a context and an address string as input,
// and returns the corresponding coordinates and an error if any occurs.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	// Available reports whether the provider is configured well enough to be called.
	Available() bool
	Geocode(ctx context.Context, address string) (*models.Coordinates, error)
}

// HTTPClient defines the interface for making HTTP requests.
// This allows for easy mocking in tests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
