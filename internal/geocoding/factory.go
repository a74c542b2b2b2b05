package geocoding

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
	"googlemaps.github.io/maps"
)

// ProviderType represents the type of geocoding provider.
type ProviderType string

const (
	// ProviderTypeGoogle represents Google Maps geocoding provider.
	ProviderTypeGoogle ProviderType = "google"
	// ProviderTypeNominatim represents OpenStreetMap Nominatim geocoding provider.
	ProviderTypeNominatim ProviderType = "nominatim"
	// ProviderTypeVisicom represents Visicom Maps geocoding provider.
	ProviderTypeVisicom ProviderType = "visicom"
)

// DefaultOrder is the provider order used when none is configured:
// the paid provider first, the free community provider as fallback.
var DefaultOrder = []ProviderType{ProviderTypeGoogle, ProviderTypeNominatim}

const defaultVisicomRateLimit = 5

// ErrNoProviders is returned when the configured provider list is empty.
var ErrNoProviders = errors.New("no geocoding providers configured")

// ProviderConfig holds configuration for creating the ordered provider list.
type ProviderConfig struct {
	Order         []ProviderType // Order in which providers are tried
	GoogleAPIKey  string         // Google is disabled when empty
	VisicomAPIKey string         // Visicom is disabled when empty
	CountryCodes  string         // Country scope for Nominatim
	UserAgent     string         // Client identifier sent to Nominatim
	Timeout       time.Duration  // Per-request timeout shared by all providers
	RateLimit     int            // Requests per second for clients with their own limiter (0 = unlimited)
	HTTPClient    *http.Client   // Optional shared client; built from Timeout when nil
	Logger        *slog.Logger   // Logger for the providers
}

// NewProviders creates the geocoding providers in the configured order.
// It applies the Factory pattern to decouple provider instantiation from business logic.
//
// A provider missing its credential is still returned, reporting Available() == false,
// so that the resolver skips it silently.
//
// Returns an error if a provider type is unsupported, listed twice, or if client creation fails.
func NewProviders(config ProviderConfig) ([]Provider, error) {
	order := config.Order
	if order == nil {
		order = DefaultOrder
	}
	if len(order) == 0 {
		return nil, ErrNoProviders
	}

	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	seen := make(map[ProviderType]bool, len(order))
	providers := make([]Provider, 0, len(order))
	for _, typ := range order {
		if seen[typ] {
			return nil, fmt.Errorf("provider %q listed more than once", typ)
		}
		seen[typ] = true

		provider, err := NewProvider(typ, config)
		if err != nil {
			return nil, err
		}
		providers = append(providers, provider)
	}

	return providers, nil
}

// NewProvider creates a single geocoding provider of the given type.
//
// Supported provider types:
// - "google": Google Maps Geocoding API (requires API key)
// - "nominatim": OpenStreetMap Nominatim API (free, no API key required)
// - "visicom": Visicom Data API (requires API key)
func NewProvider(typ ProviderType, config ProviderConfig) (Provider, error) {
	if config.HTTPClient == nil {
		config.HTTPClient = &http.Client{Timeout: config.Timeout}
	}

	switch typ {
	case ProviderTypeGoogle:
		return newGoogleProvider(config)
	case ProviderTypeNominatim:
		return NewNominatimProviderWithClient(config.HTTPClient, config.UserAgent, config.CountryCodes, config.Logger), nil
	case ProviderTypeVisicom:
		return newVisicomProvider(config), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", typ)
	}
}

// ParseOrder converts provider names into provider types, keeping their order.
func ParseOrder(names []string) []ProviderType {
	order := make([]ProviderType, 0, len(names))
	for _, name := range names {
		order = append(order, ProviderType(name))
	}

	return order
}

// newGoogleProvider creates a Google Maps geocoding provider.
func newGoogleProvider(config ProviderConfig) (*GoogleProvider, error) {
	if config.GoogleAPIKey == "" {
		return NewGoogleProvider(nil, config.Logger), nil
	}

	clientOpts := []maps.ClientOption{
		maps.WithAPIKey(config.GoogleAPIKey),
		maps.WithHTTPClient(config.HTTPClient),
	}

	if config.RateLimit > 0 {
		clientOpts = append(clientOpts, maps.WithRateLimit(config.RateLimit))
	}

	client, err := maps.NewClient(clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return NewGoogleProvider(client, config.Logger), nil
}

// newVisicomProvider creates a Visicom geocoding provider.
func newVisicomProvider(config ProviderConfig) *VisicomProvider {
	if config.RateLimit == 0 {
		config.RateLimit = defaultVisicomRateLimit
		if config.VisicomAPIKey != "" {
			config.Logger.Warn("Rate limit for Visicom API not set, set a default value", "value", config.RateLimit)
		}
	}

	limiter := rate.NewLimiter(rate.Limit(config.RateLimit), config.RateLimit)

	return NewVisicomProviderWithClient(config.HTTPClient, config.VisicomAPIKey, limiter, config.Logger)
}
