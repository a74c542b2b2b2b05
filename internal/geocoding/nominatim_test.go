package geocoding_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/UnknownOlympus/geosheet/internal/geocoding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a mock implementation of HTTPClient for testing.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNominatimProvider_Geocode(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()
	userAgent := "geosheet-test/1.0 (ops@example.com)"

	t.Run("successful geocoding", func(t *testing.T) {
		calls := 0
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				calls++
				assert.Equal(t, http.MethodGet, req.Method)
				assert.Contains(t, req.URL.String(), "nominatim.openstreetmap.org")
				assert.Equal(t, "Av. Paulista, 1000, São Paulo, SP, Brazil", req.URL.Query().Get("q"))
				assert.Equal(t, "json", req.URL.Query().Get("format"))
				assert.Equal(t, "1", req.URL.Query().Get("limit"))
				assert.Equal(t, "br", req.URL.Query().Get("countrycodes"))
				assert.Equal(t, userAgent, req.Header.Get("User-Agent"))

				return jsonResponse(http.StatusOK, `[{"lat":"-23.5613","lon":"-46.6563"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "Av. Paulista, 1000, São Paulo, SP, Brazil")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.InEpsilon(t, -23.5613, coords.Latitude, 0.0001)
		assert.InEpsilon(t, -46.6563, coords.Longitude, 0.0001)
		assert.Equal(t, 1, calls, "a single request per address")
	})

	t.Run("default user agent and no country scope", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, geocoding.DefaultUserAgent, req.Header.Get("User-Agent"))
				assert.False(t, req.URL.Query().Has("countrycodes"))

				return jsonResponse(http.StatusOK, `[{"lat":"0","lon":"0"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, "", "", logger)
		coords, err := provider.Geocode(ctx, "Null Island")

		require.NoError(t, err)
		require.NotNil(t, coords)
		assert.Zero(t, coords.Latitude)
		assert.Zero(t, coords.Longitude)
	})

	t.Run("empty response from API", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "invalid address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.ErrorIs(t, err, geocoding.ErrNominatimEmptyResponse)
		assert.ErrorIs(t, err, geocoding.ErrNoResult)
	})

	t.Run("HTTP error status", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"Rate limit exceeded"}`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "nominatim API returned status 429")
	})

	t.Run("invalid JSON response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `invalid json`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		assert.Contains(t, err.Error(), "failed to decode nominatim response")
	})

	t.Run("invalid latitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"invalid","lon":"-46.6563"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid latitude")
	})

	t.Run("invalid longitude in response", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `[{"lat":"-23.5613","lon":"12abc"}]`), nil
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		require.ErrorIs(t, err, geocoding.ErrNominatimInvalidCoords)
		assert.Contains(t, err.Error(), "invalid longitude")
	})

	t.Run("HTTP client returns error", func(t *testing.T) {
		mockClient := &mockHTTPClient{
			doFunc: func(_ *http.Request) (*http.Response, error) {
				return nil, assert.AnError
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(ctx, "some address")

		require.Error(t, err)
		require.Nil(t, coords)
		require.ErrorIs(t, err, assert.AnError)
		assert.Contains(t, err.Error(), "failed to execute geocoding request")
	})

	t.Run("context cancellation", func(t *testing.T) {
		newCtx, cancel := context.WithCancel(context.Background())
		cancel()

		mockClient := &mockHTTPClient{
			doFunc: func(req *http.Request) (*http.Response, error) {
				return nil, req.Context().Err()
			},
		}

		provider := geocoding.NewNominatimProviderWithClient(mockClient, userAgent, "br", logger)
		coords, err := provider.Geocode(newCtx, "some address")

		require.ErrorIs(t, err, context.Canceled)
		require.Nil(t, coords)
	})
}

func TestNominatimProvider_Identity(t *testing.T) {
	provider := geocoding.NewNominatimProviderWithClient(http.DefaultClient, "", "br", slog.Default())

	assert.Equal(t, "nominatim", provider.Name())
	assert.True(t, provider.Available())
}
