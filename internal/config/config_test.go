package config_test

import (
	"testing"
	"time"

	"github.com/UnknownOlympus/geosheet/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"GEOCODER_ENV", "ARQUIVO_EXCEL", "COLUNA_ENDERECO", "GEOCODER_PROVIDERS", "GOOGLE_MAPS_API_KEY",
		"GEOCODER_DELAY", "GEOCODER_TIMEOUT", "GEOCODER_COUNTRY_CODES", "GEOCODER_USER_AGENT",
		"GEOCODER_OUTPUT_SUFFIX", "DB_HOST", "DB_PORT", "DB_NAME",
	} {
		t.Setenv(key, "")
	}

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "enderecos.xlsx", cfg.InputFile)
	assert.Equal(t, "ENDEREÇO", cfg.AddressColumn)
	assert.Equal(t, "_com_coordenadas", cfg.OutputSuffix)
	assert.Equal(t, []string{"google", "nominatim"}, cfg.Providers)
	assert.Empty(t, cfg.GoogleAPIKey)
	assert.Equal(t, "br", cfg.CountryCodes)
	assert.Equal(t, config.DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, time.Second, cfg.Delay)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.False(t, cfg.Database.Enabled())
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("GEOCODER_ENV", "production")
	t.Setenv("ARQUIVO_EXCEL", "clientes.xlsx")
	t.Setenv("COLUNA_ENDERECO", "Endereco Completo")
	t.Setenv("GOOGLE_MAPS_API_KEY", "testAPIKey")
	t.Setenv("GEOCODER_PROVIDERS", " Nominatim , visicom,")
	t.Setenv("GEOCODER_DELAY", "250ms")
	t.Setenv("GEOCODER_TIMEOUT", "3s")
	t.Setenv("GEOCODER_PUSHGATEWAY_URL", "http://pushgateway:9091")
	t.Setenv("DB_HOST", "testHost")
	t.Setenv("DB_PORT", "12345")
	t.Setenv("DB_USERNAME", "admin")
	t.Setenv("DB_PASSWORD", "adminpass")
	t.Setenv("DB_NAME", "testName")

	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, "clientes.xlsx", cfg.InputFile)
	assert.Equal(t, "Endereco Completo", cfg.AddressColumn)
	assert.Equal(t, "testAPIKey", cfg.GoogleAPIKey)
	assert.Equal(t, []string{"nominatim", "visicom"}, cfg.Providers)
	assert.Equal(t, 250*time.Millisecond, cfg.Delay)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, "http://pushgateway:9091", cfg.PushgatewayURL)
	assert.Equal(t, "testHost", cfg.Database.Host)
	assert.Equal(t, "12345", cfg.Database.Port)
	assert.Equal(t, "admin", cfg.Database.User)
	assert.Equal(t, "adminpass", cfg.Database.Password)
	assert.Equal(t, "testName", cfg.Database.Name)
	assert.True(t, cfg.Database.Enabled())
}

func TestMustLoad_ZeroDelay(t *testing.T) {
	t.Setenv("GEOCODER_DELAY", "0s")

	assert.Zero(t, config.MustLoad().Delay)
}

func TestMustLoad_DelayError(t *testing.T) {
	t.Setenv("GEOCODER_DELAY", "error_value")

	assert.PanicsWithValue(t, "failed to parse delay from configuration, must be a non-negative duration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_NegativeDelay(t *testing.T) {
	t.Setenv("GEOCODER_DELAY", "-1s")

	assert.PanicsWithValue(t, "failed to parse delay from configuration, must be a non-negative duration", func() {
		config.MustLoad()
	})
}

func TestMustLoad_TimeoutError(t *testing.T) {
	t.Setenv("GEOCODER_TIMEOUT", "error_value")

	assert.PanicsWithValue(t, "failed to parse timeout from configuration, must be a positive duration", func() {
		config.MustLoad()
	})
}
