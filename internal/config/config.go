package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for one geosheet run.
//
// Fields:
// - Env: The current environment (e.g., local, development, production).
// - InputFile: Path to the workbook with the addresses.
// - AddressColumn: Header of the column holding the freeform address.
// - Providers: Ordered provider names, tried first to last for every row.
// - Delay: Minimum interval between two consecutive rows.
// - Timeout: HTTP timeout shared by every provider.
// - Database: Optional PostgreSQL export target.
type Config struct {
	Env            string         `mapstructure:"env"`             // Env is the current environment: local, development, production.
	InputFile      string         `mapstructure:"input_file"`      // InputFile is the workbook to annotate.
	AddressColumn  string         `mapstructure:"address_column"`  // AddressColumn is the header of the address column.
	OutputSuffix   string         `mapstructure:"output_suffix"`   // OutputSuffix is appended to the input file stem.
	Providers      []string       `mapstructure:"providers"`       // Providers is the ordered provider list.
	GoogleAPIKey   string         `mapstructure:"google_api_key"`  // GoogleAPIKey enables the Google provider when set.
	VisicomAPIKey  string         `mapstructure:"visicom_api_key"` // VisicomAPIKey enables the Visicom provider when set.
	CountryCodes   string         `mapstructure:"country_codes"`   // CountryCodes scopes Nominatim searches.
	UserAgent      string         `mapstructure:"user_agent"`      // UserAgent identifies the client to Nominatim.
	Delay          time.Duration  `mapstructure:"delay"`           // Delay is the minimum interval between rows.
	Timeout        time.Duration  `mapstructure:"timeout"`         // Timeout bounds every provider request.
	PushgatewayURL string         `mapstructure:"pushgateway_url"` // PushgatewayURL receives run metrics when set.
	Database       PostgresConfig `mapstructure:"postgres"`        // Database holds the postgres export configuration.
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`     // Host is the database server address.
	Port     string `mapstructure:"port"`     // Port is the database server port.
	User     string `mapstructure:"user"`     // User is the database user.
	Password string `mapstructure:"password"` // Password is the database user's password.
	Name     string `mapstructure:"db_name"`  // Name is the name of the database.
}

// Enabled reports whether an export database was configured.
func (pc PostgresConfig) Enabled() bool {
	return pc.Host != "" && pc.Name != ""
}

// Default values, exported for the command help text.
const (
	DefaultEnv           = "local"
	DefaultInputFile     = "enderecos.xlsx"
	DefaultAddressColumn = "ENDEREÇO"
	DefaultOutputSuffix  = "_com_coordenadas"
	DefaultProviders     = "google,nominatim"
	DefaultCountryCodes  = "br"
	DefaultUserAgent     = "Geosheet-Geocoder/1.0 (https://github.com/UnknownOlympus/geosheet)"
	DefaultDelay         = "1s"
	DefaultTimeout       = "10s"
	DefaultDBPort        = "5432"
)

// MustLoad reads the optional .env file and the process environment and
// returns a Config. Malformed durations panic.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	setDefaultEnv(v, "GEOCODER_ENV", DefaultEnv)
	setDefaultEnv(v, "ARQUIVO_EXCEL", DefaultInputFile)
	setDefaultEnv(v, "COLUNA_ENDERECO", DefaultAddressColumn)
	setDefaultEnv(v, "GEOCODER_OUTPUT_SUFFIX", DefaultOutputSuffix)
	setDefaultEnv(v, "GEOCODER_PROVIDERS", DefaultProviders)
	setDefaultEnv(v, "GEOCODER_COUNTRY_CODES", DefaultCountryCodes)
	setDefaultEnv(v, "GEOCODER_USER_AGENT", DefaultUserAgent)
	setDefaultEnv(v, "GEOCODER_DELAY", DefaultDelay)
	setDefaultEnv(v, "GEOCODER_TIMEOUT", DefaultTimeout)
	setDefaultEnv(v, "DB_PORT", DefaultDBPort)
	for _, key := range []string{
		"GOOGLE_MAPS_API_KEY", "VISICOM_API_KEY", "GEOCODER_PUSHGATEWAY_URL",
		"DB_HOST", "DB_USERNAME", "DB_PASSWORD", "DB_NAME",
	} {
		_ = v.BindEnv(key)
	}

	delay, err := time.ParseDuration(v.GetString("GEOCODER_DELAY"))
	if err != nil || delay < 0 {
		panic("failed to parse delay from configuration, must be a non-negative duration")
	}

	timeout, err := time.ParseDuration(v.GetString("GEOCODER_TIMEOUT"))
	if err != nil || timeout <= 0 {
		panic("failed to parse timeout from configuration, must be a positive duration")
	}

	return &Config{
		Env:            v.GetString("GEOCODER_ENV"),
		InputFile:      v.GetString("ARQUIVO_EXCEL"),
		AddressColumn:  v.GetString("COLUNA_ENDERECO"),
		OutputSuffix:   v.GetString("GEOCODER_OUTPUT_SUFFIX"),
		Providers:      splitList(v.GetString("GEOCODER_PROVIDERS")),
		GoogleAPIKey:   v.GetString("GOOGLE_MAPS_API_KEY"),
		VisicomAPIKey:  v.GetString("VISICOM_API_KEY"),
		CountryCodes:   v.GetString("GEOCODER_COUNTRY_CODES"),
		UserAgent:      v.GetString("GEOCODER_USER_AGENT"),
		Delay:          delay,
		Timeout:        timeout,
		PushgatewayURL: v.GetString("GEOCODER_PUSHGATEWAY_URL"),
		Database: PostgresConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
	}
}

func setDefaultEnv(v *viper.Viper, key, override string) {
	_ = v.BindEnv(key)
	v.SetDefault(key, override)
}

// splitList turns "google, nominatim," into [google nominatim].
func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToLower(part))
		}
	}

	return out
}
