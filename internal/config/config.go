package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"strconv"
	"time"

	"github.com/couchcryptid/hko-weather-e2e/internal/retry"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Default HKO open-data settings.
const (
	DefaultBaseURL         = "https://data.weather.gov.hk"
	DefaultNineDayEndpoint = "/weatherAPI/opendata/weather.php?dataType=fnd&lang=en"
	DefaultCurrentEndpoint = "/weatherAPI/opendata/weather.php?dataType=rhrread&lang=en"
	DefaultWarningEndpoint = "/weatherAPI/opendata/weather.php?dataType=warnsum&lang=en"
)

// Endpoints are the request paths, relative to the base URL, of each data type.
type Endpoints struct {
	NineDayForecast string
	CurrentWeather  string
	WeatherWarning  string
}

// Config holds all settings, populated from defaults, an optional YAML file
// (API_CONFIG_FILE) and environment variables, in that order.
type Config struct {
	APIBaseURL   string
	APITimeout   time.Duration
	APIHeaders   map[string]string
	APIRateLimit float64 // requests per second, 0 disables limiting
	Endpoints    Endpoints
	Retry        retry.Policy

	ForecastCacheTTL time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Humidity monitor configuration.
	MonitorInterval     time.Duration
	MonitorDayOffset    int
	HumidityExpectedMin *int
	HumidityExpectedMax *int

	// Kafka report publishing configuration.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaReportTopic string
}

func defaults() *Config {
	return &Config{
		APIBaseURL: DefaultBaseURL,
		APITimeout: 30 * time.Second,
		APIHeaders: map[string]string{
			"Accept":     "application/json",
			"User-Agent": "hko-weather-e2e/1.0",
		},
		Endpoints: Endpoints{
			NineDayForecast: DefaultNineDayEndpoint,
			CurrentWeather:  DefaultCurrentEndpoint,
			WeatherWarning:  DefaultWarningEndpoint,
		},
		Retry:            retry.DefaultPolicy(),
		ForecastCacheTTL: 5 * time.Minute,
		MonitorInterval:  15 * time.Minute,
		MonitorDayOffset: 2,
	}
}

// Load reads configuration, applying defaults where unset.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("API_CONFIG_FILE"); path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		if err := fc.apply(cfg); err != nil {
			return nil, err
		}
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = shutdownTimeout

	if cfg.APITimeout, err = envDuration("API_TIMEOUT", cfg.APITimeout); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxAttempts, err = envInt("API_RETRY_COUNT", cfg.Retry.MaxAttempts); err != nil {
		return nil, err
	}
	if cfg.Retry.BaseDelay, err = envDuration("API_RETRY_DELAY", cfg.Retry.BaseDelay); err != nil {
		return nil, err
	}
	if cfg.Retry.Multiplier, err = envFloat("API_BACKOFF_FACTOR", cfg.Retry.Multiplier); err != nil {
		return nil, err
	}
	if cfg.Retry.MaxDelay, err = envDuration("API_MAX_RETRY_DELAY", cfg.Retry.MaxDelay); err != nil {
		return nil, err
	}
	if cfg.APIRateLimit, err = envFloat("API_RATE_LIMIT", cfg.APIRateLimit); err != nil {
		return nil, err
	}
	if cfg.ForecastCacheTTL, err = envDuration("FORECAST_CACHE_TTL", cfg.ForecastCacheTTL); err != nil {
		return nil, err
	}
	if cfg.MonitorInterval, err = envDuration("MONITOR_INTERVAL", cfg.MonitorInterval); err != nil {
		return nil, err
	}
	if cfg.MonitorDayOffset, err = envInt("MONITOR_DAY_OFFSET", cfg.MonitorDayOffset); err != nil {
		return nil, err
	}
	if cfg.HumidityExpectedMin, err = envOptionalInt("HUMIDITY_EXPECTED_MIN"); err != nil {
		return nil, err
	}
	if cfg.HumidityExpectedMax, err = envOptionalInt("HUMIDITY_EXPECTED_MAX"); err != nil {
		return nil, err
	}

	cfg.APIBaseURL = sharedcfg.EnvOrDefault("API_BASE_URL", cfg.APIBaseURL)
	cfg.Endpoints.NineDayForecast = sharedcfg.EnvOrDefault("API_ENDPOINT_NINE_DAY", cfg.Endpoints.NineDayForecast)
	cfg.Endpoints.CurrentWeather = sharedcfg.EnvOrDefault("API_ENDPOINT_CURRENT", cfg.Endpoints.CurrentWeather)
	cfg.Endpoints.WeatherWarning = sharedcfg.EnvOrDefault("API_ENDPOINT_WARNING", cfg.Endpoints.WeatherWarning)
	cfg.HTTPAddr = sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080")
	cfg.LogLevel = sharedcfg.EnvOrDefault("LOG_LEVEL", "info")
	cfg.LogFormat = sharedcfg.EnvOrDefault("LOG_FORMAT", "json")
	cfg.KafkaBrokers = sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092"))
	cfg.KafkaReportTopic = sharedcfg.EnvOrDefault("KAFKA_REPORT_TOPIC", "humidity-reports")
	cfg.KafkaEnabled = os.Getenv("KAFKA_ENABLED") == "true"

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Headers returns a copy of the default request headers.
func (c *Config) Headers() map[string]string {
	return maps.Clone(c.APIHeaders)
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	if c.APITimeout <= 0 {
		return errors.New("invalid API_TIMEOUT: must be positive")
	}
	if c.Retry.MaxAttempts < 1 || c.Retry.MaxAttempts > 10 {
		return fmt.Errorf("invalid API_RETRY_COUNT: %d (must be 1-10)", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 {
		return errors.New("invalid API_RETRY_DELAY: must not be negative")
	}
	if c.Retry.Multiplier < 1 {
		return fmt.Errorf("invalid API_BACKOFF_FACTOR: %g (must be >= 1)", c.Retry.Multiplier)
	}
	if c.Retry.MaxDelay < 0 {
		return errors.New("invalid API_MAX_RETRY_DELAY: must not be negative")
	}
	if c.APIRateLimit < 0 {
		return errors.New("invalid API_RATE_LIMIT: must not be negative")
	}
	if c.MonitorInterval <= 0 {
		return errors.New("invalid MONITOR_INTERVAL: must be positive")
	}
	if c.HumidityExpectedMin != nil && c.HumidityExpectedMax != nil && *c.HumidityExpectedMin > *c.HumidityExpectedMax {
		return errors.New("HUMIDITY_EXPECTED_MIN must not exceed HUMIDITY_EXPECTED_MAX")
	}
	if c.KafkaEnabled {
		if len(c.KafkaBrokers) == 0 {
			return errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if c.KafkaReportTopic == "" {
			return errors.New("KAFKA_REPORT_TOPIC is required when KAFKA_ENABLED is true")
		}
	}
	return nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func envOptionalInt(key string) (*int, error) {
	s := os.Getenv(key)
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}
