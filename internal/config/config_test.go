package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "http://localhost:9999"

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 30*time.Second, cfg.APITimeout)
	assert.Equal(t, "application/json", cfg.APIHeaders["Accept"])
	assert.Equal(t, DefaultNineDayEndpoint, cfg.Endpoints.NineDayForecast)
	assert.Equal(t, DefaultCurrentEndpoint, cfg.Endpoints.CurrentWeather)
	assert.Equal(t, DefaultWarningEndpoint, cfg.Endpoints.WeatherWarning)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, time.Second, cfg.Retry.BaseDelay)
	assert.Equal(t, 2.0, cfg.Retry.Multiplier)
	assert.Equal(t, 10*time.Second, cfg.Retry.MaxDelay)
	assert.ElementsMatch(t, []int{429, 500, 502, 503, 504}, cfg.Retry.RetryableStatus)
	assert.Zero(t, cfg.APIRateLimit)
	assert.Equal(t, 5*time.Minute, cfg.ForecastCacheTTL)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 15*time.Minute, cfg.MonitorInterval)
	assert.Equal(t, 2, cfg.MonitorDayOffset)
	assert.Nil(t, cfg.HumidityExpectedMin)
	assert.Nil(t, cfg.HumidityExpectedMax)
	assert.False(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "humidity-reports", cfg.KafkaReportTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", testBaseURL)
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_RETRY_COUNT", "5")
	t.Setenv("API_RETRY_DELAY", "250ms")
	t.Setenv("API_BACKOFF_FACTOR", "1.5")
	t.Setenv("API_MAX_RETRY_DELAY", "3s")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("API_ENDPOINT_NINE_DAY", "/fnd")
	t.Setenv("API_ENDPOINT_CURRENT", "/rhrread")
	t.Setenv("API_ENDPOINT_WARNING", "/warnsum")
	t.Setenv("FORECAST_CACHE_TTL", "1m")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("MONITOR_INTERVAL", "1h")
	t.Setenv("MONITOR_DAY_OFFSET", "3")
	t.Setenv("HUMIDITY_EXPECTED_MIN", "40")
	t.Setenv("HUMIDITY_EXPECTED_MAX", "100")
	t.Setenv("KAFKA_ENABLED", "true")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_REPORT_TOPIC", "custom-reports")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, testBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 5*time.Second, cfg.APITimeout)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 1.5, cfg.Retry.Multiplier)
	assert.Equal(t, 3*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, 2.5, cfg.APIRateLimit)
	assert.Equal(t, Endpoints{NineDayForecast: "/fnd", CurrentWeather: "/rhrread", WeatherWarning: "/warnsum"}, cfg.Endpoints)
	assert.Equal(t, time.Minute, cfg.ForecastCacheTTL)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, time.Hour, cfg.MonitorInterval)
	assert.Equal(t, 3, cfg.MonitorDayOffset)
	require.NotNil(t, cfg.HumidityExpectedMin)
	assert.Equal(t, 40, *cfg.HumidityExpectedMin)
	require.NotNil(t, cfg.HumidityExpectedMax)
	assert.Equal(t, 100, *cfg.HumidityExpectedMax)
	assert.True(t, cfg.KafkaEnabled)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "custom-reports", cfg.KafkaReportTopic)
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"API_TIMEOUT", "soon"},
		{"API_TIMEOUT", "0s"},
		{"API_RETRY_COUNT", "three"},
		{"API_RETRY_COUNT", "0"},
		{"API_RETRY_COUNT", "11"},
		{"API_RETRY_DELAY", "-1s"},
		{"API_BACKOFF_FACTOR", "0.5"},
		{"API_BACKOFF_FACTOR", "x"},
		{"API_MAX_RETRY_DELAY", "bad"},
		{"API_RATE_LIMIT", "-1"},
		{"MONITOR_INTERVAL", "0s"},
		{"MONITOR_DAY_OFFSET", "two"},
		{"HUMIDITY_EXPECTED_MIN", "low"},
		{"SHUTDOWN_TIMEOUT", "not-a-duration"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_ExpectedBoundsInverted(t *testing.T) {
	t.Setenv("HUMIDITY_EXPECTED_MIN", "90")
	t.Setenv("HUMIDITY_EXPECTED_MAX", "50")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HUMIDITY_EXPECTED_MIN")
}

func TestLoad_ConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: http://file.example
  timeout: 12s
  rate_limit: 4
  headers:
    User-Agent: e2e-suite
    X-Trace: "on"
  endpoints:
    nine_day_forecast: /file/fnd
  retry:
    max_attempts: 4
    delay: 500ms
    backoff_factor: 3
    max_delay: 8s
    status_codes: [503]
`)
	t.Setenv("API_CONFIG_FILE", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://file.example", cfg.APIBaseURL)
	assert.Equal(t, 12*time.Second, cfg.APITimeout)
	assert.Equal(t, 4.0, cfg.APIRateLimit)
	assert.Equal(t, "e2e-suite", cfg.APIHeaders["User-Agent"])
	assert.Equal(t, "on", cfg.APIHeaders["X-Trace"])
	assert.Equal(t, "application/json", cfg.APIHeaders["Accept"], "defaults kept")
	assert.Equal(t, "/file/fnd", cfg.Endpoints.NineDayForecast)
	assert.Equal(t, DefaultCurrentEndpoint, cfg.Endpoints.CurrentWeather)
	assert.Equal(t, 4, cfg.Retry.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Retry.BaseDelay)
	assert.Equal(t, 3.0, cfg.Retry.Multiplier)
	assert.Equal(t, 8*time.Second, cfg.Retry.MaxDelay)
	assert.Equal(t, []int{503}, cfg.Retry.RetryableStatus)
}

func TestLoad_EnvOverridesConfigFile(t *testing.T) {
	path := writeConfigFile(t, `
api:
  base_url: http://file.example
  retry:
    max_attempts: 4
`)
	t.Setenv("API_CONFIG_FILE", path)
	t.Setenv("API_BASE_URL", testBaseURL)
	t.Setenv("API_RETRY_COUNT", "2")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, testBaseURL, cfg.APIBaseURL)
	assert.Equal(t, 2, cfg.Retry.MaxAttempts)
}

func TestLoad_ConfigFileErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		t.Setenv("API_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_CONFIG_FILE")
	})

	t.Run("malformed yaml", func(t *testing.T) {
		t.Setenv("API_CONFIG_FILE", writeConfigFile(t, "api: [unclosed"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API_CONFIG_FILE")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("API_CONFIG_FILE", writeConfigFile(t, "api:\n  timeout: forever\n"))
		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "api.timeout")
	})
}

func TestConfig_HeadersReturnsCopy(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	h := cfg.Headers()
	h["Accept"] = "text/plain"
	assert.Equal(t, "application/json", cfg.APIHeaders["Accept"])
}
