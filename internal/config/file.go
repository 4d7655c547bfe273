package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the optional YAML configuration file:
//
//	api:
//	  base_url: https://data.weather.gov.hk
//	  timeout: 30s
//	  headers:
//	    Accept: application/json
//	  endpoints:
//	    nine_day_forecast: /weatherAPI/opendata/weather.php?dataType=fnd&lang=en
//	  retry:
//	    max_attempts: 3
//	    delay: 1s
//	    backoff_factor: 2
//	    max_delay: 10s
//	    status_codes: [429, 500, 502, 503, 504]
type fileConfig struct {
	API struct {
		BaseURL   string            `yaml:"base_url"`
		Timeout   string            `yaml:"timeout"`
		RateLimit float64           `yaml:"rate_limit"`
		Headers   map[string]string `yaml:"headers"`
		Endpoints struct {
			NineDayForecast string `yaml:"nine_day_forecast"`
			CurrentWeather  string `yaml:"current_weather"`
			WeatherWarning  string `yaml:"weather_warning"`
		} `yaml:"endpoints"`
		Retry struct {
			MaxAttempts   int     `yaml:"max_attempts"`
			Delay         string  `yaml:"delay"`
			BackoffFactor float64 `yaml:"backoff_factor"`
			MaxDelay      string  `yaml:"max_delay"`
			StatusCodes   []int   `yaml:"status_codes"`
		} `yaml:"retry"`
	} `yaml:"api"`
}

func readFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read API_CONFIG_FILE: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse API_CONFIG_FILE %s: %w", path, err)
	}
	return &fc, nil
}

// apply overlays the non-zero file values onto cfg. Headers are merged so a
// file can add or replace individual headers without restating the defaults.
func (fc *fileConfig) apply(cfg *Config) error {
	api := fc.API

	setString(&cfg.APIBaseURL, api.BaseURL)
	setString(&cfg.Endpoints.NineDayForecast, api.Endpoints.NineDayForecast)
	setString(&cfg.Endpoints.CurrentWeather, api.Endpoints.CurrentWeather)
	setString(&cfg.Endpoints.WeatherWarning, api.Endpoints.WeatherWarning)

	for k, v := range api.Headers {
		cfg.APIHeaders[k] = v
	}
	if api.RateLimit != 0 {
		cfg.APIRateLimit = api.RateLimit
	}

	if err := setDuration(&cfg.APITimeout, api.Timeout, "api.timeout"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Retry.BaseDelay, api.Retry.Delay, "api.retry.delay"); err != nil {
		return err
	}
	if err := setDuration(&cfg.Retry.MaxDelay, api.Retry.MaxDelay, "api.retry.max_delay"); err != nil {
		return err
	}
	if api.Retry.MaxAttempts != 0 {
		cfg.Retry.MaxAttempts = api.Retry.MaxAttempts
	}
	if api.Retry.BackoffFactor != 0 {
		cfg.Retry.Multiplier = api.Retry.BackoffFactor
	}
	if len(api.Retry.StatusCodes) > 0 {
		cfg.Retry.RetryableStatus = api.Retry.StatusCodes
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v, field string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s in API_CONFIG_FILE: %w", field, err)
	}
	*dst = d
	return nil
}
