package hko

import (
	"context"
	"time"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

// FetchNineDayForecast returns the decoded 9-day forecast, or nil on any
// failure. Failures are logged, never returned.
func (c *Client) FetchNineDayForecast(ctx context.Context) *domain.ForecastPayload {
	p, err := c.Request(ctx, c.endpoints.NineDayForecast)
	if err != nil {
		c.logger.Error("fetch 9-day forecast failed", "error", err)
		return nil
	}
	if missing := domain.MissingFields(p, domain.ForecastRequiredFields...); len(missing) > 0 {
		c.logger.Warn("9-day forecast missing fields", "fields", missing)
	}

	fp, err := domain.DecodeForecast(p)
	if err != nil {
		c.logger.Error("decode 9-day forecast failed", "error", err)
		return nil
	}
	for _, skipErr := range fp.Skipped {
		c.logger.Warn("skipping malformed forecast entry", "error", skipErr)
	}
	return fp
}

// FetchCurrentWeather returns the current weather report, or nil on failure.
func (c *Client) FetchCurrentWeather(ctx context.Context) domain.Payload {
	return c.fetchPayload(ctx, c.endpoints.CurrentWeather, "current weather")
}

// FetchWeatherWarning returns the warning summary, or nil on failure.
func (c *Client) FetchWeatherWarning(ctx context.Context) domain.Payload {
	return c.fetchPayload(ctx, c.endpoints.WeatherWarning, "weather warning")
}

func (c *Client) fetchPayload(ctx context.Context, endpoint, name string) domain.Payload {
	p, err := c.Request(ctx, endpoint)
	if err != nil {
		c.logger.Error("fetch "+name+" failed", "error", err)
		return nil
	}
	return p
}

// ExtractForecastForDate returns the first forecast entry for date. A nil
// payload is fetched first.
func (c *Client) ExtractForecastForDate(ctx context.Context, date time.Time, payload *domain.ForecastPayload) (domain.ForecastEntry, bool) {
	if payload == nil {
		payload = c.FetchNineDayForecast(ctx)
	}
	entry, ok := domain.FindForecast(payload, date)
	if !ok {
		c.logger.Warn("no forecast for date", "date", domain.DateKey(date))
	}
	return entry, ok
}

// ExtractHumidityForOffset returns the humidity range, formatted "min - max",
// forecast for today plus offset days. A nil payload is fetched first.
func (c *Client) ExtractHumidityForOffset(ctx context.Context, offset int, payload *domain.ForecastPayload) (string, bool) {
	entry, ok := c.ExtractForecastForDate(ctx, domain.DayOffset(offset), payload)
	if !ok {
		return "", false
	}
	r, ok := entry.Humidity()
	if !ok {
		c.logger.Warn("forecast entry has no humidity", "date", entry.ForecastDate)
		return "", false
	}
	return domain.FormatHumidity(r.Min, r.Max), true
}

// ExtractHumidityForDayAfterTomorrow is ExtractHumidityForOffset with offset 2.
func (c *Client) ExtractHumidityForDayAfterTomorrow(ctx context.Context, payload *domain.ForecastPayload) (string, bool) {
	return c.ExtractHumidityForOffset(ctx, domain.DayAfterTomorrowOffset, payload)
}
