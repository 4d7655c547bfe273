package domain

import (
	"fmt"
	"time"
)

// dateKeyLayout is the forecastDate format used by the 9-day forecast.
const dateKeyLayout = "20060102"

// DateKey formats t as a forecastDate key ("YYYYMMDD") in t's own location.
func DateKey(t time.Time) string {
	return t.Format(dateKeyLayout)
}

// ParseDateKey parses a forecastDate key in loc. A nil loc means time.Local.
func ParseDateKey(key string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateKeyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse forecast date %q: %w", key, err)
	}
	return t, nil
}

// FindForecast returns the entry whose forecastDate matches date.
// Entries are scanned in payload order and the first match wins.
func FindForecast(p *ForecastPayload, date time.Time) (ForecastEntry, bool) {
	if p == nil || len(p.WeatherForecast) == 0 {
		return ForecastEntry{}, false
	}

	key := DateKey(date)
	for _, entry := range p.WeatherForecast {
		if entry.ForecastDate == key {
			return entry, true
		}
	}
	return ForecastEntry{}, false
}

// Humidity returns the entry's relative humidity range. It reports false
// when either forecastMinrh.value or forecastMaxrh.value is missing.
func (e ForecastEntry) Humidity() (HumidityRange, bool) {
	if e.ForecastMinrh == nil || e.ForecastMinrh.Value == nil {
		return HumidityRange{}, false
	}
	if e.ForecastMaxrh == nil || e.ForecastMaxrh.Value == nil {
		return HumidityRange{}, false
	}
	return HumidityRange{Min: *e.ForecastMinrh.Value, Max: *e.ForecastMaxrh.Value}, true
}

// HumidityForDate returns the humidity text ("<min> - <max>") for date.
func HumidityForDate(p *ForecastPayload, date time.Time) (string, bool) {
	entry, ok := FindForecast(p, date)
	if !ok {
		return "", false
	}
	r, ok := entry.Humidity()
	if !ok {
		return "", false
	}
	return FormatHumidity(r.Min, r.Max), true
}

// FormatHumidity renders a humidity range the way ParseHumidityRange reads it back.
func FormatHumidity(lo, hi int) string {
	return fmt.Sprintf("%d - %d", lo, hi)
}
