package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

func freeze(t *testing.T) {
	t.Helper()
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, time.October, 18, 11, 30, 0, 0, hkt)))
	t.Cleanup(func() { domain.SetClock(nil) })
}

func TestGenerate(t *testing.T) {
	freeze(t)

	fp, ui := generate(forecastDays)

	require.Len(t, fp.WeatherForecast, forecastDays)
	require.Len(t, ui, forecastDays)
	assert.Equal(t, "2026-10-18T11:30:00+08:00", fp.UpdateTime)
	assert.Equal(t, "20261018", fp.WeatherForecast[0].ForecastDate)
	assert.Equal(t, "Sunday", fp.WeatherForecast[0].Week)
	assert.Equal(t, "20261026", fp.WeatherForecast[8].ForecastDate)

	for i, entry := range fp.WeatherForecast {
		r, ok := entry.Humidity()
		require.True(t, ok, entry.ForecastDate)
		assert.True(t, r.InPercentRange(), entry.ForecastDate)
		assert.Equal(t, entry.ForecastDate, ui[i].Date)
		assert.True(t, domain.HumidityMatches(ui[i].Text, domain.FormatHumidity(r.Min, r.Max)), ui[i].Text)
	}
	assert.Equal(t, "50 - 65", ui[0].Text)
	assert.Equal(t, "57-75%", ui[1].Text)
}

func TestGenerate_MatchesCommittedFixtures(t *testing.T) {
	freeze(t)
	fp, ui := generate(forecastDays)

	var committed domain.ForecastPayload
	data, err := os.ReadFile(filepath.Join("..", "..", "data", "mock", "fnd_20261018.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &committed))
	assert.Equal(t, fp, committed)

	var committedUI []uiHumidity
	data, err = os.ReadFile(filepath.Join("..", "..", "data", "mock", "ui_humidity_20261018.json"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &committedUI))
	assert.Equal(t, ui, committedUI)
}

func TestWriteJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.json")
	require.NoError(t, writeJSON(path, map[string]int{"a": 1}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
}
