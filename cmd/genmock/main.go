// Command genmock generates deterministic HKO mock fixtures: a 9-day forecast
// response and the humidity strings the app shows for the same days. It uses
// the domain package so fixture text matches what the client produces.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -start 20261018 \
//	  -forecast-out data/mock/fnd_20261018.json \
//	  -ui-out data/mock/ui_humidity_20261018.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

const forecastDays = 9

var hkt = time.FixedZone("HKT", 8*60*60)

// uiHumidity is one day of humidity text as scraped from the app.
type uiHumidity struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

var weatherTexts = []string{
	"Sunny periods.",
	"Mainly fine.",
	"Mainly cloudy with one or two showers.",
	"Sunny intervals and a few showers.",
	"Fine and very dry.",
}

var psrLevels = []string{"Low", "Medium Low", "Medium", "Medium High", "High"}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	start := flag.String("start", "", "first forecast date as YYYYMMDD")
	forecastOut := flag.String("forecast-out", "", "output path for the 9-day forecast fixture")
	uiOut := flag.String("ui-out", "", "output path for the UI humidity fixture")
	flag.Parse()

	if *start == "" || *forecastOut == "" || *uiOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -start, -forecast-out, -ui-out")
	}

	day, err := domain.ParseDateKey(*start, hkt)
	if err != nil {
		return err
	}

	// Fixed clock so day offsets and updateTime are reproducible.
	domain.SetClock(clockwork.NewFakeClockAt(day.Add(11*time.Hour + 30*time.Minute)))
	defer domain.SetClock(nil)

	forecast, ui := generate(forecastDays)

	if err := writeJSON(*forecastOut, forecast); err != nil {
		return fmt.Errorf("writing forecast fixture: %w", err)
	}
	log.Printf("wrote forecast fixture: %s (%d days)", *forecastOut, len(forecast.WeatherForecast))

	if err := writeJSON(*uiOut, ui); err != nil {
		return fmt.Errorf("writing UI fixture: %w", err)
	}
	log.Printf("wrote UI fixture: %s", *uiOut)
	return nil
}

// generate builds n days of forecast starting today by the domain clock.
// Humidity alternates between the API's "min - max" and the app's "min-max%"
// so both formats are exercised.
func generate(n int) (domain.ForecastPayload, []uiHumidity) {
	now := domain.Today()
	fp := domain.ForecastPayload{
		GeneralSituation: "An anticyclone will bring generally fine weather to the coast of southern China.",
		UpdateTime:       now.Format(time.RFC3339),
		WeatherForecast:  make([]domain.ForecastEntry, 0, n),
	}
	ui := make([]uiHumidity, 0, n)

	for i := range n {
		date := domain.DayOffset(i)
		minRH := 50 + (i*7)%25
		maxRH := min(minRH+15+(i*3)%10, 99)
		minTemp := 22 + i%4
		maxTemp := minTemp + 4 + i%3

		fp.WeatherForecast = append(fp.WeatherForecast, domain.ForecastEntry{
			ForecastDate:    domain.DateKey(date),
			Week:            date.Weekday().String(),
			ForecastWind:    "East force 3 to 4.",
			ForecastWeather: weatherTexts[i%len(weatherTexts)],
			ForecastMaxtemp: &domain.Measurement{Value: domain.IntPtr(maxTemp), Unit: "C"},
			ForecastMintemp: &domain.Measurement{Value: domain.IntPtr(minTemp), Unit: "C"},
			ForecastMaxrh:   &domain.Measurement{Value: domain.IntPtr(maxRH), Unit: "percent"},
			ForecastMinrh:   &domain.Measurement{Value: domain.IntPtr(minRH), Unit: "percent"},
			ForecastIcon:    50 + i%5,
			PSR:             psrLevels[i%len(psrLevels)],
		})

		text := domain.FormatHumidity(minRH, maxRH)
		if i%2 == 1 {
			text = fmt.Sprintf("%d-%d%%", minRH, maxRH)
		}
		ui = append(ui, uiHumidity{Date: domain.DateKey(date), Text: text})
	}
	return fp, ui
}

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}
