// Command validate performs integrity checks on the HKO mock fixtures: the
// 9-day forecast response and the UI humidity strings. It verifies structure,
// date continuity, humidity parsing, and UI/API agreement using the same
// domain functions the client and tests use.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -forecast data/mock/fnd_20261018.json \
//	  -ui data/mock/ui_humidity_20261018.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hko-weather-e2e/internal/domain"
)

const expectedDays = 9

var hkt = time.FixedZone("HKT", 8*60*60)

// uiHumidity mirrors the genmock UI fixture record.
type uiHumidity struct {
	Date string `json:"date"`
	Text string `json:"text"`
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	forecastPath := flag.String("forecast", "", "path to the 9-day forecast fixture")
	uiPath := flag.String("ui", "", "path to the UI humidity fixture")
	flag.Parse()

	if *forecastPath == "" || *uiPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*forecastPath, *uiPath, os.Stdout); code != 0 {
		os.Exit(code)
	}
}

func run(forecastPath, uiPath string, w io.Writer) int {
	fmt.Fprintln(w, "=== HKO Fixture Validation ===")
	fmt.Fprintln(w)

	raw, err := loadJSON[domain.Payload](forecastPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load forecast: %v\n", err)
		return 1
	}
	ui, err := loadJSON[[]uiHumidity](uiPath)
	if err != nil {
		fmt.Fprintf(w, "FATAL: load UI humidity: %v\n", err)
		return 1
	}

	structure, fp := validateStructure(raw)
	phases := []*phase{structure}
	if fp != nil {
		phases = append(phases,
			validateHumidity(fp),
			validateUIAgreement(fp, ui),
			validateDayOffsets(fp),
		)
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-30s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  %d. %s\n", i+1, e)
		}
	}

	fmt.Fprintln(w)
	if !allPassed {
		fmt.Fprintln(w, "RESULT: FAIL")
		return 1
	}
	fmt.Fprintln(w, "RESULT: PASS")
	return 0
}

func loadJSON[T any](path string) (T, error) {
	var v T
	data, err := os.ReadFile(path)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

// validateStructure checks required keys, entry count, and that dates are
// consecutive with matching weekday names. The decoded forecast is nil when
// the later phases cannot run.
func validateStructure(raw domain.Payload) (*phase, *domain.ForecastPayload) {
	p := &phase{name: "Forecast structure"}

	if missing := domain.MissingFields(raw, domain.ForecastRequiredFields...); len(missing) > 0 {
		p.errorf("missing top-level fields: %v", missing)
	}

	fp, err := domain.DecodeForecast(raw)
	if err != nil {
		p.errorf("decode: %v", err)
		return p, nil
	}
	for _, skipErr := range fp.Skipped {
		p.errorf("decode: %v", skipErr)
	}
	if n := len(fp.WeatherForecast); n != expectedDays {
		p.errorf("expected %d forecast days, got %d", expectedDays, n)
	}

	var prev time.Time
	for i, e := range fp.WeatherForecast {
		date, err := domain.ParseDateKey(e.ForecastDate, hkt)
		if err != nil {
			p.errorf("entry %d: %v", i, err)
			continue
		}
		if e.Week != date.Weekday().String() {
			p.errorf("%s: week %q, want %q", e.ForecastDate, e.Week, date.Weekday())
		}
		if i > 0 && !prev.IsZero() && domain.DaysBetween(prev, date) != 1 {
			p.errorf("%s: not the day after %s", e.ForecastDate, domain.DateKey(prev))
		}
		prev = date
	}
	return p, fp
}

// validateHumidity checks every entry has a parseable, ordered 0-100% range.
func validateHumidity(fp *domain.ForecastPayload) *phase {
	p := &phase{name: "Humidity ranges"}

	for _, e := range fp.WeatherForecast {
		r, ok := e.Humidity()
		if !ok {
			p.errorf("%s: missing forecastMinrh/forecastMaxrh value", e.ForecastDate)
			continue
		}
		text := domain.FormatHumidity(r.Min, r.Max)
		if _, err := domain.CheckHumidityRange(text, domain.Bounds{}); err != nil {
			p.errorf("%s: %v", e.ForecastDate, err)
		}
		if !r.InPercentRange() {
			p.errorf("%s: %s outside 0-100%%", e.ForecastDate, r)
		}
	}
	return p
}

// validateUIAgreement checks each UI string matches the API range for its date.
func validateUIAgreement(fp *domain.ForecastPayload, ui []uiHumidity) *phase {
	p := &phase{name: "UI/API agreement"}

	if len(ui) != len(fp.WeatherForecast) {
		p.errorf("UI has %d days, forecast has %d", len(ui), len(fp.WeatherForecast))
	}
	for _, u := range ui {
		date, err := domain.ParseDateKey(u.Date, hkt)
		if err != nil {
			p.errorf("%v", err)
			continue
		}
		api, ok := domain.HumidityForDate(fp, date)
		if !ok {
			p.errorf("%s: no API humidity", u.Date)
			continue
		}
		if !domain.HumidityMatches(u.Text, api) {
			p.errorf("%s: UI %q does not match API %q", u.Date, u.Text, api)
		}
	}
	return p
}

// validateDayOffsets checks the offset lookups resolve against the fixture
// when today is its first forecast day.
func validateDayOffsets(fp *domain.ForecastPayload) *phase {
	p := &phase{name: "Day offset lookups"}

	first, err := domain.ParseDateKey(fp.WeatherForecast[0].ForecastDate, hkt)
	if err != nil {
		p.errorf("%v", err)
		return p
	}
	domain.SetClock(clockwork.NewFakeClockAt(first.Add(12 * time.Hour)))
	defer domain.SetClock(nil)

	for offset := range min(len(fp.WeatherForecast), expectedDays) {
		entry, ok := domain.FindForecast(fp, domain.DayOffset(offset))
		if !ok {
			p.errorf("offset %d: no entry", offset)
			continue
		}
		if entry.ForecastDate != fp.WeatherForecast[offset].ForecastDate {
			p.errorf("offset %d: got %s, want %s", offset, entry.ForecastDate, fp.WeatherForecast[offset].ForecastDate)
		}
	}
	if _, ok := domain.HumidityForDate(fp, domain.DayAfterTomorrow()); !ok {
		p.errorf("day after tomorrow: no humidity")
	}
	return p
}
