package domain

import "time"

// HumidityReport is the outcome of one humidity check against the 9-day forecast.
type HumidityReport struct {
	CheckedAt time.Time      `json:"checked_at"`
	Date      string         `json:"date"` // forecastDate key, e.g. "20261020"
	Offset    int            `json:"offset"`
	Available bool           `json:"available"`
	Humidity  string         `json:"humidity,omitempty"`
	Range     *HumidityRange `json:"range,omitempty"`
	Valid     bool           `json:"valid"`
	Error     string         `json:"error,omitempty"`
}

// BuildHumidityReport looks up the humidity for today+offset in p and checks it
// against b. A nil payload or missing entry yields an unavailable report rather
// than an error; callers treat missing data as a normal outcome.
func BuildHumidityReport(p *ForecastPayload, offset int, b Bounds) HumidityReport {
	now := clock.Now()
	target := now.AddDate(0, 0, offset)

	report := HumidityReport{
		CheckedAt: now,
		Date:      DateKey(target),
		Offset:    offset,
	}

	text, ok := HumidityForDate(p, target)
	if !ok {
		return report
	}
	report.Available = true
	report.Humidity = text

	r, err := CheckHumidityRange(text, b)
	report.Range = &r
	switch {
	case err != nil:
		report.Error = err.Error()
	case !r.InPercentRange():
		report.Error = "humidity outside 0-100%"
	default:
		report.Valid = true
	}
	return report
}

// Result classifies the report as "unavailable", "valid" or "invalid".
func (r HumidityReport) Result() string {
	switch {
	case !r.Available:
		return "unavailable"
	case r.Valid:
		return "valid"
	default:
		return "invalid"
	}
}
