package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
)

// Payload is a decoded JSON object as returned by any HKO endpoint.
// Values are kept raw so callers decode only the keys they need.
type Payload map[string]json.RawMessage

// ForecastRequiredFields are the top-level keys every 9-day forecast carries.
var ForecastRequiredFields = []string{"generalSituation", "weatherForecast", "updateTime"}

// ErrNoForecastEntries is returned by DecodeForecast when weatherForecast is absent or empty.
var ErrNoForecastEntries = errors.New("payload has no weatherForecast entries")

// Measurement is an HKO value/unit pair such as {"value": 60, "unit": "percent"}.
type Measurement struct {
	Value *int   `json:"value,omitempty"`
	Unit  string `json:"unit,omitempty"`
}

// UnmarshalJSON accepts any integral JSON number for value, so 95 and 95.0
// decode alike.
func (m *Measurement) UnmarshalJSON(data []byte) error {
	var raw struct {
		Value json.Number `json:"value"`
		Unit  string      `json:"unit"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Unit = raw.Unit
	m.Value = nil
	if raw.Value == "" {
		return nil
	}
	if n, err := raw.Value.Int64(); err == nil && n >= math.MinInt32 && n <= math.MaxInt32 {
		m.Value = IntPtr(int(n))
		return nil
	}
	f, err := raw.Value.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("measurement value %s is not an integer", raw.Value)
	}
	m.Value = IntPtr(int(f))
	return nil
}

// ForecastEntry is one day of the 9-day forecast.
type ForecastEntry struct {
	ForecastDate    string       `json:"forecastDate"`
	Week            string       `json:"week,omitempty"`
	ForecastWind    string       `json:"forecastWind,omitempty"`
	ForecastWeather string       `json:"forecastWeather,omitempty"`
	ForecastMaxtemp *Measurement `json:"forecastMaxtemp,omitempty"`
	ForecastMintemp *Measurement `json:"forecastMintemp,omitempty"`
	ForecastMaxrh   *Measurement `json:"forecastMaxrh,omitempty"`
	ForecastMinrh   *Measurement `json:"forecastMinrh,omitempty"`
	ForecastIcon    int          `json:"ForecastIcon,omitempty"`
	PSR             string       `json:"PSR,omitempty"`
}

// ForecastPayload is the typed view of a 9-day forecast response.
type ForecastPayload struct {
	GeneralSituation string          `json:"generalSituation"`
	WeatherForecast  []ForecastEntry `json:"weatherForecast"`
	UpdateTime       string          `json:"updateTime"`
	SeaTemp          json.RawMessage `json:"seaTemp,omitempty"`
	SoilTemp         json.RawMessage `json:"soilTemp,omitempty"`

	// Skipped holds one error per weatherForecast entry that could not be decoded.
	Skipped []error `json:"-"`
}

// DecodeForecast reads the typed 9-day forecast out of a raw payload.
// Entries are decoded one at a time; a malformed entry is recorded in
// Skipped and the rest stay usable.
func DecodeForecast(p Payload) (*ForecastPayload, error) {
	if p == nil {
		return nil, errors.New("decode forecast: nil payload")
	}

	var fp ForecastPayload
	if raw, ok := p["weatherForecast"]; ok {
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, fmt.Errorf("decode weatherForecast: %w", err)
		}
		for i, rawEntry := range entries {
			var entry ForecastEntry
			if err := json.Unmarshal(rawEntry, &entry); err != nil {
				fp.Skipped = append(fp.Skipped, fmt.Errorf("weatherForecast[%d]: %w", i, err))
				continue
			}
			fp.WeatherForecast = append(fp.WeatherForecast, entry)
		}
	}
	if len(fp.WeatherForecast) == 0 {
		if len(fp.Skipped) > 0 {
			return nil, fmt.Errorf("%w: %w", ErrNoForecastEntries, errors.Join(fp.Skipped...))
		}
		return nil, ErrNoForecastEntries
	}

	// Descriptive fields are best-effort; a forecast without them is still usable.
	decodeString(p, "generalSituation", &fp.GeneralSituation)
	decodeString(p, "updateTime", &fp.UpdateTime)
	fp.SeaTemp = p["seaTemp"]
	fp.SoilTemp = p["soilTemp"]

	return &fp, nil
}

// MissingFields returns the keys from fields that are absent from the payload,
// in the order given.
func MissingFields(p Payload, fields ...string) []string {
	var missing []string
	for _, f := range fields {
		if _, ok := p[f]; !ok {
			missing = append(missing, f)
		}
	}
	return missing
}

func decodeString(p Payload, key string, dst *string) {
	raw, ok := p[key]
	if !ok {
		return
	}
	_ = json.Unmarshal(raw, dst)
}
