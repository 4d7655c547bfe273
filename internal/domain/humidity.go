package domain

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
)

// humidityRe matches "<digits>[%] - <digits>[%]". The separator is an ASCII
// hyphen or a U+2013 en dash; other dash variants are deliberately not accepted.
var humidityRe = regexp.MustCompile(`(\d+)\s*%?\s*[-\x{2013}]\s*(\d+)\s*%?`)

// Validation failures reported by CheckHumidityRange.
var (
	ErrUnparseable      = errors.New("humidity text has no range")
	ErrInvertedRange    = errors.New("humidity min exceeds max")
	ErrBelowExpectedMin = errors.New("humidity min below expected")
	ErrAboveExpectedMax = errors.New("humidity max above expected")
)

// HumidityRange is a relative humidity forecast range in percent.
type HumidityRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// InPercentRange reports whether 0 <= Min <= Max <= 100.
func (r HumidityRange) InPercentRange() bool {
	return r.Min >= 0 && r.Min <= r.Max && r.Max <= 100
}

func (r HumidityRange) String() string {
	return FormatHumidity(r.Min, r.Max)
}

// Bounds are optional expectations applied by CheckHumidityRange.
// A nil field is not checked.
type Bounds struct {
	Min *int
	Max *int
}

// IntPtr is a convenience for building Bounds literals.
func IntPtr(v int) *int { return &v }

// ParseHumidityRange extracts the first humidity range from text, which may
// come from the API ("60 - 85") or from the app UI ("60-85%", "60% – 85%").
func ParseHumidityRange(text string) (HumidityRange, bool) {
	m := humidityRe.FindStringSubmatch(text)
	if len(m) != 3 {
		return HumidityRange{}, false
	}

	lo, errLo := strconv.Atoi(m[1])
	hi, errHi := strconv.Atoi(m[2])
	if errLo != nil || errHi != nil {
		return HumidityRange{}, false
	}
	return HumidityRange{Min: lo, Max: hi}, true
}

// CheckHumidityRange parses text and applies the validation rules in order:
// the text must contain a range, min must not exceed max, and the optional
// bounds must hold. The returned error wraps one of the Err* sentinels.
func CheckHumidityRange(text string, b Bounds) (HumidityRange, error) {
	r, ok := ParseHumidityRange(text)
	if !ok {
		return HumidityRange{}, fmt.Errorf("%w: %q", ErrUnparseable, text)
	}
	if r.Min > r.Max {
		return r, fmt.Errorf("%w: min %d > max %d", ErrInvertedRange, r.Min, r.Max)
	}
	if b.Min != nil && r.Min < *b.Min {
		return r, fmt.Errorf("%w: %d%% < %d%%", ErrBelowExpectedMin, r.Min, *b.Min)
	}
	if b.Max != nil && r.Max > *b.Max {
		return r, fmt.Errorf("%w: %d%% > %d%%", ErrAboveExpectedMax, r.Max, *b.Max)
	}
	return r, nil
}

// ValidateHumidityRange is CheckHumidityRange reduced to a bool, logging the
// reason for any failure. A nil logger discards the log line.
func ValidateHumidityRange(text string, b Bounds, logger *slog.Logger) bool {
	r, err := CheckHumidityRange(text, b)
	if logger == nil {
		return err == nil
	}
	if err != nil {
		logger.Error("humidity validation failed", "text", text, "error", err)
		return false
	}
	logger.Info("humidity range validated", "min", r.Min, "max", r.Max)
	return true
}

// HumidityMatches reports whether two humidity texts describe the same range,
// e.g. UI text "60-85%" and API text "60 - 85". Unparseable text never matches.
func HumidityMatches(a, b string) bool {
	ra, ok := ParseHumidityRange(a)
	if !ok {
		return false
	}
	rb, ok := ParseHumidityRange(b)
	if !ok {
		return false
	}
	return ra == rb
}
