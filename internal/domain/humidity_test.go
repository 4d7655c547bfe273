package domain

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseHumidityRange(t *testing.T) {
	tests := []struct {
		name string
		text string
		want HumidityRange
	}{
		{"api format", "60 - 85", HumidityRange{60, 85}},
		{"compact with percent", "50-90%", HumidityRange{50, 90}},
		{"spaced with trailing percent", "70 - 80%", HumidityRange{70, 80}},
		{"percent on both sides", "60% - 85%", HumidityRange{60, 85}},
		{"en dash", "60–85%", HumidityRange{60, 85}},
		{"spaced en dash", "60 % – 85 %", HumidityRange{60, 85}},
		{"embedded in UI text", "Tuesday\nRelative Humidity 65-95%\nSunny", HumidityRange{65, 95}},
		{"first occurrence wins", "60-85% then 10-20%", HumidityRange{60, 85}},
		{"inverted is still parsed", "70 - 60", HumidityRange{70, 60}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseHumidityRange(tt.text)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseHumidityRange_NoMatch(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"single number", "85%"},
		{"words only", "humidity unavailable"},
		{"em dash is not a separator", "60—85%"},
		{"minus sign is not a separator", "60−85%"},
		{"slash separator", "60/85"},
		{"overflowing digits", "99999999999999999999 - 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseHumidityRange(tt.text)
			assert.False(t, ok)
		})
	}
}

func TestParseHumidityRange_RoundTripsAllFormats(t *testing.T) {
	for a := 0; a <= 200; a++ {
		for b := 0; b <= 200; b++ {
			for _, text := range []string{
				FormatHumidity(a, b),
				fmt.Sprintf("%d-%d%%", a, b),
			} {
				got, ok := ParseHumidityRange(text)
				if !ok || got != (HumidityRange{a, b}) {
					t.Fatalf("ParseHumidityRange(%q) = %v, %v; want {%d %d}", text, got, ok, a, b)
				}
			}
		}
	}
}

func TestCheckHumidityRange(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		bounds  Bounds
		wantErr error
	}{
		{"valid without bounds", "60 - 85", Bounds{}, nil},
		{"valid compact", "50-90%", Bounds{}, nil},
		{"equal min and max", "70 - 70", Bounds{}, nil},
		{"unparseable", "n/a", Bounds{}, ErrUnparseable},
		{"inverted", "70 - 60", Bounds{}, ErrInvertedRange},
		{"below expected min", "60 - 85", Bounds{Min: IntPtr(65)}, ErrBelowExpectedMin},
		{"at expected min", "60 - 85", Bounds{Min: IntPtr(60)}, nil},
		{"above expected min", "60 - 85", Bounds{Min: IntPtr(50)}, nil},
		{"above expected max", "60 - 85", Bounds{Max: IntPtr(80)}, ErrAboveExpectedMax},
		{"at expected max", "60 - 85", Bounds{Max: IntPtr(85)}, nil},
		{"within both bounds", "60 - 85", Bounds{Min: IntPtr(50), Max: IntPtr(95)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CheckHumidityRange(tt.text, tt.bounds)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestCheckHumidityRange_InvertedCheckedBeforeBounds(t *testing.T) {
	// An inverted range that also violates both bounds reports the inversion.
	_, err := CheckHumidityRange("90 - 10", Bounds{Min: IntPtr(95), Max: IntPtr(5)})
	assert.ErrorIs(t, err, ErrInvertedRange)
}

func TestValidateHumidityRange(t *testing.T) {
	logger := discardLogger()

	assert.True(t, ValidateHumidityRange("60 - 85", Bounds{}, logger))
	assert.True(t, ValidateHumidityRange("50-90%", Bounds{}, logger))
	assert.False(t, ValidateHumidityRange("70 - 60", Bounds{}, logger))
	assert.False(t, ValidateHumidityRange("60 - 85", Bounds{Min: IntPtr(65)}, logger))
	assert.True(t, ValidateHumidityRange("60 - 85", Bounds{Min: IntPtr(50)}, logger))
	assert.False(t, ValidateHumidityRange("60 - 85", Bounds{Max: IntPtr(80)}, logger))
	assert.False(t, ValidateHumidityRange("", Bounds{}, logger))
	assert.False(t, ValidateHumidityRange("60 - 85", Bounds{Min: IntPtr(65)}, nil))
}

func TestValidateHumidityRange_LogsReason(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ok := ValidateHumidityRange("70 - 60", Bounds{}, logger)

	assert.False(t, ok)
	assert.Contains(t, buf.String(), "humidity validation failed")
	assert.Contains(t, buf.String(), "min 70 > max 60")
}

func TestHumidityMatches(t *testing.T) {
	assert.True(t, HumidityMatches("60-85%", "60 - 85"))
	assert.True(t, HumidityMatches("60% – 85%", FormatHumidity(60, 85)))
	assert.False(t, HumidityMatches("60-85%", "60 - 90"))
	assert.False(t, HumidityMatches("", "60 - 85"))
	assert.False(t, HumidityMatches("60 - 85", "unknown"))
}

func TestHumidityRange_InPercentRange(t *testing.T) {
	assert.True(t, HumidityRange{0, 100}.InPercentRange())
	assert.True(t, HumidityRange{60, 85}.InPercentRange())
	assert.False(t, HumidityRange{-1, 50}.InPercentRange())
	assert.False(t, HumidityRange{50, 101}.InPercentRange())
	assert.False(t, HumidityRange{85, 60}.InPercentRange())
}

func TestHumidityRange_String(t *testing.T) {
	assert.Equal(t, "60 - 85", HumidityRange{60, 85}.String())
}
