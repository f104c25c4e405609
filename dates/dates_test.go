package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want bool
	}{
		{"serial", 45292.0, true},
		{"serial lower bound is open", 1000.0, false},
		{"serial upper bound is open", 100000.0, false},
		{"small number", 12.0, false},
		{"int serial", 45000, true},
		{"slash", "5/3/2024", true},
		{"slash padded", " 05/03/2024 ", true},
		{"iso", "2024-3-5", true},
		{"dash", "05-03-2024", true},
		{"dot", "5.3.2024", true},
		{"month first", "Mar 5, 2024", true},
		{"month first no comma", "Mar  5 2024", true},
		{"day month", "5 Mar 2024", true},
		{"two digit year", "5/3/24", false},
		{"text", "Monday", false},
		{"bool", true, false},
		{"nil", nil, false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDate(tt.in))
		})
	}
}

func TestFromSerial(t *testing.T) {
	tests := []struct {
		serial float64
		want   string
	}{
		{1, "01/01/1900"},
		{59, "28/02/1900"},
		{60, "28/02/1900"},
		{61, "01/03/1900"},
		{45292, "01/01/2024"},
		{45658, "01/01/2025"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Format(FromSerial(tt.serial), false), "serial %v", tt.serial)
	}
}

func TestFromSerialLeapYearCorrection(t *testing.T) {
	uncorrected := func(s float64) time.Time {
		return serialEpoch.AddDate(0, 0, int(s)-1)
	}
	for s := 2.0; s < 60; s++ {
		assert.Equal(t, uncorrected(s), FromSerial(s), "serial %v", s)
	}
	for _, s := range []float64{60, 61, 1000, 45292, 99999} {
		assert.Equal(t, uncorrected(s).AddDate(0, 0, -1), FromSerial(s), "serial %v", s)
	}
}

func TestFromSerialTimeOfDay(t *testing.T) {
	got := FromSerial(45292.75)
	assert.Equal(t, "01/01/2024 18:00", Format(got, true))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		in       any
		withTime bool
		want     string
		ok       bool
	}{
		{"serial", 45292.0, false, "01/01/2024", true},
		{"serial with time", 45292.5, true, "01/01/2024 12:00", true},
		{"day first", "5/3/2024", false, "05/03/2024", true},
		{"day first past twelve", "25/12/2024", false, "25/12/2024", true},
		{"iso", "2024-03-05", false, "05/03/2024", true},
		{"dash", "05-03-2024", false, "05/03/2024", true},
		{"dot", "5.3.2024", false, "05/03/2024", true},
		{"month name", "Mar 5, 2024", false, "05/03/2024", true},
		{"month name lower", "mar 5 2024", false, "05/03/2024", true},
		{"day month", "5 Mar 2024", false, "05/03/2024", true},
		{"rfc3339", "2025-01-01T21:00:00Z", true, "01/01/2025 21:00", true},
		{"impossible day", "31/02/2024", false, "", false},
		{"garbage", "not a date", false, "", false},
		{"empty", "", false, "", false},
		{"bool", true, false, "", false},
		{"zero", 0.0, false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.in, tt.withTime)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	for _, s := range []string{"01/01/2024", "29/02/2024", "31/12/1999", "13/07/2025"} {
		require.True(t, IsDate(s), s)
		got, ok := Normalize(s, false)
		require.True(t, ok, s)
		assert.Equal(t, s, got)
	}
}

func TestNormalizeInLocation(t *testing.T) {
	sydney, err := time.LoadLocation("Australia/Sydney")
	if err != nil {
		t.Skip("tzdata not available")
	}
	got, ok := NormalizeIn("2025-01-01T21:00:00Z", true, sydney)
	require.True(t, ok)
	assert.Equal(t, "02/01/2025 08:00", got)
}
