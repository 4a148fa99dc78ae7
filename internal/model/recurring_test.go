package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestFrequencyNext(t *testing.T) {
	tests := []struct {
		from   time.Time
		want   time.Time
		name   string
		freq   Frequency
		anchor int
	}{
		{name: "daily", freq: FrequencyDaily, from: date(2024, 12, 31), want: date(2025, 1, 1)},
		{name: "weekly", freq: FrequencyWeekly, from: date(2024, 2, 26), want: date(2024, 3, 4)},
		{name: "biweekly", freq: FrequencyBiweekly, from: date(2024, 1, 1), want: date(2024, 1, 15)},
		{name: "monthly clamps to february", freq: FrequencyMonthly, from: date(2023, 1, 31), anchor: 31, want: date(2023, 2, 28)},
		{name: "monthly clamps to leap day", freq: FrequencyMonthly, from: date(2024, 1, 31), anchor: 31, want: date(2024, 2, 29)},
		{name: "monthly recovers anchor after short month", freq: FrequencyMonthly, from: date(2024, 2, 29), anchor: 31, want: date(2024, 3, 31)},
		{name: "monthly without anchor uses current day", freq: FrequencyMonthly, from: date(2024, 5, 15), want: date(2024, 6, 15)},
		{name: "quarterly", freq: FrequencyQuarterly, from: date(2024, 11, 30), anchor: 30, want: date(2025, 2, 28)},
		{name: "yearly from leap day", freq: FrequencyYearly, from: date(2024, 2, 29), anchor: 29, want: date(2025, 2, 28)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.freq.Next(tt.from, tt.anchor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Frequency("hourly").Next(date(2024, 1, 1), 0)
	assert.Error(t, err)
}

func TestParseFrequency(t *testing.T) {
	f, err := ParseFrequency("Monthly")
	require.NoError(t, err)
	assert.Equal(t, FrequencyMonthly, f)

	_, err = ParseFrequency("fortnightly")
	assert.Error(t, err)
}
