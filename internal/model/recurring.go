package model

import (
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/shopspring/decimal"
)

// Frequency is the repetition interval of a recurring transaction.
type Frequency string

// Frequencies.
const (
	FrequencyDaily     Frequency = "daily"
	FrequencyWeekly    Frequency = "weekly"
	FrequencyBiweekly  Frequency = "biweekly"
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// ParseFrequency validates a frequency name.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return f, nil
	}
	return "", common.Validationf("unknown frequency %q", s)
}

// Next returns the occurrence after d. Month-based frequencies keep the
// anchor day of month, clamped to the last day of shorter months.
func (f Frequency) Next(d time.Time, anchorDay int) (time.Time, error) {
	switch f {
	case FrequencyDaily:
		return d.AddDate(0, 0, 1), nil
	case FrequencyWeekly:
		return d.AddDate(0, 0, 7), nil
	case FrequencyBiweekly:
		return d.AddDate(0, 0, 14), nil
	case FrequencyMonthly:
		return addMonths(d, 1, anchorDay), nil
	case FrequencyQuarterly:
		return addMonths(d, 3, anchorDay), nil
	case FrequencyYearly:
		return addMonths(d, 12, anchorDay), nil
	}
	return time.Time{}, common.Validationf("unknown frequency %q", f)
}

func addMonths(d time.Time, months, anchorDay int) time.Time {
	if anchorDay <= 0 {
		anchorDay = d.Day()
	}
	first := time.Date(d.Year(), d.Month()+time.Month(months), 1, 0, 0, 0, 0, time.UTC)
	lastDay := first.AddDate(0, 1, -1).Day()
	return time.Date(first.Year(), first.Month(), min(anchorDay, lastDay), 0, 0, 0, 0, time.UTC)
}

// RecurringTransaction is a schedule that produces transactions.
type RecurringTransaction struct {
	NextDate    time.Time
	CategoryID  *string
	Amount      decimal.Decimal
	ID          string
	AccountID   string
	Frequency   Frequency
	Description string
	AnchorDay   int
	Active      bool
}
