// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fraction digits carried by every money value.
const MoneyScale = 2

// DateLayout is the calendar-date layout used for storage and input.
const DateLayout = "2006-01-02"

var (
	// ErrInvalidAmount indicates a malformed money value.
	ErrInvalidAmount = fmt.Errorf("%w: invalid amount", common.ErrValidation)
	// ErrInvalidDate indicates a malformed calendar date.
	ErrInvalidDate = fmt.Errorf("%w: invalid date", common.ErrValidation)
)

// ParseAmount parses a decimal money string such as "-86.43" or "1,250.00".
func ParseAmount(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	clean = strings.TrimPrefix(clean, "$")
	if clean == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if err := CheckScale(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// CheckScale rejects values with more than two fraction digits or whose
// cents do not fit in an int64.
func CheckScale(d decimal.Decimal) error {
	if !d.Equal(d.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: %s has more than %d decimal places", ErrInvalidAmount, d.String(), MoneyScale)
	}
	if !d.Shift(MoneyScale).BigInt().IsInt64() {
		return fmt.Errorf("%w: %s is out of range", ErrInvalidAmount, d.String())
	}
	return nil
}

// ToCents converts a money value to integer minor units.
func ToCents(d decimal.Decimal) (int64, error) {
	if err := CheckScale(d); err != nil {
		return 0, err
	}
	return d.Shift(MoneyScale).IntPart(), nil
}

// FromCents converts integer minor units back to a money value.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -MoneyScale)
}

// FormatMoney renders a value with exactly two fraction digits.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(MoneyScale)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Day truncates t to its calendar date at UTC midnight.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FormatDate renders the calendar date of t.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
