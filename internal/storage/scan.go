package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/shopspring/decimal"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

func nullDate(t *time.Time) sql.NullString {
	if t == nil || t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: model.FormatDate(*t), Valid: true}
}

func datePtr(ns sql.NullString) (*time.Time, error) {
	if !ns.Valid {
		return nil, nil
	}
	t, err := model.ParseDate(ns.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func nullCents(d *decimal.Decimal) (sql.NullInt64, error) {
	if d == nil {
		return sql.NullInt64{}, nil
	}
	c, err := model.ToCents(*d)
	if err != nil {
		return sql.NullInt64{}, err
	}
	return sql.NullInt64{Int64: c, Valid: true}, nil
}

func decimalPtr(ni sql.NullInt64) *decimal.Decimal {
	if !ni.Valid {
		return nil
	}
	d := model.FromCents(ni.Int64)
	return &d
}

// toCents converts each money value in order, stopping at the first error.
func toCents(field string, values ...decimal.Decimal) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		c, err := model.ToCents(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", field, err)
		}
		out[i] = c
	}
	return out, nil
}
