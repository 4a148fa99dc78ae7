package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
)

// Validation errors. All of them satisfy errors.Is(err, common.ErrValidation).
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = fmt.Errorf("%w: string parameter cannot be empty", common.ErrValidation)
	ErrNilParameter       = fmt.Errorf("%w: parameter cannot be nil", common.ErrValidation)
	ErrInvalidDateRange   = fmt.Errorf("%w: start date must not be after end date", common.ErrValidation)
	ErrInvalidTransaction = fmt.Errorf("%w: invalid transaction", common.ErrValidation)
	ErrInvalidAccount     = fmt.Errorf("%w: invalid account", common.ErrValidation)
	ErrInvalidRecurring   = fmt.Errorf("%w: invalid recurring transaction", common.ErrValidation)
)

// maxDescriptionLength bounds transaction and schedule descriptions.
const maxDescriptionLength = 240

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	if start.After(end) {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, model.FormatDate(start), model.FormatDate(end))
	}
	return nil
}

func validateAccount(acct *model.Account) error {
	if acct == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if acct.ID == "" || acct.UserID == "" {
		return fmt.Errorf("%w: missing ID or owner", ErrInvalidAccount)
	}
	if strings.TrimSpace(acct.Name) == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidAccount)
	}
	if _, err := model.ParseAccountType(string(acct.Type)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAccount, err)
	}
	if len(acct.Currency) != 3 || strings.ToUpper(acct.Currency) != acct.Currency {
		return fmt.Errorf("%w: currency %q must be three uppercase letters", ErrInvalidAccount, acct.Currency)
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if txn.AccountID == "" {
		return fmt.Errorf("%w: missing account ID", ErrInvalidTransaction)
	}
	if len([]rune(txn.Description)) > maxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidTransaction, maxDescriptionLength)
	}
	if txn.Type != model.TypeOf(txn.Amount) {
		return fmt.Errorf("%w: type %q disagrees with amount %s", ErrInvalidTransaction, txn.Type, txn.Amount)
	}
	return nil
}

func validateRecurring(rec *model.RecurringTransaction) error {
	if rec == nil {
		return fmt.Errorf("%w: recurring transaction", ErrNilParameter)
	}
	if rec.ID == "" || rec.AccountID == "" {
		return fmt.Errorf("%w: missing ID or account", ErrInvalidRecurring)
	}
	if rec.NextDate.IsZero() {
		return fmt.Errorf("%w: missing next date", ErrInvalidRecurring)
	}
	if _, err := model.ParseFrequency(string(rec.Frequency)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRecurring, err)
	}
	if rec.AnchorDay < 0 || rec.AnchorDay > 31 {
		return fmt.Errorf("%w: anchor day %d out of range", ErrInvalidRecurring, rec.AnchorDay)
	}
	if len([]rune(rec.Description)) > maxDescriptionLength {
		return fmt.Errorf("%w: description longer than %d characters", ErrInvalidRecurring, maxDescriptionLength)
	}
	return nil
}
