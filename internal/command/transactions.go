package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput describes a new transaction. Amount is either
// signed (Type empty) or a magnitude with an explicit Type of credit,
// debit, income or expense.
type CreateTransactionInput struct {
	Date         time.Time `validate:"required"`
	Amount       decimal.Decimal
	CategoryID   *string
	BudgetItemID *string
	ExternalRef  *string
	AccountID    string `validate:"required"`
	Type         string `validate:"omitempty,oneof=credit debit income expense"`
	Description  string `validate:"max=240"`
}

// UpdateTransactionInput changes selected fields of a transaction. Nil
// fields are left alone; ClearCategory removes the category.
type UpdateTransactionInput struct {
	Date          *time.Time
	Amount        *decimal.Decimal
	AccountID     *string `validate:"omitempty,min=1"`
	CategoryID    *string `validate:"omitempty,min=1"`
	Type          *string `validate:"omitempty,oneof=credit debit income expense"`
	Description   *string `validate:"omitempty,max=240"`
	ClearCategory bool
}

// ListTransactions returns transactions with account and category names.
func (s *Service) ListTransactions(ctx context.Context, filter service.TransactionFilter) ([]model.TransactionRow, error) {
	return s.store.ListTransactions(ctx, filter)
}

// CreateTransaction validates and books a transaction, then recomputes the
// account's balance in the same unit.
func (s *Service) CreateTransaction(ctx context.Context, in CreateTransactionInput) (*model.Transaction, error) {
	var created *model.Transaction
	err := s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		txn, err := s.InsertTransaction(ctx, tx, in)
		if err != nil {
			return events.Change{}, err
		}
		if _, err := ledger.RecomputeBalance(ctx, tx, txn.AccountID); err != nil {
			return events.Change{}, err
		}
		created = txn
		return events.Change{
			Entity:     events.EntityTransaction,
			Op:         events.OpCreate,
			ID:         txn.ID,
			AccountIDs: []string{txn.AccountID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// InsertTransaction validates and inserts a transaction inside an open
// unit. It does not touch balances; the caller recomputes before commit.
func (s *Service) InsertTransaction(ctx context.Context, tx service.Transaction, in CreateTransactionInput) (*model.Transaction, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	amount, err := resolveAmount(in.Amount, in.Type)
	if err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, tx, in.AccountID, in.CategoryID); err != nil {
		return nil, err
	}

	txn := &model.Transaction{
		ID:           uuid.NewString(),
		AccountID:    in.AccountID,
		CategoryID:   in.CategoryID,
		BudgetItemID: in.BudgetItemID,
		ExternalRef:  in.ExternalRef,
		Date:         model.Day(in.Date),
		Amount:       amount,
		Type:         model.TypeOf(amount),
		Description:  in.Description,
	}
	if err := tx.CreateTransaction(ctx, txn); err != nil {
		return nil, err
	}
	return txn, nil
}

// UpdateTransaction applies in to an existing transaction. When the
// transaction moves to another account both balances are recomputed.
func (s *Service) UpdateTransaction(ctx context.Context, id string, in UpdateTransactionInput) (*model.Transaction, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}

	var updated *model.Transaction
	err := s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return events.Change{}, err
		}
		oldAccount := txn.AccountID

		if err := applyUpdate(txn, in); err != nil {
			return events.Change{}, err
		}
		if err := s.checkReferences(ctx, tx, txn.AccountID, txn.CategoryID); err != nil {
			return events.Change{}, err
		}
		if err := tx.UpdateTransaction(ctx, txn); err != nil {
			return events.Change{}, err
		}

		affected := []string{oldAccount}
		if txn.AccountID != oldAccount {
			affected = append(affected, txn.AccountID)
		}
		for _, accountID := range affected {
			if _, err := ledger.RecomputeBalance(ctx, tx, accountID); err != nil {
				return events.Change{}, err
			}
		}

		updated = txn
		return events.Change{
			Entity:     events.EntityTransaction,
			Op:         events.OpUpdate,
			ID:         txn.ID,
			AccountIDs: affected,
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteTransaction removes a transaction and recomputes its account.
func (s *Service) DeleteTransaction(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		txn, err := tx.GetTransaction(ctx, id)
		if err != nil {
			return events.Change{}, err
		}
		if err := tx.DeleteTransaction(ctx, id); err != nil {
			return events.Change{}, err
		}
		if _, err := ledger.RecomputeBalance(ctx, tx, txn.AccountID); err != nil {
			return events.Change{}, err
		}
		return events.Change{
			Entity:     events.EntityTransaction,
			Op:         events.OpDelete,
			ID:         id,
			AccountIDs: []string{txn.AccountID},
		}, nil
	})
}

// RecomputeBalances re-derives every cached balance in one unit.
func (s *Service) RecomputeBalances(ctx context.Context) (int, error) {
	var n int
	err := s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		var err error
		n, err = ledger.RecomputeAll(ctx, tx)
		return events.Change{Entity: events.EntityAccount, Op: events.OpRecompute}, err
	})
	return n, err
}

func applyUpdate(txn *model.Transaction, in UpdateTransactionInput) error {
	if in.AccountID != nil {
		txn.AccountID = *in.AccountID
	}
	if in.ClearCategory {
		txn.CategoryID = nil
	} else if in.CategoryID != nil {
		id := *in.CategoryID
		txn.CategoryID = &id
	}
	if in.Date != nil {
		txn.Date = model.Day(*in.Date)
	}
	if in.Description != nil {
		txn.Description = *in.Description
	}

	switch {
	case in.Amount != nil:
		typ := ""
		if in.Type != nil {
			typ = *in.Type
		}
		amount, err := resolveAmount(*in.Amount, typ)
		if err != nil {
			return err
		}
		txn.Amount = amount
	case in.Type != nil:
		amount, err := resolveAmount(txn.Magnitude(), *in.Type)
		if err != nil {
			return err
		}
		txn.Amount = amount
	}
	txn.Type = model.TypeOf(txn.Amount)
	return nil
}

// resolveAmount reconciles an amount and an optional type name into the
// canonical signed amount.
func resolveAmount(amount decimal.Decimal, typ string) (decimal.Decimal, error) {
	if err := model.CheckScale(amount); err != nil {
		return decimal.Zero, err
	}
	var t model.TransactionType
	if typ != "" {
		parsed, err := model.ParseTransactionType(typ)
		if err != nil {
			return decimal.Zero, err
		}
		t = parsed
	}
	return model.SignedAmount(amount, t)
}

// checkReferences verifies that the account and optional category exist.
func (s *Service) checkReferences(ctx context.Context, tx service.Transaction, accountID string, categoryID *string) error {
	if _, err := tx.GetAccount(ctx, accountID); err != nil {
		return referenceError(err)
	}
	if categoryID != nil && *categoryID != "" {
		if _, err := tx.GetCategory(ctx, *categoryID); err != nil {
			return referenceError(err)
		}
	}
	return nil
}

// referenceError reports a dangling reference as invalid input; any other
// store failure passes through unchanged.
func referenceError(err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return fmt.Errorf("%w: %w", common.ErrValidation, err)
	}
	return err
}
