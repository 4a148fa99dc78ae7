package command

import (
	"context"
	"errors"
	"strings"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateAccountInput describes a new account.
type CreateAccountInput struct {
	StartingBalance decimal.Decimal
	Name            string `validate:"required,max=120"`
	Type            string `validate:"required"`
	Currency        string `validate:"omitempty,len=3,uppercase"`
}

// CreateCategoryInput describes a new category.
type CreateCategoryInput struct {
	Name string `validate:"required,max=120"`
	Type string `validate:"required,oneof=income expense"`
}

// ListAccounts returns every account ordered by name.
func (s *Service) ListAccounts(ctx context.Context) ([]model.Account, error) {
	return s.store.ListAccounts(ctx)
}

// ListCategories returns every category ordered by name.
func (s *Service) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// CreateAccount adds an account owned by the configured user. Its cached
// balance starts at the starting balance.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*model.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Currency == "" {
		in.Currency = "USD"
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	typ, err := model.ParseAccountType(in.Type)
	if err != nil {
		return nil, err
	}
	if err := model.CheckScale(in.StartingBalance); err != nil {
		return nil, err
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	acct := &model.Account{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            in.Name,
		Type:            typ,
		Currency:        in.Currency,
		StartingBalance: in.StartingBalance,
		Balance:         in.StartingBalance,
	}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := tx.CreateAccount(ctx, acct); err != nil {
			return events.Change{}, err
		}
		return events.Change{
			Entity:     events.EntityAccount,
			Op:         events.OpCreate,
			ID:         acct.ID,
			AccountIDs: []string{acct.ID},
		}, nil
	})
	if err != nil {
		return nil, err
	}
	return acct, nil
}

// DeleteAccount removes an account together with its transactions and
// recurring schedules.
func (s *Service) DeleteAccount(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := tx.DeleteAccount(ctx, id); err != nil {
			return events.Change{}, err
		}
		return events.Change{
			Entity:     events.EntityAccount,
			Op:         events.OpDelete,
			ID:         id,
			AccountIDs: []string{id},
		}, nil
	})
}

// CreateCategory adds a category owned by the configured user.
func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.ToLower(strings.TrimSpace(in.Type))
	if err := s.check(in); err != nil {
		return nil, err
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	cat := &model.Category{
		ID:     uuid.NewString(),
		UserID: userID,
		Name:   in.Name,
		Type:   model.CategoryType(in.Type),
	}
	err = s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		if err := tx.CreateCategory(ctx, cat); err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityCategory, Op: events.OpCreate, ID: cat.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return cat, nil
}

// DeleteCategory removes a category. Its transactions become uncategorized;
// a category still used by a budget item cannot be deleted.
func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		err := tx.DeleteCategory(ctx, id)
		if errors.Is(err, common.ErrIntegrity) {
			return events.Change{}, common.NewUserError("category is still used by a budget", err)
		}
		if err != nil {
			return events.Change{}, err
		}
		return events.Change{Entity: events.EntityCategory, Op: events.OpDelete, ID: id}, nil
	})
}

// FindAccount resolves an account by id or by name.
func (s *Service) FindAccount(ctx context.Context, ref string) (*model.Account, error) {
	if acct, err := s.store.GetAccount(ctx, ref); err == nil {
		return acct, nil
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetAccountByName(ctx, userID, ref)
}

// FindCategory resolves a category by id or by name.
func (s *Service) FindCategory(ctx context.Context, ref string) (*model.Category, error) {
	if cat, err := s.store.GetCategory(ctx, ref); err == nil {
		return cat, nil
	}
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	return s.store.GetCategoryByName(ctx, userID, ref)
}
