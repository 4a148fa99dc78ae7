// Package command is the thin query/command layer between the presentation
// layer and the entity store.
//
// Every mutation runs as one atomic unit: begin, mutate, recompute the
// affected balances, commit, and only then notify subscribers. A failure at
// any step rolls the unit back and nothing is announced.
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultUsername owns records when no user is configured.
const DefaultUsername = "demo"

// Unit is the body of one atomic unit of work. The returned change is
// announced after a successful commit.
type Unit func(ctx context.Context, tx service.Transaction) (events.Change, error)

// Service exposes list, create, update and delete operations.
type Service struct {
	store    service.Storage
	notifier events.Notifier
	validate *validator.Validate
	username string
	userID   string
	userMu   sync.Mutex
}

// Option configures a Service.
type Option func(*Service)

// WithUsername selects the user that owns newly created records.
func WithUsername(name string) Option {
	return func(s *Service) {
		if name != "" {
			s.username = name
		}
	}
}

// New creates a command service. A nil notifier discards notifications.
func New(store service.Storage, notifier events.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = events.Discard{}
	}
	s := &Service{
		store:    store,
		notifier: notifier,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		username: DefaultUsername,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying store for read-only callers.
func (s *Service) Store() service.Storage {
	return s.store
}

// Atomic runs unit inside one store transaction and notifies on commit. A
// Change without an Entity commits silently.
func (s *Service) Atomic(ctx context.Context, unit Unit) error {
	tx, err := s.store.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	change, err := unit(ctx, tx)
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	if change.Entity != "" {
		s.notifier.Notify(change)
	}
	return nil
}

// check runs struct-tag validation and wraps failures in ErrValidation.
func (s *Service) check(input any) error {
	if err := s.validate.Struct(input); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return common.Validationf("%s failed %q check", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	return nil
}

// EnsureUser returns the named user, creating it when missing. A non-empty
// password is stored as a bcrypt hash on creation.
func (s *Service) EnsureUser(ctx context.Context, username, password string) (*model.User, error) {
	if username == "" {
		return nil, common.Validationf("username is required")
	}

	var user *model.User
	err := s.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		existing, err := tx.GetUserByUsername(ctx, username)
		if err == nil {
			user = existing
			return events.Change{}, nil
		}
		if !errors.Is(err, common.ErrNotFound) {
			return events.Change{}, err
		}

		user = &model.User{ID: uuid.NewString(), Username: username}
		if password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return events.Change{}, fmt.Errorf("failed to hash password: %w", err)
			}
			user.PasswordHash = string(hash)
		}
		if err := tx.CreateUser(ctx, user); err != nil {
			return events.Change{}, err
		}
		slog.Info("created user", "username", username)
		return events.Change{Entity: events.EntityUser, Op: events.OpCreate, ID: user.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *model.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// currentUserID resolves (and caches) the configured user. It must not be
// called from inside an open unit.
func (s *Service) currentUserID(ctx context.Context) (string, error) {
	s.userMu.Lock()
	defer s.userMu.Unlock()

	if s.userID != "" {
		return s.userID, nil
	}
	user, err := s.EnsureUser(ctx, s.username, "")
	if err != nil {
		return "", fmt.Errorf("failed to resolve user %q: %w", s.username, err)
	}
	s.userID = user.ID
	return s.userID, nil
}
