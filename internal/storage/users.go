package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Veraticus/finance-tracker/internal/common"
	"github.com/Veraticus/finance-tracker/internal/model"
)

// CreateUser inserts a user.
func (s *SQLStorage) CreateUser(ctx context.Context, user *model.User) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: user", ErrNilParameter)
	}
	if err := validateString(user.ID, "user id"); err != nil {
		return err
	}
	if err := validateString(user.Username, "username"); err != nil {
		return err
	}

	_, err := s.exec(ctx, `
		INSERT INTO users (id, username, password_hash)
		VALUES (?, ?, ?)`,
		user.ID, user.Username, user.PasswordHash,
	)
	if err != nil {
		return fmt.Errorf("failed to create user %q: %w", user.Username, err)
	}
	return nil
}

// GetUserByUsername looks a user up by name.
func (s *SQLStorage) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(username, "username"); err != nil {
		return nil, err
	}

	var u model.User
	err := s.queryRow(ctx, `
		SELECT id, username, password_hash
		FROM users
		WHERE username = ?`, username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.NotFoundf("user %q", username)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}
