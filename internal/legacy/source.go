package legacy

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/Veraticus/finance-tracker/internal/model"
	_ "github.com/mattn/go-sqlite3" // SQLite driver
	"github.com/shopspring/decimal"
)

// Rows read from the legacy schema. Money columns are NUMERIC and may come
// back as REAL, so they are read as text and rounded to cents.
type (
	legacyUser struct {
		ID           string
		Username     string
		PasswordHash string
	}
	legacyAccount struct {
		Balance decimal.Decimal
		ID      string
		UserID  string
		Name    string
		Type    string
	}
	legacyCategory struct {
		ID     string
		UserID string
		Name   string
		Kind   string
	}
	legacyTransaction struct {
		Date       time.Time
		Amount     decimal.Decimal
		CategoryID *string
		ID         string
		AccountID  string
		Type       string
		Note       string
	}
	legacyBudget struct {
		Limit      decimal.Decimal
		ID         string
		UserID     string
		CategoryID string
		Period     string
	}
	legacyGoal struct {
		Deadline *time.Time
		Target   decimal.Decimal
		Current  decimal.Decimal
		ID       string
		UserID   string
		Name     string
	}
	legacyAlert struct {
		ID      string
		UserID  string
		Message string
		Kind    string
		Read    bool
	}
)

// Snapshot is the whole legacy database held in memory.
type Snapshot struct {
	users        []legacyUser
	accounts     []legacyAccount
	categories   []legacyCategory
	transactions []legacyTransaction
	budgets      []legacyBudget
	goals        []legacyGoal
	alerts       []legacyAlert
}

// Rows returns the number of legacy rows the snapshot holds.
func (s *Snapshot) Rows() int {
	return len(s.users) + len(s.accounts) + len(s.categories) + len(s.transactions) +
		len(s.budgets) + len(s.goals) + len(s.alerts)
}

// OpenSource opens a legacy SQLite database read-only.
func OpenSource(path string) (*sql.DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("legacy database: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	return db, nil
}

// Read loads every legacy table.
func Read(ctx context.Context, db *sql.DB) (*Snapshot, error) {
	var snap Snapshot
	steps := []struct {
		table string
		read  func(context.Context, *sql.DB, *Snapshot) error
	}{
		{"users", readUsers},
		{"accounts", readAccounts},
		{"categories", readCategories},
		{"transactions", readTransactions},
		{"budgets", readBudgets},
		{"goals", readGoals},
		{"alerts", readAlerts},
	}
	for _, step := range steps {
		if err := step.read(ctx, db, &snap); err != nil {
			return nil, fmt.Errorf("failed to read legacy %s: %w", step.table, err)
		}
	}
	return &snap, nil
}

func each(ctx context.Context, db *sql.DB, query string, scan func(*sql.Rows) error) error {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func money(s sql.NullString) (decimal.Decimal, error) {
	if !s.Valid || strings.TrimSpace(s.String) == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s.String))
	if err != nil {
		return decimal.Zero, fmt.Errorf("bad amount %q: %w", s.String, err)
	}
	return d.Round(model.MoneyScale), nil
}

// day accepts plain dates and the datetime forms older rows carry.
func day(s string) (time.Time, error) {
	if len(s) >= len(model.DateLayout) {
		s = s[:len(model.DateLayout)]
	}
	return model.ParseDate(s)
}

func readUsers(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	return each(ctx, db, `SELECT id, username, COALESCE(password_hash, '') FROM users ORDER BY id`, func(rows *sql.Rows) error {
		var u legacyUser
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash); err != nil {
			return err
		}
		snap.users = append(snap.users, u)
		return nil
	})
}

func readAccounts(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	return each(ctx, db, `SELECT id, user_id, name, type, CAST(balance AS TEXT) FROM accounts ORDER BY id`, func(rows *sql.Rows) error {
		var (
			a       legacyAccount
			balance sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Type, &balance); err != nil {
			return err
		}
		var err error
		if a.Balance, err = money(balance); err != nil {
			return fmt.Errorf("account %s: %w", a.ID, err)
		}
		snap.accounts = append(snap.accounts, a)
		return nil
	})
}

func readCategories(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	return each(ctx, db, `SELECT id, user_id, name, COALESCE(kind, '') FROM categories ORDER BY id`, func(rows *sql.Rows) error {
		var c legacyCategory
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Kind); err != nil {
			return err
		}
		snap.categories = append(snap.categories, c)
		return nil
	})
}

func readTransactions(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	query := `SELECT id, account_id, date, CAST(amount AS TEXT), type, COALESCE(note, ''), category_id
		FROM transactions ORDER BY date, id`
	return each(ctx, db, query, func(rows *sql.Rows) error {
		var (
			t        legacyTransaction
			date     string
			amount   sql.NullString
			category sql.NullString
		)
		if err := rows.Scan(&t.ID, &t.AccountID, &date, &amount, &t.Type, &t.Note, &category); err != nil {
			return err
		}
		var err error
		if t.Date, err = day(date); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if t.Amount, err = money(amount); err != nil {
			return fmt.Errorf("transaction %s: %w", t.ID, err)
		}
		if category.Valid && category.String != "" {
			id := category.String
			t.CategoryID = &id
		}
		snap.transactions = append(snap.transactions, t)
		return nil
	})
}

func readBudgets(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	query := `SELECT id, user_id, category_id, period, CAST("limit" AS TEXT) FROM budgets ORDER BY period, id`
	return each(ctx, db, query, func(rows *sql.Rows) error {
		var (
			b     legacyBudget
			limit sql.NullString
		)
		if err := rows.Scan(&b.ID, &b.UserID, &b.CategoryID, &b.Period, &limit); err != nil {
			return err
		}
		var err error
		if b.Limit, err = money(limit); err != nil {
			return fmt.Errorf("budget %s: %w", b.ID, err)
		}
		snap.budgets = append(snap.budgets, b)
		return nil
	})
}

func readGoals(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	query := `SELECT id, user_id, name, CAST(target_amount AS TEXT), deadline, CAST(current AS TEXT) FROM goals ORDER BY id`
	return each(ctx, db, query, func(rows *sql.Rows) error {
		var (
			g               legacyGoal
			target, current sql.NullString
			deadline        sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.UserID, &g.Name, &target, &deadline, &current); err != nil {
			return err
		}
		var err error
		if g.Target, err = money(target); err != nil {
			return fmt.Errorf("goal %s: %w", g.ID, err)
		}
		if g.Current, err = money(current); err != nil {
			return fmt.Errorf("goal %s: %w", g.ID, err)
		}
		if deadline.Valid && deadline.String != "" {
			d, err := day(deadline.String)
			if err != nil {
				return fmt.Errorf("goal %s: %w", g.ID, err)
			}
			g.Deadline = &d
		}
		snap.goals = append(snap.goals, g)
		return nil
	})
}

func readAlerts(ctx context.Context, db *sql.DB, snap *Snapshot) error {
	query := `SELECT id, user_id, COALESCE(message, ''), kind, COALESCE("read", 0) FROM alerts ORDER BY id`
	return each(ctx, db, query, func(rows *sql.Rows) error {
		var a legacyAlert
		if err := rows.Scan(&a.ID, &a.UserID, &a.Message, &a.Kind, &a.Read); err != nil {
			return err
		}
		snap.alerts = append(snap.alerts, a)
		return nil
	})
}
