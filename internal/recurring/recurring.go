// Package recurring posts due occurrences of recurring transactions.
package recurring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/model"
	"github.com/Veraticus/finance-tracker/internal/service"
)

// MaxOccurrences bounds how many transactions one schedule may post in a
// single run. A schedule with more due stops at the bound with its next
// date on the first unposted occurrence, so a later run picks up the rest.
const MaxOccurrences = 400

// Posted summarizes what one schedule produced.
type Posted struct {
	NextDate     time.Time
	ScheduleID   string
	Description  string
	Transactions []model.Transaction
	// Capped is set when occurrences on or before asOf remain unposted.
	Capped bool
}

// Poster books due recurring transactions through the command layer.
type Poster struct {
	svc *command.Service
}

// NewPoster creates a poster.
func NewPoster(svc *command.Service) *Poster {
	return &Poster{svc: svc}
}

// Due lists active schedules with an occurrence on or before asOf.
func (p *Poster) Due(ctx context.Context, asOf time.Time) ([]model.RecurringTransaction, error) {
	return p.svc.Store().ListDueRecurring(ctx, model.Day(asOf))
}

// Post books every occurrence on or before asOf. Each schedule is one
// atomic unit: its transactions, its advanced next date and the account's
// recomputed balance commit together.
func (p *Poster) Post(ctx context.Context, asOf time.Time) ([]Posted, error) {
	asOf = model.Day(asOf)
	due, err := p.Due(ctx, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list due schedules: %w", err)
	}

	results := make([]Posted, 0, len(due))
	for _, rec := range due {
		posted, err := p.postSchedule(ctx, rec, asOf)
		if err != nil {
			return results, fmt.Errorf("failed to post %q: %w", rec.Description, err)
		}
		if posted.Capped {
			slog.Warn("recurring schedule has more occurrences due than one run posts",
				"schedule", rec.ID,
				"limit", MaxOccurrences,
				"next_date", model.FormatDate(posted.NextDate))
		}
		slog.Info("posted recurring transaction",
			"schedule", rec.ID,
			"occurrences", len(posted.Transactions),
			"next_date", model.FormatDate(posted.NextDate))
		results = append(results, posted)
	}
	return results, nil
}

func (p *Poster) postSchedule(ctx context.Context, rec model.RecurringTransaction, asOf time.Time) (Posted, error) {
	posted := Posted{ScheduleID: rec.ID, Description: rec.Description}

	err := p.svc.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		posted.Transactions = posted.Transactions[:0]
		next := rec.NextDate
		for !next.After(asOf) && len(posted.Transactions) < MaxOccurrences {
			txn, err := p.svc.InsertTransaction(ctx, tx, command.CreateTransactionInput{
				AccountID:   rec.AccountID,
				CategoryID:  rec.CategoryID,
				Date:        next,
				Amount:      rec.Amount,
				Description: rec.Description,
			})
			if err != nil {
				return events.Change{}, err
			}
			posted.Transactions = append(posted.Transactions, *txn)

			if next, err = rec.Frequency.Next(next, rec.AnchorDay); err != nil {
				return events.Change{}, err
			}
		}

		posted.Capped = !next.After(asOf)

		if err := tx.UpdateRecurringNextDate(ctx, rec.ID, next); err != nil {
			return events.Change{}, err
		}
		if _, err := ledger.RecomputeBalance(ctx, tx, rec.AccountID); err != nil {
			return events.Change{}, err
		}
		posted.NextDate = next
		return events.Change{
			Entity:     events.EntityRecurring,
			Op:         events.OpUpdate,
			ID:         rec.ID,
			AccountIDs: []string{rec.AccountID},
		}, nil
	})
	return posted, err
}
