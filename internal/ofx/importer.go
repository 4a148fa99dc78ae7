package ofx

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/finance-tracker/internal/command"
	"github.com/Veraticus/finance-tracker/internal/events"
	"github.com/Veraticus/finance-tracker/internal/ledger"
	"github.com/Veraticus/finance-tracker/internal/service"
)

// Progress receives one tick per processed draft.
type Progress interface {
	Add(n int) error
}

// ImportResult counts what an import did.
type ImportResult struct {
	Imported int
	Skipped  int
}

// Importer books statement drafts onto one account.
type Importer struct {
	svc      *command.Service
	progress Progress
}

// NewImporter creates an importer. progress may be nil.
func NewImporter(svc *command.Service, progress Progress) *Importer {
	return &Importer{svc: svc, progress: progress}
}

// Import books drafts onto accountID in one atomic unit. Each draft's FITID
// becomes the transaction's external reference; drafts whose FITID is
// already present on the account are skipped, so re-importing a statement
// is harmless.
func (im *Importer) Import(ctx context.Context, accountID string, drafts []Draft) (ImportResult, error) {
	var result ImportResult

	err := im.svc.Atomic(ctx, func(ctx context.Context, tx service.Transaction) (events.Change, error) {
		result = ImportResult{}
		seen := make(map[string]bool, len(drafts))

		for _, d := range drafts {
			skip, err := im.isDuplicate(ctx, tx, accountID, d, seen)
			if err != nil {
				return events.Change{}, err
			}
			if skip {
				result.Skipped++
				im.tick()
				continue
			}

			in := command.CreateTransactionInput{
				AccountID:   accountID,
				Date:        d.Date,
				Amount:      d.Amount,
				Description: d.Description,
			}
			if d.FITID != "" {
				ref := d.FITID
				in.ExternalRef = &ref
				seen[ref] = true
			}
			if _, err := im.svc.InsertTransaction(ctx, tx, in); err != nil {
				return events.Change{}, fmt.Errorf("transaction %s: %w", d.FITID, err)
			}
			result.Imported++
			im.tick()
		}

		if result.Imported == 0 {
			return events.Change{}, nil
		}
		if _, err := ledger.RecomputeBalance(ctx, tx, accountID); err != nil {
			return events.Change{}, err
		}
		return events.Change{
			Entity:     events.EntityTransaction,
			Op:         events.OpImport,
			AccountIDs: []string{accountID},
		}, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	slog.Info("Imported OFX transactions",
		"account", accountID,
		"imported", result.Imported,
		"skipped", result.Skipped)
	return result, nil
}

func (im *Importer) isDuplicate(ctx context.Context, tx service.Transaction, accountID string, d Draft, seen map[string]bool) (bool, error) {
	if d.FITID == "" {
		return false, nil
	}
	if seen[d.FITID] {
		return true, nil
	}
	exists, err := tx.ExternalRefExists(ctx, accountID, d.FITID)
	if err != nil {
		return false, fmt.Errorf("failed to check FITID %s: %w", d.FITID, err)
	}
	return exists, nil
}

func (im *Importer) tick() {
	if im.progress != nil {
		_ = im.progress.Add(1)
	}
}
