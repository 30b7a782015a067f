package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"tally/internal/core"
	applog "tally/internal/log"
	"tally/internal/storage"
)

// Store is the ledger store port the service drives. The SQLite repository
// is the production implementation.
type Store interface {
	Insert(ctx context.Context, tx core.Transaction) error
	Query(ctx context.Context, ownerID string, start, end time.Time, f storage.QueryFilter) ([]core.Transaction, error)
	Latest(ctx context.Context, ownerID string) (*core.Transaction, error)
	Delete(ctx context.Context, id string) error
}

// LedgerService owns the transaction lifecycle and summary generation.
// The clock and id generator are injected so behavior is deterministic
// under test.
type LedgerService struct {
	store Store
	now   func() time.Time
	newID func() string
}

func NewLedgerService(store Store) *LedgerService {
	return &LedgerService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// EntryRequest carries an already-classified income or expense entry.
type EntryRequest struct {
	OwnerID     string
	Amount      core.Money
	Category    string
	Description string
	Unnecessary bool
	Kind        core.Kind
	OccurredAt  time.Time // zero means "now"
}

// SummaryRequest carries an already-parsed summary query.
type SummaryRequest struct {
	OwnerID         string
	Period          core.Period
	CustomStart     core.Date
	CustomEnd       core.Date
	UnnecessaryOnly bool
	KindFilter      core.Kind // empty means both kinds
}

// Add validates and persists a new transaction and returns the stored
// record. Unnecessary is forced to false for income entries; the flag only
// means something for expenses.
func (s *LedgerService) Add(ctx context.Context, req EntryRequest) (core.Transaction, error) {
	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	tx := core.Transaction{
		ID:          s.newID(),
		OwnerID:     req.OwnerID,
		Amount:      req.Amount,
		Category:    req.Category,
		Description: req.Description,
		Unnecessary: req.Unnecessary && req.Kind == core.Expense,
		Kind:        req.Kind,
		OccurredAt:  occurredAt,
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.Insert(ctx, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", tx.ID,
		applog.FieldOwner, tx.OwnerID,
		applog.FieldKind, string(tx.Kind),
		applog.FieldAmountCents, tx.Amount.Cents,
		applog.FieldCategory, tx.Category)

	return tx, nil
}

// DeleteMostRecent removes the owner's transaction with the greatest
// occurred_at (ties: last inserted wins) and returns it. An owner with no
// transactions gets (nil, nil); that is an empty result, not a failure.
func (s *LedgerService) DeleteMostRecent(ctx context.Context, ownerID string) (*core.Transaction, error) {
	latest, err := s.store.Latest(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("find latest transaction: %w", err)
	}
	if latest == nil {
		return nil, nil
	}

	if err := s.store.Delete(ctx, latest.ID); err != nil {
		return nil, fmt.Errorf("delete transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction undone",
		"id", latest.ID,
		applog.FieldOwner, ownerID,
		applog.FieldAmountCents, latest.Amount.Cents,
		applog.FieldCategory, latest.Category)

	return latest, nil
}

// Summarize resolves the period, queries the ledger and aggregates. An
// interval with no transactions yields a zero-valued Summary.
// core.ErrInvalidPeriod from the resolver propagates unchanged.
func (s *LedgerService) Summarize(ctx context.Context, req SummaryRequest) (core.Summary, error) {
	start, end, err := core.ResolvePeriod(req.Period, req.CustomStart, req.CustomEnd, s.now())
	if err != nil {
		return core.Summary{}, err
	}

	txs, err := s.store.Query(ctx, req.OwnerID, start, end, storage.QueryFilter{
		UnnecessaryOnly: req.UnnecessaryOnly,
		Kind:            req.KindFilter,
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("query transactions: %w", err)
	}

	summary := core.Aggregate(txs, start, end)

	slog.InfoContext(ctx, "Summary generated",
		applog.FieldOwner, req.OwnerID,
		applog.FieldPeriod, string(req.Period),
		"transactions", len(txs),
		"total_cents", summary.Total.Cents)

	return summary, nil
}
