package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"tally/internal/core"

	_ "modernc.org/sqlite"
)

// QueryFilter narrows a range query. The zero value matches everything
// inside the interval.
type QueryFilter struct {
	UnnecessaryOnly bool
	Kind            core.Kind // empty means both kinds
}

// SQLiteRepository is the ledger store: transactions keyed by owner and
// occurred_at, safe for concurrent callers through the database/sql pool.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// WAL keeps readers from blocking on concurrent inserts; the busy
	// timeout covers the remaining writer/writer contention.
	for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA busy_timeout = 5000"} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("configure sqlite: %w", err)
		}
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Insert stores a new transaction. The record is immutable afterwards.
func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transactions (id, owner_id, amount_cents, category, description, unnecessary, kind, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.Amount.Cents, tx.Category, tx.Description,
		boolToInt(tx.Unnecessary), string(tx.Kind), tx.OccurredAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", tx.ID,
		"owner", tx.OwnerID,
		"amount_cents", tx.Amount.Cents,
		"category", tx.Category,
		"kind", string(tx.Kind))

	return nil
}

// Query returns the owner's transactions with occurred_at inside the
// half-open interval [start, end), oldest first.
func (r *SQLiteRepository) Query(ctx context.Context, ownerID string, start, end time.Time, f QueryFilter) ([]core.Transaction, error) {
	q := `SELECT id, owner_id, amount_cents, category, description, unnecessary, kind, occurred_at
	      FROM transactions
	      WHERE owner_id = ? AND occurred_at >= ? AND occurred_at < ?`
	args := []any{ownerID, start.UnixMilli(), end.UnixMilli()}
	if f.UnnecessaryOnly {
		q += " AND unnecessary = 1"
	}
	if f.Kind != "" {
		q += " AND kind = ?"
		args = append(args, string(f.Kind))
	}
	q += " ORDER BY occurred_at ASC, rowid ASC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

// Latest returns the owner's most recent transaction by occurred_at, ties
// broken by insertion order (last inserted wins). Returns (nil, nil) when
// the owner has no transactions.
func (r *SQLiteRepository) Latest(ctx context.Context, ownerID string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, amount_cents, category, description, unnecessary, kind, occurred_at
		 FROM transactions
		 WHERE owner_id = ?
		 ORDER BY occurred_at DESC, rowid DESC
		 LIMIT 1`, ownerID)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query latest transaction: %w", err)
	}
	return &tx, nil
}

// Delete removes a transaction by id. Deleting an id that is already gone
// is not an error; the undo race is resolved at query time.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	affected, _ := res.RowsAffected()
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "rows", affected)
	return nil
}

// Get returns a single transaction by id, (nil, nil) when it no longer
// exists. Used by the mirror worker, which may run after an undo.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*core.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, owner_id, amount_cents, category, description, unnecessary, kind, occurred_at
		 FROM transactions WHERE id = ?`, id)

	tx, err := scanTransaction(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transaction: %w", err)
	}
	return &tx, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx          core.Transaction
		unnecessary int64
		kind        string
		occurredAt  int64
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Amount.Cents, &tx.Category,
		&tx.Description, &unnecessary, &kind, &occurredAt)
	if err != nil {
		return core.Transaction{}, err
	}
	tx.Unnecessary = unnecessary != 0
	tx.Kind = core.Kind(kind)
	tx.OccurredAt = time.UnixMilli(occurredAt).UTC()
	return tx, nil
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
