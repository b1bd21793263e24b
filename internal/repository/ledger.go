package repository

import (
	"context"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// LedgerRepository handles the audit trail of account balance changes.
type LedgerRepository struct {
	q Querier
}

// NewLedgerRepository creates a new LedgerRepository instance.
func NewLedgerRepository(q Querier) *LedgerRepository {
	return &LedgerRepository{q: q}
}

// Record inserts entry and fills its ID and timestamp.
func (r *LedgerRepository) Record(ctx context.Context, entry *model.LedgerEntry) error {
	const query = `
		INSERT INTO ledger_entries (account_name, amount, kind, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query, entry.AccountName, entry.Amount.Slice(), entry.Kind).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return wrap("record ledger entry", err)
	}
	return nil
}

// History returns the newest entries of an account first.
func (r *LedgerRepository) History(ctx context.Context, accountName string, limit int) ([]*model.LedgerEntry, error) {
	const query = `
		SELECT id, account_name, amount, kind, created_at
		FROM ledger_entries
		WHERE account_name = $1
		ORDER BY id DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, accountName, limit)
	if err != nil {
		return nil, wrap("get ledger history", err)
	}
	defer rows.Close()

	var entries []*model.LedgerEntry
	for rows.Next() {
		var (
			entry  model.LedgerEntry
			amount []int64
		)
		if err := rows.Scan(&entry.ID, &entry.AccountName, &amount, &entry.Kind, &entry.CreatedAt); err != nil {
			return nil, wrap("scan ledger entry", err)
		}
		if entry.Amount, err = chips.FromSlice(amount); err != nil {
			return nil, wrap("decode ledger amount", err)
		}
		entries = append(entries, &entry)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate ledger entries", err)
	}
	return entries, nil
}
