package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// AccountRepository handles chip ledger account persistence.
type AccountRepository struct {
	q Querier
}

// NewAccountRepository creates a new AccountRepository instance.
func NewAccountRepository(q Querier) *AccountRepository {
	return &AccountRepository{q: q}
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var (
		acct    model.Account
		balance []int64
	)
	if err := row.Scan(&acct.Name, &acct.OwnerID, &balance, &acct.CreatedAt, &acct.UpdatedAt); err != nil {
		return nil, err
	}
	v, err := chips.FromSlice(balance)
	if err != nil {
		return nil, err
	}
	acct.Chips = v
	return &acct, nil
}

// GetByName retrieves an account by its name.
// Returns ErrAccountNotFound if no such account exists.
func (r *AccountRepository) GetByName(ctx context.Context, name string) (*model.Account, error) {
	const query = `
		SELECT name, owner_id, chips, created_at, updated_at
		FROM accounts
		WHERE name = $1
		FOR UPDATE
	`

	acct, err := scanAccount(r.q.QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, wrap("get account", err)
	}
	return acct, nil
}

// Create inserts acct and fills its timestamps.
// Returns ErrAccountExists when the name is taken.
func (r *AccountRepository) Create(ctx context.Context, acct *model.Account) error {
	const query = `
		INSERT INTO accounts (name, owner_id, chips, created_at, updated_at)
		VALUES ($1, $2, $3, NOW(), NOW())
		RETURNING created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, acct.Name, acct.OwnerID, acct.Chips.Slice()).
		Scan(&acct.CreatedAt, &acct.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return wrap("create account", err)
	}
	return nil
}

// Update writes acct over the row named oldName. Renames cascade to the
// ledger. Returns ErrAccountExists when the new name is taken.
func (r *AccountRepository) Update(ctx context.Context, oldName string, acct *model.Account) error {
	const query = `
		UPDATE accounts
		SET name = $2, owner_id = $3, chips = $4, updated_at = NOW()
		WHERE name = $1
		RETURNING updated_at
	`

	err := r.q.QueryRow(ctx, query, oldName, acct.Name, acct.OwnerID, acct.Chips.Slice()).
		Scan(&acct.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrAccountNotFound
		}
		if isUniqueViolation(err) {
			return ErrAccountExists
		}
		return wrap("update account", err)
	}
	return nil
}

// ListByOwner returns the accounts owned by ownerID, sorted by name.
func (r *AccountRepository) ListByOwner(ctx context.Context, ownerID int64) ([]*model.Account, error) {
	const query = `
		SELECT name, owner_id, chips, created_at, updated_at
		FROM accounts
		WHERE owner_id = $1
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, query, ownerID)
	if err != nil {
		return nil, wrap("list accounts", err)
	}
	defer rows.Close()

	var accounts []*model.Account
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, wrap("scan account", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("iterate accounts", err)
	}
	return accounts, nil
}
