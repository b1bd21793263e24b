// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"casino-table-bot/internal/model"
)

// Common errors for repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrAccountExists   = errors.New("account already exists")
	ErrGameNotFound    = errors.New("game not found")
	ErrGameExists      = errors.New("game already exists")
)

const uniqueViolation = "23505"

// Querier is the subset of pgx shared by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AccountStore persists chip ledger accounts.
type AccountStore interface {
	GetByName(ctx context.Context, name string) (*model.Account, error)
	Create(ctx context.Context, acct *model.Account) error
	Update(ctx context.Context, oldName string, acct *model.Account) error
	ListByOwner(ctx context.Context, ownerID int64) ([]*model.Account, error)
}

// LedgerStore records balance changes.
type LedgerStore interface {
	Record(ctx context.Context, entry *model.LedgerEntry) error
	History(ctx context.Context, accountName string, limit int) ([]*model.LedgerEntry, error)
}

// GameStore persists channel tables and their rosters.
type GameStore interface {
	Get(ctx context.Context, channelID int64) (*model.GameRow, []model.PlayerRow, error)
	Exists(ctx context.Context, channelID int64) (bool, error)
	Create(ctx context.Context, game *model.GameRow, players []model.PlayerRow) error
	Save(ctx context.Context, game *model.GameRow, players []model.PlayerRow) error
	Delete(ctx context.Context, channelID int64) (bool, error)
	List(ctx context.Context) ([]*model.GameRow, error)
}

// Session exposes the stores bound to one transaction.
type Session interface {
	Accounts() AccountStore
	Ledger() LedgerStore
	Games() GameStore
}

type session struct {
	q Querier
}

func (s session) Accounts() AccountStore { return NewAccountRepository(s.q) }
func (s session) Ledger() LedgerStore    { return NewLedgerRepository(s.q) }
func (s session) Games() GameStore       { return NewGameRepository(s.q) }

// Store opens transactional sessions on a pool.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a new Store instance.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// InTx runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (s *Store) InTx(ctx context.Context, fn func(Session) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(session{q: tx})
	})
}

// Session returns a session that runs each statement in its own transaction.
func (s *Store) Session() Session {
	return session{q: s.pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func jsonOr(raw []byte, empty string) []byte {
	if len(raw) == 0 {
		return []byte(empty)
	}
	return raw
}

func wrap(op string, err error) error {
	return fmt.Errorf("failed to %s: %w", op, err)
}
