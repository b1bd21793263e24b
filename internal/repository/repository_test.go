// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
	"casino-table-bot/internal/pkg/db"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a migrated PostgreSQL container and returns a pool.
// Skips the test if Docker is not available
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	require.NoError(t, db.Migrate(connStr))

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

// ============================================================================
// AccountRepository Tests
// ============================================================================

func TestAccountRepository_CreateAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewAccountRepository(pool)
	ctx := context.Background()

	acct := &model.Account{Name: "vault", OwnerID: 42, Chips: chips.Vector{5, 0, 1, 0, 0, 3}}
	require.NoError(t, repo.Create(ctx, acct))
	assert.False(t, acct.CreatedAt.IsZero())

	got, err := repo.GetByName(ctx, "vault")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.OwnerID)
	assert.Equal(t, chips.Vector{5, 0, 1, 0, 0, 3}, got.Chips)

	err = repo.Create(ctx, &model.Account{Name: "vault", OwnerID: 7})
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = repo.GetByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestAccountRepository_RenameCascadesToLedger(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	accounts := NewAccountRepository(pool)
	ledger := NewLedgerRepository(pool)
	ctx := context.Background()

	acct := &model.Account{Name: "old", OwnerID: 1}
	require.NoError(t, accounts.Create(ctx, acct))
	require.NoError(t, ledger.Record(ctx, &model.LedgerEntry{AccountName: "old", Amount: chips.Of(chips.Physical, 3), Kind: model.LedgerDeposit}))

	require.NoError(t, accounts.Create(ctx, &model.Account{Name: "taken", OwnerID: 2}))
	acct.Name = "taken"
	assert.ErrorIs(t, accounts.Update(ctx, "old", acct), ErrAccountExists)

	acct.Name = "new"
	require.NoError(t, accounts.Update(ctx, "old", acct))

	history, err := ledger.History(ctx, "new", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, chips.Of(chips.Physical, 3), history[0].Amount)

	owned, err := accounts.ListByOwner(ctx, 1)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "new", owned[0].Name)
}

func TestLedgerRepository_HistoryNewestFirst(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	require.NoError(t, NewAccountRepository(pool).Create(ctx, &model.Account{Name: "a", OwnerID: 1}))

	ledger := NewLedgerRepository(pool)
	for i := int64(1); i <= 3; i++ {
		require.NoError(t, ledger.Record(ctx, &model.LedgerEntry{AccountName: "a", Amount: chips.Of(chips.Physical, i), Kind: model.LedgerDeposit}))
	}

	history, err := ledger.History(ctx, "a", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, chips.Of(chips.Physical, 3), history[0].Amount)
	assert.Equal(t, chips.Of(chips.Physical, 2), history[1].Amount)
}

// ============================================================================
// GameRepository Tests
// ============================================================================

func sampleGame(channelID int64) (*model.GameRow, []model.PlayerRow) {
	g := &model.GameRow{
		ChannelID: channelID,
		Type:      "blackjack",
		Stake:     1,
		Bet:       chips.Of(chips.Physical, 2),
		State:     []byte(`{"round_turn":1,"turn":0}`),
	}
	players := []model.PlayerRow{
		{UserID: 10, Seat: 0, Name: "Ann", Chips: chips.Of(chips.Physical, 5), Forfeits: []byte(`[]`), State: []byte(`{"state":"stand"}`)},
		{UserID: 20, Seat: 1, Name: "Bob", Chips: chips.Of(chips.Mental, 1), Bet: chips.Of(chips.Physical, 2)},
	}
	return g, players
}

func TestGameRepository_CreateGetSave(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(pool)
	ctx := context.Background()

	g, players := sampleGame(-100)
	require.NoError(t, repo.Create(ctx, g, players))
	assert.ErrorIs(t, repo.Create(ctx, g, nil), ErrGameExists)

	exists, err := repo.Exists(ctx, -100)
	require.NoError(t, err)
	assert.True(t, exists)

	got, roster, err := repo.Get(ctx, -100)
	require.NoError(t, err)
	assert.Equal(t, "blackjack", got.Type)
	assert.Equal(t, chips.Of(chips.Physical, 2), got.Bet)
	assert.JSONEq(t, `{"round_turn":1,"turn":0}`, string(got.State))
	require.Len(t, roster, 2)
	assert.Equal(t, "Ann", roster[0].Name)
	assert.Equal(t, "Bob", roster[1].Name)
	assert.JSONEq(t, `[]`, string(roster[1].Forfeits))

	// Save replaces the roster.
	got.Started = true
	require.NoError(t, repo.Save(ctx, got, roster[1:]))

	got, roster, err = repo.Get(ctx, -100)
	require.NoError(t, err)
	assert.True(t, got.Started)
	require.Len(t, roster, 1)
	assert.Equal(t, int64(20), roster[0].UserID)
}

func TestGameRepository_DeleteAndList(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewGameRepository(pool)
	ctx := context.Background()

	for _, id := range []int64{3, 1, 2} {
		g, players := sampleGame(id)
		require.NoError(t, repo.Create(ctx, g, players))
	}

	games, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, int64(1), games[0].ChannelID)

	deleted, err := repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, deleted)

	_, _, err = repo.Get(ctx, 2)
	assert.ErrorIs(t, err, ErrGameNotFound)
}

// ============================================================================
// Store Tests
// ============================================================================

func TestStore_InTxRollsBack(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	store := NewStore(pool)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.InTx(ctx, func(s Session) error {
		g, players := sampleGame(9)
		if err := s.Games().Create(ctx, g, players); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	exists, err := store.Session().Games().Exists(ctx, 9)
	require.NoError(t, err)
	assert.False(t, exists)

	err = store.InTx(ctx, func(s Session) error {
		g, players := sampleGame(9)
		return s.Games().Create(ctx, g, players)
	})
	require.NoError(t, err)

	exists, err = store.Session().Games().Exists(ctx, 9)
	require.NoError(t, err)
	assert.True(t, exists)
}
