package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

func newAccountService(t *testing.T) (*AccountService, *memStore) {
	t.Helper()
	rules := chips.DefaultRules()
	rules.StartingChips = chips.Vector{10, 1}
	store := newMemStore()
	return NewAccountService(store, rules), store
}

func TestAccountService_Open(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()

	acct, err := svc.Open(ctx, 1, "  vault ")
	require.NoError(t, err)
	assert.Equal(t, "vault", acct.Name)
	assert.Equal(t, chips.Vector{10, 1}, acct.Chips)

	_, err = svc.Open(ctx, 2, "vault")
	assert.ErrorIs(t, err, ErrAccountExists)

	_, err = svc.Open(ctx, 1, " ")
	assert.ErrorIs(t, err, model.ErrEmptyName)

	history, err := svc.History(ctx, 1, "vault", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, model.LedgerOpen, history[0].Kind)
}

func TestAccountService_DepositWithdraw(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Open(ctx, 1, "vault")
	require.NoError(t, err)

	acct, err := svc.Deposit(ctx, 1, "vault", chips.Vector{5, 0, 0, 0, 0, 2})
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{15, 1, 0, 0, 0, 2}, acct.Chips)

	_, err = svc.Deposit(ctx, 1, "vault", chips.Vector{-1})
	assert.ErrorIs(t, err, chips.ErrNegativeAmount)

	_, err = svc.Deposit(ctx, 1, "vault", chips.Vector{})
	assert.ErrorIs(t, err, ErrInvalidAmount)

	// One short denomination refuses the whole withdrawal.
	_, err = svc.Withdraw(ctx, 1, "vault", chips.Vector{1, 2})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	acct, err = svc.Balance(ctx, 1, "vault")
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{15, 1, 0, 0, 0, 2}, acct.Chips)

	acct, err = svc.Withdraw(ctx, 1, "vault", chips.Vector{15, 1})
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{0, 0, 0, 0, 0, 2}, acct.Chips)

	history, err := svc.History(ctx, 1, "vault", 10)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, model.LedgerWithdraw, history[0].Kind)
	assert.Equal(t, model.LedgerDeposit, history[1].Kind)
}

func TestAccountService_Ownership(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Open(ctx, 1, "vault")
	require.NoError(t, err)

	_, err = svc.Balance(ctx, 2, "vault")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Deposit(ctx, 2, "vault", chips.Vector{1})
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Balance(ctx, 1, "nope")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	acct, err := svc.TransferOwnership(ctx, "vault", 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), acct.OwnerID)

	_, err = svc.Balance(ctx, 1, "vault")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = svc.Balance(ctx, 2, "vault")
	assert.NoError(t, err)

	owned, err := svc.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, owned, 1)
}

func TestAccountService_Rename(t *testing.T) {
	svc, _ := newAccountService(t)
	ctx := context.Background()
	_, err := svc.Open(ctx, 1, "vault")
	require.NoError(t, err)
	_, err = svc.Open(ctx, 2, "taken")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, 1, "vault", "vault")
	assert.ErrorIs(t, err, ErrSameName)
	_, err = svc.Rename(ctx, 1, "vault", "")
	assert.ErrorIs(t, err, model.ErrEmptyName)
	_, err = svc.Rename(ctx, 1, "vault", "taken")
	assert.ErrorIs(t, err, ErrNameTaken)

	acct, err := svc.Rename(ctx, 1, "vault", "safe")
	require.NoError(t, err)
	assert.Equal(t, "safe", acct.Name)

	_, err = svc.Balance(ctx, 1, "vault")
	assert.ErrorIs(t, err, ErrAccountNotFound)

	history, err := svc.Audit(ctx, "safe", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, model.LedgerRename, history[0].Kind)
}

// TestWithdrawDepositInverseProperty checks that a successful withdrawal
// followed by the same deposit restores the balance, and that a refused
// withdrawal changes nothing.
func TestWithdrawDepositInverseProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := newMemStore()
		rules := chips.DefaultRules()
		var start chips.Vector
		for i := range start {
			start[i] = rapid.Int64Range(0, 50).Draw(t, "start")
		}
		rules.StartingChips = start
		svc := NewAccountService(store, rules)
		ctx := context.Background()

		_, err := svc.Open(ctx, 1, "a")
		if err != nil {
			t.Fatalf("open: %v", err)
		}

		var amount chips.Vector
		for i := range amount {
			amount[i] = rapid.Int64Range(0, 60).Draw(t, "amount")
		}
		if amount.IsZero() {
			amount[0] = 1
		}

		_, err = svc.Withdraw(ctx, 1, "a", amount)
		if !start.Covers(amount) {
			if err != ErrInsufficientBalance {
				t.Fatalf("expected refusal, got %v", err)
			}
		} else {
			if err != nil {
				t.Fatalf("withdraw: %v", err)
			}
			if _, err := svc.Deposit(ctx, 1, "a", amount); err != nil {
				t.Fatalf("deposit: %v", err)
			}
		}

		acct, err := svc.Balance(ctx, 1, "a")
		if err != nil {
			t.Fatalf("balance: %v", err)
		}
		if acct.Chips != start {
			t.Fatalf("balance %v, want %v", acct.Chips, start)
		}
	})
}
