// Package model defines the persisted rows of the table bot.
package model

import (
	"errors"
	"strings"
	"time"

	"casino-table-bot/internal/chips"
)

var ErrEmptyName = errors.New("name must not be empty")

// Account is a named chip ledger owned by one user, independent of any game.
type Account struct {
	Name      string       `db:"name"`
	OwnerID   int64        `db:"owner_id"`
	Chips     chips.Vector `db:"chips"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// Deposit adds amount to the balance. The balance is unchanged on error.
func (a *Account) Deposit(amount chips.Vector) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	balance, err := a.Chips.CheckedAdd(amount)
	if err != nil {
		return err
	}
	a.Chips = balance
	return nil
}

// Withdraw removes amount from the balance. It reports false and leaves the
// balance untouched when any denomination is short.
func (a *Account) Withdraw(amount chips.Vector) (bool, error) {
	if err := amount.Validate(); err != nil {
		return false, err
	}
	if !a.Chips.Covers(amount) {
		return false, nil
	}
	a.Chips = a.Chips.Sub(amount)
	return true, nil
}

// Rename changes the account name. Uniqueness is the caller's concern.
func (a *Account) Rename(name string) error {
	name, err := CleanName(name)
	if err != nil {
		return err
	}
	a.Name = name
	return nil
}

// CleanName trims a display or account name and rejects empty results.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// LedgerEntry records one balance change on an account.
type LedgerEntry struct {
	ID          int64        `db:"id"`
	AccountName string       `db:"account_name"`
	Amount      chips.Vector `db:"amount"`
	Kind        string       `db:"kind"`
	CreatedAt   time.Time    `db:"created_at"`
}

// Ledger entry kinds.
const (
	LedgerOpen     = "open"     // account created with the starting stash
	LedgerDeposit  = "deposit"
	LedgerWithdraw = "withdraw"
	LedgerRename   = "rename"   // amount is zero
	LedgerTransfer = "transfer" // ownership moved by an admin
)

// GameRow is the persisted base state of a channel's table.
// State holds the variant-specific fields as JSON.
type GameRow struct {
	ChannelID int64        `db:"channel_id"`
	Type      string       `db:"type"`
	Stake     int          `db:"stake"`
	Bet       chips.Vector `db:"bet"`
	Started   bool         `db:"started"`
	BetTurn   int          `db:"bet_turn"`
	RoundID   string       `db:"round_id"`
	State     []byte       `db:"state"`
	CreatedAt time.Time    `db:"created_at"`
	UpdatedAt time.Time    `db:"updated_at"`
}

// PlayerRow is one seat at a table. Seat orders the roster.
type PlayerRow struct {
	ChannelID int64        `db:"channel_id"`
	UserID    int64        `db:"user_id"`
	Seat      int          `db:"seat"`
	Name      string       `db:"name"`
	Chips     chips.Vector `db:"chips"`
	Used      chips.Vector `db:"used"`
	Bet       chips.Vector `db:"bet"`
	Forfeits  []byte       `db:"forfeits"`
	State     []byte       `db:"state"`
}
