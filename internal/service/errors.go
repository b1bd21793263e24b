package service

import (
	"context"
	"errors"

	"casino-table-bot/internal/repository"
)

// Account errors.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountExists       = errors.New("account already exists")
	ErrNameTaken           = errors.New("account name already taken")
	ErrSameName            = errors.New("new name matches the current one")
	ErrNotOwner            = errors.New("account belongs to another user")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("invalid amount: must not be zero")
)

// UnitOfWork runs a function inside one transaction, committing on nil.
// *repository.Store satisfies it.
type UnitOfWork interface {
	InTx(ctx context.Context, fn func(repository.Session) error) error
}
