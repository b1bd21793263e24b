// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
	"casino-table-bot/internal/repository"
)

// DefaultHistoryLimit bounds ledger listings when the caller gives none.
const DefaultHistoryLimit = 20

// AccountService handles named chip ledger accounts. Accounts are keyed by
// name and never touch a channel lock.
type AccountService struct {
	uow      UnitOfWork
	starting chips.Vector
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(uow UnitOfWork, rules chips.Rules) *AccountService {
	return &AccountService{uow: uow, starting: rules.StartingChips}
}

// owned loads name and checks that userID owns it.
func owned(ctx context.Context, sess repository.Session, userID int64, name string) (*model.Account, error) {
	acct, err := sess.Accounts().GetByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if acct.OwnerID != userID {
		return nil, ErrNotOwner
	}
	return acct, nil
}

func record(ctx context.Context, sess repository.Session, name, kind string, amount chips.Vector) error {
	entry := &model.LedgerEntry{AccountName: name, Amount: amount, Kind: kind}
	if err := sess.Ledger().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s: %w", kind, err)
	}
	return nil
}

// Open creates an account owned by ownerID holding the starting stash.
func (s *AccountService) Open(ctx context.Context, ownerID int64, name string) (*model.Account, error) {
	name, err := model.CleanName(name)
	if err != nil {
		return nil, err
	}

	acct := &model.Account{Name: name, OwnerID: ownerID, Chips: s.starting}
	err = s.uow.InTx(ctx, func(sess repository.Session) error {
		if err := sess.Accounts().Create(ctx, acct); err != nil {
			if errors.Is(err, repository.ErrAccountExists) {
				return ErrAccountExists
			}
			return err
		}
		return record(ctx, sess, name, model.LedgerOpen, s.starting)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account", name).
		Int64("owner_id", ownerID).
		Msg("account opened")
	return acct, nil
}

// Balance returns userID's account.
func (s *AccountService) Balance(ctx context.Context, userID int64, name string) (*model.Account, error) {
	var acct *model.Account
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		acct, err = owned(ctx, sess, userID, name)
		return err
	})
	return acct, err
}

// List returns every account owned by userID.
func (s *AccountService) List(ctx context.Context, userID int64) ([]*model.Account, error) {
	var accounts []*model.Account
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		accounts, err = sess.Accounts().ListByOwner(ctx, userID)
		return err
	})
	return accounts, err
}

// Deposit adds amount to userID's account.
func (s *AccountService) Deposit(ctx context.Context, userID int64, name string, amount chips.Vector) (*model.Account, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	var acct *model.Account
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		if acct, err = owned(ctx, sess, userID, name); err != nil {
			return err
		}
		if err := acct.Deposit(amount); err != nil {
			return err
		}
		if err := sess.Accounts().Update(ctx, acct.Name, acct); err != nil {
			return err
		}
		return record(ctx, sess, acct.Name, model.LedgerDeposit, amount)
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account", acct.Name).
		Int64("user_id", userID).
		Str("amount", amount.String()).
		Msg("chips deposited")
	return acct, nil
}

// Withdraw removes amount from userID's account. Nothing is debited unless
// every denomination is covered.
func (s *AccountService) Withdraw(ctx context.Context, userID int64, name string, amount chips.Vector) (*model.Account, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrInvalidAmount
	}

	var acct *model.Account
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		if acct, err = owned(ctx, sess, userID, name); err != nil {
			return err
		}
		ok, err := acct.Withdraw(amount)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInsufficientBalance
		}
		if err := sess.Accounts().Update(ctx, acct.Name, acct); err != nil {
			return err
		}
		return record(ctx, sess, acct.Name, model.LedgerWithdraw, amount)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientBalance) {
			log.Debug().Str("account", name).Int64("user_id", userID).Msg("withdraw refused")
		}
		return nil, err
	}

	log.Info().
		Str("account", acct.Name).
		Int64("user_id", userID).
		Str("amount", amount.String()).
		Msg("chips withdrawn")
	return acct, nil
}

// Rename moves userID's account to newName. The history follows.
func (s *AccountService) Rename(ctx context.Context, userID int64, oldName, newName string) (*model.Account, error) {
	newName, err := model.CleanName(newName)
	if err != nil {
		return nil, err
	}
	if newName == oldName {
		return nil, ErrSameName
	}

	var acct *model.Account
	err = s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		if acct, err = owned(ctx, sess, userID, oldName); err != nil {
			return err
		}
		if err := acct.Rename(newName); err != nil {
			return err
		}
		if err := sess.Accounts().Update(ctx, oldName, acct); err != nil {
			if errors.Is(err, repository.ErrAccountExists) {
				return ErrNameTaken
			}
			return err
		}
		return record(ctx, sess, acct.Name, model.LedgerRename, chips.Vector{})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account", acct.Name).
		Str("old_name", oldName).
		Int64("user_id", userID).
		Msg("account renamed")
	return acct, nil
}

// History returns the newest ledger entries of userID's account.
func (s *AccountService) History(ctx context.Context, userID int64, name string, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var entries []*model.LedgerEntry
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		if _, err := owned(ctx, sess, userID, name); err != nil {
			return err
		}
		var err error
		entries, err = sess.Ledger().History(ctx, name, limit)
		return err
	})
	return entries, err
}

// Audit returns an account's history without an ownership check.
func (s *AccountService) Audit(ctx context.Context, name string, limit int) ([]*model.LedgerEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	var entries []*model.LedgerEntry
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		if _, err := sess.Accounts().GetByName(ctx, name); err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		var err error
		entries, err = sess.Ledger().History(ctx, name, limit)
		return err
	})
	return entries, err
}

// TransferOwnership hands an account to newOwner. Admin only.
func (s *AccountService) TransferOwnership(ctx context.Context, name string, newOwner int64) (*model.Account, error) {
	var (
		acct     *model.Account
		oldOwner int64
	)
	err := s.uow.InTx(ctx, func(sess repository.Session) error {
		var err error
		acct, err = sess.Accounts().GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, repository.ErrAccountNotFound) {
				return ErrAccountNotFound
			}
			return err
		}
		oldOwner = acct.OwnerID
		acct.OwnerID = newOwner
		if err := sess.Accounts().Update(ctx, name, acct); err != nil {
			return err
		}
		return record(ctx, sess, name, model.LedgerTransfer, chips.Vector{})
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("account", name).
		Int64("old_owner_id", oldOwner).
		Int64("owner_id", newOwner).
		Msg("account ownership transferred")
	return acct, nil
}
