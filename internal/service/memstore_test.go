package service

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"
	"time"

	"casino-table-bot/internal/model"
	"casino-table-bot/internal/repository"
)

// memStore is an in-memory unit of work. Each transaction works on a copy
// of the data that replaces the original only when fn succeeds.
type memStore struct {
	mu   sync.Mutex
	data *memData
	// failSave makes every game save fail, to exercise rollback.
	failSave error
}

type memData struct {
	accounts map[string]model.Account
	ledger   []model.LedgerEntry
	games    map[int64]memGame
	nextID   int64
	failSave error
}

type memGame struct {
	row     model.GameRow
	players []model.PlayerRow
}

func newMemStore() *memStore {
	return &memStore{data: &memData{
		accounts: make(map[string]model.Account),
		games:    make(map[int64]memGame),
	}}
}

func (m *memStore) InTx(_ context.Context, fn func(repository.Session) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	tx := &memData{
		accounts: maps.Clone(m.data.accounts),
		ledger:   slices.Clone(m.data.ledger),
		games:    make(map[int64]memGame, len(m.data.games)),
		nextID:   m.data.nextID,
		failSave: m.failSave,
	}
	for id, g := range m.data.games {
		tx.games[id] = memGame{row: g.row, players: slices.Clone(g.players)}
	}
	if err := fn(tx); err != nil {
		return err
	}
	m.data = tx
	return nil
}

func (m *memStore) game(channelID int64) (memGame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.data.games[channelID]
	return g, ok
}

func (d *memData) Accounts() repository.AccountStore { return memAccounts{d} }
func (d *memData) Ledger() repository.LedgerStore    { return memLedger{d} }
func (d *memData) Games() repository.GameStore       { return memGames{d} }

type memAccounts struct{ d *memData }

func (a memAccounts) GetByName(_ context.Context, name string) (*model.Account, error) {
	acct, ok := a.d.accounts[name]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &acct, nil
}

func (a memAccounts) Create(_ context.Context, acct *model.Account) error {
	if _, ok := a.d.accounts[acct.Name]; ok {
		return repository.ErrAccountExists
	}
	acct.CreatedAt = time.Now()
	acct.UpdatedAt = acct.CreatedAt
	a.d.accounts[acct.Name] = *acct
	return nil
}

func (a memAccounts) Update(_ context.Context, oldName string, acct *model.Account) error {
	if _, ok := a.d.accounts[oldName]; !ok {
		return repository.ErrAccountNotFound
	}
	if acct.Name != oldName {
		if _, ok := a.d.accounts[acct.Name]; ok {
			return repository.ErrAccountExists
		}
		delete(a.d.accounts, oldName)
		for i := range a.d.ledger {
			if a.d.ledger[i].AccountName == oldName {
				a.d.ledger[i].AccountName = acct.Name
			}
		}
	}
	acct.UpdatedAt = time.Now()
	a.d.accounts[acct.Name] = *acct
	return nil
}

func (a memAccounts) ListByOwner(_ context.Context, ownerID int64) ([]*model.Account, error) {
	var out []*model.Account
	for _, acct := range a.d.accounts {
		if acct.OwnerID == ownerID {
			out = append(out, &acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

type memLedger struct{ d *memData }

func (l memLedger) Record(_ context.Context, entry *model.LedgerEntry) error {
	l.d.nextID++
	entry.ID = l.d.nextID
	entry.CreatedAt = time.Now()
	l.d.ledger = append(l.d.ledger, *entry)
	return nil
}

func (l memLedger) History(_ context.Context, name string, limit int) ([]*model.LedgerEntry, error) {
	var out []*model.LedgerEntry
	for i := len(l.d.ledger) - 1; i >= 0 && len(out) < limit; i-- {
		if e := l.d.ledger[i]; e.AccountName == name {
			out = append(out, &e)
		}
	}
	return out, nil
}

type memGames struct{ d *memData }

func (g memGames) Get(_ context.Context, channelID int64) (*model.GameRow, []model.PlayerRow, error) {
	mg, ok := g.d.games[channelID]
	if !ok {
		return nil, nil, repository.ErrGameNotFound
	}
	row := mg.row
	return &row, slices.Clone(mg.players), nil
}

func (g memGames) Exists(_ context.Context, channelID int64) (bool, error) {
	_, ok := g.d.games[channelID]
	return ok, nil
}

func (g memGames) Create(_ context.Context, row *model.GameRow, players []model.PlayerRow) error {
	if _, ok := g.d.games[row.ChannelID]; ok {
		return repository.ErrGameExists
	}
	g.d.games[row.ChannelID] = memGame{row: *row, players: slices.Clone(players)}
	return nil
}

func (g memGames) Save(_ context.Context, row *model.GameRow, players []model.PlayerRow) error {
	if g.d.failSave != nil {
		return g.d.failSave
	}
	if _, ok := g.d.games[row.ChannelID]; !ok {
		return repository.ErrGameNotFound
	}
	g.d.games[row.ChannelID] = memGame{row: *row, players: slices.Clone(players)}
	return nil
}

func (g memGames) Delete(_ context.Context, channelID int64) (bool, error) {
	_, ok := g.d.games[channelID]
	delete(g.d.games, channelID)
	return ok, nil
}

func (g memGames) List(_ context.Context) ([]*model.GameRow, error) {
	var out []*model.GameRow
	for _, mg := range g.d.games {
		row := mg.row
		out = append(out, &row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}
