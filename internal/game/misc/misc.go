// Package misc implements the free-form table: the engine keeps chips, the
// bet and a shared deck, and players declare the winner themselves.
package misc

import (
	"encoding/json"
	"errors"
	"fmt"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
)

const (
	// RevealLimit caps how many cards a partial peek or a draw shows.
	RevealLimit = 26
	MaxDice     = 100
	MaxSides    = 9_999_999_999
)

var (
	ErrDrawAmount = errors.New("can draw between 1 and 26 cards")
	ErrDiceAmount = errors.New("can roll between 1 and 100 dice")
	ErrDiceSides  = errors.New("dice need between 1 and 9999999999 sides")
)

type Player struct {
	game.Seat
}

// Table is a misc game.
type Table struct {
	game.Game
	Deck    deck.Deck
	Players []*Player

	env game.Env
}

// New is the registry factory for misc tables.
func New(base game.Game, env game.Env) game.Variant {
	base.Type = game.TypeMisc
	return &Table{Game: base, env: env}
}

// Open gives a new table a shuffled deck.
func (t *Table) Open() {
	t.Shuffle()
}

func (t *Table) Base() *game.Game { return &t.Game }

// MaxPlayers is zero: misc tables are unlimited.
func (t *Table) MaxPlayers() int { return 0 }

func (t *Table) Seats() []*game.Seat {
	seats := make([]*game.Seat, len(t.Players))
	for i, p := range t.Players {
		seats[i] = &p.Seat
	}
	return seats
}

func (t *Table) AddPlayer(s game.Seat) {
	t.Players = append(t.Players, &Player{Seat: s})
}

func (t *Table) RemovePlayer(i int) {
	t.Players = append(t.Players[:i], t.Players[i+1:]...)
}

// StartRound deals nothing; the round is whatever the table plays.
func (t *Table) StartRound() (*game.RoundStart, error) {
	return &game.RoundStart{Turn: -1}, nil
}

// WinResult reports a declared winner.
type WinResult struct {
	Seat    int
	Name    string
	Payout  chips.Vector
	Chips   chips.Vector
	BetTurn int
}

// WinBet pays the current bet to userID and closes the round.
func (t *Table) WinBet(userID int64) (*WinResult, error) {
	if !t.MidRound() {
		return nil, game.ErrNotMidRound
	}
	i, s := game.Find(t, userID)
	if s == nil {
		return nil, game.ErrNotAPlayer
	}
	res := &WinResult{Seat: i, Name: s.Name, Payout: t.Bet}
	if err := s.Pay(t.Bet); err != nil {
		return nil, err
	}
	res.Chips = s.Chips
	res.BetTurn = game.CloseRound(t)
	return res, nil
}

// PeekResult is a look at the deck without drawing.
type PeekResult struct {
	Remaining int
	Cards     []deck.Card
}

// Peek shows the deck top first. Unless full is set only the top
// RevealLimit cards are shown.
func (t *Table) Peek(full bool) PeekResult {
	limit := RevealLimit
	if full {
		limit = -1
	}
	return PeekResult{Remaining: t.Deck.Remaining(), Cards: t.Deck.Peek(limit)}
}

// Shuffle rebuilds the deck.
func (t *Table) Shuffle() {
	t.Deck.Shuffle(t.env.Rand)
}

// DrawResult reports cards taken from the deck.
type DrawResult struct {
	Name      string
	Cards     []deck.Card
	Remaining int
}

// Draw takes n cards from the top for userID.
func (t *Table) Draw(userID int64, n int) (*DrawResult, error) {
	_, s := game.Find(t, userID)
	if s == nil {
		return nil, game.ErrNotAPlayer
	}
	if n < 1 || n > RevealLimit {
		return nil, ErrDrawAmount
	}
	cards, err := t.Deck.Draw(n)
	if err != nil {
		return nil, err
	}
	return &DrawResult{Name: s.Name, Cards: cards, Remaining: t.Deck.Remaining()}, nil
}

// RollResult is a dice roll.
type RollResult struct {
	Sides int64
	Dice  []int64
	Total int64
}

// Roll throws amount dice with the given number of sides.
func Roll(r game.Rand, amount int, sides int64) (*RollResult, error) {
	if amount < 1 || amount > MaxDice {
		return nil, ErrDiceAmount
	}
	if sides < 1 || sides > MaxSides {
		return nil, ErrDiceSides
	}
	res := &RollResult{Sides: sides, Dice: make([]int64, amount)}
	for i := range res.Dice {
		res.Dice[i] = r.Int64N(sides) + 1
		res.Total += res.Dice[i]
	}
	return res, nil
}

// Roll throws dice with the table's randomness.
func (t *Table) Roll(amount int, sides int64) (*RollResult, error) {
	return Roll(t.env.Rand, amount, sides)
}

type tableState struct {
	Deck []deck.Card `json:"deck"`
}

func (t *Table) MarshalState() ([]byte, error) {
	return json.Marshal(tableState{Deck: t.Deck.Cards})
}

func (t *Table) UnmarshalState(data []byte) error {
	var s tableState
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("failed to decode misc state: %w", err)
	}
	t.Deck.Cards = s.Deck
	return nil
}

// Misc players carry no state of their own.
func (t *Table) MarshalPlayer(int) ([]byte, error) { return []byte("{}"), nil }

func (t *Table) UnmarshalPlayer(int, []byte) error { return nil }
