package game

import (
	"fmt"

	"github.com/google/uuid"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// JoinResult reports a new seat.
type JoinResult struct {
	Seat    int
	Name    string
	Chips   chips.Vector
	Players int
}

// Join seats userID at the table with the starting stash. Joining is only
// allowed between rounds.
func Join(v Variant, userID int64, name string, starting chips.Vector) (*JoinResult, error) {
	if v.Base().MidRound() {
		return nil, ErrMidRound
	}
	if limit := v.MaxPlayers(); limit > 0 && len(v.Seats()) >= limit {
		return nil, ErrFull
	}
	if i, _ := Find(v, userID); i >= 0 {
		return nil, ErrAlreadyJoined
	}
	name, err := model.CleanName(name)
	if err != nil {
		return nil, err
	}

	v.AddPlayer(Seat{UserID: userID, Name: name, Chips: starting})
	seats := v.Seats()
	return &JoinResult{
		Seat:    len(seats) - 1,
		Name:    name,
		Chips:   starting,
		Players: len(seats),
	}, nil
}

// BetResult reports a placed bet and, if it aligned the table, the new round.
type BetResult struct {
	Seat int
	Name string
	Bet  chips.Vector
	// Pending lists seats whose bet does not match yet.
	Pending []int
	Round   *RoundStart
}

// PlaceBet records userID's bet. While the bet-turn player has no bet, only
// they may bet. Once every bet is non-zero and equal the round starts.
func PlaceBet(v Variant, rules chips.Rules, userID int64, bet chips.Vector) (*BetResult, error) {
	g := v.Base()
	if g.MidRound() {
		return nil, ErrMidRound
	}
	i, s := Find(v, userID)
	if s == nil {
		return nil, ErrNotAPlayer
	}
	if err := bet.Validate(); err != nil {
		return nil, err
	}
	if bet.IsZero() {
		return nil, ErrZeroBet
	}
	if bet.Exceeds(rules.BetCap) {
		return nil, ErrBetOverCap
	}
	if turn, leader := BetTurnSeat(v); turn != i && !leader.HasBet() {
		return nil, ErrNotYourBet
	}

	s.Bet = bet
	res := &BetResult{Seat: i, Name: s.Name, Bet: bet}
	pending := unaligned(v.Seats(), bet)
	if len(pending) > 0 {
		res.Pending = pending
		return res, nil
	}

	g.Bet = bet
	g.Started = true
	g.RoundID = uuid.New()
	start, err := v.StartRound()
	if err != nil {
		return nil, fmt.Errorf("failed to start round: %w", err)
	}
	start.RoundID = g.RoundID
	start.Bet = bet
	res.Round = start
	return res, nil
}

// BetsAligned reports whether every seat holds the same non-zero bet.
func BetsAligned(v Variant) bool {
	seats := v.Seats()
	return len(seats) > 0 && !seats[0].Bet.IsZero() && len(unaligned(seats, seats[0].Bet)) == 0
}

func unaligned(seats []*Seat, bet chips.Vector) []int {
	var out []int
	for i, s := range seats {
		if s.Bet != bet {
			out = append(out, i)
		}
	}
	return out
}

// CloseRound returns the table to betting: the round bet and every seat's
// bet are cleared and the bet turn moves to the next seat. It returns the
// new bet-turn index.
func CloseRound(v Variant) int {
	g := v.Base()
	g.Bet = chips.Vector{}
	seats := v.Seats()
	for _, s := range seats {
		s.Bet = chips.Vector{}
	}
	if len(seats) > 0 {
		g.BetTurn = (g.BetTurn + 1) % len(seats)
	}
	return g.BetTurn
}

// ConcedeResult reports a player leaving the table.
type ConcedeResult struct {
	Name      string
	Remaining int
	// Ended means the table must be deleted.
	Ended bool
	// Winner is the last player standing of a started table, if any.
	Winner *Seat
	Reward chips.Vector
}

// Concede removes userID between rounds. An untouched table that empties
// ends; a started table down to one player ends with that player as the
// overall winner, rewarded according to the stake.
func Concede(v Variant, userID int64) (*ConcedeResult, error) {
	g := v.Base()
	if g.MidRound() {
		return nil, ErrMidRound
	}
	i, s := Find(v, userID)
	if s == nil {
		return nil, ErrNotAPlayer
	}
	res := &ConcedeResult{Name: s.Name}
	removeSeat(v, i)

	seats := v.Seats()
	res.Remaining = len(seats)
	switch {
	case len(seats) == 0:
		res.Ended = true
	case len(seats) == 1 && g.Started:
		winner := *seats[0]
		res.Winner = &winner
		res.Reward = g.Stake.Reward(winner.Used)
		res.Ended = true
	}
	return res, nil
}

// removeSeat drops seat i and keeps the bet turn pointing at the same player
// where possible.
func removeSeat(v Variant, i int) {
	g := v.Base()
	v.RemovePlayer(i)
	n := len(v.Seats())
	if i < g.BetTurn {
		g.BetTurn--
	}
	if g.BetTurn >= n || g.BetTurn < 0 {
		g.BetTurn = 0
	}
}

// UseChips spends amount from userID's stash between rounds and tracks it
// as used.
func UseChips(v Variant, userID int64, amount chips.Vector) (*Seat, error) {
	s, err := idleSeat(v, userID)
	if err != nil {
		return nil, err
	}
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrZeroAmount
	}
	if !s.UseChips(amount, true) {
		return nil, ErrInsufficientChips
	}
	return s, nil
}

// ConvertResult reports an applied conversion.
type ConvertResult struct {
	Name     string
	Consumed chips.Vector
	Produced chips.Vector
	Chips    chips.Vector
}

// Convert applies conversion index n times to userID's stash between rounds.
func Convert(v Variant, rules chips.Rules, userID int64, index int, n int64) (*ConvertResult, error) {
	s, err := idleSeat(v, userID)
	if err != nil {
		return nil, err
	}
	conv, err := rules.Conversion(index)
	if err != nil {
		return nil, err
	}
	consumed, produced, ok, err := s.Convert(conv, n)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInsufficientChips
	}
	return &ConvertResult{Name: s.Name, Consumed: consumed, Produced: produced, Chips: s.Chips}, nil
}

// Rename changes userID's display name at this table.
func Rename(v Variant, userID int64, name string) (old string, err error) {
	_, s := Find(v, userID)
	if s == nil {
		return "", ErrNotAPlayer
	}
	old = s.Name
	if err := s.Rename(name); err != nil {
		return "", err
	}
	return old, nil
}

func idleSeat(v Variant, userID int64) (*Seat, error) {
	_, s := Find(v, userID)
	if s == nil {
		return nil, ErrNotAPlayer
	}
	if v.Base().MidRound() {
		return nil, ErrMidRound
	}
	return s, nil
}

// AddForfeit puts an entry on target's list. The author must be playing.
func AddForfeit(v Variant, authorID, targetID int64, f Forfeit) (*Seat, error) {
	_, target, err := authorAndTarget(v, authorID, targetID)
	if err != nil {
		return nil, err
	}
	if err := target.AddForfeit(f); err != nil {
		return nil, err
	}
	return target, nil
}

func RemoveForfeit(v Variant, authorID, targetID int64, index int) (Forfeit, error) {
	_, target, err := authorAndTarget(v, authorID, targetID)
	if err != nil {
		return Forfeit{}, err
	}
	return target.RemoveForfeit(index)
}

func ToggleForfeit(v Variant, authorID, targetID int64, index int) (Forfeit, error) {
	_, target, err := authorAndTarget(v, authorID, targetID)
	if err != nil {
		return Forfeit{}, err
	}
	return target.ToggleForfeit(index)
}

// ListForfeits renders target's list as seen by viewer.
func ListForfeits(v Variant, viewerID, targetID int64) (ForfeitList, error) {
	_, target, err := authorAndTarget(v, viewerID, targetID)
	if err != nil {
		return ForfeitList{}, err
	}
	return target.ListForfeits(viewerID == targetID), nil
}

func authorAndTarget(v Variant, authorID, targetID int64) (*Seat, *Seat, error) {
	_, author := Find(v, authorID)
	if author == nil {
		return nil, nil, ErrNotAPlayer
	}
	_, target := Find(v, targetID)
	if target == nil {
		return nil, nil, fmt.Errorf("target: %w", ErrNotAPlayer)
	}
	return author, target, nil
}
