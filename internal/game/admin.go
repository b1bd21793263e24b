package game

import "casino-table-bot/internal/chips"

// Administrative overrides. They bypass turn rules but keep the roster and
// chip invariants intact.

// Kick removes userID between rounds without any endgame payout. A kicked
// player's pending bet is discarded.
func Kick(v Variant, userID int64) (string, error) {
	i, s := Find(v, userID)
	if s == nil {
		return "", ErrNotAPlayer
	}
	if v.Base().MidRound() {
		return "", ErrMidRound
	}
	name := s.Name
	removeSeat(v, i)
	return name, nil
}

func SetChips(v Variant, userID int64, amount chips.Vector) (*Seat, error) {
	return setVector(v, userID, amount, func(s *Seat) *chips.Vector { return &s.Chips })
}

func SetUsed(v Variant, userID int64, amount chips.Vector) (*Seat, error) {
	return setVector(v, userID, amount, func(s *Seat) *chips.Vector { return &s.Used })
}

func setVector(v Variant, userID int64, amount chips.Vector, field func(*Seat) *chips.Vector) (*Seat, error) {
	if err := amount.Validate(); err != nil {
		return nil, err
	}
	_, s := Find(v, userID)
	if s == nil {
		return nil, ErrNotAPlayer
	}
	*field(s) = amount
	return s, nil
}

// SetBet overwrites the round bet. Setting it to zero ends the round
// without a payout.
func SetBet(v Variant, bet chips.Vector) error {
	if err := bet.Validate(); err != nil {
		return err
	}
	v.Base().Bet = bet
	return nil
}

func SetStake(v Variant, stake Stake) error {
	if !stake.Valid() {
		return ErrInvalidStake
	}
	v.Base().Stake = stake
	return nil
}

// SetBetTurn points the bet turn at seat index.
func SetBetTurn(v Variant, index int) (*Seat, error) {
	seats := v.Seats()
	if index < 0 || index >= len(seats) {
		return nil, ErrIndexOutOfRange
	}
	v.Base().BetTurn = index
	return seats[index], nil
}

// Merge folds absorbed into kept between rounds: kept gains absorbed's
// chips and used chips, the names are combined and absorbed leaves.
func Merge(v Variant, keptID, absorbedID int64) (*Seat, error) {
	if keptID == absorbedID {
		return nil, ErrSamePlayer
	}
	_, kept := Find(v, keptID)
	j, absorbed := Find(v, absorbedID)
	if kept == nil || absorbed == nil {
		return nil, ErrNotAPlayer
	}
	if v.Base().MidRound() {
		return nil, ErrMidRound
	}
	stash, err := kept.Chips.CheckedAdd(absorbed.Chips)
	if err != nil {
		return nil, err
	}
	used, err := kept.Used.CheckedAdd(absorbed.Used)
	if err != nil {
		return nil, err
	}
	kept.Chips, kept.Used = stash, used
	kept.Name = kept.Name + " / " + absorbed.Name
	removeSeat(v, j)

	// removeSeat may have shifted kept; look it up again.
	_, kept = Find(v, keptID)
	return kept, nil
}

// SwapForfeits exchanges two players' forfeit lists between rounds.
func SwapForfeits(v Variant, firstID, secondID int64) (*Seat, *Seat, error) {
	if firstID == secondID {
		return nil, nil, ErrSamePlayer
	}
	_, a := Find(v, firstID)
	_, b := Find(v, secondID)
	if a == nil || b == nil {
		return nil, nil, ErrNotAPlayer
	}
	if v.Base().MidRound() {
		return nil, nil, ErrMidRound
	}
	a.Forfeits, b.Forfeits = b.Forfeits, a.Forfeits
	return a, b, nil
}
