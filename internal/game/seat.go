package game

import (
	"unicode/utf8"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// Seat is the per-user participation record shared by every variant.
type Seat struct {
	UserID   int64
	Name     string
	Chips    chips.Vector
	Used     chips.Vector
	Bet      chips.Vector
	Forfeits []Forfeit
}

// UseChips removes amount from the stash when every denomination is
// available, optionally adding it to Used. It reports whether it did.
func (s *Seat) UseChips(amount chips.Vector, track bool) bool {
	if amount.Validate() != nil || !s.Chips.Covers(amount) {
		return false
	}
	used := s.Used
	if track {
		var err error
		if used, err = used.CheckedAdd(amount); err != nil {
			return false
		}
	}
	s.Chips = s.Chips.Sub(amount)
	s.Used = used
	return true
}

// Pay adds amount to the stash, or fails with chips.ErrOverflow and leaves
// it unchanged.
func (s *Seat) Pay(amount chips.Vector) error {
	stash, err := s.Chips.CheckedAdd(amount)
	if err != nil {
		return err
	}
	s.Chips = stash
	return nil
}

func (s *Seat) HasBet() bool {
	return !s.Bet.IsZero()
}

// Convert applies n repetitions of c. ok is false when the stash cannot cover
// the consumed side; in that case, or on error, nothing changes.
func (s *Seat) Convert(c chips.Conversion, n int64) (consumed, produced chips.Vector, ok bool, err error) {
	consumed, produced, err = c.Apply(n)
	if err != nil {
		return consumed, produced, false, err
	}
	if !s.Chips.Covers(consumed) {
		return consumed, produced, false, nil
	}
	stash, err := s.Chips.Sub(consumed).CheckedAdd(produced)
	if err != nil {
		return consumed, produced, false, err
	}
	s.Chips = stash
	return consumed, produced, true, nil
}

func (s *Seat) Rename(name string) error {
	name, err := model.CleanName(name)
	if err != nil {
		return err
	}
	s.Name = name
	return nil
}

// Forfeit is an entry on a player's forfeit list: something they owe the
// table, priced in one denomination.
type Forfeit struct {
	Description string             `json:"description"`
	Cost        int64              `json:"cost"`
	Kind        chips.Denomination `json:"kind"`
	Done        bool               `json:"done"`
}

func (f Forfeit) validate() error {
	n := utf8.RuneCountInString(f.Description)
	if n == 0 || n > 100 || f.Cost < 1 || f.Cost > 999 {
		return ErrInvalidForfeit
	}
	if !f.Kind.Valid() {
		return chips.ErrUnknownDenomination
	}
	return nil
}

// IndexedForfeit pairs a forfeit with its position in the list.
type IndexedForfeit struct {
	Index int
	Forfeit
}

// ForfeitList is a rendered view of a player's forfeits.
type ForfeitList struct {
	Name string
	Open []IndexedForfeit
	Done []IndexedForfeit
}

func (s *Seat) AddForfeit(f Forfeit) error {
	if err := f.validate(); err != nil {
		return err
	}
	s.Forfeits = append(s.Forfeits, f)
	return nil
}

func (s *Seat) RemoveForfeit(i int) (Forfeit, error) {
	if i < 0 || i >= len(s.Forfeits) {
		return Forfeit{}, ErrIndexOutOfRange
	}
	f := s.Forfeits[i]
	s.Forfeits = append(s.Forfeits[:i], s.Forfeits[i+1:]...)
	return f, nil
}

// ToggleForfeit flips the done flag of entry i and returns the new entry.
func (s *Seat) ToggleForfeit(i int) (Forfeit, error) {
	if i < 0 || i >= len(s.Forfeits) {
		return Forfeit{}, ErrIndexOutOfRange
	}
	s.Forfeits[i].Done = !s.Forfeits[i].Done
	return s.Forfeits[i], nil
}

// ListForfeits splits the list into open and done entries. A player looking
// at their own list only sees what is already done.
func (s *Seat) ListForfeits(own bool) ForfeitList {
	list := ForfeitList{Name: s.Name}
	for i, f := range s.Forfeits {
		entry := IndexedForfeit{Index: i, Forfeit: f}
		switch {
		case f.Done:
			list.Done = append(list.Done, entry)
		case !own:
			list.Open = append(list.Open, entry)
		}
	}
	return list
}
