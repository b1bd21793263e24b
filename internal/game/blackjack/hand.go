package blackjack

import "casino-table-bot/internal/deck"

// Hand values with special meaning.
const (
	Bust     = 0
	Natural  = 21
	FiveCard = 22
)

// Condition labels how a winning hand won.
type Condition int

const (
	WinNormal Condition = iota
	WinBlackjack
	WinFiveCard
)

func (c Condition) String() string {
	switch c {
	case WinFiveCard:
		return "f"
	case WinBlackjack:
		return "b"
	default:
		return "n"
	}
}

// ConditionOf labels a hand value.
func ConditionOf(value int) Condition {
	switch value {
	case FiveCard:
		return WinFiveCard
	case Natural:
		return WinBlackjack
	default:
		return WinNormal
	}
}

func cardValue(c deck.Card) int {
	switch r := c.Rank(); {
	case r <= 8:
		return r + 2
	case r <= 11:
		return 10
	default:
		return 11
	}
}

// RawValue sums the cards, counting aces as 1 instead of 11 while the
// total is over 21.
func RawValue(cards []deck.Card) int {
	sum, aces := 0, 0
	for _, c := range cards {
		v := cardValue(c)
		if v == 11 {
			aces++
		}
		sum += v
	}
	for sum > 21 && aces > 0 {
		sum -= 10
		aces--
	}
	return sum
}

// HandValue scores a hand for comparison: Bust over 21, FiveCard for five
// or more cards that did not bust, otherwise the raw total.
func HandValue(cards []deck.Card) int {
	v := RawValue(cards)
	switch {
	case v > 21:
		return Bust
	case len(cards) >= 5:
		return FiveCard
	default:
		return v
	}
}
