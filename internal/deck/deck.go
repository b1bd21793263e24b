package deck

import (
	"errors"
	"fmt"
)

var ErrInsufficientCards = errors.New("not enough cards left in the deck")

// Source supplies the randomness for shuffling. *rand.Rand from
// math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
}

// Deck is an ordered pile of cards. The top of the deck is the last
// element of Cards.
type Deck struct {
	Cards []Card `json:"cards"`
}

// Shuffled returns a full deck in random order.
func Shuffled(src Source) Deck {
	var d Deck
	d.Shuffle(src)
	return d
}

// Shuffle replaces the contents with a freshly shuffled full deck.
func (d *Deck) Shuffle(src Source) {
	cards := make([]Card, Size)
	for i := range cards {
		cards[i] = Card(i)
	}
	for i := len(cards) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
	d.Cards = cards
}

// Remaining returns the number of cards left.
func (d *Deck) Remaining() int {
	return len(d.Cards)
}

// Draw removes n cards from the top. The first card returned is the card
// that was on top.
func (d *Deck) Draw(n int) ([]Card, error) {
	if n < 0 || n > len(d.Cards) {
		return nil, fmt.Errorf("%w: want %d, have %d", ErrInsufficientCards, n, len(d.Cards))
	}
	drawn := make([]Card, n)
	for i := range drawn {
		drawn[i] = d.Cards[len(d.Cards)-1-i]
	}
	d.Cards = d.Cards[:len(d.Cards)-n]
	return drawn, nil
}

// Peek returns up to limit cards from the top without removing them,
// top first. A negative limit returns every card.
func (d *Deck) Peek(limit int) []Card {
	n := len(d.Cards)
	if limit >= 0 && limit < n {
		n = limit
	}
	out := make([]Card, n)
	for i := range out {
		out[i] = d.Cards[len(d.Cards)-1-i]
	}
	return out
}
