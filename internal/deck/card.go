// Package deck models a standard 52-card deck where a card is an index
// 0..51: rank is index%13 (0 is a two, 12 an ace) and suit is index/13.
package deck

import "strconv"

// Size is the number of cards in a full deck.
const Size = 52

// Hidden stands in for a face-down card in rendered hands.
const Hidden Card = Size

// Card is a card index in [0, Size).
type Card int

// Suit of a card, in index order.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "♣"
	case Diamonds:
		return "♦"
	case Hearts:
		return "♥"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Rank returns 0..12, two through ace.
func (c Card) Rank() int { return int(c) % 13 }

func (c Card) Suit() Suit { return Suit(int(c) / 13) }

// Valid reports whether c is a real card. Hidden is not valid.
func (c Card) Valid() bool { return c >= 0 && c < Size }

var rankNames = [13]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

func (c Card) String() string {
	if c == Hidden {
		return "??"
	}
	if !c.Valid() {
		return "card(" + strconv.Itoa(int(c)) + ")"
	}
	return rankNames[c.Rank()] + c.Suit().String()
}
