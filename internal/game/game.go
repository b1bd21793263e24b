// Package game holds the state machine shared by every table type: the
// roster, betting, stakes, chip spending and concession. Blackjack,
// tournament and misc tables embed Game and Seat and implement Variant.
package game

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"casino-table-bot/internal/chips"
)

// Type discriminates the table variants.
type Type string

const (
	TypeBlackjack Type = "blackjack"
	TypeTourney   Type = "tourney"
	TypeMisc      Type = "misc"
)

// Stake controls what an overall winner keeps when the table ends by
// concession.
type Stake int

const (
	StakeLow Stake = iota
	StakeNormal
	StakeHigh
)

func (s Stake) Valid() bool { return s >= StakeLow && s <= StakeHigh }

func (s Stake) String() string {
	switch s {
	case StakeLow:
		return "low"
	case StakeNormal:
		return "normal"
	case StakeHigh:
		return "high"
	default:
		return fmt.Sprintf("stake(%d)", int(s))
	}
}

// ParseStake accepts a stake name or its number.
func ParseStake(s string) (Stake, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low", "0":
		return StakeLow, nil
	case "normal", "1", "":
		return StakeNormal, nil
	case "high", "2":
		return StakeHigh, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStake, s)
}

// Reward returns the chips returned to the last player standing: nothing at
// low stakes, half of the used chips rounded down at normal stakes and all of
// them at high stakes.
func (s Stake) Reward(used chips.Vector) chips.Vector {
	switch s {
	case StakeNormal:
		return used.Half()
	case StakeHigh:
		return used
	default:
		return chips.Vector{}
	}
}

// Game is the base state of a channel's table. A zero Bet means the table
// is between rounds.
type Game struct {
	ChannelID int64
	Type      Type
	Stake     Stake
	Bet       chips.Vector
	Started   bool
	BetTurn   int
	RoundID   uuid.UUID
}

// MidRound reports whether a round is in progress.
func (g *Game) MidRound() bool {
	return !g.Bet.IsZero()
}

// Rand is the randomness used by variants. *rand.Rand from math/rand/v2
// satisfies it.
type Rand interface {
	IntN(n int) int
	Int64N(n int64) int64
}

// SystemRand draws from the math/rand/v2 top-level source, which is safe
// for concurrent use across channels.
type SystemRand struct{}

func (SystemRand) IntN(n int) int       { return rand.IntN(n) }
func (SystemRand) Int64N(n int64) int64 { return rand.Int64N(n) }

// Env carries the injected rules and randomness into a variant.
type Env struct {
	Rules chips.Rules
	Rand  Rand
}

// RoundStart describes a freshly dealt round.
type RoundStart struct {
	RoundID  uuid.UUID
	Bet      chips.Vector
	Dealt    []int
	Shuffled bool
	// Turn is the seat to act first, or -1 when the variant has no turn order.
	Turn int
}

// Variant is implemented by every table type.
type Variant interface {
	Base() *Game
	Seats() []*Seat
	// MaxPlayers returns the roster cap; zero means unlimited.
	MaxPlayers() int
	AddPlayer(s Seat)
	RemovePlayer(i int)
	// StartRound deals a new round once every bet has aligned.
	StartRound() (*RoundStart, error)

	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
	MarshalPlayer(i int) ([]byte, error)
	UnmarshalPlayer(i int, data []byte) error
}

// Find returns the seat index and seat of userID, or -1 and nil.
func Find(v Variant, userID int64) (int, *Seat) {
	for i, s := range v.Seats() {
		if s.UserID == userID {
			return i, s
		}
	}
	return -1, nil
}

// BetTurnSeat returns the seat whose turn it is to propose a bet.
func BetTurnSeat(v Variant) (int, *Seat) {
	seats := v.Seats()
	if len(seats) == 0 {
		return -1, nil
	}
	i := v.Base().BetTurn
	if i < 0 || i >= len(seats) {
		i = 0
	}
	return i, seats[i]
}
