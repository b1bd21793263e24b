package misc

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/deck"
	"casino-table-bot/internal/game"
)

func newTable(t *testing.T, users ...int64) *Table {
	t.Helper()
	env := game.Env{Rules: chips.DefaultRules(), Rand: rand.New(rand.NewPCG(1, 2))}
	tb := New(game.Game{ChannelID: 3}, env).(*Table)
	tb.Open()
	for _, u := range users {
		_, err := game.Join(tb, u, "player", chips.Vector{5})
		require.NoError(t, err)
	}
	return tb
}

func TestWinBet(t *testing.T) {
	tb := newTable(t, 1, 2)

	_, err := tb.WinBet(1)
	assert.ErrorIs(t, err, game.ErrNotMidRound)

	for _, u := range []int64{1, 2} {
		_, err := game.PlaceBet(tb, tb.env.Rules, u, chips.Vector{3, 1})
		require.NoError(t, err)
	}
	require.True(t, tb.MidRound())

	res, err := tb.WinBet(2)
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{3, 1}, res.Payout)
	assert.Equal(t, chips.Vector{8, 1}, tb.Players[1].Chips)
	assert.Equal(t, chips.Vector{5}, tb.Players[0].Chips)
	assert.False(t, tb.MidRound())
	assert.Equal(t, 1, res.BetTurn)
}

func TestUnlimitedSeats(t *testing.T) {
	tb := newTable(t)
	for u := int64(1); u <= 20; u++ {
		_, err := game.Join(tb, u, "p", chips.Vector{})
		require.NoError(t, err)
	}
	assert.Len(t, tb.Players, 20)
}

func TestPeekAndDraw(t *testing.T) {
	tb := newTable(t, 1)
	require.Equal(t, deck.Size, tb.Deck.Remaining())

	peek := tb.Peek(false)
	assert.Equal(t, deck.Size, peek.Remaining)
	assert.Len(t, peek.Cards, RevealLimit)
	full := tb.Peek(true)
	assert.Len(t, full.Cards, deck.Size)
	assert.Equal(t, full.Cards[:RevealLimit], peek.Cards)

	drawn, err := tb.Draw(1, 3)
	require.NoError(t, err)
	assert.Equal(t, full.Cards[:3], drawn.Cards)
	assert.Equal(t, deck.Size-3, drawn.Remaining)

	_, err = tb.Draw(1, 0)
	assert.ErrorIs(t, err, ErrDrawAmount)
	_, err = tb.Draw(1, 27)
	assert.ErrorIs(t, err, ErrDrawAmount)
	_, err = tb.Draw(9, 1)
	assert.ErrorIs(t, err, game.ErrNotAPlayer)

	tb.Deck.Cards = tb.Deck.Cards[:2]
	_, err = tb.Draw(1, 3)
	assert.ErrorIs(t, err, deck.ErrInsufficientCards)

	tb.Shuffle()
	assert.Equal(t, deck.Size, tb.Deck.Remaining())
}

func TestRollBounds(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	_, err := Roll(r, 0, 6)
	assert.ErrorIs(t, err, ErrDiceAmount)
	_, err = Roll(r, 101, 6)
	assert.ErrorIs(t, err, ErrDiceAmount)
	_, err = Roll(r, 1, 0)
	assert.ErrorIs(t, err, ErrDiceSides)
	_, err = Roll(r, 1, MaxSides+1)
	assert.ErrorIs(t, err, ErrDiceSides)
}

func TestRollProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		amount := rapid.IntRange(1, MaxDice).Draw(t, "amount")
		sides := rapid.Int64Range(1, MaxSides).Draw(t, "sides")
		seed := rapid.Uint64().Draw(t, "seed")

		res, err := Roll(rand.New(rand.NewPCG(seed, 0)), amount, sides)
		if err != nil {
			t.Fatalf("roll failed: %v", err)
		}
		var total int64
		for _, d := range res.Dice {
			if d < 1 || d > sides {
				t.Fatalf("die %d out of range 1..%d", d, sides)
			}
			total += d
		}
		if len(res.Dice) != amount || total != res.Total {
			t.Fatalf("got %d dice totalling %d, want %d dice totalling %d", len(res.Dice), res.Total, amount, total)
		}
	})
}
