package game

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"casino-table-bot/internal/chips"
	"casino-table-bot/internal/model"
)

// testTable is the smallest possible variant.
type testTable struct {
	Game
	seats  []*Seat
	max    int
	rounds int
}

func (t *testTable) Base() *Game                       { return &t.Game }
func (t *testTable) Seats() []*Seat                    { return t.seats }
func (t *testTable) MaxPlayers() int                   { return t.max }
func (t *testTable) AddPlayer(s Seat)                  { t.seats = append(t.seats, &s) }
func (t *testTable) RemovePlayer(i int)                { t.seats = append(t.seats[:i], t.seats[i+1:]...) }
func (t *testTable) MarshalState() ([]byte, error)     { return []byte("{}"), nil }
func (t *testTable) UnmarshalState([]byte) error       { return nil }
func (t *testTable) MarshalPlayer(int) ([]byte, error) { return []byte("{}"), nil }
func (t *testTable) UnmarshalPlayer(int, []byte) error { return nil }

func (t *testTable) StartRound() (*RoundStart, error) {
	t.rounds++
	return &RoundStart{Turn: -1}, nil
}

func newTestTable(t *testing.T, limit int, users ...int64) *testTable {
	t.Helper()
	tb := &testTable{Game: Game{ChannelID: 42, Type: "test", Stake: StakeNormal}, max: limit}
	for _, u := range users {
		_, err := Join(tb, u, "p", chips.Vector{50, 5})
		require.NoError(t, err)
	}
	return tb
}

func TestJoin(t *testing.T) {
	tb := newTestTable(t, 2, 1)

	_, err := Join(tb, 1, "again", chips.Vector{})
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	_, err = Join(tb, 2, "  ", chips.Vector{})
	assert.ErrorIs(t, err, model.ErrEmptyName)

	res, err := Join(tb, 2, " second ", chips.Vector{1})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Seat)
	assert.Equal(t, "second", res.Name)
	assert.Equal(t, 2, res.Players)

	_, err = Join(tb, 3, "third", chips.Vector{})
	assert.ErrorIs(t, err, ErrFull)
}

func TestPlaceBetRefusals(t *testing.T) {
	rules := chips.DefaultRules()
	tb := newTestTable(t, 0, 1, 2)

	tests := []struct {
		name   string
		userID int64
		bet    chips.Vector
		want   error
	}{
		{"not a player", 9, chips.Vector{1}, ErrNotAPlayer},
		{"zero", 1, chips.Vector{}, ErrZeroBet},
		{"negative", 1, chips.Vector{-1}, chips.ErrNegativeAmount},
		{"over cap", 1, chips.Vector{0, 21}, ErrBetOverCap},
		{"out of turn", 2, chips.Vector{1}, ErrNotYourBet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PlaceBet(tb, rules, tt.userID, tt.bet)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.False(t, tb.MidRound())
}

func TestPlaceBetAlignsAndStartsRound(t *testing.T) {
	rules := chips.DefaultRules()
	tb := newTestTable(t, 0, 1, 2, 3)

	res, err := PlaceBet(tb, rules, 1, chips.Vector{10})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Pending)
	assert.Nil(t, res.Round)

	// Once the leader has bet anyone may answer, even with a different bet.
	res, err = PlaceBet(tb, rules, 3, chips.Vector{5})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, res.Pending)

	_, err = PlaceBet(tb, rules, 1, chips.Vector{5})
	require.NoError(t, err)
	assert.False(t, BetsAligned(tb))

	res, err = PlaceBet(tb, rules, 2, chips.Vector{5})
	require.NoError(t, err)
	require.NotNil(t, res.Round)
	assert.True(t, BetsAligned(tb))
	assert.Equal(t, chips.Vector{5}, tb.Bet)
	assert.True(t, tb.Started)
	assert.Equal(t, 1, tb.rounds)
	assert.Equal(t, tb.RoundID, res.Round.RoundID)

	_, err = PlaceBet(tb, rules, 1, chips.Vector{5})
	assert.ErrorIs(t, err, ErrMidRound)

	turn := CloseRound(tb)
	assert.Equal(t, 1, turn)
	assert.False(t, tb.MidRound())
	for _, s := range tb.seats {
		assert.False(t, s.HasBet())
	}
	assert.True(t, tb.Started)
}

func TestConcede(t *testing.T) {
	t.Run("last player of an unstarted table ends it", func(t *testing.T) {
		tb := newTestTable(t, 0, 1)
		res, err := Concede(tb, 1)
		require.NoError(t, err)
		assert.True(t, res.Ended)
		assert.Nil(t, res.Winner)
	})

	t.Run("unstarted table keeps going", func(t *testing.T) {
		tb := newTestTable(t, 0, 1, 2)
		res, err := Concede(tb, 1)
		require.NoError(t, err)
		assert.False(t, res.Ended)
		assert.Equal(t, 1, res.Remaining)
	})

	stakes := []struct {
		stake Stake
		want  chips.Vector
	}{
		{StakeLow, chips.Vector{}},
		{StakeNormal, chips.Vector{3, 1}},
		{StakeHigh, chips.Vector{7, 3}},
	}
	for _, tt := range stakes {
		t.Run("winner at "+tt.stake.String()+" stakes", func(t *testing.T) {
			tb := newTestTable(t, 0, 1, 2)
			tb.Started = true
			tb.Stake = tt.stake
			tb.seats[1].Used = chips.Vector{7, 3}

			res, err := Concede(tb, 1)
			require.NoError(t, err)
			assert.True(t, res.Ended)
			require.NotNil(t, res.Winner)
			assert.Equal(t, int64(2), res.Winner.UserID)
			assert.Equal(t, tt.want, res.Reward)
		})
	}

	t.Run("spectator", func(t *testing.T) {
		tb := newTestTable(t, 0, 1)
		_, err := Concede(tb, 2)
		assert.ErrorIs(t, err, ErrNotAPlayer)
	})
}

func TestConcedeKeepsBetTurnOnSamePlayer(t *testing.T) {
	tb := newTestTable(t, 0, 1, 2, 3)
	tb.BetTurn = 2

	_, err := Concede(tb, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, tb.BetTurn)
	assert.Equal(t, int64(3), tb.seats[tb.BetTurn].UserID)

	_, err = Concede(tb, 3)
	require.NoError(t, err)
	assert.Equal(t, 0, tb.BetTurn)
}

func TestUseChips(t *testing.T) {
	tb := newTestTable(t, 0, 1)

	_, err := UseChips(tb, 1, chips.Vector{})
	assert.ErrorIs(t, err, ErrZeroAmount)

	_, err = UseChips(tb, 1, chips.Vector{51})
	assert.ErrorIs(t, err, ErrInsufficientChips)
	assert.Equal(t, chips.Vector{50, 5}, tb.seats[0].Chips)

	s, err := UseChips(tb, 1, chips.Vector{20, 5})
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{30}, s.Chips)
	assert.Equal(t, chips.Vector{20, 5}, s.Used)

	tb.Bet = chips.Vector{1}
	_, err = UseChips(tb, 1, chips.Vector{1})
	assert.ErrorIs(t, err, ErrMidRound)
}

func TestConvert(t *testing.T) {
	rules := chips.DefaultRules()
	tb := newTestTable(t, 0, 1)

	res, err := Convert(tb, rules, 1, 0, 2)
	require.NoError(t, err)
	assert.Equal(t, chips.Vector{70, 3}, res.Chips)
	assert.True(t, tb.seats[0].Used.IsZero())

	_, err = Convert(tb, rules, 1, 11, 1)
	assert.ErrorIs(t, err, chips.ErrUnknownConversion)

	_, err = Convert(tb, rules, 1, 1, 1)
	assert.ErrorIs(t, err, ErrInsufficientChips)
	assert.Equal(t, chips.Vector{70, 3}, tb.seats[0].Chips)
}

// An odd multiplier on a half-chip conversion always fails and leaves the
// stash untouched.
func TestConvertFractionalProperty(t *testing.T) {
	rules := chips.DefaultRules()
	rapid.Check(t, func(t *rapid.T) {
		index := rapid.SampledFrom([]int{4, 6, 10}).Draw(t, "conversion")
		n := 2*rapid.Int64Range(0, 1000).Draw(t, "half") + 1
		var stash chips.Vector
		for i := range stash {
			stash[i] = rapid.Int64Range(0, 10_000).Draw(t, chips.Denomination(i).String())
		}

		tb := &testTable{}
		tb.AddPlayer(Seat{UserID: 1, Name: "p", Chips: stash})
		_, err := Convert(tb, rules, 1, index, n)
		if err == nil {
			t.Fatalf("conversion %d with multiplier %d should fail", index, n)
		}
		if tb.seats[0].Chips != stash {
			t.Fatalf("stash changed from %v to %v", stash, tb.seats[0].Chips)
		}
	})
}

func TestConvertRefusesOverflow(t *testing.T) {
	rules := chips.DefaultRules()
	tb := &testTable{}
	tb.AddPlayer(Seat{UserID: 1, Name: "p", Chips: chips.Vector{0, 0, 0, 0, 400_000_000_000_000_000}})
	tb.AddPlayer(Seat{UserID: 2, Name: "q", Chips: chips.Vector{math.MaxInt64 - 5, 0, 0, 0, 1}})

	// 30 physical per merge chip does not fit in an int64.
	_, err := Convert(tb, rules, 1, 7, 400_000_000_000_000_000)
	assert.ErrorIs(t, err, chips.ErrOverflow)
	assert.Equal(t, chips.Vector{0, 0, 0, 0, 400_000_000_000_000_000}, tb.seats[0].Chips)

	// The produced side fits but the resulting stash does not.
	_, err = Convert(tb, rules, 2, 7, 1)
	assert.ErrorIs(t, err, chips.ErrOverflow)
	assert.Equal(t, chips.Vector{math.MaxInt64 - 5, 0, 0, 0, 1}, tb.seats[1].Chips)
}

func TestPayRefusesOverflow(t *testing.T) {
	s := &Seat{Chips: chips.Vector{math.MaxInt64}}
	assert.ErrorIs(t, s.Pay(chips.Vector{1}), chips.ErrOverflow)
	assert.Equal(t, chips.Vector{math.MaxInt64}, s.Chips)

	require.NoError(t, s.Pay(chips.Vector{0, 4}))
	assert.Equal(t, chips.Vector{math.MaxInt64, 4}, s.Chips)

	s = &Seat{Chips: chips.Vector{5}, Used: chips.Vector{math.MaxInt64}}
	assert.False(t, s.UseChips(chips.Vector{1}, true))
	assert.Equal(t, chips.Vector{5}, s.Chips)
}

func TestMergeRefusesOverflow(t *testing.T) {
	tb := &testTable{}
	tb.AddPlayer(Seat{UserID: 1, Name: "a", Chips: chips.Vector{math.MaxInt64}})
	tb.AddPlayer(Seat{UserID: 2, Name: "b", Chips: chips.Vector{1}})

	_, err := Merge(tb, 1, 2)
	assert.ErrorIs(t, err, chips.ErrOverflow)
	assert.Len(t, tb.seats, 2)
	assert.Equal(t, "a", tb.seats[0].Name)
	assert.Equal(t, chips.Vector{math.MaxInt64}, tb.seats[0].Chips)
}

func TestForfeits(t *testing.T) {
	tb := newTestTable(t, 0, 1, 2)

	_, err := AddForfeit(tb, 3, 1, Forfeit{Description: "sing", Cost: 1})
	assert.ErrorIs(t, err, ErrNotAPlayer)
	_, err = AddForfeit(tb, 2, 1, Forfeit{Description: "", Cost: 1})
	assert.ErrorIs(t, err, ErrInvalidForfeit)
	_, err = AddForfeit(tb, 2, 1, Forfeit{Description: "sing", Cost: 1000})
	assert.ErrorIs(t, err, ErrInvalidForfeit)

	for _, d := range []string{"sing", "dance", "juggle"} {
		_, err := AddForfeit(tb, 2, 1, Forfeit{Description: d, Cost: 5, Kind: chips.Mental})
		require.NoError(t, err)
	}
	f, err := ToggleForfeit(tb, 2, 1, 1)
	require.NoError(t, err)
	assert.True(t, f.Done)

	own, err := ListForfeits(tb, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, own.Open)
	require.Len(t, own.Done, 1)
	assert.Equal(t, 1, own.Done[0].Index)

	other, err := ListForfeits(tb, 2, 1)
	require.NoError(t, err)
	assert.Len(t, other.Open, 2)
	assert.Len(t, other.Done, 1)

	removed, err := RemoveForfeit(tb, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "sing", removed.Description)
	_, err = RemoveForfeit(tb, 2, 1, 5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	a, b, err := SwapForfeits(tb, 1, 2)
	require.NoError(t, err)
	assert.Empty(t, a.Forfeits)
	assert.Len(t, b.Forfeits, 2)
}

func TestAdminOverrides(t *testing.T) {
	tb := newTestTable(t, 0, 1, 2, 3)

	_, err := SetBetTurn(tb, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	s, err := SetBetTurn(tb, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), s.UserID)

	assert.ErrorIs(t, SetStake(tb, Stake(7)), ErrInvalidStake)
	require.NoError(t, SetStake(tb, StakeHigh))
	assert.Equal(t, StakeHigh, tb.Stake)

	_, err = SetChips(tb, 1, chips.Vector{-1})
	assert.ErrorIs(t, err, chips.ErrNegativeAmount)
	_, err = SetUsed(tb, 2, chips.Vector{4})
	require.NoError(t, err)

	kept, err := Merge(tb, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "p / p", kept.Name)
	assert.Equal(t, chips.Vector{100, 10}, kept.Chips)
	assert.Equal(t, chips.Vector{4}, kept.Used)
	assert.Len(t, tb.seats, 2)
	assert.Equal(t, 1, tb.BetTurn)

	_, err = Merge(tb, 1, 1)
	assert.ErrorIs(t, err, ErrSamePlayer)

	require.NoError(t, SetBet(tb, chips.Vector{1}))
	_, err = Kick(tb, 3)
	assert.ErrorIs(t, err, ErrMidRound)
	require.NoError(t, SetBet(tb, chips.Vector{}))
	name, err := Kick(tb, 3)
	require.NoError(t, err)
	assert.Equal(t, "p", name)
}

func TestParseStake(t *testing.T) {
	s, err := ParseStake("High")
	require.NoError(t, err)
	assert.Equal(t, StakeHigh, s)
	s, err = ParseStake("")
	require.NoError(t, err)
	assert.Equal(t, StakeNormal, s)
	_, err = ParseStake("extreme")
	assert.ErrorIs(t, err, ErrInvalidStake)
}
