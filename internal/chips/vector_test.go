package chips

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func vectorGen(lo, hi int64) *rapid.Generator[Vector] {
	return rapid.Custom(func(t *rapid.T) Vector {
		var v Vector
		for i := range v {
			v[i] = rapid.Int64Range(lo, hi).Draw(t, Denomination(i).String())
		}
		return v
	})
}

func TestFromSlice(t *testing.T) {
	v, err := FromSlice([]int64{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, Vector{1, 2, 3, 4, 5, 6}, v)

	_, err = FromSlice([]int64{1, 2, 3})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		fields  []string
		want    Vector
		wantErr bool
	}{
		{"full", []string{"1", "2", "3", "4", "5", "6"}, Vector{1, 2, 3, 4, 5, 6}, false},
		{"short pads with zero", []string{"7"}, Vector{7}, false},
		{"empty", nil, Vector{}, false},
		{"too many", []string{"1", "1", "1", "1", "1", "1", "1"}, Vector{}, true},
		{"not a number", []string{"x"}, Vector{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.fields)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Vector{0, 1, 2, 3, 4, 5}.Validate())
	assert.ErrorIs(t, Vector{0, 0, -1}.Validate(), ErrNegativeAmount)
}

func TestClampAndHalf(t *testing.T) {
	v := Vector{300, 60, 6, 60, 9, 75}
	assert.Equal(t, DefaultBetCap, v.Clamp(DefaultBetCap))
	assert.Equal(t, Vector{1, 0, 2, 0, 0, 3}, Vector{3, 1, 5, 0, 1, 7}.Half())
}

func TestDescribe(t *testing.T) {
	assert.Equal(t, "nothing", Vector{}.Describe())
	assert.Equal(t, "3 physical, 1 swap", Vector{3, 0, 0, 0, 0, 1}.Describe())
}

func TestParseDenomination(t *testing.T) {
	d, err := ParseDenomination("Supernatural")
	require.NoError(t, err)
	assert.Equal(t, Supernatural, d)

	d, err = ParseDenomination("5")
	require.NoError(t, err)
	assert.Equal(t, Swap, d)

	_, err = ParseDenomination("gold")
	assert.ErrorIs(t, err, ErrUnknownDenomination)
}

func TestAddSubProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := vectorGen(0, 1_000_000).Draw(t, "a")
		b := vectorGen(0, 1_000_000).Draw(t, "b")

		sum := a.Add(b)
		if sum.Sub(b) != a {
			t.Fatalf("(a+b)-b = %v, want %v", sum.Sub(b), a)
		}
		if !sum.Covers(a) || !sum.Covers(b) {
			t.Fatalf("sum %v should cover both %v and %v", sum, a, b)
		}
	})
}

func TestCheckedAdd(t *testing.T) {
	sum, err := Vector{math.MaxInt64 - 1}.CheckedAdd(Vector{1, 2})
	require.NoError(t, err)
	assert.Equal(t, Vector{math.MaxInt64, 2}, sum)

	_, err = Vector{0, math.MaxInt64}.CheckedAdd(Vector{0, 1})
	assert.ErrorIs(t, err, ErrOverflow)
	assert.ErrorContains(t, err, "mental")
}

func TestScaleOverflow(t *testing.T) {
	big := Vector{math.MaxInt64 / 2, 3}

	_, err := big.CheckedScale(3)
	assert.ErrorIs(t, err, ErrOverflow)
	v, err := big.CheckedScale(2)
	require.NoError(t, err)
	assert.Equal(t, Vector{math.MaxInt64 - 1, 6}, v)

	assert.Equal(t, Vector{math.MaxInt64, 9}, big.Scale(3))
	assert.Equal(t, Vector{100, 9}, big.Scale(3).Clamp(DefaultBetCap))
}

// A checked add either equals the wrapping add with every component still
// non-negative, or fails.
func TestCheckedAddProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := vectorGen(0, math.MaxInt64).Draw(t, "a")
		b := vectorGen(0, math.MaxInt64).Draw(t, "b")

		sum, err := a.CheckedAdd(b)
		if err != nil {
			if !errors.Is(err, ErrOverflow) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}
		if sum != a.Add(b) || sum.Validate() != nil {
			t.Fatalf("%v + %v = %v", a, b, sum)
		}
	})
}

func TestClampProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := vectorGen(0, 10_000).Draw(t, "v")
		c := v.Clamp(DefaultBetCap)
		if c.Exceeds(DefaultBetCap) {
			t.Fatalf("clamped %v exceeds cap", c)
		}
		if !v.Covers(c) {
			t.Fatalf("clamp grew a component: %v -> %v", v, c)
		}
	})
}

func TestDefaultConversions(t *testing.T) {
	convs := DefaultConversions()
	require.Len(t, convs, 11)

	tests := []struct {
		name     string
		index    int
		n        int64
		consumed Vector
		produced Vector
		wantErr  error
	}{
		{"mental to physical", 0, 2, Of(Mental, 2), Of(Physical, 20), nil},
		{"artificial to physical and mental", 1, 1, Of(Artificial, 1), Vector{40, 3}, nil},
		{"physical and mental to artificial", 2, 1, Vector{40, 3}, Of(Artificial, 1), nil},
		{"supernatural to half mental, even", 4, 2, Of(Supernatural, 2), Of(Mental, 1), nil},
		{"supernatural to half mental, odd", 4, 3, Vector{}, Vector{}, ErrFractionalResult},
		{"half mental to supernatural", 6, 4, Of(Mental, 2), Of(Supernatural, 4), nil},
		{"merge to mental", 8, 2, Of(Merge, 2), Of(Mental, 6), nil},
		{"swap to half mental", 10, 1, Vector{}, Vector{}, ErrFractionalResult},
		{"zero multiplier", 0, 0, Vector{}, Vector{}, ErrInvalidMultiplier},
		{"merge to physical, too many", 7, 400_000_000_000_000_000, Vector{}, Vector{}, ErrOverflow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			consumed, produced, err := convs[tt.index].Apply(tt.n)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.consumed, consumed)
			assert.Equal(t, tt.produced, produced)
		})
	}
}

func TestDefaultRules(t *testing.T) {
	r := DefaultRules()
	require.NoError(t, r.Validate())
	assert.True(t, r.StartingChips.IsZero())

	_, err := r.Conversion(11)
	assert.ErrorIs(t, err, ErrUnknownConversion)

	r.ReshuffleThreshold = 52
	assert.Error(t, r.Validate())
}
