package chips

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownConversion = errors.New("unknown conversion")
	ErrInvalidMultiplier = errors.New("conversion multiplier must be at least 1")
	ErrFractionalResult  = errors.New("conversion would produce a fractional chip")
)

// Conversion exchanges Consumed/Divisor chips for Produced/Divisor chips.
// The divisor lets half-chip ratios be expressed exactly in integers.
type Conversion struct {
	Consumed Vector `mapstructure:"consumed"`
	Produced Vector `mapstructure:"produced"`
	Divisor  int64  `mapstructure:"divisor"`
}

// Apply returns the consumed and produced vectors for n repetitions of the
// conversion. It fails when a component is not a whole number of chips or
// does not fit in an int64.
func (c Conversion) Apply(n int64) (consumed, produced Vector, err error) {
	if n < 1 {
		return consumed, produced, ErrInvalidMultiplier
	}
	d := c.Divisor
	if d <= 0 {
		d = 1
	}
	if consumed, err = c.Consumed.CheckedScale(n); err != nil {
		return Vector{}, Vector{}, err
	}
	if consumed, err = divide(consumed, d); err != nil {
		return Vector{}, Vector{}, err
	}
	if produced, err = c.Produced.CheckedScale(n); err != nil {
		return Vector{}, Vector{}, err
	}
	if produced, err = divide(produced, d); err != nil {
		return Vector{}, Vector{}, err
	}
	return consumed, produced, nil
}

func divide(v Vector, d int64) (Vector, error) {
	for i := range v {
		if v[i]%d != 0 {
			return Vector{}, fmt.Errorf("%w: %s", ErrFractionalResult, Denomination(i))
		}
		v[i] /= d
	}
	return v, nil
}

func (c Conversion) String() string {
	d := c.Divisor
	if d <= 1 {
		return c.Consumed.Describe() + " -> " + c.Produced.Describe()
	}
	return fmt.Sprintf("(%s -> %s) / %d", c.Consumed.Describe(), c.Produced.Describe(), d)
}

// DefaultBetCap is the per-denomination ceiling on a bet or a tie payout.
var DefaultBetCap = Vector{100, 20, 2, 20, 3, 25}

// DefaultConversions is the built-in exchange table, indexed from zero.
func DefaultConversions() []Conversion {
	return []Conversion{
		{Consumed: Of(Mental, 1), Produced: Of(Physical, 10), Divisor: 1},
		{Consumed: Of(Artificial, 1), Produced: Vector{40, 3, 0, 0, 0, 0}, Divisor: 1},
		{Consumed: Vector{40, 3, 0, 0, 0, 0}, Produced: Of(Artificial, 1), Divisor: 1},
		{Consumed: Of(Supernatural, 1), Produced: Of(Physical, 5), Divisor: 1},
		{Consumed: Of(Supernatural, 2), Produced: Of(Mental, 1), Divisor: 2},
		{Consumed: Of(Physical, 5), Produced: Of(Supernatural, 1), Divisor: 1},
		{Consumed: Of(Mental, 1), Produced: Of(Supernatural, 2), Divisor: 2},
		{Consumed: Of(Merge, 1), Produced: Of(Physical, 30), Divisor: 1},
		{Consumed: Of(Merge, 1), Produced: Of(Mental, 3), Divisor: 1},
		{Consumed: Of(Swap, 1), Produced: Of(Physical, 5), Divisor: 1},
		{Consumed: Of(Swap, 2), Produced: Of(Mental, 1), Divisor: 2},
	}
}
