// Package chips defines the six-denomination chip vector used for stashes,
// bets, payouts and conversions.
package chips

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Count is the number of chip denominations.
const Count = 6

// Denomination indexes a chip kind inside a Vector.
type Denomination int

const (
	Physical Denomination = iota
	Mental
	Artificial
	Supernatural
	Merge
	Swap
)

var denominationNames = [Count]string{"physical", "mental", "artificial", "supernatural", "merge", "swap"}

// String returns the lowercase name of the denomination.
func (d Denomination) String() string {
	if !d.Valid() {
		return "denomination(" + strconv.Itoa(int(d)) + ")"
	}
	return denominationNames[d]
}

// Valid reports whether d names one of the six kinds.
func (d Denomination) Valid() bool {
	return d >= 0 && d < Count
}

// ParseDenomination resolves a denomination by name or index.
func ParseDenomination(s string) (Denomination, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range denominationNames {
		if name == s {
			return Denomination(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Denomination(n).Valid() {
		return Denomination(n), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDenomination, s)
}

var (
	ErrLengthMismatch      = errors.New("chip vector must have exactly 6 components")
	ErrNegativeAmount      = errors.New("chip amounts must be non-negative")
	ErrUnknownDenomination = errors.New("unknown chip denomination")
	ErrOverflow            = errors.New("chip amount is too large")
)

// Vector holds one count per denomination, in denomination order.
type Vector [Count]int64

// Of builds a vector holding n chips of a single denomination.
func Of(d Denomination, n int64) Vector {
	var v Vector
	v[d] = n
	return v
}

// FromSlice converts a persisted or parsed slice into a Vector.
func FromSlice(s []int64) (Vector, error) {
	var v Vector
	if len(s) != Count {
		return v, fmt.Errorf("%w: got %d", ErrLengthMismatch, len(s))
	}
	copy(v[:], s)
	return v, nil
}

// Parse reads six whitespace separated integers. Missing trailing
// components are treated as zero.
func Parse(fields []string) (Vector, error) {
	var v Vector
	if len(fields) > Count {
		return v, fmt.Errorf("%w: got %d", ErrLengthMismatch, len(fields))
	}
	for i, f := range fields {
		n, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return v, fmt.Errorf("invalid %s amount %q: %w", Denomination(i), f, err)
		}
		v[i] = n
	}
	return v, nil
}

// Slice returns the components as a fresh slice.
func (v Vector) Slice() []int64 {
	s := make([]int64, Count)
	copy(s, v[:])
	return s
}

// IsZero reports whether every component is zero.
func (v Vector) IsZero() bool {
	return v == Vector{}
}

// Validate fails if any component is negative.
func (v Vector) Validate() error {
	for i, n := range v {
		if n < 0 {
			return fmt.Errorf("%w: %s is %d", ErrNegativeAmount, Denomination(i), n)
		}
	}
	return nil
}

func (v Vector) Add(o Vector) Vector {
	for i := range v {
		v[i] += o[i]
	}
	return v
}

// CheckedAdd is Add for non-negative vectors that fails with ErrOverflow
// instead of wrapping past math.MaxInt64.
func (v Vector) CheckedAdd(o Vector) (Vector, error) {
	for i := range v {
		if o[i] > 0 && v[i] > math.MaxInt64-o[i] {
			return Vector{}, fmt.Errorf("%w: %s", ErrOverflow, Denomination(i))
		}
		v[i] += o[i]
	}
	return v, nil
}

// Sub subtracts o component-wise without any bounds check.
func (v Vector) Sub(o Vector) Vector {
	for i := range v {
		v[i] -= o[i]
	}
	return v
}

// Covers reports whether v holds at least o in every denomination.
func (v Vector) Covers(o Vector) bool {
	for i := range v {
		if v[i] < o[i] {
			return false
		}
	}
	return true
}

// Exceeds reports whether any component of v is greater than the matching
// component of limit.
func (v Vector) Exceeds(limit Vector) bool {
	for i := range v {
		if v[i] > limit[i] {
			return true
		}
	}
	return false
}

// Scale multiplies a non-negative vector by n >= 0, saturating at
// math.MaxInt64. Callers clamp the result to a cap.
func (v Vector) Scale(n int64) Vector {
	for i := range v {
		if p, ok := mul(v[i], n); ok {
			v[i] = p
		} else {
			v[i] = math.MaxInt64
		}
	}
	return v
}

// CheckedScale multiplies a non-negative vector by n >= 0 and fails with
// ErrOverflow when a component does not fit.
func (v Vector) CheckedScale(n int64) (Vector, error) {
	for i := range v {
		p, ok := mul(v[i], n)
		if !ok {
			return Vector{}, fmt.Errorf("%w: %s", ErrOverflow, Denomination(i))
		}
		v[i] = p
	}
	return v, nil
}

func mul(a, n int64) (int64, bool) {
	if a < 0 || n < 0 {
		return a * n, false
	}
	if a != 0 && n > math.MaxInt64/a {
		return 0, false
	}
	return a * n, true
}

// Half divides every component by two, rounding down.
func (v Vector) Half() Vector {
	for i := range v {
		v[i] /= 2
	}
	return v
}

// Clamp caps every component at the matching component of limit.
func (v Vector) Clamp(limit Vector) Vector {
	for i := range v {
		v[i] = min(v[i], limit[i])
	}
	return v
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, n := range v {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatInt(n, 10))
	}
	b.WriteByte(']')
	return b.String()
}

// Describe renders the non-zero components with their names, e.g.
// "3 physical, 1 swap". The zero vector renders as "nothing".
func (v Vector) Describe() string {
	parts := make([]string, 0, Count)
	for i, n := range v {
		if n != 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, Denomination(i)))
		}
	}
	if len(parts) == 0 {
		return "nothing"
	}
	return strings.Join(parts, ", ")
}
