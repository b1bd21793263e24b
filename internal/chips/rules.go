package chips

import "fmt"

// DefaultReshuffleThreshold is the remaining-card count at or below which a
// blackjack deck is rebuilt before dealing.
const DefaultReshuffleThreshold = 26

const deckSize = 52

// Rules is the immutable economy configuration injected at startup.
type Rules struct {
	BetCap             Vector
	Conversions        []Conversion
	StartingChips      Vector
	ReshuffleThreshold int
}

// DefaultRules returns the built-in bet cap, conversion table and deck
// threshold with an empty starting stash.
func DefaultRules() Rules {
	return Rules{
		BetCap:             DefaultBetCap,
		Conversions:        DefaultConversions(),
		ReshuffleThreshold: DefaultReshuffleThreshold,
	}
}

// Conversion looks up a conversion by its zero-based index.
func (r Rules) Conversion(i int) (Conversion, error) {
	if i < 0 || i >= len(r.Conversions) {
		return Conversion{}, fmt.Errorf("%w: %d", ErrUnknownConversion, i)
	}
	return r.Conversions[i], nil
}

// Validate checks that the rules are usable by the engine.
func (r Rules) Validate() error {
	if err := r.BetCap.Validate(); err != nil {
		return fmt.Errorf("bet cap: %w", err)
	}
	if err := r.StartingChips.Validate(); err != nil {
		return fmt.Errorf("starting chips: %w", err)
	}
	for i, c := range r.Conversions {
		if err := c.Consumed.Validate(); err != nil {
			return fmt.Errorf("conversion %d: %w", i, err)
		}
		if err := c.Produced.Validate(); err != nil {
			return fmt.Errorf("conversion %d: %w", i, err)
		}
		if c.Divisor < 1 {
			return fmt.Errorf("conversion %d: divisor must be at least 1", i)
		}
	}
	if r.ReshuffleThreshold < 0 || r.ReshuffleThreshold >= deckSize {
		return fmt.Errorf("reshuffle threshold %d out of range", r.ReshuffleThreshold)
	}
	return nil
}
