// Package odds converts sportsbook moneyline prices to implied
// probabilities and aggregates cross-bookmaker consensus for a matchup.
package odds

import (
	"errors"
	"fmt"
)

// ErrInvalidOdds marks an American price that cannot be converted. Zero is
// the only such integer; it encodes "no line" upstream and must not be
// averaged into a consensus.
var ErrInvalidOdds = errors.New("odds: invalid american price")

// AmericanToProbability converts an American moneyline price to its implied
// probability in (0,1). Negative prices are favorites: |p|/(|p|+100).
// Positive prices are underdogs: 100/(p+100).
func AmericanToProbability(price int) (float64, error) {
	if price == 0 {
		return 0, fmt.Errorf("%w: 0", ErrInvalidOdds)
	}
	if price < 0 {
		mag := float64(-price)
		return mag / (mag + 100), nil
	}
	return 100 / (float64(price) + 100), nil
}
