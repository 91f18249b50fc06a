package markets

import "math"

// ResolveProbability picks the first present, valid price field in the fixed
// fallback order yes_bid, last_price, midpoint and scales cents to a [0,1]
// probability. Invalid values (missing, non-finite, outside 0..100 cents)
// are skipped, never coerced to zero. Returns nil when no field is usable.
func ResolveProbability(m *RawMarket) *float64 {
	for _, f := range []*float64{m.YesBid, m.LastPrice, m.Midpoint} {
		if !validCents(f) {
			continue
		}
		v := *f / 100
		return &v
	}
	return nil
}

// ResolveVolume picks the first present, valid volume-like field in the
// fixed fallback order volume, volume_24h, liquidity. Returns nil when no
// field is usable.
func ResolveVolume(m *RawMarket) *float64 {
	for _, f := range []*float64{m.Volume, m.Volume24h, m.Liquidity} {
		if !validAmount(f) {
			continue
		}
		v := *f
		return &v
	}
	return nil
}

func validCents(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0) && *f >= 0 && *f <= 100
}

func validAmount(f *float64) bool {
	return f != nil && !math.IsNaN(*f) && !math.IsInf(*f, 0) && *f >= 0
}
