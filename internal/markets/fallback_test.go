package markets_test

import (
	"math"
	"testing"

	"github.com/calebrosario/pregame/internal/markets"
)

func fp(v float64) *float64 { return &v }

func TestResolveProbability(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name string
		raw  markets.RawMarket
		want *float64
	}{
		{
			name: "primary bid wins",
			raw:  markets.RawMarket{YesBid: fp(45), LastPrice: fp(62)},
			want: fp(0.45),
		},
		{
			name: "absent primary falls back to last price",
			raw:  markets.RawMarket{LastPrice: fp(62)},
			want: fp(0.62),
		},
		{
			name: "out of range primary is skipped not coerced",
			raw:  markets.RawMarket{YesBid: fp(150), LastPrice: fp(62)},
			want: fp(0.62),
		},
		{
			name: "nan primary is skipped",
			raw:  markets.RawMarket{YesBid: &nan, LastPrice: fp(62)},
			want: fp(0.62),
		},
		{
			name: "midpoint is the final fallback",
			raw:  markets.RawMarket{Midpoint: fp(51)},
			want: fp(0.51),
		},
		{
			name: "zero cents is a valid price",
			raw:  markets.RawMarket{YesBid: fp(0), LastPrice: fp(62)},
			want: fp(0),
		},
		{
			name: "negative price is invalid",
			raw:  markets.RawMarket{YesBid: fp(-5), Midpoint: fp(40)},
			want: fp(0.40),
		},
		{
			name: "infinite value is invalid",
			raw:  markets.RawMarket{LastPrice: &inf},
			want: nil,
		},
		{name: "nothing usable", raw: markets.RawMarket{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markets.ResolveProbability(&tt.raw)
			checkFloatPtr(t, got, tt.want)
		})
	}
}

func TestResolveVolume(t *testing.T) {
	tests := []struct {
		name string
		raw  markets.RawMarket
		want *float64
	}{
		{
			name: "volume wins",
			raw:  markets.RawMarket{Volume: fp(1500), Volume24h: fp(300)},
			want: fp(1500),
		},
		{
			name: "falls back to 24h window",
			raw:  markets.RawMarket{Volume24h: fp(300), Liquidity: fp(90)},
			want: fp(300),
		},
		{
			name: "liquidity is the final fallback",
			raw:  markets.RawMarket{Liquidity: fp(90)},
			want: fp(90),
		},
		{
			name: "negative volume is skipped",
			raw:  markets.RawMarket{Volume: fp(-1), Volume24h: fp(300)},
			want: fp(300),
		},
		{name: "nothing usable", raw: markets.RawMarket{}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := markets.ResolveVolume(&tt.raw)
			checkFloatPtr(t, got, tt.want)
		})
	}
}

func checkFloatPtr(t *testing.T, got, want *float64) {
	t.Helper()
	if want == nil {
		if got != nil {
			t.Fatalf("got %v, want nil", *got)
		}
		return
	}
	if got == nil {
		t.Fatalf("got nil, want %v", *want)
	}
	if math.Abs(*got-*want) > 1e-9 {
		t.Fatalf("got %v, want %v", *got, *want)
	}
}
