package units

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
)

func TestScaleDown(t *testing.T) {
	tests := []struct {
		name     string
		raw      *big.Int
		decimals int32
		want     string
	}{
		{name: "one whole unit", raw: big.NewInt(1000000), decimals: 6, want: "1"},
		{name: "smallest unit", raw: big.NewInt(1), decimals: 6, want: "0.000001"},
		{name: "zero", raw: big.NewInt(0), decimals: 6, want: "0"},
		{name: "nil treated as zero", raw: nil, decimals: 6, want: "0"},
		{name: "fractional", raw: big.NewInt(1500000), decimals: 6, want: "1.5"},
		{name: "18 decimals", raw: big.NewInt(1), decimals: 18, want: "0.000000000000000001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScaleDown(tt.raw, tt.decimals)
			want, err := decimal.NewFromString(tt.want)
			if err != nil {
				t.Fatalf("bad expectation %q: %v", tt.want, err)
			}
			if !got.Equal(want) {
				t.Errorf("ScaleDown(%v, %d) = %s, want %s", tt.raw, tt.decimals, got, want)
			}
		})
	}
}

func TestScaleDownLargeMagnitude(t *testing.T) {
	// 2^200 must survive without floating point loss
	raw := new(big.Int).Lsh(big.NewInt(1), 200)
	got := ScaleDown(raw, 6)
	back := got.Mul(decimal.New(1, 6))
	if back.BigInt().Cmp(raw) != 0 {
		t.Errorf("round trip lost precision: got %s", back)
	}
}

func TestSharesToValue(t *testing.T) {
	tests := []struct {
		name          string
		shares        *big.Int
		pricePerShare *big.Int
		decimals      int32
		want          *big.Int
	}{
		{
			name:          "whole shares",
			shares:        big.NewInt(2000000),
			pricePerShare: big.NewInt(1500000),
			decimals:      6,
			want:          big.NewInt(3000000),
		},
		{
			name:          "floor division before scaling",
			shares:        big.NewInt(3),
			pricePerShare: big.NewInt(1),
			decimals:      6,
			// 3*1/1e6 floors to zero in integer space
			want: big.NewInt(0),
		},
		{
			name:          "nil shares",
			shares:        nil,
			pricePerShare: big.NewInt(1000000),
			decimals:      6,
			want:          big.NewInt(0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SharesToValue(tt.shares, tt.pricePerShare, tt.decimals)
			if got.Cmp(tt.want) != 0 {
				t.Errorf("SharesToValue = %s, want %s", got, tt.want)
			}
		})
	}
}
