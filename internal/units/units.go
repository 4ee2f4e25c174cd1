// Package units converts raw fixed-point on-chain integer amounts into
// decimal values. All math is arbitrary precision; float64 would drift at
// 256-bit magnitudes.
package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// VaultDecimals is the fixed decimal precision of the Cask vault base asset.
const VaultDecimals = 6

// ScaleDown converts a raw integer amount to a decimal value given the
// token's decimal precision: raw / 10^decimals.
func ScaleDown(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}

// SharesToValue converts vault shares to a raw base-asset value:
// shares * pricePerShare / 10^decimals. The division happens in integer
// space before any decimal scaling, matching the contract's fixed-point
// math exactly; dividing in decimal space would change rounding.
func SharesToValue(shares, pricePerShare *big.Int, decimals int32) *big.Int {
	if shares == nil || pricePerShare == nil {
		return new(big.Int)
	}
	value := new(big.Int).Mul(shares, pricePerShare)
	divisor := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	return value.Quo(value, divisor)
}
