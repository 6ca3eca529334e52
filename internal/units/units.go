// Package units converts between raw on-chain integers and token amounts.
package units

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// EtherDecimals is the precision of the native gas token.
const EtherDecimals = 18

// ToReadable converts a raw integer amount into token units.
func ToReadable(raw *big.Int, decimals uint8) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -int32(decimals))
}

// ToRaw converts token units into a raw integer, rounding half up at the
// token's precision.
func ToRaw(amount decimal.Decimal, decimals uint8) *big.Int {
	return amount.Shift(int32(decimals)).Round(0).BigInt()
}

// WeiToEther converts a wei amount into ether units.
func WeiToEther(wei *big.Int) decimal.Decimal {
	return ToReadable(wei, EtherDecimals)
}

// Float is a lossy conversion used for operator records.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// FormatAmount renders a raw amount with the full token precision.
func FormatAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	text := new(big.Rat).SetFrac(abs, denom).FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}
