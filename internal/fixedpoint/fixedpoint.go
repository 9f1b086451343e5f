package fixedpoint

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// DivisionScale is the number of fractional digits kept by Div.
const DivisionScale = 36

// Div divides a by b at DivisionScale digits. Division by zero yields zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, DivisionScale)
}

// BigIntToDecimal scales a raw on-chain integer down by 10^decimals.
func BigIntToDecimal(amount *big.Int, decimals int) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromBigInt(amount, -int32(decimals))
}

// TokenToDecimal scales an integral decimal amount down by 10^decimals.
func TokenToDecimal(amount decimal.Decimal, decimals int) decimal.Decimal {
	if decimals < 0 {
		decimals = 0
	}
	return amount.Shift(-int32(decimals))
}

// HexToDecimal reads a big-endian hex word (with or without 0x) and scales it by 10^decimals.
func HexToDecimal(hexValue string, decimals int) (decimal.Decimal, error) {
	raw := strings.TrimPrefix(strings.TrimPrefix(hexValue, "0x"), "0X")
	if raw == "" {
		return decimal.Zero, nil
	}
	if len(raw)%2 == 1 {
		raw = "0" + raw
	}
	buf, err := hex.DecodeString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("decode hex %q: %w", hexValue, err)
	}
	return BigIntToDecimal(new(big.Int).SetBytes(buf), decimals), nil
}

// ToRaw scales a decimal amount up by 10^decimals and truncates to an integer.
func ToRaw(amount decimal.Decimal, decimals int) *big.Int {
	if decimals < 0 {
		decimals = 0
	}
	return amount.Shift(int32(decimals)).BigInt()
}
