package fixedpoint

import (
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexToDecimal(t *testing.T) {
	cases := []struct {
		name     string
		hex      string
		decimals int
		want     string
	}{
		{name: "one ether word", hex: "0000000000000000000000000000000000000000000000000de0b6b3a7640000", decimals: 18, want: "1"},
		{name: "prefixed", hex: "0x0de0b6b3a7640000", decimals: 18, want: "1"},
		{name: "six decimals", hex: "0f4240", decimals: 6, want: "1"},
		{name: "odd length", hex: "f4240", decimals: 0, want: "1000000"},
		{name: "fee word", hex: "00000000000000000000000000038d7ea4c68000", decimals: 18, want: "0.001"},
		{name: "empty", hex: "", decimals: 18, want: "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := HexToDecimal(tc.hex, tc.decimals)
			require.NoError(t, err)
			assert.True(t, got.Equal(decimal.RequireFromString(tc.want)), "got %s want %s", got, tc.want)
		})
	}
}

func TestHexToDecimalRejectsGarbage(t *testing.T) {
	_, err := HexToDecimal("0xzz", 18)
	require.Error(t, err)
}

func TestBigIntToDecimalRoundTrip(t *testing.T) {
	raw, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)

	for _, decimals := range []int{0, 6, 18, 30} {
		value := BigIntToDecimal(raw, decimals)
		assert.Equal(t, raw.String(), ToRaw(value, decimals).String(), "decimals %d", decimals)
	}
	assert.True(t, BigIntToDecimal(nil, 18).IsZero())
}

func TestTokenToDecimal(t *testing.T) {
	got := TokenToDecimal(decimal.RequireFromString("2500000"), 6)
	assert.Equal(t, "2.5", got.String())
}

func TestDiv(t *testing.T) {
	assert.True(t, Div(decimal.NewFromInt(100), decimal.NewFromInt(50)).Equal(decimal.NewFromInt(2)))
	assert.True(t, Div(decimal.NewFromInt(1), decimal.Zero).IsZero())

	third := Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	assert.Equal(t, int32(-DivisionScale), third.Exponent())
}
