package events

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shopspring/decimal"

	"poolScope/internal/fixedpoint"
)

// Selector is a 4-byte function selector.
type Selector [4]byte

func (s Selector) Hex() string { return hexutil.Encode(s[:]) }

func selectorOf(signature string) Selector {
	var s Selector
	copy(s[:], crypto.Keccak256([]byte(signature)))
	return s
}

// Administrative pool calls announced through LOG_CALL.
var (
	SelectorSetSwapFee    = selectorOf("setSwapFee(uint256)")
	SelectorSetController = selectorOf("setController(address)")
	SelectorSetPublicSwap = selectorOf("setPublicSwap(bool)")
	SelectorFinalize      = selectorOf("finalize()")
	SelectorRebind        = selectorOf("rebind(address,uint256,uint256)")
	SelectorBind          = selectorOf("bind(address,uint256,uint256)")
	SelectorUnbind        = selectorOf("unbind(address)")
	SelectorGulp          = selectorOf("gulp(address)")
)

var knownSelectors = map[Selector]string{
	SelectorSetSwapFee:    "setSwapFee",
	SelectorSetController: "setController",
	SelectorSetPublicSwap: "setPublicSwap",
	SelectorFinalize:      "finalize",
	SelectorRebind:        "rebind",
	SelectorBind:          "bind",
	SelectorUnbind:        "unbind",
	SelectorGulp:          "gulp",
}

// CallName returns the function name for a known selector.
func CallName(sig [4]byte) (string, bool) {
	name, ok := knownSelectors[Selector(sig)]
	return name, ok
}

// Calldata is hex-sliced at fixed character offsets of the 0x-prefixed
// encoding: the selector spans [2,10), the first word [10,74), and so on.
// Rebind and bind place the token address at [34,74), the balance word at
// [74,138) and the weight word from 138 to the end.
const (
	rebindTokenStart   = 34
	rebindBalanceStart = 74
	rebindWeightStart  = 138
	addressHexLen      = 40
	weightDecimals     = 18
)

// RebindArgs are the arguments of rebind/bind. The balance is kept as hex
// because its scale depends on the token's decimals.
type RebindArgs struct {
	Token        common.Address
	BalanceHex   string
	DenormWeight decimal.Decimal
}

// DecodeRebind reads token, balance, and denormalized weight.
func DecodeRebind(data []byte) (RebindArgs, error) {
	h := hexutil.Encode(data)
	if len(h) < rebindWeightStart+2 {
		return RebindArgs{}, fmt.Errorf("rebind calldata too short: %d hex chars", len(h))
	}
	weight, err := fixedpoint.HexToDecimal(h[rebindWeightStart:], weightDecimals)
	if err != nil {
		return RebindArgs{}, fmt.Errorf("rebind weight: %w", err)
	}
	return RebindArgs{
		Token:        common.HexToAddress(h[rebindTokenStart:rebindBalanceStart]),
		BalanceHex:   h[rebindBalanceStart:rebindWeightStart],
		DenormWeight: weight,
	}, nil
}

// DecodeSwapFee reads the fee from the last 20 bytes, scaled by 10^18.
func DecodeSwapFee(data []byte) (decimal.Decimal, error) {
	tail, err := lastAddressHex(data)
	if err != nil {
		return decimal.Zero, err
	}
	return fixedpoint.HexToDecimal(tail, weightDecimals)
}

// DecodeAddressArg reads the trailing address argument of setController, unbind, and gulp.
func DecodeAddressArg(data []byte) (common.Address, error) {
	tail, err := lastAddressHex(data)
	if err != nil {
		return common.Address{}, err
	}
	return common.HexToAddress(tail), nil
}

// DecodePublicSwap is true when the last hex digit of the calldata is 1.
func DecodePublicSwap(data []byte) (bool, error) {
	h := hexutil.Encode(data)
	if len(h) <= 10 {
		return false, fmt.Errorf("setPublicSwap calldata has no argument")
	}
	return h[len(h)-1] == '1', nil
}

func lastAddressHex(data []byte) (string, error) {
	h := hexutil.Encode(data)
	if len(h) < 10+addressHexLen {
		return "", fmt.Errorf("calldata too short: %d hex chars", len(h))
	}
	return h[len(h)-addressHexLen:], nil
}
