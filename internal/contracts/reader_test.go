package contracts

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errReverted = errors.New("execution reverted")

type fakeCaller struct {
	responses map[string][]byte
}

func selector(signature string) string {
	return common.Bytes2Hex(crypto.Keccak256([]byte(signature))[:4])
}

func (f *fakeCaller) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	resp, ok := f.responses[msg.To.Hex()+":"+common.Bytes2Hex(msg.Data[:4])]
	if !ok {
		return nil, errReverted
	}
	return resp, nil
}

func (f *fakeCaller) set(t *testing.T, to common.Address, signature string, typ string, value interface{}) {
	t.Helper()
	argType, err := abi.NewType(typ, "", nil)
	require.NoError(t, err)
	out, err := abi.Arguments{{Type: argType}}.Pack(value)
	require.NoError(t, err)
	if f.responses == nil {
		f.responses = make(map[string][]byte)
	}
	f.responses[to.Hex()+":"+selector(signature)] = out
}

func TestTokenMetaFallbacks(t *testing.T) {
	token := common.HexToAddress("0x9f8f72aa9304c8b593d555f12ef6589cc3a579a2")
	caller := &fakeCaller{}
	var symbol [32]byte
	copy(symbol[:], "MKR")
	caller.set(t, token, "symbol()", "bytes32", symbol)
	caller.set(t, token, "name()", "string", "Maker")

	meta := NewReader(caller, nil).TokenMeta(context.Background(), token)
	assert.Equal(t, "MKR", meta.Symbol)
	assert.Equal(t, "Maker", meta.Name)
	assert.Equal(t, uint8(DefaultDecimals), meta.Decimals)
}

func TestTokenMetaDecimals(t *testing.T) {
	token := common.HexToAddress("0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48")
	caller := &fakeCaller{}
	caller.set(t, token, "decimals()", "uint8", uint8(6))
	caller.set(t, token, "symbol()", "string", "USDC")

	meta := NewReader(caller, nil).TokenMeta(context.Background(), token)
	assert.Equal(t, uint8(6), meta.Decimals)
	assert.Equal(t, "USDC", meta.Symbol)
	assert.Equal(t, "", meta.Name)
}

func TestCrpReads(t *testing.T) {
	crp := common.HexToAddress("0x1111111111111111111111111111111111111111")
	pool := common.HexToAddress("0x2222222222222222222222222222222222222222")
	caller := &fakeCaller{}
	caller.set(t, crp, "bPool()", "address", pool)
	caller.set(t, crp, "bspCap()", "uint256", big.NewInt(1000))

	boolType, err := abi.NewType("bool", "", nil)
	require.NoError(t, err)
	args := abi.Arguments{}
	for range rightNames {
		args = append(args, abi.Argument{Type: boolType})
	}
	packed, err := args.Pack(true, false, true, false, false, true)
	require.NoError(t, err)
	caller.responses[crp.Hex()+":"+selector("rights()")] = packed

	reader := NewReader(caller, nil)
	got, err := reader.CrpPool(context.Background(), crp)
	require.NoError(t, err)
	assert.Equal(t, pool, got)

	capValue, err := reader.CrpCap(context.Background(), crp)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), capValue.Int64())

	rights, err := reader.CrpRights(context.Background(), crp)
	require.NoError(t, err)
	assert.Equal(t, []string{"canPauseSwapping", "canChangeWeights", "canChangeCap"}, rights)

	_, err = reader.CrpController(context.Background(), crp)
	require.ErrorIs(t, err, errReverted)
}

func TestFactoryFeesRequiresLegacyGetter(t *testing.T) {
	factory := common.HexToAddress("0x3333333333333333333333333333333333333333")
	caller := &fakeCaller{}
	reader := NewReader(caller, nil)

	_, err := reader.FactoryFees(context.Background(), factory)
	require.Error(t, err)

	caller.set(t, factory, "factoryMintFee()", "uint256", big.NewInt(5))
	caller.set(t, factory, "factoryRandomRedeemFee()", "uint256", big.NewInt(6))
	caller.set(t, factory, "factoryTargetRedeemFee()", "uint256", big.NewInt(7))
	caller.set(t, factory, "factoryRandomSwapFee()", "uint256", big.NewInt(8))
	caller.set(t, factory, "factoryTargetSwapFee()", "uint256", big.NewInt(9))

	fees, err := reader.FactoryFees(context.Background(), factory)
	require.NoError(t, err)
	assert.Equal(t, int64(5), fees.MintFee.Int64())
	assert.Equal(t, int64(8), fees.RandomSwapFee.Int64())
	assert.Equal(t, int64(9), fees.TargetSwapFee.Int64())
}

func TestVaultReads(t *testing.T) {
	vault := common.HexToAddress("0x4444444444444444444444444444444444444444")
	caller := &fakeCaller{}
	caller.set(t, vault, "is1155()", "bool", true)

	reader := NewReader(caller, nil)
	is1155, err := reader.VaultIs1155(context.Background(), vault)
	require.NoError(t, err)
	assert.True(t, is1155)

	_, err = reader.VaultAllowAllItems(context.Background(), vault)
	require.Error(t, err)
}

func TestTokenMetaIsCached(t *testing.T) {
	token := common.HexToAddress("0x6b175474e89094c44da98b954eedeac495271d0f")
	caller := &fakeCaller{}
	caller.set(t, token, "symbol()", "string", "DAI")
	reader := NewReader(caller, nil)

	first := reader.TokenMeta(context.Background(), token)
	caller.set(t, token, "symbol()", "string", "XDAI")
	second := reader.TokenMeta(context.Background(), token)
	assert.Equal(t, "DAI", first.Symbol)
	assert.Equal(t, first, second)
}
