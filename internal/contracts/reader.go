package contracts

import (
	"bytes"
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/model"
)

// DefaultDecimals is assumed when a token does not answer decimals().
const DefaultDecimals = 18

// Caller executes read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// FlatFees is the legacy factory-wide fee schedule.
type FlatFees struct {
	MintFee         *big.Int
	RandomRedeemFee *big.Int
	TargetRedeemFee *big.Int
	RandomSwapFee   *big.Int
	TargetSwapFee   *big.Int
}

// Reader performs the view calls handlers need. Every method returns an
// error when the call reverts so callers can pick their own fallback.
type Reader struct {
	caller Caller
	tokens *TokenMetaCache
	logger *zap.Logger
}

func NewReader(caller Caller, logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{caller: caller, tokens: NewTokenMetaCache(), logger: logger}
}

func (r *Reader) call(ctx context.Context, to common.Address, lazy *lazyABI, method string, args ...interface{}) ([]interface{}, error) {
	if r.caller == nil {
		return nil, fmt.Errorf("chain caller is nil")
	}
	parsed, err := lazy.get()
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	data, err := parsed.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}
	msg := ethereum.CallMsg{To: &to, Data: data}
	resp, err := r.caller.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	values, err := unpack(parsed, method, resp)
	if err != nil {
		return nil, err
	}
	return values, nil
}

func unpack(parsed abi.ABI, method string, resp []byte) ([]interface{}, error) {
	values, err := parsed.Unpack(method, resp)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("unpack %s: empty result", method)
	}
	return values, nil
}

// TokenMeta loads ERC20 metadata. Symbol and name fall back to the bytes32
// variant and then to empty; decimals fall back to DefaultDecimals. Results
// are cached for the life of the reader.
func (r *Reader) TokenMeta(ctx context.Context, token common.Address) model.TokenMeta {
	if meta, ok := r.tokens.Get(token); ok {
		return meta
	}
	meta := model.TokenMeta{Address: token.Hex(), Decimals: DefaultDecimals}

	if values, err := r.call(ctx, token, erc20StringABI, "decimals"); err == nil {
		if decimals, err := asUint8(values[0]); err == nil {
			meta.Decimals = decimals
		}
	} else {
		r.logger.Debug("decimals call failed", zap.String("token", token.Hex()), zap.Error(err))
	}

	if symbol, err := r.TokenSymbol(ctx, token); err == nil {
		meta.Symbol = symbol
	}
	if name, err := r.TokenName(ctx, token); err == nil {
		meta.Name = name
	}
	r.tokens.Set(token, meta)
	return meta
}

// TokenSymbol reads symbol() as a string, retrying as bytes32.
func (r *Reader) TokenSymbol(ctx context.Context, token common.Address) (string, error) {
	return r.stringOrBytes32(ctx, token, "symbol")
}

// TokenName reads name() as a string, retrying as bytes32.
func (r *Reader) TokenName(ctx context.Context, token common.Address) (string, error) {
	return r.stringOrBytes32(ctx, token, "name")
}

func (r *Reader) stringOrBytes32(ctx context.Context, token common.Address, method string) (string, error) {
	values, err := r.call(ctx, token, erc20StringABI, method)
	if err == nil {
		if s, ok := values[0].(string); ok {
			return s, nil
		}
	}
	values, err2 := r.call(ctx, token, erc20Bytes32ABI, method)
	if err2 != nil {
		r.logger.Debug(method+" call failed", zap.String("token", token.Hex()), zap.Error(err2))
		if err == nil {
			err = err2
		}
		return "", err
	}
	s, ok := bytes32ToString(values[0])
	if !ok {
		return "", fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return s, nil
}

// TotalSupply reads totalSupply().
func (r *Reader) TotalSupply(ctx context.Context, token common.Address) (*big.Int, error) {
	values, err := r.call(ctx, token, erc20StringABI, "totalSupply")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// PoolBalance reads the pool's recorded balance of token.
func (r *Reader) PoolBalance(ctx context.Context, pool, token common.Address) (*big.Int, error) {
	values, err := r.call(ctx, pool, bPoolABI, "getBalance", token)
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

// IsCrp asks the smart-pool factory whether addr is one of its pools.
func (r *Reader) IsCrp(ctx context.Context, factory, addr common.Address) (bool, error) {
	values, err := r.call(ctx, factory, crpFactoryABI, "isCrp", addr)
	if err != nil {
		return false, err
	}
	isCrp, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("isCrp: unexpected type %T", values[0])
	}
	return isCrp, nil
}

// CrpPool returns the underlying pool wrapped by a smart pool.
func (r *Reader) CrpPool(ctx context.Context, crp common.Address) (common.Address, error) {
	return r.address(ctx, crp, crpABI, "bPool")
}

// CrpController returns the smart pool's controller.
func (r *Reader) CrpController(ctx context.Context, crp common.Address) (common.Address, error) {
	return r.address(ctx, crp, crpABI, "getController")
}

// CrpSymbol returns the smart pool token's symbol.
func (r *Reader) CrpSymbol(ctx context.Context, crp common.Address) (string, error) {
	return r.str(ctx, crp, crpABI, "symbol")
}

// CrpName returns the smart pool token's name.
func (r *Reader) CrpName(ctx context.Context, crp common.Address) (string, error) {
	return r.str(ctx, crp, crpABI, "name")
}

// CrpCap returns the smart pool's supply cap.
func (r *Reader) CrpCap(ctx context.Context, crp common.Address) (*big.Int, error) {
	values, err := r.call(ctx, crp, crpABI, "bspCap")
	if err != nil {
		return nil, err
	}
	return asBigInt(values[0])
}

var rightNames = []string{
	"canPauseSwapping",
	"canChangeSwapFee",
	"canChangeWeights",
	"canAddRemoveTokens",
	"canWhitelistLPs",
	"canChangeCap",
}

// CrpRights returns the names of the rights enabled on a smart pool.
func (r *Reader) CrpRights(ctx context.Context, crp common.Address) ([]string, error) {
	values, err := r.call(ctx, crp, crpABI, "rights")
	if err != nil {
		return nil, err
	}
	rights := make([]string, 0, len(rightNames))
	for i, name := range rightNames {
		if i >= len(values) {
			break
		}
		if enabled, ok := values[i].(bool); ok && enabled {
			rights = append(rights, name)
		}
	}
	return rights, nil
}

// FeeDistributor returns the vault factory's fee distributor.
func (r *Reader) FeeDistributor(ctx context.Context, factory common.Address) (common.Address, error) {
	return r.address(ctx, factory, vaultFactoryABI, "feeDistributor")
}

// FactoryVault resolves a vault id to its address.
func (r *Reader) FactoryVault(ctx context.Context, factory common.Address, vaultID *big.Int) (common.Address, error) {
	return r.address(ctx, factory, vaultFactoryABI, "vault", vaultID)
}

// FactoryFees reads the legacy flat fee getters. It fails on factories that
// do not expose factoryMintFee.
func (r *Reader) FactoryFees(ctx context.Context, factory common.Address) (FlatFees, error) {
	read := func(method string) (*big.Int, error) {
		values, err := r.call(ctx, factory, vaultFactoryABI, method)
		if err != nil {
			return nil, err
		}
		return asBigInt(values[0])
	}

	var fees FlatFees
	var err error
	if fees.MintFee, err = read("factoryMintFee"); err != nil {
		return FlatFees{}, err
	}
	if fees.RandomRedeemFee, err = read("factoryRandomRedeemFee"); err != nil {
		return FlatFees{}, err
	}
	if fees.TargetRedeemFee, err = read("factoryTargetRedeemFee"); err != nil {
		return FlatFees{}, err
	}
	if fees.RandomSwapFee, err = read("factoryRandomSwapFee"); err != nil {
		return FlatFees{}, err
	}
	if fees.TargetSwapFee, err = read("factoryTargetSwapFee"); err != nil {
		return FlatFees{}, err
	}
	return fees, nil
}

// VaultAssetAddress returns the NFT collection a vault accepts.
func (r *Reader) VaultAssetAddress(ctx context.Context, vault common.Address) (common.Address, error) {
	return r.address(ctx, vault, vaultABI, "assetAddress")
}

// VaultManager returns the vault manager.
func (r *Reader) VaultManager(ctx context.Context, vault common.Address) (common.Address, error) {
	return r.address(ctx, vault, vaultABI, "manager")
}

// VaultIs1155 reports whether the vault holds semi-fungible assets.
func (r *Reader) VaultIs1155(ctx context.Context, vault common.Address) (bool, error) {
	return r.boolean(ctx, vault, vaultABI, "is1155")
}

// VaultAllowAllItems reports whether the vault accepts any id of its collection.
func (r *Reader) VaultAllowAllItems(ctx context.Context, vault common.Address) (bool, error) {
	return r.boolean(ctx, vault, vaultABI, "allowAllItems")
}

func (r *Reader) address(ctx context.Context, to common.Address, lazy *lazyABI, method string, args ...interface{}) (common.Address, error) {
	values, err := r.call(ctx, to, lazy, method, args...)
	if err != nil {
		return common.Address{}, err
	}
	return asAddress(values[0])
}

func (r *Reader) str(ctx context.Context, to common.Address, lazy *lazyABI, method string) (string, error) {
	values, err := r.call(ctx, to, lazy, method)
	if err != nil {
		return "", err
	}
	s, ok := values[0].(string)
	if !ok {
		return "", fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return s, nil
}

func (r *Reader) boolean(ctx context.Context, to common.Address, lazy *lazyABI, method string) (bool, error) {
	values, err := r.call(ctx, to, lazy, method)
	if err != nil {
		return false, err
	}
	b, ok := values[0].(bool)
	if !ok {
		return false, fmt.Errorf("%s: unexpected type %T", method, values[0])
	}
	return b, nil
}

func bytes32ToString(value interface{}) (string, bool) {
	switch v := value.(type) {
	case [32]byte:
		return string(bytes.TrimRight(v[:], "\x00")), true
	case []byte:
		return string(bytes.TrimRight(v, "\x00")), true
	default:
		return "", false
	}
}

func asAddress(value interface{}) (common.Address, error) {
	switch v := value.(type) {
	case common.Address:
		return v, nil
	case *common.Address:
		return *v, nil
	default:
		return common.Address{}, fmt.Errorf("unsupported address type %T", value)
	}
}

func asBigInt(value interface{}) (*big.Int, error) {
	switch v := value.(type) {
	case *big.Int:
		return new(big.Int).Set(v), nil
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), nil
	case uint64:
		return new(big.Int).SetUint64(v), nil
	default:
		return nil, fmt.Errorf("unsupported int type %T", value)
	}
}

func asUint8(value interface{}) (uint8, error) {
	switch v := value.(type) {
	case uint8:
		return v, nil
	case *big.Int:
		return uint8(v.Uint64()), nil
	default:
		return 0, fmt.Errorf("unsupported uint8 type %T", value)
	}
}
