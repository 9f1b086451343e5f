package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
)

var zeroAddress = events.HexID(common.Address{})

func newFee(id string) model.Fee {
	return model.Fee{
		ID:              id,
		MintFee:         big.NewInt(0),
		RandomRedeemFee: big.NewInt(0),
		TargetRedeemFee: big.NewInt(0),
		SwapFee:         big.NewInt(0),
		RandomSwapFee:   big.NewInt(0),
		TargetSwapFee:   big.NewInt(0),
	}
}

func applyFeeSchedule(fee *model.Fee, s events.FeeSchedule) {
	fee.MintFee = orZero(s.MintFee)
	fee.RandomRedeemFee = orZero(s.RandomRedeemFee)
	fee.TargetRedeemFee = orZero(s.TargetRedeemFee)
	fee.RandomSwapFee = orZero(s.RandomSwapFee)
	fee.TargetSwapFee = orZero(s.TargetSwapFee)
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(v)
}

// loadGlobal returns the per-network singleton, persisting the global fee
// schedule the first time. The Global itself is left for the caller to save.
func (h *Handlers) loadGlobal(ctx context.Context) (*model.Global, error) {
	global, created, err := h.globals.GetOrCreate(ctx, h.network.Name, func() model.Global {
		return model.Global{
			ID:                    h.network.Name,
			TotalHoldings:         big.NewInt(0),
			VaultFactory:          zeroAddress,
			FeeDistributorAddress: zeroAddress,
			Fees:                  FeeID,
		}
	})
	if err != nil || !created {
		return global, err
	}
	fee, _, err := h.fees.GetOrCreate(ctx, FeeID, func() model.Fee { return newFee(FeeID) })
	if err != nil {
		return nil, err
	}
	if err := h.fees.Save(ctx, fee); err != nil {
		return nil, err
	}
	return global, nil
}

// loadVault returns the vault, building it from contract reads on first
// sight. Child entities are saved; the vault is left for the caller to save.
func (h *Handlers) loadVault(ctx context.Context, address common.Address) (*model.Vault, error) {
	id := events.HexID(address)
	vault, err := h.vaults.Load(ctx, id)
	if err != nil || vault != nil {
		return vault, err
	}

	asset, err := h.reader.VaultAssetAddress(ctx, address)
	if err != nil {
		h.readFailed("assetAddress", id, err)
		asset = common.Address{}
	}
	manager, err := h.reader.VaultManager(ctx, address)
	if err != nil {
		h.readFailed("manager", id, err)
		manager = common.Address{}
	}
	is1155, err := h.reader.VaultIs1155(ctx, address)
	if err != nil {
		h.readFailed("is1155", id, err)
		is1155 = false
	}
	allowAll, err := h.reader.VaultAllowAllItems(ctx, address)
	if err != nil {
		h.readFailed("allowAllItems", id, err)
		allowAll = false
	}

	vault = &model.Vault{
		ID:              id,
		VaultID:         big.NewInt(0),
		Is1155:          is1155,
		AllowAllItems:   allowAll,
		TotalFees:       big.NewInt(0),
		AllocTotal:      big.NewInt(0),
		TotalHoldings:   big.NewInt(0),
		UsesFactoryFees: true,
	}
	if vault.Token, err = h.saveToken(ctx, address); err != nil {
		return nil, err
	}
	if vault.Asset, err = h.saveAsset(ctx, asset); err != nil {
		return nil, err
	}
	if err := h.updateManager(ctx, vault, manager); err != nil {
		return nil, err
	}
	fee, _, err := h.fees.GetOrCreate(ctx, id, func() model.Fee { return newFee(id) })
	if err != nil {
		return nil, err
	}
	if err := h.fees.Save(ctx, fee); err != nil {
		return nil, err
	}
	vault.Fees = fee.ID
	feature, _, err := h.features.GetOrCreate(ctx, id, func() model.Feature { return model.Feature{ID: id} })
	if err != nil {
		return nil, err
	}
	if err := h.features.Save(ctx, feature); err != nil {
		return nil, err
	}
	vault.Features = feature.ID
	return vault, nil
}

// saveToken records the vault's own ERC20 metadata.
func (h *Handlers) saveToken(ctx context.Context, address common.Address) (string, error) {
	id := events.HexID(address)
	token := &model.Token{ID: id, TotalSupply: big.NewInt(0)}
	if symbol, err := h.reader.TokenSymbol(ctx, address); err == nil {
		token.Symbol = symbol
	}
	if name, err := h.reader.TokenName(ctx, address); err == nil {
		token.Name = name
	}
	if supply, err := h.reader.TotalSupply(ctx, address); err == nil && supply != nil {
		token.TotalSupply = supply
	}
	return id, h.tokens.Save(ctx, token)
}

// saveAsset records the NFT collection once; its metadata is never refreshed.
func (h *Handlers) saveAsset(ctx context.Context, address common.Address) (string, error) {
	id := events.HexID(address)
	asset, created, err := h.assets.GetOrCreate(ctx, id, func() model.Asset { return model.Asset{ID: id} })
	if err != nil {
		return "", err
	}
	if !created {
		return id, nil
	}
	if symbol, err := h.reader.TokenSymbol(ctx, address); err == nil {
		asset.Symbol = symbol
	}
	if name, err := h.reader.TokenName(ctx, address); err == nil {
		asset.Name = name
	}
	return id, h.assets.Save(ctx, asset)
}

// updateManager points the vault at a manager; a zero manager finalizes it.
func (h *Handlers) updateManager(ctx context.Context, vault *model.Vault, manager common.Address) error {
	id := events.HexID(manager)
	if err := h.managers.Save(ctx, &model.Manager{ID: id}); err != nil {
		return err
	}
	vault.Manager = id
	vault.IsFinalized = id == zeroAddress
	return nil
}

func (h *Handlers) saveUser(ctx context.Context, address common.Address) (string, error) {
	id := events.HexID(address)
	return id, h.users.Save(ctx, &model.NftUser{ID: id})
}

func (h *Handlers) readFailed(call, vault string, err error) {
	h.logger.Debug("vault read reverted", zap.String("call", call), zap.String("vault", vault), zap.Error(err))
}
