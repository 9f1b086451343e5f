package vault

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// HandleNewVault registers a vault deployed by the factory, snapshots the
// factory's flat fees when it exposes them, and records the fee distributor.
func (h *Handlers) HandleNewVault(ctx context.Context, ev events.NewVault) (result.Result, error) {
	creator := events.HexID(ev.From)
	if err := h.creators.Save(ctx, &model.VaultCreator{ID: creator}); err != nil {
		return result.Result{}, err
	}

	vault, err := h.loadVault(ctx, ev.Vault)
	if err != nil {
		return result.Result{}, err
	}
	vault.VaultID = orZero(ev.VaultID)
	vault.CreatedAt = ev.Timestamp
	vault.CreatedBy = creator
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	if h.watcher != nil {
		if err := h.watcher.Watch(ctx, model.RoleVault, ev.Vault, ev.BlockNumber); err != nil {
			return result.Result{}, err
		}
	}

	distributor, err := h.reader.FeeDistributor(ctx, ev.Address)
	if err != nil {
		h.logger.Debug("feeDistributor reverted", zap.String("factory", events.HexID(ev.Address)), zap.Error(err))
		distributor = common.Address{}
	}

	if flat, err := h.reader.FactoryFees(ctx, ev.Address); err == nil {
		fee, _, err := h.fees.GetOrCreate(ctx, vault.ID, func() model.Fee { return newFee(vault.ID) })
		if err != nil {
			return result.Result{}, err
		}
		applyFeeSchedule(fee, events.FeeSchedule{
			MintFee:         flat.MintFee,
			RandomRedeemFee: flat.RandomRedeemFee,
			TargetRedeemFee: flat.TargetRedeemFee,
			RandomSwapFee:   flat.RandomSwapFee,
			TargetSwapFee:   flat.TargetSwapFee,
		})
		if err := h.fees.Save(ctx, fee); err != nil {
			return result.Result{}, err
		}
	}

	if err := h.setFeeDistributor(ctx, ev.Address, distributor); err != nil {
		return result.Result{}, err
	}
	h.logger.Info("vault registered",
		zap.String("vault", vault.ID),
		zap.String("vault_id", vault.VaultID.String()),
		zap.Uint64("block", ev.BlockNumber),
	)
	return result.Applied(), nil
}

func (h *Handlers) setFeeDistributor(ctx context.Context, factory, distributor common.Address) error {
	global, err := h.loadGlobal(ctx)
	if err != nil {
		return err
	}
	if global.FeeDistributorAddress == events.HexID(distributor) && global.VaultFactory == events.HexID(factory) {
		return nil
	}
	global.VaultFactory = events.HexID(factory)
	global.FeeDistributorAddress = events.HexID(distributor)
	return h.globals.Save(ctx, global)
}

// HandleUpdateFactoryFees replaces the factory-wide fee schedule.
func (h *Handlers) HandleUpdateFactoryFees(ctx context.Context, ev events.UpdateFactoryFees) (result.Result, error) {
	global, err := h.loadGlobal(ctx)
	if err != nil {
		return result.Result{}, err
	}
	global.Fees = FeeID
	fee, _, err := h.fees.GetOrCreate(ctx, FeeID, func() model.Fee { return newFee(FeeID) })
	if err != nil {
		return result.Result{}, err
	}
	applyFeeSchedule(fee, ev.Fees)
	if err := h.fees.Save(ctx, fee); err != nil {
		return result.Result{}, err
	}
	if err := h.globals.Save(ctx, global); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleUpdateVaultFees gives a vault its own fee schedule.
func (h *Handlers) HandleUpdateVaultFees(ctx context.Context, ev events.UpdateVaultFees) (result.Result, error) {
	vault, res, err := h.factoryVault(ctx, ev.Address, ev.VaultID)
	if vault == nil {
		return res, err
	}
	vault.UsesFactoryFees = false
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	fee, _, err := h.fees.GetOrCreate(ctx, vault.ID, func() model.Fee { return newFee(vault.ID) })
	if err != nil {
		return result.Result{}, err
	}
	applyFeeSchedule(fee, ev.Fees)
	if err := h.fees.Save(ctx, fee); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleDisableVaultFees returns a vault to the factory fee schedule.
func (h *Handlers) HandleDisableVaultFees(ctx context.Context, ev events.DisableVaultFees) (result.Result, error) {
	vault, res, err := h.factoryVault(ctx, ev.Address, ev.VaultID)
	if vault == nil {
		return res, err
	}
	vault.UsesFactoryFees = true
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// factoryVault resolves a vault id through the factory. A nil vault comes
// with the result to return.
func (h *Handlers) factoryVault(ctx context.Context, factory common.Address, vaultID *big.Int) (*model.Vault, result.Result, error) {
	if vaultID == nil {
		return nil, result.Skip("missing vault id"), nil
	}
	address, err := h.reader.FactoryVault(ctx, factory, vaultID)
	if err != nil || address == (common.Address{}) {
		h.logger.Debug("vault lookup failed", zap.String("vault_id", vaultID.String()), zap.Error(err))
		return nil, result.Skip("vault id unresolved"), nil
	}
	vault, err := h.loadVault(ctx, address)
	if err != nil {
		return nil, result.Result{}, err
	}
	return vault, result.Result{}, nil
}
