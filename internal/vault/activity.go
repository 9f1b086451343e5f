package vault

import (
	"context"
	"math/big"

	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// HandleMinted records NFTs deposited into a vault.
func (h *Handlers) HandleMinted(ctx context.Context, ev events.Minted) (result.Result, error) {
	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	amounts := TransformMintAmounts(vault, ev.NftIDs, ev.Amounts)
	user, err := h.saveUser(ctx, ev.To)
	if err != nil {
		return result.Result{}, err
	}

	mint := &model.Mint{
		ID:      ev.TxHash.Hex(),
		Vault:   vault.ID,
		User:    user,
		NftIDs:  ev.NftIDs,
		Amounts: amounts,
		Date:    ev.Timestamp,
	}
	if err := h.mints.Save(ctx, mint); err != nil {
		return result.Result{}, err
	}

	added, err := h.AddToHoldings(ctx, vault, ev.NftIDs, amounts, ev.Timestamp)
	if err != nil {
		return result.Result{}, err
	}
	vault.TotalMints++
	if err := h.finishActivity(ctx, vault, ev.Timestamp, activityMint, added); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleRedeemed records NFTs withdrawn from a vault.
func (h *Handlers) HandleRedeemed(ctx context.Context, ev events.Redeemed) (result.Result, error) {
	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	user, err := h.saveUser(ctx, ev.To)
	if err != nil {
		return result.Result{}, err
	}

	random := len(ev.NftIDs) - len(ev.SpecificIDs)
	if random < 0 {
		random = 0
	}
	redeem := &model.Redeem{
		ID:          ev.TxHash.Hex(),
		Vault:       vault.ID,
		User:        user,
		NftIDs:      ev.NftIDs,
		SpecificIDs: ev.SpecificIDs,
		RandomCount: int64(random),
		TargetCount: int64(len(ev.SpecificIDs)),
		Date:        ev.Timestamp,
	}
	if err := h.redeems.Save(ctx, redeem); err != nil {
		return result.Result{}, err
	}

	removed, err := h.RemoveFromHoldings(ctx, vault.ID, ev.NftIDs)
	if err != nil {
		return result.Result{}, err
	}
	vault.TotalRedeems++
	if err := h.finishActivity(ctx, vault, ev.Timestamp, activityRedeem, new(big.Int).Neg(removed)); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleSwapped records NFTs exchanged for others held by the vault.
func (h *Handlers) HandleSwapped(ctx context.Context, ev events.Swapped) (result.Result, error) {
	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	amounts := TransformMintAmounts(vault, ev.NftIDs, ev.Amounts)
	user, err := h.saveUser(ctx, ev.To)
	if err != nil {
		return result.Result{}, err
	}

	swap := &model.NftSwap{
		ID:          ev.TxHash.Hex(),
		Vault:       vault.ID,
		User:        user,
		NftIDs:      ev.NftIDs,
		Amounts:     amounts,
		SpecificIDs: ev.SpecificIDs,
		RedeemedIDs: ev.RedeemedIDs,
		Date:        ev.Timestamp,
	}
	if err := h.swaps.Save(ctx, swap); err != nil {
		return result.Result{}, err
	}

	added, err := h.AddToHoldings(ctx, vault, ev.NftIDs, amounts, ev.Timestamp)
	if err != nil {
		return result.Result{}, err
	}
	removed, err := h.RemoveFromHoldings(ctx, vault.ID, ev.RedeemedIDs)
	if err != nil {
		return result.Result{}, err
	}
	vault.TotalSwaps++
	if err := h.finishActivity(ctx, vault, ev.Timestamp, activitySwap, new(big.Int).Sub(added, removed)); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// finishActivity moves vault and global holdings by delta, saves both, and
// updates the rollups.
func (h *Handlers) finishActivity(ctx context.Context, vault *model.Vault, ts uint64, kind activity, delta *big.Int) error {
	vault.TotalHoldings = new(big.Int).Add(orZero(vault.TotalHoldings), delta)
	if err := h.vaults.Save(ctx, vault); err != nil {
		return err
	}
	global, err := h.loadGlobal(ctx)
	if err != nil {
		return err
	}
	global.TotalHoldings = new(big.Int).Add(orZero(global.TotalHoldings), delta)
	if err := h.globals.Save(ctx, global); err != nil {
		return err
	}
	return h.recordActivity(ctx, vault, ts, kind, delta)
}

// HandleManagerSet records a new vault manager.
func (h *Handlers) HandleManagerSet(ctx context.Context, ev events.ManagerSet) (result.Result, error) {
	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	if err := h.updateManager(ctx, vault, ev.Manager); err != nil {
		return result.Result{}, err
	}
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleFeatureUpdated flips one of the vault's feature toggles.
func (h *Handlers) HandleFeatureUpdated(ctx context.Context, ev events.FeatureUpdated) (result.Result, error) {
	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	feature, _, err := h.features.GetOrCreate(ctx, vault.ID, func() model.Feature { return model.Feature{ID: vault.ID} })
	if err != nil {
		return result.Result{}, err
	}
	switch ev.Feature {
	case events.FeatureMint:
		feature.EnableMint = ev.Enabled
	case events.FeatureRandomRedeem:
		feature.EnableRandomRedeem = ev.Enabled
	case events.FeatureTargetRedeem:
		feature.EnableTargetRedeem = ev.Enabled
	case events.FeatureRandomSwap:
		feature.EnableRandomSwap = ev.Enabled
	case events.FeatureTargetSwap:
		feature.EnableTargetSwap = ev.Enabled
	default:
		return result.SkipDetail("unknown feature", string(ev.Feature)), nil
	}
	if err := h.features.Save(ctx, feature); err != nil {
		return result.Result{}, err
	}
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleTransfer records vault-token fee movements through the fee
// distributor. Other transfers are skipped.
func (h *Handlers) HandleTransfer(ctx context.Context, ev events.Transfer) (result.Result, error) {
	global, err := h.loadGlobal(ctx)
	if err != nil {
		return result.Result{}, err
	}
	distributor := global.FeeDistributorAddress
	if distributor == "" || distributor == zeroAddress {
		return result.Skip("fee distributor unknown"), nil
	}
	from, to := events.HexID(ev.From), events.HexID(ev.To)
	if from != distributor && to != distributor {
		return result.Skip("not a fee transfer"), nil
	}

	vault, err := h.loadVault(ctx, ev.Address)
	if err != nil {
		return result.Result{}, err
	}
	amount := orZero(ev.Value)
	txID := ev.TxHash.Hex()

	if to == distributor {
		receipt, _, err := h.feeReceipts.GetOrCreate(ctx, txID, func() model.FeeReceipt {
			return model.FeeReceipt{ID: txID, Amount: big.NewInt(0)}
		})
		if err != nil {
			return result.Result{}, err
		}
		receipt.Vault = vault.ID
		receipt.Amount = new(big.Int).Add(orZero(receipt.Amount), amount)
		receipt.Date = ev.Timestamp
		if err := h.feeReceipts.Save(ctx, receipt); err != nil {
			return result.Result{}, err
		}
		vault.TotalFees = new(big.Int).Add(orZero(vault.TotalFees), amount)
		if err := h.vaults.Save(ctx, vault); err != nil {
			return result.Result{}, err
		}
		h.logger.Debug("fee received", zap.String("vault", vault.ID), zap.String("amount", amount.String()))
		return result.Applied(), nil
	}

	id := model.JoinID(txID, to)
	transfer, _, err := h.feeTransfers.GetOrCreate(ctx, id, func() model.FeeTransfer {
		return model.FeeTransfer{ID: id, Amount: big.NewInt(0)}
	})
	if err != nil {
		return result.Result{}, err
	}
	transfer.Vault = vault.ID
	transfer.To = to
	transfer.Amount = new(big.Int).Add(orZero(transfer.Amount), amount)
	transfer.Date = ev.Timestamp
	if err := h.feeTransfers.Save(ctx, transfer); err != nil {
		return result.Result{}, err
	}
	if err := h.vaults.Save(ctx, vault); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}
