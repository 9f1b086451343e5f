package vault

import (
	"context"
	"math/big"
	"strconv"

	"poolScope/internal/model"
)

const (
	daySeconds  = 86400
	hourSeconds = 3600
)

type activity int

const (
	activityMint activity = iota
	activityRedeem
	activitySwap
)

// bucketStart floors a timestamp to the start of its window.
func bucketStart(ts, width uint64) uint64 {
	return ts - ts%width
}

func windowID(start uint64, vault string) string {
	return model.JoinID(strconv.FormatUint(start, 10), vault)
}

func newWindow(start uint64, vault string) model.VaultWindowData {
	return model.VaultWindowData{
		ID:            windowID(start, vault),
		Vault:         vault,
		Date:          start,
		HoldingsCount: big.NewInt(0),
		TotalHoldings: big.NewInt(0),
	}
}

// applyWindow counts one activity and the holdings it moved, then snapshots
// the vault's running totals.
func applyWindow(w *model.VaultWindowData, kind activity, delta *big.Int, vault *model.Vault) {
	switch kind {
	case activityMint:
		w.MintsCount++
	case activityRedeem:
		w.RedeemsCount++
	case activitySwap:
		w.SwapsCount++
	}
	if w.HoldingsCount == nil {
		w.HoldingsCount = big.NewInt(0)
	}
	w.HoldingsCount = new(big.Int).Add(w.HoldingsCount, delta)
	w.TotalMints = vault.TotalMints
	w.TotalRedeems = vault.TotalRedeems
	w.TotalSwaps = vault.TotalSwaps
	w.TotalHoldings = new(big.Int).Set(vault.TotalHoldings)
}

// recordActivity updates the day and hour rollups covering ts.
func (h *Handlers) recordActivity(ctx context.Context, vault *model.Vault, ts uint64, kind activity, delta *big.Int) error {
	dayStart := bucketStart(ts, daySeconds)
	day, _, err := h.days.GetOrCreate(ctx, windowID(dayStart, vault.ID), func() model.VaultDayData {
		return model.VaultDayData{VaultWindowData: newWindow(dayStart, vault.ID)}
	})
	if err != nil {
		return err
	}
	applyWindow(&day.VaultWindowData, kind, delta, vault)
	if err := h.days.Save(ctx, day); err != nil {
		return err
	}

	hourStart := bucketStart(ts, hourSeconds)
	hour, _, err := h.hours.GetOrCreate(ctx, windowID(hourStart, vault.ID), func() model.VaultHourData {
		return model.VaultHourData{VaultWindowData: newWindow(hourStart, vault.ID)}
	})
	if err != nil {
		return err
	}
	applyWindow(&hour.VaultWindowData, kind, delta, vault)
	return h.hours.Save(ctx, hour)
}
