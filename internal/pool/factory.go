package pool

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// HandleNewPool registers a pool created by the factory. When the caller is a
// smart pool, its controller, token metadata, cap and rights are read too.
func (h *Handlers) HandleNewPool(ctx context.Context, ev events.NewPool) (result.Result, error) {
	factory, _, err := h.factories.GetOrCreate(ctx, model.FactoryID, newFactory)
	if err != nil {
		return result.Result{}, err
	}

	poolID := events.HexID(ev.Pool)
	existing, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if existing != nil {
		return result.Skip("pool already registered"), nil
	}

	pool := &model.Pool{
		ID:              poolID,
		Controller:      events.HexID(ev.Caller),
		Rights:          []string{},
		Active:          true,
		SwapFee:         DefaultSwapFee,
		TotalWeight:     decimal.Zero,
		TotalShares:     decimal.Zero,
		TotalSwapVolume: decimal.Zero,
		TotalSwapFee:    decimal.Zero,
		Liquidity:       decimal.Zero,
		TokensList:      []string{},
		CreatedAt:       ev.Timestamp,
		CreatedAtBlock:  ev.BlockNumber,
		Tx:              ev.TxHash.Hex(),
	}

	crp := false
	if h.network.CrpFactory != "" {
		crp, err = h.reader.IsCrp(ctx, common.HexToAddress(h.network.CrpFactory), ev.Caller)
		if err != nil {
			h.logger.Debug("isCrp read failed", zap.String("caller", pool.Controller), zap.Error(err))
			crp = false
		}
	}
	if crp {
		h.fillCrp(ctx, pool, ev.Caller)
		factory.CrpCount++
	}
	factory.PoolCount++

	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	if err := h.factories.Save(ctx, factory); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Pool, "newPool"); err != nil {
		return result.Result{}, err
	}

	if h.watcher != nil {
		if err := h.watcher.Watch(ctx, model.RolePool, ev.Pool, ev.BlockNumber); err != nil {
			return result.Result{}, err
		}
		if crp {
			if err := h.watcher.Watch(ctx, model.RoleCrp, ev.Caller, ev.BlockNumber); err != nil {
				return result.Result{}, err
			}
		}
	}
	h.logger.Info("pool registered",
		zap.String("pool", poolID),
		zap.Bool("crp", crp),
		zap.Uint64("block", ev.BlockNumber),
	)
	return result.Applied(), nil
}

// fillCrp copies best-effort smart pool reads onto the pool; failed reads
// leave the zero value.
func (h *Handlers) fillCrp(ctx context.Context, pool *model.Pool, crp common.Address) {
	pool.Crp = true
	if controller, err := h.reader.CrpController(ctx, crp); err == nil {
		pool.CrpController = events.HexID(controller)
	}
	if symbol, err := h.reader.CrpSymbol(ctx, crp); err == nil {
		pool.Symbol = symbol
	}
	if name, err := h.reader.CrpName(ctx, crp); err == nil {
		pool.Name = name
	}
	pool.Cap = big.NewInt(0)
	if capValue, err := h.reader.CrpCap(ctx, crp); err == nil && capValue != nil {
		pool.Cap = capValue
	}
	if rights, err := h.reader.CrpRights(ctx, crp); err == nil && rights != nil {
		pool.Rights = rights
	}
}
