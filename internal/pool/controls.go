package pool

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/fixedpoint"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// HandleCall routes an anonymous LOG_CALL record by its selector.
func (h *Handlers) HandleCall(ctx context.Context, ev events.Call) (result.Result, error) {
	switch events.Selector(ev.Sig) {
	case events.SelectorSetSwapFee:
		return h.HandleSetSwapFee(ctx, ev)
	case events.SelectorSetController:
		return h.HandleSetController(ctx, ev)
	case events.SelectorSetPublicSwap:
		return h.HandleSetPublicSwap(ctx, ev)
	case events.SelectorFinalize:
		return h.HandleFinalize(ctx, ev)
	case events.SelectorRebind, events.SelectorBind:
		return h.HandleRebind(ctx, ev)
	case events.SelectorUnbind:
		return h.HandleUnbind(ctx, ev)
	case events.SelectorGulp:
		return h.HandleGulp(ctx, ev)
	}
	return result.SkipDetail("unknown selector", events.Selector(ev.Sig).Hex()), nil
}

// HandleSetSwapFee stores the fee decoded from setSwapFee call data.
func (h *Handlers) HandleSetSwapFee(ctx context.Context, ev events.Call) (result.Result, error) {
	fee, err := events.DecodeSwapFee(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	return h.updatePool(ctx, ev, "setSwapFee", func(p *model.Pool) { p.SwapFee = fee })
}

// HandleSetController stores the pool's new controller.
func (h *Handlers) HandleSetController(ctx context.Context, ev events.Call) (result.Result, error) {
	controller, err := events.DecodeAddressArg(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	return h.updatePool(ctx, ev, "setController", func(p *model.Pool) { p.Controller = events.HexID(controller) })
}

// HandleSetPublicSwap toggles public swapping on the pool.
func (h *Handlers) HandleSetPublicSwap(ctx context.Context, ev events.Call) (result.Result, error) {
	public, err := events.DecodePublicSwap(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	return h.updatePool(ctx, ev, "setPublicSwap", func(p *model.Pool) { p.PublicSwap = public })
}

// updatePool applies a single-field change and records the transaction.
func (h *Handlers) updatePool(ctx context.Context, ev events.Call, name string, apply func(*model.Pool)) (result.Result, error) {
	pool, err := h.pools.Load(ctx, events.HexID(ev.Address))
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	apply(pool)
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, name); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleFinalize marks the pool finalized and publicly swappable.
func (h *Handlers) HandleFinalize(ctx context.Context, ev events.Call) (result.Result, error) {
	pool, err := h.pools.Load(ctx, events.HexID(ev.Address))
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	wasFinalized := pool.Finalized
	pool.Finalized = true
	pool.Symbol = "BPT"
	pool.PublicSwap = true
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}

	factory, err := h.factories.Load(ctx, model.FactoryID)
	if err != nil {
		return result.Result{}, err
	}
	if factory == nil {
		return result.Skip("factory not found"), nil
	}
	if !wasFinalized {
		factory.FinalizedPoolCount++
		if err := h.factories.Save(ctx, factory); err != nil {
			return result.Result{}, err
		}
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "finalize"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleRebind binds a token or changes its weight and balance. bind shares
// the calldata layout and is handled the same way.
func (h *Handlers) HandleRebind(ctx context.Context, ev events.Call) (result.Result, error) {
	args, err := events.DecodeRebind(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	poolID := events.HexID(ev.Address)
	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}

	token := events.HexID(args.Token)
	if !pool.HasToken(token) {
		pool.TokensList = append(pool.TokensList, token)
		pool.TokensCount = int64(len(pool.TokensList))
	}

	pt, err := h.poolTokens.Load(ctx, poolTokenID(poolID, token))
	if err != nil {
		return result.Result{}, err
	}
	if pt == nil {
		pt, err = h.createPoolToken(ctx, poolID, args.Token)
		if err != nil {
			return result.Result{}, err
		}
		pool.TotalWeight = pool.TotalWeight.Add(args.DenormWeight)
	} else {
		pool.TotalWeight = pool.TotalWeight.Add(args.DenormWeight.Sub(pt.DenormWeight))
	}

	balance, err := fixedpoint.HexToDecimal(args.BalanceHex, pt.Decimals)
	if err != nil {
		return malformed(err), nil
	}
	pt.Balance = balance
	pt.DenormWeight = args.DenormWeight
	if err := h.poolTokens.Save(ctx, pt); err != nil {
		return result.Result{}, err
	}

	if balance.IsZero() {
		if err := h.decrPoolCount(ctx, pool.Active, pool.Finalized, pool.Crp); err != nil {
			return result.Result{}, err
		}
		pool.Active = false
	}
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	if _, err := h.UpdatePoolLiquidity(ctx, poolID); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "rebind"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleUnbind removes a token from the pool and deletes its PoolToken.
func (h *Handlers) HandleUnbind(ctx context.Context, ev events.Call) (result.Result, error) {
	tokenAddr, err := events.DecodeAddressArg(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	poolID := events.HexID(ev.Address)
	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}

	token := events.HexID(tokenAddr)
	pool.TokensList = removeToken(pool.TokensList, token)
	pool.TokensCount = int64(len(pool.TokensList))

	ptID := poolTokenID(poolID, token)
	pt, err := h.poolTokens.Load(ctx, ptID)
	if err != nil {
		return result.Result{}, err
	}
	if pt == nil {
		return result.Skip("pool token not found"), nil
	}
	pool.TotalWeight = pool.TotalWeight.Sub(pt.DenormWeight)
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	if err := h.poolTokens.Remove(ctx, ptID); err != nil {
		return result.Result{}, err
	}
	if _, err := h.UpdatePoolLiquidity(ctx, poolID); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "unbind"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleGulp resyncs a token balance from the chain. It writes no Transaction.
func (h *Handlers) HandleGulp(ctx context.Context, ev events.Call) (result.Result, error) {
	tokenAddr, err := events.DecodeAddressArg(ev.Data)
	if err != nil {
		return malformed(err), nil
	}
	poolID := events.HexID(ev.Address)
	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}

	pt, err := h.poolTokens.Load(ctx, poolTokenID(poolID, events.HexID(tokenAddr)))
	if err != nil {
		return result.Result{}, err
	}
	if pt != nil {
		raw, err := h.reader.PoolBalance(ctx, ev.Address, tokenAddr)
		if err != nil {
			h.logger.Warn("gulp balance read failed",
				zap.String("pool", poolID),
				zap.String("token", pt.Address),
				zap.Error(err),
			)
			pt.Balance = decimal.Zero
		} else {
			pt.Balance = fixedpoint.BigIntToDecimal(raw, pt.Decimals)
		}
		if err := h.poolTokens.Save(ctx, pt); err != nil {
			return result.Result{}, err
		}
	}
	if _, err := h.UpdatePoolLiquidity(ctx, poolID); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleCrpOwnershipTransferred records the new controller of a smart pool.
func (h *Handlers) HandleCrpOwnershipTransferred(ctx context.Context, ev events.OwnershipTransferred) (result.Result, error) {
	poolAddr, err := h.reader.CrpPool(ctx, ev.Address)
	if err != nil {
		h.logger.Warn("crp pool read failed", zap.String("crp", events.HexID(ev.Address)), zap.Error(err))
		return result.Skip("crp pool unreadable"), nil
	}
	pool, err := h.pools.Load(ctx, events.HexID(poolAddr))
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	pool.CrpController = events.HexID(ev.NewOwner)
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, poolAddr, "setCrpController"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

func removeToken(list []string, token string) []string {
	for i, t := range list {
		if t == token {
			out := make([]string, 0, len(list)-1)
			out = append(out, list[:i]...)
			return append(out, list[i+1:]...)
		}
	}
	return list
}

func malformed(err error) result.Result {
	return result.SkipDetail("malformed calldata", err.Error())
}
