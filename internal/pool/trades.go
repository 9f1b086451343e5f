package pool

import (
	"context"

	"github.com/shopspring/decimal"

	"poolScope/internal/events"
	"poolScope/internal/fixedpoint"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// HandleJoin adds a single-token deposit to the pool balance.
func (h *Handlers) HandleJoin(ctx context.Context, ev events.Join) (result.Result, error) {
	poolID := events.HexID(ev.Address)
	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	pool.JoinsCount++
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}

	pt, err := h.poolTokens.Load(ctx, poolTokenID(poolID, events.HexID(ev.TokenIn)))
	if err != nil {
		return result.Result{}, err
	}
	if pt == nil {
		return result.Skip("pool token not found"), nil
	}
	pt.Balance = pt.Balance.Add(fixedpoint.BigIntToDecimal(ev.TokenAmountIn, pt.Decimals))
	if err := h.poolTokens.Save(ctx, pt); err != nil {
		return result.Result{}, err
	}

	if _, err := h.UpdatePoolLiquidity(ctx, poolID); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "join"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleExit removes a single-token withdrawal and deactivates the pool when
// the balance reaches zero.
func (h *Handlers) HandleExit(ctx context.Context, ev events.Exit) (result.Result, error) {
	poolID := events.HexID(ev.Address)
	pt, err := h.poolTokens.Load(ctx, poolTokenID(poolID, events.HexID(ev.TokenOut)))
	if err != nil {
		return result.Result{}, err
	}
	if pt == nil {
		return result.Skip("pool token not found"), nil
	}
	pt.Balance = pt.Balance.Sub(fixedpoint.BigIntToDecimal(ev.TokenAmountOut, pt.Decimals))
	if err := h.poolTokens.Save(ctx, pt); err != nil {
		return result.Result{}, err
	}

	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	pool.ExitsCount++
	if pt.Balance.IsZero() {
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
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "exit"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// HandleSwap moves both balances, prices the out-token, and accumulates
// volume and fees on the pool and the factory.
func (h *Handlers) HandleSwap(ctx context.Context, ev events.Swap) (result.Result, error) {
	poolID := events.HexID(ev.Address)

	in, err := h.poolTokens.Load(ctx, poolTokenID(poolID, events.HexID(ev.TokenIn)))
	if err != nil {
		return result.Result{}, err
	}
	if in == nil {
		return result.Skip("pool token in not found"), nil
	}
	amountIn := fixedpoint.BigIntToDecimal(ev.TokenAmountIn, in.Decimals)
	in.Balance = in.Balance.Add(amountIn)
	if err := h.poolTokens.Save(ctx, in); err != nil {
		return result.Result{}, err
	}

	tokenOut := events.HexID(ev.TokenOut)
	out, err := h.poolTokens.Load(ctx, poolTokenID(poolID, tokenOut))
	if err != nil {
		return result.Result{}, err
	}
	if out == nil {
		return result.Skip("pool token out not found"), nil
	}
	amountOut := fixedpoint.BigIntToDecimal(ev.TokenAmountOut, out.Decimals)
	out.Balance = out.Balance.Sub(amountOut)
	if err := h.poolTokens.Save(ctx, out); err != nil {
		return result.Result{}, err
	}

	if _, err := h.UpdatePoolLiquidity(ctx, poolID); err != nil {
		return result.Result{}, err
	}

	swapID := ev.EventID()
	swap, _, err := h.swaps.GetOrCreate(ctx, swapID, func() model.Swap {
		return model.Swap{ID: swapID}
	})
	if err != nil {
		return result.Result{}, err
	}

	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	price, ok, err := h.outTokenPrice(ctx, pool, tokenOut, out)
	if err != nil {
		return result.Result{}, err
	}
	if !ok {
		return result.Skip("reference pool token missing"), nil
	}

	liquidity := pool.Liquidity
	value := decimal.Zero
	feeValue := decimal.Zero
	factory, err := h.factories.Load(ctx, model.FactoryID)
	if err != nil {
		return result.Result{}, err
	}
	if factory == nil {
		return result.Skip("factory not found"), nil
	}
	if price.IsPositive() {
		value = price.Mul(amountOut)
		feeValue = value.Mul(pool.SwapFee)
		pool.TotalSwapVolume = pool.TotalSwapVolume.Add(value)
		pool.TotalSwapFee = pool.TotalSwapFee.Add(feeValue)
		factory.TotalSwapVolume = factory.TotalSwapVolume.Add(value)
		factory.TotalSwapFee = factory.TotalSwapFee.Add(feeValue)
	}
	pool.SwapsCount++
	factory.TxCount++
	if err := h.factories.Save(ctx, factory); err != nil {
		return result.Result{}, err
	}

	if in.Balance.IsZero() || out.Balance.IsZero() {
		if err := h.decrPoolCount(ctx, pool.Active, pool.Finalized, pool.Crp); err != nil {
			return result.Result{}, err
		}
		pool.Active = false
	}
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}

	swap.Caller = events.HexID(ev.Caller)
	swap.TokenIn = events.HexID(ev.TokenIn)
	swap.TokenInSym = in.Symbol
	swap.TokenOut = tokenOut
	swap.TokenOutSym = out.Symbol
	swap.TokenAmountIn = amountIn
	swap.TokenAmountOut = amountOut
	swap.PoolAddress = poolID
	swap.UserAddress = events.HexID(ev.From)
	swap.PoolTotalSwapVolume = pool.TotalSwapVolume
	swap.PoolTotalSwapFee = pool.TotalSwapFee
	swap.PoolLiquidity = liquidity
	swap.Value = value
	swap.FeeValue = feeValue
	swap.Timestamp = ev.Timestamp
	if err := h.swaps.Save(ctx, swap); err != nil {
		return result.Result{}, err
	}
	if err := h.saveTransaction(ctx, ev.Header, ev.Address, "swap"); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// outTokenPrice returns the cached price of the out-token, or the first
// positive cross-rate through another priced pool token. ok is false when a
// reference token has no PoolToken.
func (h *Handlers) outTokenPrice(ctx context.Context, pool *model.Pool, tokenOut string, out *model.PoolToken) (decimal.Decimal, bool, error) {
	cached, err := h.prices.Load(ctx, tokenOut)
	if err != nil {
		return decimal.Zero, false, err
	}
	if cached != nil {
		return cached.Price, true, nil
	}
	for _, token := range pool.TokensList {
		if token == tokenOut {
			continue
		}
		ref, err := h.prices.Load(ctx, token)
		if err != nil {
			return decimal.Zero, false, err
		}
		if ref == nil || !ref.Price.IsPositive() {
			continue
		}
		pt, err := h.poolTokens.Load(ctx, poolTokenID(pool.ID, token))
		if err != nil {
			return decimal.Zero, false, err
		}
		if pt == nil {
			return decimal.Zero, false, nil
		}
		spot := fixedpoint.Div(ref.Price.Mul(pt.Balance), pt.DenormWeight).Mul(out.DenormWeight)
		if price := fixedpoint.Div(spot, out.Balance); price.IsPositive() {
			return price, true, nil
		}
	}
	return decimal.Zero, true, nil
}
