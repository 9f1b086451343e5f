package pool

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolScope/internal/fixedpoint"
	"poolScope/internal/model"
	"poolScope/internal/result"
)

// UpdatePoolLiquidity recomputes a pool's liquidity and the token prices it backs.
//
// The basis is the USD token when present, otherwise a priced WETH or DAI.
// Every token whose price this pool wins is repriced from that basis, and the
// pool's liquidity is then read back through the priced token with the largest
// weight. The factory total moves by the change in pool liquidity.
func (h *Handlers) UpdatePoolLiquidity(ctx context.Context, poolID string) (result.Result, error) {
	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}

	if pool.TokensCount == 0 {
		if err := h.applyLiquidity(ctx, pool, decimal.Zero); err != nil {
			return result.Result{}, err
		}
		return result.Skip("pool has no tokens"), nil
	}
	if len(pool.TokensList) == 0 || pool.TokensCount < 2 || !pool.PublicSwap {
		return result.Skip("pool not tradable"), nil
	}

	basis, hasPrice, hasUsdPrice, ok, err := h.liquidityBasis(ctx, pool)
	if err != nil {
		return result.Result{}, err
	}
	if !ok {
		return result.Skip("basis pool token missing"), nil
	}

	if hasPrice {
		reason, err := h.propagatePrices(ctx, pool, basis, hasUsdPrice)
		if err != nil {
			return result.Result{}, err
		}
		if reason != "" {
			return result.Skip(reason), nil
		}
	}

	liquidity := decimal.Zero
	maxWeight := decimal.Zero
	for _, token := range pool.TokensList {
		price, err := h.prices.Load(ctx, token)
		if err != nil {
			return result.Result{}, err
		}
		if price == nil {
			continue
		}
		pt, err := h.poolTokens.Load(ctx, poolTokenID(poolID, token))
		if err != nil {
			return result.Result{}, err
		}
		if pt == nil {
			return result.Skip("pool token missing"), nil
		}
		if price.Price.IsPositive() && pt.DenormWeight.GreaterThan(maxWeight) {
			maxWeight = pt.DenormWeight
			liquidity = valueAtWeight(price.Price, pt, pool.TotalWeight)
		}
	}

	factory, err := h.factories.Load(ctx, model.FactoryID)
	if err != nil {
		return result.Result{}, err
	}
	if factory == nil {
		return result.Skip("factory not found"), nil
	}
	factory.TotalLiquidity = factory.TotalLiquidity.Sub(pool.Liquidity).Add(liquidity)
	if err := h.factories.Save(ctx, factory); err != nil {
		return result.Result{}, err
	}
	pool.Liquidity = liquidity
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	h.logger.Debug("pool liquidity updated",
		zap.String("pool", poolID),
		zap.String("liquidity", liquidity.String()),
	)
	return result.Applied(), nil
}

// applyLiquidity sets a pool's liquidity and keeps the factory total in step.
func (h *Handlers) applyLiquidity(ctx context.Context, pool *model.Pool, liquidity decimal.Decimal) error {
	factory, err := h.factories.Load(ctx, model.FactoryID)
	if err != nil {
		return err
	}
	if factory != nil {
		factory.TotalLiquidity = factory.TotalLiquidity.Sub(pool.Liquidity).Add(liquidity)
		if err := h.factories.Save(ctx, factory); err != nil {
			return err
		}
	}
	pool.Liquidity = liquidity
	return h.pools.Save(ctx, pool)
}

// liquidityBasis returns the pool's liquidity measured against a reference
// token. ok is false when the reference PoolToken is missing.
func (h *Handlers) liquidityBasis(ctx context.Context, pool *model.Pool) (basis decimal.Decimal, hasPrice, hasUsdPrice, ok bool, err error) {
	switch {
	case pool.HasToken(h.network.USD):
		pt, err := h.poolTokens.Load(ctx, poolTokenID(pool.ID, h.network.USD))
		if err != nil || pt == nil {
			return decimal.Zero, false, false, false, err
		}
		return valueAtWeight(decimal.NewFromInt(1), pt, pool.TotalWeight), true, true, true, nil
	case pool.HasToken(h.network.WETH):
		return h.referenceBasis(ctx, pool, h.network.WETH)
	case pool.HasToken(h.network.DAI):
		return h.referenceBasis(ctx, pool, h.network.DAI)
	}
	return decimal.Zero, false, false, true, nil
}

func (h *Handlers) referenceBasis(ctx context.Context, pool *model.Pool, token string) (decimal.Decimal, bool, bool, bool, error) {
	price, err := h.prices.Load(ctx, token)
	if err != nil {
		return decimal.Zero, false, false, false, err
	}
	if price == nil {
		return decimal.Zero, false, false, true, nil
	}
	pt, err := h.poolTokens.Load(ctx, poolTokenID(pool.ID, token))
	if err != nil || pt == nil {
		return decimal.Zero, false, false, false, err
	}
	return valueAtWeight(price.Price, pt, pool.TotalWeight), true, false, true, nil
}

// propagatePrices reprices every token this pool wins. A non-empty reason
// means a PoolToken was missing and the pass stopped.
func (h *Handlers) propagatePrices(ctx context.Context, pool *model.Pool, basis decimal.Decimal, hasUsdPrice bool) (string, error) {
	for _, token := range pool.TokensList {
		price, _, err := h.prices.GetOrCreate(ctx, token, func() model.TokenPrice {
			return model.TokenPrice{ID: token, Price: decimal.Zero, PoolLiquidity: decimal.Zero}
		})
		if err != nil {
			return "", err
		}
		ptID := poolTokenID(pool.ID, token)
		pt, err := h.poolTokens.Load(ctx, ptID)
		if err != nil {
			return "", err
		}
		if pt == nil {
			return "pool token missing", nil
		}

		wins := price.PoolTokenID == ptID || basis.GreaterThan(price.PoolLiquidity)
		referenceAllowed := !h.network.IsPriceReference(token) || (pool.TokensCount == 2 && hasUsdPrice)
		if !pool.Active || !pool.PublicSwap || !wins || !referenceAllowed {
			continue
		}

		price.Price = decimal.Zero
		if pt.Balance.IsPositive() {
			price.Price = fixedpoint.Div(fixedpoint.Div(basis, pool.TotalWeight).Mul(pt.DenormWeight), pt.Balance)
		}
		price.Symbol = pt.Symbol
		price.Name = pt.Name
		price.Decimals = pt.Decimals
		price.PoolLiquidity = basis
		price.PoolTokenID = ptID
		if err := h.prices.Save(ctx, price); err != nil {
			return "", err
		}
	}
	return "", nil
}

// valueAtWeight is price × balance / weight × totalWeight.
func valueAtWeight(price decimal.Decimal, pt *model.PoolToken, totalWeight decimal.Decimal) decimal.Decimal {
	return fixedpoint.Div(price.Mul(pt.Balance), pt.DenormWeight).Mul(totalWeight)
}
