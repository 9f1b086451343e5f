package pool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/fixedpoint"
	"poolScope/internal/model"
	"poolScope/internal/result"
	"poolScope/internal/store"
)

const shareDecimals = 18

// shareBook abstracts the two share kinds, which differ only in storage kind.
type shareBook interface {
	load(ctx context.Context, id string) (*model.PoolShare, error)
	save(ctx context.Context, share *model.PoolShare) error
}

type poolShareBook struct {
	repo *store.Repository[model.PoolShare]
}

func (b poolShareBook) load(ctx context.Context, id string) (*model.PoolShare, error) {
	return b.repo.Load(ctx, id)
}

func (b poolShareBook) save(ctx context.Context, share *model.PoolShare) error {
	return b.repo.Save(ctx, share)
}

type crpShareBook struct {
	repo *store.Repository[model.CrpPoolShare]
}

func (b crpShareBook) load(ctx context.Context, id string) (*model.PoolShare, error) {
	share, err := b.repo.Load(ctx, id)
	return (*model.PoolShare)(share), err
}

func (b crpShareBook) save(ctx context.Context, share *model.PoolShare) error {
	return b.repo.Save(ctx, (*model.CrpPoolShare)(share))
}

// HandleTransfer tracks pool-token balances of a plain pool.
func (h *Handlers) HandleTransfer(ctx context.Context, ev events.Transfer) (result.Result, error) {
	return h.transferShares(ctx, poolShareBook{h.shares}, events.HexID(ev.Address), ev)
}

// HandleCrpTransfer tracks balances of a smart pool's token against its underlying pool.
func (h *Handlers) HandleCrpTransfer(ctx context.Context, ev events.Transfer) (result.Result, error) {
	poolAddr, err := h.reader.CrpPool(ctx, ev.Address)
	if err != nil {
		h.logger.Warn("crp pool read failed", zap.String("crp", events.HexID(ev.Address)), zap.Error(err))
		return result.Skip("crp pool unreadable"), nil
	}
	return h.transferShares(ctx, crpShareBook{h.crpShares}, events.HexID(poolAddr), ev)
}

func (h *Handlers) transferShares(ctx context.Context, book shareBook, poolID string, ev events.Transfer) (result.Result, error) {
	isMint := ev.From == (common.Address{})
	isBurn := ev.To == (common.Address{})
	from := events.HexID(ev.From)
	to := events.HexID(ev.To)

	pool, err := h.pools.Load(ctx, poolID)
	if err != nil {
		return result.Result{}, err
	}
	if pool == nil {
		return result.Skip("pool not found"), nil
	}
	if from == to && !isMint && !isBurn {
		return result.Skip("self transfer"), nil
	}

	value := fixedpoint.BigIntToDecimal(ev.Value, shareDecimals)
	var (
		toShare, fromShare   *model.PoolShare
		toBefore, fromBefore decimal.Decimal
	)
	if !isBurn {
		toShare, err = h.loadShare(ctx, book, poolID, to)
		if err != nil {
			return result.Result{}, err
		}
		toBefore = toShare.Balance
		toShare.Balance = toShare.Balance.Add(value)
		if err := book.save(ctx, toShare); err != nil {
			return result.Result{}, err
		}
	}
	if !isMint {
		fromShare, err = h.loadShare(ctx, book, poolID, from)
		if err != nil {
			return result.Result{}, err
		}
		fromBefore = fromShare.Balance
		fromShare.Balance = fromShare.Balance.Sub(value)
		if err := book.save(ctx, fromShare); err != nil {
			return result.Result{}, err
		}
	}

	switch {
	case isMint:
		pool.TotalShares = pool.TotalShares.Add(value)
	case isBurn:
		pool.TotalShares = pool.TotalShares.Sub(value)
	}
	if toShare != nil && toBefore.IsZero() && !toShare.Balance.IsZero() {
		pool.HoldersCount++
	}
	if fromShare != nil && !fromBefore.IsZero() && fromShare.Balance.IsZero() {
		pool.HoldersCount--
	}
	if err := h.pools.Save(ctx, pool); err != nil {
		return result.Result{}, err
	}
	return result.Applied(), nil
}

// loadShare returns the holder's share, creating and persisting a zero balance
// together with its User on first sight.
func (h *Handlers) loadShare(ctx context.Context, book shareBook, poolID, holder string) (*model.PoolShare, error) {
	id := model.JoinID(poolID, holder)
	share, err := book.load(ctx, id)
	if err != nil || share != nil {
		return share, err
	}
	if err := h.createUser(ctx, holder); err != nil {
		return nil, err
	}
	share = &model.PoolShare{ID: id, PoolID: poolID, UserAddress: holder, Balance: decimal.Zero}
	if err := book.save(ctx, share); err != nil {
		return nil, err
	}
	return share, nil
}
