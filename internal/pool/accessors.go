package pool

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"poolScope/internal/events"
	"poolScope/internal/model"
)

func newFactory() model.Factory {
	return model.Factory{
		ID:              model.FactoryID,
		TotalLiquidity:  decimal.Zero,
		TotalSwapVolume: decimal.Zero,
		TotalSwapFee:    decimal.Zero,
	}
}

func poolTokenID(poolID, token string) string {
	return model.JoinID(poolID, token)
}

// createPoolToken fetches token metadata once and persists a zero-balance PoolToken.
func (h *Handlers) createPoolToken(ctx context.Context, poolID string, token common.Address) (*model.PoolToken, error) {
	meta := h.reader.TokenMeta(ctx, token)
	pt := &model.PoolToken{
		ID:           poolTokenID(poolID, events.HexID(token)),
		PoolID:       poolID,
		Address:      events.HexID(token),
		Symbol:       meta.Symbol,
		Name:         meta.Name,
		Decimals:     int(meta.Decimals),
		Balance:      decimal.Zero,
		DenormWeight: decimal.Zero,
	}
	if err := h.poolTokens.Save(ctx, pt); err != nil {
		return nil, err
	}
	return pt, nil
}

func (h *Handlers) createUser(ctx context.Context, address string) error {
	existing, err := h.users.Load(ctx, address)
	if err != nil || existing != nil {
		return err
	}
	return h.users.Save(ctx, &model.User{ID: address})
}

// decrPoolCount removes an active pool from the global counters.
func (h *Handlers) decrPoolCount(ctx context.Context, active, finalized, crp bool) error {
	if !active {
		return nil
	}
	factory, err := h.factories.Load(ctx, model.FactoryID)
	if err != nil || factory == nil {
		return err
	}
	factory.PoolCount--
	if finalized {
		factory.FinalizedPoolCount--
	}
	if crp {
		factory.CrpCount--
	}
	return h.factories.Save(ctx, factory)
}

// saveTransaction writes the audit record for a pool mutation and registers the sender.
func (h *Handlers) saveTransaction(ctx context.Context, header events.Header, poolAddress common.Address, eventName string) error {
	id := header.EventID()
	tx, _, err := h.txs.GetOrCreate(ctx, id, func() model.Transaction {
		return model.Transaction{ID: id, GasUsed: decimal.Zero}
	})
	if err != nil {
		return err
	}
	user := events.HexID(header.From)
	tx.Event = eventName
	tx.PoolAddress = events.HexID(poolAddress)
	tx.UserAddress = user
	tx.GasPrice = decimal.Zero
	if header.GasPrice != nil {
		tx.GasPrice = decimal.NewFromBigInt(header.GasPrice, 0)
	}
	tx.Tx = header.TxHash.Hex()
	tx.Timestamp = header.Timestamp
	tx.Block = header.BlockNumber
	if err := h.txs.Save(ctx, tx); err != nil {
		return err
	}
	return h.createUser(ctx, user)
}
