package indexer

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/metrics"
	"poolScope/internal/model"
	"poolScope/internal/pool"
	"poolScope/internal/result"
	"poolScope/internal/storage"
	"poolScope/internal/vault"
)

// RoleResolver maps an emitting contract to the role it was registered with.
type RoleResolver interface {
	Role(address common.Address) (string, bool)
}

// DecodeErrorSink receives log records that could not be decoded.
type DecodeErrorSink interface {
	PutDecodeError(model.DecodeError) error
}

// Dispatcher decodes log records and routes them to the pool and vault
// handlers by the role of the emitting contract. It implements storage.Sink,
// so the runner can feed it directly.
type Dispatcher struct {
	decoder *events.Decoder
	roles   RoleResolver
	pools   *pool.Handlers
	vaults  *vault.Handlers
	metrics *metrics.Metrics
	errors  DecodeErrorSink
	logger  *zap.Logger
}

var _ storage.Sink = (*Dispatcher)(nil)

// NewDispatcher wires a dispatcher. m and errSink may be nil.
func NewDispatcher(roles RoleResolver, pools *pool.Handlers, vaults *vault.Handlers, m *metrics.Metrics, errSink DecodeErrorSink, logger *zap.Logger) (*Dispatcher, error) {
	decoder, err := events.NewDecoder()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		decoder: decoder,
		roles:   roles,
		pools:   pools,
		vaults:  vaults,
		metrics: m,
		errors:  errSink,
		logger:  logger,
	}, nil
}

// PutLogBatch applies records in order. Only handler errors abort the batch.
func (d *Dispatcher) PutLogBatch(ctx context.Context, records []model.LogRecord) error {
	for _, record := range records {
		if err := d.Dispatch(ctx, record); err != nil {
			return err
		}
		if d.metrics != nil {
			d.metrics.LastBlock.Set(float64(record.BlockNumber))
		}
	}
	return nil
}

// Dispatch applies a single record.
func (d *Dispatcher) Dispatch(ctx context.Context, record model.LogRecord) error {
	address := common.HexToAddress(record.Address)
	role, ok := d.roles.Role(address)
	if !ok {
		d.logger.Debug("log from unwatched contract", zap.String("address", record.Address))
		return nil
	}

	event, err := d.decoder.Decode(record)
	if err != nil {
		if errors.Is(err, events.ErrUnknownEvent) {
			d.logger.Debug("unhandled event", zap.String("address", record.Address), zap.Error(err))
			return nil
		}
		return d.decodeFailed(record, err)
	}

	name := event.Name()
	if d.metrics != nil {
		d.metrics.EventsDispatched.WithLabelValues(name).Inc()
	}
	res, err := d.route(ctx, role, event)
	if err != nil {
		if d.metrics != nil {
			d.metrics.HandlerErrors.WithLabelValues(name).Inc()
		}
		return fmt.Errorf("%s %s:%d: %w", name, record.TxHash, record.LogIndex, err)
	}

	if res.Applied {
		if d.metrics != nil {
			d.metrics.EventsApplied.WithLabelValues(name).Inc()
		}
		return nil
	}
	if d.metrics != nil {
		d.metrics.EventsSkipped.WithLabelValues(name, res.Reason).Inc()
	}
	d.logger.Debug("event skipped",
		zap.String("event", name),
		zap.String("role", role),
		zap.String("tx_hash", record.TxHash),
		zap.Uint64("log_index", record.LogIndex),
		zap.String("reason", res.Reason),
		zap.String("detail", res.Detail),
	)
	return nil
}

func (d *Dispatcher) decodeFailed(record model.LogRecord, err error) error {
	if d.metrics != nil {
		d.metrics.DecodeErrors.Inc()
	}
	d.logger.Warn("decode failed",
		zap.String("tx_hash", record.TxHash),
		zap.Uint64("log_index", record.LogIndex),
		zap.Error(err),
	)
	if d.errors == nil {
		return nil
	}
	topic0 := ""
	if len(record.Topics) > 0 {
		topic0 = record.Topics[0]
	}
	return d.errors.PutDecodeError(model.DecodeError{
		ChainID:     record.ChainID,
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
		LogIndex:    record.LogIndex,
		Address:     record.Address,
		Topic0:      topic0,
		Error:       err.Error(),
	})
}

func (d *Dispatcher) route(ctx context.Context, role string, event events.Event) (result.Result, error) {
	switch role {
	case model.RolePoolFactory:
		if ev, ok := event.(events.NewPool); ok {
			return d.pools.HandleNewPool(ctx, ev)
		}
	case model.RolePool:
		switch ev := event.(type) {
		case events.Swap:
			return d.pools.HandleSwap(ctx, ev)
		case events.Join:
			return d.pools.HandleJoin(ctx, ev)
		case events.Exit:
			return d.pools.HandleExit(ctx, ev)
		case events.Call:
			return d.pools.HandleCall(ctx, ev)
		case events.Transfer:
			return d.pools.HandleTransfer(ctx, ev)
		}
	case model.RoleCrp:
		switch ev := event.(type) {
		case events.Transfer:
			return d.pools.HandleCrpTransfer(ctx, ev)
		case events.OwnershipTransferred:
			return d.pools.HandleCrpOwnershipTransferred(ctx, ev)
		}
	case model.RoleVaultFactory:
		switch ev := event.(type) {
		case events.NewVault:
			return d.vaults.HandleNewVault(ctx, ev)
		case events.UpdateFactoryFees:
			return d.vaults.HandleUpdateFactoryFees(ctx, ev)
		case events.UpdateVaultFees:
			return d.vaults.HandleUpdateVaultFees(ctx, ev)
		case events.DisableVaultFees:
			return d.vaults.HandleDisableVaultFees(ctx, ev)
		}
	case model.RoleVault:
		switch ev := event.(type) {
		case events.Minted:
			return d.vaults.HandleMinted(ctx, ev)
		case events.Redeemed:
			return d.vaults.HandleRedeemed(ctx, ev)
		case events.Swapped:
			return d.vaults.HandleSwapped(ctx, ev)
		case events.ManagerSet:
			return d.vaults.HandleManagerSet(ctx, ev)
		case events.FeatureUpdated:
			return d.vaults.HandleFeatureUpdated(ctx, ev)
		case events.Transfer:
			return d.vaults.HandleTransfer(ctx, ev)
		}
	}
	return result.SkipDetail("event not handled for role", role), nil
}
