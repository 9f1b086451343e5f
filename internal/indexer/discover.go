package indexer

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/storage"
)

// CrpChecker tells whether an address was deployed by the smart pool factory.
type CrpChecker interface {
	IsCrp(ctx context.Context, factory, candidate common.Address) (bool, error)
}

// Discoverer watches contracts announced by factory logs before forwarding
// the batch to the next sink. Fetch uses it to follow newly created pools and
// vaults without running the handlers.
type Discoverer struct {
	next       storage.Sink
	watch      *WatchSet
	decoder    *events.Decoder
	crp        CrpChecker
	crpFactory common.Address
	logger     *zap.Logger
}

// NewDiscoverer builds a Discoverer. crp may be nil, or crpFactory zero, when
// the network has no smart pool factory.
func NewDiscoverer(next storage.Sink, watch *WatchSet, crp CrpChecker, crpFactory common.Address, logger *zap.Logger) (*Discoverer, error) {
	decoder, err := events.NewDecoder()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Discoverer{
		next:       next,
		watch:      watch,
		decoder:    decoder,
		crp:        crp,
		crpFactory: crpFactory,
		logger:     logger,
	}, nil
}

func (d *Discoverer) PutLogBatch(ctx context.Context, records []model.LogRecord) error {
	for _, record := range records {
		if err := d.inspect(ctx, record); err != nil {
			return err
		}
	}
	return d.next.PutLogBatch(ctx, records)
}

func (d *Discoverer) inspect(ctx context.Context, record model.LogRecord) error {
	role, ok := d.watch.Role(common.HexToAddress(record.Address))
	if !ok || (role != model.RolePoolFactory && role != model.RoleVaultFactory) {
		return nil
	}
	event, err := d.decoder.Decode(record)
	if err != nil {
		if !errors.Is(err, events.ErrUnknownEvent) {
			d.logger.Warn("factory log undecodable", zap.String("tx_hash", record.TxHash), zap.Error(err))
		}
		return nil
	}

	switch ev := event.(type) {
	case events.NewPool:
		if role != model.RolePoolFactory {
			return nil
		}
		if err := d.watch.Watch(ctx, model.RolePool, ev.Pool, ev.BlockNumber); err != nil {
			return err
		}
		if d.isCrp(ctx, ev.Caller) {
			return d.watch.Watch(ctx, model.RoleCrp, ev.Caller, ev.BlockNumber)
		}
	case events.NewVault:
		if role != model.RoleVaultFactory {
			return nil
		}
		return d.watch.Watch(ctx, model.RoleVault, ev.Vault, ev.BlockNumber)
	}
	return nil
}

func (d *Discoverer) isCrp(ctx context.Context, caller common.Address) bool {
	if d.crp == nil || d.crpFactory == (common.Address{}) {
		return false
	}
	ok, err := d.crp.IsCrp(ctx, d.crpFactory, caller)
	if err != nil {
		d.logger.Debug("isCrp read failed", zap.String("caller", events.HexID(caller)), zap.Error(err))
		return false
	}
	return ok
}
