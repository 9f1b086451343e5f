package vault

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"poolScope/internal/config"
	"poolScope/internal/contracts"
	"poolScope/internal/events"
	"poolScope/internal/model"
	"poolScope/internal/store"
)

var (
	factoryAddr     = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	distributorAddr = common.HexToAddress("0x00000000000000000000000000000000000000d1")
	vaultAddr       = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	vault1155Addr   = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	assetAddr       = common.HexToAddress("0x00000000000000000000000000000000000000c1")
	managerAddr     = common.HexToAddress("0x00000000000000000000000000000000000000e1")
	creatorAddr     = common.HexToAddress("0x00000000000000000000000000000000000000e2")
	holderAddr      = common.HexToAddress("0x00000000000000000000000000000000000000e3")
)

var errReverted = errors.New("execution reverted")

type stubReader struct {
	is1155      map[common.Address]bool
	vaultIDs    map[int64]common.Address
	flatFees    *contracts.FlatFees
	distributor common.Address
}

func (r *stubReader) TokenSymbol(_ context.Context, token common.Address) (string, error) {
	if token == assetAddr {
		return "PUNK", nil
	}
	return "VTK", nil
}

func (r *stubReader) TokenName(context.Context, common.Address) (string, error) {
	return "", errReverted
}

func (r *stubReader) TotalSupply(context.Context, common.Address) (*big.Int, error) {
	return big.NewInt(1000), nil
}

func (r *stubReader) FeeDistributor(context.Context, common.Address) (common.Address, error) {
	if r.distributor == (common.Address{}) {
		return common.Address{}, errReverted
	}
	return r.distributor, nil
}

func (r *stubReader) FactoryVault(_ context.Context, _ common.Address, vaultID *big.Int) (common.Address, error) {
	addr, ok := r.vaultIDs[vaultID.Int64()]
	if !ok {
		return common.Address{}, errReverted
	}
	return addr, nil
}

func (r *stubReader) FactoryFees(context.Context, common.Address) (contracts.FlatFees, error) {
	if r.flatFees == nil {
		return contracts.FlatFees{}, errReverted
	}
	return *r.flatFees, nil
}

func (r *stubReader) VaultAssetAddress(context.Context, common.Address) (common.Address, error) {
	return assetAddr, nil
}

func (r *stubReader) VaultManager(context.Context, common.Address) (common.Address, error) {
	return managerAddr, nil
}

func (r *stubReader) VaultIs1155(_ context.Context, vault common.Address) (bool, error) {
	return r.is1155[vault], nil
}

func (r *stubReader) VaultAllowAllItems(context.Context, common.Address) (bool, error) {
	return false, errReverted
}

type recordingWatcher struct {
	addresses []common.Address
}

func (w *recordingWatcher) Watch(_ context.Context, role string, address common.Address, _ uint64) error {
	if role == model.RoleVault {
		w.addresses = append(w.addresses, address)
	}
	return nil
}

type fixture struct {
	t       *testing.T
	ctx     context.Context
	h       *Handlers
	reader  *stubReader
	watcher *recordingWatcher
	seq     int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	network, err := config.LookupNetwork("mainnet")
	require.NoError(t, err)
	reader := &stubReader{
		is1155:      map[common.Address]bool{vault1155Addr: true},
		vaultIDs:    map[int64]common.Address{0: vaultAddr, 1: vault1155Addr},
		distributor: distributorAddr,
	}
	watcher := &recordingWatcher{}
	return &fixture{
		t:       t,
		ctx:     context.Background(),
		h:       NewHandlers(store.NewMemoryBackend(), network, reader, watcher, nil),
		reader:  reader,
		watcher: watcher,
	}
}

func (f *fixture) header(address common.Address, ts uint64) events.Header {
	f.seq++
	return events.Header{
		Address:     address,
		BlockNumber: uint64(1000 + f.seq),
		TxHash:      common.BigToHash(big.NewInt(f.seq)),
		LogIndex:    1,
		Timestamp:   ts,
		From:        creatorAddr,
	}
}

func (f *fixture) newVault(id int64, addr common.Address) {
	f.t.Helper()
	res, err := f.h.HandleNewVault(f.ctx, events.NewVault{
		Header:  f.header(factoryAddr, 1_700_000_000),
		VaultID: big.NewInt(id),
		Vault:   addr,
		Asset:   assetAddr,
	})
	require.NoError(f.t, err)
	require.True(f.t, res.Applied)
}

func (f *fixture) vault(addr common.Address) *model.Vault {
	f.t.Helper()
	v, err := f.h.vaults.Load(f.ctx, events.HexID(addr))
	require.NoError(f.t, err)
	require.NotNil(f.t, v)
	return v
}

func (f *fixture) global() *model.Global {
	f.t.Helper()
	g, err := f.h.globals.Load(f.ctx, "mainnet")
	require.NoError(f.t, err)
	require.NotNil(f.t, g)
	return g
}

func (f *fixture) holding(tokenID int64, addr common.Address) *model.Holding {
	f.t.Helper()
	h, err := f.h.holdings.Load(f.ctx, holdingID(big.NewInt(tokenID), events.HexID(addr)))
	require.NoError(f.t, err)
	return h
}

func ids(values ...int64) []*big.Int {
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = big.NewInt(v)
	}
	return out
}

func TestNewVaultCreatesEntities(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)

	v := f.vault(vaultAddr)
	assert.Equal(t, int64(0), v.VaultID.Int64())
	assert.Equal(t, events.HexID(creatorAddr), v.CreatedBy)
	assert.Equal(t, uint64(1_700_000_000), v.CreatedAt)
	assert.Equal(t, events.HexID(managerAddr), v.Manager)
	assert.False(t, v.IsFinalized)
	assert.False(t, v.Is1155)
	assert.False(t, v.AllowAllItems)
	assert.True(t, v.UsesFactoryFees)
	assert.Equal(t, []common.Address{vaultAddr}, f.watcher.addresses)

	token, err := f.h.tokens.Load(f.ctx, v.Token)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, "VTK", token.Symbol)
	assert.Equal(t, "", token.Name)
	assert.Equal(t, int64(1000), token.TotalSupply.Int64())

	asset, err := f.h.assets.Load(f.ctx, v.Asset)
	require.NoError(t, err)
	require.NotNil(t, asset)
	assert.Equal(t, "PUNK", asset.Symbol)

	g := f.global()
	assert.Equal(t, events.HexID(distributorAddr), g.FeeDistributorAddress)
	assert.Equal(t, events.HexID(factoryAddr), g.VaultFactory)
	assert.Equal(t, FeeID, g.Fees)

	fee, err := f.h.fees.Load(f.ctx, FeeID)
	require.NoError(t, err)
	assert.NotNil(t, fee)
}

func TestNewVaultSnapshotsFlatFees(t *testing.T) {
	f := newFixture(t)
	f.reader.flatFees = &contracts.FlatFees{
		MintFee:         big.NewInt(1),
		RandomRedeemFee: big.NewInt(2),
		TargetRedeemFee: big.NewInt(3),
		RandomSwapFee:   big.NewInt(4),
		TargetSwapFee:   big.NewInt(5),
	}
	f.newVault(0, vaultAddr)

	fee, err := f.h.fees.Load(f.ctx, events.HexID(vaultAddr))
	require.NoError(t, err)
	require.NotNil(t, fee)
	assert.Equal(t, int64(1), fee.MintFee.Int64())
	assert.Equal(t, int64(2), fee.RandomRedeemFee.Int64())
	assert.Equal(t, int64(4), fee.RandomSwapFee.Int64())
	assert.Equal(t, int64(5), fee.TargetSwapFee.Int64())
	assert.Equal(t, int64(0), fee.SwapFee.Int64())
}

func TestFactoryAndVaultFees(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)

	schedule := events.FeeSchedule{
		MintFee:         big.NewInt(10),
		RandomRedeemFee: big.NewInt(20),
		TargetRedeemFee: big.NewInt(30),
		RandomSwapFee:   big.NewInt(40),
		TargetSwapFee:   big.NewInt(50),
	}
	res, err := f.h.HandleUpdateFactoryFees(f.ctx, events.UpdateFactoryFees{Header: f.header(factoryAddr, 1), Fees: schedule})
	require.NoError(t, err)
	require.True(t, res.Applied)
	global, err := f.h.fees.Load(f.ctx, FeeID)
	require.NoError(t, err)
	assert.Equal(t, int64(30), global.TargetRedeemFee.Int64())

	res, err = f.h.HandleUpdateVaultFees(f.ctx, events.UpdateVaultFees{Header: f.header(factoryAddr, 2), VaultID: big.NewInt(0), Fees: schedule})
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.False(t, f.vault(vaultAddr).UsesFactoryFees)
	fee, err := f.h.fees.Load(f.ctx, events.HexID(vaultAddr))
	require.NoError(t, err)
	assert.Equal(t, int64(40), fee.RandomSwapFee.Int64())

	res, err = f.h.HandleDisableVaultFees(f.ctx, events.DisableVaultFees{Header: f.header(factoryAddr, 3), VaultID: big.NewInt(0)})
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.True(t, f.vault(vaultAddr).UsesFactoryFees)

	res, err = f.h.HandleDisableVaultFees(f.ctx, events.DisableVaultFees{Header: f.header(factoryAddr, 4), VaultID: big.NewInt(9)})
	require.NoError(t, err)
	assert.False(t, res.Applied)
}

func TestErc721HoldingsPinnedToOne(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)
	v := f.vault(vaultAddr)

	added, err := f.h.AddToHoldings(f.ctx, v, ids(7), ids(5), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), added.Int64())
	h := f.holding(7, vaultAddr)
	require.NotNil(t, h)
	assert.Equal(t, int64(1), h.Amount.Int64())
	assert.Equal(t, uint64(100), h.DateAdded)

	removed, err := f.h.RemoveFromHoldings(f.ctx, v.ID, ids(7))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed.Int64())
	assert.Nil(t, f.holding(7, vaultAddr))

	removed, err = f.h.RemoveFromHoldings(f.ctx, v.ID, ids(7))
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed.Int64())
}

func TestErc1155HoldingsAccumulate(t *testing.T) {
	f := newFixture(t)
	f.newVault(1, vault1155Addr)
	v := f.vault(vault1155Addr)
	require.True(t, v.Is1155)

	_, err := f.h.AddToHoldings(f.ctx, v, ids(3, 4), ids(2, 5), 100)
	require.NoError(t, err)
	_, err = f.h.AddToHoldings(f.ctx, v, ids(3), ids(1), 200)
	require.NoError(t, err)
	assert.Equal(t, int64(3), f.holding(3, vault1155Addr).Amount.Int64())
	assert.Equal(t, int64(5), f.holding(4, vault1155Addr).Amount.Int64())

	_, err = f.h.RemoveFromHoldings(f.ctx, v.ID, ids(3))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.holding(3, vault1155Addr).Amount.Int64())
}

func TestTransformMintAmounts(t *testing.T) {
	erc721 := &model.Vault{}
	assert.Equal(t, ids(1, 1), TransformMintAmounts(erc721, ids(7, 8), ids(5, 0)))
	erc1155 := &model.Vault{Is1155: true}
	assert.Equal(t, ids(5, 0), TransformMintAmounts(erc1155, ids(7, 8), ids(5, 0)))
}

func TestMintRedeemSwapTotalsAndRollups(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)
	ts := uint64(1_700_003_700)

	mint := events.Minted{Header: f.header(vaultAddr, ts), NftIDs: ids(1, 2, 3), Amounts: ids(9, 9, 9), To: holderAddr}
	res, err := f.h.HandleMinted(f.ctx, mint)
	require.NoError(t, err)
	require.True(t, res.Applied)

	record, err := f.h.mints.Load(f.ctx, mint.TxHash.Hex())
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, ids(1, 1, 1), record.Amounts)
	assert.Equal(t, events.HexID(holderAddr), record.User)

	res, err = f.h.HandleRedeemed(f.ctx, events.Redeemed{Header: f.header(vaultAddr, ts+10), NftIDs: ids(1, 2), SpecificIDs: ids(2), To: holderAddr})
	require.NoError(t, err)
	require.True(t, res.Applied)

	res, err = f.h.HandleSwapped(f.ctx, events.Swapped{Header: f.header(vaultAddr, ts+20), NftIDs: ids(4), Amounts: ids(1), RedeemedIDs: ids(3), To: holderAddr})
	require.NoError(t, err)
	require.True(t, res.Applied)

	v := f.vault(vaultAddr)
	assert.EqualValues(t, 1, v.TotalMints)
	assert.EqualValues(t, 1, v.TotalRedeems)
	assert.EqualValues(t, 1, v.TotalSwaps)
	assert.Equal(t, int64(1), v.TotalHoldings.Int64())
	assert.Equal(t, int64(1), f.global().TotalHoldings.Int64())
	assert.Nil(t, f.holding(3, vaultAddr))
	assert.NotNil(t, f.holding(4, vaultAddr))

	dayStart := ts - ts%86400
	day, err := f.h.days.Load(f.ctx, windowID(dayStart, v.ID))
	require.NoError(t, err)
	require.NotNil(t, day)
	assert.Equal(t, dayStart, day.Date)
	assert.EqualValues(t, 1, day.MintsCount)
	assert.EqualValues(t, 1, day.RedeemsCount)
	assert.EqualValues(t, 1, day.SwapsCount)
	assert.Equal(t, int64(1), day.HoldingsCount.Int64())
	assert.Equal(t, int64(1), day.TotalHoldings.Int64())

	hour, err := f.h.hours.Load(f.ctx, windowID(ts-ts%3600, v.ID))
	require.NoError(t, err)
	require.NotNil(t, hour)
	assert.EqualValues(t, 1, hour.TotalSwaps)

	redeem, err := f.h.redeems.List(f.ctx)
	require.NoError(t, err)
	require.Len(t, redeem, 1)
	assert.EqualValues(t, 1, redeem[0].RandomCount)
	assert.EqualValues(t, 1, redeem[0].TargetCount)
}

func TestManagerSetAndFeatures(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)

	res, err := f.h.HandleManagerSet(f.ctx, events.ManagerSet{Header: f.header(vaultAddr, 1), Manager: common.Address{}})
	require.NoError(t, err)
	require.True(t, res.Applied)
	assert.True(t, f.vault(vaultAddr).IsFinalized)

	res, err = f.h.HandleFeatureUpdated(f.ctx, events.FeatureUpdated{Header: f.header(vaultAddr, 2), Feature: events.FeatureRandomSwap, Enabled: true})
	require.NoError(t, err)
	require.True(t, res.Applied)
	feature, err := f.h.features.Load(f.ctx, events.HexID(vaultAddr))
	require.NoError(t, err)
	assert.True(t, feature.EnableRandomSwap)
	assert.False(t, feature.EnableMint)
}

func TestFeeTransfers(t *testing.T) {
	f := newFixture(t)
	f.newVault(0, vaultAddr)

	in := events.Transfer{Header: f.header(vaultAddr, 50), From: holderAddr, To: distributorAddr, Value: big.NewInt(300)}
	res, err := f.h.HandleTransfer(f.ctx, in)
	require.NoError(t, err)
	require.True(t, res.Applied)
	receipt, err := f.h.feeReceipts.Load(f.ctx, in.TxHash.Hex())
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, int64(300), receipt.Amount.Int64())
	assert.Equal(t, int64(300), f.vault(vaultAddr).TotalFees.Int64())

	out := events.Transfer{Header: f.header(vaultAddr, 60), From: distributorAddr, To: managerAddr, Value: big.NewInt(120)}
	res, err = f.h.HandleTransfer(f.ctx, out)
	require.NoError(t, err)
	require.True(t, res.Applied)
	transfer, err := f.h.feeTransfers.Load(f.ctx, model.JoinID(out.TxHash.Hex(), events.HexID(managerAddr)))
	require.NoError(t, err)
	require.NotNil(t, transfer)
	assert.Equal(t, int64(120), transfer.Amount.Int64())

	res, err = f.h.HandleTransfer(f.ctx, events.Transfer{Header: f.header(vaultAddr, 70), From: holderAddr, To: managerAddr, Value: big.NewInt(1)})
	require.NoError(t, err)
	assert.False(t, res.Applied)
}
