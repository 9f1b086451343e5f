package indexer

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"poolScope/internal/chain"
	"poolScope/internal/contracts"
	"poolScope/internal/model"
)

var (
	factoryAddr = common.HexToAddress("0x9424b1412450d0f8fc2255faf6046b98213b76bd")
	poolAddr    = common.HexToAddress("0x1eff8af5d577060ba4ac8a29a13525bb0ee2a3d5")
	holderAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	txHashA     = common.HexToHash("0x5c504ed432cb51138bcf09aa5e8a410dd4a1e204ef84bfed1be16dfba1b22060")
)

var errOffline = errors.New("offline")

// offlineReader fails every contract read except token metadata, which falls
// back to defaults the way the real reader does.
type offlineReader struct{}

func (offlineReader) TokenMeta(_ context.Context, token common.Address) model.TokenMeta {
	return model.TokenMeta{Address: token.Hex(), Decimals: 18}
}
func (offlineReader) PoolBalance(context.Context, common.Address, common.Address) (*big.Int, error) {
	return nil, errOffline
}
func (offlineReader) IsCrp(context.Context, common.Address, common.Address) (bool, error) {
	return false, errOffline
}
func (offlineReader) CrpPool(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) CrpController(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) CrpSymbol(context.Context, common.Address) (string, error) {
	return "", errOffline
}
func (offlineReader) CrpName(context.Context, common.Address) (string, error) { return "", errOffline }
func (offlineReader) CrpCap(context.Context, common.Address) (*big.Int, error) {
	return nil, errOffline
}
func (offlineReader) CrpRights(context.Context, common.Address) ([]string, error) {
	return nil, errOffline
}
func (offlineReader) TokenSymbol(context.Context, common.Address) (string, error) {
	return "", errOffline
}
func (offlineReader) TokenName(context.Context, common.Address) (string, error) {
	return "", errOffline
}
func (offlineReader) TotalSupply(context.Context, common.Address) (*big.Int, error) {
	return nil, errOffline
}
func (offlineReader) FeeDistributor(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) FactoryVault(context.Context, common.Address, *big.Int) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) FactoryFees(context.Context, common.Address) (contracts.FlatFees, error) {
	return contracts.FlatFees{}, errOffline
}
func (offlineReader) VaultAssetAddress(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) VaultManager(context.Context, common.Address) (common.Address, error) {
	return common.Address{}, errOffline
}
func (offlineReader) VaultIs1155(context.Context, common.Address) (bool, error) {
	return false, errOffline
}
func (offlineReader) VaultAllowAllItems(context.Context, common.Address) (bool, error) {
	return false, errOffline
}

func topicOf(signature string) common.Hash {
	return crypto.Keccak256Hash([]byte(signature))
}

func addressTopic(addr common.Address) common.Hash {
	return common.BytesToHash(addr.Bytes())
}

func packUint(value int64) []byte {
	typ, _ := abi.NewType("uint256", "", nil)
	out, _ := abi.Arguments{{Type: typ}}.Pack(big.NewInt(value))
	return out
}

func newPoolLog(block uint64, index uint) types.Log {
	return types.Log{
		Address:     factoryAddr,
		Topics:      []common.Hash{topicOf("LOG_NEW_POOL(address,address)"), addressTopic(holderAddr), addressTopic(poolAddr)},
		BlockNumber: block,
		TxHash:      txHashA,
		Index:       index,
	}
}

func mintLog(block uint64, index uint, amount int64) types.Log {
	return types.Log{
		Address:     poolAddr,
		Topics:      []common.Hash{topicOf("Transfer(address,address,uint256)"), addressTopic(common.Address{}), addressTopic(holderAddr)},
		Data:        packUint(amount),
		BlockNumber: block,
		TxHash:      common.BigToHash(big.NewInt(int64(block))),
		Index:       index,
	}
}

func toRecord(log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}
	return model.LogRecord{
		ChainID:     1,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash.Hex(),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Timestamp:   1600000000,
		TxFrom:      holderAddr.Hex(),
		GasPrice:    "1",
	}
}

// fakeSource serves logs from memory and filters them like eth_getLogs.
type fakeSource struct {
	mu      sync.Mutex
	logs    []types.Log
	latest  uint64
	queries [][]common.Address
	txMeta  int
}

func (f *fakeSource) GetChainID(context.Context) (*big.Int, error) { return big.NewInt(1), nil }

func (f *fakeSource) LatestBlockNumber(context.Context) (uint64, error) { return f.latest, nil }

func (f *fakeSource) BlockTimestamp(_ context.Context, number uint64) (uint64, error) {
	return 1600000000 + number, nil
}

func (f *fakeSource) TransactionMeta(context.Context, common.Hash, common.Hash, uint) (chain.TxMeta, error) {
	f.mu.Lock()
	f.txMeta++
	f.mu.Unlock()
	return chain.TxMeta{From: holderAddr, GasPrice: big.NewInt(7)}, nil
}

func (f *fakeSource) FilterLogs(_ context.Context, from, to uint64, addresses []common.Address, _ []common.Hash) ([]types.Log, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, addresses)
	wanted := make(map[common.Address]bool, len(addresses))
	for _, a := range addresses {
		wanted[a] = true
	}
	var out []types.Log
	for _, log := range f.logs {
		if log.BlockNumber >= from && log.BlockNumber <= to && wanted[log.Address] {
			out = append(out, log)
		}
	}
	return out, nil
}

// collectSink records every batch it receives.
type collectSink struct {
	records []model.LogRecord
	batches int
}

func (c *collectSink) PutLogBatch(_ context.Context, logs []model.LogRecord) error {
	c.batches++
	c.records = append(c.records, logs...)
	return nil
}

type errorCollector struct {
	errors []model.DecodeError
}

func (e *errorCollector) PutDecodeError(record model.DecodeError) error {
	e.errors = append(e.errors, record)
	return nil
}
