package indexer

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"poolScope/internal/chain"
	"poolScope/internal/model"
)

// buildLogRecord normalizes a chain log. meta may be nil when transaction
// lookups are disabled.
func buildLogRecord(chainID uint64, log types.Log, timestamp uint64, meta *chain.TxMeta, ingestedAt time.Time) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	record := model.LogRecord{
		ChainID:     chainID,
		BlockNumber: log.BlockNumber,
		BlockHash:   log.BlockHash.Hex(),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     uint64(log.TxIndex),
		LogIndex:    uint64(log.Index),
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		Removed:     log.Removed,
		Timestamp:   timestamp,
		IngestedAt:  ingestedAt.UTC().Format(time.RFC3339Nano),
	}
	if meta != nil {
		record.TxFrom = strings.ToLower(meta.From.Hex())
		if meta.GasPrice != nil {
			record.GasPrice = meta.GasPrice.String()
		}
	}
	return record
}
