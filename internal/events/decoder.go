package events

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"poolScope/internal/model"
)

// ErrUnknownEvent is returned for logs whose topic0 is not handled.
var ErrUnknownEvent = errors.New("unknown event")

// Decoder turns stored log records into typed events.
type Decoder struct {
	abi     abi.ABI
	logCall abi.Event
}

// NewDecoder parses the event ABI and resolves the LOG_CALL event.
func NewDecoder() (*Decoder, error) {
	parsed, err := ABI()
	if err != nil {
		return nil, fmt.Errorf("parse events abi: %w", err)
	}
	logCall, ok := parsed.Events[NameCall]
	if !ok {
		return nil, fmt.Errorf("events abi has no %s", NameCall)
	}
	return &Decoder{abi: parsed, logCall: logCall}, nil
}

// Decode converts one log record. Removed logs are rejected.
func (d *Decoder) Decode(record model.LogRecord) (Event, error) {
	if record.Removed {
		return nil, fmt.Errorf("log %s:%d was removed by a reorg", record.TxHash, record.LogIndex)
	}
	if len(record.Topics) == 0 {
		return nil, fmt.Errorf("%w: no topics", ErrUnknownEvent)
	}

	topics := make([]common.Hash, 0, len(record.Topics))
	for _, topic := range record.Topics {
		topics = append(topics, common.HexToHash(topic))
	}
	data, err := hexutil.Decode(normalizeHex(record.Data))
	if err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	header, err := buildHeader(record)
	if err != nil {
		return nil, err
	}

	if event, err := d.abi.EventByID(topics[0]); err == nil {
		fields, err := d.unpack(*event, topics[1:], data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", event.Name, err)
		}
		return buildEvent(event.Name, header, fields)
	}

	if isLogCall(topics[0]) {
		fields, err := d.unpack(d.logCall, topics, data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", NameCall, err)
		}
		return buildEvent(NameCall, header, fields)
	}

	return nil, fmt.Errorf("%w: topic0 %s", ErrUnknownEvent, topics[0].Hex())
}

func (d *Decoder) unpack(event abi.Event, topics []common.Hash, data []byte) (map[string]interface{}, error) {
	fields := make(map[string]interface{})
	nonIndexed := event.Inputs.NonIndexed()
	if len(nonIndexed) > 0 {
		if err := nonIndexed.UnpackIntoMap(fields, data); err != nil {
			return nil, fmt.Errorf("unpack data: %w", err)
		}
	}

	var indexed abi.Arguments
	for _, arg := range event.Inputs {
		if arg.Indexed {
			indexed = append(indexed, arg)
		}
	}
	if len(topics) < len(indexed) {
		return nil, fmt.Errorf("expected %d indexed topics, got %d", len(indexed), len(topics))
	}
	if len(indexed) > 0 {
		if err := abi.ParseTopicsIntoMap(fields, indexed, topics[:len(indexed)]); err != nil {
			return nil, fmt.Errorf("parse topics: %w", err)
		}
	}
	return fields, nil
}

// isLogCall matches the anonymous LOG_CALL topic0: a known selector
// left-aligned in an otherwise zero word.
func isLogCall(topic common.Hash) bool {
	var sig [4]byte
	copy(sig[:], topic[:4])
	if _, ok := CallName(sig); !ok {
		return false
	}
	for _, b := range topic[4:] {
		if b != 0 {
			return false
		}
	}
	return true
}

func buildHeader(record model.LogRecord) (Header, error) {
	if !common.IsHexAddress(record.Address) {
		return Header{}, fmt.Errorf("invalid log address %q", record.Address)
	}
	header := Header{
		Address:     common.HexToAddress(record.Address),
		BlockNumber: record.BlockNumber,
		TxHash:      common.HexToHash(record.TxHash),
		LogIndex:    record.LogIndex,
		Timestamp:   record.Timestamp,
	}
	if record.TxFrom != "" {
		header.From = common.HexToAddress(record.TxFrom)
	}
	if record.GasPrice != "" {
		price, ok := new(big.Int).SetString(record.GasPrice, 10)
		if !ok {
			return Header{}, fmt.Errorf("invalid gas price %q", record.GasPrice)
		}
		header.GasPrice = price
	}
	return header, nil
}

func buildEvent(name string, header Header, f map[string]interface{}) (Event, error) {
	var err error
	get := fieldReader{fields: f, err: &err}

	var event Event
	switch name {
	case NameNewPool:
		event = NewPool{Header: header, Caller: get.address("caller"), Pool: get.address("pool")}
	case NameSwap:
		event = Swap{
			Header:         header,
			Caller:         get.address("caller"),
			TokenIn:        get.address("tokenIn"),
			TokenOut:       get.address("tokenOut"),
			TokenAmountIn:  get.bigInt("tokenAmountIn"),
			TokenAmountOut: get.bigInt("tokenAmountOut"),
		}
	case NameJoin:
		event = Join{Header: header, Caller: get.address("caller"), TokenIn: get.address("tokenIn"), TokenAmountIn: get.bigInt("tokenAmountIn")}
	case NameExit:
		event = Exit{Header: header, Caller: get.address("caller"), TokenOut: get.address("tokenOut"), TokenAmountOut: get.bigInt("tokenAmountOut")}
	case NameCall:
		event = Call{Header: header, Sig: get.bytes4("sig"), Caller: get.address("caller"), Data: get.bytes("data")}
	case NameTransfer:
		event = Transfer{Header: header, From: get.address("src"), To: get.address("dst"), Value: get.bigInt("amt")}
	case NameOwnershipTransferred:
		event = OwnershipTransferred{Header: header, PreviousOwner: get.address("previousOwner"), NewOwner: get.address("newOwner")}
	case NameNewVault:
		event = NewVault{Header: header, VaultID: get.bigInt("vaultId"), Vault: get.address("vaultAddress"), Asset: get.address("assetAddress")}
	case NameUpdateFactoryFees:
		event = UpdateFactoryFees{Header: header, Fees: get.fees()}
	case NameUpdateVaultFees:
		event = UpdateVaultFees{Header: header, VaultID: get.bigInt("vaultId"), Fees: get.fees()}
	case NameDisableVaultFees:
		event = DisableVaultFees{Header: header, VaultID: get.bigInt("vaultId")}
	case NameMinted:
		event = Minted{Header: header, NftIDs: get.bigInts("nftIds"), Amounts: get.bigInts("amounts"), To: get.address("to")}
	case NameRedeemed:
		event = Redeemed{Header: header, NftIDs: get.bigInts("nftIds"), SpecificIDs: get.bigInts("specificIds"), To: get.address("to")}
	case NameSwapped:
		event = Swapped{
			Header:      header,
			NftIDs:      get.bigInts("nftIds"),
			Amounts:     get.bigInts("amounts"),
			SpecificIDs: get.bigInts("specificIds"),
			RedeemedIDs: get.bigInts("redeemedIds"),
			To:          get.address("to"),
		}
	case NameManagerSet:
		event = ManagerSet{Header: header, Manager: get.address("manager")}
	default:
		feature, ok := featureEvents[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, name)
		}
		event = FeatureUpdated{Header: header, Feature: feature, Enabled: get.boolean("enabled")}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return event, nil
}

// fieldReader extracts typed values from an unpacked map, keeping the first error.
type fieldReader struct {
	fields map[string]interface{}
	err    *error
}

func (r fieldReader) fail(key string, value interface{}) {
	if *r.err == nil {
		*r.err = fmt.Errorf("field %s: unexpected type %T", key, value)
	}
}

func (r fieldReader) address(key string) common.Address {
	v, ok := r.fields[key].(common.Address)
	if !ok {
		r.fail(key, r.fields[key])
	}
	return v
}

func (r fieldReader) bigInt(key string) *big.Int {
	v, ok := r.fields[key].(*big.Int)
	if !ok {
		r.fail(key, r.fields[key])
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func (r fieldReader) bigInts(key string) []*big.Int {
	v, ok := r.fields[key].([]*big.Int)
	if !ok {
		r.fail(key, r.fields[key])
		return nil
	}
	out := make([]*big.Int, len(v))
	for i, n := range v {
		out[i] = new(big.Int).Set(n)
	}
	return out
}

func (r fieldReader) bytes(key string) []byte {
	v, ok := r.fields[key].([]byte)
	if !ok {
		r.fail(key, r.fields[key])
	}
	return v
}

func (r fieldReader) bytes4(key string) [4]byte {
	v, ok := r.fields[key].([4]byte)
	if !ok {
		r.fail(key, r.fields[key])
	}
	return v
}

func (r fieldReader) boolean(key string) bool {
	v, ok := r.fields[key].(bool)
	if !ok {
		r.fail(key, r.fields[key])
	}
	return v
}

func (r fieldReader) fees() FeeSchedule {
	return FeeSchedule{
		MintFee:         r.bigInt("mintFee"),
		RandomRedeemFee: r.bigInt("randomRedeemFee"),
		TargetRedeemFee: r.bigInt("targetRedeemFee"),
		RandomSwapFee:   r.bigInt("randomSwapFee"),
		TargetSwapFee:   r.bigInt("targetSwapFee"),
	}
}

func normalizeHex(value string) string {
	if value == "" || value == "0x" {
		return "0x"
	}
	if !strings.HasPrefix(value, "0x") && !strings.HasPrefix(value, "0X") {
		return "0x" + value
	}
	return value
}
