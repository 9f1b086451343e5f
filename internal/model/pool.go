package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FactoryID is the id of the singleton pool-side aggregate.
const FactoryID = "1"

// Factory aggregates counters and totals across all pools.
type Factory struct {
	ID                 string          `json:"id"`
	PoolCount          int64           `json:"pool_count"`
	FinalizedPoolCount int64           `json:"finalized_pool_count"`
	CrpCount           int64           `json:"crp_count"`
	TxCount            int64           `json:"tx_count"`
	TotalLiquidity     decimal.Decimal `json:"total_liquidity"`
	TotalSwapVolume    decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee       decimal.Decimal `json:"total_swap_fee"`
}

func (Factory) EntityKind() string { return KindFactory }
func (f Factory) EntityID() string { return f.ID }

// Pool is a weighted AMM pool.
type Pool struct {
	ID              string          `json:"id"`
	Controller      string          `json:"controller"`
	Crp             bool            `json:"crp"`
	CrpController   string          `json:"crp_controller,omitempty"`
	Symbol          string          `json:"symbol,omitempty"`
	Name            string          `json:"name,omitempty"`
	Rights          []string        `json:"rights"`
	Cap             *big.Int        `json:"cap,omitempty"`
	Active          bool            `json:"active"`
	PublicSwap      bool            `json:"public_swap"`
	Finalized       bool            `json:"finalized"`
	SwapFee         decimal.Decimal `json:"swap_fee"`
	TotalWeight     decimal.Decimal `json:"total_weight"`
	TotalShares     decimal.Decimal `json:"total_shares"`
	TotalSwapVolume decimal.Decimal `json:"total_swap_volume"`
	TotalSwapFee    decimal.Decimal `json:"total_swap_fee"`
	Liquidity       decimal.Decimal `json:"liquidity"`
	TokensList      []string        `json:"tokens_list"`
	TokensCount     int64           `json:"tokens_count"`
	HoldersCount    int64           `json:"holders_count"`
	JoinsCount      int64           `json:"joins_count"`
	ExitsCount      int64           `json:"exits_count"`
	SwapsCount      int64           `json:"swaps_count"`
	CreatedAt       uint64          `json:"created_at"`
	CreatedAtBlock  uint64          `json:"created_at_block"`
	Tx              string          `json:"tx"`
}

func (Pool) EntityKind() string { return KindPool }
func (p Pool) EntityID() string { return p.ID }

// HasToken reports whether the token address is in the pool's token list.
func (p Pool) HasToken(token string) bool {
	for _, t := range p.TokensList {
		if t == token {
			return true
		}
	}
	return false
}

// PoolToken is a token bound to a pool; its id is "<pool>-<token>".
type PoolToken struct {
	ID           string          `json:"id"`
	PoolID       string          `json:"pool_id"`
	Address      string          `json:"address"`
	Symbol       string          `json:"symbol"`
	Name         string          `json:"name"`
	Decimals     int             `json:"decimals"`
	Balance      decimal.Decimal `json:"balance"`
	DenormWeight decimal.Decimal `json:"denorm_weight"`
}

func (PoolToken) EntityKind() string { return KindPoolToken }
func (t PoolToken) EntityID() string { return t.ID }

// PoolShare is a holder's pool-token balance; its id is "<pool>-<holder>".
type PoolShare struct {
	ID          string          `json:"id"`
	PoolID      string          `json:"pool_id"`
	UserAddress string          `json:"user_address"`
	Balance     decimal.Decimal `json:"balance"`
}

func (PoolShare) EntityKind() string { return KindPoolShare }
func (s PoolShare) EntityID() string { return s.ID }

// CrpPoolShare is a holder's balance of a smart pool's own token.
type CrpPoolShare PoolShare

func (CrpPoolShare) EntityKind() string { return KindCrpPoolShare }
func (s CrpPoolShare) EntityID() string { return s.ID }

// TokenPrice is the derived unit price of a token, keyed by token address.
type TokenPrice struct {
	ID            string          `json:"id"`
	Symbol        string          `json:"symbol"`
	Name          string          `json:"name"`
	Decimals      int             `json:"decimals"`
	Price         decimal.Decimal `json:"price"`
	PoolLiquidity decimal.Decimal `json:"pool_liquidity"`
	PoolTokenID   string          `json:"pool_token_id"`
}

func (TokenPrice) EntityKind() string { return KindTokenPrice }
func (p TokenPrice) EntityID() string { return p.ID }

// Swap records a single trade; its id is "<txhash>-<logIndex>".
type Swap struct {
	ID                  string          `json:"id"`
	Caller              string          `json:"caller"`
	TokenIn             string          `json:"token_in"`
	TokenInSym          string          `json:"token_in_sym"`
	TokenOut            string          `json:"token_out"`
	TokenOutSym         string          `json:"token_out_sym"`
	TokenAmountIn       decimal.Decimal `json:"token_amount_in"`
	TokenAmountOut      decimal.Decimal `json:"token_amount_out"`
	PoolAddress         string          `json:"pool_address"`
	UserAddress         string          `json:"user_address"`
	PoolTotalSwapVolume decimal.Decimal `json:"pool_total_swap_volume"`
	PoolTotalSwapFee    decimal.Decimal `json:"pool_total_swap_fee"`
	PoolLiquidity       decimal.Decimal `json:"pool_liquidity"`
	Value               decimal.Decimal `json:"value"`
	FeeValue            decimal.Decimal `json:"fee_value"`
	Timestamp           uint64          `json:"timestamp"`
}

func (Swap) EntityKind() string { return KindSwap }
func (s Swap) EntityID() string { return s.ID }

// Transaction is the audit record written for every pool mutation.
type Transaction struct {
	ID          string          `json:"id"`
	Tx          string          `json:"tx"`
	Event       string          `json:"event"`
	Block       uint64          `json:"block"`
	Timestamp   uint64          `json:"timestamp"`
	GasUsed     decimal.Decimal `json:"gas_used"`
	GasPrice    decimal.Decimal `json:"gas_price"`
	PoolAddress string          `json:"pool_address"`
	UserAddress string          `json:"user_address"`
}

func (Transaction) EntityKind() string { return KindTransaction }
func (t Transaction) EntityID() string { return t.ID }

// User is any address seen interacting with a pool.
type User struct {
	ID string `json:"id"`
}

func (User) EntityKind() string { return KindUser }
func (u User) EntityID() string { return u.ID }
