package model

import "math/big"

// Global aggregates vault-side state; its id is the network name.
type Global struct {
	ID                    string   `json:"id"`
	TotalHoldings         *big.Int `json:"total_holdings"`
	VaultFactory          string   `json:"vault_factory"`
	FeeDistributorAddress string   `json:"fee_distributor_address"`
	Fees                  string   `json:"fees"`
}

func (Global) EntityKind() string { return KindGlobal }
func (g Global) EntityID() string { return g.ID }

// Vault is an NFT vault issuing fungible tokens against deposits.
type Vault struct {
	ID              string   `json:"id"`
	VaultID         *big.Int `json:"vault_id"`
	Token           string   `json:"token"`
	Asset           string   `json:"asset"`
	Manager         string   `json:"manager"`
	CreatedBy       string   `json:"created_by"`
	CreatedAt       uint64   `json:"created_at"`
	Fees            string   `json:"fees"`
	Features        string   `json:"features"`
	IsFinalized     bool     `json:"is_finalized"`
	Is1155          bool     `json:"is_1155"`
	AllowAllItems   bool     `json:"allow_all_items"`
	UsesFactoryFees bool     `json:"uses_factory_fees"`
	TotalFees       *big.Int `json:"total_fees"`
	AllocTotal      *big.Int `json:"alloc_total"`
	TotalMints      int64    `json:"total_mints"`
	TotalRedeems    int64    `json:"total_redeems"`
	TotalSwaps      int64    `json:"total_swaps"`
	TotalHoldings   *big.Int `json:"total_holdings"`
}

func (Vault) EntityKind() string { return KindVault }
func (v Vault) EntityID() string { return v.ID }

// VaultCreator is an address that deployed a vault.
type VaultCreator struct {
	ID string `json:"id"`
}

func (VaultCreator) EntityKind() string { return KindVaultCreator }
func (c VaultCreator) EntityID() string { return c.ID }

// Asset is the NFT collection a vault accepts.
type Asset struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

func (Asset) EntityKind() string { return KindAsset }
func (a Asset) EntityID() string { return a.ID }

// Token is the fungible vault token.
type Token struct {
	ID          string   `json:"id"`
	Symbol      string   `json:"symbol"`
	Name        string   `json:"name"`
	TotalSupply *big.Int `json:"total_supply"`
}

func (Token) EntityKind() string { return KindToken }
func (t Token) EntityID() string { return t.ID }

// Manager is a vault manager address.
type Manager struct {
	ID string `json:"id"`
}

func (Manager) EntityKind() string { return KindManager }
func (m Manager) EntityID() string { return m.ID }

// Fee holds the fee schedule of a vault or of the factory ("global").
type Fee struct {
	ID              string   `json:"id"`
	MintFee         *big.Int `json:"mint_fee"`
	RandomRedeemFee *big.Int `json:"random_redeem_fee"`
	TargetRedeemFee *big.Int `json:"target_redeem_fee"`
	SwapFee         *big.Int `json:"swap_fee"`
	RandomSwapFee   *big.Int `json:"random_swap_fee"`
	TargetSwapFee   *big.Int `json:"target_swap_fee"`
}

func (Fee) EntityKind() string { return KindFee }
func (f Fee) EntityID() string { return f.ID }

// Feature holds the operation toggles of a vault.
type Feature struct {
	ID                 string `json:"id"`
	EnableMint         bool   `json:"enable_mint"`
	EnableRandomRedeem bool   `json:"enable_random_redeem"`
	EnableTargetRedeem bool   `json:"enable_target_redeem"`
	EnableRandomSwap   bool   `json:"enable_random_swap"`
	EnableTargetSwap   bool   `json:"enable_target_swap"`
}

func (Feature) EntityKind() string { return KindFeature }
func (f Feature) EntityID() string { return f.ID }

// Holding is one NFT id held by a vault; its id is "<hex tokenId>-<vault>".
type Holding struct {
	ID        string   `json:"id"`
	Vault     string   `json:"vault"`
	TokenID   *big.Int `json:"token_id"`
	Amount    *big.Int `json:"amount"`
	DateAdded uint64   `json:"date_added"`
}

func (Holding) EntityKind() string { return KindHolding }
func (h Holding) EntityID() string { return h.ID }

// NftUser is an address that minted, redeemed or swapped through a vault.
type NftUser struct {
	ID string `json:"id"`
}

func (NftUser) EntityKind() string { return KindNftUser }
func (u NftUser) EntityID() string { return u.ID }

// Mint records a deposit of NFTs; its id is the tx hash.
type Mint struct {
	ID      string     `json:"id"`
	Vault   string     `json:"vault"`
	User    string     `json:"user"`
	NftIDs  []*big.Int `json:"nft_ids"`
	Amounts []*big.Int `json:"amounts"`
	Date    uint64     `json:"date"`
}

func (Mint) EntityKind() string { return KindMint }
func (m Mint) EntityID() string { return m.ID }

// Redeem records a withdrawal of NFTs; its id is the tx hash.
type Redeem struct {
	ID          string     `json:"id"`
	Vault       string     `json:"vault"`
	User        string     `json:"user"`
	NftIDs      []*big.Int `json:"nft_ids"`
	SpecificIDs []*big.Int `json:"specific_ids"`
	RandomCount int64      `json:"random_count"`
	TargetCount int64      `json:"target_count"`
	Date        uint64     `json:"date"`
}

func (Redeem) EntityKind() string { return KindRedeem }
func (r Redeem) EntityID() string { return r.ID }

// NftSwap records an exchange of NFTs inside a vault; its id is the tx hash.
type NftSwap struct {
	ID          string     `json:"id"`
	Vault       string     `json:"vault"`
	User        string     `json:"user"`
	NftIDs      []*big.Int `json:"nft_ids"`
	Amounts     []*big.Int `json:"amounts"`
	SpecificIDs []*big.Int `json:"specific_ids"`
	RedeemedIDs []*big.Int `json:"redeemed_ids"`
	Date        uint64     `json:"date"`
}

func (NftSwap) EntityKind() string { return KindNftSwap }
func (s NftSwap) EntityID() string { return s.ID }

// FeeReceipt records vault-token fees paid into the fee distributor.
type FeeReceipt struct {
	ID     string   `json:"id"`
	Vault  string   `json:"vault"`
	Amount *big.Int `json:"amount"`
	Date   uint64   `json:"date"`
}

func (FeeReceipt) EntityKind() string { return KindFeeReceipt }
func (r FeeReceipt) EntityID() string { return r.ID }

// FeeTransfer records vault-token fees paid out of the fee distributor.
type FeeTransfer struct {
	ID     string   `json:"id"`
	Vault  string   `json:"vault"`
	To     string   `json:"to"`
	Amount *big.Int `json:"amount"`
	Date   uint64   `json:"date"`
}

func (FeeTransfer) EntityKind() string { return KindFeeTransfer }
func (t FeeTransfer) EntityID() string { return t.ID }

// VaultWindowData is a per-vault rollup over a fixed time bucket.
type VaultWindowData struct {
	ID            string   `json:"id"`
	Vault         string   `json:"vault"`
	Date          uint64   `json:"date"`
	MintsCount    int64    `json:"mints_count"`
	RedeemsCount  int64    `json:"redeems_count"`
	SwapsCount    int64    `json:"swaps_count"`
	HoldingsCount *big.Int `json:"holdings_count"`
	TotalMints    int64    `json:"total_mints"`
	TotalRedeems  int64    `json:"total_redeems"`
	TotalSwaps    int64    `json:"total_swaps"`
	TotalHoldings *big.Int `json:"total_holdings"`
}

func (w VaultWindowData) EntityID() string { return w.ID }

// VaultDayData is the daily rollup; its id is "<day>-<vault>".
type VaultDayData struct {
	VaultWindowData
}

func (VaultDayData) EntityKind() string { return KindVaultDayData }

// VaultHourData is the hourly rollup; its id is "<hour>-<vault>".
type VaultHourData struct {
	VaultWindowData
}

func (VaultHourData) EntityKind() string { return KindVaultHourData }

// WatchedContract is a contract the indexer routes logs for.
type WatchedContract struct {
	ID         string `json:"id"`
	Role       string `json:"role"`
	StartBlock uint64 `json:"start_block"`
}

func (WatchedContract) EntityKind() string { return KindWatchedContract }
func (c WatchedContract) EntityID() string { return c.ID }
