package model

import "strings"

// Entity kinds used as the first half of a storage key.
const (
	KindFactory         = "Factory"
	KindPool            = "Pool"
	KindPoolToken       = "PoolToken"
	KindPoolShare       = "PoolShare"
	KindCrpPoolShare    = "CrpPoolShare"
	KindTokenPrice      = "TokenPrice"
	KindSwap            = "Swap"
	KindTransaction     = "Transaction"
	KindUser            = "User"
	KindGlobal          = "Global"
	KindVault           = "Vault"
	KindVaultCreator    = "VaultCreator"
	KindAsset           = "Asset"
	KindToken           = "Token"
	KindManager         = "Manager"
	KindFee             = "Fee"
	KindFeature         = "Feature"
	KindHolding         = "Holding"
	KindNftUser         = "NftUser"
	KindMint            = "Mint"
	KindRedeem          = "Redeem"
	KindNftSwap         = "NftSwap"
	KindFeeReceipt      = "FeeReceipt"
	KindFeeTransfer     = "FeeTransfer"
	KindVaultDayData    = "VaultDayData"
	KindVaultHourData   = "VaultHourData"
	KindWatchedContract = "WatchedContract"
)

// JoinID builds a composite id such as "<pool>-<token>".
func JoinID(parts ...string) string {
	return strings.Join(parts, "-")
}

// Contract roles used to route logs to handlers.
const (
	RolePoolFactory  = "pool_factory"
	RolePool         = "pool"
	RoleCrp          = "crp"
	RoleVaultFactory = "vault_factory"
	RoleVault        = "vault"
	// RoleExtra marks contracts fetched on request but not routed to handlers.
	RoleExtra = "extra"
)
