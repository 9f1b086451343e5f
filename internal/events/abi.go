package events

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const eventsABIJSON = `[
  {"anonymous": false, "name": "LOG_NEW_POOL", "type": "event", "inputs": [
    {"indexed": true, "name": "caller", "type": "address"},
    {"indexed": true, "name": "pool", "type": "address"}
  ]},
  {"anonymous": false, "name": "LOG_SWAP", "type": "event", "inputs": [
    {"indexed": true, "name": "caller", "type": "address"},
    {"indexed": true, "name": "tokenIn", "type": "address"},
    {"indexed": true, "name": "tokenOut", "type": "address"},
    {"indexed": false, "name": "tokenAmountIn", "type": "uint256"},
    {"indexed": false, "name": "tokenAmountOut", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "LOG_JOIN", "type": "event", "inputs": [
    {"indexed": true, "name": "caller", "type": "address"},
    {"indexed": true, "name": "tokenIn", "type": "address"},
    {"indexed": false, "name": "tokenAmountIn", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "LOG_EXIT", "type": "event", "inputs": [
    {"indexed": true, "name": "caller", "type": "address"},
    {"indexed": true, "name": "tokenOut", "type": "address"},
    {"indexed": false, "name": "tokenAmountOut", "type": "uint256"}
  ]},
  {"anonymous": true, "name": "LOG_CALL", "type": "event", "inputs": [
    {"indexed": true, "name": "sig", "type": "bytes4"},
    {"indexed": true, "name": "caller", "type": "address"},
    {"indexed": false, "name": "data", "type": "bytes"}
  ]},
  {"anonymous": false, "name": "Transfer", "type": "event", "inputs": [
    {"indexed": true, "name": "src", "type": "address"},
    {"indexed": true, "name": "dst", "type": "address"},
    {"indexed": false, "name": "amt", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "OwnershipTransferred", "type": "event", "inputs": [
    {"indexed": true, "name": "previousOwner", "type": "address"},
    {"indexed": true, "name": "newOwner", "type": "address"}
  ]},
  {"anonymous": false, "name": "NewVault", "type": "event", "inputs": [
    {"indexed": true, "name": "vaultId", "type": "uint256"},
    {"indexed": false, "name": "vaultAddress", "type": "address"},
    {"indexed": false, "name": "assetAddress", "type": "address"}
  ]},
  {"anonymous": false, "name": "UpdateFactoryFees", "type": "event", "inputs": [
    {"indexed": false, "name": "mintFee", "type": "uint256"},
    {"indexed": false, "name": "randomRedeemFee", "type": "uint256"},
    {"indexed": false, "name": "targetRedeemFee", "type": "uint256"},
    {"indexed": false, "name": "randomSwapFee", "type": "uint256"},
    {"indexed": false, "name": "targetSwapFee", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "UpdateVaultFees", "type": "event", "inputs": [
    {"indexed": true, "name": "vaultId", "type": "uint256"},
    {"indexed": false, "name": "mintFee", "type": "uint256"},
    {"indexed": false, "name": "randomRedeemFee", "type": "uint256"},
    {"indexed": false, "name": "targetRedeemFee", "type": "uint256"},
    {"indexed": false, "name": "randomSwapFee", "type": "uint256"},
    {"indexed": false, "name": "targetSwapFee", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "DisableVaultFees", "type": "event", "inputs": [
    {"indexed": true, "name": "vaultId", "type": "uint256"}
  ]},
  {"anonymous": false, "name": "Minted", "type": "event", "inputs": [
    {"indexed": false, "name": "nftIds", "type": "uint256[]"},
    {"indexed": false, "name": "amounts", "type": "uint256[]"},
    {"indexed": false, "name": "to", "type": "address"}
  ]},
  {"anonymous": false, "name": "Redeemed", "type": "event", "inputs": [
    {"indexed": false, "name": "nftIds", "type": "uint256[]"},
    {"indexed": false, "name": "specificIds", "type": "uint256[]"},
    {"indexed": false, "name": "to", "type": "address"}
  ]},
  {"anonymous": false, "name": "Swapped", "type": "event", "inputs": [
    {"indexed": false, "name": "nftIds", "type": "uint256[]"},
    {"indexed": false, "name": "amounts", "type": "uint256[]"},
    {"indexed": false, "name": "specificIds", "type": "uint256[]"},
    {"indexed": false, "name": "redeemedIds", "type": "uint256[]"},
    {"indexed": false, "name": "to", "type": "address"}
  ]},
  {"anonymous": false, "name": "ManagerSet", "type": "event", "inputs": [
    {"indexed": false, "name": "manager", "type": "address"}
  ]},
  {"anonymous": false, "name": "EnableMintUpdated", "type": "event", "inputs": [
    {"indexed": false, "name": "enabled", "type": "bool"}
  ]},
  {"anonymous": false, "name": "EnableRandomRedeemUpdated", "type": "event", "inputs": [
    {"indexed": false, "name": "enabled", "type": "bool"}
  ]},
  {"anonymous": false, "name": "EnableTargetRedeemUpdated", "type": "event", "inputs": [
    {"indexed": false, "name": "enabled", "type": "bool"}
  ]},
  {"anonymous": false, "name": "EnableRandomSwapUpdated", "type": "event", "inputs": [
    {"indexed": false, "name": "enabled", "type": "bool"}
  ]},
  {"anonymous": false, "name": "EnableTargetSwapUpdated", "type": "event", "inputs": [
    {"indexed": false, "name": "enabled", "type": "bool"}
  ]}
]`

var (
	eventsABI     abi.ABI
	eventsABIOnce sync.Once
	eventsABIErr  error
)

// ABI returns the parsed event ABI shared by pool, smart-pool, and vault contracts.
func ABI() (abi.ABI, error) {
	eventsABIOnce.Do(func() {
		eventsABI, eventsABIErr = abi.JSON(strings.NewReader(eventsABIJSON))
	})
	return eventsABI, eventsABIErr
}
