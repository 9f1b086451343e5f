package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const erc20StringJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "totalSupply", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const erc20Bytes32JSON = `[
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

const bPoolJSON = `[
  {"inputs": [{"name": "token", "type": "address"}], "name": "getBalance", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const crpFactoryJSON = `[
  {"inputs": [{"name": "addr", "type": "address"}], "name": "isCrp", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"}
]`

const crpJSON = `[
  {"inputs": [], "name": "bPool", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "getController", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "string"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "bspCap", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "rights", "outputs": [
    {"name": "canPauseSwapping", "type": "bool"},
    {"name": "canChangeSwapFee", "type": "bool"},
    {"name": "canChangeWeights", "type": "bool"},
    {"name": "canAddRemoveTokens", "type": "bool"},
    {"name": "canWhitelistLPs", "type": "bool"},
    {"name": "canChangeCap", "type": "bool"}
  ], "stateMutability": "view", "type": "function"}
]`

const vaultFactoryJSON = `[
  {"inputs": [], "name": "feeDistributor", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"name": "vaultId", "type": "uint256"}], "name": "vault", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "factoryMintFee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "factoryRandomRedeemFee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "factoryTargetRedeemFee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "factoryRandomSwapFee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "factoryTargetSwapFee", "outputs": [{"type": "uint256"}], "stateMutability": "view", "type": "function"}
]`

const vaultJSON = `[
  {"inputs": [], "name": "assetAddress", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "manager", "outputs": [{"type": "address"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "is1155", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "allowAllItems", "outputs": [{"type": "bool"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	source string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.source))
	})
	return l.parsed, l.err
}

var (
	erc20StringABI  = &lazyABI{source: erc20StringJSON}
	erc20Bytes32ABI = &lazyABI{source: erc20Bytes32JSON}
	bPoolABI        = &lazyABI{source: bPoolJSON}
	crpFactoryABI   = &lazyABI{source: crpFactoryJSON}
	crpABI          = &lazyABI{source: crpJSON}
	vaultFactoryABI = &lazyABI{source: vaultFactoryJSON}
	vaultABI        = &lazyABI{source: vaultJSON}
)
