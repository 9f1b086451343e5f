package events

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Event names reported by Event.Name.
const (
	NameNewPool              = "LOG_NEW_POOL"
	NameSwap                 = "LOG_SWAP"
	NameJoin                 = "LOG_JOIN"
	NameExit                 = "LOG_EXIT"
	NameCall                 = "LOG_CALL"
	NameTransfer             = "Transfer"
	NameOwnershipTransferred = "OwnershipTransferred"
	NameNewVault             = "NewVault"
	NameUpdateFactoryFees    = "UpdateFactoryFees"
	NameUpdateVaultFees      = "UpdateVaultFees"
	NameDisableVaultFees     = "DisableVaultFees"
	NameMinted               = "Minted"
	NameRedeemed             = "Redeemed"
	NameSwapped              = "Swapped"
	NameManagerSet           = "ManagerSet"
)

// Feature names a vault operation toggle.
type Feature string

const (
	FeatureMint         Feature = "mint"
	FeatureRandomRedeem Feature = "randomRedeem"
	FeatureTargetRedeem Feature = "targetRedeem"
	FeatureRandomSwap   Feature = "randomSwap"
	FeatureTargetSwap   Feature = "targetSwap"
)

var featureEvents = map[string]Feature{
	"EnableMintUpdated":         FeatureMint,
	"EnableRandomRedeemUpdated": FeatureRandomRedeem,
	"EnableTargetRedeemUpdated": FeatureTargetRedeem,
	"EnableRandomSwapUpdated":   FeatureRandomSwap,
	"EnableTargetSwapUpdated":   FeatureTargetSwap,
}

// Header carries the log and transaction context every handler needs.
type Header struct {
	Address     common.Address
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint64
	Timestamp   uint64
	From        common.Address
	GasPrice    *big.Int
}

// EventHeader returns the header itself so embedding types satisfy Event.
func (h Header) EventHeader() Header { return h }

// EventID is "<txhash>-<logIndex>".
func (h Header) EventID() string {
	return fmt.Sprintf("%s-%d", h.TxHash.Hex(), h.LogIndex)
}

// HexID lower-cases an address for use as an entity id.
func HexID(addr common.Address) string {
	return strings.ToLower(addr.Hex())
}

// Event is a decoded log.
type Event interface {
	Name() string
	EventHeader() Header
}

type NewPool struct {
	Header
	Caller common.Address
	Pool   common.Address
}

func (NewPool) Name() string { return NameNewPool }

type Swap struct {
	Header
	Caller         common.Address
	TokenIn        common.Address
	TokenOut       common.Address
	TokenAmountIn  *big.Int
	TokenAmountOut *big.Int
}

func (Swap) Name() string { return NameSwap }

type Join struct {
	Header
	Caller        common.Address
	TokenIn       common.Address
	TokenAmountIn *big.Int
}

func (Join) Name() string { return NameJoin }

type Exit struct {
	Header
	Caller         common.Address
	TokenOut       common.Address
	TokenAmountOut *big.Int
}

func (Exit) Name() string { return NameExit }

// Call is an anonymous LOG_CALL record of an administrative pool call.
// Data is the full calldata including the selector.
type Call struct {
	Header
	Sig    [4]byte
	Caller common.Address
	Data   []byte
}

func (Call) Name() string { return NameCall }

type Transfer struct {
	Header
	From  common.Address
	To    common.Address
	Value *big.Int
}

func (Transfer) Name() string { return NameTransfer }

type OwnershipTransferred struct {
	Header
	PreviousOwner common.Address
	NewOwner      common.Address
}

func (OwnershipTransferred) Name() string { return NameOwnershipTransferred }

type NewVault struct {
	Header
	VaultID *big.Int
	Vault   common.Address
	Asset   common.Address
}

func (NewVault) Name() string { return NameNewVault }

// FeeSchedule is the five-fee tuple carried by fee update events.
type FeeSchedule struct {
	MintFee         *big.Int
	RandomRedeemFee *big.Int
	TargetRedeemFee *big.Int
	RandomSwapFee   *big.Int
	TargetSwapFee   *big.Int
}

type UpdateFactoryFees struct {
	Header
	Fees FeeSchedule
}

func (UpdateFactoryFees) Name() string { return NameUpdateFactoryFees }

type UpdateVaultFees struct {
	Header
	VaultID *big.Int
	Fees    FeeSchedule
}

func (UpdateVaultFees) Name() string { return NameUpdateVaultFees }

type DisableVaultFees struct {
	Header
	VaultID *big.Int
}

func (DisableVaultFees) Name() string { return NameDisableVaultFees }

type Minted struct {
	Header
	NftIDs  []*big.Int
	Amounts []*big.Int
	To      common.Address
}

func (Minted) Name() string { return NameMinted }

type Redeemed struct {
	Header
	NftIDs      []*big.Int
	SpecificIDs []*big.Int
	To          common.Address
}

func (Redeemed) Name() string { return NameRedeemed }

type Swapped struct {
	Header
	NftIDs      []*big.Int
	Amounts     []*big.Int
	SpecificIDs []*big.Int
	RedeemedIDs []*big.Int
	To          common.Address
}

func (Swapped) Name() string { return NameSwapped }

type ManagerSet struct {
	Header
	Manager common.Address
}

func (ManagerSet) Name() string { return NameManagerSet }

// FeatureUpdated is any of the Enable*Updated vault events.
type FeatureUpdated struct {
	Header
	Feature Feature
	Enabled bool
}

func (e FeatureUpdated) Name() string {
	return "Enable" + strings.ToUpper(string(e.Feature[:1])) + string(e.Feature[1:]) + "Updated"
}
