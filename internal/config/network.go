package config

import (
	"fmt"
	"sort"
	"strings"
)

// Network names the reference token addresses used for pricing and the
// smart-pool factory used to recognise CRP callers.
type Network struct {
	Name       string
	USD        string
	WETH       string
	DAI        string
	CrpFactory string
}

// DefaultNetwork is used when no network is configured.
const DefaultNetwork = "mainnet"

var networks = map[string]Network{
	"mainnet": {
		USD:        "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
		WETH:       "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2",
		DAI:        "0x6b175474e89094c44da98b954eedeac495271d0f",
		CrpFactory: "0xed52d8e202401645edad1c0aa21e872498ce47d0",
	},
	"kovan": {
		USD:        "0x2f375e94fc336cdec2dc0ccb5277fe59cbf1cae5",
		WETH:       "0xd0a1e359811322d97991e03f863a0c30c2cf029c",
		DAI:        "0x1528f3fcc26d13f7079325fb78d9442607781c8c",
		CrpFactory: "0x53265f0e014995363ae54dad7059c018badbcd74",
	},
	"rinkeby": {
		USD:        "0x6c97d2dda691c7eeeffcf7ff561d9cc596c94739",
		WETH:       "0x02ddd013c9c61bdb5f6116446a2cf8557eb05206",
		DAI:        "0xa3fce8597ae238f1050c382f1f94db8c646529a9",
		CrpFactory: "0x7093af13b4fc882e4023b9336cc6097a58eff9b8",
	},
	"ropsten": {
		USD:        "0x749247abed4045e94241184976b9faaaf017f7e3",
		WETH:       "0xb0bf40e9a86361b7bde8c02bcf0c816e9b12eb7f",
		DAI:        "0xb5c07afd9eda52ca699dbbfa85c3a41085221880",
		CrpFactory: "0x745805d6721108c0ea25183b741d47e39d3d80d0",
	},
	"shibuya": {
		USD:        "0xdedba5fb4f998b533ffcbeba5f2c053624fe51e8",
		WETH:       "0xde4539989309d3c59c10a4cf8ce307bc1bacd287",
		DAI:        "0x0457ad7b48d98e3cd463b9f9d14efed56332268d",
		CrpFactory: "0xf43045c6a98da0e018678f110c8d20c726d37062",
	},
	"mumbai": {
		USD:        "0x3c666c26baf19de73f9bacd1453894602d55a162",
		WETH:       "0xd23bbe4386e2a738085990bad5773cc16561b910",
		DAI:        "0x948b2f671242cc12dda4abc7e9fd348f6cfaf3db",
		CrpFactory: "0xf365f2da5df4583015782e4a64f80ad6cce0a7bd",
	},
}

// LookupNetwork returns the address table for name. An empty name selects mainnet.
func LookupNetwork(name string) (Network, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultNetwork
	}
	network, ok := networks[name]
	if !ok {
		return Network{}, fmt.Errorf("unknown network %q (known: %s)", name, strings.Join(NetworkNames(), ", "))
	}
	network.Name = name
	return network, nil
}

// NetworkNames lists the supported networks in sorted order.
func NetworkNames() []string {
	names := make([]string, 0, len(networks))
	for name := range networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsPriceReference reports whether token is the WETH or DAI reference, whose
// own price is only set from a two-token pool priced against USD.
func (n Network) IsPriceReference(token string) bool {
	return token == n.WETH || token == n.DAI
}
