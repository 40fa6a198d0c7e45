// Package chains holds the static registry of EVM networks the benchmarking
// service knows how to talk to.
package chains

import (
	"fmt"
	"strings"
)

// Kind classifies how a network settles transactions.
type Kind string

const (
	KindL1        Kind = "l1"
	KindRollup    Kind = "rollup"
	KindSidechain Kind = "sidechain"
)

// Network describes a single EVM-compatible chain.
type Network struct {
	// Slug is the stable identifier used in API paths and stored records
	Slug string `json:"slug"`

	// Human-readable display name
	Name string `json:"name"`

	// EVM chain ID, also the chainid parameter for Etherscan V2
	ChainID uint64 `json:"chain_id"`

	Kind Kind `json:"kind"`

	// Symbol of the token gas is paid in (ETH, MATIC, AVAX, ...)
	NativeSymbol string `json:"native_symbol"`

	// Default JSON-RPC endpoint used by the fallback oracle
	RPCEndpoint string `json:"rpc_endpoint"`

	// GasMultiplier scales quoted gas for networks that charge extra
	// data-availability overhead on top of execution gas
	GasMultiplier float64 `json:"gas_multiplier"`

	// FallbackUSD is used for USD normalization when no price feed
	// covers the native token
	FallbackUSD float64 `json:"fallback_usd,omitempty"`

	Testnet bool `json:"testnet,omitempty"`
	Enabled bool `json:"enabled"`
}

// registry lists every network the service ships support for. Entries can be
// toggled or overridden through configuration at startup.
var registry = []Network{
	{Slug: "ethereum", Name: "Ethereum", ChainID: 1, Kind: KindL1, NativeSymbol: "ETH", RPCEndpoint: "https://eth.llamarpc.com", GasMultiplier: 1.0, Enabled: true},
	{Slug: "arbitrum", Name: "Arbitrum One", ChainID: 42161, Kind: KindRollup, NativeSymbol: "ETH", RPCEndpoint: "https://arb1.arbitrum.io/rpc", GasMultiplier: 1.12, Enabled: true},
	{Slug: "optimism", Name: "OP Mainnet", ChainID: 10, Kind: KindRollup, NativeSymbol: "ETH", RPCEndpoint: "https://mainnet.optimism.io", GasMultiplier: 1.05, Enabled: true},
	{Slug: "base", Name: "Base", ChainID: 8453, Kind: KindRollup, NativeSymbol: "ETH", RPCEndpoint: "https://mainnet.base.org", GasMultiplier: 1.05, Enabled: true},
	{Slug: "polygon", Name: "Polygon PoS", ChainID: 137, Kind: KindSidechain, NativeSymbol: "POL", RPCEndpoint: "https://polygon-rpc.com", GasMultiplier: 1.0, FallbackUSD: 0.40, Enabled: true},
	{Slug: "avalanche", Name: "Avalanche C-Chain", ChainID: 43114, Kind: KindL1, NativeSymbol: "AVAX", RPCEndpoint: "https://api.avax.network/ext/bc/C/rpc", GasMultiplier: 1.0, FallbackUSD: 25.0, Enabled: true},
	{Slug: "bsc", Name: "BNB Smart Chain", ChainID: 56, Kind: KindL1, NativeSymbol: "BNB", RPCEndpoint: "https://bsc-dataseed.binance.org", GasMultiplier: 1.0, FallbackUSD: 550.0, Enabled: true},
	{Slug: "sepolia", Name: "Sepolia", ChainID: 11155111, Kind: KindL1, NativeSymbol: "ETH", RPCEndpoint: "https://rpc.sepolia.org", GasMultiplier: 1.0, Testnet: true, Enabled: false},
}

// BySlug returns the network for a slug, case-insensitively.
func BySlug(slug string) (Network, error) {
	s := strings.ToLower(strings.TrimSpace(slug))
	for _, n := range registry {
		if n.Slug == s {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("unknown network %q", slug)
}

// ByChainID returns the network registered under an EVM chain ID.
func ByChainID(chainID uint64) (Network, error) {
	for _, n := range registry {
		if n.ChainID == chainID {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("unknown chain id %d", chainID)
}

// Enabled returns every enabled network, optionally including testnets.
func Enabled(includeTestnets bool) []Network {
	out := make([]Network, 0, len(registry))
	for _, n := range registry {
		if !n.Enabled {
			continue
		}
		if n.Testnet && !includeTestnets {
			continue
		}
		out = append(out, n)
	}
	return out
}

// All returns the full registry, including disabled entries.
func All() []Network {
	out := make([]Network, len(registry))
	copy(out, registry)
	return out
}

// Slugs returns the slugs of the given networks, preserving order.
func Slugs(networks []Network) []string {
	slugs := make([]string, len(networks))
	for i, n := range networks {
		slugs[i] = n.Slug
	}
	return slugs
}
