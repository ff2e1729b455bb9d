package paygate

import "fmt"

// Network describes one supported chain: its numeric chain id, CAIP-2
// identifier, and the stablecoin deployment used for payments on it.
// The stablecoin is fixed at 6 decimals on every supported chain.
type Network struct {
	// Key is the registry key used in X-402-Network headers (e.g. "base-mainnet").
	Key string

	// ChainID is the numeric EVM chain id.
	ChainID int64

	// CAIP2 is the chain-agnostic identifier, "eip155:<chainId>".
	CAIP2 string

	// TokenAddress is the stablecoin contract address on this chain.
	TokenAddress string

	// TokenSymbol is the stablecoin symbol.
	TokenSymbol string

	// Decimals is the stablecoin's decimal count (always 6).
	Decimals int

	// EIP712Name and EIP712Version are the stablecoin's EIP-712 domain
	// parameters for transferWithAuthorization signing.
	EIP712Name    string
	EIP712Version string
}

// Supported networks. Token addresses are the official Circle USDC
// deployments, verified on-chain.
var (
	// BaseMainnet is the configuration for Base mainnet.
	BaseMainnet = Network{
		Key:           "base-mainnet",
		ChainID:       8453,
		CAIP2:         "eip155:8453",
		TokenAddress:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		TokenSymbol:   "USDC",
		Decimals:      6,
		EIP712Name:    "USD Coin",
		EIP712Version: "2",
	}

	// BaseSepolia is the configuration for the Base Sepolia testnet.
	BaseSepolia = Network{
		Key:           "base-sepolia",
		ChainID:       84532,
		CAIP2:         "eip155:84532",
		TokenAddress:  "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		TokenSymbol:   "USDC",
		Decimals:      6,
		EIP712Name:    "USD Coin",
		EIP712Version: "2",
	}
)

// networks is the closed registry of supported chains.
var networks = []Network{BaseMainnet, BaseSepolia}

// Networks returns the full registry.
func Networks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)
	return out
}

// NetworkByKey looks up a network by its registry key (e.g. "base-mainnet").
func NetworkByKey(key string) (Network, error) {
	for _, n := range networks {
		if n.Key == key {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, key)
}

// NetworkByCAIP2 looks up a network by its CAIP-2 identifier (e.g. "eip155:8453").
func NetworkByCAIP2(caip2 string) (Network, error) {
	for _, n := range networks {
		if n.CAIP2 == caip2 {
			return n, nil
		}
	}
	return Network{}, fmt.Errorf("%w: %s", ErrUnsupportedNetwork, caip2)
}
