package wallet

import (
	"context"

	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Network names a known chain environment.
type Network string

// Known networks.
const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Devnet  Network = "devnet"
	Local   Network = "local"
)

// Static chain ids. Devnet is absent on purpose: its chain id floats across
// resets and must be fetched from the chain client.
var staticChainIDs = map[Network]uint8{
	Mainnet: 1,
	Testnet: 2,
	Local:   4,
}

// ChainIDFetcher resolves the chain id of the network it is connected to.
// The blockchain-client collaborator implements it.
type ChainIDFetcher interface {
	ChainID(ctx context.Context) (uint8, error)
}

// IsValid reports whether the network is one of the known names.
func (n Network) IsValid() bool {
	switch n {
	case Mainnet, Testnet, Devnet, Local:
		return true
	default:
		return false
	}
}

// SupportsNameService reports whether address aliases can be resolved on
// this network.
func (n Network) SupportsNameService() bool {
	return n == Mainnet || n == Testnet
}

// ResolveChainID returns the chain id for the network, using the static
// table where one exists and the fetcher for devnet.
func (n Network) ResolveChainID(ctx context.Context, fetcher ChainIDFetcher) (uint8, error) {
	if id, ok := staticChainIDs[n]; ok {
		return id, nil
	}
	if n != Devnet {
		return 0, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unknown network %q", string(n))
	}
	if fetcher == nil {
		return 0, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "no chain client to resolve devnet chain id")
	}

	id, err := fetcher.ChainID(ctx)
	if err != nil {
		return 0, bridgeerr.Wrap(err, "fetching devnet chain id")
	}
	return id, nil
}
