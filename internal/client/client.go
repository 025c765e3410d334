// Package client defines the collaborator contracts the bridge depends on:
// the blockchain client, name-service resolver, analytics sink, persisted
// store, standard-wallet discovery channel, and environment probe. The
// bridge is specified against these interfaces only; implementations live
// with their owners (and in test fakes).
package client

import (
	"context"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// LastWalletKey is the single persisted key: the name of the last
// successfully connected wallet. Written on connect, cleared on disconnect
// and on connect failure; read only by an external auto-reconnect
// bootstrap.
const LastWalletKey = "lastConnectedWallet"

// ChainClient builds and submits transactions through a node connection.
type ChainClient interface {
	// BuildRawTransaction constructs a structured raw transaction from
	// sender, flat payload, and fully resolved options.
	BuildRawTransaction(ctx context.Context, sender txn.AccountAddress, p txn.Payload, o txn.ResolvedOptions) (*txn.RawTransaction, error)

	// SubmitTransaction submits a single-signer signed transaction.
	SubmitTransaction(ctx context.Context, signed *txn.SignedTransaction) (txn.SubmissionResult, error)

	// SubmitMultiAgent submits a signed transaction carrying additional
	// signer authenticators.
	SubmitMultiAgent(ctx context.Context, signed *txn.SignedTransaction, additional []*txn.AccountAuthenticator) (txn.SubmissionResult, error)

	// ChainID reports the chain id of the connected node; used for the
	// dynamic devnet resolution.
	ChainID(ctx context.Context) (uint8, error)
}

// NameResolver resolves a chain address to an optional human-readable
// alias. An empty alias with a nil error means "no alias registered".
type NameResolver interface {
	Resolve(ctx context.Context, address string, network wallet.Network) (string, error)
}

// Analytics accepts fire-and-forget events. Implementations must never
// block the caller and must never return an error into the session flow.
type Analytics interface {
	Record(event string, metadata map[string]string)
}

// Store is the single key-value persistence contract.
type Store interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// DiscoveryChannel yields standard wallets and notifies about wallets
// registering after startup.
type DiscoveryChannel interface {
	// Wallets returns the currently registered standard wallets.
	Wallets() []*wallet.Descriptor

	// OnRegister installs a callback for wallets registering later.
	// The returned function removes the callback.
	OnRegister(cb func(*wallet.Descriptor)) func()
}

// EnvironmentProbe reports facts about the host execution context.
type EnvironmentProbe interface {
	// MobileContext reports a mobile browser context without an injected
	// wallet provider, where connect falls back to deep-linking.
	MobileContext() bool
}
