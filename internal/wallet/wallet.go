// Package wallet defines wallet descriptors, their capability sets, and the
// account/network values a session binds to.
package wallet

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/halcyonlabs/walletbridge/internal/txn"
)

// ErrUserRejected is returned by a provider capability when the user
// declines a request. Adapters translate it into the typed rejection errors;
// it never crosses the public boundary itself.
var ErrUserRejected = errors.New("user rejected request")

// Generation identifies which protocol generation a wallet speaks.
type Generation uint8

// Protocol generations.
const (
	// GenerationLegacy wallets integrate through a per-wallet plugin
	// convention with flat payloads and serialized signed transactions.
	GenerationLegacy Generation = iota

	// GenerationStandard wallets are discovered through the shared
	// capability-registration protocol and speak structured transactions.
	GenerationStandard
)

// String returns the generation name.
func (g Generation) String() string {
	switch g {
	case GenerationLegacy:
		return "legacy"
	case GenerationStandard:
		return "standard"
	default:
		return "unknown"
	}
}

// ReadyState is the wallet provider readiness lifecycle flag. The uint32
// base makes descriptor state transitions atomic.
type ReadyState uint32

// Readiness states. NotDetected may transition to Installed via the
// detection poll; Unsupported is terminal.
const (
	ReadyStateNotDetected ReadyState = iota
	ReadyStateInstalled
	ReadyStateLoadable
	ReadyStateUnsupported
)

// String returns the readiness state name.
func (r ReadyState) String() string {
	switch r {
	case ReadyStateNotDetected:
		return "not-detected"
	case ReadyStateInstalled:
		return "installed"
	case ReadyStateLoadable:
		return "loadable"
	case ReadyStateUnsupported:
		return "unsupported"
	default:
		return "unknown"
	}
}

// Usable reports whether a wallet in this state may serve session
// operations.
func (r ReadyState) Usable() bool {
	return r == ReadyStateInstalled || r == ReadyStateLoadable
}

// AccountInfo describes the account a wallet exposes. It is owned by the
// session and replaced wholesale on account-change events.
type AccountInfo struct {
	Address   string
	PublicKey []byte
	Alias     string // optional name-service alias
}

// NetworkInfo describes the network a wallet is on. Replaced wholesale on
// network-change events, like AccountInfo.
type NetworkInfo struct {
	Name    Network
	ChainID uint8
	RPCURL  string
}

// Capabilities is the record of optional operation handles a wallet
// provides. The orchestrator checks presence explicitly and falls back to
// internally implemented equivalents; nil means the wallet lacks the
// capability.
type Capabilities struct {
	// Connect requests account access; both generations provide it.
	Connect func(ctx context.Context) (AccountInfo, error)

	// Disconnect revokes the connection.
	Disconnect func(ctx context.Context) error

	// Network reports the provider's current network, bound into the
	// session on connect.
	Network func(ctx context.Context) (NetworkInfo, error)

	// SignPayload signs the older flat-payload shape and returns the
	// legacy serialized signed-transaction bytes (legacy generation, and
	// standard wallets advertising payload compatibility).
	SignPayload func(ctx context.Context, p txn.Payload, o txn.Options) ([]byte, error)

	// SignRaw signs the newer structured shape and returns a modern
	// account authenticator.
	SignRaw func(ctx context.Context, raw *txn.RawTransaction, asFeePayer bool) (*txn.AccountAuthenticator, error)

	// SignPayloadDirect is the documented compatibility mode of some
	// standard wallets: they accept the older flat payload directly and
	// return a modern authenticator, no full transaction build needed.
	SignPayloadDirect func(ctx context.Context, p txn.Payload, o txn.ResolvedOptions) (*txn.AccountAuthenticator, error)

	// SignAndSubmitPayload atomically signs and submits a flat payload.
	SignAndSubmitPayload func(ctx context.Context, p txn.Payload, o txn.Options) (txn.SubmissionResult, error)

	// SignAndSubmitRaw atomically signs and submits a structured
	// transaction.
	SignAndSubmitRaw func(ctx context.Context, raw *txn.RawTransaction) (txn.SubmissionResult, error)

	// SubmitSigned submits an externally signed transaction through the
	// wallet's own node connection.
	SubmitSigned func(ctx context.Context, in txn.SubmitInput) (txn.SubmissionResult, error)

	// SignMessage signs an arbitrary message.
	SignMessage func(ctx context.Context, in txn.MessageInput) (txn.SignedMessage, error)

	// ChangeNetwork asks the wallet to switch networks.
	ChangeNetwork func(ctx context.Context, target NetworkInfo) (NetworkInfo, error)

	// OnAccountChange registers a provider-side account change callback.
	OnAccountChange func(cb func(AccountInfo)) error

	// OnNetworkChange registers a provider-side network change callback.
	OnNetworkChange func(cb func(NetworkInfo)) error

	// OpenInMobileApp deep-links into the wallet's mobile app when no
	// in-page provider is installed.
	OpenInMobileApp func(dappURL string) error

	// DetectProvider probes whether the provider is present in the host
	// environment; used by the readiness poll.
	DetectProvider func() bool
}

// Descriptor describes one wallet known to the registry.
type Descriptor struct {
	Name       string
	Icon       string
	URL        string
	Generation Generation

	// ReadyState may be set directly while the descriptor is still
	// private to its builder; once shared it must go through State and
	// SetState, because the detection poll flips it from its own
	// goroutine.
	ReadyState ReadyState

	Capabilities Capabilities
}

// State atomically loads the readiness state.
func (d *Descriptor) State() ReadyState {
	return ReadyState(atomic.LoadUint32((*uint32)(&d.ReadyState)))
}

// SetState atomically stores the readiness state.
func (d *Descriptor) SetState(s ReadyState) {
	atomic.StoreUint32((*uint32)(&d.ReadyState), uint32(s))
}

// AcceptsPayloadInput reports whether a standard wallet documents the
// compatibility mode accepting the older flat-payload shape directly.
func (d *Descriptor) AcceptsPayloadInput() bool {
	return d.Capabilities.SignPayloadDirect != nil
}

// HasAtomicSignAndSubmit reports whether the wallet can sign and submit in
// one provider call, in either shape.
func (d *Descriptor) HasAtomicSignAndSubmit() bool {
	return d.Capabilities.SignAndSubmitPayload != nil || d.Capabilities.SignAndSubmitRaw != nil
}

// Usable reports whether the wallet can serve session operations right now.
func (d *Descriptor) Usable() bool {
	return d != nil && d.State().Usable()
}

// IsStandard reports whether the wallet speaks the standard protocol.
func (d *Descriptor) IsStandard() bool {
	return d.Generation == GenerationStandard
}
