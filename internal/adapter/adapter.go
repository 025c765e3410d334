// Package adapter implements the two protocol-generation adapters behind
// one capability contract. The legacy adapter speaks the older flat-payload
// shape and serialized signed transactions; the standard adapter speaks
// structured transactions. Both accept either input shape at the
// orchestration boundary and convert through the transaction pipeline.
package adapter

import (
	"context"
	"errors"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Adapter is the single operation contract both protocol generations
// implement. Every method fails with a typed error when the underlying
// provider rejects or errors; raw provider errors never escape.
type Adapter interface {
	// Connect requests account access. User rejection surfaces as
	// ErrConnectionRejected, distinct from provider failures.
	Connect(ctx context.Context, d *wallet.Descriptor) (wallet.AccountInfo, error)

	// Disconnect revokes the connection.
	Disconnect(ctx context.Context, d *wallet.Descriptor) error

	// Network reports the provider's current network.
	Network(ctx context.Context, d *wallet.Descriptor) (wallet.NetworkInfo, error)

	// SignTransaction signs either input shape and returns a modern
	// account authenticator. sender is the bound session account, used
	// when a flat payload must be built into a full transaction.
	SignTransaction(ctx context.Context, d *wallet.Descriptor, sender txn.AccountAddress, in txn.SignInput, asFeePayer bool) (*txn.AccountAuthenticator, error)

	// SignAndSubmit atomically signs and submits through the provider.
	SignAndSubmit(ctx context.Context, d *wallet.Descriptor, req txn.SubmitRequest) (txn.SubmissionResult, error)

	// SignMessage signs an arbitrary message payload.
	SignMessage(ctx context.Context, d *wallet.Descriptor, in txn.MessageInput) (txn.SignedMessage, error)

	// Submit submits an externally signed transaction through the
	// provider's own node connection.
	Submit(ctx context.Context, d *wallet.Descriptor, in txn.SubmitInput) (txn.SubmissionResult, error)

	// SubscribeAccountChange registers a provider account-change callback.
	SubscribeAccountChange(d *wallet.Descriptor, cb func(wallet.AccountInfo)) error

	// SubscribeNetworkChange registers a provider network-change callback.
	SubscribeNetworkChange(d *wallet.Descriptor, cb func(wallet.NetworkInfo)) error

	// ChangeNetwork asks the wallet to switch networks. User rejection
	// surfaces as ErrNetworkChangeRejected, distinct from
	// ErrNetworkChangeUnsupported for wallets lacking the capability.
	ChangeNetwork(ctx context.Context, d *wallet.Descriptor, target wallet.NetworkInfo) (wallet.NetworkInfo, error)
}

// connect performs the shared connect/network handshake for both
// generations.
func connect(ctx context.Context, d *wallet.Descriptor) (wallet.AccountInfo, error) {
	if d.Capabilities.Connect == nil {
		return wallet.AccountInfo{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "connect"})
	}

	account, err := d.Capabilities.Connect(ctx)
	if err != nil {
		if errors.Is(err, wallet.ErrUserRejected) {
			return wallet.AccountInfo{}, bridgeerr.Normalize(bridgeerr.ErrConnectionRejected, err)
		}
		return wallet.AccountInfo{}, bridgeerr.Normalize(bridgeerr.ErrConnectionFailed, err)
	}
	return account, nil
}

func disconnect(ctx context.Context, d *wallet.Descriptor) error {
	if d.Capabilities.Disconnect == nil {
		return bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "disconnect"})
	}
	if err := d.Capabilities.Disconnect(ctx); err != nil {
		return bridgeerr.Normalize(bridgeerr.ErrDisconnectionFailed, err)
	}
	return nil
}

func network(ctx context.Context, d *wallet.Descriptor) (wallet.NetworkInfo, error) {
	if d.Capabilities.Network == nil {
		return wallet.NetworkInfo{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "network"})
	}
	info, err := d.Capabilities.Network(ctx)
	if err != nil {
		return wallet.NetworkInfo{}, bridgeerr.Normalize(bridgeerr.ErrConnectionFailed, err)
	}
	return info, nil
}

func signMessage(ctx context.Context, d *wallet.Descriptor, in txn.MessageInput) (txn.SignedMessage, error) {
	if d.Capabilities.SignMessage == nil {
		return txn.SignedMessage{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "signMessage"})
	}
	msg, err := d.Capabilities.SignMessage(ctx, in)
	if err != nil {
		return txn.SignedMessage{}, bridgeerr.Normalize(bridgeerr.ErrSignMessageFailed, err)
	}
	return msg, nil
}

func submit(ctx context.Context, d *wallet.Descriptor, in txn.SubmitInput) (txn.SubmissionResult, error) {
	if d.Capabilities.SubmitSigned == nil {
		return txn.SubmissionResult{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "submitTransaction"})
	}
	if err := in.Validate(); err != nil {
		return txn.SubmissionResult{}, err
	}
	res, err := d.Capabilities.SubmitSigned(ctx, in)
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSubmitFailed, err)
	}
	return res, nil
}

func subscribeAccountChange(d *wallet.Descriptor, cb func(wallet.AccountInfo)) error {
	if d.Capabilities.OnAccountChange == nil {
		return bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "onAccountChange"})
	}
	if err := d.Capabilities.OnAccountChange(cb); err != nil {
		return bridgeerr.Normalize(bridgeerr.ErrAccountChangeFailed, err)
	}
	return nil
}

func subscribeNetworkChange(d *wallet.Descriptor, cb func(wallet.NetworkInfo)) error {
	if d.Capabilities.OnNetworkChange == nil {
		return bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "onNetworkChange"})
	}
	if err := d.Capabilities.OnNetworkChange(cb); err != nil {
		return bridgeerr.Normalize(bridgeerr.ErrNetworkChangeFailed, err)
	}
	return nil
}

func changeNetwork(ctx context.Context, d *wallet.Descriptor, target wallet.NetworkInfo) (wallet.NetworkInfo, error) {
	if d.Capabilities.ChangeNetwork == nil {
		return wallet.NetworkInfo{}, bridgeerr.WithDetails(bridgeerr.ErrNetworkChangeUnsupported,
			map[string]string{"wallet": d.Name})
	}
	out, err := d.Capabilities.ChangeNetwork(ctx, target)
	if err != nil {
		if errors.Is(err, wallet.ErrUserRejected) {
			return wallet.NetworkInfo{}, bridgeerr.Normalize(bridgeerr.ErrNetworkChangeRejected, err)
		}
		return wallet.NetworkInfo{}, bridgeerr.Normalize(bridgeerr.ErrNetworkChangeFailed, err)
	}
	return out, nil
}

// normalizeSignErr maps a provider signing failure, keeping user rejection
// visible in the details.
func normalizeSignErr(err error) error {
	return bridgeerr.Normalize(bridgeerr.ErrSignFailed, err)
}
