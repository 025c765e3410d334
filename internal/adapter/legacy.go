package adapter

import (
	"context"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Legacy speaks the older per-wallet plugin convention: flat payloads in,
// serialized signed-transaction bytes out. Authenticators are reconstructed
// from those bytes through the pipeline's binary decode path.
type Legacy struct{}

// NewLegacy creates the legacy-generation adapter.
func NewLegacy() *Legacy {
	return &Legacy{}
}

// Compile-time contract check.
var _ Adapter = (*Legacy)(nil)

// Connect implements Adapter.
func (a *Legacy) Connect(ctx context.Context, d *wallet.Descriptor) (wallet.AccountInfo, error) {
	return connect(ctx, d)
}

// Disconnect implements Adapter.
func (a *Legacy) Disconnect(ctx context.Context, d *wallet.Descriptor) error {
	return disconnect(ctx, d)
}

// Network implements Adapter.
func (a *Legacy) Network(ctx context.Context, d *wallet.Descriptor) (wallet.NetworkInfo, error) {
	return network(ctx, d)
}

// SignTransaction implements Adapter. The older shape goes straight to the
// wallet's legacy signer and the returned serialized bytes are decoded into
// a modern authenticator. The newer shape passes through to a native raw
// signer when the wallet has one, and is otherwise down-converted to the
// flat payload first.
func (a *Legacy) SignTransaction(ctx context.Context, d *wallet.Descriptor, _ txn.AccountAddress, in txn.SignInput, asFeePayer bool) (*txn.AccountAuthenticator, error) {
	switch input := in.(type) {
	case txn.PayloadSignInput:
		return a.signPayload(ctx, d, input.Payload, input.Options)

	case txn.RawSignInput:
		if input.Raw == nil {
			return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "sign input has no transaction")
		}
		if d.Capabilities.SignRaw != nil {
			auth, err := d.Capabilities.SignRaw(ctx, input.Raw, asFeePayer)
			if err != nil {
				return nil, normalizeSignErr(err)
			}
			return auth, nil
		}

		payload, options, err := txn.RawToPayload(input.Raw)
		if err != nil {
			return nil, err
		}
		return a.signPayload(ctx, d, payload, options)

	default:
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unknown sign input shape")
	}
}

func (a *Legacy) signPayload(ctx context.Context, d *wallet.Descriptor, p txn.Payload, o txn.Options) (*txn.AccountAuthenticator, error) {
	if d.Capabilities.SignPayload == nil {
		return nil, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "signTransaction"})
	}

	signedBytes, err := d.Capabilities.SignPayload(ctx, p, o)
	if err != nil {
		return nil, normalizeSignErr(err)
	}

	auth, err := txn.ExtractAuthenticator(signedBytes)
	if err != nil {
		// Decode and unsupported-scheme failures keep their own codes.
		return nil, err
	}
	return auth, nil
}

// SignAndSubmit implements Adapter using the wallet's atomic flat-payload
// capability.
func (a *Legacy) SignAndSubmit(ctx context.Context, d *wallet.Descriptor, req txn.SubmitRequest) (txn.SubmissionResult, error) {
	if d.Capabilities.SignAndSubmitPayload == nil {
		return txn.SubmissionResult{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "signAndSubmitTransaction"})
	}

	res, err := d.Capabilities.SignAndSubmitPayload(ctx, req.Payload, req.Options)
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}
	return res, nil
}

// SignMessage implements Adapter.
func (a *Legacy) SignMessage(ctx context.Context, d *wallet.Descriptor, in txn.MessageInput) (txn.SignedMessage, error) {
	return signMessage(ctx, d, in)
}

// Submit implements Adapter.
func (a *Legacy) Submit(ctx context.Context, d *wallet.Descriptor, in txn.SubmitInput) (txn.SubmissionResult, error) {
	return submit(ctx, d, in)
}

// SubscribeAccountChange implements Adapter.
func (a *Legacy) SubscribeAccountChange(d *wallet.Descriptor, cb func(wallet.AccountInfo)) error {
	return subscribeAccountChange(d, cb)
}

// SubscribeNetworkChange implements Adapter.
func (a *Legacy) SubscribeNetworkChange(d *wallet.Descriptor, cb func(wallet.NetworkInfo)) error {
	return subscribeNetworkChange(d, cb)
}

// ChangeNetwork implements Adapter.
func (a *Legacy) ChangeNetwork(ctx context.Context, d *wallet.Descriptor, target wallet.NetworkInfo) (wallet.NetworkInfo, error) {
	return changeNetwork(ctx, d, target)
}
