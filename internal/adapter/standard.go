package adapter

import (
	"context"
	"time"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// now is the clock used for option resolution; tests may override it.
var now = time.Now

// Standard speaks the capability-discovery protocol generation: structured
// transactions in, modern authenticators out. Older-shaped inputs are
// handled through the wallet's documented payload-compatibility mode when
// present, and otherwise built into full transactions via the chain client.
type Standard struct {
	build txn.RawBuilder
}

// NewStandard creates the standard-generation adapter. build converts flat
// payloads into full transactions when a wallet has no payload
// compatibility mode.
func NewStandard(build txn.RawBuilder) *Standard {
	return &Standard{build: build}
}

// Compile-time contract check.
var _ Adapter = (*Standard)(nil)

// Connect implements Adapter.
func (a *Standard) Connect(ctx context.Context, d *wallet.Descriptor) (wallet.AccountInfo, error) {
	return connect(ctx, d)
}

// Disconnect implements Adapter.
func (a *Standard) Disconnect(ctx context.Context, d *wallet.Descriptor) error {
	return disconnect(ctx, d)
}

// Network implements Adapter.
func (a *Standard) Network(ctx context.Context, d *wallet.Descriptor) (wallet.NetworkInfo, error) {
	return network(ctx, d)
}

// SignTransaction implements Adapter. The newer shape goes to the wallet's
// raw signer directly. The older shape uses the wallet's payload
// compatibility mode when documented, and is otherwise built into a full
// structured transaction first.
func (a *Standard) SignTransaction(ctx context.Context, d *wallet.Descriptor, sender txn.AccountAddress, in txn.SignInput, asFeePayer bool) (*txn.AccountAuthenticator, error) {
	switch input := in.(type) {
	case txn.RawSignInput:
		if input.Raw == nil {
			return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "sign input has no transaction")
		}
		return a.signRaw(ctx, d, input.Raw, asFeePayer)

	case txn.PayloadSignInput:
		resolved := input.Options.Resolve(now())

		if d.AcceptsPayloadInput() {
			auth, err := d.Capabilities.SignPayloadDirect(ctx, input.Payload, resolved)
			if err != nil {
				return nil, normalizeSignErr(err)
			}
			return auth, nil
		}

		raw, err := txn.BuildRaw(ctx, a.build, sender, input.Payload, resolved)
		if err != nil {
			return nil, bridgeerr.Normalize(bridgeerr.ErrSignFailed, err)
		}
		return a.signRaw(ctx, d, raw, asFeePayer)

	default:
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unknown sign input shape")
	}
}

func (a *Standard) signRaw(ctx context.Context, d *wallet.Descriptor, raw *txn.RawTransaction, asFeePayer bool) (*txn.AccountAuthenticator, error) {
	if d.Capabilities.SignRaw == nil {
		return nil, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "signTransaction"})
	}
	auth, err := d.Capabilities.SignRaw(ctx, raw, asFeePayer)
	if err != nil {
		return nil, normalizeSignErr(err)
	}
	return auth, nil
}

// SignAndSubmit implements Adapter: the flat request is built into a
// structured transaction and handed to the wallet's atomic capability.
func (a *Standard) SignAndSubmit(ctx context.Context, d *wallet.Descriptor, req txn.SubmitRequest) (txn.SubmissionResult, error) {
	if d.Capabilities.SignAndSubmitRaw == nil {
		return txn.SubmissionResult{}, bridgeerr.WithDetails(bridgeerr.ErrUnsupportedMethod,
			map[string]string{"wallet": d.Name, "method": "signAndSubmitTransaction"})
	}

	raw, err := txn.BuildRaw(ctx, a.build, req.Sender, req.Payload, req.Options.Resolve(now()))
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}

	res, err := d.Capabilities.SignAndSubmitRaw(ctx, raw)
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}
	return res, nil
}

// SignMessage implements Adapter.
func (a *Standard) SignMessage(ctx context.Context, d *wallet.Descriptor, in txn.MessageInput) (txn.SignedMessage, error) {
	return signMessage(ctx, d, in)
}

// Submit implements Adapter.
func (a *Standard) Submit(ctx context.Context, d *wallet.Descriptor, in txn.SubmitInput) (txn.SubmissionResult, error) {
	return submit(ctx, d, in)
}

// SubscribeAccountChange implements Adapter.
func (a *Standard) SubscribeAccountChange(d *wallet.Descriptor, cb func(wallet.AccountInfo)) error {
	return subscribeAccountChange(d, cb)
}

// SubscribeNetworkChange implements Adapter.
func (a *Standard) SubscribeNetworkChange(d *wallet.Descriptor, cb func(wallet.NetworkInfo)) error {
	return subscribeNetworkChange(d, cb)
}

// ChangeNetwork implements Adapter.
func (a *Standard) ChangeNetwork(ctx context.Context, d *wallet.Descriptor, target wallet.NetworkInfo) (wallet.NetworkInfo, error) {
	return changeNetwork(ctx, d, target)
}
