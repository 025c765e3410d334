package bridge

import (
	"context"
	"time"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// now is stubbed in tests to pin option expiry defaults.
var now = time.Now

// ensureWalletExists guards operations requiring a bound, usable wallet.
func (b *Bridge) ensureWalletExists() error {
	if b.session.Wallet == nil {
		return bridgeerr.ErrNotConnected
	}
	if !b.session.Wallet.Usable() {
		return bridgeerr.WithDetails(bridgeerr.ErrWalletNotReady,
			map[string]string{"wallet": b.session.Wallet.Name, "state": b.session.Wallet.State().String()})
	}
	return nil
}

// ensureAccountExists guards operations requiring a bound account.
func (b *Bridge) ensureAccountExists() error {
	if b.session.Account == nil {
		return bridgeerr.ErrAccountMissing
	}
	return nil
}

// sender parses the bound account's address.
func (b *Bridge) sender() (txn.AccountAddress, error) {
	return txn.ParseAddress(b.session.Account.Address)
}

// SignAndSubmitTransaction signs and submits the flat payload. Known
// malicious entry functions are rejected before any guard, dispatch, or
// network call. A publish-package payload is restructured first. Wallets
// with an atomic sign-and-submit capability take that path; for the rest
// the bridge builds, signs, and submits in three steps with identical
// resolved options.
func (b *Bridge) SignAndSubmitTransaction(ctx context.Context, req txn.SubmitRequest) (txn.SubmissionResult, error) {
	if txn.IsMaliciousEntryFunction(req.Payload.Function) {
		return txn.SubmissionResult{}, bridgeerr.WithDetails(bridgeerr.ErrMaliciousTransaction,
			map[string]string{"function": req.Payload.Function})
	}

	payload, err := txn.RestructurePublishPayload(req.Payload)
	if err != nil {
		return txn.SubmissionResult{}, err
	}
	req.Payload = payload

	if err = b.ensureWalletExists(); err != nil {
		return txn.SubmissionResult{}, err
	}
	if err = b.ensureAccountExists(); err != nil {
		return txn.SubmissionResult{}, err
	}

	req.Sender, err = b.sender()
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}

	d := b.session.Wallet
	res, err := b.signAndSubmit(ctx, req)
	b.metrics.RecordSubmission(err)
	if err != nil {
		return txn.SubmissionResult{}, err
	}

	b.record(eventSignAndSubmit, map[string]string{
		"wallet":   d.Name,
		"function": req.Payload.Function,
	})
	return res, nil
}

func (b *Bridge) signAndSubmit(ctx context.Context, req txn.SubmitRequest) (txn.SubmissionResult, error) {
	d := b.session.Wallet

	if d.HasAtomicSignAndSubmit() {
		return b.adapterFor(d).SignAndSubmit(ctx, d, req)
	}

	// Fallback: build, sign, submit. Options resolve once so the signed
	// transaction matches what the atomic path would have produced.
	resolved := req.Options.Resolve(now())
	raw, err := txn.BuildRaw(ctx, b.chain.BuildRawTransaction, req.Sender, req.Payload, resolved)
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}

	auth, err := b.adapterFor(d).SignTransaction(ctx, d, req.Sender, txn.RawSignInput{Raw: raw}, false)
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}

	signed := &txn.SignedTransaction{Raw: *raw, Authenticator: *auth}
	res, err := b.submitSigned(ctx, txn.SubmitInput{Signed: signed})
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSignAndSubmitFailed, err)
	}
	return res, nil
}

// SignTransaction signs either input shape through the generation-matched
// adapter and returns a modern account authenticator.
func (b *Bridge) SignTransaction(ctx context.Context, in txn.SignInput, asFeePayer bool) (*txn.AccountAuthenticator, error) {
	if err := b.ensureWalletExists(); err != nil {
		return nil, err
	}
	if err := b.ensureAccountExists(); err != nil {
		return nil, err
	}

	sender, err := b.sender()
	if err != nil {
		return nil, bridgeerr.Normalize(bridgeerr.ErrSignFailed, err)
	}

	d := b.session.Wallet
	auth, err := b.adapterFor(d).SignTransaction(ctx, d, sender, in, asFeePayer)
	b.metrics.RecordSign(err)
	return auth, err
}

// SubmitTransaction submits an externally signed transaction, through the
// wallet's own submit capability when present, otherwise through the chain
// client.
func (b *Bridge) SubmitTransaction(ctx context.Context, in txn.SubmitInput) (txn.SubmissionResult, error) {
	if err := b.ensureWalletExists(); err != nil {
		return txn.SubmissionResult{}, err
	}

	res, err := b.submitSigned(ctx, in)
	b.metrics.RecordSubmission(err)
	return res, err
}

// submitSigned routes submission: wallet-native when the capability exists,
// otherwise the chain client, with the multi-agent endpoint whenever extra
// authenticators ride along.
func (b *Bridge) submitSigned(ctx context.Context, in txn.SubmitInput) (txn.SubmissionResult, error) {
	d := b.session.Wallet
	if d.Capabilities.SubmitSigned != nil {
		return b.adapterFor(d).Submit(ctx, d, in)
	}

	if err := in.Validate(); err != nil {
		return txn.SubmissionResult{}, err
	}

	var res txn.SubmissionResult
	var err error
	if in.HasAdditionalSigners() {
		additional := in.AdditionalSigners
		if in.FeePayerAuthenticator != nil {
			additional = append(append([]*txn.AccountAuthenticator{}, additional...), in.FeePayerAuthenticator)
		}
		res, err = b.chain.SubmitMultiAgent(ctx, in.Signed, additional)
	} else {
		res, err = b.chain.SubmitTransaction(ctx, in.Signed)
	}
	if err != nil {
		return txn.SubmissionResult{}, bridgeerr.Normalize(bridgeerr.ErrSubmitFailed, err)
	}
	return res, nil
}

// SignMessage signs an arbitrary message through the connected wallet.
func (b *Bridge) SignMessage(ctx context.Context, in txn.MessageInput) (txn.SignedMessage, error) {
	if err := b.ensureWalletExists(); err != nil {
		return txn.SignedMessage{}, err
	}
	d := b.session.Wallet
	return b.adapterFor(d).SignMessage(ctx, d, in)
}

// SignMessageAndVerify signs a message and verifies the returned signature
// against the returned public key.
func (b *Bridge) SignMessageAndVerify(ctx context.Context, in txn.MessageInput) (bool, error) {
	msg, err := b.SignMessage(ctx, in)
	if err != nil {
		return false, err
	}
	return msg.Verify(), nil
}
