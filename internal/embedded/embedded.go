// Package embedded provides the in-process SDK wallet: a legacy-generation
// wallet whose Ed25519 key is derived from a BIP-39 mnemonic. It is the
// registry's sdkList source and doubles as a fully working provider for the
// CLI demo and for exercising the serialized signed-transaction path.
package embedded

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"sync"
	"time"

	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/sha3"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// WalletName is the registry name of the embedded wallet.
const WalletName = "Embedded"

// seedKeyBytes is how much of the BIP-39 seed feeds the Ed25519 key.
const seedKeyBytes = ed25519.SeedSize

// Wallet is the embedded in-process wallet.
type Wallet struct {
	mu        sync.Mutex
	priv      ed25519.PrivateKey
	pub       ed25519.PublicKey
	address   txn.AccountAddress
	network   wallet.NetworkInfo
	sequence  uint64
	connected bool

	accountCbs []func(wallet.AccountInfo)
	networkCbs []func(wallet.NetworkInfo)
}

// New derives an embedded wallet from a BIP-39 mnemonic and optional
// passphrase, starting on the given network.
func New(mnemonic, passphrase string, network wallet.NetworkInfo) (*Wallet, error) {
	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("invalid mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, passphrase)
	priv := ed25519.NewKeyFromSeed(seed[:seedKeyBytes])
	pub := priv.Public().(ed25519.PublicKey)

	return &Wallet{
		priv:    priv,
		pub:     pub,
		address: txn.AuthKeyFromPublicKey(pub),
		network: network,
	}, nil
}

// NewRandom creates an embedded wallet from fresh 128-bit entropy.
func NewRandom(network wallet.NetworkInfo) (*Wallet, string, error) {
	entropy, err := bip39.NewEntropy(128)
	if err != nil {
		return nil, "", fmt.Errorf("generating entropy: %w", err)
	}
	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return nil, "", fmt.Errorf("generating mnemonic: %w", err)
	}
	w, err := New(mnemonic, "", network)
	if err != nil {
		return nil, "", err
	}
	return w, mnemonic, nil
}

// Address returns the wallet's account address.
func (w *Wallet) Address() txn.AccountAddress {
	return w.address
}

// Descriptor returns the wallet's registry descriptor with its capability
// set. The embedded wallet is always installed.
func (w *Wallet) Descriptor() *wallet.Descriptor {
	return &wallet.Descriptor{
		Name:       WalletName,
		URL:        "https://github.com/halcyonlabs/walletbridge",
		Generation: wallet.GenerationLegacy,
		ReadyState: wallet.ReadyStateInstalled,
		Capabilities: wallet.Capabilities{
			Connect:              w.connect,
			Disconnect:           w.disconnect,
			Network:              w.currentNetwork,
			SignPayload:          w.signPayload,
			SignAndSubmitPayload: w.signAndSubmitPayload,
			SignMessage:          w.signMessage,
			ChangeNetwork:        w.changeNetwork,
			OnAccountChange:      w.onAccountChange,
			OnNetworkChange:      w.onNetworkChange,
			DetectProvider:       func() bool { return true },
		},
	}
}

func (w *Wallet) accountInfo() wallet.AccountInfo {
	return wallet.AccountInfo{
		Address:   w.address.String(),
		PublicKey: append([]byte(nil), w.pub...),
	}
}

func (w *Wallet) connect(_ context.Context) (wallet.AccountInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = true
	return w.accountInfo(), nil
}

func (w *Wallet) disconnect(_ context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.connected = false
	return nil
}

func (w *Wallet) currentNetwork(_ context.Context) (wallet.NetworkInfo, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.network, nil
}

// signPayload builds a raw transaction from the flat payload, signs its
// signing message, and returns the legacy serialized signed-transaction
// bytes.
func (w *Wallet) signPayload(_ context.Context, p txn.Payload, o txn.Options) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	signed, err := w.signLocked(p, o)
	if err != nil {
		return nil, err
	}
	return signed.MarshalBCS()
}

// signAndSubmitPayload signs and "submits" locally: the embedded wallet has
// no node, so the result carries the transaction hash of the signed bytes.
func (w *Wallet) signAndSubmitPayload(_ context.Context, p txn.Payload, o txn.Options) (txn.SubmissionResult, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	signed, err := w.signLocked(p, o)
	if err != nil {
		return txn.SubmissionResult{}, err
	}
	encoded, err := signed.MarshalBCS()
	if err != nil {
		return txn.SubmissionResult{}, err
	}

	w.sequence++
	hash := sha3.Sum256(encoded)
	return txn.SubmissionResult{
		Hash:   fmt.Sprintf("0x%x", hash),
		Output: map[string]any{"sequence_number": signed.Raw.SequenceNumber},
	}, nil
}

func (w *Wallet) signLocked(p txn.Payload, o txn.Options) (*txn.SignedTransaction, error) {
	entry, err := txn.EntryFunctionFromPayload(p)
	if err != nil {
		return nil, err
	}
	resolved := o.Resolve(time.Now())

	raw := txn.RawTransaction{
		Sender:                  w.address,
		SequenceNumber:          w.sequence,
		Payload:                 entry,
		MaxGasAmount:            resolved.MaxGasAmount,
		GasUnitPrice:            resolved.GasUnitPrice,
		ExpirationTimestampSecs: resolved.ExpirationTimestampSecs,
		ChainID:                 w.network.ChainID,
	}

	msg, err := raw.SigningMessage()
	if err != nil {
		return nil, err
	}
	sig := ed25519.Sign(w.priv, msg)

	auth, err := txn.NewEd25519Authenticator(w.pub, sig)
	if err != nil {
		return nil, err
	}
	return &txn.SignedTransaction{Raw: raw, Authenticator: *auth}, nil
}

func (w *Wallet) signMessage(_ context.Context, in txn.MessageInput) (txn.SignedMessage, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	full := fmt.Sprintf("%s::%s::%s", WalletName, in.Nonce, in.Message)
	sig := ed25519.Sign(w.priv, []byte(full))

	return txn.SignedMessage{
		Message:     in.Message,
		Nonce:       in.Nonce,
		FullMessage: full,
		Signature:   sig,
		PublicKey:   append([]byte(nil), w.pub...),
	}, nil
}

func (w *Wallet) changeNetwork(_ context.Context, target wallet.NetworkInfo) (wallet.NetworkInfo, error) {
	w.mu.Lock()
	w.network = target
	cbs := append([]func(wallet.NetworkInfo){}, w.networkCbs...)
	w.mu.Unlock()

	for _, cb := range cbs {
		cb(target)
	}
	return target, nil
}

func (w *Wallet) onAccountChange(cb func(wallet.AccountInfo)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.accountCbs = append(w.accountCbs, cb)
	return nil
}

func (w *Wallet) onNetworkChange(cb func(wallet.NetworkInfo)) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.networkCbs = append(w.networkCbs, cb)
	return nil
}
