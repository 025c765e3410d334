package embedded

import (
	"context"
	"testing"

	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// testMnemonic is the well-known all-abandon BIP-39 test vector.
const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func testNetwork() wallet.NetworkInfo {
	return wallet.NetworkInfo{Name: wallet.Local, ChainID: 4}
}

func TestNewIsDeterministic(t *testing.T) {
	t.Parallel()

	a, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	b, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.Address() != b.Address() {
		t.Error("same mnemonic derived different addresses")
	}

	// A passphrase changes the derived key.
	c, err := New(testMnemonic, "hunter2", testNetwork())
	if err != nil {
		t.Fatalf("New with passphrase: %v", err)
	}
	if c.Address() == a.Address() {
		t.Error("passphrase did not change the derived address")
	}
}

func TestNewRejectsInvalidMnemonic(t *testing.T) {
	t.Parallel()

	if _, err := New("definitely not a mnemonic", "", testNetwork()); err == nil {
		t.Error("New accepted an invalid mnemonic")
	}
}

func TestNewRandomRederives(t *testing.T) {
	t.Parallel()

	w, mnemonic, err := NewRandom(testNetwork())
	if err != nil {
		t.Fatalf("NewRandom: %v", err)
	}

	again, err := New(mnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New from generated mnemonic: %v", err)
	}
	if again.Address() != w.Address() {
		t.Error("generated mnemonic does not re-derive the same wallet")
	}
}

func TestDescriptorShape(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := w.Descriptor()

	if d.Name != WalletName {
		t.Errorf("Name = %q, want %q", d.Name, WalletName)
	}
	if d.Generation != wallet.GenerationLegacy {
		t.Error("embedded wallet is not legacy generation")
	}
	if d.ReadyState != wallet.ReadyStateInstalled {
		t.Error("embedded wallet is not installed")
	}
	if !d.Usable() {
		t.Error("Usable() = false")
	}
	if d.Capabilities.Connect == nil || d.Capabilities.SignPayload == nil {
		t.Error("descriptor misses core capabilities")
	}
	if !d.HasAtomicSignAndSubmit() {
		t.Error("HasAtomicSignAndSubmit() = false")
	}
}

func TestConnectReportsAccount(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	account, err := w.Descriptor().Capabilities.Connect(context.Background())
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if account.Address != w.Address().String() {
		t.Errorf("Address = %q, want %q", account.Address, w.Address())
	}
	if len(account.PublicKey) != txn.Ed25519PublicKeyLength {
		t.Errorf("public key length = %d", len(account.PublicKey))
	}
}

func TestSignPayloadProducesVerifiableTransaction(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := txn.Payload{Function: "0x1::coin::transfer", Arguments: [][]byte{{1, 2, 3}}}
	encoded, err := w.Descriptor().Capabilities.SignPayload(context.Background(), p, txn.Options{})
	if err != nil {
		t.Fatalf("SignPayload: %v", err)
	}

	signed, err := txn.DecodeSignedTransaction(encoded)
	if err != nil {
		t.Fatalf("DecodeSignedTransaction: %v", err)
	}
	if signed.Raw.Sender != w.Address() {
		t.Errorf("Sender = %s, want %s", signed.Raw.Sender, w.Address())
	}
	if signed.Raw.ChainID != 4 {
		t.Errorf("ChainID = %d, want 4", signed.Raw.ChainID)
	}

	msg, err := signed.Raw.SigningMessage()
	if err != nil {
		t.Fatalf("SigningMessage: %v", err)
	}
	if !signed.Authenticator.Verify(msg) {
		t.Error("signature does not verify against the signing message")
	}
}

func TestSignAndSubmitIncrementsSequence(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	p := txn.Payload{Function: "0x1::coin::transfer"}
	submit := w.Descriptor().Capabilities.SignAndSubmitPayload

	first, err := submit(context.Background(), p, txn.Options{})
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	second, err := submit(context.Background(), p, txn.Options{})
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}

	if first.Hash == "" || first.Hash == second.Hash {
		t.Errorf("hashes = %q, %q; want distinct non-empty", first.Hash, second.Hash)
	}
	if got := second.Output["sequence_number"]; got != uint64(1) {
		t.Errorf("second sequence_number = %v, want 1", got)
	}
}

func TestSignMessageVerifies(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg, err := w.Descriptor().Capabilities.SignMessage(context.Background(),
		txn.MessageInput{Message: "hello", Nonce: "42"})
	if err != nil {
		t.Fatalf("SignMessage: %v", err)
	}
	if !msg.Verify() {
		t.Error("signed message does not verify")
	}

	msg.Message = "tampered"
	msg.FullMessage = ""
	if msg.Verify() {
		t.Error("tampered message still verifies")
	}
}

func TestChangeNetworkNotifiesSubscribers(t *testing.T) {
	t.Parallel()

	w, err := New(testMnemonic, "", testNetwork())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	d := w.Descriptor()

	var got wallet.NetworkInfo
	if err := d.Capabilities.OnNetworkChange(func(n wallet.NetworkInfo) { got = n }); err != nil {
		t.Fatalf("OnNetworkChange: %v", err)
	}

	target := wallet.NetworkInfo{Name: wallet.Testnet, ChainID: 2}
	out, err := d.Capabilities.ChangeNetwork(context.Background(), target)
	if err != nil {
		t.Fatalf("ChangeNetwork: %v", err)
	}
	if out != target {
		t.Errorf("ChangeNetwork returned %+v", out)
	}
	if got != target {
		t.Errorf("subscriber saw %+v, want %+v", got, target)
	}

	current, err := d.Capabilities.Network(context.Background())
	if err != nil || current != target {
		t.Errorf("Network() = %+v, %v", current, err)
	}
}
