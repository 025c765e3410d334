package cli

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/sha3"

	"github.com/halcyonlabs/walletbridge/internal/analytics"
	"github.com/halcyonlabs/walletbridge/internal/bridge"
	"github.com/halcyonlabs/walletbridge/internal/embedded"
	"github.com/halcyonlabs/walletbridge/internal/storage"
	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/txn/bcs"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// demoCmd runs a full session against the in-process embedded wallet:
// connect, message signing, an atomic sign-and-submit, the structured
// signing path, and a network change.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run an end-to-end session against the embedded wallet",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	network := wallet.NetworkInfo{
		Name:    wallet.Local,
		ChainID: 4,
		RPCURL:  cfg.Networks.Local.RPC,
	}
	w, mnemonic, err := embedded.NewRandom(network)
	if err != nil {
		return err
	}
	cmd.Println("ephemeral wallet mnemonic:", mnemonic)

	deps := bridge.Deps{
		Chain:  newLocalChain(network.ChainID),
		Store:  storage.NewMemoryStore(),
		Logger: logger,
	}
	if cfg.Analytics.Enabled {
		deps.Analytics = analytics.NewSink()
	}

	b, err := bridge.New(cfg, deps, bridge.Sources{
		SDK:     []*wallet.Descriptor{w.Descriptor()},
		Catalog: wallet.Catalog(),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	offConnect := b.Events().OnConnect(func(a wallet.AccountInfo) {
		cmd.Println("event: connected as", a.Address)
	})
	defer offConnect()
	offNetwork := b.Events().OnNetworkChange(func(n wallet.NetworkInfo) {
		cmd.Printf("event: network changed to %s (chain %d)\n", n.Name, n.ChainID)
	})
	defer offNetwork()

	if err = b.Connect(ctx, embedded.WalletName); err != nil {
		return err
	}

	ok, err := b.SignMessageAndVerify(ctx, txn.MessageInput{
		Message: "walletbridge demo",
		Nonce:   fmt.Sprint(time.Now().UnixNano()),
	})
	if err != nil {
		return err
	}
	cmd.Println("message signature verified:", ok)

	payload := transferPayload(w.Address(), 1_000)
	res, err := b.SignAndSubmitTransaction(ctx, txn.SubmitRequest{Payload: payload})
	if err != nil {
		return err
	}
	cmd.Println("submitted transfer:", res.Hash)

	// Structured path: the bridge converts the raw transaction back into
	// the flat shape for the legacy embedded wallet and reconstructs the
	// authenticator from the serialized signed transaction.
	raw, err := deps.Chain.BuildRawTransaction(ctx, w.Address(), payload, txn.Options{}.Resolve(time.Now()))
	if err != nil {
		return err
	}
	auth, err := b.SignTransaction(ctx, txn.RawSignInput{Raw: raw}, false)
	if err != nil {
		return err
	}
	msg, err := raw.SigningMessage()
	if err != nil {
		return err
	}
	cmd.Println("raw signature verified:", auth.Verify(msg))

	if _, err = b.ChangeNetwork(ctx, wallet.Testnet); err != nil {
		return err
	}

	return b.Disconnect(ctx)
}

// transferPayload builds a self-transfer in the flat payload shape.
func transferPayload(to txn.AccountAddress, amount uint64) txn.Payload {
	toArg := bcs.NewSerializer()
	toArg.WriteFixedBytes(to[:])

	amountArg := bcs.NewSerializer()
	amountArg.WriteU64(amount)

	return txn.Payload{
		Function:      "0x1::coin::transfer",
		TypeArguments: []string{"0x1::native_coin::NativeCoin"},
		Arguments:     [][]byte{toArg.Bytes(), amountArg.Bytes()},
	}
}

// localChain is the demo's in-process chain client: it assigns sequence
// numbers and hashes submissions instead of talking to a node.
type localChain struct {
	mu       sync.Mutex
	chainID  uint8
	sequence uint64
}

func newLocalChain(chainID uint8) *localChain {
	return &localChain{chainID: chainID}
}

func (c *localChain) BuildRawTransaction(_ context.Context, sender txn.AccountAddress, p txn.Payload, o txn.ResolvedOptions) (*txn.RawTransaction, error) {
	entry, err := txn.EntryFunctionFromPayload(p)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	seq := c.sequence
	c.sequence++
	c.mu.Unlock()

	return &txn.RawTransaction{
		Sender:                  sender,
		SequenceNumber:          seq,
		Payload:                 entry,
		MaxGasAmount:            o.MaxGasAmount,
		GasUnitPrice:            o.GasUnitPrice,
		ExpirationTimestampSecs: o.ExpirationTimestampSecs,
		ChainID:                 c.chainID,
	}, nil
}

func (c *localChain) SubmitTransaction(_ context.Context, signed *txn.SignedTransaction) (txn.SubmissionResult, error) {
	encoded, err := signed.MarshalBCS()
	if err != nil {
		return txn.SubmissionResult{}, err
	}
	hash := sha3.Sum256(encoded)
	return txn.SubmissionResult{Hash: fmt.Sprintf("0x%x", hash)}, nil
}

func (c *localChain) SubmitMultiAgent(ctx context.Context, signed *txn.SignedTransaction, _ []*txn.AccountAuthenticator) (txn.SubmissionResult, error) {
	return c.SubmitTransaction(ctx, signed)
}

func (c *localChain) ChainID(_ context.Context) (uint8, error) {
	return c.chainID, nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(demoCmd)
}
