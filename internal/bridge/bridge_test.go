package bridge

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyonlabs/walletbridge/internal/client"
	"github.com/halcyonlabs/walletbridge/internal/config"
	"github.com/halcyonlabs/walletbridge/internal/txn"
	"github.com/halcyonlabs/walletbridge/internal/txn/bcs"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// fakeChain is an in-test ChainClient recording every call.
type fakeChain struct {
	chainID    uint8
	chainIDErr error

	buildCalls   int
	builtOptions txn.ResolvedOptions

	submitCalls    int
	lastSigned     *txn.SignedTransaction
	multiCalls     int
	lastAdditional []*txn.AccountAuthenticator
}

func (c *fakeChain) BuildRawTransaction(_ context.Context, sender txn.AccountAddress, p txn.Payload, o txn.ResolvedOptions) (*txn.RawTransaction, error) {
	c.buildCalls++
	c.builtOptions = o

	entry, err := txn.EntryFunctionFromPayload(p)
	if err != nil {
		return nil, err
	}
	return &txn.RawTransaction{
		Sender:                  sender,
		Payload:                 entry,
		MaxGasAmount:            o.MaxGasAmount,
		GasUnitPrice:            o.GasUnitPrice,
		ExpirationTimestampSecs: o.ExpirationTimestampSecs,
		ChainID:                 2,
	}, nil
}

func (c *fakeChain) SubmitTransaction(_ context.Context, signed *txn.SignedTransaction) (txn.SubmissionResult, error) {
	c.submitCalls++
	c.lastSigned = signed
	return txn.SubmissionResult{Hash: "0xsimple"}, nil
}

func (c *fakeChain) SubmitMultiAgent(_ context.Context, signed *txn.SignedTransaction, additional []*txn.AccountAuthenticator) (txn.SubmissionResult, error) {
	c.multiCalls++
	c.lastSigned = signed
	c.lastAdditional = additional
	return txn.SubmissionResult{Hash: "0xmulti"}, nil
}

func (c *fakeChain) ChainID(context.Context) (uint8, error) {
	return c.chainID, c.chainIDErr
}

// fakeStore is an in-test Store with injectable write failures.
type fakeStore struct {
	entries map[string]string
	setErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{entries: map[string]string{}}
}

func (s *fakeStore) Get(key string) (string, error) {
	v, ok := s.entries[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func (s *fakeStore) Set(key, value string) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.entries[key] = value
	return nil
}

func (s *fakeStore) Delete(key string) error {
	delete(s.entries, key)
	return nil
}

// fakeSink records analytics events in order.
type fakeSink struct {
	names []string
	metas []map[string]string
}

func (s *fakeSink) Record(event string, metadata map[string]string) {
	s.names = append(s.names, event)
	s.metas = append(s.metas, metadata)
}

// fakeDiscovery is a DiscoveryChannel whose registrations the test triggers.
type fakeDiscovery struct {
	wallets []*wallet.Descriptor
	cb      func(*wallet.Descriptor)
}

func (d *fakeDiscovery) Wallets() []*wallet.Descriptor { return d.wallets }

func (d *fakeDiscovery) OnRegister(cb func(*wallet.Descriptor)) func() {
	d.cb = cb
	return func() { d.cb = nil }
}

type fakeEnv struct{ mobile bool }

func (e fakeEnv) MobileContext() bool { return e.mobile }

// fakeResolver resolves aliases from a fixed table.
type fakeResolver struct {
	aliases map[string]string
	err     error
}

func (r *fakeResolver) Resolve(_ context.Context, address string, _ wallet.Network) (string, error) {
	if r.err != nil {
		return "", r.err
	}
	return r.aliases[address], nil
}

// fakeProvider backs a wallet descriptor with recordable capabilities.
type fakeProvider struct {
	account wallet.AccountInfo
	network wallet.NetworkInfo

	connectErr    error
	disconnectErr error

	accountCb func(wallet.AccountInfo)
	networkCb func(wallet.NetworkInfo)
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{
		account: wallet.AccountInfo{Address: "0xcafe"},
		network: wallet.NetworkInfo{Name: wallet.Mainnet, ChainID: 1},
	}
}

func (p *fakeProvider) descriptor(name string, gen wallet.Generation) *wallet.Descriptor {
	return &wallet.Descriptor{
		Name:       name,
		Generation: gen,
		ReadyState: wallet.ReadyStateInstalled,
		Capabilities: wallet.Capabilities{
			Connect: func(context.Context) (wallet.AccountInfo, error) {
				if p.connectErr != nil {
					return wallet.AccountInfo{}, p.connectErr
				}
				return p.account, nil
			},
			Disconnect: func(context.Context) error { return p.disconnectErr },
			Network: func(context.Context) (wallet.NetworkInfo, error) {
				return p.network, nil
			},
			OnAccountChange: func(cb func(wallet.AccountInfo)) error {
				p.accountCb = cb
				return nil
			},
			OnNetworkChange: func(cb func(wallet.NetworkInfo)) error {
				p.networkCb = cb
				return nil
			},
		},
	}
}

func testConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Detection.Attempts = 1
	cfg.Detection.IntervalMS = 1
	return cfg
}

// fixture bundles a bridge with its fakes.
type fixture struct {
	bridge *Bridge
	chain  *fakeChain
	store  *fakeStore
	sink   *fakeSink
}

func newFixture(t *testing.T, deps Deps, src Sources) *fixture {
	t.Helper()

	f := &fixture{chain: &fakeChain{chainID: 2}, store: newFakeStore(), sink: &fakeSink{}}
	if deps.Chain == nil {
		deps.Chain = f.chain
	} else {
		f.chain, _ = deps.Chain.(*fakeChain)
	}
	if deps.Store == nil {
		deps.Store = f.store
	} else {
		f.store, _ = deps.Store.(*fakeStore)
	}
	if deps.Analytics == nil {
		deps.Analytics = f.sink
	}
	deps.Logger = zerolog.Nop()

	b, err := New(testConfig(), deps, src)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Close)
	f.bridge = b
	return f
}

func connect(t *testing.T, f *fixture, name string) {
	t.Helper()
	if err := f.bridge.Connect(context.Background(), name); err != nil {
		t.Fatalf("Connect(%s): %v", name, err)
	}
}

func TestNewRequiresChainAndStore(t *testing.T) {
	t.Parallel()

	if _, err := New(nil, Deps{Store: newFakeStore()}, Sources{}); !bridgeerr.Is(err, bridgeerr.ErrInvalidInput) {
		t.Errorf("missing chain error = %v, want INVALID_INPUT", err)
	}
	if _, err := New(nil, Deps{Chain: &fakeChain{}}, Sources{}); !bridgeerr.Is(err, bridgeerr.ErrInvalidInput) {
		t.Errorf("missing store error = %v, want INVALID_INPUT", err)
	}
}

func TestConnectUnknownWalletIsNoOp(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})

	connects := 0
	f.bridge.Events().OnConnect(func(wallet.AccountInfo) { connects++ })

	if err := f.bridge.Connect(context.Background(), "Ghost"); err != nil {
		t.Fatalf("Connect(unknown) = %v, want nil", err)
	}
	if f.bridge.Connected() {
		t.Error("unknown wallet established a session")
	}
	if connects != 0 {
		t.Error("unknown wallet emitted a connect notification")
	}
	if _, ok := f.store.entries[client.LastWalletKey]; ok {
		t.Error("unknown wallet persisted a name")
	}
}

func TestConnectNotReady(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	d := p.descriptor("Nightly", wallet.GenerationLegacy)
	d.ReadyState = wallet.ReadyStateNotDetected
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{d}})

	err := f.bridge.Connect(context.Background(), "Nightly")
	if !bridgeerr.Is(err, bridgeerr.ErrWalletNotReady) {
		t.Errorf("error = %v, want WALLET_NOT_READY", err)
	}
}

func TestConnectAlreadyConnected(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	connect(t, f, "Nightly")

	err := f.bridge.Connect(context.Background(), "Nightly")
	if !bridgeerr.Is(err, bridgeerr.ErrConnectionFailed) {
		t.Errorf("error = %v, want CONNECTION_FAILED", err)
	}
	if !f.bridge.Connected() {
		t.Error("failed re-connect tore down the existing session")
	}
}

func TestConnectSuccess(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	names := &fakeResolver{aliases: map[string]string{"0xcafe": "alice"}}
	f := newFixture(t, Deps{Names: names}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})

	var emitted wallet.AccountInfo
	f.bridge.Events().OnConnect(func(a wallet.AccountInfo) { emitted = a })

	connect(t, f, "Nightly")

	if !f.bridge.Connected() || f.bridge.WalletName() != "Nightly" {
		t.Fatal("session not bound")
	}
	if f.bridge.Account().Alias != "alice" {
		t.Errorf("Alias = %q, want alice", f.bridge.Account().Alias)
	}
	if emitted.Address != "0xcafe" || emitted.Alias != "alice" {
		t.Errorf("connect notification carried %+v", emitted)
	}
	if got := f.store.entries[client.LastWalletKey]; got != "Nightly" {
		t.Errorf("persisted name = %q, want Nightly", got)
	}
	if len(f.sink.names) != 1 || f.sink.names[0] != "wallet_connect" {
		t.Errorf("analytics = %v", f.sink.names)
	}
	if f.sink.metas[0]["network"] != "mainnet" {
		t.Errorf("analytics metadata = %v", f.sink.metas[0])
	}
}

func TestConnectRejectionClearsSession(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.connectErr = wallet.ErrUserRejected
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	f.store.entries[client.LastWalletKey] = "Stale"

	err := f.bridge.Connect(context.Background(), "Nightly")
	if !bridgeerr.Is(err, bridgeerr.ErrConnectionRejected) {
		t.Errorf("error = %v, want CONNECTION_REJECTED", err)
	}
	if f.bridge.Connected() || f.bridge.Account() != nil || f.bridge.Network() != nil {
		t.Error("rejected connect left session fields populated")
	}
	if _, ok := f.store.entries[client.LastWalletKey]; ok {
		t.Error("rejected connect kept the persisted wallet name")
	}
}

func TestConnectPersistFailureIsNonFatal(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	f.store.setErr = errors.New("disk full")

	if err := f.bridge.Connect(context.Background(), "Nightly"); err != nil {
		t.Fatalf("Connect = %v; store failure must not fail the session", err)
	}
	if !f.bridge.Connected() {
		t.Error("session not established")
	}
}

func TestConnectMobileDeepLink(t *testing.T) {
	t.Parallel()

	var opened string
	p := newFakeProvider()
	d := p.descriptor("Petra", wallet.GenerationLegacy)
	d.ReadyState = wallet.ReadyStateNotDetected
	d.URL = "https://petra.app"
	d.Capabilities.OpenInMobileApp = func(url string) error {
		opened = url
		return nil
	}
	f := newFixture(t, Deps{Env: fakeEnv{mobile: true}}, Sources{Plugin: []*wallet.Descriptor{d}})

	if err := f.bridge.Connect(context.Background(), "Petra"); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if opened != "https://petra.app" {
		t.Errorf("deep link opened %q", opened)
	}
	if f.bridge.Connected() {
		t.Error("mobile deep link established a session")
	}
}

func TestDisconnectAlwaysClears(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	p.disconnectErr = errors.New("provider hung up")
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	connect(t, f, "Nightly")

	disconnected := false
	f.bridge.Events().OnDisconnect(func() { disconnected = true })

	err := f.bridge.Disconnect(context.Background())
	if err == nil {
		t.Error("provider failure did not surface")
	}
	if f.bridge.Connected() {
		t.Error("session still connected after Disconnect")
	}
	if !disconnected {
		t.Error("disconnect notification not emitted")
	}
	if _, ok := f.store.entries[client.LastWalletKey]; ok {
		t.Error("persisted wallet name not cleared")
	}
}

func TestDisconnectWithoutSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Deps{}, Sources{})
	if err := f.bridge.Disconnect(context.Background()); !bridgeerr.Is(err, bridgeerr.ErrNotConnected) {
		t.Errorf("error = %v, want NOT_CONNECTED", err)
	}
}

func TestSignAndSubmitMaliciousFailFast(t *testing.T) {
	t.Parallel()

	// Not even connected: the deny list outranks every guard and no
	// provider or chain call may happen.
	f := newFixture(t, Deps{}, Sources{})

	req := txn.SubmitRequest{Payload: txn.Payload{
		Function: "0x1::account::rotate_authentication_key_call",
	}}
	_, err := f.bridge.SignAndSubmitTransaction(context.Background(), req)
	if !bridgeerr.Is(err, bridgeerr.ErrMaliciousTransaction) {
		t.Fatalf("error = %v, want MALICIOUS_TRANSACTION", err)
	}
	if bridgeerr.Is(err, bridgeerr.ErrNotConnected) {
		t.Error("connection guard ran before the deny list")
	}
	if f.chain.buildCalls != 0 || f.chain.submitCalls != 0 {
		t.Error("chain client was touched")
	}
	snap := f.bridge.Metrics().Snapshot()
	if snap.LegacyDispatches != 0 || snap.StandardDispatches != 0 {
		t.Error("an adapter was dispatched")
	}
}

func TestSignAndSubmitRestructuresPublishPayload(t *testing.T) {
	t.Parallel()

	var gotPayload txn.Payload
	p := newFakeProvider()
	d := p.descriptor("Nightly", wallet.GenerationLegacy)
	d.Capabilities.SignAndSubmitPayload = func(_ context.Context, pay txn.Payload, _ txn.Options) (txn.SubmissionResult, error) {
		gotPayload = pay
		return txn.SubmissionResult{Hash: "0xok"}, nil
	}
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{d}})
	connect(t, f, "Nightly")

	metadata := []byte{0xAA, 0xBB}
	modules := [][]byte{{0x01}, {0x02, 0x03}}

	combined := bcs.NewSerializer()
	combined.WriteBytes(metadata)
	combined.WriteULEB128(uint32(len(modules)))
	for _, m := range modules {
		combined.WriteBytes(m)
	}

	req := txn.SubmitRequest{Payload: txn.Payload{
		Function:  txn.PublishPackageFunction,
		Arguments: [][]byte{combined.Bytes()},
	}}
	if _, err := f.bridge.SignAndSubmitTransaction(context.Background(), req); err != nil {
		t.Fatalf("SignAndSubmitTransaction: %v", err)
	}

	if len(gotPayload.Arguments) != 2 {
		t.Fatalf("wallet saw %d arguments, want 2", len(gotPayload.Arguments))
	}
	wantMeta := bcs.NewSerializer()
	wantMeta.WriteBytes(metadata)
	if !bytes.Equal(gotPayload.Arguments[0], wantMeta.Bytes()) {
		t.Errorf("metadata argument = %x", gotPayload.Arguments[0])
	}
	wantMods := bcs.NewSerializer()
	wantMods.WriteULEB128(uint32(len(modules)))
	for _, m := range modules {
		wantMods.WriteBytes(m)
	}
	if !bytes.Equal(gotPayload.Arguments[1], wantMods.Bytes()) {
		t.Errorf("modules argument = %x", gotPayload.Arguments[1])
	}
}

func TestSignAndSubmitOptionParity(t *testing.T) {
	// Not parallel: stubs the package clock.
	restore := now
	now = func() time.Time { return time.Unix(1_700_000_000, 0) }
	defer func() { now = restore }()

	options := txn.Options{MaxGas: txn.Uint64(9_000)}

	// Atomic path: the wallet receives the unresolved options.
	var atomicOptions txn.Options
	atomicProvider := newFakeProvider()
	atomicDesc := atomicProvider.descriptor("Atomic", wallet.GenerationLegacy)
	atomicDesc.Capabilities.SignAndSubmitPayload = func(_ context.Context, _ txn.Payload, o txn.Options) (txn.SubmissionResult, error) {
		atomicOptions = o
		return txn.SubmissionResult{Hash: "0xatomic"}, nil
	}
	atomic := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{atomicDesc}})
	connect(t, atomic, "Atomic")

	req := txn.SubmitRequest{Payload: txn.Payload{Function: "0x1::coin::transfer"}, Options: options}
	if _, err := atomic.bridge.SignAndSubmitTransaction(context.Background(), req); err != nil {
		t.Fatalf("atomic SignAndSubmitTransaction: %v", err)
	}

	// Fallback path: build, sign, submit through the chain client.
	fallbackProvider := newFakeProvider()
	fallbackDesc := fallbackProvider.descriptor("Piecewise", wallet.GenerationLegacy)
	fallbackDesc.Capabilities.SignRaw = func(context.Context, *txn.RawTransaction, bool) (*txn.AccountAuthenticator, error) {
		return &txn.AccountAuthenticator{Scheme: txn.SchemeEd25519}, nil
	}
	fallback := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{fallbackDesc}})
	connect(t, fallback, "Piecewise")

	if _, err := fallback.bridge.SignAndSubmitTransaction(context.Background(), req); err != nil {
		t.Fatalf("fallback SignAndSubmitTransaction: %v", err)
	}
	if fallback.chain.submitCalls != 1 {
		t.Fatalf("chain submit calls = %d, want 1", fallback.chain.submitCalls)
	}

	// Both paths must resolve to the same effective options.
	if got, want := fallback.chain.builtOptions, atomicOptions.Resolve(now()); got != want {
		t.Errorf("fallback resolved options = %+v, atomic path = %+v", got, want)
	}
}

func TestSignTransactionGuards(t *testing.T) {
	t.Parallel()

	f := newFixture(t, Deps{}, Sources{})
	_, err := f.bridge.SignTransaction(context.Background(),
		txn.RawSignInput{Raw: &txn.RawTransaction{}}, false)
	if !bridgeerr.Is(err, bridgeerr.ErrNotConnected) {
		t.Errorf("error = %v, want NOT_CONNECTED", err)
	}
}

func TestSubmitTransactionRouting(t *testing.T) {
	t.Parallel()

	signed := &txn.SignedTransaction{}

	t.Run("chain simple", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
		connect(t, f, "Nightly")

		res, err := f.bridge.SubmitTransaction(context.Background(), txn.SubmitInput{Signed: signed})
		if err != nil {
			t.Fatalf("SubmitTransaction: %v", err)
		}
		if res.Hash != "0xsimple" || f.chain.submitCalls != 1 || f.chain.multiCalls != 0 {
			t.Errorf("res = %+v, submits = %d/%d", res, f.chain.submitCalls, f.chain.multiCalls)
		}
	})

	t.Run("chain multi agent with fee payer", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
		connect(t, f, "Nightly")

		second := &txn.AccountAuthenticator{Scheme: txn.SchemeEd25519}
		feePayer := &txn.AccountAuthenticator{Scheme: txn.SchemeEd25519}
		in := txn.SubmitInput{
			Signed:                signed,
			AdditionalSigners:     []*txn.AccountAuthenticator{second},
			FeePayerAuthenticator: feePayer,
		}
		res, err := f.bridge.SubmitTransaction(context.Background(), in)
		if err != nil {
			t.Fatalf("SubmitTransaction: %v", err)
		}
		if res.Hash != "0xmulti" || f.chain.multiCalls != 1 {
			t.Errorf("res = %+v, multi calls = %d", res, f.chain.multiCalls)
		}
		if len(f.chain.lastAdditional) != 2 || f.chain.lastAdditional[1] != feePayer {
			t.Errorf("additional authenticators = %v", f.chain.lastAdditional)
		}
		if len(in.AdditionalSigners) != 1 {
			t.Error("caller's additional-signers slice was mutated")
		}
	})

	t.Run("wallet native", func(t *testing.T) {
		t.Parallel()

		walletCalls := 0
		p := newFakeProvider()
		d := p.descriptor("Node", wallet.GenerationLegacy)
		d.Capabilities.SubmitSigned = func(context.Context, txn.SubmitInput) (txn.SubmissionResult, error) {
			walletCalls++
			return txn.SubmissionResult{Hash: "0xwallet"}, nil
		}
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{d}})
		connect(t, f, "Node")

		res, err := f.bridge.SubmitTransaction(context.Background(), txn.SubmitInput{Signed: signed})
		if err != nil {
			t.Fatalf("SubmitTransaction: %v", err)
		}
		if res.Hash != "0xwallet" || walletCalls != 1 {
			t.Errorf("res = %+v, wallet calls = %d", res, walletCalls)
		}
		if f.chain.submitCalls != 0 {
			t.Error("chain client used despite the wallet's submit capability")
		}
	})
}

func TestChangeNetwork(t *testing.T) {
	t.Parallel()

	t.Run("devnet resolves dynamically", func(t *testing.T) {
		t.Parallel()

		var walletSaw wallet.NetworkInfo
		p := newFakeProvider()
		d := p.descriptor("Nightly", wallet.GenerationLegacy)
		d.Capabilities.ChangeNetwork = func(_ context.Context, target wallet.NetworkInfo) (wallet.NetworkInfo, error) {
			walletSaw = target
			// Acknowledge without echoing the network back.
			return wallet.NetworkInfo{}, nil
		}
		f := newFixture(t, Deps{Chain: &fakeChain{chainID: 68}}, Sources{Plugin: []*wallet.Descriptor{d}})
		connect(t, f, "Nightly")

		var emitted wallet.NetworkInfo
		f.bridge.Events().OnNetworkChange(func(n wallet.NetworkInfo) { emitted = n })

		out, err := f.bridge.ChangeNetwork(context.Background(), wallet.Devnet)
		if err != nil {
			t.Fatalf("ChangeNetwork: %v", err)
		}
		if walletSaw.ChainID != 68 || walletSaw.Name != wallet.Devnet {
			t.Errorf("wallet saw %+v", walletSaw)
		}
		if out.Name != wallet.Devnet || out.ChainID != 68 || out.RPCURL != config.DefaultDevnetRPC {
			t.Errorf("result = %+v", out)
		}
		if got := f.bridge.Network(); got == nil || got.ChainID != 68 {
			t.Errorf("session network = %+v", got)
		}
		if emitted != out {
			t.Errorf("notification carried %+v, want %+v", emitted, out)
		}
	})

	t.Run("invalid network", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
		connect(t, f, "Nightly")

		if _, err := f.bridge.ChangeNetwork(context.Background(), wallet.Network("bogus")); !bridgeerr.Is(err, bridgeerr.ErrInvalidInput) {
			t.Errorf("error = %v, want INVALID_INPUT", err)
		}
	})

	t.Run("chain id fetch failure precedes the wallet call", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		d := p.descriptor("Nightly", wallet.GenerationLegacy)
		d.Capabilities.ChangeNetwork = func(context.Context, wallet.NetworkInfo) (wallet.NetworkInfo, error) {
			t.Error("wallet invoked without a resolved chain id")
			return wallet.NetworkInfo{}, nil
		}
		f := newFixture(t, Deps{Chain: &fakeChain{chainIDErr: errors.New("node down")}},
			Sources{Plugin: []*wallet.Descriptor{d}})
		connect(t, f, "Nightly")

		if _, err := f.bridge.ChangeNetwork(context.Background(), wallet.Devnet); !bridgeerr.Is(err, bridgeerr.ErrNetworkChangeFailed) {
			t.Errorf("error = %v, want NETWORK_CHANGE_FAILED", err)
		}
	})

	t.Run("user rejection keeps the session network", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		d := p.descriptor("Nightly", wallet.GenerationLegacy)
		d.Capabilities.ChangeNetwork = func(context.Context, wallet.NetworkInfo) (wallet.NetworkInfo, error) {
			return wallet.NetworkInfo{}, wallet.ErrUserRejected
		}
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{d}})
		connect(t, f, "Nightly")

		_, err := f.bridge.ChangeNetwork(context.Background(), wallet.Testnet)
		if !bridgeerr.Is(err, bridgeerr.ErrNetworkChangeRejected) {
			t.Errorf("error = %v, want NETWORK_CHANGE_REJECTED", err)
		}
		if f.bridge.Network().Name != wallet.Mainnet {
			t.Error("rejected change moved the session network")
		}
	})

	t.Run("capability absent", func(t *testing.T) {
		t.Parallel()

		p := newFakeProvider()
		f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
		connect(t, f, "Nightly")

		if _, err := f.bridge.ChangeNetwork(context.Background(), wallet.Testnet); !bridgeerr.Is(err, bridgeerr.ErrNetworkChangeUnsupported) {
			t.Errorf("error = %v, want NETWORK_CHANGE_UNSUPPORTED", err)
		}
	})
}

func TestAccountChangeSubscription(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	names := &fakeResolver{aliases: map[string]string{"0x2": "bob"}}
	f := newFixture(t, Deps{Names: names}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	connect(t, f, "Nightly")

	var emitted wallet.AccountInfo
	f.bridge.Events().OnAccountChange(func(a wallet.AccountInfo) { emitted = a })

	if err := f.bridge.OnAccountChange(); err != nil {
		t.Fatalf("OnAccountChange: %v", err)
	}
	if p.accountCb == nil {
		t.Fatal("provider callback not registered")
	}

	p.accountCb(wallet.AccountInfo{Address: "0x2"})

	account := f.bridge.Account()
	if account.Address != "0x2" {
		t.Errorf("Address = %q, want 0x2", account.Address)
	}
	if account.Alias != "bob" {
		t.Errorf("Alias = %q, want bob", account.Alias)
	}
	if len(account.PublicKey) != 0 {
		t.Error("replacement kept the previous public key; must be wholesale")
	}
	if emitted.Address != "0x2" || emitted.Alias != "bob" {
		t.Errorf("notification carried %+v", emitted)
	}
}

func TestNetworkChangeSubscription(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{p.descriptor("Nightly", wallet.GenerationLegacy)}})
	connect(t, f, "Nightly")

	var emitted wallet.NetworkInfo
	f.bridge.Events().OnNetworkChange(func(n wallet.NetworkInfo) { emitted = n })

	if err := f.bridge.OnNetworkChange(); err != nil {
		t.Fatalf("OnNetworkChange: %v", err)
	}

	target := wallet.NetworkInfo{Name: wallet.Testnet, ChainID: 2}
	p.networkCb(target)

	if got := f.bridge.Network(); got == nil || *got != target {
		t.Errorf("session network = %+v, want %+v", got, target)
	}
	if emitted != target {
		t.Errorf("notification carried %+v", emitted)
	}
}

func TestLateStandardWalletRegistration(t *testing.T) {
	t.Parallel()

	disc := &fakeDiscovery{}
	f := newFixture(t, Deps{Discovery: disc}, Sources{})

	var added *wallet.Descriptor
	f.bridge.Events().OnStandardWalletsAdded(func(d *wallet.Descriptor) { added = d })

	late := &wallet.Descriptor{
		Name:       "Latecomer",
		Generation: wallet.GenerationStandard,
		ReadyState: wallet.ReadyStateInstalled,
	}
	disc.cb(late)

	if added == nil || added.Name != "Latecomer" {
		t.Fatalf("notification carried %+v", added)
	}
	found := false
	for _, d := range f.bridge.StandardWallets() {
		if d.Name == "Latecomer" {
			found = true
		}
	}
	if !found {
		t.Error("late wallet missing from the registry")
	}

	// A duplicate registration stays silent.
	added = nil
	disc.cb(late)
	if added != nil {
		t.Error("duplicate registration emitted a notification")
	}
}

func TestLateRegistrationHonorsAllowList(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AllowList = []string{"Petra"}

	disc := &fakeDiscovery{}
	b, err := New(cfg, Deps{
		Chain:     &fakeChain{},
		Store:     newFakeStore(),
		Discovery: disc,
		Logger:    zerolog.Nop(),
	}, Sources{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Close)

	notified := false
	b.Events().OnStandardWalletsAdded(func(*wallet.Descriptor) { notified = true })

	disc.cb(&wallet.Descriptor{Name: "Evil", Generation: wallet.GenerationStandard})

	if notified {
		t.Error("disallowed wallet emitted a notification")
	}
	for _, d := range b.Wallets() {
		if d.Name == "Evil" {
			t.Error("disallowed wallet entered the registry")
		}
	}
}

func TestDetectorEmitsReadyStateChange(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	installed := false

	p := newFakeProvider()
	d := p.descriptor("Slow", wallet.GenerationLegacy)
	d.ReadyState = wallet.ReadyStateNotDetected
	d.Capabilities.DetectProvider = func() bool {
		mu.Lock()
		defer mu.Unlock()
		return installed
	}

	cfg := testConfig()
	cfg.Detection.Attempts = 50

	b, err := New(cfg, Deps{Chain: &fakeChain{}, Store: newFakeStore(), Logger: zerolog.Nop()},
		Sources{Plugin: []*wallet.Descriptor{d}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(b.Close)

	detected := make(chan *wallet.Descriptor, 1)
	b.Events().OnReadyStateChange(func(changed *wallet.Descriptor) {
		select {
		case detected <- changed:
		default:
		}
	})

	mu.Lock()
	installed = true
	mu.Unlock()

	select {
	case changed := <-detected:
		if changed.Name != "Slow" || changed.State() != wallet.ReadyStateInstalled {
			t.Errorf("notification carried %+v", changed)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("readiness change never surfaced")
	}
}

func TestSignMessageAndVerify(t *testing.T) {
	t.Parallel()

	p := newFakeProvider()
	d := p.descriptor("Nightly", wallet.GenerationLegacy)
	d.Capabilities.SignMessage = func(_ context.Context, in txn.MessageInput) (txn.SignedMessage, error) {
		// An unverifiable response: wrong key and signature sizes.
		return txn.SignedMessage{Message: in.Message, Nonce: in.Nonce, FullMessage: in.Message}, nil
	}
	f := newFixture(t, Deps{}, Sources{Plugin: []*wallet.Descriptor{d}})
	connect(t, f, "Nightly")

	ok, err := f.bridge.SignMessageAndVerify(context.Background(), txn.MessageInput{Message: "hi", Nonce: "1"})
	if err != nil {
		t.Fatalf("SignMessageAndVerify: %v", err)
	}
	if ok {
		t.Error("unverifiable signature reported as valid")
	}
}
