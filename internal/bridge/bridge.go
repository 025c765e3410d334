// Package bridge is the public-facing orchestration engine. It owns the
// session, dispatches every operation to the protocol adapter matching the
// selected wallet's generation, converts between the two transaction shapes
// through the pipeline, and normalizes all failures into the typed error
// taxonomy.
//
// Operations are caller-serialized: the session has no internal locking and
// overlapping connect/disconnect/sign calls against one Bridge are a caller
// bug, not an internally guarded case.
package bridge

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/halcyonlabs/walletbridge/internal/adapter"
	"github.com/halcyonlabs/walletbridge/internal/client"
	"github.com/halcyonlabs/walletbridge/internal/config"
	"github.com/halcyonlabs/walletbridge/internal/events"
	"github.com/halcyonlabs/walletbridge/internal/metrics"
	"github.com/halcyonlabs/walletbridge/internal/registry"
	"github.com/halcyonlabs/walletbridge/internal/session"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// Analytics event names.
const (
	eventWalletConnect    = "wallet_connect"
	eventWalletDisconnect = "wallet_disconnect"
	eventSignAndSubmit    = "sign_and_submit_transaction"
	eventNetworkChange    = "network_change"
)

// Deps are the collaborator implementations a Bridge is wired with. Chain
// and Store are required; the rest may be nil for hosts that do not use
// them.
type Deps struct {
	Chain     client.ChainClient
	Names     client.NameResolver
	Analytics client.Analytics
	Store     client.Store
	Discovery client.DiscoveryChannel
	Env       client.EnvironmentProbe
	Logger    zerolog.Logger
}

// Sources are the wallet descriptors contributed at construction, mirroring
// the registry's discovery channels. Standard wallets come from
// Deps.Discovery.
type Sources struct {
	Plugin  []*wallet.Descriptor
	SDK     []*wallet.Descriptor
	Catalog []*wallet.Descriptor
}

// Bridge maintains exactly one active wallet connection and translates
// between the two wallet protocol generations.
type Bridge struct {
	cfg      *config.Config
	registry *registry.Registry
	session  *session.Session
	legacy   adapter.Adapter
	standard adapter.Adapter
	emitter  *events.Emitter
	metrics  *metrics.Metrics
	log      zerolog.Logger

	chain     client.ChainClient
	names     client.NameResolver
	analytics client.Analytics
	store     client.Store
	env       client.EnvironmentProbe

	detector     *wallet.Detector
	discoveryOff func()
}

// New wires a bridge: merges the wallet sources into the registry, hooks
// the discovery channel for late-registering standard wallets, and starts
// readiness detection for undetected plugin wallets.
func New(cfg *config.Config, deps Deps, src Sources) (*Bridge, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if deps.Chain == nil {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "bridge requires a chain client")
	}
	if deps.Store == nil {
		return nil, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "bridge requires a store")
	}

	var standardWallets []*wallet.Descriptor
	if deps.Discovery != nil {
		standardWallets = deps.Discovery.Wallets()
	}

	b := &Bridge{
		cfg: cfg,
		registry: registry.New(registry.Sources{
			Plugin:   src.Plugin,
			Standard: standardWallets,
			SDK:      src.SDK,
			Catalog:  src.Catalog,
		}, cfg.AllowList),
		session:   session.New(),
		emitter:   events.NewEmitter(),
		metrics:   metrics.New(),
		log:       deps.Logger,
		chain:     deps.Chain,
		names:     deps.Names,
		analytics: deps.Analytics,
		store:     deps.Store,
		env:       deps.Env,
		detector:  wallet.NewDetector(cfg.Detection.Attempts, cfg.Detection.Interval()),
	}

	b.legacy = adapter.NewLegacy()
	b.standard = adapter.NewStandard(deps.Chain.BuildRawTransaction)

	if deps.Discovery != nil {
		b.discoveryOff = deps.Discovery.OnRegister(b.onStandardWalletRegistered)
	}

	for _, d := range b.registry.Plugin() {
		b.detector.Watch(d, func(detected *wallet.Descriptor) {
			b.metrics.RecordEvent()
			b.emitter.EmitReadyStateChange(detected)
		})
	}

	return b, nil
}

// Close tears down the discovery-channel registration.
func (b *Bridge) Close() {
	if b.discoveryOff != nil {
		b.discoveryOff()
		b.discoveryOff = nil
	}
}

// Events exposes the typed notification channel for listener registration.
func (b *Bridge) Events() *events.Emitter {
	return b.emitter
}

// Metrics exposes the bridge's metrics instance.
func (b *Bridge) Metrics() *metrics.Metrics {
	return b.metrics
}

// Wallets returns every registered wallet.
func (b *Bridge) Wallets() []*wallet.Descriptor {
	return b.registry.All()
}

// PluginWallets returns the legacy plugin-generation wallets.
func (b *Bridge) PluginWallets() []*wallet.Descriptor {
	return b.registry.Plugin()
}

// StandardWallets returns the standard-generation wallets.
func (b *Bridge) StandardWallets() []*wallet.Descriptor {
	return b.registry.Standard()
}

// SuggestWallet returns the closest registered wallet name, for hints.
func (b *Bridge) SuggestWallet(name string) string {
	return b.registry.Suggest(name)
}

// Account returns the bound account, or nil when disconnected.
func (b *Bridge) Account() *wallet.AccountInfo {
	return b.session.Account
}

// Network returns the bound network, or nil when disconnected.
func (b *Bridge) Network() *wallet.NetworkInfo {
	return b.session.Network
}

// Connected reports whether a wallet connection is established.
func (b *Bridge) Connected() bool {
	return b.session.Connected
}

// WalletName returns the connected wallet's name, or "".
func (b *Bridge) WalletName() string {
	return b.session.WalletName()
}

// Connect establishes the single active connection to the named wallet.
// An unregistered name is a no-op. Connecting to the already-connected
// wallet fails. In a mobile context without an installed provider the
// wallet's deep link is opened instead and no session is established. Any
// failure clears the entire session, including the persisted wallet name,
// before the normalized error surfaces.
func (b *Bridge) Connect(ctx context.Context, name string) error {
	d, ok := b.registry.Lookup(name)
	if !ok {
		b.log.Debug().Str("wallet", name).Msg("connect ignored: wallet not registered")
		return nil
	}

	if b.session.IsConnectedTo(name) {
		return bridgeerr.WithDetails(bridgeerr.ErrConnectionFailed,
			map[string]string{"wallet": name, "reason": "already connected"})
	}

	if b.env != nil && b.env.MobileContext() && !d.Usable() {
		return b.openMobile(d)
	}

	if !d.Usable() {
		return bridgeerr.WithDetails(bridgeerr.ErrWalletNotReady,
			map[string]string{"wallet": name, "state": d.State().String()})
	}

	b.session.Connecting = true
	defer func() { b.session.Connecting = false }()

	started := time.Now()
	err := b.connectThroughAdapter(ctx, d)
	b.metrics.RecordConnect(time.Since(started), err)
	if err != nil {
		b.clearSession()
		return err
	}

	if setErr := b.store.Set(client.LastWalletKey, name); setErr != nil {
		// Persistence only feeds the external auto-reconnect bootstrap;
		// the established session stands.
		b.log.Warn().Err(setErr).Msg("persisting wallet name failed")
	}

	b.record(eventWalletConnect, map[string]string{
		"wallet":  name,
		"network": string(b.session.Network.Name),
	})

	b.metrics.RecordEvent()
	b.emitter.EmitConnect(*b.session.Account)
	return nil
}

// connectThroughAdapter performs the adapter handshake and commits the
// session fields together.
func (b *Bridge) connectThroughAdapter(ctx context.Context, d *wallet.Descriptor) error {
	ad := b.adapterFor(d)

	account, err := ad.Connect(ctx, d)
	if err != nil {
		return err
	}

	network, err := ad.Network(ctx, d)
	if err != nil {
		return err
	}

	b.refreshAlias(ctx, &account, network)
	b.session.Bind(d, account, network)
	return nil
}

// openMobile routes connect through the wallet's deep link; no session is
// established.
func (b *Bridge) openMobile(d *wallet.Descriptor) error {
	if d.Capabilities.OpenInMobileApp == nil {
		return bridgeerr.WithDetails(bridgeerr.ErrWalletNotReady,
			map[string]string{"wallet": d.Name, "reason": "no mobile deep link"})
	}
	if err := d.Capabilities.OpenInMobileApp(d.URL); err != nil {
		return bridgeerr.Normalize(bridgeerr.ErrConnectionFailed, err)
	}
	b.log.Debug().Str("wallet", d.Name).Msg("opened wallet mobile deep link")
	return nil
}

// Disconnect tears down the active connection. The session is cleared and
// the disconnect notification emitted even when the provider call fails;
// the provider failure still surfaces as the return value.
func (b *Bridge) Disconnect(ctx context.Context) error {
	if err := b.ensureWalletExists(); err != nil {
		return err
	}

	d := b.session.Wallet
	b.session.Connecting = true
	defer func() { b.session.Connecting = false }()

	err := b.adapterFor(d).Disconnect(ctx, d)

	b.clearSession()
	b.metrics.RecordDisconnect()
	b.record(eventWalletDisconnect, map[string]string{"wallet": d.Name})
	b.metrics.RecordEvent()
	b.emitter.EmitDisconnect()

	return err
}

// clearSession resets every session field and the persisted wallet name.
func (b *Bridge) clearSession() {
	connecting := b.session.Connecting
	b.session.Reset()
	b.session.Connecting = connecting

	if err := b.store.Delete(client.LastWalletKey); err != nil {
		b.log.Warn().Err(err).Msg("clearing persisted wallet name failed")
	}
}

// adapterFor selects the protocol adapter matching the wallet's generation.
func (b *Bridge) adapterFor(d *wallet.Descriptor) adapter.Adapter {
	standard := d.IsStandard()
	b.metrics.RecordDispatch(standard)
	if standard {
		return b.standard
	}
	return b.legacy
}

// record forwards a fire-and-forget analytics event.
func (b *Bridge) record(event string, metadata map[string]string) {
	if b.analytics == nil {
		return
	}
	b.analytics.Record(event, metadata)
}

// refreshAlias resolves the account's name-service alias; networks without
// a name service and resolver failures leave the alias empty.
func (b *Bridge) refreshAlias(ctx context.Context, account *wallet.AccountInfo, network wallet.NetworkInfo) {
	account.Alias = ""
	if b.names == nil || !network.Name.SupportsNameService() {
		return
	}

	alias, err := b.names.Resolve(ctx, account.Address, network.Name)
	if err != nil {
		b.log.Debug().Err(err).Str("address", account.Address).Msg("alias lookup failed")
		return
	}
	account.Alias = alias
}

// onStandardWalletRegistered folds a late-registering standard wallet into
// the registry and notifies listeners; wallets outside the allow-list never
// surface.
func (b *Bridge) onStandardWalletRegistered(d *wallet.Descriptor) {
	stored, added := b.registry.Add(d)
	if !added {
		return
	}
	b.metrics.RecordEvent()
	b.emitter.EmitStandardWalletsAdded(stored)
}
