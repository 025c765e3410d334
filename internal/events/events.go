// Package events is the typed notification channel between the bridge and
// external listeners. The notification kinds form a closed set; listeners
// register and tear down through explicit On*/unsubscribe pairs.
//
// Delivery is synchronous and in listener-registration order, and the
// bridge only emits after the triggering state mutation has committed.
package events

import (
	evbus "github.com/asaskevich/EventBus"

	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// Notification topics. The set is closed: adding a kind means adding a
// typed On/Emit pair below, never publishing an ad hoc topic.
const (
	topicConnect              = "bridge:connect"
	topicDisconnect           = "bridge:disconnect"
	topicAccountChange        = "bridge:accountChange"
	topicNetworkChange        = "bridge:networkChange"
	topicStandardWalletsAdded = "bridge:standardWalletsAdded"
	topicReadyStateChange     = "bridge:readyStateChange"
)

// Unsubscribe tears down a listener registration.
type Unsubscribe func()

// Emitter fans out bridge notifications to registered listeners.
type Emitter struct {
	bus evbus.Bus
}

// NewEmitter creates an emitter with no listeners.
func NewEmitter() *Emitter {
	return &Emitter{bus: evbus.New()}
}

// OnConnect registers a listener for successful connections.
func (e *Emitter) OnConnect(fn func(wallet.AccountInfo)) Unsubscribe {
	return e.subscribe(topicConnect, fn)
}

// EmitConnect notifies listeners of a committed connection.
func (e *Emitter) EmitConnect(account wallet.AccountInfo) {
	e.bus.Publish(topicConnect, account)
}

// OnDisconnect registers a listener for disconnections.
func (e *Emitter) OnDisconnect(fn func()) Unsubscribe {
	return e.subscribe(topicDisconnect, fn)
}

// EmitDisconnect notifies listeners of a committed disconnection.
func (e *Emitter) EmitDisconnect() {
	e.bus.Publish(topicDisconnect)
}

// OnAccountChange registers a listener for account changes.
func (e *Emitter) OnAccountChange(fn func(wallet.AccountInfo)) Unsubscribe {
	return e.subscribe(topicAccountChange, fn)
}

// EmitAccountChange notifies listeners of a committed account change.
func (e *Emitter) EmitAccountChange(account wallet.AccountInfo) {
	e.bus.Publish(topicAccountChange, account)
}

// OnNetworkChange registers a listener for network changes.
func (e *Emitter) OnNetworkChange(fn func(wallet.NetworkInfo)) Unsubscribe {
	return e.subscribe(topicNetworkChange, fn)
}

// EmitNetworkChange notifies listeners of a committed network change.
func (e *Emitter) EmitNetworkChange(network wallet.NetworkInfo) {
	e.bus.Publish(topicNetworkChange, network)
}

// OnStandardWalletsAdded registers a listener for standard wallets joining
// the registry after construction.
func (e *Emitter) OnStandardWalletsAdded(fn func(*wallet.Descriptor)) Unsubscribe {
	return e.subscribe(topicStandardWalletsAdded, fn)
}

// EmitStandardWalletsAdded notifies listeners of a newly registered
// standard wallet.
func (e *Emitter) EmitStandardWalletsAdded(d *wallet.Descriptor) {
	e.bus.Publish(topicStandardWalletsAdded, d)
}

// OnReadyStateChange registers a listener for wallet readiness changes.
func (e *Emitter) OnReadyStateChange(fn func(*wallet.Descriptor)) Unsubscribe {
	return e.subscribe(topicReadyStateChange, fn)
}

// EmitReadyStateChange notifies listeners of a wallet readiness change.
func (e *Emitter) EmitReadyStateChange(d *wallet.Descriptor) {
	e.bus.Publish(topicReadyStateChange, d)
}

// subscribe registers fn synchronously so delivery happens inline, in
// registration order, on the emitting goroutine.
func (e *Emitter) subscribe(topic string, fn any) Unsubscribe {
	// Subscribe only errors for non-function handlers; the typed On*
	// wrappers make that unreachable.
	_ = e.bus.Subscribe(topic, fn)
	return func() {
		_ = e.bus.Unsubscribe(topic, fn)
	}
}
