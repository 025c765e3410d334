// Package session holds the single authoritative connection record: the
// current wallet, account, network, and the connecting/connected flags.
//
// A Session belongs to exactly one bridge instance and has no internal
// locking: callers must not run overlapping connect/disconnect/sign
// operations against the same bridge. That contract lives here, not in a
// mutex.
package session

import (
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// Session is the single mutable record of the active connection.
// Invariant: Connected implies Wallet, Account, and Network are all
// non-nil. Connecting is set at the start of a connect or disconnect call
// and cleared on every exit path, including failures.
type Session struct {
	Wallet     *wallet.Descriptor
	Account    *wallet.AccountInfo
	Network    *wallet.NetworkInfo
	Connecting bool
	Connected  bool
}

// New returns an empty, disconnected session.
func New() *Session {
	return &Session{}
}

// Bind commits a successful connection: all fields are set together so the
// Connected invariant holds atomically from the caller's point of view.
func (s *Session) Bind(w *wallet.Descriptor, account wallet.AccountInfo, network wallet.NetworkInfo) {
	s.Wallet = w
	s.Account = &account
	s.Network = &network
	s.Connected = true
}

// Reset clears every field back to the disconnected state.
func (s *Session) Reset() {
	s.Wallet = nil
	s.Account = nil
	s.Network = nil
	s.Connected = false
	s.Connecting = false
}

// ReplaceAccount swaps the bound account wholesale.
func (s *Session) ReplaceAccount(account wallet.AccountInfo) {
	s.Account = &account
}

// ReplaceNetwork swaps the bound network wholesale.
func (s *Session) ReplaceNetwork(network wallet.NetworkInfo) {
	s.Network = &network
}

// WalletName returns the bound wallet's name, or "" when none is bound.
func (s *Session) WalletName() string {
	if s.Wallet == nil {
		return ""
	}
	return s.Wallet.Name
}

// IsConnectedTo reports whether the session is connected to the named
// wallet.
func (s *Session) IsConnectedTo(name string) bool {
	return s.Connected && s.WalletName() == name
}
