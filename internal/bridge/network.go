package bridge

import (
	"context"

	"github.com/halcyonlabs/walletbridge/internal/wallet"
	bridgeerr "github.com/halcyonlabs/walletbridge/pkg/errors"
)

// ChangeNetwork asks the connected wallet to switch networks. The target
// chain id resolves before the wallet is invoked, including the dynamic
// devnet fetch, so the wallet always receives a complete network record.
// On success the session commits the resulting network, the account alias
// refreshes under it, and the network-change notification fires.
func (b *Bridge) ChangeNetwork(ctx context.Context, target wallet.Network) (wallet.NetworkInfo, error) {
	if err := b.ensureWalletExists(); err != nil {
		return wallet.NetworkInfo{}, err
	}
	if !target.IsValid() {
		return wallet.NetworkInfo{}, bridgeerr.Wrap(bridgeerr.ErrInvalidInput, "unknown network %q", string(target))
	}

	chainID, err := target.ResolveChainID(ctx, b.chain)
	if err != nil {
		return wallet.NetworkInfo{}, bridgeerr.Normalize(bridgeerr.ErrNetworkChangeFailed, err)
	}

	info := wallet.NetworkInfo{
		Name:    target,
		ChainID: chainID,
		RPCURL:  b.rpcFor(target),
	}

	d := b.session.Wallet
	out, err := b.adapterFor(d).ChangeNetwork(ctx, d, info)
	if err != nil {
		return wallet.NetworkInfo{}, err
	}
	// Some providers acknowledge without echoing the network back.
	if out.Name == "" {
		out = info
	}

	b.commitNetwork(ctx, out)
	b.record(eventNetworkChange, map[string]string{
		"wallet":  d.Name,
		"network": string(out.Name),
	})
	return out, nil
}

// OnAccountChange subscribes to the wallet's account-change feed. Each
// change replaces the bound account wholesale, refreshes its alias, and
// emits the account-change notification after the session has committed.
func (b *Bridge) OnAccountChange() error {
	if err := b.ensureWalletExists(); err != nil {
		return err
	}

	d := b.session.Wallet
	return b.adapterFor(d).SubscribeAccountChange(d, func(account wallet.AccountInfo) {
		// The provider callback carries no context; alias lookup runs
		// against the background context.
		if b.session.Network != nil {
			b.refreshAlias(context.Background(), &account, *b.session.Network)
		}
		b.session.ReplaceAccount(account)
		b.metrics.RecordEvent()
		b.emitter.EmitAccountChange(account)
	})
}

// OnNetworkChange subscribes to the wallet's network-change feed. Each
// change replaces the bound network wholesale and refreshes the account
// alias under the new network before the notification fires.
func (b *Bridge) OnNetworkChange() error {
	if err := b.ensureWalletExists(); err != nil {
		return err
	}

	d := b.session.Wallet
	return b.adapterFor(d).SubscribeNetworkChange(d, func(network wallet.NetworkInfo) {
		b.commitNetwork(context.Background(), network)
	})
}

// commitNetwork replaces the session network, refreshes the account alias
// under it, and emits the network-change notification.
func (b *Bridge) commitNetwork(ctx context.Context, network wallet.NetworkInfo) {
	b.session.ReplaceNetwork(network)
	if b.session.Account != nil {
		account := *b.session.Account
		b.refreshAlias(ctx, &account, network)
		b.session.ReplaceAccount(account)
	}
	b.metrics.RecordEvent()
	b.emitter.EmitNetworkChange(network)
}

// rpcFor maps a network name to its configured RPC endpoint.
func (b *Bridge) rpcFor(target wallet.Network) string {
	switch target {
	case wallet.Mainnet:
		return b.cfg.Networks.Mainnet.RPC
	case wallet.Testnet:
		return b.cfg.Networks.Testnet.RPC
	case wallet.Devnet:
		return b.cfg.Networks.Devnet.RPC
	case wallet.Local:
		return b.cfg.Networks.Local.RPC
	default:
		return ""
	}
}
