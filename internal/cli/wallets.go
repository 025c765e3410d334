package cli

import (
	"github.com/spf13/cobra"

	"github.com/halcyonlabs/walletbridge/internal/bridge"
	"github.com/halcyonlabs/walletbridge/internal/embedded"
	"github.com/halcyonlabs/walletbridge/internal/storage"
	"github.com/halcyonlabs/walletbridge/internal/wallet"
)

// walletsCmd lists every wallet the registry knows about.
var walletsCmd = &cobra.Command{
	Use:   "wallets",
	Short: "List registered wallets",
	RunE:  runWallets,
}

func runWallets(cmd *cobra.Command, _ []string) error {
	network := wallet.NetworkInfo{
		Name:    wallet.Local,
		ChainID: 4,
		RPCURL:  cfg.Networks.Local.RPC,
	}
	w, _, err := embedded.NewRandom(network)
	if err != nil {
		return err
	}

	b, err := bridge.New(cfg, bridge.Deps{
		Chain:  newLocalChain(network.ChainID),
		Store:  storage.NewMemoryStore(),
		Logger: logger,
	}, bridge.Sources{
		SDK:     []*wallet.Descriptor{w.Descriptor()},
		Catalog: wallet.Catalog(),
	})
	if err != nil {
		return err
	}
	defer b.Close()

	cmd.Printf("%-12s %-10s %s\n", "NAME", "PROTOCOL", "STATE")
	for _, d := range b.Wallets() {
		cmd.Printf("%-12s %-10s %s\n", d.Name, d.Generation, d.State())
	}
	return nil
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	rootCmd.AddCommand(walletsCmd)
}
