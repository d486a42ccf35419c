package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var networksCmd = &cobra.Command{
	Use:     "networks",
	Aliases: []string{"chains"},
	Short:   "List supported networks",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printNetworks(cmd.OutOrStdout(), registry.Configs(), jsonOutput(cmd))
	},
}

func init() {
	rootCmd.AddCommand(networksCmd)
}

func printNetworks(w io.Writer, configs []entities.NetworkConfig, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(configs)
	}

	fmt.Fprintf(w, "%-10s %-10s %-20s %-8s %s\n", "CHAIN ID", "CHAIN", "NAME", "NATIVE", "BALANCER")
	for _, c := range configs {
		versions := "v2"
		if c.Contracts.Balancer.VaultV3 != (common.Address{}) {
			versions = "v2, v3"
		}
		fmt.Fprintf(w, "%-10d %-10s %-20s %-8s %s\n", c.ChainID, c.Chain, c.Name, c.NativeAsset.Symbol, versions)
		for _, wr := range c.SupportedWrappers {
			fmt.Fprintf(w, "           %s %s -> %s\n", color.CyanString(string(wr.Handler)), wr.BaseToken.Hex(), wr.WrappedToken.Hex())
		}
	}
	return nil
}
