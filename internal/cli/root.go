package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/dex-swap/internal/app"
	"github.com/bimakw/dex-swap/internal/config"
	"github.com/bimakw/dex-swap/internal/domain/networks"
)

var rootCmd = &cobra.Command{
	Use:   "swapctl",
	Short: "Quote and execute token swaps routed through Balancer",
	Long: `swapctl quotes swaps through the Balancer path oracle, shows their price
impact and can sign and send them with a local key.

Native wraps (ETH <-> WETH) and Lido stETH <-> wstETH are detected and executed
directly against the wrapper contracts.

Examples:
  swapctl quote --chain MAINNET --in ETH --out USDC --amount 1
  swapctl quote --chain BASE --in USDC --out WETH --amount 0.5 --exact-out
  swapctl swap --chain MAINNET --in WETH --out USDC --amount 1 --slippage 0.5
  swapctl fx EUR
  swapctl networks`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var registry = networks.DefaultRegistry()

// Execute runs the root command
func Execute(version string) error {
	rootCmd.Version = version
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "Output in JSON format")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}
}

// loadApp wires services for commands that need the network
func loadApp() (*app.App, error) {
	chainIDs := make([]uint64, 0, len(registry.Configs()))
	for _, c := range registry.Configs() {
		chainIDs = append(chainIDs, c.ChainID)
	}
	cfg, err := config.Load(chainIDs)
	if err != nil {
		return nil, err
	}
	return app.New(cfg, registry)
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printError(err error) {
	fmt.Fprintf(os.Stderr, "\n%s %v\n\n", color.RedString("Error:"), err)
}
