package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/bimakw/dex-swap/internal/domain/entities"
)

var fxCmd = &cobra.Command{
	Use:   "fx [currency]",
	Short: "Show currency rates relative to USD",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFx,
}

func init() {
	rootCmd.AddCommand(fxCmd)
}

func runFx(cmd *cobra.Command, args []string) error {
	currencies := entities.SupportedCurrencies
	if len(args) == 1 {
		c, ok := entities.ParseCurrency(args[0])
		if !ok {
			return fmt.Errorf("unsupported currency %q", args[0])
		}
		currencies = []entities.SupportedCurrency{c}
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.HTTPTimeout)
	defer cancel()

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput(cmd) {
		s.Suffix = " Fetching currency rates..."
		s.Start()
	}
	rates, err := a.FxRates.Rates(ctx)
	s.Stop()
	if err != nil {
		return err
	}

	out := make(map[string]string, len(currencies))
	for _, c := range currencies {
		out[string(c)] = a.FxRates.Rate(ctx, c).String()
	}
	if jsonOutput(cmd) {
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	for _, c := range currencies {
		fmt.Fprintf(cmd.OutOrStdout(), "  %-4s %-2s %s\n", c, c.Symbol(), out[string(c)])
	}
	if len(rates) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "\n  No rates available, values default to 1.")
	}
	return nil
}
