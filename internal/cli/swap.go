package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/services"
	"github.com/bimakw/dex-swap/internal/infrastructure/ethereum"
)

var (
	swapCmdFlags swapFlags
	slippage     string
	wethIsEth    bool
	noConfirm    bool
)

var swapCmd = &cobra.Command{
	Use:   "swap",
	Short: "Quote, sign and send a swap",
	Long: `Quote a swap, then approve the input token when needed and send the swap
transaction signed with PRIVATE_KEY. Both transactions wait for the chain's
confirmation count.

IMPORTANT:
  - PRIVATE_KEY and RPC_URL_<chainId> must be set
  - High or unknown price impact always asks for confirmation unless --yes is given

Examples:
  swapctl swap --chain MAINNET --in WETH --out USDC --amount 1
  swapctl swap --chain BASE --in ETH --out WETH --amount 0.1 --yes`,
	RunE: runSwap,
}

func init() {
	rootCmd.AddCommand(swapCmd)
	swapCmdFlags.register(swapCmd)
	swapCmd.Flags().StringVar(&slippage, "slippage", "", "Slippage tolerance in percent (default DEFAULT_SLIPPAGE)")
	swapCmd.Flags().BoolVar(&wethIsEth, "weth-is-eth", false, "Send or receive the wrapped native token as native")
	swapCmd.Flags().BoolVarP(&noConfirm, "yes", "y", false, "Skip confirmation prompts")
}

func runSwap(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Config.PrivateKey == "" {
		return errors.New("PRIVATE_KEY is not set")
	}
	wallet, err := ethereum.NewWallet(a.Config.PrivateKey)
	if err != nil {
		return err
	}

	quote, impact, err := fetchQuote(cmd, a, swapCmdFlags)
	if err != nil {
		return err
	}
	printQuote(cmd.OutOrStdout(), a, quote, impact)

	if !noConfirm && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), confirmPrompt(impact)) {
		fmt.Fprintln(cmd.OutOrStdout(), "\nSwap cancelled.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, err := a.Registry.GetConfig(quote.Request.Chain)
	if err != nil {
		return err
	}
	client, err := a.Clients.Client(ctx, cfg.ChainID)
	if err != nil {
		return err
	}
	signer := ethereum.NewSigner(client, wallet, cfg.ChainID)

	tolerance := slippage
	if tolerance == "" {
		tolerance = a.Config.DefaultSlippage
	}
	in, err := a.Swaps.BuildInputFor(ctx, quote, wallet.Address(), tolerance, nil)
	if err != nil {
		return err
	}
	in.WethIsEth = wethIsEth

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	s.Suffix = " Executing swap..."
	s.Start()
	stopProgress := trackProgress(ctx, s, a.Executor)
	result, err := a.Executor.Execute(ctx, signer, in)
	stopProgress()
	s.Stop()

	printExecution(cmd.OutOrStdout(), cfg, result)
	if err != nil {
		return fmt.Errorf("%s: %w", entities.UserMessage(err), err)
	}
	return nil
}

func confirmPrompt(impact services.PriceImpactReport) string {
	if impact.RequiresAcknowledgement {
		return impactWarning(impact.Level) + " Swap anyway? (y/N): "
	}
	return "Proceed with swap? (y/N): "
}

func confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprint(w, "\n"+prompt)
	response, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && response == "" {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

// trackProgress mirrors the executor lifecycles in the spinner suffix
func trackProgress(ctx context.Context, s *spinner.Spinner, executor *services.SwapExecutor) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(250 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				label := progressLabel(executor.ApprovalLifecycle.State(), executor.TransactionLifecycle.State())
				s.Lock()
				s.Suffix = label
				s.Unlock()
			}
		}
	}()
	return func() { close(done) }
}

func progressLabel(approval, tx entities.LifecycleState) string {
	if tx != entities.StateIdle {
		return " Swap: " + string(tx)
	}
	if approval != entities.StateIdle {
		return " Approval: " + string(approval)
	}
	return " Executing swap..."
}

func printExecution(w io.Writer, cfg entities.NetworkConfig, result services.ExecutionResult) {
	if result.Approval != nil {
		if result.Approval.Skipped {
			fmt.Fprintln(w, "\n  Allowance already sufficient, approval skipped.")
		} else {
			fmt.Fprintf(w, "\n  Approval tx:  %s\n", color.CyanString(result.Approval.TxHash.Hex()))
		}
	}
	if result.Transaction.TxHash != (common.Hash{}) {
		color.New(color.FgGreen).Fprintf(w, "\n  Swap confirmed on %s\n", cfg.Name)
		fmt.Fprintf(w, "  Swap tx:      %s\n", color.CyanString(result.Transaction.TxHash.Hex()))
		fmt.Fprintf(w, "  Gas limit:    %d\n\n", result.Transaction.GasLimit)
	}
}
