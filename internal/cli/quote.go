package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/bimakw/dex-swap/internal/app"
	"github.com/bimakw/dex-swap/internal/domain/entities"
	"github.com/bimakw/dex-swap/internal/domain/services"
)

// swapFlags are shared by quote and swap
type swapFlags struct {
	chain    string
	tokenIn  string
	tokenOut string
	amount   string
	exactOut bool
	poolIDs  []string
}

var quoteFlags swapFlags

var quoteCmd = &cobra.Command{
	Use:   "quote",
	Short: "Quote a swap without sending anything",
	Long: `Quote a swap and show its price impact.

Tokens are given by address or by symbol from the chain's token list.

Examples:
  swapctl quote --chain MAINNET --in ETH --out USDC --amount 1
  swapctl quote --chain MAINNET --in WETH --out ETH --amount 2
  swapctl quote --chain ARBITRUM --in USDC --out WETH --amount 1 --exact-out`,
	RunE: runQuote,
}

func init() {
	rootCmd.AddCommand(quoteCmd)
	quoteFlags.register(quoteCmd)
}

func (f *swapFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.chain, "chain", "MAINNET", "Chain name or chain id")
	cmd.Flags().StringVar(&f.tokenIn, "in", "", "Token to sell (address or symbol)")
	cmd.Flags().StringVar(&f.tokenOut, "out", "", "Token to buy (address or symbol)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "Amount in human units")
	cmd.Flags().BoolVar(&f.exactOut, "exact-out", false, "Treat --amount as the amount to receive")
	cmd.Flags().StringSliceVar(&f.poolIDs, "pool", nil, "Restrict routing to these pool ids")
	_ = cmd.MarkFlagRequired("in")
	_ = cmd.MarkFlagRequired("out")
	_ = cmd.MarkFlagRequired("amount")
}

func runQuote(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.Close()

	quote, impact, err := fetchQuote(cmd, a, quoteFlags)
	if err != nil {
		return err
	}

	if jsonOutput(cmd) {
		return printJSON(cmd.OutOrStdout(), map[string]interface{}{"quote": quote, "priceImpact": impact})
	}
	printQuote(cmd.OutOrStdout(), a, quote, impact)
	return nil
}

// fetchQuote resolves the flags into a request and quotes it behind a spinner
func fetchQuote(cmd *cobra.Command, a *app.App, f swapFlags) (services.SwapQuote, services.PriceImpactReport, error) {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.Config.HTTPTimeout)
	defer cancel()

	req, err := f.request(ctx, a)
	if err != nil {
		return services.SwapQuote{}, services.PriceImpactReport{}, err
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
	if !jsonOutput(cmd) {
		s.Suffix = " Fetching quote..."
		s.Start()
	}
	quote, err := a.Swaps.Simulate(ctx, req)
	if err != nil {
		s.Stop()
		return services.SwapQuote{}, services.PriceImpactReport{}, fmt.Errorf("%s", entities.UserMessage(err))
	}
	impact := a.PriceImpact.ForQuote(ctx, &quote)
	s.Stop()
	return quote, impact, nil
}

func (f swapFlags) request(ctx context.Context, a *app.App) (entities.SwapRequest, error) {
	chain, err := parseChain(f.chain)
	if err != nil {
		return entities.SwapRequest{}, err
	}
	cfg, err := a.Registry.GetConfig(chain)
	if err != nil {
		return entities.SwapRequest{}, err
	}

	var tokens []entities.Token
	if !common.IsHexAddress(f.tokenIn) || !common.IsHexAddress(f.tokenOut) {
		tokens, err = a.Tokens.Tokens(ctx, chain)
		if err != nil {
			return entities.SwapRequest{}, fmt.Errorf("failed to load token list: %w", err)
		}
	}
	tokenIn, err := matchToken(cfg, tokens, f.tokenIn)
	if err != nil {
		return entities.SwapRequest{}, err
	}
	tokenOut, err := matchToken(cfg, tokens, f.tokenOut)
	if err != nil {
		return entities.SwapRequest{}, err
	}

	swapType := entities.SwapExactIn
	if f.exactOut {
		swapType = entities.SwapExactOut
	}
	return entities.SwapRequest{
		Chain:      chain,
		TokenIn:    tokenIn,
		TokenOut:   tokenOut,
		SwapAmount: f.amount,
		SwapType:   swapType,
		PoolIDs:    f.poolIDs,
	}, nil
}

// parseChain accepts a chain name or a chain id
func parseChain(value string) (entities.Chain, error) {
	var id uint64
	if _, err := fmt.Sscanf(value, "%d", &id); err == nil && fmt.Sprint(id) == value {
		chain, ok := registry.ChainForID(id)
		if !ok {
			return "", fmt.Errorf("unsupported chain id %d", id)
		}
		return chain, nil
	}
	chain := entities.Chain(strings.ToUpper(value))
	if _, err := registry.GetConfig(chain); err != nil {
		return "", err
	}
	return chain, nil
}

// matchToken resolves an address, the native symbol or a token list symbol
func matchToken(cfg entities.NetworkConfig, tokens []entities.Token, arg string) (common.Address, error) {
	if common.IsHexAddress(arg) {
		return common.HexToAddress(arg), nil
	}
	if strings.EqualFold(arg, cfg.NativeAsset.Symbol) {
		return entities.NativeAssetAddress, nil
	}
	matches := lo.Filter(tokens, func(t entities.Token, _ int) bool {
		return strings.EqualFold(t.Symbol, arg)
	})
	switch len(matches) {
	case 0:
		return common.Address{}, fmt.Errorf("token %q not found on %s", arg, cfg.Chain)
	case 1:
		return matches[0].Address, nil
	default:
		return common.Address{}, fmt.Errorf("symbol %q is ambiguous on %s, use an address", arg, cfg.Chain)
	}
}

func printQuote(w io.Writer, a *app.App, quote services.SwapQuote, impact services.PriceImpactReport) {
	base := quote.Result.Quote()
	req := quote.Request

	fmt.Fprintln(w, "\n"+strings.Repeat("=", 60))
	color.New(color.FgGreen).Fprintln(w, "                     SWAP QUOTE")
	fmt.Fprintln(w, strings.Repeat("=", 60))

	in, out := req.SwapAmount, base.ReturnAmount
	if req.SwapType == entities.SwapExactOut {
		in, out = base.ReturnAmount, req.SwapAmount
	}
	fmt.Fprintf(w, "\n  Strategy:          %s\n", quote.Strategy.Kind)
	fmt.Fprintf(w, "  From:              %s %s\n", in, color.YellowString(tokenLabel(a, req.Chain, req.TokenIn)))
	fmt.Fprintf(w, "  To:                %s %s\n", out, color.YellowString(tokenLabel(a, req.Chain, req.TokenOut)))
	fmt.Fprintf(w, "  Price:             %s\n", base.EffectivePrice)
	fmt.Fprintf(w, "  Reversed price:    %s\n", base.EffectivePriceReversed)
	if amm, ok := quote.Result.(*entities.AmmQuote); ok {
		fmt.Fprintf(w, "  Route:             Balancer v%d, %d hop(s)\n", amm.ProtocolVersion, amm.HopCount)
	}
	fmt.Fprintf(w, "  Price impact:      %s\n", impactColor(impact.Level)("%s", impactText(impact)))
	if impact.RequiresAcknowledgement {
		color.New(color.FgRed).Fprintf(w, "\n  %s\n", impactWarning(impact.Level))
	}
	fmt.Fprintln(w)
}

func tokenLabel(a *app.App, chain entities.Chain, address common.Address) string {
	token, err := a.Tokens.GetToken(context.Background(), address, chain)
	if err != nil {
		return address.Hex()
	}
	return token.Symbol
}

func impactText(impact services.PriceImpactReport) string {
	if impact.Level == entities.PriceImpactUnknown {
		return "unknown"
	}
	return fmt.Sprintf("%s%s", impact.Level, impact.Label)
}

func impactWarning(level entities.PriceImpactLevel) string {
	if level == entities.PriceImpactUnknown {
		return "Price impact could not be calculated."
	}
	return "Price impact exceeds " + entities.ExceedsLabel(level) + "."
}

func impactColor(level entities.PriceImpactLevel) func(format string, a ...interface{}) string {
	switch level {
	case entities.PriceImpactLow:
		return color.GreenString
	case entities.PriceImpactMedium:
		return color.YellowString
	case entities.PriceImpactHigh, entities.PriceImpactMax:
		return color.RedString
	default:
		return color.MagentaString
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(data))
	return nil
}
