/*

vse is the command-line front end for the vault settlement engine. Every
subcommand loads a pool state snapshot from JSON, settles one operation
against it with the built-in pool types registered, and prints the result as
JSON. Nothing is persisted; the engine is a pure calculator over the
snapshot.

*/

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ammlabs/vse/internal/config"
	"github.com/ammlabs/vse/internal/logger"
	"github.com/ammlabs/vse/internal/pools"
	"github.com/ammlabs/vse/internal/types"
	"github.com/ammlabs/vse/internal/utils"
	"github.com/ammlabs/vse/internal/vault"
)

var (
	poolFile      string
	tokenDecimals int
)

func main() {
	root := &cobra.Command{
		Use:   "vse",
		Short: "Settle AMM swap and liquidity operations against a pool snapshot",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil {
				log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
			}
			if err := config.LoadConfig(); err != nil {
				return err
			}
			logger.Initialize(config.LogLevel)
			if poolFile == "" {
				poolFile = config.PoolFile
			}
			return nil
		},
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&poolFile, "pool", "", "path to the pool state JSON snapshot")
	root.PersistentFlags().IntVar(&tokenDecimals, "decimals", 18, "native token decimals applied to decimal-form amounts")

	root.AddCommand(newSwapCmd(), newAddLiquidityCmd(), newRemoveLiquidityCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// newEngine builds an engine with the stock pool types registered.
func newEngine() *vault.Engine {
	engine := vault.NewEngine()
	pools.Register(engine)
	return engine
}

// loadPoolState reads and decodes the pool snapshot the operation settles
// against.
func loadPoolState(path string) (*types.PoolState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pool state file: %w", err)
	}
	var pool types.PoolState
	if err := json.Unmarshal(data, &pool); err != nil {
		return nil, fmt.Errorf("failed to decode pool state file: %w", err)
	}
	return &pool, nil
}

func printResult(v any) error {
	var (
		data []byte
		err  error
	)
	if config.PrettyOutput {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

// parseAmount accepts either a raw integer amount or a decimal string, which
// is expanded using the --decimals flag.
func parseAmount(s string) (sdkmath.Int, error) {
	s = strings.TrimSpace(s)
	if strings.Contains(s, ".") {
		return utils.ParseAmount(s, tokenDecimals)
	}
	v, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return sdkmath.Int{}, fmt.Errorf("invalid integer amount %q", s)
	}
	return v, nil
}

func parseAmountList(s string) ([]sdkmath.Int, error) {
	parts := strings.Split(s, ",")
	out := make([]sdkmath.Int, len(parts))
	for i, p := range parts {
		v, err := parseAmount(p)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func newSwapCmd() *cobra.Command {
	var (
		kind     string
		amount   string
		tokenIn  string
		tokenOut string
	)
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Settle a swap against the pool snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := loadPoolState(poolFile)
			if err != nil {
				return err
			}
			amountRaw, err := parseAmount(amount)
			if err != nil {
				return err
			}
			input := &types.SwapInput{
				AmountRaw: amountRaw,
				TokenIn:   common.HexToAddress(tokenIn),
				TokenOut:  common.HexToAddress(tokenOut),
			}
			switch kind {
			case "given-in":
				input.Kind = types.SwapKindGivenIn
			case "given-out":
				input.Kind = types.SwapKindGivenOut
			default:
				return fmt.Errorf("unknown swap kind %q (want given-in or given-out)", kind)
			}

			result, err := newEngine().Swap(input, pool, nil)
			if err != nil {
				return err
			}
			if display, derr := utils.SDKIntToFloat64(result.AmountCalculatedRaw, tokenDecimals); derr == nil {
				log.Info().Float64("amountCalculated", display).Msg("Swap settled")
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "given-in", "swap kind: given-in or given-out")
	cmd.Flags().StringVar(&amount, "amount", "", "raw amount in the token's native decimals")
	cmd.Flags().StringVar(&tokenIn, "token-in", "", "address of the token paid into the pool")
	cmd.Flags().StringVar(&tokenOut, "token-out", "", "address of the token taken out of the pool")
	cmd.MarkFlagRequired("amount")
	cmd.MarkFlagRequired("token-in")
	cmd.MarkFlagRequired("token-out")
	return cmd
}

func newAddLiquidityCmd() *cobra.Command {
	var (
		kind         string
		maxAmountsIn string
		minBptOut    string
	)
	cmd := &cobra.Command{
		Use:   "add-liquidity",
		Short: "Settle a liquidity deposit against the pool snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := loadPoolState(poolFile)
			if err != nil {
				return err
			}
			amounts, err := parseAmountList(maxAmountsIn)
			if err != nil {
				return err
			}
			minBpt, err := parseAmount(minBptOut)
			if err != nil {
				return err
			}
			input := &types.AddLiquidityInput{
				MaxAmountsInRaw: amounts,
				MinBptAmountOut: minBpt,
			}
			switch kind {
			case "unbalanced":
				input.Kind = types.AddLiquidityUnbalanced
			case "single-token-exact-out":
				input.Kind = types.AddLiquiditySingleTokenExactOut
			default:
				return fmt.Errorf("unknown add liquidity kind %q", kind)
			}

			result, err := newEngine().AddLiquidity(input, pool, nil)
			if err != nil {
				return err
			}
			// BPT is always an 18-decimal token.
			if display, derr := utils.SDKIntToFloat64(result.BptAmountOutRaw, 18); derr == nil {
				log.Info().Float64("bptAmountOut", display).Msg("Liquidity added")
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "unbalanced", "add kind: unbalanced or single-token-exact-out")
	cmd.Flags().StringVar(&maxAmountsIn, "max-amounts-in", "", "comma-separated raw amounts, one per pool token")
	cmd.Flags().StringVar(&minBptOut, "min-bpt-out", "0", "minimum acceptable BPT out")
	cmd.MarkFlagRequired("max-amounts-in")
	return cmd
}

func newRemoveLiquidityCmd() *cobra.Command {
	var (
		kind          string
		minAmountsOut string
		maxBptIn      string
	)
	cmd := &cobra.Command{
		Use:   "remove-liquidity",
		Short: "Settle a liquidity withdrawal against the pool snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := loadPoolState(poolFile)
			if err != nil {
				return err
			}
			amounts, err := parseAmountList(minAmountsOut)
			if err != nil {
				return err
			}
			maxBpt, err := parseAmount(maxBptIn)
			if err != nil {
				return err
			}
			input := &types.RemoveLiquidityInput{
				MinAmountsOutRaw: amounts,
				MaxBptAmountIn:   maxBpt,
			}
			switch kind {
			case "proportional":
				input.Kind = types.RemoveLiquidityProportional
			case "single-token-exact-in":
				input.Kind = types.RemoveLiquiditySingleTokenExactIn
			case "single-token-exact-out":
				input.Kind = types.RemoveLiquiditySingleTokenExactOut
			default:
				return fmt.Errorf("unknown remove liquidity kind %q", kind)
			}

			result, err := newEngine().RemoveLiquidity(input, pool, nil)
			if err != nil {
				return err
			}
			if display, derr := utils.SDKIntToFloat64(result.BptAmountInRaw, 18); derr == nil {
				log.Info().Float64("bptAmountIn", display).Msg("Liquidity removed")
			}
			return printResult(result)
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "proportional", "remove kind: proportional, single-token-exact-in or single-token-exact-out")
	cmd.Flags().StringVar(&minAmountsOut, "min-amounts-out", "", "comma-separated raw amounts, one per pool token")
	cmd.Flags().StringVar(&maxBptIn, "max-bpt-in", "0", "maximum BPT the caller will burn")
	cmd.MarkFlagRequired("min-amounts-out")
	return cmd
}
