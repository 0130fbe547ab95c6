/*

Operation descriptors accepted by the settlement engine. Amounts at this
boundary are raw token units (native decimals); the engine scales them to
the live 18-decimal representation internally.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// SwapKind is the swap direction convention: the caller fixes either the
// input amount (GivenIn, solve for output) or the output amount (GivenOut,
// solve for required input).
type SwapKind int

const (
	SwapKindGivenIn SwapKind = iota
	SwapKindGivenOut
)

// AddLiquidityKind selects the add-liquidity variant.
type AddLiquidityKind int

const (
	// AddLiquidityUnbalanced supplies exact per-token amounts in and solves
	// for the BPT minted.
	AddLiquidityUnbalanced AddLiquidityKind = iota
	// AddLiquiditySingleTokenExactOut fixes the BPT minted and solves for the
	// required amount of a single input token.
	AddLiquiditySingleTokenExactOut
)

// RemoveLiquidityKind selects the remove-liquidity variant.
type RemoveLiquidityKind int

const (
	// RemoveLiquidityProportional burns exact BPT for a proportional share of
	// every pool token.
	RemoveLiquidityProportional RemoveLiquidityKind = iota
	// RemoveLiquiditySingleTokenExactIn burns exact BPT for a single token.
	RemoveLiquiditySingleTokenExactIn
	// RemoveLiquiditySingleTokenExactOut fixes the amount of one token out and
	// solves for the BPT burned.
	RemoveLiquiditySingleTokenExactOut
)

// SwapInput describes a requested swap.
type SwapInput struct {
	Kind      SwapKind       `json:"kind"`
	AmountRaw sdkmath.Int    `json:"amountRaw"`
	TokenIn   common.Address `json:"tokenIn"`
	TokenOut  common.Address `json:"tokenOut"`
}

// AddLiquidityInput describes a requested liquidity deposit. Pool is a
// routing identifier only; the engine never dereferences it.
type AddLiquidityInput struct {
	Pool            common.Address   `json:"pool"`
	Kind            AddLiquidityKind `json:"kind"`
	MaxAmountsInRaw []sdkmath.Int    `json:"maxAmountsInRaw"`
	MinBptAmountOut sdkmath.Int      `json:"minBptAmountOut"`
}

// RemoveLiquidityInput describes a requested liquidity withdrawal. For the
// single-token kinds, the index of the affected token is the position of the
// single non-zero entry in MinAmountsOutRaw.
type RemoveLiquidityInput struct {
	Pool             common.Address      `json:"pool"`
	Kind             RemoveLiquidityKind `json:"kind"`
	MinAmountsOutRaw []sdkmath.Int       `json:"minAmountsOutRaw"`
	MaxBptAmountIn   sdkmath.Int         `json:"maxBptAmountIn"`
}

// PoolSwapParams is the pool-facing swap descriptor: index-based, with the
// given amount and balances already on the live 18-decimal scale and the
// swap fee already deducted where applicable.
type PoolSwapParams struct {
	Kind                 SwapKind
	AmountGivenScaled18  sdkmath.Int
	BalancesLiveScaled18 []sdkmath.Int
	IndexIn              int
	IndexOut             int
}
