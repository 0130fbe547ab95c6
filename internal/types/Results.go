/*

Result records returned by the settlement engine. Constructed once per call
and never mutated afterwards; all amounts are raw token units.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
)

// SwapResult reports the outcome of a swap: the amount in the complementary
// direction to the given kind, plus the fee breakdown. The fee is denominated
// in the input token for both swap kinds.
type SwapResult struct {
	AmountCalculatedRaw       sdkmath.Int `json:"amountCalculatedRaw"`
	SwapFeeAmountRaw          sdkmath.Int `json:"swapFeeAmountRaw"`
	AggregateSwapFeeAmountRaw sdkmath.Int `json:"aggregateSwapFeeAmountRaw"`
}

// AddLiquidityResult reports the BPT minted and the per-token amounts pulled
// from the caller, with the per-token fee breakdown.
type AddLiquidityResult struct {
	BptAmountOutRaw            sdkmath.Int   `json:"bptAmountOutRaw"`
	AmountsInRaw               []sdkmath.Int `json:"amountsInRaw"`
	SwapFeeAmountsRaw          []sdkmath.Int `json:"swapFeeAmountsRaw"`
	AggregateSwapFeeAmountsRaw []sdkmath.Int `json:"aggregateSwapFeeAmountsRaw"`
}

// RemoveLiquidityResult reports the BPT burned and the per-token amounts paid
// out to the caller, with the per-token fee breakdown.
type RemoveLiquidityResult struct {
	BptAmountInRaw             sdkmath.Int   `json:"bptAmountInRaw"`
	AmountsOutRaw              []sdkmath.Int `json:"amountsOutRaw"`
	SwapFeeAmountsRaw          []sdkmath.Int `json:"swapFeeAmountsRaw"`
	AggregateSwapFeeAmountsRaw []sdkmath.Int `json:"aggregateSwapFeeAmountsRaw"`
}
