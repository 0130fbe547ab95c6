/*

Generic, pool-type-agnostic liquidity math. These routines work purely on
live 18-decimal balances and delegate every curve-specific question to the
PoolBase capability (invariant and balance computation).

Rounding here is the engine's economic safety margin: every division rounds
so the pool keeps the remainder wei.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/types"
)

// computeProportionalAmountsOut burns bptAmountIn for a proportional share of
// every pool token, rounding each payout down.
func computeProportionalAmountsOut(balances []sdkmath.Int, totalSupply, bptAmountIn sdkmath.Int) ([]sdkmath.Int, error) {
	bptRatio, err := fixedpoint.DivDown(bptAmountIn, totalSupply)
	if err != nil {
		return nil, err
	}
	amountsOut := make([]sdkmath.Int, len(balances))
	for i, b := range balances {
		amountsOut[i], err = fixedpoint.MulDown(b, bptRatio)
		if err != nil {
			return nil, err
		}
	}
	return amountsOut, nil
}

// computeAddLiquidityUnbalanced mints BPT for exact per-token contributions.
// Amounts contributed beyond the proportional share are charged the swap fee,
// since they move the price exactly as a swap would.
func computeAddLiquidityUnbalanced(
	pool PoolBase,
	balances, exactAmountsIn []sdkmath.Int,
	totalSupply, swapFee sdkmath.Int,
) (sdkmath.Int, []sdkmath.Int, error) {
	n := len(balances)
	newBalances := make([]sdkmath.Int, n)
	for i := 0; i < n; i++ {
		newBalances[i] = balances[i].Add(exactAmountsIn[i])
		// Shave a wei so the interim balance is never overstated.
		if newBalances[i].IsPositive() {
			newBalances[i] = newBalances[i].Sub(sdkmath.OneInt())
		}
	}

	currentInvariant, err := pool.ComputeInvariant(balances, types.RoundUp)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	newInvariant, err := pool.ComputeInvariant(newBalances, types.RoundDown)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivDown(newInvariant, currentInvariant)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if err := checkInvariantRatioBounds(pool, invariantRatio); err != nil {
		return sdkmath.Int{}, nil, err
	}

	swapFeeAmounts := zeroSlice(n)
	for i := 0; i < n; i++ {
		proportional, err := fixedpoint.MulDown(balances[i], invariantRatio)
		if err != nil {
			return sdkmath.Int{}, nil, err
		}
		if newBalances[i].GT(proportional) {
			taxable := newBalances[i].Sub(proportional)
			swapFeeAmounts[i], err = fixedpoint.MulUp(taxable, swapFee)
			if err != nil {
				return sdkmath.Int{}, nil, err
			}
			newBalances[i] = newBalances[i].Sub(swapFeeAmounts[i])
		}
	}

	invariantWithFees, err := pool.ComputeInvariant(newBalances, types.RoundDown)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if invariantWithFees.LTE(currentInvariant) {
		// The contribution was eaten entirely by fees and rounding.
		return sdkmath.ZeroInt(), swapFeeAmounts, nil
	}
	bptAmountOut, err := fixedpoint.MulDivDown(totalSupply, invariantWithFees.Sub(currentInvariant), currentInvariant)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	return bptAmountOut, swapFeeAmounts, nil
}

// computeAddLiquiditySingleTokenExactOut mints an exact BPT amount against a
// single input token, solving the pool curve for the required contribution
// and grossing the non-proportional part up by the swap fee.
func computeAddLiquiditySingleTokenExactOut(
	pool PoolBase,
	balances []sdkmath.Int,
	tokenInIndex int,
	exactBptAmountOut, totalSupply, swapFee sdkmath.Int,
) (sdkmath.Int, []sdkmath.Int, error) {
	newSupply := totalSupply.Add(exactBptAmountOut)
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	newBalance, err := pool.ComputeBalance(balances, tokenInIndex, invariantRatio)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if newBalance.LT(balances[tokenInIndex]) {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: pool reported a shrinking balance for a mint", ErrInvalidInput)
	}
	amountIn := newBalance.Sub(balances[tokenInIndex])

	nonTaxableBalance, err := fixedpoint.MulDivDown(newSupply, balances[tokenInIndex], totalSupply)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	taxable := newBalance.Sub(nonTaxableBalance)
	if taxable.IsNegative() {
		taxable = sdkmath.ZeroInt()
	}
	grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	fee := grossed.Sub(taxable)

	swapFeeAmounts := zeroSlice(len(balances))
	swapFeeAmounts[tokenInIndex] = fee
	return amountIn.Add(fee), swapFeeAmounts, nil
}

// computeRemoveLiquiditySingleTokenExactIn burns an exact BPT amount for a
// single output token. The payout above the proportional share is taxed with
// the swap fee.
func computeRemoveLiquiditySingleTokenExactIn(
	pool PoolBase,
	balances []sdkmath.Int,
	tokenOutIndex int,
	exactBptAmountIn, totalSupply, swapFee sdkmath.Int,
) (sdkmath.Int, []sdkmath.Int, error) {
	newSupply := totalSupply.Sub(exactBptAmountIn)
	if newSupply.IsNegative() {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: BPT amount in exceeds total supply", ErrInvalidInput)
	}
	invariantRatio, err := fixedpoint.DivUp(newSupply, totalSupply)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	newBalance, err := pool.ComputeBalance(balances, tokenOutIndex, invariantRatio)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if newBalance.GT(balances[tokenOutIndex]) {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: pool reported a growing balance for a burn", ErrInvalidInput)
	}
	amountOut := balances[tokenOutIndex].Sub(newBalance)

	newBalanceBeforeTax, err := fixedpoint.MulDivUp(newSupply, balances[tokenOutIndex], totalSupply)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	taxable := newBalanceBeforeTax.Sub(newBalance)
	if taxable.IsNegative() {
		taxable = sdkmath.ZeroInt()
	}
	fee, err := fixedpoint.MulUp(taxable, swapFee)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}

	swapFeeAmounts := zeroSlice(len(balances))
	swapFeeAmounts[tokenOutIndex] = fee
	return amountOut.Sub(fee), swapFeeAmounts, nil
}

// computeRemoveLiquiditySingleTokenExactOut solves for the BPT that must be
// burned to withdraw an exact amount of one token, rounding the burn up.
func computeRemoveLiquiditySingleTokenExactOut(
	pool PoolBase,
	balances []sdkmath.Int,
	tokenOutIndex int,
	exactAmountOut, totalSupply, swapFee sdkmath.Int,
) (sdkmath.Int, []sdkmath.Int, error) {
	n := len(balances)
	if exactAmountOut.GT(balances[tokenOutIndex]) {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: amount out exceeds pool balance", ErrInvalidInput)
	}
	newBalances := make([]sdkmath.Int, n)
	for i := 0; i < n; i++ {
		newBalances[i] = balances[i]
		if newBalances[i].IsPositive() {
			newBalances[i] = newBalances[i].Sub(sdkmath.OneInt())
		}
	}
	newBalances[tokenOutIndex] = newBalances[tokenOutIndex].Sub(exactAmountOut)
	if newBalances[tokenOutIndex].IsNegative() {
		newBalances[tokenOutIndex] = sdkmath.ZeroInt()
	}

	currentInvariant, err := pool.ComputeInvariant(balances, types.RoundUp)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	newInvariant, err := pool.ComputeInvariant(newBalances, types.RoundUp)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	invariantRatio, err := fixedpoint.DivUp(newInvariant, currentInvariant)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if err := checkInvariantRatioBounds(pool, invariantRatio); err != nil {
		return sdkmath.Int{}, nil, err
	}

	// Tax the part of the withdrawal that moved the price.
	proportional, err := fixedpoint.MulUp(invariantRatio, balances[tokenOutIndex])
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	taxable := proportional.Sub(newBalances[tokenOutIndex])
	if taxable.IsNegative() {
		taxable = sdkmath.ZeroInt()
	}
	grossed, err := fixedpoint.DivUp(taxable, fixedpoint.Complement(swapFee))
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	fee := grossed.Sub(taxable)
	newBalances[tokenOutIndex] = newBalances[tokenOutIndex].Sub(fee)
	if newBalances[tokenOutIndex].IsNegative() {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: fee exceeds remaining balance", ErrInvalidInput)
	}

	invariantWithFees, err := pool.ComputeInvariant(newBalances, types.RoundDown)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}
	if invariantWithFees.GT(currentInvariant) {
		return sdkmath.Int{}, nil, fmt.Errorf("%w: invariant grew on a withdrawal", ErrInvalidInput)
	}
	bptAmountIn, err := fixedpoint.MulDivUp(totalSupply, currentInvariant.Sub(invariantWithFees), currentInvariant)
	if err != nil {
		return sdkmath.Int{}, nil, err
	}

	swapFeeAmounts := zeroSlice(n)
	swapFeeAmounts[tokenOutIndex] = fee
	return bptAmountIn, swapFeeAmounts, nil
}
