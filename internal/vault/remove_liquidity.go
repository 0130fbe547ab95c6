/*

Remove-liquidity settlement. Withdrawals are amounts the pool pays out, so
computed payouts un-scale rounding down, while the caller's minimum bounds
scale up so the comparison never flatters the result.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/scaling"
	"github.com/ammlabs/vse/internal/types"
)

// RemoveLiquidity settles a liquidity withdrawal against a pool snapshot.
func (e *Engine) RemoveLiquidity(input *types.RemoveLiquidityInput, pool *types.PoolState, hookState any) (*types.RemoveLiquidityResult, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: remove liquidity input is nil", ErrInvalidInput)
	}
	if err := validatePoolState(pool); err != nil {
		return nil, err
	}
	n := pool.NumTokens()
	if err := validateAmountSlice(input.MinAmountsOutRaw, n, "min amounts out"); err != nil {
		return nil, err
	}
	if err := validateAmount(input.MaxBptAmountIn, "max BPT amount in"); err != nil {
		return nil, err
	}

	// Zero-amount short-circuit.
	if input.MaxBptAmountIn.IsZero() && allZero(input.MinAmountsOutRaw) {
		return &types.RemoveLiquidityResult{
			BptAmountInRaw:             sdkmath.ZeroInt(),
			AmountsOutRaw:              zeroSlice(n),
			SwapFeeAmountsRaw:          zeroSlice(n),
			AggregateSwapFeeAmountsRaw: zeroSlice(n),
		}, nil
	}

	poolImpl, err := e.resolvePool(pool)
	if err != nil {
		return nil, err
	}
	hook, err := e.resolveHook(pool)
	if err != nil {
		return nil, err
	}
	flags := hook.Flags()

	minAmountsOutScaled18, err := scaling.ToLiveSlice(input.MinAmountsOutRaw, pool.ScalingFactors, pool.TokenRates, true)
	if err != nil {
		return nil, err
	}

	// For the exact-in kind the invariant ratio depends only on supplies, so
	// bounds are enforced before any hook runs.
	if input.Kind == types.RemoveLiquiditySingleTokenExactIn {
		ratio, err := supplyRatioAfterBurn(pool.TotalSupply, input.MaxBptAmountIn)
		if err != nil {
			return nil, err
		}
		if err := checkInvariantRatioBounds(poolImpl, ratio); err != nil {
			return nil, err
		}
	}

	updatedBalances := copySlice(pool.BalancesLiveScaled18)
	if flags.ShouldCallBeforeRemoveLiquidity {
		adjusted, ok := hook.OnBeforeRemoveLiquidity(input.Kind, input.MaxBptAmountIn, minAmountsOutScaled18, updatedBalances, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: before-remove-liquidity", ErrHookRejected)
		}
		if len(adjusted) != n {
			return nil, fmt.Errorf("%w: before-remove-liquidity hook returned %d balances", ErrInvalidInput, len(adjusted))
		}
		updatedBalances = copySlice(adjusted)
	}

	var (
		bptAmountIn        sdkmath.Int
		amountsOutScaled18 []sdkmath.Int
		swapFeeAmounts     []sdkmath.Int
	)

	switch input.Kind {
	case types.RemoveLiquidityProportional:
		bptAmountIn = input.MaxBptAmountIn
		amountsOutScaled18, err = computeProportionalAmountsOut(updatedBalances, pool.TotalSupply, bptAmountIn)
		if err != nil {
			return nil, err
		}
		swapFeeAmounts = zeroSlice(n)

	case types.RemoveLiquiditySingleTokenExactIn:
		tokenOutIndex, err := singleTokenIndex(minAmountsOutScaled18)
		if err != nil {
			return nil, err
		}
		bptAmountIn = input.MaxBptAmountIn
		var amountOut sdkmath.Int
		amountOut, swapFeeAmounts, err = computeRemoveLiquiditySingleTokenExactIn(
			poolImpl, updatedBalances, tokenOutIndex, bptAmountIn, pool.TotalSupply, pool.SwapFee)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = zeroSlice(n)
		amountsOutScaled18[tokenOutIndex] = amountOut

	case types.RemoveLiquiditySingleTokenExactOut:
		tokenOutIndex, err := singleTokenIndex(minAmountsOutScaled18)
		if err != nil {
			return nil, err
		}
		amountsOutScaled18 = copySlice(minAmountsOutScaled18)
		bptAmountIn, swapFeeAmounts, err = computeRemoveLiquiditySingleTokenExactOut(
			poolImpl, updatedBalances, tokenOutIndex, amountsOutScaled18[tokenOutIndex], pool.TotalSupply, pool.SwapFee)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported remove liquidity kind %d", ErrInvalidInput, input.Kind)
	}

	// Amounts the pool pays out: round down.
	amountsOutRaw, err := scaling.ToRawSlice(amountsOutScaled18, pool.ScalingFactors, pool.TokenRates, false)
	if err != nil {
		return nil, err
	}

	// Caller-supplied bounds.
	for i := 0; i < n; i++ {
		if amountsOutRaw[i].LT(input.MinAmountsOutRaw[i]) {
			return nil, fmt.Errorf("%w: amount out %s below min %s", ErrSlippageExceeded, amountsOutRaw[i], input.MinAmountsOutRaw[i])
		}
	}
	if bptAmountIn.GT(input.MaxBptAmountIn) {
		return nil, fmt.Errorf("%w: BPT in %s above max %s", ErrSlippageExceeded, bptAmountIn, input.MaxBptAmountIn)
	}

	swapFeeAmountsRaw, aggregateFeeAmountsRaw, err := feeBreakdownRaw(swapFeeAmounts, pool)
	if err != nil {
		return nil, err
	}

	if flags.ShouldCallAfterRemoveLiquidity {
		adjusted, ok := hook.OnAfterRemoveLiquidity(input.Kind, bptAmountIn, amountsOutScaled18, amountsOutRaw, updatedBalances, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: after-remove-liquidity", ErrHookRejected)
		}
		if flags.EnableHookAdjustedAmounts {
			if err := validateAmountSlice(adjusted, n, "hook-adjusted amounts out"); err != nil {
				return nil, err
			}
			amountsOutRaw = copySlice(adjusted)
		}
	}

	return &types.RemoveLiquidityResult{
		BptAmountInRaw:             bptAmountIn,
		AmountsOutRaw:              amountsOutRaw,
		SwapFeeAmountsRaw:          swapFeeAmountsRaw,
		AggregateSwapFeeAmountsRaw: aggregateFeeAmountsRaw,
	}, nil
}

// supplyRatioAfterBurn returns (totalSupply - bpt) / totalSupply, rounded up.
func supplyRatioAfterBurn(totalSupply, bptAmountIn sdkmath.Int) (sdkmath.Int, error) {
	newSupply := totalSupply.Sub(bptAmountIn)
	if newSupply.IsNegative() {
		return sdkmath.Int{}, fmt.Errorf("%w: BPT amount in exceeds total supply", ErrInvalidInput)
	}
	return fixedpoint.DivUp(newSupply, totalSupply)
}
