/*

Add-liquidity settlement. Contributions are amounts the pool receives, so
raw inputs scale to live with the conservative direction and the computed
requirements un-scale rounding up.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/scaling"
	"github.com/ammlabs/vse/internal/types"
)

// AddLiquidity settles a liquidity deposit against a pool snapshot.
func (e *Engine) AddLiquidity(input *types.AddLiquidityInput, pool *types.PoolState, hookState any) (*types.AddLiquidityResult, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: add liquidity input is nil", ErrInvalidInput)
	}
	if err := validatePoolState(pool); err != nil {
		return nil, err
	}
	n := pool.NumTokens()
	if err := validateAmountSlice(input.MaxAmountsInRaw, n, "max amounts in"); err != nil {
		return nil, err
	}
	if err := validateAmount(input.MinBptAmountOut, "min BPT amount out"); err != nil {
		return nil, err
	}

	// Zero-amount short-circuit.
	if allZero(input.MaxAmountsInRaw) && input.MinBptAmountOut.IsZero() {
		return &types.AddLiquidityResult{
			BptAmountOutRaw:            sdkmath.ZeroInt(),
			AmountsInRaw:               zeroSlice(n),
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

	maxAmountsInScaled18, err := scaling.ToLiveSlice(input.MaxAmountsInRaw, pool.ScalingFactors, pool.TokenRates, false)
	if err != nil {
		return nil, err
	}

	// For the exact-out kind the invariant ratio depends only on supplies, so
	// bounds are enforced before any hook runs.
	if input.Kind == types.AddLiquiditySingleTokenExactOut && !input.MinBptAmountOut.IsZero() {
		ratio, err := supplyRatioAfterMint(pool.TotalSupply, input.MinBptAmountOut)
		if err != nil {
			return nil, err
		}
		if err := checkInvariantRatioBounds(poolImpl, ratio); err != nil {
			return nil, err
		}
	}

	updatedBalances := copySlice(pool.BalancesLiveScaled18)
	if flags.ShouldCallBeforeAddLiquidity {
		adjusted, ok := hook.OnBeforeAddLiquidity(input.Kind, maxAmountsInScaled18, input.MinBptAmountOut, updatedBalances, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: before-add-liquidity", ErrHookRejected)
		}
		if len(adjusted) != n {
			return nil, fmt.Errorf("%w: before-add-liquidity hook returned %d balances", ErrInvalidInput, len(adjusted))
		}
		updatedBalances = copySlice(adjusted)
	}

	var (
		bptAmountOut      sdkmath.Int
		amountsInScaled18 []sdkmath.Int
		swapFeeAmounts    []sdkmath.Int
		amountsInRaw      []sdkmath.Int
	)

	switch input.Kind {
	case types.AddLiquidityUnbalanced:
		amountsInScaled18 = maxAmountsInScaled18
		bptAmountOut, swapFeeAmounts, err = computeAddLiquidityUnbalanced(
			poolImpl, updatedBalances, amountsInScaled18, pool.TotalSupply, pool.SwapFee)
		if err != nil {
			return nil, err
		}
		amountsInRaw = copySlice(input.MaxAmountsInRaw)

	case types.AddLiquiditySingleTokenExactOut:
		tokenInIndex, err := singleTokenIndex(maxAmountsInScaled18)
		if err != nil {
			return nil, err
		}
		bptAmountOut = input.MinBptAmountOut
		var amountIn sdkmath.Int
		amountIn, swapFeeAmounts, err = computeAddLiquiditySingleTokenExactOut(
			poolImpl, updatedBalances, tokenInIndex, bptAmountOut, pool.TotalSupply, pool.SwapFee)
		if err != nil {
			return nil, err
		}
		amountsInScaled18 = zeroSlice(n)
		amountsInScaled18[tokenInIndex] = amountIn
		amountsInRaw = zeroSlice(n)
		// Amount the pool must receive: round up.
		amountsInRaw[tokenInIndex], err = scaling.ToRaw(amountIn, pool.ScalingFactors[tokenInIndex], pool.TokenRates[tokenInIndex], true)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: unsupported add liquidity kind %d", ErrInvalidInput, input.Kind)
	}

	// Caller-supplied bounds.
	for i := 0; i < n; i++ {
		if amountsInRaw[i].GT(input.MaxAmountsInRaw[i]) {
			return nil, fmt.Errorf("%w: amount in %s above max %s", ErrSlippageExceeded, amountsInRaw[i], input.MaxAmountsInRaw[i])
		}
	}
	if bptAmountOut.LT(input.MinBptAmountOut) {
		return nil, fmt.Errorf("%w: BPT out %s below min %s", ErrSlippageExceeded, bptAmountOut, input.MinBptAmountOut)
	}

	swapFeeAmountsRaw, aggregateFeeAmountsRaw, err := feeBreakdownRaw(swapFeeAmounts, pool)
	if err != nil {
		return nil, err
	}

	if flags.ShouldCallAfterAddLiquidity {
		adjusted, ok := hook.OnAfterAddLiquidity(input.Kind, amountsInScaled18, amountsInRaw, bptAmountOut, updatedBalances, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: after-add-liquidity", ErrHookRejected)
		}
		if flags.EnableHookAdjustedAmounts {
			if err := validateAmountSlice(adjusted, n, "hook-adjusted amounts in"); err != nil {
				return nil, err
			}
			amountsInRaw = copySlice(adjusted)
		}
	}

	return &types.AddLiquidityResult{
		BptAmountOutRaw:            bptAmountOut,
		AmountsInRaw:               amountsInRaw,
		SwapFeeAmountsRaw:          swapFeeAmountsRaw,
		AggregateSwapFeeAmountsRaw: aggregateFeeAmountsRaw,
	}, nil
}

// supplyRatioAfterMint returns (totalSupply + bpt) / totalSupply, rounded up.
func supplyRatioAfterMint(totalSupply, bptAmountOut sdkmath.Int) (sdkmath.Int, error) {
	return fixedpoint.DivUp(totalSupply.Add(bptAmountOut), totalSupply)
}

func allZero(amounts []sdkmath.Int) bool {
	for _, v := range amounts {
		if !v.IsZero() {
			return false
		}
	}
	return true
}

// feeBreakdownRaw converts per-token live fee amounts to raw units and
// derives the protocol (aggregate) share of each.
func feeBreakdownRaw(feesScaled18 []sdkmath.Int, pool *types.PoolState) ([]sdkmath.Int, []sdkmath.Int, error) {
	feesRaw, err := scaling.ToRawSlice(feesScaled18, pool.ScalingFactors, pool.TokenRates, false)
	if err != nil {
		return nil, nil, err
	}
	aggregateRaw := make([]sdkmath.Int, len(feesRaw))
	for i, f := range feesRaw {
		aggregateRaw[i], err = aggregateFee(f, pool.AggregateSwapFee)
		if err != nil {
			return nil, nil, err
		}
	}
	return feesRaw, aggregateRaw, nil
}
