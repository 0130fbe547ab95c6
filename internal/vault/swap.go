/*

Swap settlement: scale the given amount to the live 18-decimal scale, run the
hook before-phase, charge the swap fee, delegate pricing to the pool, run the
after-phase and un-scale the result back to raw token units.

*/

package vault

import (
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/scaling"
	"github.com/ammlabs/vse/internal/types"
)

// Swap settles a swap request against a pool snapshot. hookState is passed
// through opaquely to the pool's hook, if any.
func (e *Engine) Swap(input *types.SwapInput, pool *types.PoolState, hookState any) (*types.SwapResult, error) {
	if input == nil {
		return nil, fmt.Errorf("%w: swap input is nil", ErrInvalidInput)
	}
	if err := validatePoolState(pool); err != nil {
		return nil, err
	}
	if err := validateAmount(input.AmountRaw, "swap amount"); err != nil {
		return nil, err
	}

	indexIn := pool.IndexOfToken(input.TokenIn)
	indexOut := pool.IndexOfToken(input.TokenOut)
	if indexIn < 0 || indexOut < 0 {
		return nil, fmt.Errorf("%w: swap token is not in the pool", ErrInvalidInput)
	}
	if indexIn == indexOut {
		return nil, fmt.Errorf("%w: token in equals token out", ErrInvalidInput)
	}

	// Zero-amount short-circuit: no fee math, no pool math.
	if input.AmountRaw.IsZero() {
		return &types.SwapResult{
			AmountCalculatedRaw:       sdkmath.ZeroInt(),
			SwapFeeAmountRaw:          sdkmath.ZeroInt(),
			AggregateSwapFeeAmountRaw: sdkmath.ZeroInt(),
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

	// The given amount of a given-in swap scales down, understating the input
	// the output is computed from; a given-out request scales up, overstating
	// the output the required input is computed from. Both favor the pool.
	var amountGivenScaled18 sdkmath.Int
	if input.Kind == types.SwapKindGivenIn {
		amountGivenScaled18, err = scaling.ToLive(input.AmountRaw, pool.ScalingFactors[indexIn], pool.TokenRates[indexIn], false)
	} else {
		amountGivenScaled18, err = scaling.ToLive(input.AmountRaw, pool.ScalingFactors[indexOut], pool.TokenRates[indexOut], true)
	}
	if err != nil {
		return nil, err
	}

	updatedBalances := copySlice(pool.BalancesLiveScaled18)
	swapParams := &types.PoolSwapParams{
		Kind:                 input.Kind,
		AmountGivenScaled18:  amountGivenScaled18,
		BalancesLiveScaled18: updatedBalances,
		IndexIn:              indexIn,
		IndexOut:             indexOut,
	}

	if flags.ShouldCallBeforeSwap {
		adjusted, ok := hook.OnBeforeSwap(swapParams, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: before-swap", ErrHookRejected)
		}
		if len(adjusted) != pool.NumTokens() {
			return nil, fmt.Errorf("%w: before-swap hook returned %d balances", ErrInvalidInput, len(adjusted))
		}
		updatedBalances = copySlice(adjusted)
		swapParams.BalancesLiveScaled18 = updatedBalances
	}

	swapFee := pool.SwapFee
	if flags.ShouldCallComputeDynamicSwapFee {
		dynamicFee, ok := hook.OnComputeDynamicSwapFee(swapParams, pool.SwapFee, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: dynamic swap fee", ErrHookRejected)
		}
		if err := validateFee(dynamicFee, "dynamic swap fee"); err != nil {
			return nil, err
		}
		swapFee = dynamicFee
	}

	// Given-in charges the fee off the input before pricing; given-out grosses
	// the computed input up afterwards. Either way the fee is input-token
	// denominated and rounds against the trader.
	totalSwapFeeScaled18 := sdkmath.ZeroInt()
	if input.Kind == types.SwapKindGivenIn {
		totalSwapFeeScaled18, err = fixedpoint.MulUp(amountGivenScaled18, swapFee)
		if err != nil {
			return nil, err
		}
		swapParams.AmountGivenScaled18 = amountGivenScaled18.Sub(totalSwapFeeScaled18)
	}

	amountCalculatedScaled18, err := poolImpl.OnSwap(swapParams)
	if err != nil {
		return nil, err
	}
	if amountCalculatedScaled18.IsNil() || amountCalculatedScaled18.IsNegative() {
		return nil, fmt.Errorf("%w: pool computed a negative amount", ErrInvalidInput)
	}

	var amountCalculatedRaw sdkmath.Int
	if input.Kind == types.SwapKindGivenIn {
		// Amount the pool pays out: round down.
		amountCalculatedRaw, err = scaling.ToRaw(amountCalculatedScaled18, pool.ScalingFactors[indexOut], pool.TokenRates[indexOut], false)
		if err != nil {
			return nil, err
		}
	} else {
		totalSwapFeeScaled18, err = fixedpoint.MulDivUp(amountCalculatedScaled18, swapFee, fixedpoint.Complement(swapFee))
		if err != nil {
			return nil, err
		}
		amountCalculatedScaled18 = amountCalculatedScaled18.Add(totalSwapFeeScaled18)
		// Amount the pool must receive: round up.
		amountCalculatedRaw, err = scaling.ToRaw(amountCalculatedScaled18, pool.ScalingFactors[indexIn], pool.TokenRates[indexIn], true)
		if err != nil {
			return nil, err
		}
	}

	// Fee breakdown in raw input-token units, protocol share rounding down.
	swapFeeRaw, err := scaling.ToRaw(totalSwapFeeScaled18, pool.ScalingFactors[indexIn], pool.TokenRates[indexIn], false)
	if err != nil {
		return nil, err
	}
	aggregateFeeRaw, err := aggregateFee(swapFeeRaw, pool.AggregateSwapFee)
	if err != nil {
		return nil, err
	}

	if flags.ShouldCallAfterSwap {
		amountIn, amountOut := swapParams.AmountGivenScaled18, amountCalculatedScaled18
		if input.Kind == types.SwapKindGivenOut {
			amountIn, amountOut = amountCalculatedScaled18, swapParams.AmountGivenScaled18
		}
		adjusted, ok := hook.OnAfterSwap(&AfterSwapParams{
			Kind:                     input.Kind,
			TokenIn:                  input.TokenIn,
			TokenOut:                 input.TokenOut,
			AmountInScaled18:         amountIn,
			AmountOutScaled18:        amountOut,
			TokenInBalanceScaled18:   updatedBalances[indexIn],
			TokenOutBalanceScaled18:  updatedBalances[indexOut],
			AmountCalculatedScaled18: amountCalculatedScaled18,
			AmountCalculatedRaw:      amountCalculatedRaw,
		}, hookState)
		if !ok {
			return nil, fmt.Errorf("%w: after-swap", ErrHookRejected)
		}
		if flags.EnableHookAdjustedAmounts {
			if err := validateAmount(adjusted, "hook-adjusted amount"); err != nil {
				return nil, err
			}
			amountCalculatedRaw = adjusted
		}
	}

	return &types.SwapResult{
		AmountCalculatedRaw:       amountCalculatedRaw,
		SwapFeeAmountRaw:          swapFeeRaw,
		AggregateSwapFeeAmountRaw: aggregateFeeRaw,
	}, nil
}
