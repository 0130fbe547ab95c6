/*

Weighted constant-product pool. The invariant is the weighted geometric mean
of the live balances, V = prod(balance_i ^ weight_i), with normalized weights
that sum to one.

All exponentiation goes through the fixed-point pow with its relative error
margin, so every call site picks the pow variant whose error works against
the caller.

*/

package pools

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/types"
	"github.com/ammlabs/vse/internal/vault"
)

var (
	ErrMissingWeights     = errors.New("pool state carries no normalized weights")
	ErrWeightsMisaligned  = errors.New("weights do not align with the token list")
	ErrWeightsNotNormal   = errors.New("normalized weights must sum to 1e18")
	ErrMaxInRatioExceeded = errors.New("amount in exceeds 30% of the pool balance")
	ErrMaxOutRatioExceed  = errors.New("amount out exceeds 30% of the pool balance")
	ErrZeroInvariant      = errors.New("weighted invariant is zero")
)

var (
	// Swaps may not move more than 30% of either side's balance in one call.
	weightedMaxInRatio  = sdkmath.NewIntWithDecimal(30, 16)
	weightedMaxOutRatio = sdkmath.NewIntWithDecimal(30, 16)

	// An operation may not shrink the invariant below 70% or grow it past
	// 300% of its current value.
	weightedMinInvariantRatio = sdkmath.NewIntWithDecimal(70, 16)
	weightedMaxInvariantRatio = sdkmath.NewIntWithDecimal(300, 16)
)

// WeightedPool implements vault.PoolBase for weighted constant-product pools.
type WeightedPool struct {
	weights []sdkmath.Int
}

// NewWeightedPool builds a WeightedPool from a state snapshot, validating the
// weight vector.
func NewWeightedPool(pool *types.PoolState) (vault.PoolBase, error) {
	if len(pool.Weights) == 0 {
		return nil, ErrMissingWeights
	}
	if len(pool.Weights) != pool.NumTokens() {
		return nil, fmt.Errorf("%w: %d weights for %d tokens", ErrWeightsMisaligned, len(pool.Weights), pool.NumTokens())
	}
	sum := sdkmath.ZeroInt()
	for _, w := range pool.Weights {
		if w.IsNil() || !w.IsPositive() {
			return nil, fmt.Errorf("%w: weights must be positive", ErrWeightsNotNormal)
		}
		sum = sum.Add(w)
	}
	if !sum.Equal(fixedpoint.ONE) {
		return nil, fmt.Errorf("%w: got %s", ErrWeightsNotNormal, sum)
	}
	return &WeightedPool{weights: pool.Weights}, nil
}

func (p *WeightedPool) MinimumInvariantRatio() sdkmath.Int { return weightedMinInvariantRatio }
func (p *WeightedPool) MaximumInvariantRatio() sdkmath.Int { return weightedMaxInvariantRatio }

// ComputeInvariant evaluates prod(balance_i ^ weight_i), with every factor
// rounded in the requested direction.
func (p *WeightedPool) ComputeInvariant(balances []sdkmath.Int, rounding types.Rounding) (sdkmath.Int, error) {
	invariant := fixedpoint.ONE
	for i, balance := range balances {
		var (
			factor sdkmath.Int
			err    error
		)
		if rounding == types.RoundUp {
			factor, err = fixedpoint.PowUp(balance, p.weights[i])
			if err != nil {
				return sdkmath.Int{}, err
			}
			invariant, err = fixedpoint.MulUp(invariant, factor)
		} else {
			factor, err = fixedpoint.PowDown(balance, p.weights[i])
			if err != nil {
				return sdkmath.Int{}, err
			}
			invariant, err = fixedpoint.MulDown(invariant, factor)
		}
		if err != nil {
			return sdkmath.Int{}, err
		}
	}
	if invariant.IsZero() {
		return sdkmath.Int{}, ErrZeroInvariant
	}
	return invariant, nil
}

// ComputeBalance solves newBalance = balance * (invariantRatio ^ (1/weight)),
// rounding up so the pool never under-collects.
func (p *WeightedPool) ComputeBalance(balances []sdkmath.Int, tokenInIndex int, invariantRatio sdkmath.Int) (sdkmath.Int, error) {
	exponent, err := fixedpoint.DivUp(fixedpoint.ONE, p.weights[tokenInIndex])
	if err != nil {
		return sdkmath.Int{}, err
	}
	power, err := fixedpoint.PowUp(invariantRatio, exponent)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedpoint.MulUp(balances[tokenInIndex], power)
}

// OnSwap prices a swap on the weighted curve.
func (p *WeightedPool) OnSwap(params *types.PoolSwapParams) (sdkmath.Int, error) {
	balanceIn := params.BalancesLiveScaled18[params.IndexIn]
	balanceOut := params.BalancesLiveScaled18[params.IndexOut]
	weightIn := p.weights[params.IndexIn]
	weightOut := p.weights[params.IndexOut]

	if params.Kind == types.SwapKindGivenIn {
		return computeOutGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, params.AmountGivenScaled18)
	}
	return computeInGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, params.AmountGivenScaled18)
}

// computeOutGivenExactIn:
//
//	aO = bO * (1 - (bI / (bI + aI)) ^ (wI / wO))
//
// The base rounds up and the pow rounds up, understating the complement and
// therefore the amount out.
func computeOutGivenExactIn(balanceIn, weightIn, balanceOut, weightOut, amountIn sdkmath.Int) (sdkmath.Int, error) {
	maxIn, err := fixedpoint.MulDown(balanceIn, weightedMaxInRatio)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if amountIn.GT(maxIn) {
		return sdkmath.Int{}, ErrMaxInRatioExceeded
	}

	base, err := fixedpoint.DivUp(balanceIn, balanceIn.Add(amountIn))
	if err != nil {
		return sdkmath.Int{}, err
	}
	exponent, err := fixedpoint.DivDown(weightIn, weightOut)
	if err != nil {
		return sdkmath.Int{}, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedpoint.MulDown(balanceOut, fixedpoint.Complement(power))
}

// computeInGivenExactOut:
//
//	aI = bI * ((bO / (bO - aO)) ^ (wO / wI) - 1)
//
// Every step rounds up, overstating the required amount in.
func computeInGivenExactOut(balanceIn, weightIn, balanceOut, weightOut, amountOut sdkmath.Int) (sdkmath.Int, error) {
	maxOut, err := fixedpoint.MulDown(balanceOut, weightedMaxOutRatio)
	if err != nil {
		return sdkmath.Int{}, err
	}
	if amountOut.GT(maxOut) {
		return sdkmath.Int{}, ErrMaxOutRatioExceed
	}

	base, err := fixedpoint.DivUp(balanceOut, balanceOut.Sub(amountOut))
	if err != nil {
		return sdkmath.Int{}, err
	}
	exponent, err := fixedpoint.DivUp(weightOut, weightIn)
	if err != nil {
		return sdkmath.Int{}, err
	}
	power, err := fixedpoint.PowUp(base, exponent)
	if err != nil {
		return sdkmath.Int{}, err
	}
	ratio := power.Sub(fixedpoint.ONE)
	if ratio.IsNegative() {
		ratio = sdkmath.ZeroInt()
	}
	return fixedpoint.MulUp(balanceIn, ratio)
}
