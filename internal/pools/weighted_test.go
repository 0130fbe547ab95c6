package pools

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammlabs/vse/internal/types"
)

func scaled(v int64, dec int) sdkmath.Int { return sdkmath.NewIntWithDecimal(v, dec) }

func weightedState(weights ...sdkmath.Int) *types.PoolState {
	tokens := make([]common.Address, len(weights))
	for i := range tokens {
		tokens[i] = common.BigToAddress(sdkmath.NewInt(int64(i + 1)).BigInt())
	}
	return &types.PoolState{
		PoolType: PoolTypeWeighted,
		Tokens:   tokens,
		Weights:  weights,
	}
}

func fiftyFifty(t *testing.T) *WeightedPool {
	t.Helper()
	p, err := NewWeightedPool(weightedState(scaled(5, 17), scaled(5, 17)))
	require.NoError(t, err)
	return p.(*WeightedPool)
}

func TestNewWeightedPoolValidation(t *testing.T) {
	_, err := NewWeightedPool(weightedState())
	require.ErrorIs(t, err, ErrMissingWeights)

	// Weights must sum to exactly 1e18.
	_, err = NewWeightedPool(weightedState(scaled(5, 17), scaled(4, 17)))
	require.ErrorIs(t, err, ErrWeightsNotNormal)

	state := weightedState(scaled(5, 17), scaled(5, 17))
	state.Tokens = state.Tokens[:1]
	_, err = NewWeightedPool(state)
	require.ErrorIs(t, err, ErrWeightsMisaligned)
}

func TestWeightedInvariantBalancedPool(t *testing.T) {
	pool := fiftyFifty(t)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	down, err := pool.ComputeInvariant(balances, types.RoundDown)
	require.NoError(t, err)
	up, err := pool.ComputeInvariant(balances, types.RoundUp)
	require.NoError(t, err)

	// The geometric mean of equal balances is the balance itself, up to the
	// pow error margin.
	want := scaled(1, 18)
	assert.True(t, down.Sub(want).Abs().LTE(sdkmath.NewInt(100_000)), "down invariant %s", down)
	assert.True(t, up.Sub(want).Abs().LTE(sdkmath.NewInt(100_000)), "up invariant %s", up)
	assert.True(t, down.LTE(up))
}

func TestWeightedSwapGivenIn(t *testing.T) {
	pool := fiftyFifty(t)

	got, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenIn,
		AmountGivenScaled18:  scaled(1, 17),
		BalancesLiveScaled18: []sdkmath.Int{scaled(1, 18), scaled(1, 18)},
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)

	// bO * (1 - bI/(bI+aI)) = 1e18 * (1 - 1/1.1) = 0.0909..e18 for equal
	// weights, rounded against the trader.
	want := sdkmath.NewInt(90909090909090909)
	assert.True(t, got.LTE(want), "amount out %s above the ideal quote", got)
	assert.True(t, want.Sub(got).LTE(sdkmath.NewInt(1_000_000)), "amount out %s too far below quote", got)
}

func TestWeightedSwapGivenOut(t *testing.T) {
	pool := fiftyFifty(t)

	got, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenOut,
		AmountGivenScaled18:  sdkmath.NewInt(90909090909090909),
		BalancesLiveScaled18: []sdkmath.Int{scaled(1, 18), scaled(1, 18)},
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)

	// The inverse of the given-in quote, rounded against the trader: at
	// least the 1e17 that trade would cost.
	want := scaled(1, 17)
	assert.True(t, got.GTE(want), "amount in %s below the ideal quote", got)
	assert.True(t, got.Sub(want).LTE(sdkmath.NewInt(1_000_000)), "amount in %s too far above quote", got)
}

func TestWeightedSwapRatioGuards(t *testing.T) {
	pool := fiftyFifty(t)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	_, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenIn,
		AmountGivenScaled18:  scaled(4, 17),
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrMaxInRatioExceeded)

	_, err = pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenOut,
		AmountGivenScaled18:  scaled(4, 17),
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrMaxOutRatioExceed)
}

func TestWeightedComputeBalance(t *testing.T) {
	pool := fiftyFifty(t)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	// Holding the invariant steady solves back to roughly the same balance,
	// never below it.
	got, err := pool.ComputeBalance(balances, 0, scaled(1, 18))
	require.NoError(t, err)
	assert.True(t, got.GTE(balances[0]), "got %s", got)
	assert.True(t, got.Sub(balances[0]).LTE(sdkmath.NewInt(100_000)), "got %s", got)

	// Doubling the invariant of a 50/50 pool quadruples the solved balance:
	// ratio^(1/weight) = 2^2.
	got, err = pool.ComputeBalance(balances, 0, scaled(2, 18))
	require.NoError(t, err)
	want := scaled(4, 18)
	assert.True(t, got.Sub(want).Abs().LTE(sdkmath.NewInt(1_000_000)), "got %s", got)
}

func TestWeightedInvariantRatioBounds(t *testing.T) {
	pool := fiftyFifty(t)
	assert.True(t, pool.MinimumInvariantRatio().Equal(scaled(70, 16)))
	assert.True(t, pool.MaximumInvariantRatio().Equal(scaled(300, 16)))
}
