package pools

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammlabs/vse/internal/types"
)

func stablePool(t *testing.T, amp int64) *StablePool {
	t.Helper()
	state := weightedState(scaled(5, 17), scaled(5, 17))
	state.PoolType = PoolTypeStable
	state.Weights = nil
	state.Amp = sdkmath.NewInt(amp * ampPrecision)
	p, err := NewStablePool(state)
	require.NoError(t, err)
	return p.(*StablePool)
}

func TestNewStablePoolRequiresAmp(t *testing.T) {
	state := weightedState(scaled(5, 17), scaled(5, 17))
	state.Weights = nil

	_, err := NewStablePool(state)
	require.ErrorIs(t, err, ErrMissingAmp)

	state.Amp = sdkmath.ZeroInt()
	_, err = NewStablePool(state)
	require.ErrorIs(t, err, ErrMissingAmp)
}

func TestStableInvariantBalancedPool(t *testing.T) {
	pool := stablePool(t, 100)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	// With equal balances the StableSwap equation is satisfied exactly by
	// D = sum, and the iteration lands on it without drift.
	d, err := pool.ComputeInvariant(balances, types.RoundDown)
	require.NoError(t, err)
	assert.True(t, d.Equal(scaled(2, 18)), "D got %s", d)

	up, err := pool.ComputeInvariant(balances, types.RoundUp)
	require.NoError(t, err)
	assert.True(t, up.Equal(scaled(2, 18).Add(sdkmath.OneInt())), "D up got %s", up)
}

func TestStableInvariantZeroBalances(t *testing.T) {
	pool := stablePool(t, 100)

	d, err := pool.ComputeInvariant([]sdkmath.Int{sdkmath.ZeroInt(), sdkmath.ZeroInt()}, types.RoundDown)
	require.NoError(t, err)
	assert.True(t, d.IsZero())
}

func TestStableSwapGivenInNearParity(t *testing.T) {
	pool := stablePool(t, 100)

	amountIn := scaled(1, 17)
	got, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenIn,
		AmountGivenScaled18:  amountIn,
		BalancesLiveScaled18: []sdkmath.Int{scaled(1, 18), scaled(1, 18)},
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)

	// A high-amp balanced pool trades close to one to one, and never pays
	// out more than came in.
	assert.True(t, got.LT(amountIn), "amount out %s not below amount in", got)
	floor := amountIn.MulRaw(99).QuoRaw(100)
	assert.True(t, got.GT(floor), "amount out %s below 99%% of amount in", got)
}

func TestStableSwapRoundTripFavorsPool(t *testing.T) {
	pool := stablePool(t, 100)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	amountOut := scaled(5, 16)
	amountIn, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenOut,
		AmountGivenScaled18:  amountOut,
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)

	// Buying a fixed amount out always costs at least that amount near
	// parity.
	assert.True(t, amountIn.GT(amountOut), "amount in %s not above amount out %s", amountIn, amountOut)

	// Feeding that quote back as a given-in swap never returns more than the
	// original target.
	roundTrip, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenIn,
		AmountGivenScaled18:  amountIn,
		BalancesLiveScaled18: balances,
		IndexIn:              0,
		IndexOut:             1,
	})
	require.NoError(t, err)
	assert.True(t, roundTrip.LTE(amountOut.Add(sdkmath.NewInt(10))), "round trip %s gained value", roundTrip)
}

func TestStableSwapRejectsDrainingPool(t *testing.T) {
	pool := stablePool(t, 100)

	_, err := pool.OnSwap(&types.PoolSwapParams{
		Kind:                 types.SwapKindGivenOut,
		AmountGivenScaled18:  scaled(1, 18),
		BalancesLiveScaled18: []sdkmath.Int{scaled(1, 18), scaled(1, 18)},
		IndexIn:              0,
		IndexOut:             1,
	})
	require.ErrorIs(t, err, ErrStableZeroBalance)
}

func TestStableComputeBalance(t *testing.T) {
	pool := stablePool(t, 100)
	balances := []sdkmath.Int{scaled(1, 18), scaled(1, 18)}

	// Holding the invariant steady solves back to roughly the same balance.
	got, err := pool.ComputeBalance(balances, 0, scaled(1, 18))
	require.NoError(t, err)
	diff := got.Sub(balances[0]).Abs()
	assert.True(t, diff.LTE(sdkmath.NewInt(10)), "got %s", got)

	// Growing the invariant demands a strictly larger balance.
	grown, err := pool.ComputeBalance(balances, 0, scaled(11, 17))
	require.NoError(t, err)
	assert.True(t, grown.GT(got))
}

func TestStableInvariantRatioBounds(t *testing.T) {
	pool := stablePool(t, 100)
	assert.True(t, pool.MinimumInvariantRatio().Equal(scaled(60, 16)))
	assert.True(t, pool.MaximumInvariantRatio().Equal(scaled(500, 16)))
}
