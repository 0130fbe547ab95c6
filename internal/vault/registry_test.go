package vault

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammlabs/vse/internal/types"
)

func TestUnknownPoolType(t *testing.T) {
	engine := NewEngine()
	pool := twoTokenPool("NOT_REGISTERED", scaled(1, 18), scaled(1, 18))

	_, err := engine.Swap(&types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: scaled(1, 18),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}, pool, nil)
	require.ErrorIs(t, err, ErrUnknownPoolType)
}

func TestUnknownHookType(t *testing.T) {
	engine := newEngineWith(map[string]PoolFactory{"SUM": newSumPool}, nil)
	pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))
	pool.HookType = "NOT_REGISTERED"

	_, err := engine.Swap(&types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: scaled(1, 18),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}, pool, nil)
	require.ErrorIs(t, err, ErrUnknownHookType)
}

func TestEmptyHookTypeIsNoOp(t *testing.T) {
	engine := newEngineWith(map[string]PoolFactory{"SUM": newSumPool}, nil)
	pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))

	result, err := engine.Swap(&types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: sdkmath.NewInt(1000),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}, pool, nil)
	require.NoError(t, err)
	assert.True(t, result.AmountCalculatedRaw.Equal(sdkmath.NewInt(1000)))
}

func TestReRegistrationOverwrites(t *testing.T) {
	engine := NewEngine()
	engine.RegisterPoolType("SUM", newOneWeiPool)
	engine.RegisterPoolType("SUM", newSumPool)

	pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))
	result, err := engine.Swap(&types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: sdkmath.NewInt(1000),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}, pool, nil)
	require.NoError(t, err)

	// The second registration won: the linear curve passes the amount
	// through instead of collapsing to one wei.
	assert.True(t, result.AmountCalculatedRaw.Equal(sdkmath.NewInt(1000)))
}

func TestEngineIsolation(t *testing.T) {
	a := newEngineWith(map[string]PoolFactory{"SUM": newSumPool}, nil)
	b := NewEngine()

	pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))
	input := &types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: sdkmath.NewInt(1000),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}

	_, err := a.Swap(input, pool, nil)
	require.NoError(t, err)

	// Registrations on one engine never leak into another.
	_, err = b.Swap(input, pool, nil)
	require.ErrorIs(t, err, ErrUnknownPoolType)
}

func TestPoolStateValidation(t *testing.T) {
	engine := newEngineWith(map[string]PoolFactory{"SUM": newSumPool}, nil)
	input := &types.SwapInput{
		Kind:      types.SwapKindGivenIn,
		AmountRaw: scaled(1, 18),
		TokenIn:   tokenA,
		TokenOut:  tokenB,
	}

	t.Run("misaligned balances", func(t *testing.T) {
		pool := twoTokenPool("SUM", scaled(1, 18))
		_, err := engine.Swap(input, pool, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("fee at one", func(t *testing.T) {
		pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))
		pool.SwapFee = scaled(1, 18)
		_, err := engine.Swap(input, pool, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero scaling factor", func(t *testing.T) {
		pool := twoTokenPool("SUM", scaled(1, 18), scaled(1, 18))
		pool.ScalingFactors[1] = sdkmath.ZeroInt()
		_, err := engine.Swap(input, pool, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("negative balance", func(t *testing.T) {
		pool := twoTokenPool("SUM", scaled(1, 18), sdkmath.NewInt(-1))
		_, err := engine.Swap(input, pool, nil)
		require.ErrorIs(t, err, ErrInvalidInput)
	})
}
