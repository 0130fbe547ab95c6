package vault

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/types"
)

var (
	tokenA = common.HexToAddress("0x0000000000000000000000000000000000000a0a")
	tokenB = common.HexToAddress("0x0000000000000000000000000000000000000b0b")
)

func scaled(v int64, dec int) sdkmath.Int { return sdkmath.NewIntWithDecimal(v, dec) }

// twoTokenPool returns an 18-decimal rate-1 pool snapshot with the given
// live balances.
func twoTokenPool(poolType string, balances ...sdkmath.Int) *types.PoolState {
	one := scaled(1, 18)
	return &types.PoolState{
		PoolType:             poolType,
		Tokens:               []common.Address{tokenA, tokenB},
		ScalingFactors:       []sdkmath.Int{one, one},
		TokenRates:           []sdkmath.Int{one, one},
		BalancesLiveScaled18: balances,
		SwapFee:              sdkmath.ZeroInt(),
		AggregateSwapFee:     sdkmath.ZeroInt(),
		TotalSupply:          scaled(1, 18),
	}
}

// sumPool is a linear test curve: the invariant is the plain sum of the
// balances and swaps price one to one. Its simple closed forms make every
// engine-level rounding step observable.
type sumPool struct{}

func (sumPool) MinimumInvariantRatio() sdkmath.Int { return sdkmath.ZeroInt() }
func (sumPool) MaximumInvariantRatio() sdkmath.Int { return scaled(1, 36) }

func (sumPool) ComputeInvariant(balances []sdkmath.Int, _ types.Rounding) (sdkmath.Int, error) {
	sum := sdkmath.ZeroInt()
	for _, b := range balances {
		sum = sum.Add(b)
	}
	return sum, nil
}

func (sumPool) ComputeBalance(balances []sdkmath.Int, index int, invariantRatio sdkmath.Int) (sdkmath.Int, error) {
	sum := sdkmath.ZeroInt()
	for _, b := range balances {
		sum = sum.Add(b)
	}
	newSum, err := fixedpoint.MulUp(sum, invariantRatio)
	if err != nil {
		return sdkmath.Int{}, err
	}
	others := sum.Sub(balances[index])
	return newSum.Sub(others), nil
}

func (sumPool) OnSwap(params *types.PoolSwapParams) (sdkmath.Int, error) {
	return params.AmountGivenScaled18, nil
}

func newSumPool(_ *types.PoolState) (PoolBase, error) { return sumPool{}, nil }

// oneWeiPool always solves ComputeBalance to a single wei, draining (or
// demanding) nearly the whole target balance. Used by the withdrawal fixture.
type oneWeiPool struct {
	sumPool
}

func (oneWeiPool) ComputeBalance(_ []sdkmath.Int, _ int, _ sdkmath.Int) (sdkmath.Int, error) {
	return sdkmath.OneInt(), nil
}

func newOneWeiPool(_ *types.PoolState) (PoolBase, error) { return oneWeiPool{}, nil }

// substituteBalancesHook swaps the live balances for a fixed set in every
// before-phase callback it gates on.
type substituteBalancesHook struct {
	BaseHook
	flags    HookFlags
	balances []sdkmath.Int
}

func (h *substituteBalancesHook) Flags() HookFlags { return h.flags }

func (h *substituteBalancesHook) OnBeforeSwap(_ *types.PoolSwapParams, _ any) ([]sdkmath.Int, bool) {
	return h.balances, true
}

func (h *substituteBalancesHook) OnBeforeAddLiquidity(_ types.AddLiquidityKind, _ []sdkmath.Int, _ sdkmath.Int, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return h.balances, true
}

func (h *substituteBalancesHook) OnBeforeRemoveLiquidity(_ types.RemoveLiquidityKind, _ sdkmath.Int, _, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return h.balances, true
}

// vetoHook rejects every callback it gates on.
type vetoHook struct {
	BaseHook
	flags HookFlags
}

func (h *vetoHook) Flags() HookFlags { return h.flags }

func (h *vetoHook) OnBeforeSwap(_ *types.PoolSwapParams, _ any) ([]sdkmath.Int, bool) {
	return nil, false
}

func (h *vetoHook) OnAfterSwap(_ *AfterSwapParams, _ any) (sdkmath.Int, bool) {
	return sdkmath.Int{}, false
}

func (h *vetoHook) OnBeforeAddLiquidity(_ types.AddLiquidityKind, _ []sdkmath.Int, _ sdkmath.Int, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return nil, false
}

func (h *vetoHook) OnBeforeRemoveLiquidity(_ types.RemoveLiquidityKind, _ sdkmath.Int, _, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return nil, false
}

// dynamicFeeHook overrides the static swap fee.
type dynamicFeeHook struct {
	BaseHook
	fee sdkmath.Int
}

func (h *dynamicFeeHook) Flags() HookFlags {
	return HookFlags{ShouldCallComputeDynamicSwapFee: true}
}

func (h *dynamicFeeHook) OnComputeDynamicSwapFee(_ *types.PoolSwapParams, _ sdkmath.Int, _ any) (sdkmath.Int, bool) {
	return h.fee, true
}

// adjustAmountHook rewrites the final raw amount in the after-swap phase.
type adjustAmountHook struct {
	BaseHook
	enableAdjusted bool
	amount         sdkmath.Int
}

func (h *adjustAmountHook) Flags() HookFlags {
	return HookFlags{
		ShouldCallAfterSwap:       true,
		EnableHookAdjustedAmounts: h.enableAdjusted,
	}
}

func (h *adjustAmountHook) OnAfterSwap(_ *AfterSwapParams, _ any) (sdkmath.Int, bool) {
	return h.amount, true
}

// newEngineWith registers the given pool factories on a fresh engine.
func newEngineWith(poolTypes map[string]PoolFactory, hookTypes map[string]HookFactory) *Engine {
	e := NewEngine()
	for tag, factory := range poolTypes {
		e.RegisterPoolType(tag, factory)
	}
	for tag, factory := range hookTypes {
		e.RegisterHookType(tag, factory)
	}
	return e
}
