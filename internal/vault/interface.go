package vault

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"

	"github.com/ammlabs/vse/internal/types"
)

// PoolBase is the capability interface every pool type implements. All
// balances and amounts are on the live 18-decimal scale.
type PoolBase interface {
	// ComputeInvariant is a pure function of the current live balances.
	// rounding selects the floor/ceil variant of the formula's internal
	// divisions.
	ComputeInvariant(balancesLiveScaled18 []sdkmath.Int, rounding types.Rounding) (sdkmath.Int, error)

	// ComputeBalance solves for the new balance of one token, holding the
	// others fixed, such that the pool invariant changes by invariantRatio
	// (new/old, scaled-18).
	ComputeBalance(balancesLiveScaled18 []sdkmath.Int, tokenInIndex int, invariantRatio sdkmath.Int) (sdkmath.Int, error)

	// OnSwap directly prices a swap within the pool's curve.
	OnSwap(params *types.PoolSwapParams) (sdkmath.Int, error)

	// MinimumInvariantRatio and MaximumInvariantRatio bound the invariant
	// ratios the pool supports; the engine rejects operations outside them
	// before calling ComputeBalance.
	MinimumInvariantRatio() sdkmath.Int
	MaximumInvariantRatio() sdkmath.Int
}

// HookFlags gates which lifecycle points a hook wants to intercept.
// EnableHookAdjustedAmounts additionally allows the after-phase hooks to
// replace the final raw amounts.
type HookFlags struct {
	EnableHookAdjustedAmounts       bool
	ShouldCallComputeDynamicSwapFee bool
	ShouldCallBeforeSwap            bool
	ShouldCallAfterSwap             bool
	ShouldCallBeforeAddLiquidity    bool
	ShouldCallAfterAddLiquidity     bool
	ShouldCallBeforeRemoveLiquidity bool
	ShouldCallAfterRemoveLiquidity  bool
}

// AfterSwapParams is handed to the after-swap hook: the fully computed swap,
// before un-scaling adjustments are final.
type AfterSwapParams struct {
	Kind                     types.SwapKind
	TokenIn                  common.Address
	TokenOut                 common.Address
	AmountInScaled18         sdkmath.Int
	AmountOutScaled18        sdkmath.Int
	TokenInBalanceScaled18   sdkmath.Int
	TokenOutBalanceScaled18  sdkmath.Int
	AmountCalculatedScaled18 sdkmath.Int
	AmountCalculatedRaw      sdkmath.Int
}

// Hook is the capability interface for pool-attached lifecycle callbacks.
// hookState is an opaque payload supplied by the caller per operation; the
// engine passes it through without inspecting it, and only the concrete hook
// implementation interprets it. A false return vetoes the whole operation.
//
// Before-phase hooks return replacement live balances for the pool math to
// run against; after-phase hooks return replacement final raw amounts, which
// the engine honors only when EnableHookAdjustedAmounts is set.
type Hook interface {
	Flags() HookFlags

	OnComputeDynamicSwapFee(params *types.PoolSwapParams, staticSwapFee sdkmath.Int, hookState any) (sdkmath.Int, bool)
	OnBeforeSwap(params *types.PoolSwapParams, hookState any) ([]sdkmath.Int, bool)
	OnAfterSwap(params *AfterSwapParams, hookState any) (sdkmath.Int, bool)

	OnBeforeAddLiquidity(kind types.AddLiquidityKind, maxAmountsInScaled18 []sdkmath.Int, minBptAmountOut sdkmath.Int, balancesScaled18 []sdkmath.Int, hookState any) ([]sdkmath.Int, bool)
	OnAfterAddLiquidity(kind types.AddLiquidityKind, amountsInScaled18, amountsInRaw []sdkmath.Int, bptAmountOut sdkmath.Int, balancesScaled18 []sdkmath.Int, hookState any) ([]sdkmath.Int, bool)

	OnBeforeRemoveLiquidity(kind types.RemoveLiquidityKind, maxBptAmountIn sdkmath.Int, minAmountsOutScaled18, balancesScaled18 []sdkmath.Int, hookState any) ([]sdkmath.Int, bool)
	OnAfterRemoveLiquidity(kind types.RemoveLiquidityKind, bptAmountIn sdkmath.Int, amountsOutScaled18, amountsOutRaw, balancesScaled18 []sdkmath.Int, hookState any) ([]sdkmath.Int, bool)
}

// PoolFactory builds a pool implementation from a state snapshot.
type PoolFactory func(pool *types.PoolState) (PoolBase, error)

// HookFactory builds a hook implementation from a state snapshot.
type HookFactory func(pool *types.PoolState) (Hook, error)

// BaseHook is a no-op Hook for embedding: custom hooks override only the
// lifecycle points they gate on.
type BaseHook struct{}

func (BaseHook) Flags() HookFlags { return HookFlags{} }

func (BaseHook) OnComputeDynamicSwapFee(_ *types.PoolSwapParams, staticSwapFee sdkmath.Int, _ any) (sdkmath.Int, bool) {
	return staticSwapFee, true
}

func (BaseHook) OnBeforeSwap(params *types.PoolSwapParams, _ any) ([]sdkmath.Int, bool) {
	return params.BalancesLiveScaled18, true
}

func (BaseHook) OnAfterSwap(params *AfterSwapParams, _ any) (sdkmath.Int, bool) {
	return params.AmountCalculatedRaw, true
}

func (BaseHook) OnBeforeAddLiquidity(_ types.AddLiquidityKind, _ []sdkmath.Int, _ sdkmath.Int, balancesScaled18 []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return balancesScaled18, true
}

func (BaseHook) OnAfterAddLiquidity(_ types.AddLiquidityKind, _, amountsInRaw []sdkmath.Int, _ sdkmath.Int, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return amountsInRaw, true
}

func (BaseHook) OnBeforeRemoveLiquidity(_ types.RemoveLiquidityKind, _ sdkmath.Int, _, balancesScaled18 []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return balancesScaled18, true
}

func (BaseHook) OnAfterRemoveLiquidity(_ types.RemoveLiquidityKind, _ sdkmath.Int, _, amountsOutRaw, _ []sdkmath.Int, _ any) ([]sdkmath.Int, bool) {
	return amountsOutRaw, true
}
