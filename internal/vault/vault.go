/*

Settlement engine core: pool/hook type registries and the shared input
validation every operation runs before any arithmetic begins.

The engine is a pure, synchronous computation library. It owns no state
beyond the registries, never mutates its inputs, and performs no I/O; the
only logging it ever emits is the re-registration warning below.

*/

package vault

import (
	"fmt"
	"sync"

	sdkmath "cosmossdk.io/math"
	"github.com/rs/zerolog"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/logger"
	"github.com/ammlabs/vse/internal/types"
)

// Engine resolves pool/hook type tags to implementations and orchestrates
// swap and liquidity operations against them. Register all types before
// processing any PoolState that references them.
type Engine struct {
	mu        sync.RWMutex
	poolTypes map[string]PoolFactory
	hookTypes map[string]HookFactory
	log       zerolog.Logger
}

// NewEngine returns an engine with empty registries.
func NewEngine() *Engine {
	return &Engine{
		poolTypes: make(map[string]PoolFactory),
		hookTypes: make(map[string]HookFactory),
		log:       logger.GetForComponent("vault_engine"),
	}
}

// RegisterPoolType binds a pool type tag to a factory. Re-registering an
// existing tag overwrites the previous binding and logs a warning, so a
// long-running process can shadow a built-in without a restart.
func (e *Engine) RegisterPoolType(tag string, factory PoolFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.poolTypes[tag]; exists {
		e.log.Warn().Str("poolType", tag).Msg("Overwriting existing pool type registration")
	}
	e.poolTypes[tag] = factory
}

// RegisterHookType binds a hook type tag to a factory, with the same
// overwrite-and-warn semantics as RegisterPoolType.
func (e *Engine) RegisterHookType(tag string, factory HookFactory) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.hookTypes[tag]; exists {
		e.log.Warn().Str("hookType", tag).Msg("Overwriting existing hook type registration")
	}
	e.hookTypes[tag] = factory
}

// resolvePool instantiates the pool implementation for a state snapshot.
func (e *Engine) resolvePool(pool *types.PoolState) (PoolBase, error) {
	e.mu.RLock()
	factory, ok := e.poolTypes[pool.PoolType]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPoolType, pool.PoolType)
	}
	return factory(pool)
}

// resolveHook instantiates the hook implementation for a state snapshot. An
// empty hook type resolves to the no-op BaseHook.
func (e *Engine) resolveHook(pool *types.PoolState) (Hook, error) {
	if pool.HookType == "" {
		return BaseHook{}, nil
	}
	e.mu.RLock()
	factory, ok := e.hookTypes[pool.HookType]
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownHookType, pool.HookType)
	}
	return factory(pool)
}

// validatePoolState performs comprehensive validation of a pool snapshot
// before any arithmetic begins.
func validatePoolState(pool *types.PoolState) error {
	if pool == nil {
		return fmt.Errorf("%w: pool state is nil", ErrInvalidInput)
	}
	n := pool.NumTokens()
	if n < 2 {
		return fmt.Errorf("%w: pool must hold at least 2 tokens, got %d", ErrInvalidInput, n)
	}
	if len(pool.BalancesLiveScaled18) != n || len(pool.ScalingFactors) != n || len(pool.TokenRates) != n {
		return fmt.Errorf("%w: balances, scaling factors and rates must align with the token list", ErrInvalidInput)
	}
	for i := 0; i < n; i++ {
		if err := validateAmount(pool.BalancesLiveScaled18[i], "balance"); err != nil {
			return err
		}
		if err := validatePositive(pool.ScalingFactors[i], "scaling factor"); err != nil {
			return err
		}
		if err := validatePositive(pool.TokenRates[i], "token rate"); err != nil {
			return err
		}
	}
	if err := validateFee(pool.SwapFee, "swap fee"); err != nil {
		return err
	}
	if err := validateFee(pool.AggregateSwapFee, "aggregate swap fee"); err != nil {
		return err
	}
	if err := validateAmount(pool.TotalSupply, "total supply"); err != nil {
		return err
	}
	return nil
}

func validateAmount(v sdkmath.Int, name string) error {
	if v.IsNil() {
		return fmt.Errorf("%w: %s is nil", ErrInvalidInput, name)
	}
	if v.IsNegative() {
		return fmt.Errorf("%w: %s is negative", ErrInvalidInput, name)
	}
	return nil
}

func validatePositive(v sdkmath.Int, name string) error {
	if err := validateAmount(v, name); err != nil {
		return err
	}
	if v.IsZero() {
		return fmt.Errorf("%w: %s is zero", ErrInvalidInput, name)
	}
	return nil
}

func validateFee(v sdkmath.Int, name string) error {
	if err := validateAmount(v, name); err != nil {
		return err
	}
	if v.GTE(fixedpoint.ONE) {
		return fmt.Errorf("%w: %s must be below 1e18", ErrInvalidInput, name)
	}
	return nil
}

// validateAmountSlice checks a per-token request array against the pool's
// token count.
func validateAmountSlice(amounts []sdkmath.Int, n int, name string) error {
	if len(amounts) != n {
		return fmt.Errorf("%w: %s length %d does not match token count %d", ErrInvalidInput, name, len(amounts), n)
	}
	for _, v := range amounts {
		if err := validateAmount(v, name); err != nil {
			return err
		}
	}
	return nil
}

// singleTokenIndex returns the position of the single non-zero entry in a
// per-token amount array, the convention selecting the affected token for
// single-token liquidity kinds.
func singleTokenIndex(amounts []sdkmath.Int) (int, error) {
	index := -1
	for i, v := range amounts {
		if v.IsZero() {
			continue
		}
		if index != -1 {
			return 0, fmt.Errorf("%w: expected exactly one non-zero amount", ErrInvalidInput)
		}
		index = i
	}
	if index == -1 {
		return 0, fmt.Errorf("%w: expected exactly one non-zero amount", ErrInvalidInput)
	}
	return index, nil
}

// checkInvariantRatioBounds rejects invariant ratios outside the pool's
// declared range before ComputeBalance is ever invoked.
func checkInvariantRatioBounds(pool PoolBase, invariantRatio sdkmath.Int) error {
	if invariantRatio.LT(pool.MinimumInvariantRatio()) || invariantRatio.GT(pool.MaximumInvariantRatio()) {
		return fmt.Errorf("%w: ratio %s not in [%s, %s]", ErrInvariantRatioOutOfBounds,
			invariantRatio, pool.MinimumInvariantRatio(), pool.MaximumInvariantRatio())
	}
	return nil
}

// aggregateFee returns the protocol share of a collected swap fee amount,
// rounding down.
func aggregateFee(feeRaw, aggregateSwapFee sdkmath.Int) (sdkmath.Int, error) {
	return fixedpoint.MulDown(feeRaw, aggregateSwapFee)
}

// zeroSlice returns an n-length array of zero amounts.
func zeroSlice(n int) []sdkmath.Int {
	out := make([]sdkmath.Int, n)
	for i := range out {
		out[i] = sdkmath.ZeroInt()
	}
	return out
}

// copySlice clones a balance array so pool math never aliases caller state.
func copySlice(in []sdkmath.Int) []sdkmath.Int {
	out := make([]sdkmath.Int, len(in))
	copy(out, in)
	return out
}
