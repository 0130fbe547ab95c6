/*

Pool state snapshot consumed by the settlement engine. A PoolState is an
immutable input: the engine never mutates it and owns no state of its own
between calls.

*/

package types

import (
	sdkmath "cosmossdk.io/math"
	"github.com/ethereum/go-ethereum/common"
)

// Rounding selects the floor/ceil variant of an invariant computation.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// PoolState describes one pool instance at a point in time. Balances are
// carried on the canonical 18-decimal live scale; scaling factors and rates
// are only needed to convert request/result amounts between raw token units
// and that scale.
type PoolState struct {
	// PoolType selects the registered pool implementation (e.g. "WEIGHTED").
	PoolType string `json:"poolType"`
	// HookType selects the registered hook implementation; empty means no hook.
	HookType string `json:"hookType,omitempty"`

	Tokens []common.Address `json:"tokens"`

	// ScalingFactors are scaled-18 multipliers converting raw token units to
	// 18 decimals (1e18 = identity for an 18-decimal token).
	ScalingFactors []sdkmath.Int `json:"scalingFactors"`
	// TokenRates are scaled-18 yield/rebase multipliers (1e18 = no yield).
	TokenRates []sdkmath.Int `json:"tokenRates"`

	BalancesLiveScaled18 []sdkmath.Int `json:"balancesLiveScaled18"`

	// SwapFee and AggregateSwapFee are scaled-18 fractions in [0, 1).
	SwapFee          sdkmath.Int `json:"swapFee"`
	AggregateSwapFee sdkmath.Int `json:"aggregateSwapFee"`

	TotalSupply sdkmath.Int `json:"totalSupply"`

	// Weights (weighted pools) and Amp (stable pools, premultiplied by
	// AMP_PRECISION=1000) are the built-in pool type parameters.
	Weights []sdkmath.Int `json:"weights,omitempty"`
	Amp     sdkmath.Int   `json:"amp,omitempty"`

	// Extra carries parameters for custom-registered pool types; the engine
	// passes it through without inspecting it.
	Extra map[string]any `json:"extra,omitempty"`
}

// NumTokens returns the token count of the pool.
func (p *PoolState) NumTokens() int {
	return len(p.Tokens)
}

// IndexOfToken returns the position of a token address in the pool's token
// list, or -1 if the token is not part of the pool.
func (p *PoolState) IndexOfToken(token common.Address) int {
	for i, t := range p.Tokens {
		if t == token {
			return i
		}
	}
	return -1
}
