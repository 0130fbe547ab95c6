/*

Stable pool, the StableSwap curve with an amplification parameter. The
invariant D and per-token balance solutions have no closed form, so both are
found by Newton iteration, up to 255 rounds, accepted once two successive
estimates sit within one wei of each other.

Iteration state lives in big.Int because D*D intermediates overflow 256 bits
for large pools.

*/

package pools

import (
	"errors"
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
	"github.com/ammlabs/vse/internal/types"
	"github.com/ammlabs/vse/internal/vault"
)

// Amplification parameters are stored pre-multiplied by ampPrecision.
const ampPrecision = 1000

var (
	ErrMissingAmp           = errors.New("pool state carries no amplification parameter")
	ErrStableDidNotConverge = errors.New("stable invariant iteration did not converge")
	ErrStableZeroBalance    = errors.New("stable math requires positive balances")
)

var (
	// An operation may not shrink the invariant below 60% or grow it past
	// 500% of its current value.
	stableMinInvariantRatio = sdkmath.NewIntWithDecimal(60, 16)
	stableMaxInvariantRatio = sdkmath.NewIntWithDecimal(500, 16)
)

// StablePool implements vault.PoolBase for amplified stable pools.
type StablePool struct {
	amp *big.Int
}

// NewStablePool builds a StablePool from a state snapshot.
func NewStablePool(pool *types.PoolState) (vault.PoolBase, error) {
	if pool.Amp.IsNil() || !pool.Amp.IsPositive() {
		return nil, ErrMissingAmp
	}
	return &StablePool{amp: pool.Amp.BigInt()}, nil
}

func (p *StablePool) MinimumInvariantRatio() sdkmath.Int { return stableMinInvariantRatio }
func (p *StablePool) MaximumInvariantRatio() sdkmath.Int { return stableMaxInvariantRatio }

// ComputeInvariant finds D for the current balances. The Newton iteration
// itself always truncates; rounding up adds a wei on top of the converged
// value.
func (p *StablePool) ComputeInvariant(balances []sdkmath.Int, rounding types.Rounding) (sdkmath.Int, error) {
	d, err := p.computeD(toBig(balances))
	if err != nil {
		return sdkmath.Int{}, err
	}
	if rounding == types.RoundUp && d.Sign() > 0 {
		d = new(big.Int).Add(d, big.NewInt(1))
	}
	return fromBig(d)
}

// ComputeBalance solves for the balance of one token that moves D to
// D * invariantRatio, holding the other balances fixed.
func (p *StablePool) ComputeBalance(balances []sdkmath.Int, tokenInIndex int, invariantRatio sdkmath.Int) (sdkmath.Int, error) {
	bigBalances := toBig(balances)
	d, err := p.computeD(bigBalances)
	if err != nil {
		return sdkmath.Int{}, err
	}
	currentInvariant, err := fromBig(d)
	if err != nil {
		return sdkmath.Int{}, err
	}
	newInvariant, err := fixedpoint.MulUp(currentInvariant, invariantRatio)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return p.solveBalance(bigBalances, tokenInIndex, newInvariant.BigInt())
}

// OnSwap prices a swap by re-solving the curve for the counterparty balance
// at constant D. The wei adjustments keep the rounding error on the pool's
// side of both trade directions.
func (p *StablePool) OnSwap(params *types.PoolSwapParams) (sdkmath.Int, error) {
	balances := toBig(params.BalancesLiveScaled18)
	d, err := p.computeD(balances)
	if err != nil {
		return sdkmath.Int{}, err
	}

	if params.Kind == types.SwapKindGivenIn {
		balances[params.IndexIn] = new(big.Int).Add(balances[params.IndexIn], params.AmountGivenScaled18.BigInt())
		finalBalanceOut, err := p.solveBalance(balances, params.IndexOut, d)
		if err != nil {
			return sdkmath.Int{}, err
		}
		amountOut := params.BalancesLiveScaled18[params.IndexOut].Sub(finalBalanceOut).Sub(sdkmath.OneInt())
		if amountOut.IsNegative() {
			amountOut = sdkmath.ZeroInt()
		}
		return amountOut, nil
	}

	balances[params.IndexOut] = new(big.Int).Sub(balances[params.IndexOut], params.AmountGivenScaled18.BigInt())
	if balances[params.IndexOut].Sign() <= 0 {
		return sdkmath.Int{}, fmt.Errorf("%w: amount out drains the pool", ErrStableZeroBalance)
	}
	finalBalanceIn, err := p.solveBalance(balances, params.IndexIn, d)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return finalBalanceIn.Sub(params.BalancesLiveScaled18[params.IndexIn]).Add(sdkmath.OneInt()), nil
}

// computeD runs the invariant iteration:
//
//	A n^n sum(x_i) + D = A D n^n + D^(n+1) / (n^n prod(x_i))
func (p *StablePool) computeD(balances []*big.Int) (*big.Int, error) {
	n := int64(len(balances))
	bigN := big.NewInt(n)

	sum := new(big.Int)
	for _, b := range balances {
		sum.Add(sum, b)
	}
	if sum.Sign() == 0 {
		return new(big.Int), nil
	}

	ampTotal := new(big.Int).Mul(p.amp, bigN)
	ampPrec := big.NewInt(ampPrecision)
	one := big.NewInt(1)

	invariant := new(big.Int).Set(sum)
	prev := new(big.Int)
	for i := 0; i < 255; i++ {
		dP := new(big.Int).Set(invariant)
		for _, b := range balances {
			if b.Sign() == 0 {
				return nil, ErrStableZeroBalance
			}
			// dP = dP * D / (b * n)
			dP.Mul(dP, invariant)
			dP.Quo(dP, new(big.Int).Mul(b, bigN))
		}
		prev.Set(invariant)

		// D = ((A n sum / P + dP n) D) / ((A n - P) D / P + (n+1) dP)
		num := new(big.Int).Mul(ampTotal, sum)
		num.Quo(num, ampPrec)
		num.Add(num, new(big.Int).Mul(dP, bigN))
		num.Mul(num, invariant)

		den := new(big.Int).Sub(ampTotal, ampPrec)
		den.Mul(den, invariant)
		den.Quo(den, ampPrec)
		den.Add(den, new(big.Int).Mul(dP, big.NewInt(n+1)))

		invariant = num.Quo(num, den)

		diff := new(big.Int).Sub(invariant, prev)
		if diff.CmpAbs(one) <= 0 {
			return invariant, nil
		}
	}
	return nil, ErrStableDidNotConverge
}

// solveBalance finds the balance of token index that satisfies the invariant
// equation at the given D, rounding the result up.
func (p *StablePool) solveBalance(balances []*big.Int, index int, invariant *big.Int) (sdkmath.Int, error) {
	n := int64(len(balances))
	bigN := big.NewInt(n)
	ampTotal := new(big.Int).Mul(p.amp, bigN)
	ampPrec := big.NewInt(ampPrecision)
	one := big.NewInt(1)

	sum := new(big.Int).Set(balances[0])
	pD := new(big.Int).Mul(balances[0], bigN)
	for j := 1; j < len(balances); j++ {
		// pD = pD * x_j * n / D
		pD.Mul(pD, balances[j])
		pD.Mul(pD, bigN)
		pD.Quo(pD, invariant)
		sum.Add(sum, balances[j])
	}
	sum.Sub(sum, balances[index])

	inv2 := new(big.Int).Mul(invariant, invariant)
	if pD.Sign() == 0 || balances[index].Sign() == 0 {
		return sdkmath.Int{}, ErrStableZeroBalance
	}

	// c = ceil(D^2 / (A n P)) * PREC * x_index
	c := divUpRaw(inv2, new(big.Int).Mul(ampTotal, pD))
	c.Mul(c, ampPrec)
	c.Mul(c, balances[index])

	// b = sum + D / (A n) * PREC
	b := new(big.Int).Mul(invariant, ampPrec)
	b.Quo(b, ampTotal)
	b.Add(b, sum)

	// x = ceil((D^2 + c) / (D + b))
	balance := divUpRaw(new(big.Int).Add(inv2, c), new(big.Int).Add(invariant, b))
	prev := new(big.Int)
	for i := 0; i < 255; i++ {
		prev.Set(balance)
		// x = ceil((x^2 + c) / (2x + b - D))
		num := new(big.Int).Mul(balance, balance)
		num.Add(num, c)
		den := new(big.Int).Lsh(balance, 1)
		den.Add(den, b)
		den.Sub(den, invariant)
		balance = divUpRaw(num, den)

		diff := new(big.Int).Sub(balance, prev)
		if diff.CmpAbs(one) <= 0 {
			return fromBig(balance)
		}
	}
	return sdkmath.Int{}, ErrStableDidNotConverge
}

// divUpRaw returns ceil(a/b) for non-negative a and positive b.
func divUpRaw(a, b *big.Int) *big.Int {
	if a.Sign() == 0 {
		return new(big.Int)
	}
	out := new(big.Int).Sub(a, big.NewInt(1))
	out.Quo(out, b)
	return out.Add(out, big.NewInt(1))
}

func toBig(in []sdkmath.Int) []*big.Int {
	out := make([]*big.Int, len(in))
	for i, v := range in {
		out[i] = v.BigInt()
	}
	return out
}

func fromBig(v *big.Int) (sdkmath.Int, error) {
	if v.BitLen() > sdkmath.MaxBitLen {
		return sdkmath.Int{}, fixedpoint.ErrOverflow
	}
	return sdkmath.NewIntFromBigInt(v), nil
}
