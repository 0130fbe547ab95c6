/*
Conversion between raw token amounts (native decimals) and the canonical
18-decimal "live" scale all pool math operates in.

Rounding policy: amounts the pool must receive round up in the pool's favor;
amounts the pool pays out round down. The caller selects the direction per
call site; these helpers just apply it consistently to both the scaling
factor and the token rate.
*/

package scaling

import (
	"errors"
	"fmt"

	sdkmath "cosmossdk.io/math"

	"github.com/ammlabs/vse/internal/fixedpoint"
)

var (
	ErrLengthMismatch = errors.New("amounts, scaling factors and rates must be equal length")
	ErrBadDecimals    = errors.New("token decimals must be between 0 and 18")
)

// FactorForDecimals returns the scaled-18 multiplier that converts a raw
// amount with d native decimals to the live scale: 10^(36-d). A standard
// 18-decimal token gets the identity factor 1e18.
func FactorForDecimals(d int) (sdkmath.Int, error) {
	if d < 0 || d > 18 {
		return sdkmath.Int{}, fmt.Errorf("%w: %d", ErrBadDecimals, d)
	}
	return sdkmath.NewIntWithDecimal(1, 36-d), nil
}

// ToLive converts a raw token amount to the 18-decimal live scale, applying
// the token rate. roundUp selects the pool-favoring ceiling variant.
func ToLive(raw, scalingFactor, rate sdkmath.Int, roundUp bool) (sdkmath.Int, error) {
	if roundUp {
		scaled, err := fixedpoint.MulUp(raw, scalingFactor)
		if err != nil {
			return sdkmath.Int{}, err
		}
		return fixedpoint.MulUp(scaled, rate)
	}
	scaled, err := fixedpoint.MulDown(raw, scalingFactor)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedpoint.MulDown(scaled, rate)
}

// ToRaw converts a live 18-decimal amount back to raw token units, dividing
// out the rate and then the scaling factor with the matching rounding
// direction.
func ToRaw(live, scalingFactor, rate sdkmath.Int, roundUp bool) (sdkmath.Int, error) {
	if roundUp {
		unrated, err := fixedpoint.DivUp(live, rate)
		if err != nil {
			return sdkmath.Int{}, err
		}
		return fixedpoint.DivUp(unrated, scalingFactor)
	}
	unrated, err := fixedpoint.DivDown(live, rate)
	if err != nil {
		return sdkmath.Int{}, err
	}
	return fixedpoint.DivDown(unrated, scalingFactor)
}

// ToLiveSlice converts a per-token raw amount array to the live scale.
func ToLiveSlice(raw, scalingFactors, rates []sdkmath.Int, roundUp bool) ([]sdkmath.Int, error) {
	if len(raw) != len(scalingFactors) || len(raw) != len(rates) {
		return nil, ErrLengthMismatch
	}
	live := make([]sdkmath.Int, len(raw))
	for i := range raw {
		v, err := ToLive(raw[i], scalingFactors[i], rates[i], roundUp)
		if err != nil {
			return nil, err
		}
		live[i] = v
	}
	return live, nil
}

// ToRawSlice converts a per-token live amount array back to raw units.
func ToRawSlice(live, scalingFactors, rates []sdkmath.Int, roundUp bool) ([]sdkmath.Int, error) {
	if len(live) != len(scalingFactors) || len(live) != len(rates) {
		return nil, ErrLengthMismatch
	}
	raw := make([]sdkmath.Int, len(live))
	for i := range live {
		v, err := ToRaw(live[i], scalingFactors[i], rates[i], roundUp)
		if err != nil {
			return nil, err
		}
		raw[i] = v
	}
	return raw, nil
}
