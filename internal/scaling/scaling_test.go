package scaling

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFactorForDecimals(t *testing.T) {
	f, err := FactorForDecimals(18)
	require.NoError(t, err)
	assert.True(t, f.Equal(sdkmath.NewIntWithDecimal(1, 18)))

	f, err = FactorForDecimals(6)
	require.NoError(t, err)
	assert.True(t, f.Equal(sdkmath.NewIntWithDecimal(1, 30)))

	_, err = FactorForDecimals(19)
	require.ErrorIs(t, err, ErrBadDecimals)

	_, err = FactorForDecimals(-1)
	require.ErrorIs(t, err, ErrBadDecimals)
}

func TestToLiveSixDecimalToken(t *testing.T) {
	// 1.5 units of a 6-decimal token at rate 1.
	raw := sdkmath.NewInt(1_500_000)
	sf, err := FactorForDecimals(6)
	require.NoError(t, err)
	rate := sdkmath.NewIntWithDecimal(1, 18)

	live, err := ToLive(raw, sf, rate, false)
	require.NoError(t, err)
	assert.True(t, live.Equal(sdkmath.NewIntWithDecimal(15, 17)), "got %s", live)
}

func TestToLiveAppliesRate(t *testing.T) {
	raw := sdkmath.NewIntWithDecimal(1, 18)
	sf := sdkmath.NewIntWithDecimal(1, 18)
	rate := sdkmath.NewIntWithDecimal(2, 18)

	live, err := ToLive(raw, sf, rate, false)
	require.NoError(t, err)
	assert.True(t, live.Equal(sdkmath.NewIntWithDecimal(2, 18)))
}

func TestRoundTripNeverGains(t *testing.T) {
	// Scaling down to live and back up to raw must never manufacture value:
	// ToRaw(ToLive(x, down), down) <= x.
	sf, err := FactorForDecimals(6)
	require.NoError(t, err)
	rate := sdkmath.NewInt(1_234_567_891_234_567_891)

	for _, raw := range []int64{1, 7, 999_999, 1_000_001, 123_456_789} {
		x := sdkmath.NewInt(raw)
		live, err := ToLive(x, sf, rate, false)
		require.NoError(t, err)
		back, err := ToRaw(live, sf, rate, false)
		require.NoError(t, err)
		assert.True(t, back.LTE(x), "round trip of %s gained value: %s", x, back)
	}
}

func TestRoundUpAtLeastRoundDown(t *testing.T) {
	raw := sdkmath.NewInt(777)
	sf, err := FactorForDecimals(7)
	require.NoError(t, err)
	rate := sdkmath.NewInt(1_100_000_000_000_000_003)

	up, err := ToLive(raw, sf, rate, true)
	require.NoError(t, err)
	down, err := ToLive(raw, sf, rate, false)
	require.NoError(t, err)
	assert.True(t, up.GTE(down))
}

func TestSliceLengthMismatch(t *testing.T) {
	one := sdkmath.NewIntWithDecimal(1, 18)

	_, err := ToLiveSlice([]sdkmath.Int{one, one}, []sdkmath.Int{one}, []sdkmath.Int{one, one}, false)
	require.ErrorIs(t, err, ErrLengthMismatch)

	_, err = ToRawSlice([]sdkmath.Int{one}, []sdkmath.Int{one, one}, []sdkmath.Int{one, one}, false)
	require.ErrorIs(t, err, ErrLengthMismatch)
}
