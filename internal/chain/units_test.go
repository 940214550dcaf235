package chain

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ether(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

// ---------------------------------------------------------------------------
// ParseUnits
// ---------------------------------------------------------------------------

func TestParseUnitsWhole(t *testing.T) {
	v, err := ParseUnits("2", 18)
	require.NoError(t, err)
	assert.Equal(t, ether(2), v)
}

func TestParseUnitsFraction(t *testing.T) {
	v, err := ParseUnits("1.5", 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())
}

func TestParseUnitsSmallestUnit(t *testing.T) {
	v, err := ParseUnits("0.000000000000000001", 18)
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(1), v)
}

func TestParseUnitsLeadingAndTrailingDot(t *testing.T) {
	v, err := ParseUnits(".5", 18)
	require.NoError(t, err)
	assert.Equal(t, "500000000000000000", v.String())

	v, err = ParseUnits("3.", 18)
	require.NoError(t, err)
	assert.Equal(t, ether(3), v)
}

func TestParseUnitsZero(t *testing.T) {
	v, err := ParseUnits("0.0", 18)
	require.NoError(t, err)
	assert.Equal(t, 0, v.Sign())
}

func TestParseUnitsExactBeyondFloatPrecision(t *testing.T) {
	// float64 would lose the trailing digits here.
	v, err := ParseUnits("123456789.123456789123456789", 18)
	require.NoError(t, err)
	assert.Equal(t, "123456789123456789123456789", v.String())
}

func TestParseUnitsInvalid(t *testing.T) {
	for _, in := range []string{"", ".", "abc", "1.2.3", "-1", "+1", "1e18", " 1", "1,5", "0x10"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseUnits(in, 18)
			assert.ErrorIs(t, err, ErrInvalidAmount)
		})
	}
}

func TestParseUnitsTooManyDecimals(t *testing.T) {
	_, err := ParseUnits("0.0000000000000000001", 18)
	assert.ErrorIs(t, err, ErrInvalidAmount)

	_, err = ParseUnits("1.5", 0)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseUnitsDecimalsBounds(t *testing.T) {
	_, err := ParseUnits("1", -1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
	_, err = ParseUnits("1", MaxDecimals+1)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

// ---------------------------------------------------------------------------
// FormatUnits
// ---------------------------------------------------------------------------

func TestFormatUnits(t *testing.T) {
	tests := []struct {
		in       *big.Int
		decimals int
		want     string
	}{
		{ether(2), 18, "2.0"},
		{big.NewInt(0), 18, "0.0"},
		{big.NewInt(1), 18, "0.000000000000000001"},
		{big.NewInt(1_500_000), 6, "1.5"},
		{big.NewInt(-1_500_000), 6, "-1.5"},
		{big.NewInt(42), 0, "42"},
		{nil, 18, "0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatUnits(tt.in, tt.decimals))
		})
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	for _, in := range []string{"2", "0.1", "1.5", "1000000", "0.000000000000000001", "98765.4321"} {
		t.Run(in, func(t *testing.T) {
			v, err := ParseUnits(in, 18)
			require.NoError(t, err)

			back, err := ParseUnits(FormatUnits(v, 18), 18)
			require.NoError(t, err)
			assert.Equal(t, v, back)
		})
	}
}
