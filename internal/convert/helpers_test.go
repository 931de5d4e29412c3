package convert

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/api/resource"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want float64
	}{
		{"500m", 0.5},
		{"100m", 0.1},
		{"2", 2},
		{"1k", 1000},
		{"250000000n", 0.25},
		{"1Ki", 1024},
		{"1Mi", 1048576},
		{"1Gi", 1073741824},
		{"5000Mi", 5000 * 1048576},
		{"1.5Gi", 1.5 * 1073741824},
		{"0", 0},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := Normalize(tt.raw)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestNormalize_UnrecognizedUnit(t *testing.T) {
	for _, raw := range []string{"10500Ubernonexistingunit", "", "x", "1Ti", "Mi", "12parsecs"} {
		t.Run(raw, func(t *testing.T) {
			_, err := Normalize(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnrecognizedUnit), "got %v", err)
		})
	}
}

func TestNormalize_Negative(t *testing.T) {
	_, err := Normalize("-500m")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestNormalize_MatchesCanonicalQuantityStrings(t *testing.T) {
	// Strings produced by resource.Quantity.String() must round-trip.
	for _, s := range []string{"3920m", "15Gi", "16393076Ki", "1536", "123456789n"} {
		q := resource.MustParse(s)
		got, err := Normalize(q.String())
		require.NoError(t, err, s)
		assert.InDelta(t, q.AsApproximateFloat64(), got, 1e-6, s)
	}
}

func TestNormalizeOptional_EmptyIsZero(t *testing.T) {
	got, err := NormalizeOptional("")
	require.NoError(t, err)
	assert.Zero(t, got)

	_, err = NormalizeOptional("7Xi")
	assert.ErrorIs(t, err, ErrUnrecognizedUnit)
}
