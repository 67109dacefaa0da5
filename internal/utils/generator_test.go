package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingReferenceShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		ref, err := BookingReference()
		require.NoError(t, err)
		assert.Len(t, ref, 10)
		for _, r := range ref {
			assert.True(t, strings.ContainsRune(referenceAlphabet, r), "unexpected symbol %q in %s", r, ref)
		}
		seen[ref] = true
	}
	// 100 draws from a 36^10 space colliding would point at a broken
	// random source.
	assert.Len(t, seen, 100)
}

func TestPaymentTokenShape(t *testing.T) {
	a, err := PaymentToken()
	require.NoError(t, err)
	b, err := PaymentToken()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
	assert.Equal(t, strings.ToLower(a), a, "tokens are lowercase hex")
	for _, r := range a {
		assert.Contains(t, "0123456789abcdef", string(r))
	}
}
