package pkg

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoolTypeString(t *testing.T) {
	assert.Equal(t, "standard", PoolTypeStandard.String())
	assert.Equal(t, "concentrated", PoolTypeConcentrated.String())
	assert.Equal(t, "unknown", PoolType(7).String())
}

func TestParsePoolType(t *testing.T) {
	for _, s := range []string{"standard", "Standard"} {
		parsed, ok := ParsePoolType(s)
		assert.True(t, ok, s)
		assert.Equal(t, PoolTypeStandard, parsed)
	}
	for _, s := range []string{"concentrated", "Concentrated"} {
		parsed, ok := ParsePoolType(s)
		assert.True(t, ok, s)
		assert.Equal(t, PoolTypeConcentrated, parsed)
	}

	_, ok := ParsePoolType("stable")
	assert.False(t, ok)
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("timeout")

	var err error = &DiscoveryError{Endpoint: "/pools/info/mint", Status: 503, Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "503")

	err = &StateReadError{Account: "abc", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "abc")

	err = &SubmissionError{Err: cause}
	assert.ErrorIs(t, err, cause)

	wrapped := fmt.Errorf("quote failed: %w", ErrInsufficientLiquidityData)
	assert.ErrorIs(t, wrapped, ErrInsufficientLiquidityData)
}
