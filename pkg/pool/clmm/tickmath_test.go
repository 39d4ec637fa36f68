package clmm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad big int literal %q", s)
	return v
}

func TestGetSqrtPriceAtTick(t *testing.T) {
	cases := []struct {
		tick int32
		want string
	}{
		{0, "18446744073709551616"}, // exactly 2^64
		{1, "18447666387855957090"},
		{-1, "18445821805675395072"},
		{10, "18455969290605287889"},
		{MinTick, "4295048016"},
		{MaxTick, "79226673521066979257578248091"},
	}

	for _, tc := range cases {
		got, err := GetSqrtPriceAtTick(tc.tick)
		require.NoError(t, err, "tick %d", tc.tick)
		assert.Equal(t, mustBig(t, tc.want), got, "tick %d", tc.tick)
	}

	// The range endpoints match the program's hard price limits.
	minPrice, err := GetSqrtPriceAtTick(MinTick)
	require.NoError(t, err)
	assert.Equal(t, MinSqrtPriceX64.BigInt(), minPrice)
	maxPrice, err := GetSqrtPriceAtTick(MaxTick)
	require.NoError(t, err)
	assert.Equal(t, MaxSqrtPriceX64.BigInt(), maxPrice)
}

func TestGetSqrtPriceAtTickOutOfRange(t *testing.T) {
	_, err := GetSqrtPriceAtTick(MinTick - 1)
	assert.Error(t, err)
	_, err = GetSqrtPriceAtTick(MaxTick + 1)
	assert.Error(t, err)
}

func TestGetSqrtPriceAtTickMonotonic(t *testing.T) {
	prev, err := GetSqrtPriceAtTick(-1000)
	require.NoError(t, err)
	for tick := int32(-900); tick <= 1000; tick += 100 {
		price, err := GetSqrtPriceAtTick(tick)
		require.NoError(t, err)
		assert.Equal(t, 1, price.Cmp(prev), "tick %d", tick)
		prev = price
	}
}

func TestGetArrayStartIndex(t *testing.T) {
	cases := []struct {
		tick    int32
		spacing uint16
		want    int32
	}{
		{5, 10, 0},
		{-5, 10, -600},
		{600, 10, 600},
		{599, 10, 0},
		{-600, 10, -600},
		{-601, 10, -1200},
		{0, 1, 0},
		{-1, 1, -60},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, GetArrayStartIndex(tc.tick, tc.spacing),
			"tick %d spacing %d", tc.tick, tc.spacing)
	}
}

func TestTicksInArray(t *testing.T) {
	assert.Equal(t, int32(60), TicksInArray(1))
	assert.Equal(t, int32(600), TicksInArray(10))
	assert.Equal(t, int32(3600), TicksInArray(60))
}
