package clmm

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayswap/pkg"
)

// testTickState builds a snapshot priced at tick 0 with one loaded array on
// each side of the current price.
func testTickState(liquidity *big.Int, ticks []Tick) *TickState {
	return &TickState{
		TickSpacing:             10,
		TradeFeeRate:            2500,
		SqrtPriceX64:            new(big.Int).Lsh(big.NewInt(1), 64),
		TickCurrent:             0,
		Liquidity:               liquidity,
		Ticks:                   ticks,
		MinLoadedTick:           -600,
		MaxLoadedTick:           599,
		LoadedArrayStartIndexes: []int32{0, -600},
	}
}

func TestComputeAmountOutZeroInput(t *testing.T) {
	state := testTickState(new(big.Int).SetUint64(1_000_000_000), nil)

	out, fee, err := state.ComputeAmountOut(0, true)
	require.NoError(t, err)
	assert.Zero(t, out)
	assert.Zero(t, fee)
}

func TestComputeAmountOutMidSegment(t *testing.T) {
	liquidity := new(big.Int).SetUint64(1_000_000_000_000_000_000)
	state := testTickState(liquidity, nil)

	out, fee, err := state.ComputeAmountOut(1_000_000, true)
	require.NoError(t, err)

	assert.Positive(t, out)
	assert.Less(t, out, uint64(1_000_000))
	assert.Positive(t, fee)

	// Around price 1 the output approaches the fee-reduced input.
	assert.Greater(t, out, uint64(990_000))
}

func TestComputeAmountOutBothDirections(t *testing.T) {
	liquidity := new(big.Int).SetUint64(1_000_000_000_000_000_000)
	state := testTickState(liquidity, nil)

	down, _, err := state.ComputeAmountOut(1_000_000, true)
	require.NoError(t, err)
	up, _, err := state.ComputeAmountOut(1_000_000, false)
	require.NoError(t, err)

	assert.Positive(t, down)
	assert.Positive(t, up)
}

func TestComputeAmountOutCrossesTick(t *testing.T) {
	liquidity := new(big.Int).SetUint64(1_000_000_000_000_000)
	ticks := []Tick{
		{Index: -10, LiquidityNet: new(big.Int).SetUint64(500_000_000_000_000)},
	}
	state := testTickState(liquidity, ticks)

	// Large enough to drain the segment above tick -10 and keep going with
	// the reduced liquidity below it.
	out, fee, err := state.ComputeAmountOut(1_000_000_000_000, true)
	require.NoError(t, err)
	assert.Positive(t, out)
	assert.Positive(t, fee)

	// A smaller swap that stays inside the first segment pays a better
	// average price.
	smallOut, _, err := state.ComputeAmountOut(100_000_000, true)
	require.NoError(t, err)
	assert.Positive(t, smallOut)
	assert.Greater(t, float64(smallOut)/100_000_000.0, float64(out)/1_000_000_000_000.0)
}

func TestComputeAmountOutInsufficientWindow(t *testing.T) {
	liquidity := new(big.Int).SetUint64(1_000_000_000)
	state := testTickState(liquidity, nil)

	// Far more input than the loaded window can absorb.
	_, _, err := state.ComputeAmountOut(1_000_000_000_000_000_000, true)
	assert.ErrorIs(t, err, pkg.ErrInsufficientLiquidityData)
}

func TestComputeAmountOutNoLiquidity(t *testing.T) {
	state := testTickState(big.NewInt(0), nil)

	_, _, err := state.ComputeAmountOut(1_000_000, true)
	assert.ErrorIs(t, err, pkg.ErrInsufficientLiquidityData)
}

func TestComputeAmountOutZeroPrice(t *testing.T) {
	state := testTickState(big.NewInt(1), nil)
	state.SqrtPriceX64 = big.NewInt(0)

	_, _, err := state.ComputeAmountOut(1_000_000, true)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, pkg.ErrInsufficientLiquidityData)
}

func TestIdealAmountOutAtParity(t *testing.T) {
	state := testTickState(new(big.Int).SetUint64(1_000_000_000), nil)

	// At sqrtPrice 2^64 the marginal price is exactly 1.
	assert.Equal(t, uint64(1_000_000), state.IdealAmountOut(1_000_000, true))
	assert.Equal(t, uint64(1_000_000), state.IdealAmountOut(1_000_000, false))
	assert.Zero(t, state.IdealAmountOut(0, true))
}

func TestNextInitializedTick(t *testing.T) {
	state := testTickState(big.NewInt(1), []Tick{
		{Index: -100, LiquidityNet: big.NewInt(1)},
		{Index: 50, LiquidityNet: big.NewInt(-1)},
	})

	next, ok := state.nextInitializedTick(0, true)
	assert.True(t, ok)
	assert.Equal(t, int32(-100), next)

	next, ok = state.nextInitializedTick(0, false)
	assert.True(t, ok)
	assert.Equal(t, int32(50), next)

	// Moving down, a boundary at the current tick still counts.
	next, ok = state.nextInitializedTick(-100, true)
	assert.True(t, ok)
	assert.Equal(t, int32(-100), next)

	// Moving up it must be strictly above.
	_, ok = state.nextInitializedTick(50, false)
	assert.False(t, ok)
}
