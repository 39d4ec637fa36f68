package quote

import (
	"math/big"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayswap/pkg"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/pool/clmm"
)

func standardPool() *amm.ReserveState {
	return &amm.ReserveState{
		PoolID:         solana.NewWallet().PublicKey(),
		BaseMint:       solana.NewWallet().PublicKey(),
		QuoteMint:      solana.NewWallet().PublicKey(),
		ReserveBase:    1_000_000,
		ReserveQuote:   500_000,
		FeeNumerator:   3,
		FeeDenominator: 1000,
	}
}

func concentratedPool() *clmm.TickState {
	return &clmm.TickState{
		TokenMint0:              solana.NewWallet().PublicKey(),
		TokenMint1:              solana.NewWallet().PublicKey(),
		TickSpacing:             10,
		TradeFeeRate:            2500,
		SqrtPriceX64:            new(big.Int).Lsh(big.NewInt(1), 64),
		TickCurrent:             0,
		Liquidity:               new(big.Int).SetUint64(1_000_000_000_000_000_000),
		MinLoadedTick:           -600,
		MaxLoadedTick:           599,
		LoadedArrayStartIndexes: []int32{0, -600},
	}
}

func TestComputeStandard(t *testing.T) {
	state := standardPool()

	q, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeStandard, Standard: state},
		InputMint:   state.BaseMint,
		AmountIn:    1000,
		SlippageBps: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, state.BaseMint, q.InputMint)
	assert.Equal(t, state.QuoteMint, q.OutputMint)
	assert.Equal(t, uint64(1000), q.AmountIn)
	assert.Equal(t, uint64(498), q.AmountOut)
	assert.Equal(t, uint64(495), q.MinAmountOut)
	assert.Equal(t, uint64(3), q.FeeAmount)
	assert.Equal(t, uint32(40), q.PriceImpactBps) // ideal 500, realized 498
}

func TestComputeStandardReverse(t *testing.T) {
	state := standardPool()

	q, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeStandard, Standard: state},
		InputMint:   state.QuoteMint,
		AmountIn:    1000,
		SlippageBps: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, state.BaseMint, q.OutputMint)
	assert.Equal(t, q.AmountOut, q.MinAmountOut)
}

func TestComputeConcentrated(t *testing.T) {
	state := concentratedPool()

	q, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeConcentrated, Concentrated: state},
		InputMint:   state.TokenMint0,
		AmountIn:    1_000_000,
		SlippageBps: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, state.TokenMint1, q.OutputMint)
	assert.Positive(t, q.AmountOut)
	assert.Positive(t, q.FeeAmount)
	assert.LessOrEqual(t, q.MinAmountOut, q.AmountOut)
}

func TestComputeConcentratedInsufficientWindow(t *testing.T) {
	state := concentratedPool()
	state.Liquidity = new(big.Int).SetUint64(1_000)

	_, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeConcentrated, Concentrated: state},
		InputMint:   state.TokenMint0,
		AmountIn:    1_000_000_000_000,
		SlippageBps: 50,
	})
	assert.ErrorIs(t, err, pkg.ErrInsufficientLiquidityData)
}

func TestComputeUnsupportedMint(t *testing.T) {
	state := standardPool()

	_, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeStandard, Standard: state},
		InputMint:   solana.NewWallet().PublicKey(),
		AmountIn:    1000,
		SlippageBps: 50,
	})
	assert.ErrorIs(t, err, pkg.ErrUnsupportedMintPair)
}

func TestComputeInvalidSlippage(t *testing.T) {
	state := standardPool()

	_, err := Compute(Request{
		Pool:        PoolState{Type: pkg.PoolTypeStandard, Standard: state},
		InputMint:   state.BaseMint,
		AmountIn:    1000,
		SlippageBps: 10000,
	})
	assert.ErrorIs(t, err, pkg.ErrInvalidSlippage)
}

func TestComputeNilState(t *testing.T) {
	_, err := Compute(Request{
		Pool:      PoolState{Type: pkg.PoolTypeStandard},
		InputMint: solana.NewWallet().PublicKey(),
		AmountIn:  1000,
	})
	assert.Error(t, err)

	_, err = Compute(Request{
		Pool:      PoolState{Type: pkg.PoolTypeConcentrated},
		InputMint: solana.NewWallet().PublicKey(),
		AmountIn:  1000,
	})
	assert.Error(t, err)
}

func TestAmountWithSlippage(t *testing.T) {
	// Widening ceils, shrinking floors.
	maxIn, err := AmountWithSlippage(1000, 50, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(1005), maxIn)

	minOut, err := AmountWithSlippage(999, 50, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(994), minOut)

	same, err := AmountWithSlippage(1000, 0, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), same)

	_, err = AmountWithSlippage(1000, 10000, false)
	assert.ErrorIs(t, err, pkg.ErrInvalidSlippage)
}

func TestExecutionPrice(t *testing.T) {
	q := &Quote{AmountIn: 1_000_000_000, AmountOut: 150_000_000}

	// 1 SOL (9 decimals) for 150 USDC (6 decimals).
	assert.InDelta(t, 150.0, q.ExecutionPrice(9, 6), 1e-9)

	empty := &Quote{}
	assert.Zero(t, empty.ExecutionPrice(9, 6))
}

func TestPriceImpactBps(t *testing.T) {
	assert.Equal(t, uint32(40), priceImpactBps(500, 498))
	assert.Equal(t, uint32(0), priceImpactBps(500, 500))
	assert.Equal(t, uint32(0), priceImpactBps(0, 100))
	assert.Equal(t, uint32(10000), priceImpactBps(500, 0))
}
