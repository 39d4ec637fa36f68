// Package quote prices exact-input swaps against pool state snapshots. It is
// pure: no I/O, no mutation of the snapshots, safe for concurrent use.
package quote

import (
	"fmt"
	"math"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/pool/clmm"
)

const bpsDenominator = 10000

// PoolState is the closed set of pool snapshots the engine can price.
// Exactly one of the pointers is set, selected by Type.
type PoolState struct {
	Type         pkg.PoolType
	Standard     *amm.ReserveState
	Concentrated *clmm.TickState
}

// Request is one exact-input pricing request. InputMint selects the swap
// direction and must be one of the pool's two mints.
type Request struct {
	Pool        PoolState
	InputMint   solana.PublicKey
	AmountIn    uint64
	SlippageBps uint16
}

// Quote is the result of pricing a request. All amounts are in native token
// units of the respective mint.
type Quote struct {
	InputMint      solana.PublicKey
	OutputMint     solana.PublicKey
	AmountIn       uint64
	AmountOut      uint64
	MinAmountOut   uint64
	FeeAmount      uint64
	PriceImpactBps uint32
}

// ExecutionPrice is the realized output-per-input price of the quote,
// adjusted for mint decimals. Zero when nothing was traded.
func (q *Quote) ExecutionPrice(inputDecimals, outputDecimals uint8) float64 {
	if q.AmountIn == 0 {
		return 0
	}
	ratio := float64(q.AmountOut) / float64(q.AmountIn)
	return ratio * math.Pow10(int(inputDecimals)-int(outputDecimals))
}

// Compute prices the request against the pool snapshot. The concentrated
// path returns pkg.ErrInsufficientLiquidityData when the input cannot be
// filled inside the loaded tick window.
func Compute(req Request) (*Quote, error) {
	if req.SlippageBps >= bpsDenominator {
		return nil, pkg.ErrInvalidSlippage
	}

	var (
		outputMint      solana.PublicKey
		amountOut, fee  uint64
		idealOut        uint64
		err             error
	)

	switch req.Pool.Type {
	case pkg.PoolTypeStandard:
		state := req.Pool.Standard
		if state == nil {
			return nil, fmt.Errorf("standard pool state is nil")
		}
		var baseIn bool
		switch req.InputMint {
		case state.BaseMint:
			baseIn = true
			outputMint = state.QuoteMint
		case state.QuoteMint:
			baseIn = false
			outputMint = state.BaseMint
		default:
			return nil, pkg.ErrUnsupportedMintPair
		}
		amountOut, fee = state.ComputeAmountOut(req.AmountIn, baseIn)
		idealOut = state.IdealAmountOut(req.AmountIn, baseIn)

	case pkg.PoolTypeConcentrated:
		state := req.Pool.Concentrated
		if state == nil {
			return nil, fmt.Errorf("concentrated pool state is nil")
		}
		var zeroForOne bool
		switch req.InputMint {
		case state.TokenMint0:
			zeroForOne = true
			outputMint = state.TokenMint1
		case state.TokenMint1:
			zeroForOne = false
			outputMint = state.TokenMint0
		default:
			return nil, pkg.ErrUnsupportedMintPair
		}
		amountOut, fee, err = state.ComputeAmountOut(req.AmountIn, zeroForOne)
		if err != nil {
			return nil, err
		}
		idealOut = state.IdealAmountOut(req.AmountIn, zeroForOne)

	default:
		return nil, fmt.Errorf("unknown pool type %d", req.Pool.Type)
	}

	minOut, err := AmountWithSlippage(amountOut, req.SlippageBps, false)
	if err != nil {
		return nil, err
	}

	return &Quote{
		InputMint:      req.InputMint,
		OutputMint:     outputMint,
		AmountIn:       req.AmountIn,
		AmountOut:      amountOut,
		MinAmountOut:   minOut,
		FeeAmount:      fee,
		PriceImpactBps: priceImpactBps(idealOut, amountOut),
	}, nil
}

// AmountWithSlippage adjusts an amount by a basis-point tolerance. roundUp
// widens the amount (maximum input), otherwise it shrinks it (minimum
// output); the shrinking direction floors, the widening direction ceils.
func AmountWithSlippage(amount uint64, slippageBps uint16, roundUp bool) (uint64, error) {
	if slippageBps >= bpsDenominator {
		return 0, pkg.ErrInvalidSlippage
	}

	value := cosmath.NewIntFromUint64(amount)
	denominator := cosmath.NewInt(bpsDenominator)

	if roundUp {
		numerator := value.Mul(cosmath.NewInt(bpsDenominator + int64(slippageBps)))
		adjusted := numerator.Add(denominator.SubRaw(1)).Quo(denominator)
		if !adjusted.IsUint64() {
			return 0, fmt.Errorf("slippage-adjusted amount overflows u64")
		}
		return adjusted.Uint64(), nil
	}

	numerator := value.Mul(cosmath.NewInt(bpsDenominator - int64(slippageBps)))
	return numerator.Quo(denominator).Uint64(), nil
}

// priceImpactBps measures how far the realized output falls below the
// zero-impact reference, in basis points, capped at 100%.
func priceImpactBps(idealOut, amountOut uint64) uint32 {
	if idealOut == 0 || amountOut >= idealOut {
		return 0
	}

	shortfall := cosmath.NewIntFromUint64(idealOut - amountOut)
	impact := shortfall.MulRaw(bpsDenominator).Quo(cosmath.NewIntFromUint64(idealOut))
	if !impact.IsUint64() || impact.Uint64() > bpsDenominator {
		return bpsDenominator
	}
	return uint32(impact.Uint64())
}
