package clmm

import (
	"fmt"
	"math/big"

	"rayswap/pkg"
)

const maxSwapLoops = 64

// ComputeAmountOut simulates an exact-input swap across the loaded tick
// window. zeroForOne trades token0 for token1. The walk applies the trade
// fee per constant-liquidity segment and updates liquidity at every crossed
// initialized tick. If the input is not fully consumed inside the loaded
// window the result is pkg.ErrInsufficientLiquidityData, never an
// extrapolated number.
func (s *TickState) ComputeAmountOut(amountIn uint64, zeroForOne bool) (amountOut, feeAmount uint64, err error) {
	if amountIn == 0 {
		return 0, 0, nil
	}
	if s.SqrtPriceX64 == nil || s.SqrtPriceX64.Sign() == 0 {
		return 0, 0, fmt.Errorf("pool has zero sqrt price")
	}

	var sqrtPriceLimit *big.Int
	if zeroForOne {
		sqrtPriceLimit = new(big.Int).Add(MinSqrtPriceX64.BigInt(), bigOne)
	} else {
		sqrtPriceLimit = new(big.Int).Sub(MaxSqrtPriceX64.BigInt(), bigOne)
	}

	remaining := new(big.Int).SetUint64(amountIn)
	out := new(big.Int)
	fees := new(big.Int)

	sqrtPrice := new(big.Int).Set(s.SqrtPriceX64)
	liquidity := new(big.Int).Set(s.Liquidity)
	tick := s.TickCurrent

	for loops := 0; remaining.Sign() > 0 && sqrtPrice.Cmp(sqrtPriceLimit) != 0 && tick < MaxTick && tick > MinTick; loops++ {
		if loops >= maxSwapLoops {
			return 0, 0, fmt.Errorf("tick walk exceeded %d segments", maxSwapLoops)
		}

		nextTick, initialized := s.nextInitializedTick(tick, zeroForOne)
		if !initialized {
			// No more initialized ticks in the loaded window: the walk may
			// proceed to the window edge, no further.
			if zeroForOne {
				nextTick = s.MinLoadedTick
			} else {
				nextTick = s.MaxLoadedTick
			}
		}
		if nextTick < MinTick {
			nextTick = MinTick
		} else if nextTick > MaxTick {
			nextTick = MaxTick
		}

		sqrtPriceNext, err := GetSqrtPriceAtTick(nextTick)
		if err != nil {
			return 0, 0, err
		}

		targetPrice := sqrtPriceNext
		if (zeroForOne && sqrtPriceNext.Cmp(sqrtPriceLimit) < 0) ||
			(!zeroForOne && sqrtPriceNext.Cmp(sqrtPriceLimit) > 0) {
			targetPrice = sqrtPriceLimit
		}

		step, err := computeSwapStep(sqrtPrice, targetPrice, liquidity, remaining, s.TradeFeeRate, true, zeroForOne)
		if err != nil {
			return 0, 0, err
		}

		sqrtPrice = step.sqrtPriceNextX64
		remaining.Sub(remaining, new(big.Int).Add(step.amountIn, step.feeAmount))
		out.Add(out, step.amountOut)
		fees.Add(fees, step.feeAmount)

		if sqrtPrice.Cmp(sqrtPriceNext) == 0 {
			// Reached the segment boundary.
			if initialized {
				net := s.tickLiquidityNet(nextTick)
				if zeroForOne {
					net = new(big.Int).Neg(net)
				}
				liquidity.Add(liquidity, net)
				if liquidity.Sign() < 0 {
					return 0, 0, fmt.Errorf("liquidity underflow crossing tick %d", nextTick)
				}
			} else if remaining.Sign() > 0 && nextTick != MinTick && nextTick != MaxTick {
				// Input left over at the edge of the loaded window.
				return 0, 0, pkg.ErrInsufficientLiquidityData
			}

			if zeroForOne {
				tick = nextTick - 1
			} else {
				tick = nextTick
			}
		} else {
			// Input consumed mid-segment.
			break
		}
	}

	if remaining.Sign() > 0 && tick > MinTick && tick < MaxTick && sqrtPrice.Cmp(sqrtPriceLimit) != 0 {
		return 0, 0, pkg.ErrInsufficientLiquidityData
	}

	if !out.IsUint64() || !fees.IsUint64() {
		return 0, 0, fmt.Errorf("swap result overflows u64")
	}
	return out.Uint64(), fees.Uint64(), nil
}

// IdealAmountOut prices amountIn at the pre-trade marginal price implied by
// the current sqrt price, the zero-impact reference for price impact.
func (s *TickState) IdealAmountOut(amountIn uint64, zeroForOne bool) uint64 {
	if amountIn == 0 || s.SqrtPriceX64 == nil || s.SqrtPriceX64.Sign() == 0 {
		return 0
	}

	amount := new(big.Int).SetUint64(amountIn)
	priceSquared := new(big.Int).Mul(s.SqrtPriceX64, s.SqrtPriceX64)

	var ideal *big.Int
	if zeroForOne {
		// out = in * sqrtP^2 / 2^128
		ideal = new(big.Int).Mul(amount, priceSquared)
		ideal.Rsh(ideal, 128)
	} else {
		// out = in * 2^128 / sqrtP^2
		ideal = new(big.Int).Lsh(amount, 128)
		ideal.Div(ideal, priceSquared)
	}

	if !ideal.IsUint64() {
		return ^uint64(0)
	}
	return ideal.Uint64()
}

// nextInitializedTick finds the next initialized tick boundary in the walk
// direction. Moving down (zeroForOne) the boundary at the current tick
// itself still counts; moving up it must be strictly above.
func (s *TickState) nextInitializedTick(tick int32, zeroForOne bool) (int32, bool) {
	if zeroForOne {
		for i := len(s.Ticks) - 1; i >= 0; i-- {
			if s.Ticks[i].Index <= tick {
				return s.Ticks[i].Index, true
			}
		}
	} else {
		for i := 0; i < len(s.Ticks); i++ {
			if s.Ticks[i].Index > tick {
				return s.Ticks[i].Index, true
			}
		}
	}
	return 0, false
}

func (s *TickState) tickLiquidityNet(tick int32) *big.Int {
	for i := range s.Ticks {
		if s.Ticks[i].Index == tick {
			return s.Ticks[i].LiquidityNet
		}
	}
	return new(big.Int)
}
