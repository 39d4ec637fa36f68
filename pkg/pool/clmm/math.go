package clmm

import (
	"fmt"
	"math/big"
)

var bigOne = big.NewInt(1)

func mulDivFloor(a, b, denominator *big.Int) *big.Int {
	numerator := new(big.Int).Mul(a, b)
	return numerator.Div(numerator, denominator)
}

func mulDivCeil(a, b, denominator *big.Int) *big.Int {
	numerator := new(big.Int).Mul(a, b)
	numerator.Add(numerator, new(big.Int).Sub(denominator, bigOne))
	return numerator.Div(numerator, denominator)
}

func divRoundingUp(a, denominator *big.Int) *big.Int {
	quotient, remainder := new(big.Int).QuoRem(a, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, bigOne)
	}
	return quotient
}

// getTokenAmount0 returns the amount of token0 held between two sqrt prices
// at the given liquidity: L * (sqrtB - sqrtA) / (sqrtA * sqrtB).
func getTokenAmount0(sqrtPriceAX64, sqrtPriceBX64, liquidity *big.Int, roundUp bool) *big.Int {
	priceA, priceB := sqrtPriceAX64, sqrtPriceBX64
	if priceA.Cmp(priceB) > 0 {
		priceA, priceB = priceB, priceA
	}

	numerator1 := new(big.Int).Lsh(liquidity, U64Resolution)
	numerator2 := new(big.Int).Sub(priceB, priceA)

	if roundUp {
		return divRoundingUp(mulDivCeil(numerator1, numerator2, priceB), priceA)
	}
	return new(big.Int).Div(mulDivFloor(numerator1, numerator2, priceB), priceA)
}

// getTokenAmount1 returns the amount of token1 held between two sqrt prices
// at the given liquidity: L * (sqrtB - sqrtA).
func getTokenAmount1(sqrtPriceAX64, sqrtPriceBX64, liquidity *big.Int, roundUp bool) *big.Int {
	priceA, priceB := sqrtPriceAX64, sqrtPriceBX64
	if priceA.Cmp(priceB) > 0 {
		priceA, priceB = priceB, priceA
	}

	priceDiff := new(big.Int).Sub(priceB, priceA)
	if roundUp {
		return mulDivCeil(liquidity, priceDiff, oneX64)
	}
	return mulDivFloor(liquidity, priceDiff, oneX64)
}

func getNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX64, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	if amount.Sign() == 0 {
		return new(big.Int).Set(sqrtPriceX64), nil
	}

	liquidityShifted := new(big.Int).Lsh(liquidity, U64Resolution)

	if add {
		denominator := new(big.Int).Add(liquidityShifted, new(big.Int).Mul(amount, sqrtPriceX64))
		if denominator.Cmp(liquidityShifted) >= 0 {
			return mulDivCeil(liquidityShifted, sqrtPriceX64, denominator), nil
		}
		temp := new(big.Int).Div(liquidityShifted, sqrtPriceX64)
		temp.Add(temp, amount)
		return divRoundingUp(liquidityShifted, temp), nil
	}

	amountMulPrice := new(big.Int).Mul(amount, sqrtPriceX64)
	if liquidityShifted.Cmp(amountMulPrice) <= 0 {
		return nil, fmt.Errorf("insufficient liquidity for requested token0 output")
	}
	denominator := new(big.Int).Sub(liquidityShifted, amountMulPrice)
	return mulDivCeil(liquidityShifted, sqrtPriceX64, denominator), nil
}

func getNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX64, liquidity, amount *big.Int, add bool) (*big.Int, error) {
	delta := new(big.Int).Lsh(amount, U64Resolution)

	if add {
		return new(big.Int).Add(sqrtPriceX64, new(big.Int).Div(delta, liquidity)), nil
	}

	quotient := divRoundingUp(delta, liquidity)
	if sqrtPriceX64.Cmp(quotient) <= 0 {
		return nil, fmt.Errorf("insufficient liquidity for requested token1 output")
	}
	return new(big.Int).Sub(sqrtPriceX64, quotient), nil
}

func getNextSqrtPriceFromInput(sqrtPriceX64, liquidity, amountIn *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPriceX64.Sign() <= 0 {
		return nil, fmt.Errorf("sqrt price must be positive")
	}
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("liquidity must be positive")
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX64, liquidity, amountIn, true)
	}
	return getNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX64, liquidity, amountIn, true)
}

func getNextSqrtPriceFromOutput(sqrtPriceX64, liquidity, amountOut *big.Int, zeroForOne bool) (*big.Int, error) {
	if sqrtPriceX64.Sign() <= 0 {
		return nil, fmt.Errorf("sqrt price must be positive")
	}
	if liquidity.Sign() <= 0 {
		return nil, fmt.Errorf("liquidity must be positive")
	}

	if zeroForOne {
		return getNextSqrtPriceFromAmount1RoundingDown(sqrtPriceX64, liquidity, amountOut, false)
	}
	return getNextSqrtPriceFromAmount0RoundingUp(sqrtPriceX64, liquidity, amountOut, false)
}

// swapStep is the outcome of swapping within one constant-liquidity segment.
type swapStep struct {
	sqrtPriceNextX64 *big.Int
	amountIn         *big.Int
	amountOut        *big.Int
	feeAmount        *big.Int
}

// computeSwapStep swaps as much of amountRemaining as the segment between
// the current and target sqrt price allows. In base-input mode the fee is
// deducted from the remaining input before the bounded amount is computed,
// matching the on-chain per-segment accounting.
func computeSwapStep(
	sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, amountRemaining *big.Int,
	feeRate uint32,
	baseInput, zeroForOne bool,
) (swapStep, error) {
	step := swapStep{
		sqrtPriceNextX64: new(big.Int),
		amountIn:         new(big.Int),
		amountOut:        new(big.Int),
		feeAmount:        new(big.Int),
	}

	// A zero-liquidity segment trades nothing and the price jumps to the
	// target.
	if liquidity.Sign() == 0 {
		step.sqrtPriceNextX64.Set(sqrtPriceTargetX64)
		return step, nil
	}

	feeRateBig := new(big.Int).SetUint64(uint64(feeRate))
	feeDenominator := FeeRateDenominator.BigInt()
	feeComplement := new(big.Int).Sub(feeDenominator, feeRateBig)

	if baseInput {
		amountRemainingSubtractFee := mulDivFloor(amountRemaining, feeComplement, feeDenominator)

		if zeroForOne {
			step.amountIn = getTokenAmount0(sqrtPriceTargetX64, sqrtPriceCurrentX64, liquidity, true)
		} else {
			step.amountIn = getTokenAmount1(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, true)
		}

		if amountRemainingSubtractFee.Cmp(step.amountIn) >= 0 {
			step.sqrtPriceNextX64.Set(sqrtPriceTargetX64)
		} else {
			next, err := getNextSqrtPriceFromInput(sqrtPriceCurrentX64, liquidity, amountRemainingSubtractFee, zeroForOne)
			if err != nil {
				return swapStep{}, err
			}
			step.sqrtPriceNextX64 = next
		}
	} else {
		if zeroForOne {
			step.amountOut = getTokenAmount1(sqrtPriceTargetX64, sqrtPriceCurrentX64, liquidity, false)
		} else {
			step.amountOut = getTokenAmount0(sqrtPriceCurrentX64, sqrtPriceTargetX64, liquidity, false)
		}

		if amountRemaining.Cmp(step.amountOut) >= 0 {
			step.sqrtPriceNextX64.Set(sqrtPriceTargetX64)
		} else {
			next, err := getNextSqrtPriceFromOutput(sqrtPriceCurrentX64, liquidity, amountRemaining, zeroForOne)
			if err != nil {
				return swapStep{}, err
			}
			step.sqrtPriceNextX64 = next
		}
	}

	reachTargetPrice := step.sqrtPriceNextX64.Cmp(sqrtPriceTargetX64) == 0

	if zeroForOne {
		if !(reachTargetPrice && baseInput) {
			step.amountIn = getTokenAmount0(step.sqrtPriceNextX64, sqrtPriceCurrentX64, liquidity, true)
		}
		if !(reachTargetPrice && !baseInput) {
			step.amountOut = getTokenAmount1(step.sqrtPriceNextX64, sqrtPriceCurrentX64, liquidity, false)
		}
	} else {
		if !(reachTargetPrice && baseInput) {
			step.amountIn = getTokenAmount1(sqrtPriceCurrentX64, step.sqrtPriceNextX64, liquidity, true)
		}
		if !(reachTargetPrice && !baseInput) {
			step.amountOut = getTokenAmount0(sqrtPriceCurrentX64, step.sqrtPriceNextX64, liquidity, false)
		}
	}

	if baseInput && !reachTargetPrice {
		step.feeAmount = new(big.Int).Sub(amountRemaining, step.amountIn)
	} else {
		step.feeAmount = mulDivCeil(step.amountIn, feeRateBig, feeComplement)
	}

	return step, nil
}
