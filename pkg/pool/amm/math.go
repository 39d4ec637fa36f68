package amm

import (
	cosmath "cosmossdk.io/math"
)

// ComputeAmountOut prices amountIn against the constant-product curve.
// baseIn selects the direction: true swaps base for quote. The fee is taken
// from the input before the invariant division; every division floors,
// matching the on-chain program.
func (s *ReserveState) ComputeAmountOut(amountIn uint64, baseIn bool) (amountOut, fee uint64) {
	if amountIn == 0 {
		return 0, 0
	}

	var reserveIn, reserveOut cosmath.Int
	if baseIn {
		reserveIn = cosmath.NewIntFromUint64(s.ReserveBase)
		reserveOut = cosmath.NewIntFromUint64(s.ReserveQuote)
	} else {
		reserveIn = cosmath.NewIntFromUint64(s.ReserveQuote)
		reserveOut = cosmath.NewIntFromUint64(s.ReserveBase)
	}

	if reserveIn.IsZero() || reserveOut.IsZero() {
		return 0, 0
	}

	amount := cosmath.NewIntFromUint64(amountIn)
	feeNumerator := cosmath.NewIntFromUint64(s.FeeNumerator)
	feeDenominator := cosmath.NewIntFromUint64(s.FeeDenominator)

	feeAmount := amount.Mul(feeNumerator).Quo(feeDenominator)
	amountInWithFee := amount.Sub(feeAmount)

	// amountOut = reserveOut * amountInWithFee / (reserveIn + amountInWithFee)
	denominator := reserveIn.Add(amountInWithFee)
	out := reserveOut.Mul(amountInWithFee).Quo(denominator)

	return out.Uint64(), feeAmount.Uint64()
}

// IdealAmountOut prices amountIn at the pre-trade marginal price
// reserveOut/reserveIn, the zero-impact reference used for price impact.
func (s *ReserveState) IdealAmountOut(amountIn uint64, baseIn bool) uint64 {
	if amountIn == 0 {
		return 0
	}

	var reserveIn, reserveOut cosmath.Int
	if baseIn {
		reserveIn = cosmath.NewIntFromUint64(s.ReserveBase)
		reserveOut = cosmath.NewIntFromUint64(s.ReserveQuote)
	} else {
		reserveIn = cosmath.NewIntFromUint64(s.ReserveQuote)
		reserveOut = cosmath.NewIntFromUint64(s.ReserveBase)
	}

	if reserveIn.IsZero() {
		return 0
	}

	return cosmath.NewIntFromUint64(amountIn).Mul(reserveOut).Quo(reserveIn).Uint64()
}
