package clmm

import (
	"fmt"
	"math/big"
)

// Per-bit sqrt(1.0001) multipliers in Q64.64, one for each bit of the tick
// magnitude. These are the on-chain program's constants; reproducing the
// price bit-for-bit requires the same truncated 64-bit mul-shift chain.
var sqrtPriceMultipliers = []string{
	"fffcb933bd6fb800", // 2^0
	"fff97272373d4000", // 2^1
	"fff2e50f5f657000", // 2^2
	"ffe5caca7e10f000", // 2^3
	"ffcb9843d60f7000", // 2^4
	"ff973b41fa98e800", // 2^5
	"ff2ea16466c9b000", // 2^6
	"fe5dee046a9a3800", // 2^7
	"fcbe86c7900bb000", // 2^8
	"f987a7253ac65800", // 2^9
	"f3392b0822bb6000", // 2^10
	"e7159475a2caf000", // 2^11
	"d097f3bdfd2f2000", // 2^12
	"a9f746462d9f8000", // 2^13
	"70d869a156f31c00", // 2^14
	"31be135f97ed3200", // 2^15
	"9aa508b5b85a500",  // 2^16
	"5d6af8dedc582c",   // 2^17
	"2216e584f5fa",     // 2^18
}

var (
	bitPrecision = func() []*big.Int {
		out := make([]*big.Int, len(sqrtPriceMultipliers))
		for i, s := range sqrtPriceMultipliers {
			v, ok := new(big.Int).SetString(s, 16)
			if !ok {
				panic("invalid sqrt price multiplier: " + s)
			}
			out[i] = v
		}
		return out
	}()

	oneX64  = new(big.Int).Lsh(big.NewInt(1), 64)
	u128Max = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
)

// GetSqrtPriceAtTick returns sqrt(1.0001^tick) in Q64.64.
func GetSqrtPriceAtTick(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, fmt.Errorf("tick %d out of range [%d, %d]", tick, MinTick, MaxTick)
	}

	absTick := uint32(tick)
	if tick < 0 {
		absTick = uint32(-tick)
	}

	ratio := new(big.Int).Set(oneX64)
	if absTick&1 != 0 {
		ratio.Set(bitPrecision[0])
	}
	for bit := 1; bit < len(bitPrecision); bit++ {
		if absTick&(1<<uint(bit)) != 0 {
			ratio.Mul(ratio, bitPrecision[bit])
			ratio.Rsh(ratio, 64)
		}
	}

	if tick > 0 {
		ratio = new(big.Int).Div(u128Max, ratio)
	}

	return ratio, nil
}

// GetArrayStartIndex maps an arbitrary tick onto the start index of the
// tick array containing it, rounding towards negative infinity.
func GetArrayStartIndex(tick int32, tickSpacing uint16) int32 {
	ticksInArray := TickArraySize * int32(tickSpacing)
	start := tick / ticksInArray
	if tick < 0 && tick%ticksInArray != 0 {
		start--
	}
	return start * ticksInArray
}

// TicksInArray returns the tick span covered by one tick array.
func TicksInArray(tickSpacing uint16) int32 {
	return TickArraySize * int32(tickSpacing)
}
