package clmm

import (
	"math/big"

	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// Raydium CLMM Program ID
	ClmmProgramID = solana.MustPublicKeyFromBase58("CAMMCzo5YL8w4VFF8KVHrK22GGUsp5VTaW7grrKgrWqK")
)

// Tick configuration
const (
	TickArraySize = 60
	MaxTick       = 443636
	MinTick       = -443636
	U64Resolution = 64
)

// Account sizes
const (
	// PoolState account size (with discriminator)
	PoolStateSize = 1544

	// TickArrayState account size (with discriminator)
	TickArrayStateSize = 10240

	// Per-tick entry size inside a tick array
	TickStateSize = 168
)

// Seeds
const (
	TickArraySeed       = "tick_array"
	BitmapExtensionSeed = "pool_tick_array_bitmap_extension"
)

// Price limits (Q64.64)
var (
	MinSqrtPriceX64    = cosmath.NewIntFromBigInt(big.NewInt(4295048016))
	MaxSqrtPriceX64, _ = cosmath.NewIntFromString("79226673521066979257578248091")

	// Fee rates are expressed in parts per million
	FeeRateDenominator = cosmath.NewInt(1000000)
)

// Number of tick arrays loaded ahead of the current one per direction
const tickArrayFetchCount = 5
