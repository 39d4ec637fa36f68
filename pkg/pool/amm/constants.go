package amm

import (
	cosmath "cosmossdk.io/math"
	"github.com/gagliardetto/solana-go"
)

// Program IDs
var (
	// Raydium AMM v4 Program ID
	AmmV4ProgramID = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
)

// Account sizes
const (
	// LiquidityStateV4 account size (no discriminator, raw layout)
	LiquidityStateV4Size = 752

	// SPL token account size
	TokenAccountSize = 165

	// Token account balance offset (mint 32 + owner 32)
	TokenAccountAmountOffset = 64
)

// Instruction tags
const (
	// SwapBaseIn instruction tag in the AMM v4 program
	SwapBaseInTag = 9
)

// Default swap fee (0.25%)
var (
	LiquidityFeesNumerator   = cosmath.NewInt(25)
	LiquidityFeesDenominator = cosmath.NewInt(10000)
)
