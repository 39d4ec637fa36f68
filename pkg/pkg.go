package pkg

import "github.com/gagliardetto/solana-go"

// PoolType selects the liquidity model of a pool. The set is closed: every
// pool is either a constant-product (Standard) pool or a tick-based
// (Concentrated) pool, and the quote formula is dispatched exhaustively on
// this tag.
type PoolType uint8

const (
	PoolTypeStandard PoolType = iota
	PoolTypeConcentrated
)

func (t PoolType) String() string {
	switch t {
	case PoolTypeStandard:
		return "standard"
	case PoolTypeConcentrated:
		return "concentrated"
	default:
		return "unknown"
	}
}

// ParsePoolType maps the catalog's pool-type strings onto PoolType.
func ParsePoolType(s string) (PoolType, bool) {
	switch s {
	case "standard", "Standard":
		return PoolTypeStandard, true
	case "concentrated", "Concentrated":
		return PoolTypeConcentrated, true
	}
	return 0, false
}

// Well-known program and mint addresses.
var (
	// WSOLMint is the wrapped representation of native SOL.
	WSOLMint = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")

	TokenProgramID           = solana.MustPublicKeyFromBase58("TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA")
	Token2022ProgramID       = solana.MustPublicKeyFromBase58("TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb")
	AssociatedTokenProgramID = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	SystemProgramID          = solana.MustPublicKeyFromBase58("11111111111111111111111111111111")
	MemoProgramID            = solana.MustPublicKeyFromBase58("MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr")
	ComputeBudgetProgramID   = solana.MustPublicKeyFromBase58("ComputeBudget111111111111111111111111111111")
)
