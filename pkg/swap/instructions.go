package swap

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
)

// SPL token program instruction tags used by the wrap/unwrap flow.
const (
	tokenCloseAccountTag = 9
	tokenSyncNativeTag   = 17
)

// Compute budget program instruction tags.
const (
	computeUnitLimitTag = 2
	computeUnitPriceTag = 3
)

// System program transfer instruction index.
const systemTransferIndex = 2

// DeriveAssociatedTokenAddress derives the ATA of (owner, mint) under the
// given token program.
func DeriveAssociatedTokenAddress(owner, mint, tokenProgram solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{owner.Bytes(), tokenProgram.Bytes(), mint.Bytes()},
		pkg.AssociatedTokenProgramID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive associated token address: %w", err)
	}
	return addr, nil
}

// newCreateATAIdempotentInstruction creates the ATA of (owner, mint),
// succeeding as a no-op when it already exists.
//
// Account order (ATA program):
//
//	0. payer (signer, writable)
//	1. ata (writable)
//	2. owner
//	3. mint
//	4. system program
//	5. token program
func newCreateATAIdempotentInstruction(payer, ata, owner, mint, tokenProgram solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: payer, IsSigner: true, IsWritable: true},
		{PublicKey: ata, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: false, IsWritable: false},
		{PublicKey: mint, IsSigner: false, IsWritable: false},
		{PublicKey: pkg.SystemProgramID, IsSigner: false, IsWritable: false},
		{PublicKey: tokenProgram, IsSigner: false, IsWritable: false},
	}

	// 1 = CreateIdempotent
	return solana.NewInstruction(pkg.AssociatedTokenProgramID, accounts, []byte{1})
}

// newSystemTransferInstruction moves lamports between system accounts.
func newSystemTransferInstruction(from, to solana.PublicKey, lamports uint64) solana.Instruction {
	data := make([]byte, 4+8)
	binary.LittleEndian.PutUint32(data[0:4], systemTransferIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	accounts := []*solana.AccountMeta{
		{PublicKey: from, IsSigner: true, IsWritable: true},
		{PublicKey: to, IsSigner: false, IsWritable: true},
	}
	return solana.NewInstruction(pkg.SystemProgramID, accounts, data)
}

// newSyncNativeInstruction updates a wrapped-SOL token account's balance to
// match its lamports.
func newSyncNativeInstruction(nativeAccount solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: nativeAccount, IsSigner: false, IsWritable: true},
	}
	return solana.NewInstruction(pkg.TokenProgramID, accounts, []byte{tokenSyncNativeTag})
}

// newCloseAccountInstruction closes a token account, returning its lamports
// to destination.
func newCloseAccountInstruction(account, destination, owner solana.PublicKey) solana.Instruction {
	accounts := []*solana.AccountMeta{
		{PublicKey: account, IsSigner: false, IsWritable: true},
		{PublicKey: destination, IsSigner: false, IsWritable: true},
		{PublicKey: owner, IsSigner: true, IsWritable: false},
	}
	return solana.NewInstruction(pkg.TokenProgramID, accounts, []byte{tokenCloseAccountTag})
}

// newComputeUnitLimitInstruction caps the transaction's compute units.
func newComputeUnitLimitInstruction(units uint32) solana.Instruction {
	data := make([]byte, 5)
	data[0] = computeUnitLimitTag
	binary.LittleEndian.PutUint32(data[1:5], units)
	return solana.NewInstruction(pkg.ComputeBudgetProgramID, nil, data)
}

// newComputeUnitPriceInstruction sets the priority fee in micro-lamports per
// compute unit.
func newComputeUnitPriceInstruction(microLamports uint64) solana.Instruction {
	data := make([]byte, 9)
	data[0] = computeUnitPriceTag
	binary.LittleEndian.PutUint64(data[1:9], microLamports)
	return solana.NewInstruction(pkg.ComputeBudgetProgramID, nil, data)
}
