package clmm

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/big"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"

	"rayswap/pkg"
	"rayswap/pkg/anchor"
)

// SwapAccounts collects the pool addresses referenced by a swap_v2
// instruction, ordered for the quoted direction.
type SwapAccounts struct {
	ProgramID       solana.PublicKey
	PoolID          solana.PublicKey
	AmmConfig       solana.PublicKey
	InputVault      solana.PublicKey
	OutputVault     solana.PublicKey
	InputVaultMint  solana.PublicKey
	OutputVaultMint solana.PublicKey
	ObservationKey  solana.PublicKey
	BitmapExtension solana.PublicKey
	TickArrays      []solana.PublicKey
}

// SwapV2Instruction is the CLMM exact-input swap with an on-chain
// minimum-output floor.
type SwapV2Instruction struct {
	bin.BaseVariant
	Amount               uint64
	OtherAmountThreshold uint64
	SqrtPriceLimitX64    uint128.Uint128
	IsBaseInput          bool
	programID            solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewSwapV2Instruction builds the swap_v2 instruction. The tick arrays the
// swap may cross ride along as remaining accounts after the fixed set.
//
// Account order:
//
//	0.  `[signer]`   Payer (token owner)
//	1.  `[]`         AMM config
//	2.  `[writable]` Pool state
//	3.  `[writable]` User input token account
//	4.  `[writable]` User output token account
//	5.  `[writable]` Input vault
//	6.  `[writable]` Output vault
//	7.  `[writable]` Observation state
//	8.  `[]`         SPL token program
//	9.  `[]`         Token-2022 program
//	10. `[]`         Memo program
//	11. `[]`         Input vault mint
//	12. `[]`         Output vault mint
//	13+ `[writable]` Bitmap extension, then tick arrays
func NewSwapV2Instruction(
	accounts SwapAccounts,
	userInput, userOutput, payer solana.PublicKey,
	amount, otherAmountThreshold uint64,
	sqrtPriceLimitX64 *big.Int,
	isBaseInput bool,
) *SwapV2Instruction {
	inst := &SwapV2Instruction{
		Amount:               amount,
		OtherAmountThreshold: otherAmountThreshold,
		SqrtPriceLimitX64:    uint128.FromBig(sqrtPriceLimitX64),
		IsBaseInput:          isBaseInput,
		programID:            accounts.ProgramID,
	}

	metas := solana.AccountMetaSlice{
		solana.NewAccountMeta(payer, false, true),
		solana.NewAccountMeta(accounts.AmmConfig, false, false),
		solana.NewAccountMeta(accounts.PoolID, true, false),
		solana.NewAccountMeta(userInput, true, false),
		solana.NewAccountMeta(userOutput, true, false),
		solana.NewAccountMeta(accounts.InputVault, true, false),
		solana.NewAccountMeta(accounts.OutputVault, true, false),
		solana.NewAccountMeta(accounts.ObservationKey, true, false),
		solana.NewAccountMeta(pkg.TokenProgramID, false, false),
		solana.NewAccountMeta(pkg.Token2022ProgramID, false, false),
		solana.NewAccountMeta(pkg.MemoProgramID, false, false),
		solana.NewAccountMeta(accounts.InputVaultMint, false, false),
		solana.NewAccountMeta(accounts.OutputVaultMint, false, false),
	}
	if !accounts.BitmapExtension.IsZero() {
		metas = append(metas, solana.NewAccountMeta(accounts.BitmapExtension, true, false))
	}
	for _, tickArray := range accounts.TickArrays {
		metas = append(metas, solana.NewAccountMeta(tickArray, true, false))
	}
	inst.AccountMetaSlice = metas

	return inst
}

func (inst *SwapV2Instruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *SwapV2Instruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *SwapV2Instruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)

	discriminator := anchor.GetDiscriminator("global", "swap_v2")
	if _, err := buf.Write(discriminator); err != nil {
		return nil, fmt.Errorf("failed to write discriminator: %w", err)
	}

	enc := bin.NewBorshEncoder(buf)
	if err := enc.WriteUint64(inst.Amount, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	if err := enc.WriteUint64(inst.OtherAmountThreshold, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode other amount threshold: %w", err)
	}
	if err := enc.WriteUint64(inst.SqrtPriceLimitX64.Lo, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode sqrt price limit: %w", err)
	}
	if err := enc.WriteUint64(inst.SqrtPriceLimitX64.Hi, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode sqrt price limit: %w", err)
	}
	if err := enc.WriteBool(inst.IsBaseInput); err != nil {
		return nil, fmt.Errorf("failed to encode is base input: %w", err)
	}

	return buf.Bytes(), nil
}
