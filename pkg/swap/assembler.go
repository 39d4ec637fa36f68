// Package swap composes swap transactions: account setup, native SOL
// wrapping, the swap instruction itself, and cleanup, in a fixed order.
package swap

import (
	"context"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/pool/clmm"
	"rayswap/pkg/quote"
)

// ChainReader is the account-existence view the assembler needs. *sol.Client
// satisfies it.
type ChainReader interface {
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

// Assembler turns quotes into swap plans.
type Assembler struct {
	reader ChainReader
}

func NewAssembler(reader ChainReader) *Assembler {
	return &Assembler{reader: reader}
}

// AssembleRequest carries everything one plan needs. Pool must hold the same
// snapshot the quote was computed against; for concentrated pools its loaded
// tick arrays become the swap's remaining accounts.
type AssembleRequest struct {
	Keys  *PoolKeys
	Pool  quote.PoolState
	Quote *quote.Quote
	Payer solana.PublicKey

	// Optional compute budget hints; zero omits the instruction.
	ComputeUnitLimit              uint32
	ComputeUnitPriceMicroLamports uint64

	// Optional validator tip appended after cleanup, for bundle submission.
	// Both must be set for the tip step to be added.
	TipAccount  solana.PublicKey
	TipLamports uint64
}

// Assemble builds the ordered swap plan: compute budget, account creation,
// native wrapping, the swap, then cleanup. Nothing is signed or submitted.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (*SwapPlan, error) {
	if req.Keys == nil || req.Quote == nil {
		return nil, fmt.Errorf("keys and quote are required")
	}
	if req.Payer.IsZero() {
		return nil, fmt.Errorf("payer is required")
	}
	if err := req.Keys.Validate(); err != nil {
		return nil, err
	}

	keys := req.Keys

	var inputMint, outputMint, inputProgram, outputProgram solana.PublicKey
	var aToB bool
	switch req.Quote.InputMint {
	case keys.MintA:
		aToB = true
		inputMint, outputMint = keys.MintA, keys.MintB
		inputProgram, outputProgram = keys.MintAProgram, keys.MintBProgram
	case keys.MintB:
		aToB = false
		inputMint, outputMint = keys.MintB, keys.MintA
		inputProgram, outputProgram = keys.MintBProgram, keys.MintAProgram
	default:
		return nil, pkg.ErrUnsupportedMintPair
	}
	if req.Quote.OutputMint != outputMint {
		return nil, pkg.ErrUnsupportedMintPair
	}
	if inputProgram.IsZero() {
		inputProgram = pkg.TokenProgramID
	}
	if outputProgram.IsZero() {
		outputProgram = pkg.TokenProgramID
	}

	sourceATA, err := DeriveAssociatedTokenAddress(req.Payer, inputMint, inputProgram)
	if err != nil {
		return nil, err
	}
	destATA, err := DeriveAssociatedTokenAddress(req.Payer, outputMint, outputProgram)
	if err != nil {
		return nil, err
	}

	sourceExists, err := a.reader.AccountExists(ctx, sourceATA)
	if err != nil {
		return nil, fmt.Errorf("failed to check source token account: %w", err)
	}
	destExists, err := a.reader.AccountExists(ctx, destATA)
	if err != nil {
		return nil, fmt.Errorf("failed to check destination token account: %w", err)
	}

	plan := &SwapPlan{
		payer:       req.Payer,
		source:      sourceATA,
		destination: destATA,
	}

	if req.ComputeUnitLimit > 0 {
		plan.steps = append(plan.steps, Step{
			Kind:        StepComputeBudget,
			Instruction: newComputeUnitLimitInstruction(req.ComputeUnitLimit),
		})
	}
	if req.ComputeUnitPriceMicroLamports > 0 {
		plan.steps = append(plan.steps, Step{
			Kind:        StepComputeBudget,
			Instruction: newComputeUnitPriceInstruction(req.ComputeUnitPriceMicroLamports),
		})
	}

	if !sourceExists {
		plan.steps = append(plan.steps, Step{
			Kind:        StepCreateAccount,
			Instruction: newCreateATAIdempotentInstruction(req.Payer, sourceATA, req.Payer, inputMint, inputProgram),
		})
	}
	if inputMint.Equals(pkg.WSOLMint) {
		plan.steps = append(plan.steps,
			Step{Kind: StepWrapNative, Instruction: newSystemTransferInstruction(req.Payer, sourceATA, req.Quote.AmountIn)},
			Step{Kind: StepWrapNative, Instruction: newSyncNativeInstruction(sourceATA)},
		)
	}
	if !destExists {
		plan.steps = append(plan.steps, Step{
			Kind:        StepCreateAccount,
			Instruction: newCreateATAIdempotentInstruction(req.Payer, destATA, req.Payer, outputMint, outputProgram),
		})
	}

	swapInstruction, err := a.buildSwapInstruction(req, aToB, sourceATA, destATA)
	if err != nil {
		return nil, err
	}
	plan.steps = append(plan.steps, Step{Kind: StepSwap, Instruction: swapInstruction})

	// Unwrap only accounts this plan created; an existing wSOL account is
	// the caller's to manage.
	if inputMint.Equals(pkg.WSOLMint) && !sourceExists {
		plan.steps = append(plan.steps, Step{
			Kind:        StepUnwrapNative,
			Instruction: newCloseAccountInstruction(sourceATA, req.Payer, req.Payer),
		})
	}
	if outputMint.Equals(pkg.WSOLMint) && !destExists {
		plan.steps = append(plan.steps, Step{
			Kind:        StepUnwrapNative,
			Instruction: newCloseAccountInstruction(destATA, req.Payer, req.Payer),
		})
	}

	if !req.TipAccount.IsZero() && req.TipLamports > 0 {
		plan.steps = append(plan.steps, Step{
			Kind:        StepTip,
			Instruction: newSystemTransferInstruction(req.Payer, req.TipAccount, req.TipLamports),
		})
	}

	return plan, nil
}

func (a *Assembler) buildSwapInstruction(req AssembleRequest, aToB bool, sourceATA, destATA solana.PublicKey) (solana.Instruction, error) {
	keys := req.Keys

	switch keys.Type {
	case pkg.PoolTypeStandard:
		accounts := amm.SwapAccounts{
			ProgramID:        keys.ProgramID,
			PoolID:           keys.ID,
			Authority:        keys.Authority,
			OpenOrders:       keys.OpenOrders,
			BaseVault:        keys.VaultA,
			QuoteVault:       keys.VaultB,
			MarketProgramID:  keys.MarketProgramID,
			MarketID:         keys.MarketID,
			MarketBids:       keys.MarketBids,
			MarketAsks:       keys.MarketAsks,
			MarketEventQueue: keys.MarketEventQueue,
			MarketBaseVault:  keys.MarketBaseVault,
			MarketQuoteVault: keys.MarketQuoteVault,
			MarketAuthority:  keys.MarketAuthority,
		}
		return amm.NewSwapBaseInInstruction(
			accounts, sourceATA, destATA, req.Payer,
			req.Quote.AmountIn, req.Quote.MinAmountOut,
		), nil

	case pkg.PoolTypeConcentrated:
		state := req.Pool.Concentrated
		if state == nil {
			return nil, fmt.Errorf("concentrated pool state is required to assemble the swap")
		}

		tickArrays := make([]solana.PublicKey, 0, len(state.LoadedArrayStartIndexes))
		for _, start := range state.LoadedArrayStartIndexes {
			addr, err := clmm.DeriveTickArrayAddress(keys.ProgramID, keys.ID, start)
			if err != nil {
				return nil, err
			}
			tickArrays = append(tickArrays, addr)
		}

		var sqrtPriceLimit *big.Int
		var inputVault, outputVault, inputVaultMint, outputVaultMint solana.PublicKey
		if aToB {
			sqrtPriceLimit = new(big.Int).Add(clmm.MinSqrtPriceX64.BigInt(), big.NewInt(1))
			inputVault, outputVault = keys.VaultA, keys.VaultB
			inputVaultMint, outputVaultMint = keys.MintA, keys.MintB
		} else {
			sqrtPriceLimit = new(big.Int).Sub(clmm.MaxSqrtPriceX64.BigInt(), big.NewInt(1))
			inputVault, outputVault = keys.VaultB, keys.VaultA
			inputVaultMint, outputVaultMint = keys.MintB, keys.MintA
		}

		accounts := clmm.SwapAccounts{
			ProgramID:       keys.ProgramID,
			PoolID:          keys.ID,
			AmmConfig:       keys.AmmConfig,
			InputVault:      inputVault,
			OutputVault:     outputVault,
			InputVaultMint:  inputVaultMint,
			OutputVaultMint: outputVaultMint,
			ObservationKey:  keys.ObservationID,
			BitmapExtension: keys.ExBitmapAccount,
			TickArrays:      tickArrays,
		}
		return clmm.NewSwapV2Instruction(
			accounts, sourceATA, destATA, req.Payer,
			req.Quote.AmountIn, req.Quote.MinAmountOut,
			sqrtPriceLimit, true,
		), nil

	default:
		return nil, fmt.Errorf("unknown pool type %d", keys.Type)
	}
}
