package swap

import (
	"fmt"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
)

// Solana transactions must fit a single IPv6 MTU packet.
const maxTransactionSize = 1232

// StepKind labels what a plan step contributes to the transaction.
type StepKind uint8

const (
	StepComputeBudget StepKind = iota
	StepCreateAccount
	StepWrapNative
	StepSwap
	StepUnwrapNative
	StepTip
)

func (k StepKind) String() string {
	switch k {
	case StepComputeBudget:
		return "compute-budget"
	case StepCreateAccount:
		return "create-account"
	case StepWrapNative:
		return "wrap-native"
	case StepSwap:
		return "swap"
	case StepUnwrapNative:
		return "unwrap-native"
	case StepTip:
		return "tip"
	default:
		return "unknown"
	}
}

// Step is one instruction of a swap plan.
type Step struct {
	Kind        StepKind
	Instruction solana.Instruction
}

// SwapPlan is an ordered, immutable instruction sequence for one swap. The
// payer is the only required signer.
type SwapPlan struct {
	payer       solana.PublicKey
	steps       []Step
	source      solana.PublicKey
	destination solana.PublicKey
}

func (p *SwapPlan) Payer() solana.PublicKey { return p.payer }

// SourceAccount is the token account the swap draws the input from.
func (p *SwapPlan) SourceAccount() solana.PublicKey { return p.source }

// DestinationAccount is the token account the swap pays the output into.
func (p *SwapPlan) DestinationAccount() solana.PublicKey { return p.destination }

// Steps returns the plan's steps in execution order.
func (p *SwapPlan) Steps() []Step {
	out := make([]Step, len(p.steps))
	copy(out, p.steps)
	return out
}

// Instructions flattens the plan into the instruction list in execution
// order.
func (p *SwapPlan) Instructions() []solana.Instruction {
	out := make([]solana.Instruction, 0, len(p.steps))
	for _, step := range p.steps {
		out = append(out, step.Instruction)
	}
	return out
}

// Transaction builds the unsigned transaction for the plan and verifies it
// fits the packet size limit. Oversized plans fail with pkg.ErrPlanTooLarge
// before anything is submitted.
func (p *SwapPlan) Transaction(recentBlockhash solana.Hash) (*solana.Transaction, error) {
	tx, err := solana.NewTransaction(
		p.Instructions(),
		recentBlockhash,
		solana.TransactionPayer(p.payer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	message, err := tx.Message.MarshalBinary()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize message: %w", err)
	}

	// 1 byte signature count + 64 bytes per signature + message.
	size := 1 + 64*int(tx.Message.Header.NumRequiredSignatures) + len(message)
	if size > maxTransactionSize {
		return nil, fmt.Errorf("%w: %d bytes, limit %d", pkg.ErrPlanTooLarge, size, maxTransactionSize)
	}

	return tx, nil
}
