package swap

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayswap/pkg"
	"rayswap/pkg/pool/clmm"
	"rayswap/pkg/quote"
)

type fakeReader struct {
	exists map[solana.PublicKey]bool
}

func (f *fakeReader) AccountExists(_ context.Context, account solana.PublicKey) (bool, error) {
	return f.exists[account], nil
}

func readerWith(accounts ...solana.PublicKey) *fakeReader {
	exists := make(map[solana.PublicKey]bool, len(accounts))
	for _, a := range accounts {
		exists[a] = true
	}
	return &fakeReader{exists: exists}
}

func stepKinds(plan *SwapPlan) []StepKind {
	kinds := make([]StepKind, 0, len(plan.Steps()))
	for _, step := range plan.Steps() {
		kinds = append(kinds, step.Kind)
	}
	return kinds
}

func standardKeys(t *testing.T) *PoolKeys {
	t.Helper()
	keys, err := PoolKeysFromAPI(rawStandardKeys())
	require.NoError(t, err)
	return keys
}

func concentratedKeys(t *testing.T) *PoolKeys {
	t.Helper()
	keys, err := PoolKeysFromAPI(rawConcentratedKeys())
	require.NoError(t, err)
	return keys
}

func quoteFor(keys *PoolKeys, input solana.PublicKey) *quote.Quote {
	output := keys.MintB
	if input.Equals(keys.MintB) {
		output = keys.MintA
	}
	return &quote.Quote{
		InputMint:    input,
		OutputMint:   output,
		AmountIn:     1_000_000,
		AmountOut:    990_000,
		MinAmountOut: 985_050,
	}
}

func derivedATAs(t *testing.T, keys *PoolKeys, payer solana.PublicKey) (source, dest solana.PublicKey) {
	t.Helper()
	source, err := DeriveAssociatedTokenAddress(payer, keys.MintA, pkg.TokenProgramID)
	require.NoError(t, err)
	dest, err = DeriveAssociatedTokenAddress(payer, keys.MintB, pkg.TokenProgramID)
	require.NoError(t, err)
	return source, dest
}

func TestAssembleWrapsNativeInput(t *testing.T) {
	keys := standardKeys(t) // MintA is wrapped SOL
	payer := solana.NewWallet().PublicKey()
	_, dest := derivedATAs(t, keys, payer)

	// Destination exists, the wSOL source does not.
	assembler := NewAssembler(readerWith(dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintA),
		Payer: payer,
	})
	require.NoError(t, err)

	assert.Equal(t, []StepKind{
		StepCreateAccount,
		StepWrapNative, // transfer lamports
		StepWrapNative, // sync native
		StepSwap,
		StepUnwrapNative,
	}, stepKinds(plan))
	assert.Equal(t, payer, plan.Payer())
}

func TestAssembleExistingAccounts(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()
	source, dest := derivedATAs(t, keys, payer)

	assembler := NewAssembler(readerWith(source, dest))

	// Trading MintB -> MintA: nothing to create, nothing native to wrap, and
	// the pre-existing wSOL destination is left open.
	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintB),
		Payer: payer,
	})
	require.NoError(t, err)

	assert.Equal(t, []StepKind{StepSwap}, stepKinds(plan))
	assert.Equal(t, dest, plan.SourceAccount())
	assert.Equal(t, source, plan.DestinationAccount())
}

func TestAssembleUnwrapsCreatedNativeOutput(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()
	_, dest := derivedATAs(t, keys, payer)

	// Trading MintB -> wSOL with only the source existing: the plan creates
	// the wSOL destination and closes it after the swap.
	assembler := NewAssembler(readerWith(dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintB),
		Payer: payer,
	})
	require.NoError(t, err)

	assert.Equal(t, []StepKind{
		StepCreateAccount,
		StepSwap,
		StepUnwrapNative,
	}, stepKinds(plan))
}

func TestAssembleComputeBudgetAndTip(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()
	source, dest := derivedATAs(t, keys, payer)

	assembler := NewAssembler(readerWith(source, dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:                          keys,
		Quote:                         quoteFor(keys, keys.MintB),
		Payer:                         payer,
		ComputeUnitLimit:              400_000,
		ComputeUnitPriceMicroLamports: 1_000,
		TipAccount:                    solana.NewWallet().PublicKey(),
		TipLamports:                   10_000,
	})
	require.NoError(t, err)

	assert.Equal(t, []StepKind{
		StepComputeBudget,
		StepComputeBudget,
		StepSwap,
		StepTip,
	}, stepKinds(plan))
}

func TestAssembleTipRequiresBothFields(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()
	source, dest := derivedATAs(t, keys, payer)

	assembler := NewAssembler(readerWith(source, dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:       keys,
		Quote:      quoteFor(keys, keys.MintB),
		Payer:      payer,
		TipAccount: solana.NewWallet().PublicKey(),
		// TipLamports left zero.
	})
	require.NoError(t, err)
	assert.Equal(t, []StepKind{StepSwap}, stepKinds(plan))
}

func TestAssembleRejectsForeignMint(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()

	assembler := NewAssembler(readerWith())

	foreign := solana.NewWallet().PublicKey()
	_, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: &quote.Quote{InputMint: foreign, OutputMint: keys.MintB, AmountIn: 1},
		Payer: payer,
	})
	assert.ErrorIs(t, err, pkg.ErrUnsupportedMintPair)

	// Matching input but mismatched output is rejected too.
	_, err = assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: &quote.Quote{InputMint: keys.MintA, OutputMint: foreign, AmountIn: 1},
		Payer: payer,
	})
	assert.ErrorIs(t, err, pkg.ErrUnsupportedMintPair)
}

func TestAssembleValidatesKeys(t *testing.T) {
	keys := standardKeys(t)
	keys.MarketBids = solana.PublicKey{}
	payer := solana.NewWallet().PublicKey()

	assembler := NewAssembler(readerWith())

	_, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintA),
		Payer: payer,
	})
	assert.ErrorIs(t, err, pkg.ErrMissingPoolKeys)
}

func TestAssembleRequiresPayer(t *testing.T) {
	keys := standardKeys(t)
	assembler := NewAssembler(readerWith())

	_, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintA),
	})
	assert.Error(t, err)

	_, err = assembler.Assemble(context.Background(), AssembleRequest{
		Payer: solana.NewWallet().PublicKey(),
	})
	assert.Error(t, err)
}

func TestAssembleStandardSwapInstruction(t *testing.T) {
	keys := standardKeys(t)
	payer := solana.NewWallet().PublicKey()
	source, dest := derivedATAs(t, keys, payer)

	assembler := NewAssembler(readerWith(source, dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintB),
		Payer: payer,
	})
	require.NoError(t, err)

	steps := plan.Steps()
	require.Len(t, steps, 1)
	inst := steps[0].Instruction
	assert.Equal(t, keys.ProgramID, inst.ProgramID())
	assert.Len(t, inst.Accounts(), 17)
}

func TestAssembleConcentratedSwapInstruction(t *testing.T) {
	keys := concentratedKeys(t)
	payer := solana.NewWallet().PublicKey()

	source, err := DeriveAssociatedTokenAddress(payer, keys.MintA, pkg.TokenProgramID)
	require.NoError(t, err)
	dest, err := DeriveAssociatedTokenAddress(payer, keys.MintB, pkg.TokenProgramID)
	require.NoError(t, err)

	pool := quote.PoolState{
		Type: pkg.PoolTypeConcentrated,
		Concentrated: &clmm.TickState{
			LoadedArrayStartIndexes: []int32{0, -600, -1200},
		},
	}

	assembler := NewAssembler(readerWith(source, dest))

	plan, err := assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Pool:  pool,
		Quote: quoteFor(keys, keys.MintA),
		Payer: payer,
	})
	require.NoError(t, err)

	steps := plan.Steps()
	var swapStep *Step
	for i := range steps {
		if steps[i].Kind == StepSwap {
			swapStep = &steps[i]
		}
	}
	require.NotNil(t, swapStep)

	inst := swapStep.Instruction
	assert.Equal(t, keys.ProgramID, inst.ProgramID())
	// 13 fixed accounts, the bitmap extension, then one meta per loaded
	// tick array.
	assert.Len(t, inst.Accounts(), 13+1+3)
}

func TestAssembleConcentratedNeedsState(t *testing.T) {
	keys := concentratedKeys(t)
	payer := solana.NewWallet().PublicKey()

	source, err := DeriveAssociatedTokenAddress(payer, keys.MintA, pkg.TokenProgramID)
	require.NoError(t, err)
	dest, err := DeriveAssociatedTokenAddress(payer, keys.MintB, pkg.TokenProgramID)
	require.NoError(t, err)

	assembler := NewAssembler(readerWith(source, dest))

	_, err = assembler.Assemble(context.Background(), AssembleRequest{
		Keys:  keys,
		Quote: quoteFor(keys, keys.MintA),
		Payer: payer,
	})
	assert.Error(t, err)
}
