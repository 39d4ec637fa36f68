package amm

import (
	"bytes"
	"encoding/binary"
	"fmt"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
)

// SwapAccounts collects the pool and market addresses referenced by a
// SwapBaseIn instruction.
type SwapAccounts struct {
	ProgramID        solana.PublicKey
	PoolID           solana.PublicKey
	Authority        solana.PublicKey
	OpenOrders       solana.PublicKey
	BaseVault        solana.PublicKey
	QuoteVault       solana.PublicKey
	MarketProgramID  solana.PublicKey
	MarketID         solana.PublicKey
	MarketBids       solana.PublicKey
	MarketAsks       solana.PublicKey
	MarketEventQueue solana.PublicKey
	MarketBaseVault  solana.PublicKey
	MarketQuoteVault solana.PublicKey
	MarketAuthority  solana.PublicKey
}

// SwapBaseInInstruction swaps an exact input amount with a minimum-output
// floor enforced on-chain.
type SwapBaseInInstruction struct {
	bin.BaseVariant
	AmountIn                uint64
	MinimumAmountOut        uint64
	programID               solana.PublicKey
	solana.AccountMetaSlice `bin:"-" borsh_skip:"true"`
}

// NewSwapBaseInInstruction builds the AMM v4 SwapBaseIn instruction.
//
// Account order:
//
//	0.  `[]`         SPL token program
//	1.  `[writable]` AMM pool account
//	2.  `[]`         AMM authority
//	3.  `[writable]` AMM open orders
//	4.  `[writable]` AMM base vault
//	5.  `[writable]` AMM quote vault
//	6.  `[]`         Market program
//	7.  `[writable]` Market account
//	8.  `[writable]` Market bids
//	9.  `[writable]` Market asks
//	10. `[writable]` Market event queue
//	11. `[writable]` Market base vault
//	12. `[writable]` Market quote vault
//	13. `[]`         Market vault signer
//	14. `[writable]` User source token account
//	15. `[writable]` User destination token account
//	16. `[signer]`   User wallet
func NewSwapBaseInInstruction(
	accounts SwapAccounts,
	userSource, userDestination, owner solana.PublicKey,
	amountIn, minimumAmountOut uint64,
) *SwapBaseInInstruction {
	inst := &SwapBaseInInstruction{
		AmountIn:         amountIn,
		MinimumAmountOut: minimumAmountOut,
		programID:        accounts.ProgramID,
		AccountMetaSlice: make(solana.AccountMetaSlice, 17),
	}

	inst.AccountMetaSlice[0] = solana.NewAccountMeta(pkg.TokenProgramID, false, false)
	inst.AccountMetaSlice[1] = solana.NewAccountMeta(accounts.PoolID, true, false)
	inst.AccountMetaSlice[2] = solana.NewAccountMeta(accounts.Authority, false, false)
	inst.AccountMetaSlice[3] = solana.NewAccountMeta(accounts.OpenOrders, true, false)
	inst.AccountMetaSlice[4] = solana.NewAccountMeta(accounts.BaseVault, true, false)
	inst.AccountMetaSlice[5] = solana.NewAccountMeta(accounts.QuoteVault, true, false)
	inst.AccountMetaSlice[6] = solana.NewAccountMeta(accounts.MarketProgramID, false, false)
	inst.AccountMetaSlice[7] = solana.NewAccountMeta(accounts.MarketID, true, false)
	inst.AccountMetaSlice[8] = solana.NewAccountMeta(accounts.MarketBids, true, false)
	inst.AccountMetaSlice[9] = solana.NewAccountMeta(accounts.MarketAsks, true, false)
	inst.AccountMetaSlice[10] = solana.NewAccountMeta(accounts.MarketEventQueue, true, false)
	inst.AccountMetaSlice[11] = solana.NewAccountMeta(accounts.MarketBaseVault, true, false)
	inst.AccountMetaSlice[12] = solana.NewAccountMeta(accounts.MarketQuoteVault, true, false)
	inst.AccountMetaSlice[13] = solana.NewAccountMeta(accounts.MarketAuthority, false, false)
	inst.AccountMetaSlice[14] = solana.NewAccountMeta(userSource, true, false)
	inst.AccountMetaSlice[15] = solana.NewAccountMeta(userDestination, true, false)
	inst.AccountMetaSlice[16] = solana.NewAccountMeta(owner, false, true)

	return inst
}

func (inst *SwapBaseInInstruction) ProgramID() solana.PublicKey {
	return inst.programID
}

func (inst *SwapBaseInInstruction) Accounts() (out []*solana.AccountMeta) {
	return inst.AccountMetaSlice
}

func (inst *SwapBaseInInstruction) Data() ([]byte, error) {
	buf := new(bytes.Buffer)

	// Instruction tag
	if err := buf.WriteByte(SwapBaseInTag); err != nil {
		return nil, fmt.Errorf("failed to write instruction tag: %w", err)
	}

	// Write amount in
	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.AmountIn, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode amount in: %w", err)
	}

	// Write minimum amount out
	if err := bin.NewBorshEncoder(buf).WriteUint64(inst.MinimumAmountOut, binary.LittleEndian); err != nil {
		return nil, fmt.Errorf("failed to encode minimum amount out: %w", err)
	}

	return buf.Bytes(), nil
}
