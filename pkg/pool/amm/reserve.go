package amm

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/sol"
)

// ReserveState is a snapshot of a standard pool's tradable reserves.
// Pending protocol PNL is already subtracted from the vault balances.
type ReserveState struct {
	PoolID         solana.PublicKey
	BaseMint       solana.PublicKey
	QuoteMint      solana.PublicKey
	ReserveBase    uint64
	ReserveQuote   uint64
	FeeNumerator   uint64
	FeeDenominator uint64
}

// FetchReserveState reads the pool account and both vaults, returning the
// reserves backing the constant-product curve. Layout problems surface as
// *pkg.StateReadError; transport failures pass through wrapped.
func FetchReserveState(ctx context.Context, solClient *sol.Client, poolID solana.PublicKey) (*ReserveState, error) {
	account, err := solClient.GetAccountInfoWithOpts(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool account: %w", err)
	}
	if account == nil || account.Value == nil {
		return nil, &pkg.StateReadError{Account: poolID.String(), Err: fmt.Errorf("account not found")}
	}

	state, err := DecodeLiquidityStateV4(account.Value.Data.GetBinary())
	if err != nil {
		return nil, &pkg.StateReadError{Account: poolID.String(), Err: err}
	}

	vaults := []solana.PublicKey{state.BaseVault, state.QuoteVault}
	results, err := solClient.GetMultipleAccountsWithOpts(ctx, vaults)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vault accounts: %w", err)
	}

	balances := make([]uint64, 2)
	for i, result := range results.Value {
		if result == nil {
			return nil, &pkg.StateReadError{Account: vaults[i].String(), Err: fmt.Errorf("vault account not found")}
		}
		amount, err := DecodeTokenAccountAmount(result.Data.GetBinary())
		if err != nil {
			return nil, &pkg.StateReadError{Account: vaults[i].String(), Err: err}
		}
		balances[i] = amount
	}

	if balances[0] < state.BaseNeedTakePnl || balances[1] < state.QuoteNeedTakePnl {
		return nil, &pkg.StateReadError{Account: poolID.String(), Err: fmt.Errorf("vault balance below pending pnl")}
	}

	return &ReserveState{
		PoolID:         poolID,
		BaseMint:       state.BaseMint,
		QuoteMint:      state.QuoteMint,
		ReserveBase:    balances[0] - state.BaseNeedTakePnl,
		ReserveQuote:   balances[1] - state.QuoteNeedTakePnl,
		FeeNumerator:   state.SwapFeeNumerator,
		FeeDenominator: state.SwapFeeDenominator,
	}, nil
}
