package clmm

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/big"
	"sort"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/sol"
)

// Tick is one initialized tick boundary: crossing it changes the active
// liquidity by the signed LiquidityNet.
type Tick struct {
	Index        int32
	LiquidityNet *big.Int
}

// TickState is a snapshot of a concentrated pool sufficient for a quote:
// the current price point, the active liquidity, and every initialized tick
// inside the loaded tick-array window. Ticks are ordered ascending by
// index. Quotes never walk past the loaded window.
type TickState struct {
	ProgramID      solana.PublicKey
	PoolID         solana.PublicKey
	AmmConfig      solana.PublicKey
	TokenMint0     solana.PublicKey
	TokenMint1     solana.PublicKey
	TokenVault0    solana.PublicKey
	TokenVault1    solana.PublicKey
	ObservationKey solana.PublicKey
	MintDecimals0  uint8
	MintDecimals1  uint8

	TickSpacing  uint16
	TradeFeeRate uint32 // parts per million

	SqrtPriceX64 *big.Int
	TickCurrent  int32
	Liquidity    *big.Int

	Ticks []Tick

	// Tick window covered by the loaded arrays.
	MinLoadedTick int32
	MaxLoadedTick int32

	// Start indexes of the loaded arrays, in walk order.
	LoadedArrayStartIndexes []int32
}

// DeriveTickArrayAddress returns the PDA of the tick array starting at
// startIndex.
func DeriveTickArrayAddress(programID, poolID solana.PublicKey, startIndex int32) (solana.PublicKey, error) {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], uint32(startIndex))
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(TickArraySeed), poolID.Bytes(), idx[:]},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive tick array address: %w", err)
	}
	return addr, nil
}

// DeriveBitmapExtensionAddress returns the PDA of the pool's tick array
// bitmap extension account.
func DeriveBitmapExtensionAddress(programID, poolID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(BitmapExtensionSeed), poolID.Bytes()},
		programID,
	)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("failed to derive bitmap extension address: %w", err)
	}
	return addr, nil
}

// FetchTickState reads the pool, its fee config, and the tick arrays
// covering the current price plus the next arrays in the swap direction.
// zeroForOne is the direction the caller intends to quote: true trades
// token0 for token1 (price moves down).
func FetchTickState(ctx context.Context, solClient *sol.Client, programID, poolID solana.PublicKey, zeroForOne bool) (*TickState, error) {
	poolAccount, err := solClient.GetAccountInfoWithOpts(ctx, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pool account: %w", err)
	}
	if poolAccount == nil || poolAccount.Value == nil {
		return nil, &pkg.StateReadError{Account: poolID.String(), Err: fmt.Errorf("account not found")}
	}

	poolState, err := DecodePoolState(poolAccount.Value.Data.GetBinary())
	if err != nil {
		return nil, &pkg.StateReadError{Account: poolID.String(), Err: err}
	}

	configAccount, err := solClient.GetAccountInfoWithOpts(ctx, poolState.AmmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch amm config account: %w", err)
	}
	if configAccount == nil || configAccount.Value == nil {
		return nil, &pkg.StateReadError{Account: poolState.AmmConfig.String(), Err: fmt.Errorf("account not found")}
	}

	ammConfig, err := DecodeAmmConfig(configAccount.Value.Data.GetBinary())
	if err != nil {
		return nil, &pkg.StateReadError{Account: poolState.AmmConfig.String(), Err: err}
	}

	startIndexes := tickArrayWindow(poolState.TickCurrent, poolState.TickSpacing, zeroForOne)

	addresses := make([]solana.PublicKey, 0, len(startIndexes))
	for _, start := range startIndexes {
		addr, err := DeriveTickArrayAddress(programID, poolID, start)
		if err != nil {
			return nil, err
		}
		addresses = append(addresses, addr)
	}

	results, err := solClient.GetMultipleAccountsWithOpts(ctx, addresses)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tick array accounts: %w", err)
	}

	state := &TickState{
		ProgramID:               programID,
		PoolID:                  poolID,
		AmmConfig:               poolState.AmmConfig,
		TokenMint0:              poolState.TokenMint0,
		TokenMint1:              poolState.TokenMint1,
		TokenVault0:             poolState.TokenVault0,
		TokenVault1:             poolState.TokenVault1,
		ObservationKey:          poolState.ObservationKey,
		MintDecimals0:           poolState.MintDecimals0,
		MintDecimals1:           poolState.MintDecimals1,
		TickSpacing:             poolState.TickSpacing,
		TradeFeeRate:            ammConfig.TradeFeeRate,
		SqrtPriceX64:            poolState.SqrtPriceX64.Big(),
		TickCurrent:             poolState.TickCurrent,
		Liquidity:               poolState.Liquidity.Big(),
		LoadedArrayStartIndexes: startIndexes,
	}

	ticksInArray := TicksInArray(poolState.TickSpacing)
	state.MinLoadedTick = startIndexes[0]
	state.MaxLoadedTick = startIndexes[0] + ticksInArray - 1
	for _, start := range startIndexes {
		if start < state.MinLoadedTick {
			state.MinLoadedTick = start
		}
		if end := start + ticksInArray - 1; end > state.MaxLoadedTick {
			state.MaxLoadedTick = end
		}
	}

	for i, result := range results.Value {
		if result == nil {
			// Uninitialized tick array: covered by the window, holds no
			// ticks.
			continue
		}
		array, err := DecodeTickArrayState(result.Data.GetBinary())
		if err != nil {
			return nil, &pkg.StateReadError{Account: addresses[i].String(), Err: err}
		}
		if array.StartTickIndex != startIndexes[i] {
			return nil, &pkg.StateReadError{
				Account: addresses[i].String(),
				Err:     fmt.Errorf("tick array start index mismatch: expected %d, got %d", startIndexes[i], array.StartTickIndex),
			}
		}
		for j := range array.Ticks {
			entry := &array.Ticks[j]
			if !entry.Initialized() {
				continue
			}
			state.Ticks = append(state.Ticks, Tick{
				Index:        entry.Tick,
				LiquidityNet: entry.LiquidityNet,
			})
		}
	}

	sort.Slice(state.Ticks, func(i, j int) bool {
		return state.Ticks[i].Index < state.Ticks[j].Index
	})

	return state, nil
}

// tickArrayWindow returns the start indexes of the array holding the
// current tick plus the next arrays in the swap direction, clamped to the
// valid tick range.
func tickArrayWindow(tickCurrent int32, tickSpacing uint16, zeroForOne bool) []int32 {
	ticksInArray := TicksInArray(tickSpacing)
	start := GetArrayStartIndex(tickCurrent, tickSpacing)
	minStart := GetArrayStartIndex(MinTick, tickSpacing)

	indexes := []int32{start}
	for i := 0; i < tickArrayFetchCount; i++ {
		var next int32
		if zeroForOne {
			next = indexes[len(indexes)-1] - ticksInArray
			if next < minStart {
				break
			}
		} else {
			next = indexes[len(indexes)-1] + ticksInArray
			if next > MaxTick {
				break
			}
		}
		indexes = append(indexes, next)
	}

	return indexes
}
