package clmm

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"lukechampine.com/uint128"
)

// PoolState is the decoded prefix of the CLMM pool account: everything a
// quote or swap needs, later fields (fee growth, rewards, bitmap) are not
// materialized.
type PoolState struct {
	AmmConfig      solana.PublicKey
	Owner          solana.PublicKey
	TokenMint0     solana.PublicKey
	TokenMint1     solana.PublicKey
	TokenVault0    solana.PublicKey
	TokenVault1    solana.PublicKey
	ObservationKey solana.PublicKey
	MintDecimals0  uint8
	MintDecimals1  uint8
	TickSpacing    uint16
	Liquidity      uint128.Uint128
	SqrtPriceX64   uint128.Uint128
	TickCurrent    int32
}

// DecodePoolState decodes an anchor PoolState account.
func DecodePoolState(data []byte) (*PoolState, error) {
	if len(data) < 273 {
		return nil, fmt.Errorf("insufficient data: expected at least 273 bytes, got %d", len(data))
	}

	state := &PoolState{}

	// Skip 8 bytes discriminator + 1 byte bump
	offset := 9

	state.AmmConfig = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.Owner = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.TokenMint0 = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.TokenMint1 = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.TokenVault0 = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.TokenVault1 = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.ObservationKey = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32

	state.MintDecimals0 = data[offset]
	offset++
	state.MintDecimals1 = data[offset]
	offset++

	state.TickSpacing = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2

	state.Liquidity = uint128.FromBytes(data[offset : offset+16])
	offset += 16
	state.SqrtPriceX64 = uint128.FromBytes(data[offset : offset+16])
	offset += 16

	state.TickCurrent = int32(binary.LittleEndian.Uint32(data[offset : offset+4]))

	if state.TickSpacing == 0 {
		return nil, fmt.Errorf("pool has zero tick spacing")
	}

	return state, nil
}

// AmmConfig carries the pool's fee configuration. The trade fee rate is in
// parts per million.
type AmmConfig struct {
	Index           uint16
	Owner           solana.PublicKey
	ProtocolFeeRate uint32
	TradeFeeRate    uint32
	TickSpacing     uint16
	FundFeeRate     uint32
}

// DecodeAmmConfig decodes an anchor AmmConfig account.
func DecodeAmmConfig(data []byte) (*AmmConfig, error) {
	if len(data) < 57 {
		return nil, fmt.Errorf("insufficient data: expected at least 57 bytes, got %d", len(data))
	}

	cfg := &AmmConfig{}

	// Skip 8 bytes discriminator + 1 byte bump
	offset := 9

	cfg.Index = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2
	cfg.Owner = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	cfg.ProtocolFeeRate = binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	cfg.TradeFeeRate = binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4
	cfg.TickSpacing = binary.LittleEndian.Uint16(data[offset : offset+2])
	offset += 2
	cfg.FundFeeRate = binary.LittleEndian.Uint32(data[offset : offset+4])

	return cfg, nil
}

// TickArrayState is a decoded tick array account: 60 tick slots covering
// TickArraySize * tickSpacing ticks starting at StartTickIndex.
type TickArrayState struct {
	PoolID               solana.PublicKey
	StartTickIndex       int32
	Ticks                [TickArraySize]TickEntry
	InitializedTickCount uint8
}

// TickEntry is one slot of a tick array. A slot with zero gross liquidity
// is uninitialized.
type TickEntry struct {
	Tick           int32
	LiquidityNet   *big.Int // i128
	LiquidityGross uint128.Uint128
}

// Initialized reports whether any position references this tick.
func (t *TickEntry) Initialized() bool {
	return !t.LiquidityGross.IsZero()
}

// DecodeTickArrayState decodes an anchor TickArrayState account.
func DecodeTickArrayState(data []byte) (*TickArrayState, error) {
	if len(data) < TickArrayStateSize {
		return nil, fmt.Errorf("insufficient data: expected %d bytes, got %d", TickArrayStateSize, len(data))
	}

	state := &TickArrayState{}

	// Skip 8 bytes discriminator
	offset := 8

	state.PoolID = solana.PublicKeyFromBytes(data[offset : offset+32])
	offset += 32
	state.StartTickIndex = int32(binary.LittleEndian.Uint32(data[offset : offset+4]))
	offset += 4

	for i := 0; i < TickArraySize; i++ {
		entry := data[offset : offset+TickStateSize]
		state.Ticks[i].Tick = int32(binary.LittleEndian.Uint32(entry[0:4]))
		state.Ticks[i].LiquidityNet = decodeInt128(entry[4:20])
		state.Ticks[i].LiquidityGross = uint128.FromBytes(entry[20:36])
		offset += TickStateSize
	}

	state.InitializedTickCount = data[offset]

	return state, nil
}

// decodeInt128 interprets 16 little-endian bytes as a signed
// two's-complement 128-bit integer.
func decodeInt128(b []byte) *big.Int {
	v := uint128.FromBytes(b)
	out := v.Big()
	if v.Hi&(1<<63) != 0 {
		out.Sub(out, new(big.Int).Lsh(big.NewInt(1), 128))
	}
	return out
}
