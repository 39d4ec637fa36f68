package amm

import (
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Field offsets in the raw LiquidityStateV4 layout.
const (
	offSwapFeeNumerator   = 176
	offSwapFeeDenominator = 184
	offBaseNeedTakePnl    = 192
	offQuoteNeedTakePnl   = 200
	offBaseVault          = 336
	offQuoteVault         = 368
	offBaseMint           = 400
	offQuoteMint          = 432
	offLpReserve          = 720
)

func buildLiquidityStateV4(t *testing.T) ([]byte, map[string]solana.PublicKey) {
	t.Helper()

	data := make([]byte, LiquidityStateV4Size)
	binary.LittleEndian.PutUint64(data[offSwapFeeNumerator:], 25)
	binary.LittleEndian.PutUint64(data[offSwapFeeDenominator:], 10000)
	binary.LittleEndian.PutUint64(data[offBaseNeedTakePnl:], 111)
	binary.LittleEndian.PutUint64(data[offQuoteNeedTakePnl:], 222)
	binary.LittleEndian.PutUint64(data[offLpReserve:], 999_999)

	keys := map[string]solana.PublicKey{
		"baseVault":  solana.NewWallet().PublicKey(),
		"quoteVault": solana.NewWallet().PublicKey(),
		"baseMint":   solana.NewWallet().PublicKey(),
		"quoteMint":  solana.NewWallet().PublicKey(),
	}
	copy(data[offBaseVault:], keys["baseVault"].Bytes())
	copy(data[offQuoteVault:], keys["quoteVault"].Bytes())
	copy(data[offBaseMint:], keys["baseMint"].Bytes())
	copy(data[offQuoteMint:], keys["quoteMint"].Bytes())

	return data, keys
}

func TestDecodeLiquidityStateV4(t *testing.T) {
	data, keys := buildLiquidityStateV4(t)

	state, err := DecodeLiquidityStateV4(data)
	require.NoError(t, err)

	assert.Equal(t, uint64(25), state.SwapFeeNumerator)
	assert.Equal(t, uint64(10000), state.SwapFeeDenominator)
	assert.Equal(t, uint64(111), state.BaseNeedTakePnl)
	assert.Equal(t, uint64(222), state.QuoteNeedTakePnl)
	assert.Equal(t, uint64(999_999), state.LpReserve)
	assert.Equal(t, keys["baseVault"], state.BaseVault)
	assert.Equal(t, keys["quoteVault"], state.QuoteVault)
	assert.Equal(t, keys["baseMint"], state.BaseMint)
	assert.Equal(t, keys["quoteMint"], state.QuoteMint)
}

func TestDecodeLiquidityStateV4ShortBuffer(t *testing.T) {
	_, err := DecodeLiquidityStateV4(make([]byte, LiquidityStateV4Size-1))
	assert.Error(t, err)

	_, err = DecodeLiquidityStateV4(nil)
	assert.Error(t, err)
}

func TestDecodeTokenAccountAmount(t *testing.T) {
	data := make([]byte, TokenAccountSize)
	binary.LittleEndian.PutUint64(data[TokenAccountAmountOffset:], 123_456_789)

	amount, err := DecodeTokenAccountAmount(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(123_456_789), amount)

	_, err = DecodeTokenAccountAmount(make([]byte, TokenAccountSize-1))
	assert.Error(t, err)
}
