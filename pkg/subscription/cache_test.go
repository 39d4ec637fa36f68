package subscription

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rayswap/pkg/pool/amm"
)

func TestCachePutGet(t *testing.T) {
	cache := NewCache()
	poolID := solana.NewWallet().PublicKey()

	_, ok := cache.Get(poolID)
	assert.False(t, ok)

	state := &amm.ReserveState{PoolID: poolID, ReserveBase: 100, ReserveQuote: 200}
	cache.Put(poolID, state, 42)

	snap, ok := cache.Get(poolID)
	require.True(t, ok)
	assert.Equal(t, state, snap.State)
	assert.Equal(t, uint64(42), snap.Slot)
	assert.False(t, snap.UpdatedAt.IsZero())
	assert.Equal(t, 1, cache.Size())

	// Newer snapshots replace older ones.
	cache.Put(poolID, state, 43)
	snap, _ = cache.Get(poolID)
	assert.Equal(t, uint64(43), snap.Slot)
	assert.Equal(t, 1, cache.Size())
}

func TestCacheRemove(t *testing.T) {
	cache := NewCache()
	poolID := solana.NewWallet().PublicKey()

	cache.Put(poolID, &amm.ReserveState{}, 1)
	cache.Remove(poolID)

	_, ok := cache.Get(poolID)
	assert.False(t, ok)
	assert.Zero(t, cache.Size())
}

func TestCacheStalePoolIDs(t *testing.T) {
	cache := NewCache()
	fresh := solana.NewWallet().PublicKey()
	stale := solana.NewWallet().PublicKey()

	cache.Put(stale, &amm.ReserveState{}, 1)
	cache.snapshots[stale] = Snapshot{
		State:     cache.snapshots[stale].State,
		Slot:      1,
		UpdatedAt: time.Now().Add(-time.Minute),
	}
	cache.Put(fresh, &amm.ReserveState{}, 2)

	ids := cache.StalePoolIDs(10 * time.Second)
	require.Len(t, ids, 1)
	assert.Equal(t, stale, ids[0])

	assert.Empty(t, cache.StalePoolIDs(time.Hour))
}
