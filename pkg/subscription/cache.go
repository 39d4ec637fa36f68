package subscription

import (
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg/pool/amm"
)

// Snapshot is one cached reserve state with its provenance.
type Snapshot struct {
	State     *amm.ReserveState
	Slot      uint64
	UpdatedAt time.Time
}

// Cache holds the latest reserve snapshot per pool. All methods are safe for
// concurrent use.
type Cache struct {
	mu        sync.RWMutex
	snapshots map[solana.PublicKey]Snapshot
}

func NewCache() *Cache {
	return &Cache{snapshots: make(map[solana.PublicKey]Snapshot)}
}

// Put stores the snapshot, replacing any older one for the same pool.
func (c *Cache) Put(poolID solana.PublicKey, state *amm.ReserveState, slot uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshots[poolID] = Snapshot{
		State:     state,
		Slot:      slot,
		UpdatedAt: time.Now(),
	}
}

// Get returns the latest snapshot for the pool.
func (c *Cache) Get(poolID solana.PublicKey) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snap, ok := c.snapshots[poolID]
	return snap, ok
}

// Remove drops the pool from the cache.
func (c *Cache) Remove(poolID solana.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snapshots, poolID)
}

// Size returns the number of cached pools.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snapshots)
}

// StalePoolIDs lists pools whose snapshot is older than maxAge.
func (c *Cache) StalePoolIDs(maxAge time.Duration) []solana.PublicKey {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := time.Now()
	stale := make([]solana.PublicKey, 0)
	for poolID, snap := range c.snapshots {
		if now.Sub(snap.UpdatedAt) > maxAge {
			stale = append(stale, poolID)
		}
	}
	return stale
}
