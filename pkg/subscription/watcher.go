package subscription

import (
	"context"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"rayswap/pkg"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/sol"
)

// UpdateHandler is called after every cache refresh for a watched pool.
type UpdateHandler func(poolID solana.PublicKey, state *amm.ReserveState, slot uint64)

// ReserveWatcher keeps standard-pool reserve snapshots current. It seeds
// each pool with one RPC read, then tracks the pool account and both vaults
// over the websocket, recomputing reserves on every notification.
type ReserveWatcher struct {
	ws     *sol.Client
	wsConn *WSClient
	cache  *Cache
	logger *zap.Logger

	mu       sync.Mutex
	pools    map[solana.PublicKey]*watchedPool
	handlers map[solana.PublicKey]UpdateHandler
}

type watchedPool struct {
	poolID       solana.PublicKey
	layout       *amm.LiquidityStateV4
	baseBalance  uint64
	quoteBalance uint64
	subIDs       []uint64
}

// NewReserveWatcher connects to the websocket endpoint. rpcClient is used
// only for the initial snapshot of each watched pool.
func NewReserveWatcher(ctx context.Context, rpcClient *sol.Client, wsURL string, logger *zap.Logger) (*ReserveWatcher, error) {
	wsConn, err := NewWSClient(ctx, wsURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create websocket client: %w", err)
	}

	return &ReserveWatcher{
		ws:       rpcClient,
		wsConn:   wsConn,
		cache:    NewCache(),
		logger:   logger,
		pools:    make(map[solana.PublicKey]*watchedPool),
		handlers: make(map[solana.PublicKey]UpdateHandler),
	}, nil
}

// Cache exposes the snapshot cache. Callers read quotes from here; the
// watcher only ever writes newer snapshots.
func (w *ReserveWatcher) Cache() *Cache { return w.cache }

// WatchPool starts tracking a standard pool. Watching an already-watched
// pool is a no-op.
func (w *ReserveWatcher) WatchPool(ctx context.Context, poolID solana.PublicKey) error {
	w.mu.Lock()
	if _, exists := w.pools[poolID]; exists {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	account, err := w.ws.GetAccountInfoWithOpts(ctx, poolID)
	if err != nil {
		return fmt.Errorf("failed to fetch pool account: %w", err)
	}
	if account == nil || account.Value == nil {
		return &pkg.StateReadError{Account: poolID.String(), Err: fmt.Errorf("account not found")}
	}

	layout, err := amm.DecodeLiquidityStateV4(account.Value.Data.GetBinary())
	if err != nil {
		return &pkg.StateReadError{Account: poolID.String(), Err: err}
	}

	vaults := []solana.PublicKey{layout.BaseVault, layout.QuoteVault}
	results, err := w.ws.GetMultipleAccountsWithOpts(ctx, vaults)
	if err != nil {
		return fmt.Errorf("failed to fetch vault accounts: %w", err)
	}

	entry := &watchedPool{poolID: poolID, layout: layout}
	for i, result := range results.Value {
		if result == nil {
			return &pkg.StateReadError{Account: vaults[i].String(), Err: fmt.Errorf("vault account not found")}
		}
		amount, err := amm.DecodeTokenAccountAmount(result.Data.GetBinary())
		if err != nil {
			return &pkg.StateReadError{Account: vaults[i].String(), Err: err}
		}
		if i == 0 {
			entry.baseBalance = amount
		} else {
			entry.quoteBalance = amount
		}
	}

	w.mu.Lock()
	w.pools[poolID] = entry
	w.mu.Unlock()

	w.refresh(entry, 0)

	accounts := []solana.PublicKey{poolID, layout.BaseVault, layout.QuoteVault}
	for _, watched := range accounts {
		subID, err := w.wsConn.SubscribeAccount(watched, func(account solana.PublicKey, data []byte, slot uint64) {
			w.handleUpdate(poolID, account, data, slot)
		})
		if err != nil {
			w.logger.Warn("account subscription failed",
				zap.String("pool", poolID.String()),
				zap.String("account", watched.String()),
				zap.Error(err))
			continue
		}
		w.mu.Lock()
		entry.subIDs = append(entry.subIDs, subID)
		w.mu.Unlock()
	}

	w.logger.Info("watching pool",
		zap.String("pool", poolID.String()),
		zap.Int("accounts", len(accounts)))
	return nil
}

// UnwatchPool stops tracking a pool and evicts its snapshot.
func (w *ReserveWatcher) UnwatchPool(poolID solana.PublicKey) {
	w.mu.Lock()
	entry, exists := w.pools[poolID]
	if exists {
		delete(w.pools, poolID)
		delete(w.handlers, poolID)
	}
	w.mu.Unlock()

	if !exists {
		return
	}
	for _, subID := range entry.subIDs {
		if err := w.wsConn.Unsubscribe(subID); err != nil {
			w.logger.Warn("unsubscribe failed",
				zap.String("pool", poolID.String()),
				zap.Error(err))
		}
	}
	w.cache.Remove(poolID)
}

// OnUpdate registers a handler invoked after each refresh of the pool.
func (w *ReserveWatcher) OnUpdate(poolID solana.PublicKey, handler UpdateHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[poolID] = handler
}

// IsConnected reports the websocket connection state.
func (w *ReserveWatcher) IsConnected() bool { return w.wsConn.IsConnected() }

// Close stops all subscriptions and the websocket connection.
func (w *ReserveWatcher) Close() error {
	w.mu.Lock()
	poolIDs := make([]solana.PublicKey, 0, len(w.pools))
	for poolID := range w.pools {
		poolIDs = append(poolIDs, poolID)
	}
	w.mu.Unlock()

	for _, poolID := range poolIDs {
		w.UnwatchPool(poolID)
	}
	return w.wsConn.Close()
}

func (w *ReserveWatcher) handleUpdate(poolID, account solana.PublicKey, data []byte, slot uint64) {
	w.mu.Lock()
	entry, exists := w.pools[poolID]
	if !exists {
		w.mu.Unlock()
		return
	}

	switch account {
	case poolID:
		layout, err := amm.DecodeLiquidityStateV4(data)
		if err != nil {
			w.mu.Unlock()
			w.logger.Warn("pool account decode failed",
				zap.String("pool", poolID.String()),
				zap.Error(err))
			return
		}
		entry.layout = layout
	case entry.layout.BaseVault, entry.layout.QuoteVault:
		amount, err := amm.DecodeTokenAccountAmount(data)
		if err != nil {
			w.mu.Unlock()
			w.logger.Warn("vault account decode failed",
				zap.String("account", account.String()),
				zap.Error(err))
			return
		}
		if account == entry.layout.BaseVault {
			entry.baseBalance = amount
		} else {
			entry.quoteBalance = amount
		}
	default:
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.refresh(entry, slot)
}

// refresh recomputes the reserve snapshot and publishes it to the cache.
func (w *ReserveWatcher) refresh(entry *watchedPool, slot uint64) {
	w.mu.Lock()
	layout := entry.layout
	baseBalance, quoteBalance := entry.baseBalance, entry.quoteBalance
	handler := w.handlers[entry.poolID]
	w.mu.Unlock()

	if baseBalance < layout.BaseNeedTakePnl || quoteBalance < layout.QuoteNeedTakePnl {
		w.logger.Warn("vault balance below pending pnl, snapshot skipped",
			zap.String("pool", entry.poolID.String()))
		return
	}

	state := &amm.ReserveState{
		PoolID:         entry.poolID,
		BaseMint:       layout.BaseMint,
		QuoteMint:      layout.QuoteMint,
		ReserveBase:    baseBalance - layout.BaseNeedTakePnl,
		ReserveQuote:   quoteBalance - layout.QuoteNeedTakePnl,
		FeeNumerator:   layout.SwapFeeNumerator,
		FeeDenominator: layout.SwapFeeDenominator,
	}
	w.cache.Put(entry.poolID, state, slot)

	if handler != nil {
		handler(entry.poolID, state, slot)
	}
}
