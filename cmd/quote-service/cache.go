package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"rayswap/pkg"
	"rayswap/pkg/api"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/pool/clmm"
	"rayswap/pkg/quote"
	"rayswap/pkg/sol"
	"rayswap/pkg/swap"
)

// QuoteCache computes quotes on demand and keeps a configured set of pairs
// warm with a periodic refresh loop.
type QuoteCache struct {
	solClient   *sol.Client
	catalog     *api.Client
	slippageBps int
	logger      *zap.Logger

	mu     sync.RWMutex
	quotes map[string]*CachedQuote
}

func NewQuoteCache(ctx context.Context, endpoints []string, rateLimit, slippageBps int, apiBaseURL string, logger *zap.Logger) (*QuoteCache, error) {
	var solClient *sol.Client
	if len(endpoints) > 1 {
		pool, err := sol.NewRPCPool(ctx, endpoints, "", rateLimit)
		if err != nil {
			return nil, err
		}
		solClient = pool.Next()
	} else {
		var err error
		solClient, err = sol.NewClient(ctx, endpoints[0], "", rateLimit)
		if err != nil {
			return nil, err
		}
	}

	return &QuoteCache{
		solClient:   solClient,
		catalog:     api.NewClient(apiBaseURL),
		slippageBps: slippageBps,
		logger:      logger,
		quotes:      make(map[string]*CachedQuote),
	}, nil
}

func cacheKey(inputMint, outputMint, amount string) string {
	return inputMint + ":" + outputMint + ":" + amount
}

// GetQuote returns the cached quote for the pair, if any.
func (qc *QuoteCache) GetQuote(inputMint, outputMint, amount string) (*CachedQuote, bool) {
	qc.mu.RLock()
	defer qc.mu.RUnlock()
	cached, ok := qc.quotes[cacheKey(inputMint, outputMint, amount)]
	return cached, ok
}

// GetAllCached returns every cached quote.
func (qc *QuoteCache) GetAllCached() []*CachedQuote {
	qc.mu.RLock()
	defer qc.mu.RUnlock()

	out := make([]*CachedQuote, 0, len(qc.quotes))
	for _, cached := range qc.quotes {
		out = append(out, cached)
	}
	return out
}

// StartPeriodicRefresh recomputes the configured pairs until the context is
// cancelled.
func (qc *QuoteCache) StartPeriodicRefresh(ctx context.Context, pairs []QuotePair, interval time.Duration) {
	qc.refreshAll(ctx, pairs)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			qc.refreshAll(ctx, pairs)
		}
	}
}

func (qc *QuoteCache) refreshAll(ctx context.Context, pairs []QuotePair) {
	for _, pair := range pairs {
		cached, err := qc.Calculate(ctx, pair.InputMint, pair.OutputMint, pair.Amount, qc.slippageBps)
		if err != nil {
			qc.logger.Warn("quote refresh failed",
				zap.String("pair", pair.Label),
				zap.Error(err))
			continue
		}

		qc.mu.Lock()
		qc.quotes[cacheKey(pair.InputMint, pair.OutputMint, pair.Amount)] = cached
		qc.mu.Unlock()

		qc.logger.Info("quote refreshed",
			zap.String("pair", pair.Label),
			zap.String("out", cached.OutAmount))
	}
}

// Calculate prices the pair against the top-ranked standard and concentrated
// pool and returns the better of the two quotes.
func (qc *QuoteCache) Calculate(ctx context.Context, inputMint, outputMint, amount string, slippageBps int) (*CachedQuote, error) {
	start := time.Now()

	inTokenAddr, err := solana.PublicKeyFromBase58(inputMint)
	if err != nil {
		return nil, fmt.Errorf("invalid input mint: %w", err)
	}
	if _, err := solana.PublicKeyFromBase58(outputMint); err != nil {
		return nil, fmt.Errorf("invalid output mint: %w", err)
	}
	amountIn, err := strconv.ParseUint(amount, 10, 64)
	if err != nil || amountIn == 0 {
		return nil, fmt.Errorf("invalid amount %q", amount)
	}

	var best *CachedQuote
	var bestOut uint64
	for _, poolType := range []pkg.PoolType{pkg.PoolTypeStandard, pkg.PoolTypeConcentrated} {
		candidate, err := qc.quotePoolType(ctx, inTokenAddr, inputMint, outputMint, amountIn, poolType, slippageBps)
		if err != nil {
			qc.logger.Debug("pool type skipped",
				zap.String("type", poolType.String()),
				zap.Error(err))
			continue
		}
		out, _ := strconv.ParseUint(candidate.OutAmount, 10, 64)
		if best == nil || out > bestOut {
			best, bestOut = candidate, out
		}
	}

	if best == nil {
		return nil, fmt.Errorf("no quotable pool found for %s -> %s", inputMint, outputMint)
	}

	best.LastUpdate = time.Now()
	best.TimeTaken = time.Since(start).Round(time.Millisecond).String()
	return best, nil
}

func (qc *QuoteCache) quotePoolType(ctx context.Context, inTokenAddr solana.PublicKey, inputMint, outputMint string, amountIn uint64, poolType pkg.PoolType, slippageBps int) (*CachedQuote, error) {
	it := qc.catalog.FetchPoolsByMints(ctx, inputMint, outputMint, poolType, api.FetchOpts{
		SortField: api.SortLiquidity,
	})
	pool, err := it.Next(ctx)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		return nil, fmt.Errorf("no %s pools", poolType)
	}

	rawKeys, err := qc.catalog.FetchPoolKeysByID(ctx, pool.ID)
	if err != nil {
		return nil, err
	}
	keys, err := swap.PoolKeysFromAPI(rawKeys)
	if err != nil {
		return nil, err
	}

	var state quote.PoolState
	switch keys.Type {
	case pkg.PoolTypeStandard:
		reserves, err := amm.FetchReserveState(ctx, qc.solClient, keys.ID)
		if err != nil {
			return nil, err
		}
		state = quote.PoolState{Type: pkg.PoolTypeStandard, Standard: reserves}
	case pkg.PoolTypeConcentrated:
		zeroForOne := keys.MintA.Equals(inTokenAddr)
		ticks, err := clmm.FetchTickState(ctx, qc.solClient, keys.ProgramID, keys.ID, zeroForOne)
		if err != nil {
			return nil, err
		}
		state = quote.PoolState{Type: pkg.PoolTypeConcentrated, Concentrated: ticks}
	}

	result, err := quote.Compute(quote.Request{
		Pool:        state,
		InputMint:   inTokenAddr,
		AmountIn:    amountIn,
		SlippageBps: uint16(slippageBps),
	})
	if err != nil {
		return nil, err
	}

	return &CachedQuote{
		PoolID:               pool.ID,
		PoolType:             keys.Type.String(),
		InputMint:            result.InputMint.String(),
		OutputMint:           result.OutputMint.String(),
		InAmount:             strconv.FormatUint(result.AmountIn, 10),
		OutAmount:            strconv.FormatUint(result.AmountOut, 10),
		OtherAmountThreshold: strconv.FormatUint(result.MinAmountOut, 10),
		FeeAmount:            strconv.FormatUint(result.FeeAmount, 10),
		PriceImpactBps:       result.PriceImpactBps,
		SlippageBps:          slippageBps,
	}, nil
}
