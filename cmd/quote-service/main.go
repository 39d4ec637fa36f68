package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rayswap/pkg"
	"rayswap/pkg/config"
)

var (
	rpcEndpoints    = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads from .env if not specified)")
	apiBaseURL      = flag.String("api", "", "Pool catalog base URL (defaults to the public endpoint)")
	port            = flag.Int("port", 8080, "HTTP server port")
	refreshInterval = flag.Int("refresh", 30, "Quote refresh interval in seconds")
	rateLimit       = flag.Int("ratelimit", 0, "RPC requests per second per endpoint")
	slippageBps     = flag.Int("slippage", 50, "Slippage tolerance in basis points")
)

// USDC mint, paired with wrapped SOL for the default warm quotes.
const usdcMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

var (
	quoteCache *QuoteCache
	startTime  time.Time
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	flag.Parse()

	startTime = time.Now()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	var endpoints []string
	if *rpcEndpoints != "" {
		for _, endpoint := range strings.Split(*rpcEndpoints, ",") {
			if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
				endpoints = append(endpoints, trimmed)
			}
		}
	} else {
		endpoints = config.GetRPCEndpoints()
		if len(endpoints) == 0 {
			logger.Fatal("no RPC endpoints configured, set RPC_ENDPOINTS in .env or use -rpc flag")
		}
	}

	limit := *rateLimit
	if limit <= 0 {
		limit = config.GetRPCRateLimit()
	}

	logger.Info("starting quote service",
		zap.Int("port", *port),
		zap.Int("refreshSeconds", *refreshInterval),
		zap.Int("endpoints", len(endpoints)),
		zap.Int("slippageBps", *slippageBps))

	quoteCache, err = NewQuoteCache(ctx, endpoints, limit, *slippageBps, *apiBaseURL, logger)
	if err != nil {
		logger.Fatal("failed to create quote cache", zap.Error(err))
	}

	quotePairs := []QuotePair{
		{
			InputMint:  pkg.WSOLMint.String(),
			OutputMint: usdcMint,
			Amount:     "1000000000", // 1 SOL
			Label:      "SOL->USDC (1 SOL)",
		},
		{
			InputMint:  usdcMint,
			OutputMint: pkg.WSOLMint.String(),
			Amount:     "10000000", // 10 USDC
			Label:      "USDC->SOL (10 USDC)",
		},
	}

	go quoteCache.StartPeriodicRefresh(ctx, quotePairs, time.Duration(*refreshInterval)*time.Second)

	mux := http.NewServeMux()
	mux.HandleFunc("/quote", handleQuote)
	mux.HandleFunc("/health", handleHealth)
	mux.HandleFunc("/", handleRoot)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", *port),
		Handler: corsMiddleware(mux),
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown error", zap.Error(err))
		}
		cancel()
	}()

	logger.Info("server listening", zap.Int("port", *port))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}

func handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	allQuotes := quoteCache.GetAllCached()
	response := map[string]interface{}{
		"service":      "rayswap quote service",
		"status":       "running",
		"cachedQuotes": len(allQuotes),
		"quotes":       allQuotes,
		"endpoints": map[string]string{
			"quote":  "/quote?input=<mint>&output=<mint>&amount=<amount>&slippageBps=<bps>",
			"health": "/health",
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	inputMint := r.URL.Query().Get("input")
	outputMint := r.URL.Query().Get("output")
	amount := r.URL.Query().Get("amount")
	slippageParam := r.URL.Query().Get("slippageBps")

	if inputMint == "" || outputMint == "" || amount == "" {
		writeError(w, "Missing required parameters: input, output, amount", http.StatusBadRequest)
		return
	}

	slippage := *slippageBps
	if slippageParam != "" {
		custom, err := strconv.Atoi(slippageParam)
		if err != nil || custom < 0 || custom >= 10000 {
			writeError(w, "Invalid slippageBps parameter (must be 0-9999)", http.StatusBadRequest)
			return
		}
		slippage = custom
	}

	// Serve from the warm cache when the request matches a refreshed pair.
	if slippage == *slippageBps {
		if cached, ok := quoteCache.GetQuote(inputMint, outputMint, amount); ok {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(cached)
			return
		}
	}

	result, err := quoteCache.Calculate(r.Context(), inputMint, outputMint, amount, slippage)
	if err != nil {
		writeError(w, fmt.Sprintf("Failed to calculate quote: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	allQuotes := quoteCache.GetAllCached()

	var lastUpdate time.Time
	for _, cached := range allQuotes {
		if cached.LastUpdate.After(lastUpdate) {
			lastUpdate = cached.LastUpdate
		}
	}

	health := HealthResponse{
		Status:       "healthy",
		LastUpdate:   lastUpdate,
		CachedQuotes: len(allQuotes),
		Uptime:       time.Since(startTime).Round(time.Second).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(QuoteError{Error: message})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
