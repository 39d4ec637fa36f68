package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"

	"rayswap/pkg"
	"rayswap/pkg/api"
	"rayswap/pkg/config"
	"rayswap/pkg/pool/amm"
	"rayswap/pkg/pool/clmm"
	"rayswap/pkg/quote"
	"rayswap/pkg/sol"
	"rayswap/pkg/swap"
)

type QuoteResponse struct {
	PoolID               string `json:"poolId"`
	PoolType             string `json:"poolType"`
	InputMint            string `json:"inputMint"`
	OutputMint           string `json:"outputMint"`
	InAmount             string `json:"inAmount"`
	OutAmount            string `json:"outAmount"`
	OtherAmountThreshold string `json:"otherAmountThreshold"`
	FeeAmount            string `json:"feeAmount"`
	PriceImpactBps       uint32 `json:"priceImpactBps"`
	SlippageBps          int    `json:"slippageBps"`
}

type QuoteError struct {
	Error string `json:"error"`
}

var (
	rpcEndpoints = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads from .env if not specified)")
	apiBaseURL   = flag.String("api", "", "Pool catalog base URL (defaults to the public endpoint)")
	inputMint    = flag.String("input", "", "Input token mint address (required)")
	outputMint   = flag.String("output", "", "Output token mint address (required)")
	amount       = flag.String("amount", "", "Input amount in smallest units (required)")
	poolID       = flag.String("pool", "", "Quote a specific pool ID instead of the top-ranked pool")
	poolType     = flag.String("type", "standard", "Pool type to search: standard or concentrated")
	sortField    = flag.String("sort", "liquidity", "Catalog ranking field (default, liquidity, volume24h, ...)")
	slippageBps  = flag.Int("slippage", 50, "Slippage tolerance in basis points (default: 50 = 0.5%)")
	rateLimit    = flag.Int("ratelimit", 0, "RPC requests per second limit per endpoint")
	jsonOutput   = flag.Bool("json", true, "Output as JSON (default: true)")
)

func main() {
	if err := config.LoadEnv(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	flag.Parse()

	if *inputMint == "" || *outputMint == "" || *amount == "" {
		fmt.Fprintln(os.Stderr, "Error: Missing required arguments")
		fmt.Fprintln(os.Stderr, "\nUsage:")
		flag.PrintDefaults()
		fmt.Fprintln(os.Stderr, "\nExample:")
		fmt.Fprintln(os.Stderr, "  quote -input So11111111111111111111111111111111111111112 \\")
		fmt.Fprintln(os.Stderr, "        -output EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v \\")
		fmt.Fprintln(os.Stderr, "        -amount 1000000000")
		os.Exit(1)
	}

	inTokenAddr, err := solana.PublicKeyFromBase58(*inputMint)
	if err != nil {
		fatal(fmt.Sprintf("Invalid input mint address: %v", err))
	}
	outTokenAddr, err := solana.PublicKeyFromBase58(*outputMint)
	if err != nil {
		fatal(fmt.Sprintf("Invalid output mint address: %v", err))
	}

	amountIn, err := strconv.ParseUint(*amount, 10, 64)
	if err != nil || amountIn == 0 {
		fatal("Invalid amount: must be a positive integer")
	}
	if *slippageBps < 0 || *slippageBps >= 10000 {
		fatal("Invalid slippage: must be in [0, 10000)")
	}

	searchType, ok := pkg.ParsePoolType(*poolType)
	if !ok {
		fatal(fmt.Sprintf("Invalid pool type %q", *poolType))
	}
	sort, ok := api.ParseSortField(*sortField)
	if !ok {
		fatal(fmt.Sprintf("Invalid sort field %q", *sortField))
	}

	ctx := context.Background()
	solClient := newSolClient(ctx)
	catalog := api.NewClient(*apiBaseURL)

	// Resolve the pool: explicit ID, or the top-ranked pool for the pair.
	id := *poolID
	if id == "" {
		it := catalog.FetchPoolsByMints(ctx, inTokenAddr.String(), outTokenAddr.String(), searchType, api.FetchOpts{
			SortField: sort,
		})
		pool, err := it.Next(ctx)
		if err != nil {
			fatal(fmt.Sprintf("Failed to query pools: %v", err))
		}
		if pool == nil {
			fatal("No pools found for this token pair")
		}
		id = pool.ID
	}

	rawKeys, err := catalog.FetchPoolKeysByID(ctx, id)
	if err != nil {
		fatal(fmt.Sprintf("Failed to fetch pool keys: %v", err))
	}
	keys, err := swap.PoolKeysFromAPI(rawKeys)
	if err != nil {
		fatal(fmt.Sprintf("Invalid pool keys: %v", err))
	}

	var state quote.PoolState
	switch keys.Type {
	case pkg.PoolTypeStandard:
		reserves, err := amm.FetchReserveState(ctx, solClient, keys.ID)
		if err != nil {
			fatal(fmt.Sprintf("Failed to read pool state: %v", err))
		}
		state = quote.PoolState{Type: pkg.PoolTypeStandard, Standard: reserves}
	case pkg.PoolTypeConcentrated:
		zeroForOne := keys.MintA.Equals(inTokenAddr)
		ticks, err := clmm.FetchTickState(ctx, solClient, keys.ProgramID, keys.ID, zeroForOne)
		if err != nil {
			fatal(fmt.Sprintf("Failed to read pool state: %v", err))
		}
		state = quote.PoolState{Type: pkg.PoolTypeConcentrated, Concentrated: ticks}
	}

	result, err := quote.Compute(quote.Request{
		Pool:        state,
		InputMint:   inTokenAddr,
		AmountIn:    amountIn,
		SlippageBps: uint16(*slippageBps),
	})
	if err != nil {
		fatal(fmt.Sprintf("Failed to compute quote: %v", err))
	}

	response := QuoteResponse{
		PoolID:               id,
		PoolType:             keys.Type.String(),
		InputMint:            result.InputMint.String(),
		OutputMint:           result.OutputMint.String(),
		InAmount:             strconv.FormatUint(result.AmountIn, 10),
		OutAmount:            strconv.FormatUint(result.AmountOut, 10),
		OtherAmountThreshold: strconv.FormatUint(result.MinAmountOut, 10),
		FeeAmount:            strconv.FormatUint(result.FeeAmount, 10),
		PriceImpactBps:       result.PriceImpactBps,
		SlippageBps:          *slippageBps,
	}

	if *jsonOutput {
		jsonData, err := json.MarshalIndent(response, "", "  ")
		if err != nil {
			fatal(fmt.Sprintf("Failed to marshal JSON: %v", err))
		}
		fmt.Println(string(jsonData))
	} else {
		fmt.Printf("\n=== Quote Results ===\n")
		fmt.Printf("Pool: %s (%s)\n", id, keys.Type)
		fmt.Printf("Input: %d %s\n", result.AmountIn, *inputMint)
		fmt.Printf("Output: %d %s\n", result.AmountOut, *outputMint)
		fmt.Printf("Fee: %d\n", result.FeeAmount)
		fmt.Printf("Price impact: %d bps\n", result.PriceImpactBps)
		fmt.Printf("Minimum Output (with %d bps slippage): %d\n", *slippageBps, result.MinAmountOut)
	}
}

func newSolClient(ctx context.Context) *sol.Client {
	var endpoints []string
	if *rpcEndpoints != "" {
		for _, endpoint := range strings.Split(*rpcEndpoints, ",") {
			if trimmed := strings.TrimSpace(endpoint); trimmed != "" {
				endpoints = append(endpoints, trimmed)
			}
		}
	} else {
		endpoints = config.GetRPCEndpoints()
	}
	if len(endpoints) == 0 {
		fatal("No RPC endpoints configured. Set RPC_ENDPOINTS in .env or use -rpc flag")
	}

	limit := *rateLimit
	if limit <= 0 {
		limit = config.GetRPCRateLimit()
	}

	if len(endpoints) > 1 {
		pool, err := sol.NewRPCPool(ctx, endpoints, "", limit)
		if err != nil {
			fatal(fmt.Sprintf("Failed to create RPC pool: %v", err))
		}
		return pool.Next()
	}

	client, err := sol.NewClient(ctx, endpoints[0], "", limit)
	if err != nil {
		fatal(fmt.Sprintf("Failed to create Solana client: %v", err))
	}
	return client
}

func fatal(msg string) {
	if *jsonOutput {
		jsonData, _ := json.MarshalIndent(QuoteError{Error: msg}, "", "  ")
		fmt.Fprintln(os.Stderr, string(jsonData))
	} else {
		log.Println("Error:", msg)
	}
	os.Exit(1)
}
