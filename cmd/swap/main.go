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

// Public Jito tip account, used when bundle submission is enabled.
var defaultTipAccount = solana.MustPublicKeyFromBase58("96gYZGLnJYVFmbjzopPSU6QiEV5fGqZNyN9nmNhvrZU5")

type SwapResponse struct {
	PoolID         string   `json:"poolId"`
	PoolType       string   `json:"poolType"`
	InputMint      string   `json:"inputMint"`
	OutputMint     string   `json:"outputMint"`
	InAmount       string   `json:"inAmount"`
	OutAmount      string   `json:"outAmount"`
	MinAmountOut   string   `json:"minAmountOut"`
	PriceImpactBps uint32   `json:"priceImpactBps"`
	Steps          []string `json:"steps"`
	Signature      string   `json:"signature,omitempty"`
	BundleID       string   `json:"bundleId,omitempty"`
	DryRun         bool     `json:"dryRun,omitempty"`
}

type SwapError struct {
	Error string `json:"error"`
}

var (
	rpcEndpoints = flag.String("rpc", "", "Comma-separated Solana RPC endpoints (reads from .env if not specified)")
	apiBaseURL   = flag.String("api", "", "Pool catalog base URL (defaults to the public endpoint)")
	keypairPath  = flag.String("keypair", "", "Path to the signing keypair file (reads KEYPAIR_PATH if not specified)")
	inputMint    = flag.String("input", "", "Input token mint address (required)")
	outputMint   = flag.String("output", "", "Output token mint address (required)")
	amount       = flag.String("amount", "", "Input amount in smallest units (required)")
	poolID       = flag.String("pool", "", "Swap against a specific pool ID instead of the top-ranked pool")
	poolType     = flag.String("type", "standard", "Pool type to search: standard or concentrated")
	slippageBps  = flag.Int("slippage", 50, "Slippage tolerance in basis points (default: 50 = 0.5%)")
	cuLimit      = flag.Uint("cu-limit", 0, "Compute unit limit (0 = omit)")
	cuPrice      = flag.Uint64("cu-price", 0, "Compute unit price in micro-lamports (0 = omit)")
	useBundle    = flag.Bool("bundle", false, "Submit as a Jito bundle with a tip instead of sendTransaction")
	tipLamports  = flag.Uint64("tip", 10000, "Tip in lamports when submitting a bundle")
	dryRun       = flag.Bool("dry-run", false, "Assemble and print the plan without signing or submitting")
	rateLimit    = flag.Int("ratelimit", 0, "RPC requests per second limit per endpoint")
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

	path := *keypairPath
	if path == "" {
		path = config.GetKeypairPath()
	}
	if path == "" && !*dryRun {
		fatal("No keypair configured. Set KEYPAIR_PATH in .env or use -keypair flag")
	}

	var signer solana.PrivateKey
	var payer solana.PublicKey
	if path != "" {
		signer, err = solana.PrivateKeyFromSolanaKeygenFile(path)
		if err != nil {
			fatal(fmt.Sprintf("Failed to load keypair: %v", err))
		}
		payer = signer.PublicKey()
	}

	ctx := context.Background()
	solClient := newSolClient(ctx)
	catalog := api.NewClient(*apiBaseURL)

	id := *poolID
	if id == "" {
		it := catalog.FetchPoolsByMints(ctx, inTokenAddr.String(), outTokenAddr.String(), searchType, api.FetchOpts{
			SortField: api.SortLiquidity,
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

	assembleReq := swap.AssembleRequest{
		Keys:                          keys,
		Pool:                          state,
		Quote:                         result,
		Payer:                         payer,
		ComputeUnitLimit:              uint32(*cuLimit),
		ComputeUnitPriceMicroLamports: *cuPrice,
	}
	if *useBundle {
		assembleReq.TipAccount = defaultTipAccount
		assembleReq.TipLamports = *tipLamports
	}
	if *dryRun && payer.IsZero() {
		// Plans need a payer even when nothing is submitted.
		assembleReq.Payer = solana.NewWallet().PublicKey()
	}

	assembler := swap.NewAssembler(solClient)
	plan, err := assembler.Assemble(ctx, assembleReq)
	if err != nil {
		fatal(fmt.Sprintf("Failed to assemble swap: %v", err))
	}

	response := SwapResponse{
		PoolID:         id,
		PoolType:       keys.Type.String(),
		InputMint:      result.InputMint.String(),
		OutputMint:     result.OutputMint.String(),
		InAmount:       strconv.FormatUint(result.AmountIn, 10),
		OutAmount:      strconv.FormatUint(result.AmountOut, 10),
		MinAmountOut:   strconv.FormatUint(result.MinAmountOut, 10),
		PriceImpactBps: result.PriceImpactBps,
	}
	for _, step := range plan.Steps() {
		response.Steps = append(response.Steps, step.Kind.String())
	}

	blockhash, err := solClient.GetLatestBlockhash(ctx)
	if err != nil {
		fatal(fmt.Sprintf("Failed to get blockhash: %v", err))
	}

	tx, err := plan.Transaction(blockhash)
	if err != nil {
		fatal(fmt.Sprintf("Failed to build transaction: %v", err))
	}

	if *dryRun {
		response.DryRun = true
		printResponse(response)
		return
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &signer
		}
		return nil
	}); err != nil {
		fatal(fmt.Sprintf("Failed to sign transaction: %v", err))
	}

	if *useBundle {
		bundleID, err := solClient.SendBundle(ctx, []*solana.Transaction{tx})
		if err != nil {
			fatal(fmt.Sprintf("Failed to submit bundle: %v", err))
		}
		response.BundleID = bundleID
	} else {
		sig, err := solClient.SendTransaction(ctx, tx)
		if err != nil {
			fatal(fmt.Sprintf("Failed to submit transaction: %v", err))
		}
		response.Signature = sig.String()
	}

	printResponse(response)
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

	jitoEndpoint := ""
	if *useBundle {
		jitoEndpoint = config.GetJitoEndpoint()
		if jitoEndpoint == "" {
			fatal("Bundle submission requires JITO_ENDPOINT in .env")
		}
	}

	if len(endpoints) > 1 {
		pool, err := sol.NewRPCPool(ctx, endpoints, jitoEndpoint, limit)
		if err != nil {
			fatal(fmt.Sprintf("Failed to create RPC pool: %v", err))
		}
		return pool.Next()
	}

	client, err := sol.NewClient(ctx, endpoints[0], jitoEndpoint, limit)
	if err != nil {
		fatal(fmt.Sprintf("Failed to create Solana client: %v", err))
	}
	return client
}

func printResponse(response SwapResponse) {
	jsonData, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		fatal(fmt.Sprintf("Failed to marshal JSON: %v", err))
	}
	fmt.Println(string(jsonData))
}

func fatal(msg string) {
	jsonData, _ := json.MarshalIndent(SwapError{Error: msg}, "", "  ")
	fmt.Fprintln(os.Stderr, string(jsonData))
	os.Exit(1)
}
