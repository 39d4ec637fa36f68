package main

import (
	"time"
)

type CachedQuote struct {
	PoolID               string    `json:"poolId"`
	PoolType             string    `json:"poolType"`
	InputMint            string    `json:"inputMint"`
	OutputMint           string    `json:"outputMint"`
	InAmount             string    `json:"inAmount"`
	OutAmount            string    `json:"outAmount"`
	OtherAmountThreshold string    `json:"otherAmountThreshold"`
	FeeAmount            string    `json:"feeAmount"`
	PriceImpactBps       uint32    `json:"priceImpactBps"`
	SlippageBps          int       `json:"slippageBps"`
	LastUpdate           time.Time `json:"lastUpdate"`
	TimeTaken            string    `json:"timeTaken"`
}

// QuotePair is one pair the service keeps warm in the cache.
type QuotePair struct {
	InputMint  string
	OutputMint string
	Amount     string
	Label      string
}

type QuoteError struct {
	Error string `json:"error"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	LastUpdate   time.Time `json:"lastUpdate"`
	CachedQuotes int       `json:"cachedQuotes"`
	Uptime       string    `json:"uptime"`
}
