package api

// JSON types for the Raydium v3 pool catalog.

// Mint is the catalog's token metadata block.
type Mint struct {
	ChainID   uint32   `json:"chainId"`
	Address   string   `json:"address"`
	ProgramID string   `json:"programId"`
	LogoURI   string   `json:"logoURI"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Decimals  uint32   `json:"decimals"`
	Tags      []string `json:"tags"`
}

// Vault holds the pool vault addresses for sides A and B.
type Vault struct {
	A string `json:"A"`
	B string `json:"B"`
}

// PoolPeriod carries per-period trading stats (24h/7d/30d).
type PoolPeriod struct {
	Volume      float64   `json:"volume"`
	VolumeQuote float64   `json:"volumeQuote"`
	VolumeFee   float64   `json:"volumeFee"`
	Apr         float64   `json:"apr"`
	FeeApr      float64   `json:"feeApr"`
	PriceMin    float64   `json:"priceMin"`
	PriceMax    float64   `json:"priceMax"`
	RewardApr   []float64 `json:"rewardApr"`
}

// ClmmConfig is the concentrated pool's fee/tick configuration block.
type ClmmConfig struct {
	ID              string `json:"id"`
	Index           uint32 `json:"index"`
	ProtocolFeeRate uint64 `json:"protocolFeeRate"`
	TradeFeeRate    uint64 `json:"tradeFeeRate"`
	TickSpacing     uint64 `json:"tickSpacing"`
	FundFeeRate     uint64 `json:"fundFeeRate"`
}

// PoolInfo is one entry of /pools/info/mint and /pools/info/ids: pool
// metadata with price, reserves and ranking stats.
type PoolInfo struct {
	Type        string      `json:"type"`
	ProgramID   string      `json:"programId"`
	ID          string      `json:"id"`
	MintA       Mint        `json:"mintA"`
	MintB       Mint        `json:"mintB"`
	Price       float64     `json:"price"`
	MintAmountA float64     `json:"mintAmountA"`
	MintAmountB float64     `json:"mintAmountB"`
	FeeRate     float64     `json:"feeRate"`
	OpenTime    string      `json:"openTime"`
	TVL         float64     `json:"tvl"`
	Day         *PoolPeriod `json:"day"`
	Week        *PoolPeriod `json:"week"`
	Month       *PoolPeriod `json:"month"`
	Config      *ClmmConfig `json:"config"`
	BurnPercent float64     `json:"burnPercent"`
}

// PoolKeys is one entry of /pools/key/ids: every on-chain address needed to
// build a swap instruction. Standard pools fill the market fields,
// concentrated pools fill config/observation/exBitmap.
type PoolKeys struct {
	ProgramID          string      `json:"programId"`
	ID                 string      `json:"id"`
	MintA              Mint        `json:"mintA"`
	MintB              Mint        `json:"mintB"`
	LookupTableAccount string      `json:"lookupTableAccount"`
	OpenTime           string      `json:"openTime"`
	Vault              Vault       `json:"vault"`
	Authority          string      `json:"authority"`
	OpenOrders         string      `json:"openOrders"`
	TargetOrders       string      `json:"targetOrders"`
	MintLp             *Mint       `json:"mintLp"`
	MarketProgramID    string      `json:"marketProgramId"`
	MarketID           string      `json:"marketId"`
	MarketAuthority    string      `json:"marketAuthority"`
	MarketBaseVault    string      `json:"marketBaseVault"`
	MarketQuoteVault   string      `json:"marketQuoteVault"`
	MarketBids         string      `json:"marketBids"`
	MarketAsks         string      `json:"marketAsks"`
	MarketEventQueue   string      `json:"marketEventQueue"`
	Config             *ClmmConfig `json:"config"`
	ObservationID      string      `json:"observationId"`
	ExBitmapAccount    string      `json:"exBitmapAccount"`
}

// envelope is the common {id, success, data} wrapper of every v3 response.
type envelope[T any] struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
	Data    T      `json:"data"`
}

// poolPage is the data block of /pools/info/mint.
type poolPage struct {
	Count       uint32     `json:"count"`
	Data        []PoolInfo `json:"data"`
	HasNextPage bool       `json:"hasNextPage"`
}
