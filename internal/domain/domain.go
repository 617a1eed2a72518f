package domain

import "time"

// Kind tags one aggregated data family. It selects the normalized shape,
// the cache TTL, and the snapshot table a value is persisted to.
type Kind string

const (
	KindGasPrice            Kind = "gas_price"
	KindSpotPrice           Kind = "spot_price"
	KindMarketGlobal        Kind = "market_global"
	KindMarketGlobalHistory Kind = "market_global_history"
	KindSentimentIndex      Kind = "sentiment_index"
	KindAltseasonIndex      Kind = "altseason_index"
	KindNewsFeed            Kind = "news_feed"
	KindTrendingTokens      Kind = "trending_tokens"
	KindDerivatives         Kind = "derivatives"
)

// GasUnit is the native fee unit a blockchain quotes gas in.
type GasUnit string

const (
	UnitGwei     GasUnit = "gwei"
	UnitSatVByte GasUnit = "sat/vB"
	UnitTON      GasUnit = "ton"
	UnitLamport  GasUnit = "lamports"
)

// GasQuote holds the three fee tiers for one blockchain.
// Providers are expected to return slow <= standard <= fast but none of them
// guarantee it; TierOrderOK lets callers log a data-quality warning.
type GasQuote struct {
	Blockchain string    `json:"blockchain"`
	Slow       float64   `json:"slow"`
	Standard   float64   `json:"standard"`
	Fast       float64   `json:"fast"`
	Unit       GasUnit   `json:"unit"`
	Source     string    `json:"source"`
	ObservedAt time.Time `json:"observed_at"`
}

func (q GasQuote) TierOrderOK() bool {
	return q.Slow <= q.Standard && q.Standard <= q.Fast
}

// GasQuoteUSD extends a quote with the fiat value of a typical transaction
// per tier. Zero values mean no spot price was available.
type GasQuoteUSD struct {
	GasQuote
	SlowUSD     float64 `json:"slow_usd"`
	StandardUSD float64 `json:"standard_usd"`
	FastUSD     float64 `json:"fast_usd"`
}

// SpotPrice is the current USD price of one asset.
type SpotPrice struct {
	Symbol       string    `json:"symbol"`
	PriceUSD     float64   `json:"price_usd"`
	Change24hPct float64   `json:"change_24h_pct"`
	ObservedAt   time.Time `json:"observed_at"`
}

// GlobalMarketSnapshot is one observation of market-wide aggregates.
type GlobalMarketSnapshot struct {
	TotalMarketCapUSD float64   `json:"total_market_cap_usd"`
	TotalVolumeUSD    float64   `json:"total_volume_usd"`
	BTCDominancePct   float64   `json:"btc_dominance_pct"`
	ETHDominancePct   float64   `json:"eth_dominance_pct"`
	ObservedAt        time.Time `json:"observed_at"`
}

// MarketCapPoint is one history sample for the market-cap chart.
type MarketCapPoint struct {
	Timestamp    time.Time `json:"timestamp"`
	MarketCapUSD float64   `json:"market_cap_usd"`
	VolumeUSD    float64   `json:"volume_usd"`
}

// SentimentClass is the five-bucket label shared by the Fear & Greed
// passthrough and the market stress index.
type SentimentClass string

const (
	ClassExtremeFear  SentimentClass = "extreme_fear"
	ClassFear         SentimentClass = "fear"
	ClassNeutral      SentimentClass = "neutral"
	ClassGreed        SentimentClass = "greed"
	ClassExtremeGreed SentimentClass = "extreme_greed"
)

// SentimentIndex is the third-party Fear & Greed index, consumed as-is.
type SentimentIndex struct {
	Value          int            `json:"value"`
	Classification SentimentClass `json:"classification"`
	ObservedAt     time.Time      `json:"observed_at"`
}

// SeasonClass labels the altseason regime.
type SeasonClass string

const (
	SeasonBitcoin SeasonClass = "bitcoin_season"
	SeasonNeutral SeasonClass = "neutral"
	SeasonAlt     SeasonClass = "altseason"
)

// AltseasonIndex is derived from BTC dominance, see AltseasonFromDominance.
type AltseasonIndex struct {
	Value           float64     `json:"value"`
	BTCDominancePct float64     `json:"btc_dominance_pct"`
	Classification  SeasonClass `json:"classification"`
	ObservedAt      time.Time   `json:"observed_at"`
}

// NewsArticle is a normalized news item. URL is the deduplication key.
type NewsArticle struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	ImageURL    string    `json:"image_url,omitempty"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Category    string    `json:"category"`
	Sentiment   string    `json:"sentiment,omitempty"`
}

// TokenGroup partitions trending tokens on the dashboard.
type TokenGroup string

const (
	GroupTrending TokenGroup = "trending"
	GroupGainer   TokenGroup = "gainer"
	GroupTop5     TokenGroup = "top5"
)

type TrendingToken struct {
	TokenID       string     `json:"token_id"`
	Symbol        string     `json:"symbol"`
	Name          string     `json:"name"`
	Rank          int        `json:"rank"`
	MarketCapRank int        `json:"market_cap_rank"`
	Group         TokenGroup `json:"group"`
	PriceUSD      float64    `json:"price_usd,omitempty"`
	Change24hPct  float64    `json:"change_24h_pct,omitempty"`
}

// DerivativesSnapshot is the base data the stress index is computed from.
type DerivativesSnapshot struct {
	Symbol                  string    `json:"symbol"`
	FundingRatePct          float64   `json:"funding_rate_pct"`
	OpenInterestUSD         float64   `json:"open_interest_usd"`
	OpenInterestDelta24hPct float64   `json:"open_interest_delta_24h_pct"`
	LiquidationsUSD24h      float64   `json:"liquidations_usd_24h"`
	Volatility24hPct        float64   `json:"volatility_24h_pct"`
	StablecoinDominancePct  float64   `json:"stablecoin_dominance_pct"`
	Source                  string    `json:"source"`
	ObservedAt              time.Time `json:"observed_at"`
}

// SupportedBlockchains lists the chains we quote gas for, and maps each to
// the symbol of its native asset (used for fiat conversion).
var SupportedBlockchains = []string{"ethereum", "bitcoin", "ton", "solana"}

var NativeSymbol = map[string]string{
	"ethereum": "ETH",
	"bitcoin":  "BTC",
	"ton":      "TON",
	"solana":   "SOL",
}

// CoinGeckoID maps internal symbols to CoinGecko API identifiers.
var CoinGeckoID = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"TON":  "the-open-network",
	"XRP":  "ripple",
	"BNB":  "binancecoin",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
	"DOT":  "polkadot",
	"LINK": "chainlink",
}

// CoinGeckoIDToSymbol is the reverse mapping.
var CoinGeckoIDToSymbol map[string]string

func init() {
	CoinGeckoIDToSymbol = make(map[string]string, len(CoinGeckoID))
	for sym, id := range CoinGeckoID {
		CoinGeckoIDToSymbol[id] = sym
	}
}

// SupportedSymbols lists all tracked asset symbols.
var SupportedSymbols = []string{
	"BTC", "ETH", "SOL", "TON", "XRP",
	"BNB", "ADA", "DOGE", "DOT", "LINK",
}
