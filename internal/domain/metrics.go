package domain

import (
	"math"
	"time"
)

// AltseasonDominanceMultiplier is the canonical multiplier applied to BTC
// dominance before inverting it into the altseason value. Historical call
// sites disagreed (1.0, 1.2, 1.5); 1.0 is the canonical choice so that the
// index reads directly as "100 minus dominance".
const AltseasonDominanceMultiplier = 1.0

// Season thresholds: below 40 bitcoin season, above 60 altseason.
const (
	seasonBitcoinUpper = 40.0
	seasonAltLower     = 60.0
)

// AltseasonFromDominance derives the altseason index from BTC dominance.
func AltseasonFromDominance(btcDominancePct float64, observedAt time.Time) AltseasonIndex {
	value := Clamp(100-btcDominancePct*AltseasonDominanceMultiplier, 0, 100)
	return AltseasonIndex{
		Value:           value,
		BTCDominancePct: btcDominancePct,
		Classification:  ClassifySeason(value),
		ObservedAt:      observedAt,
	}
}

func ClassifySeason(value float64) SeasonClass {
	switch {
	case value < seasonBitcoinUpper:
		return SeasonBitcoin
	case value > seasonAltLower:
		return SeasonAlt
	default:
		return SeasonNeutral
	}
}

// ClassifySentiment maps a 0..100 value onto the five-bucket scheme:
// [0,20] extreme fear, (20,40] fear, (40,60] neutral, (60,80] greed,
// (80,100] extreme greed.
func ClassifySentiment(value int) SentimentClass {
	switch {
	case value <= 20:
		return ClassExtremeFear
	case value <= 40:
		return ClassFear
	case value <= 60:
		return ClassNeutral
	case value <= 80:
		return ClassGreed
	default:
		return ClassExtremeGreed
	}
}

// Fiat conversion convention per chain. Gwei tiers convert per gas unit
// (tier/1e9 * spot) with no gas-quantity factor; the Bitcoin path alone
// multiplies by an average transaction size in vbytes. This mirrors how the
// dashboard has always displayed the numbers, so it stays the convention.
const (
	AvgBTCTxVBytes = 140.0
	satoshisPerBTC = 1e8
	gweiPerETH     = 1e9
	lamportsPerSOL = 1e9
)

// GasTierUSD converts a single fee tier to USD given the native spot price.
// Unknown units return 0.
func GasTierUSD(tier float64, unit GasUnit, nativeSpotUSD float64) float64 {
	if nativeSpotUSD <= 0 || tier < 0 {
		return 0
	}
	switch unit {
	case UnitGwei:
		return tier / gweiPerETH * nativeSpotUSD
	case UnitSatVByte:
		return tier * AvgBTCTxVBytes / satoshisPerBTC * nativeSpotUSD
	case UnitLamport:
		return tier / lamportsPerSOL * nativeSpotUSD
	case UnitTON:
		return tier * nativeSpotUSD
	default:
		return 0
	}
}

// QuoteUSD attaches per-tier fiat values to a gas quote.
func QuoteUSD(q GasQuote, nativeSpotUSD float64) GasQuoteUSD {
	return GasQuoteUSD{
		GasQuote:    q,
		SlowUSD:     GasTierUSD(q.Slow, q.Unit, nativeSpotUSD),
		StandardUSD: GasTierUSD(q.Standard, q.Unit, nativeSpotUSD),
		FastUSD:     GasTierUSD(q.Fast, q.Unit, nativeSpotUSD),
	}
}

// Clamp bounds v to [lo, hi]; NaN and infinities collapse to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
