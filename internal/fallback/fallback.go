// Package fallback supplies the static last-resort values served when every
// provider for a data kind is down. Read paths must always produce a
// well-formed response, so everything here is pure and total.
package fallback

import (
	"time"

	"gaspulse/internal/domain"
)

const source = "fallback"

// GasQuote returns plausible-but-stale fee tiers for a blockchain.
func GasQuote(blockchain string) domain.GasQuote {
	q := domain.GasQuote{
		Blockchain: blockchain,
		Source:     source,
		ObservedAt: time.Now().UTC(),
	}
	switch blockchain {
	case "bitcoin":
		q.Slow, q.Standard, q.Fast = 1, 5, 10
		q.Unit = domain.UnitSatVByte
	case "ton":
		q.Slow, q.Standard, q.Fast = 0.0055, 0.0055, 0.011
		q.Unit = domain.UnitTON
	case "solana":
		q.Slow, q.Standard, q.Fast = 1000, 10000, 100000
		q.Unit = domain.UnitLamport
	default: // ethereum and anything unrecognized
		q.Slow, q.Standard, q.Fast = 10, 15, 25
		q.Unit = domain.UnitGwei
	}
	return q
}

// SpotPrices returns zero-valued entries so consumers still get a row per
// requested symbol.
func SpotPrices(symbols []string) map[string]*domain.SpotPrice {
	now := time.Now().UTC()
	out := make(map[string]*domain.SpotPrice, len(symbols))
	for _, sym := range symbols {
		out[sym] = &domain.SpotPrice{Symbol: sym, ObservedAt: now}
	}
	return out
}

// Global returns a dominant-but-neutral market snapshot.
func Global() domain.GlobalMarketSnapshot {
	return domain.GlobalMarketSnapshot{
		TotalMarketCapUSD: 3.2e12,
		TotalVolumeUSD:    9.0e10,
		BTCDominancePct:   55,
		ETHDominancePct:   12,
		ObservedAt:        time.Now().UTC(),
	}
}

// Sentiment returns a neutral index.
func Sentiment() domain.SentimentIndex {
	return domain.SentimentIndex{
		Value:          50,
		Classification: domain.ClassifySentiment(50),
		ObservedAt:     time.Now().UTC(),
	}
}

// Altseason derives the fallback altseason index from the fallback
// dominance, keeping the two consistent.
func Altseason() domain.AltseasonIndex {
	return domain.AltseasonFromDominance(Global().BTCDominancePct, time.Now().UTC())
}

// News returns an empty list: the dashboard renders "no news" rather than
// an error state.
func News() []*domain.NewsArticle { return []*domain.NewsArticle{} }

// Trending returns an empty list.
func Trending() []*domain.TrendingToken { return []*domain.TrendingToken{} }

// Derivatives returns a quiet-market snapshot.
func Derivatives(symbol string) domain.DerivativesSnapshot {
	return domain.DerivativesSnapshot{
		Symbol:     symbol,
		Source:     source,
		ObservedAt: time.Now().UTC(),
	}
}
