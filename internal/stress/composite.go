// Package stress computes the Market Stress Index: a weighted blend of
// derivatives and market-structure signals collapsed to a single 0..100
// score with the same five-bucket classification as the sentiment index.
package stress

import (
	"time"

	"gaspulse/internal/domain"
)

// Component weights. Unavailable components drop out and the remaining
// weights renormalize, so a partial data day still yields a score.
var Weights = map[string]float64{
	"funding":       0.25,
	"oi_delta":      0.20,
	"volatility":    0.20,
	"liquidations":  0.15,
	"btc_dominance": 0.10,
	"stablecoins":   0.10,
}

// Component is one scored input. Score is on the 0..100 stress scale.
type Component struct {
	Score     float64
	Available bool
}

type Input struct {
	Funding      Component
	OIDelta      Component
	Volatility   Component
	Liquidations Component
	BTCDominance Component
	Stablecoins  Component
}

// Index is the computed stress result.
type Index struct {
	Value          float64               `json:"value"`
	Classification domain.SentimentClass `json:"classification"`
	Components     map[string]float64    `json:"components"`
	Weights        map[string]float64    `json:"weights"`
	ObservedAt     time.Time             `json:"observed_at"`
}

// Per-component ramps: clamped linear from a calm floor to a full-stress
// ceiling, chosen from typical BTC perp ranges.
const (
	fundingFullStressPct      = 0.30 // |funding| per 8h at full stress
	oiDeltaFullStressPct      = 30.0
	volatilityFullStressPct   = 15.0
	liquidationsFullStressUSD = 2e9
	dominanceCalmPct          = 45.0
	dominanceFullStressPct    = 70.0
	stablecoinCalmPct         = 5.0
	stablecoinFullStressPct   = 15.0
)

// FromSnapshot scores a derivatives snapshot plus BTC dominance into the
// component set. Zero-valued inputs that the provider could not populate
// are marked unavailable rather than scored as calm.
func FromSnapshot(d *domain.DerivativesSnapshot, btcDominancePct float64) Input {
	in := Input{}
	if d != nil {
		in.Funding = Component{Score: ramp(abs(d.FundingRatePct), 0, fundingFullStressPct), Available: true}
		if d.OpenInterestDelta24hPct != 0 {
			in.OIDelta = Component{Score: ramp(abs(d.OpenInterestDelta24hPct), 0, oiDeltaFullStressPct), Available: true}
		}
		if d.Volatility24hPct > 0 {
			in.Volatility = Component{Score: ramp(d.Volatility24hPct, 0, volatilityFullStressPct), Available: true}
		}
		if d.LiquidationsUSD24h > 0 {
			in.Liquidations = Component{Score: ramp(d.LiquidationsUSD24h, 0, liquidationsFullStressUSD), Available: true}
		}
		if d.StablecoinDominancePct > 0 {
			in.Stablecoins = Component{Score: ramp(d.StablecoinDominancePct, stablecoinCalmPct, stablecoinFullStressPct), Available: true}
		}
	}
	if btcDominancePct > 0 {
		in.BTCDominance = Component{Score: ramp(btcDominancePct, dominanceCalmPct, dominanceFullStressPct), Available: true}
	}
	return in
}

// Compute blends the available components into the index. With no
// components at all the result is a neutral 50.
func Compute(in Input, observedAt time.Time) Index {
	components := map[string]Component{
		"funding":       in.Funding,
		"oi_delta":      in.OIDelta,
		"volatility":    in.Volatility,
		"liquidations":  in.Liquidations,
		"btc_dominance": in.BTCDominance,
		"stablecoins":   in.Stablecoins,
	}

	activeWeight := 0.0
	for name, c := range components {
		if c.Available {
			activeWeight += Weights[name]
		}
	}

	if activeWeight <= 0 {
		return Index{
			Value:          50,
			Classification: domain.ClassifySentiment(50),
			Components:     map[string]float64{},
			Weights:        map[string]float64{},
			ObservedAt:     observedAt,
		}
	}

	scores := make(map[string]float64)
	normalized := make(map[string]float64)
	value := 0.0
	for name, c := range components {
		if !c.Available {
			continue
		}
		w := Weights[name] / activeWeight
		normalized[name] = w
		scores[name] = domain.Clamp(c.Score, 0, 100)
		value += w * scores[name]
	}
	value = domain.Clamp(value, 0, 100)

	return Index{
		Value:          value,
		Classification: domain.ClassifySentiment(int(value + 0.5)),
		Components:     scores,
		Weights:        normalized,
		ObservedAt:     observedAt,
	}
}

func ramp(v, calm, full float64) float64 {
	if full <= calm {
		return 0
	}
	return domain.Clamp((v-calm)/(full-calm)*100, 0, 100)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
