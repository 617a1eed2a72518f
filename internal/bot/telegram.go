package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"gaspulse/internal/domain"

	tele "gopkg.in/telebot.v3"
)

// MarketQuerier is the read surface the bot commands use.
type MarketQuerier interface {
	Gas(ctx context.Context, blockchain string) (*domain.GasQuoteUSD, error)
	Prices(ctx context.Context, symbols []string) (map[string]*domain.SpotPrice, error)
	FearGreed(ctx context.Context) (*domain.SentimentIndex, error)
}

func StartTelegramBot(token string, market MarketQuerier) {
	if token == "" {
		log.Println("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return
	}
	pref := tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}
	b, err := tele.NewBot(pref)
	if err != nil {
		log.Fatalf("failed to create Telegram bot: %v", err)
	}

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/gas", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /gas ethereum\nSupported: %s", strings.Join(domain.SupportedBlockchains, ", ")))
		}
		blockchain := strings.ToLower(args[0])
		quote, err := market.Gas(context.Background(), blockchain)
		if err != nil {
			return c.Send(fmt.Sprintf("Unknown blockchain: %s\nSupported: %s", blockchain, strings.Join(domain.SupportedBlockchains, ", ")))
		}
		return c.Send(formatGasMessage(quote))
	})

	b.Handle("/price", func(c tele.Context) error {
		args := c.Args()
		if len(args) == 0 {
			return c.Send(fmt.Sprintf("Usage: /price BTC\nSupported: %s", strings.Join(domain.SupportedSymbols, ", ")))
		}
		symbol := strings.ToUpper(args[0])
		if _, ok := domain.CoinGeckoID[symbol]; !ok {
			return c.Send(fmt.Sprintf("Unknown symbol: %s\nSupported: %s", symbol, strings.Join(domain.SupportedSymbols, ", ")))
		}
		prices, err := market.Prices(context.Background(), []string{symbol})
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching price for %s: %v", symbol, err))
		}
		price, ok := prices[symbol]
		if !ok {
			return c.Send(fmt.Sprintf("No price available for %s", symbol))
		}
		return c.Send(fmt.Sprintf(
			"%s\nPrice: $%.2f\n24h Change: %.2f%%",
			symbol, price.PriceUSD, price.Change24hPct,
		))
	})

	b.Handle("/feargreed", func(c tele.Context) error {
		idx, err := market.FearGreed(context.Background())
		if err != nil {
			return c.Send(fmt.Sprintf("Error fetching fear & greed index: %v", err))
		}
		return c.Send(fmt.Sprintf(
			"Fear & Greed Index\nValue: %d\nClassification: %s",
			idx.Value, strings.ReplaceAll(string(idx.Classification), "_", " "),
		))
	})

	log.Println("Telegram bot started")
	go b.Start()
}

func formatGasMessage(q *domain.GasQuoteUSD) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s gas (%s)\n", q.Blockchain, q.Unit)
	fmt.Fprintf(&sb, "Slow: %s\n", formatTier(q.Slow, q.SlowUSD))
	fmt.Fprintf(&sb, "Standard: %s\n", formatTier(q.Standard, q.StandardUSD))
	fmt.Fprintf(&sb, "Fast: %s\n", formatTier(q.Fast, q.FastUSD))
	fmt.Fprintf(&sb, "Source: %s", q.Source)
	return sb.String()
}

func formatTier(tier, usd float64) string {
	if usd > 0 {
		return fmt.Sprintf("%g ($%.4f)", tier, usd)
	}
	return fmt.Sprintf("%g", tier)
}
