package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DatabaseURL      string
	RedisURL         string
	TelegramBotToken string
	RefreshToken     string

	EtherscanAPIKey   string
	BlocknativeAPIKey string
	CoinGeckoAPIKey   string
	CryptoPanicAPIKey string
	MempoolBaseURL    string
	SolanaRPCURL      string

	GasPollSecs    int
	SpotPollSecs   int
	GlobalPollSecs int

	OpenAIAPIKey string
	OpenAIModel  string
}

func Load() *Config {
	cfg := &Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		RedisURL:         os.Getenv("REDIS_URL"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RefreshToken:     strings.TrimSpace(os.Getenv("REFRESH_AUTH_TOKEN")),

		EtherscanAPIKey:   os.Getenv("ETHERSCAN_API_KEY"),
		BlocknativeAPIKey: os.Getenv("BLOCKNATIVE_API_KEY"),
		CoinGeckoAPIKey:   os.Getenv("COINGECKO_API_KEY"),
		CryptoPanicAPIKey: os.Getenv("CRYPTOPANIC_API_KEY"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: DATABASE_URL not set")
	}
	if cfg.RedisURL == "" {
		log.Println("Warning: REDIS_URL not set, defaulting to localhost:6379")
		cfg.RedisURL = "localhost:6379"
	}
	if cfg.TelegramBotToken == "" {
		log.Println("Warning: TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RefreshToken == "" {
		log.Println("Warning: REFRESH_AUTH_TOKEN not set, POST /api/refresh is disabled")
	}

	cfg.MempoolBaseURL = strings.TrimSpace(os.Getenv("MEMPOOL_BASE_URL"))
	if cfg.MempoolBaseURL == "" {
		cfg.MempoolBaseURL = "https://mempool.space"
	}

	cfg.SolanaRPCURL = strings.TrimSpace(os.Getenv("SOLANA_RPC_URL"))
	if cfg.SolanaRPCURL == "" {
		cfg.SolanaRPCURL = "https://api.mainnet-beta.solana.com"
	}

	cfg.GasPollSecs = 30
	if v := strings.TrimSpace(os.Getenv("GAS_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GasPollSecs = n
		}
	}

	cfg.SpotPollSecs = 180
	if v := strings.TrimSpace(os.Getenv("SPOT_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.SpotPollSecs = n
		}
	}

	cfg.GlobalPollSecs = 300
	if v := strings.TrimSpace(os.Getenv("GLOBAL_POLL_SECS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.GlobalPollSecs = n
		}
	}

	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	if cfg.OpenAIAPIKey == "" {
		log.Println("Warning: OPENAI_API_KEY not set, LLM news scoring disabled")
	}

	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	return cfg
}
