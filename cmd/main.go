// Command cryptoadvisor runs the market analysis advisor. It polls kline data
// from an exchange, computes technical indicators, derives a rule-based
// BUY/SELL/HOLD signal and hands the assembled context to an LLM analyst for
// the final recommendation. Results are persisted and served over HTTP.
//
// Usage:
//
//	cryptoadvisor --config config.yaml
//	cryptoadvisor --pair BTC_USDT --timeframe 1h (uses CLI arguments)
//
// Environment variables:
//
//	For Binance: BINANCE_API_KEY, BINANCE_API_SECRET
//	For Bybit: BYBIT_API_KEY, BYBIT_API_SECRET
//	Optional: OPENAI_API_KEY (reasoning agent), COINMARKETCAP_API_KEY (sentiment)
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"cryptoadvisor/config"
	"cryptoadvisor/internal/clients"
	"cryptoadvisor/internal/services"
	"cryptoadvisor/internal/services/promptbuilder"
	"cryptoadvisor/internal/services/sentiment"
	"cryptoadvisor/internal/storage/reports"
	"cryptoadvisor/internal/web"
)

func main() {
	// .env is optional, real environments set variables directly
	_ = godotenv.Load()

	configs, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}
	if len(configs) == 0 {
		log.Fatal("no pairs configured")
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := reports.NewWALStore("")
	if err != nil {
		logger.Fatal("failed to init report store", zap.Error(err))
	}
	defer store.Close()

	sentimentService := buildSentimentService(logger)

	for _, cfg := range configs {
		provider, err := buildKlineProvider(cfg.Platform)
		if err != nil {
			logger.Fatal("failed to init kline provider", zap.String("platform", cfg.Platform), zap.Error(err))
		}

		svc, err := services.NewAnalysisService(logger, cfg.Pair, cfg.Timeframe, cfg.KlineLimit,
			cfg.Indicators, cfg.Thresholds, provider, sentimentService, buildAdvisor(cfg), store, cfg.SentimentRequired)
		if err != nil {
			logger.Fatal("failed to init analysis service", zap.String("pair", cfg.Pair.String()), zap.Error(err))
		}

		go func(interval time.Duration) {
			if err := svc.Run(ctx, interval); err != nil {
				logger.Error("analysis loop stopped", zap.Error(err))
			}
		}(cfg.PollInterval)
	}

	server := web.NewServer(configs[0].WebAddr, store, logger)
	if err := server.Start(ctx); err != nil {
		logger.Fatal("web server failed", zap.Error(err))
	}
}

func buildKlineProvider(platform string) (clients.KlineProvider, error) {
	switch platform {
	case "binance":
		return clients.NewBinanceClient(os.Getenv("BINANCE_API_KEY"), os.Getenv("BINANCE_API_SECRET")), nil
	case "bybit":
		return clients.NewBybitClient(os.Getenv("BYBIT_API_KEY"), os.Getenv("BYBIT_API_SECRET")), nil
	default:
		return nil, errUnsupportedPlatform(platform)
	}
}

type errUnsupportedPlatform string

func (e errUnsupportedPlatform) Error() string {
	return "unsupported platform: " + string(e)
}

func buildSentimentService(logger *zap.Logger) *sentiment.Service {
	var quotes sentiment.QuoteProvider
	if key := os.Getenv("COINMARKETCAP_API_KEY"); key != "" {
		quotes = sentiment.NewCMCClient(key)
	}
	return sentiment.NewService(quotes, sentiment.NewCalendarScraper(), logger)
}

func buildAdvisor(cfg config.Config) clients.Advisor {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil
	}
	return clients.NewOpenAICompatibleClient(cfg.LLMURL, apiKey, cfg.LLMModel, promptbuilder.NewPromptBuilder())
}
