// Package config loads analyzer configuration from a YAML file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"cryptoadvisor/internal/domain"
	"cryptoadvisor/internal/services/strategy"
)

const (
	defaultTimeframe    = "1h"
	defaultKlineLimit   = 250
	defaultPollInterval = 5 * time.Minute
	defaultWebAddr      = ":8080"
	defaultLLMURL       = "https://api.openai.com/v1/chat/completions"
	defaultLLMModel     = "gpt-4-turbo-preview"
)

// Config resolved settings for one analyzed pair.
type Config struct {
	Platform          string
	Pair              domain.Pair
	Timeframe         string
	KlineLimit        int
	PollInterval      time.Duration
	Indicators        domain.IndicatorParams
	Thresholds        strategy.Thresholds
	SentimentRequired bool
	LLMURL            string
	LLMModel          string
	WebAddr           string
}

type configTmp struct {
	Platform          string        `yaml:"platform"`
	Pair              string        `yaml:"pair"`
	Timeframe         string        `yaml:"timeframe"`
	KlineLimit        int           `yaml:"kline_limit"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	EMAPeriod         int           `yaml:"ema_period"`
	RSIPeriod         int           `yaml:"rsi_period"`
	VWAPWindow        int           `yaml:"vwap_window"`
	SessionVWAP       bool          `yaml:"session_vwap"`
	BandMultiplier    string        `yaml:"band_multiplier,omitempty"`
	RSIOversold       string        `yaml:"rsi_oversold,omitempty"`
	RSIOverbought     string        `yaml:"rsi_overbought,omitempty"`
	SentimentRequired bool          `yaml:"sentiment_required"`
	LLMURL            string        `yaml:"llm_url,omitempty"`
	LLMModel          string        `yaml:"llm_model,omitempty"`
	WebAddr           string        `yaml:"web_addr,omitempty"`
}

// Get parses configuration from the --config YAML file when provided,
// falling back to CLI flags for a single pair.
func Get() ([]Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	pairFlag := flag.String("pair", "BTC_USDT", "trade pair, example: BTC_USDT")
	platformFlag := flag.String("platform", "binance", "exchange platform: binance or bybit")
	timeframeFlag := flag.String("timeframe", defaultTimeframe, "kline interval, example: 1h")
	pollFlag := flag.Duration("pollinterval", defaultPollInterval, "interval between analysis runs")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	pair, err := domain.PairFromString(*pairFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --pair provided, --pair=%s: %w", *pairFlag, err)
	}

	return []Config{
		{
			Platform:     *platformFlag,
			Pair:         pair,
			Timeframe:    *timeframeFlag,
			KlineLimit:   defaultKlineLimit,
			PollInterval: *pollFlag,
			Indicators:   domain.DefaultIndicatorParams(),
			Thresholds:   strategy.DefaultThresholds(),
			LLMURL:       defaultLLMURL,
			LLMModel:     defaultLLMModel,
			WebAddr:      defaultWebAddr,
		},
	}, nil
}

func getYaml(path string) ([]Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var configsTmp []configTmp
	if err := yaml.Unmarshal(f, &configsTmp); err != nil {
		return nil, err
	}

	var configs []Config
	for _, c := range configsTmp {
		pair, err := domain.PairFromString(c.Pair)
		if err != nil {
			return nil, fmt.Errorf("incorrect 'pair' param in yaml config: %s, error: %w", c.Pair, err)
		}

		params := domain.DefaultIndicatorParams()
		if c.EMAPeriod > 0 {
			params.EMAPeriod = c.EMAPeriod
		}
		if c.RSIPeriod > 0 {
			params.RSIPeriod = c.RSIPeriod
		}
		if c.VWAPWindow > 0 {
			params.VWAPWindow = c.VWAPWindow
		}
		params.SessionVWAP = c.SessionVWAP
		if c.BandMultiplier != "" {
			mult, err := decimal.NewFromString(c.BandMultiplier)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'band_multiplier' param in yaml config (must be a decimal), error: %w", err)
			}
			params.BandMultiplier = mult
		}
		if err := params.Validate(); err != nil {
			return nil, fmt.Errorf("invalid indicator params for pair %s: %w", c.Pair, err)
		}

		thresholds := strategy.DefaultThresholds()
		if c.RSIOversold != "" {
			oversold, err := decimal.NewFromString(c.RSIOversold)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'rsi_oversold' param in yaml config (must be a decimal), error: %w", err)
			}
			thresholds.Oversold = oversold
		}
		if c.RSIOverbought != "" {
			overbought, err := decimal.NewFromString(c.RSIOverbought)
			if err != nil {
				return nil, fmt.Errorf("incorrect 'rsi_overbought' param in yaml config (must be a decimal), error: %w", err)
			}
			thresholds.Overbought = overbought
		}
		if err := thresholds.Validate(); err != nil {
			return nil, fmt.Errorf("invalid thresholds for pair %s: %w", c.Pair, err)
		}

		newConfig := Config{
			Platform:          c.Platform,
			Pair:              pair,
			Timeframe:         c.Timeframe,
			KlineLimit:        c.KlineLimit,
			PollInterval:      c.PollInterval,
			Indicators:        params,
			Thresholds:        thresholds,
			SentimentRequired: c.SentimentRequired,
			LLMURL:            c.LLMURL,
			LLMModel:          c.LLMModel,
			WebAddr:           c.WebAddr,
		}

		if newConfig.Platform == "" {
			newConfig.Platform = "binance"
		}
		if newConfig.Timeframe == "" {
			newConfig.Timeframe = defaultTimeframe
		}
		if newConfig.KlineLimit == 0 {
			newConfig.KlineLimit = defaultKlineLimit
		}
		if newConfig.PollInterval == 0 {
			newConfig.PollInterval = defaultPollInterval
		}
		if newConfig.LLMURL == "" {
			newConfig.LLMURL = defaultLLMURL
		}
		if newConfig.LLMModel == "" {
			newConfig.LLMModel = defaultLLMModel
		}
		if newConfig.WebAddr == "" {
			newConfig.WebAddr = defaultWebAddr
		}

		configs = append(configs, newConfig)
	}

	return configs, nil
}
