package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of both binaries
type Config struct {
	Port           string
	BalancerAPIURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CurrencyAPIURL   string
	CurrencyAPIKey   string
	FxRetryMax       int
	FxRetryBaseDelay time.Duration

	PrivateKey string
	RPCURLs    map[uint64]string

	TokenPriceTTL time.Duration
	TokenListTTL  time.Duration
	FxRatesTTL    time.Duration
	HTTPTimeout   time.Duration

	DefaultSlippage string
	TokenListPath   string

	LogLevel  string
	LogFormat string
}

var durationDefaults = map[string]time.Duration{
	"token_price_ttl":     5 * time.Minute,
	"token_list_ttl":      20 * time.Minute,
	"fx_rates_ttl":        5 * time.Minute,
	"http_timeout":        30 * time.Second,
	"fx_retry_base_delay": time.Second,
}

// LoadDotEnv loads .env when present
func LoadDotEnv(files ...string) {
	if err := godotenv.Load(files...); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
}

// Load reads configuration from defaults, an optional YAML file named by
// SWAP_CONFIG and the environment, in increasing priority. chainIDs lists the
// chains whose RPC_URL_<chainId> variables are read.
func Load(chainIDs []uint64) (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("balancer_api_url", "https://api-v3.balancer.fi/")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_password", "")
	v.SetDefault("redis_db", 0)
	v.SetDefault("currency_api_url", "https://api.currencyapi.com")
	v.SetDefault("currency_api_key", "")
	v.SetDefault("fx_retry_max", 3)
	v.SetDefault("private_key", "")
	v.SetDefault("default_slippage", "0.5")
	v.SetDefault("token_list_path", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	for key, d := range durationDefaults {
		v.SetDefault(key, d.String())
	}

	v.AutomaticEnv()

	if path := v.GetString("swap_config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	redisDB, err := strconv.Atoi(v.GetString("redis_db"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	retryMax, err := strconv.Atoi(v.GetString("fx_retry_max"))
	if err != nil || retryMax < 0 {
		return Config{}, fmt.Errorf("invalid FX_RETRY_MAX %q", v.GetString("fx_retry_max"))
	}

	slippage := v.GetString("default_slippage")
	if f, err := strconv.ParseFloat(slippage, 64); err != nil || f < 0 || f > 50 {
		return Config{}, fmt.Errorf("invalid DEFAULT_SLIPPAGE %q", slippage)
	}

	cfg := Config{
		Port:             v.GetString("port"),
		BalancerAPIURL:   v.GetString("balancer_api_url"),
		RedisAddr:        v.GetString("redis_addr"),
		RedisPassword:    v.GetString("redis_password"),
		RedisDB:          redisDB,
		CurrencyAPIURL:   v.GetString("currency_api_url"),
		CurrencyAPIKey:   v.GetString("currency_api_key"),
		FxRetryMax:       retryMax,
		FxRetryBaseDelay: duration(v, "fx_retry_base_delay"),
		PrivateKey:       v.GetString("private_key"),
		RPCURLs:          rpcURLs(v, chainIDs),
		TokenPriceTTL:    duration(v, "token_price_ttl"),
		TokenListTTL:     duration(v, "token_list_ttl"),
		FxRatesTTL:       duration(v, "fx_rates_ttl"),
		HTTPTimeout:      duration(v, "http_timeout"),
		DefaultSlippage:  slippage,
		TokenListPath:    v.GetString("token_list_path"),
		LogLevel:         strings.ToLower(v.GetString("log_level")),
		LogFormat:        strings.ToLower(v.GetString("log_format")),
	}
	return cfg, nil
}

// duration parses key, falling back to its default on bad input
func duration(v *viper.Viper, key string) time.Duration {
	def := durationDefaults[key]
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		slog.Warn("invalid duration, using default", "key", strings.ToUpper(key), "value", raw, "default", def)
		return def
	}
	return d
}

// rpcURLs collects RPC_URL_<chainId> values. A YAML rpc_urls map is used for
// chains without an environment value.
func rpcURLs(v *viper.Viper, chainIDs []uint64) map[uint64]string {
	fromFile := v.GetStringMapString("rpc_urls")
	urls := make(map[uint64]string)
	for _, id := range chainIDs {
		key := fmt.Sprintf("rpc_url_%d", id)
		if url := v.GetString(key); url != "" {
			urls[id] = url
			continue
		}
		if url := fromFile[strconv.FormatUint(id, 10)]; url != "" {
			urls[id] = url
		}
	}
	return urls
}

// SlogLevel maps LogLevel to a slog level
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
