package config

import (
	"time"

	"github.com/spf13/pflag"
)

// QuoteConfig holds configuration for the quote command.
type QuoteConfig struct {
	Pricing       PricingConfig
	PGDSN         string
	BoltPath      string
	RPCURL        string
	Factory       string
	Block         uint64
	MaxRetries    int
	RetryBackoff  time.Duration
	Out           string
	RedisAddr     string
	RedisDB       int
	RedisPassword string
	RedisPrefix   string
	RedisTTL      time.Duration
	BatchSize     int
	LogLevel      string
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, map[string]interface{}{
		"max-retries":   3,
		"retry-backoff": 500 * time.Millisecond,
		"redis-prefix":  "pricer",
		"batch-size":    500,
	})
	if err != nil {
		return QuoteConfig{}, err
	}

	return QuoteConfig{
		Pricing:       loadPricing(v),
		PGDSN:         v.GetString("pg-dsn"),
		BoltPath:      v.GetString("bolt-path"),
		RPCURL:        v.GetString("rpc"),
		Factory:       v.GetString("factory"),
		Block:         v.GetUint64("block"),
		MaxRetries:    v.GetInt("max-retries"),
		RetryBackoff:  v.GetDuration("retry-backoff"),
		Out:           v.GetString("out"),
		RedisAddr:     v.GetString("redis-addr"),
		RedisDB:       v.GetInt("redis-db"),
		RedisPassword: v.GetString("redis-password"),
		RedisPrefix:   v.GetString("redis-prefix"),
		RedisTTL:      v.GetDuration("redis-ttl"),
		BatchSize:     v.GetInt("batch-size"),
		LogLevel:      v.GetString("log-level"),
	}, nil
}
