package config

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"dexPricing/internal/pricing"
)

const envPrefix = "PRICER"

// PricingConfig holds the deployment constants shared by every command.
type PricingConfig struct {
	ChainID            uint64
	NativeToken        string
	StablePools        []string
	Whitelist          []string
	MinLiquidityNative string
}

// Oracle converts the loaded values into a validated pricing.Config.
func (c PricingConfig) Oracle() (pricing.Config, error) {
	if strings.TrimSpace(c.MinLiquidityNative) == "" {
		return pricing.Config{}, fmt.Errorf("min-liquidity-native is required")
	}
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.MinLiquidityNative))
	if err != nil {
		return pricing.Config{}, fmt.Errorf("min-liquidity-native: %w", err)
	}

	cfg := pricing.Config{
		NativeToken:        c.NativeToken,
		StablePools:        append([]string(nil), c.StablePools...),
		Whitelist:          pricing.NewWhitelist(c.Whitelist...),
		MinLiquidityNative: threshold,
	}
	if err := cfg.Validate(); err != nil {
		return pricing.Config{}, err
	}
	return cfg, nil
}

// newViper merges config file, environment variables, and flags. Defaults are
// applied before flags are bound.
func newViper(cfgFile string, flags *pflag.FlagSet, defaults map[string]interface{}) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return v, nil
}

func loadPricing(v *viper.Viper) PricingConfig {
	return PricingConfig{
		ChainID:            v.GetUint64("chain-id"),
		NativeToken:        v.GetString("native-token"),
		StablePools:        getStringSlice(v, "stable-pools"),
		Whitelist:          getStringSlice(v, "whitelist"),
		MinLiquidityNative: v.GetString("min-liquidity-native"),
	}
}

func getStringSlice(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}

	val := v.Get(key)
	switch typed := val.(type) {
	case []string:
		return cleanStrings(typed)
	case string:
		return splitAndClean(typed)
	case []interface{}:
		items := make([]string, 0, len(typed))
		for _, item := range typed {
			items = append(items, fmt.Sprintf("%v", item))
		}
		return cleanStrings(items)
	default:
		return nil
	}
}

func splitAndClean(input string) []string {
	if input == "" {
		return nil
	}
	parts := strings.Split(input, ",")
	return cleanStrings(parts)
}

func cleanStrings(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}
