package pricefeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"dexPricing/internal/model"
)

// Config controls where prices are published.
type Config struct {
	Addr     string
	DB       int
	Password string
	Prefix   string
	TTL      time.Duration
}

// Publisher writes bundle and token prices to Redis and announces updates on
// the <prefix>:prices channel.
type Publisher struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func NewPublisher(cfg Config) *Publisher {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return NewPublisherWithClient(rdb, cfg.Prefix, cfg.TTL)
}

func NewPublisherWithClient(rdb *redis.Client, prefix string, ttl time.Duration) *Publisher {
	if prefix == "" {
		prefix = "pricer"
	}
	return &Publisher{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (p *Publisher) Close() error {
	return p.rdb.Close()
}

func (p *Publisher) BundleKey() string {
	return p.prefix + ":bundle"
}

func (p *Publisher) TokenKey(token string) string {
	return p.prefix + ":token:" + strings.ToLower(token)
}

func (p *Publisher) Channel() string {
	return p.prefix + ":prices"
}

// SaveBundle stores the native USD price and notifies subscribers.
func (p *Publisher) SaveBundle(ctx context.Context, bundle model.Bundle) error {
	price := bundle.NativeUSDPrice.String()
	if err := p.rdb.Set(ctx, p.BundleKey(), price, p.ttl).Err(); err != nil {
		return fmt.Errorf("set bundle: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.Channel(), "bundle:"+price).Err(); err != nil {
		return fmt.Errorf("publish bundle: %w", err)
	}
	return nil
}

// PutTokenPrices stores one hash per token in a single pipeline.
func (p *Publisher) PutTokenPrices(ctx context.Context, prices []model.TokenPrice) error {
	if len(prices) == 0 {
		return nil
	}
	pipe := p.rdb.TxPipeline()
	for _, price := range prices {
		key := p.TokenKey(price.Token)
		pipe.HSet(ctx, key, map[string]interface{}{
			"derived_native": price.DerivedNative.String(),
			"usd":            price.USD.String(),
			"status":         price.Status,
			"anchor":         price.Anchor,
			"pair":           price.Pair,
		})
		if p.ttl > 0 {
			pipe.Expire(ctx, key, p.ttl)
		}
	}
	pipe.Publish(ctx, p.Channel(), fmt.Sprintf("tokens:%d", len(prices)))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish token prices: %w", err)
	}
	return nil
}
