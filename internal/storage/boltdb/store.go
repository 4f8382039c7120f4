package boltdb

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"dexPricing/internal/model"
)

var (
	pairsBucket  = []byte("pairs")
	tokensBucket = []byte("tokens")
	bundleBucket = []byte("bundle")
	pricesBucket = []byte("token_prices")

	bundleKey = []byte("current")
)

// Store keeps a pricing snapshot in a local bbolt file.
type Store struct {
	db *bolt.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("bolt path is required")
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create bolt dir: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{pairsBucket, tokensBucket, bundleBucket, pricesBucket} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// PutPairs writes pairs keyed by lower-case address.
func (s *Store) PutPairs(_ context.Context, pairs []model.Pair) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(pairsBucket)
		for _, pair := range pairs {
			if err := putJSON(b, pair.Address, pair); err != nil {
				return fmt.Errorf("put pair %s: %w", pair.Address, err)
			}
		}
		return nil
	})
}

// PutTokens writes tokens keyed by lower-case address.
func (s *Store) PutTokens(_ context.Context, tokens []model.Token) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(tokensBucket)
		for _, token := range tokens {
			if err := putJSON(b, token.Address, token); err != nil {
				return fmt.Errorf("put token %s: %w", token.Address, err)
			}
		}
		return nil
	})
}

func (s *Store) LoadPairs(_ context.Context) ([]model.Pair, error) {
	var pairs []model.Pair
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(pairsBucket).ForEach(func(k, v []byte) error {
			var pair model.Pair
			if err := json.Unmarshal(v, &pair); err != nil {
				return fmt.Errorf("decode pair %s: %w", k, err)
			}
			pair.Price0In1, pair.Price1In0 = model.SpotPrices(pair.Reserve0, pair.Reserve1)
			pairs = append(pairs, pair)
			return nil
		})
	})
	return pairs, err
}

func (s *Store) LoadTokens(_ context.Context) ([]model.Token, error) {
	var tokens []model.Token
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(tokensBucket).ForEach(func(k, v []byte) error {
			var token model.Token
			if err := json.Unmarshal(v, &token); err != nil {
				return fmt.Errorf("decode token %s: %w", k, err)
			}
			tokens = append(tokens, token)
			return nil
		})
	})
	return tokens, err
}

func (s *Store) LoadBundle(_ context.Context) (model.Bundle, bool, error) {
	var bundle model.Bundle
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bundleBucket).Get(bundleKey)
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &bundle)
	})
	if err != nil {
		return model.Bundle{}, false, fmt.Errorf("decode bundle: %w", err)
	}
	return bundle, found, nil
}

func (s *Store) SaveBundle(_ context.Context, bundle model.Bundle) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		data, err := json.Marshal(bundle)
		if err != nil {
			return fmt.Errorf("marshal bundle: %w", err)
		}
		return tx.Bucket(bundleBucket).Put(bundleKey, data)
	})
}

// PutTokenPrices records each price and updates the stored token's derived
// native price so the next snapshot load sees it.
func (s *Store) PutTokenPrices(_ context.Context, prices []model.TokenPrice) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		priceBucket := tx.Bucket(pricesBucket)
		tokenBucket := tx.Bucket(tokensBucket)
		for _, price := range prices {
			if err := putJSON(priceBucket, price.Token, price); err != nil {
				return fmt.Errorf("put price %s: %w", price.Token, err)
			}

			key := []byte(strings.ToLower(price.Token))
			data := tokenBucket.Get(key)
			if data == nil {
				continue
			}
			var token model.Token
			if err := json.Unmarshal(data, &token); err != nil {
				return fmt.Errorf("decode token %s: %w", key, err)
			}
			token.DerivedNative = price.DerivedNative
			if err := putJSON(tokenBucket, token.Address, token); err != nil {
				return fmt.Errorf("put token %s: %w", token.Address, err)
			}
		}
		return nil
	})
}

// TokenPrice returns the last recorded price for a token.
func (s *Store) TokenPrice(_ context.Context, token string) (model.TokenPrice, bool, error) {
	var price model.TokenPrice
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(pricesBucket).Get([]byte(strings.ToLower(token)))
		if data == nil {
			return nil
		}
		found = true
		return json.Unmarshal(data, &price)
	})
	return price, found, err
}

func putJSON(b *bolt.Bucket, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return b.Put([]byte(strings.ToLower(key)), data)
}
