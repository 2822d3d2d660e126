// Package cache is a redis-backed read cache for wallets and users. It is
// never consulted inside a unit of work; ledger actions read the locked row
// and invalidate cache entries after commit.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"kobopay/internal/models"

	"github.com/redis/go-redis/v9"
)

type CacheService struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCacheService(client *redis.Client, defaultTTL time.Duration) *CacheService {
	return &CacheService{
		client: client,
		ttl:    defaultTTL,
	}
}

// Base operations

func (s *CacheService) Set(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return s.client.Set(ctx, key, data, s.ttl).Err()
}

func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("failed to get cache value: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal cache value: %w", err)
	}
	return true, nil
}

func (s *CacheService) Delete(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

// Wallet caching

func walletKey(uuid string) string {
	return fmt.Sprintf("wallet:uuid:%s", uuid)
}

func (s *CacheService) CacheWallet(ctx context.Context, wallet *models.Wallet) error {
	if wallet == nil {
		return errors.New("cannot cache nil wallet")
	}
	return s.Set(ctx, walletKey(wallet.UUID), wallet)
}

func (s *CacheService) GetWallet(ctx context.Context, uuid string) (*models.Wallet, bool) {
	var wallet models.Wallet
	found, err := s.Get(ctx, walletKey(uuid), &wallet)
	if err != nil || !found {
		return nil, false
	}
	return &wallet, true
}

func (s *CacheService) InvalidateWallet(ctx context.Context, uuid string) error {
	return s.Delete(ctx, walletKey(uuid))
}

// User caching

func userEmailKey(email string) string {
	return fmt.Sprintf("user:email:%s", email)
}

func (s *CacheService) CacheUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}
	return s.Set(ctx, userEmailKey(user.Email), user)
}

func (s *CacheService) GetUserByEmail(ctx context.Context, email string) (*models.User, bool) {
	var user models.User
	found, err := s.Get(ctx, userEmailKey(email), &user)
	if err != nil || !found {
		return nil, false
	}
	return &user, true
}

// Lifecycle

func (s *CacheService) HealthCheck(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func (s *CacheService) Close() error {
	return s.client.Close()
}
