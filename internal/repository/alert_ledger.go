package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AlertKey names the ledger slot for one alert of one grievance.
func AlertKey(grievanceID, alertType string) string {
	return fmt.Sprintf("alert:%s:%s", grievanceID, alertType)
}

type setNXer interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
}

// RedisAlertLedger remembers announced alerts in Redis so several service
// replicas announce each alert once per TTL.
type RedisAlertLedger struct {
	client setNXer
	ttl    time.Duration
}

func NewRedisAlertLedger(client *redis.Client, ttl time.Duration) *RedisAlertLedger {
	return &RedisAlertLedger{client: client, ttl: ttl}
}

// Claim reports true the first time key is seen within the TTL.
func (l *RedisAlertLedger) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := l.client.SetNX(ctx, key, time.Now().Unix(), l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis ledger: %w", err)
	}
	return ok, nil
}

type MemoryAlertLedger struct {
	mu      sync.Mutex
	ttl     time.Duration
	expires map[string]time.Time
	now     func() time.Time
}

func NewMemoryAlertLedger(ttl time.Duration) *MemoryAlertLedger {
	return &MemoryAlertLedger{ttl: ttl, expires: make(map[string]time.Time), now: time.Now}
}

func (l *MemoryAlertLedger) Claim(ctx context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if exp, ok := l.expires[key]; ok && now.Before(exp) {
		return false, nil
	}
	l.expires[key] = now.Add(l.ttl)

	for k, exp := range l.expires {
		if !now.Before(exp) {
			delete(l.expires, k)
		}
	}
	return true, nil
}
