package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const visibilityKeyPrefix = "crately:visibility:"

// CacheService caches per-user visibility sets plus generic strings. It is a
// pure optimization: every reader treats a miss or an error as "recompute".
type CacheService interface {
	// Visibility set caching (container ids a user may see)
	GetVisibility(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error)
	SetVisibility(ctx context.Context, userID uuid.UUID, containerIDs []uuid.UUID, ttl time.Duration) error
	InvalidateVisibility(ctx context.Context, userID uuid.UUID) error
	// InvalidateAllVisibility drops every cached visibility set; used when a
	// container mutation may widen or narrow an unknown set of users.
	InvalidateAllVisibility(ctx context.Context) error

	// Generic string operations
	SetString(ctx context.Context, key string, value string, ttl time.Duration) error
	GetString(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error

	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	// Accept redis:// style addresses as well as plain host:port.
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func visibilityKey(userID uuid.UUID) string {
	return visibilityKeyPrefix + userID.String()
}

func (r *redisCacheService) GetVisibility(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, bool, error) {
	data, err := r.client.Get(ctx, visibilityKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, err
	}

	var ids []uuid.UUID
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, false, err
	}
	return ids, true, nil
}

func (r *redisCacheService) SetVisibility(ctx context.Context, userID uuid.UUID, containerIDs []uuid.UUID, ttl time.Duration) error {
	data, err := json.Marshal(containerIDs)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, visibilityKey(userID), data, ttl).Err()
}

func (r *redisCacheService) InvalidateVisibility(ctx context.Context, userID uuid.UUID) error {
	return r.client.Del(ctx, visibilityKey(userID)).Err()
}

func (r *redisCacheService) InvalidateAllVisibility(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, visibilityKeyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}

func (r *redisCacheService) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *redisCacheService) GetString(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", fmt.Errorf("cache key not found: %s", key)
		}
		return "", err
	}
	return value, nil
}

func (r *redisCacheService) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
