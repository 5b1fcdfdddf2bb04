package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/padel-board-api/internal/models"
	appErrors "github.com/noah-isme/padel-board-api/pkg/errors"
)

// Key suffixes of the local durable cache.
const (
	KeyStudents    = "students"
	KeyClasses     = "classes"
	KeyMonitors    = "monitors"
	KeyCurrentUser = "currentUser"
)

// RedisRepository is the local durable key-value backend. Each collection is
// stored as one JSON document under a prefixed key, and the session identity
// lives under its own key so it can be saved independently of the dataset.
type RedisRepository struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

// NewRedisRepository constructs a Redis backed repository.
func NewRedisRepository(client *redis.Client, prefix string, logger *zap.Logger) *RedisRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisRepository{client: client, prefix: prefix, logger: logger}
}

// Name identifies the backend in logs and metrics.
func (r *RedisRepository) Name() string { return "redis" }

// Key returns the full key for a suffix.
func (r *RedisRepository) Key(suffix string) string {
	return r.prefix + suffix
}

// Ping checks connectivity.
func (r *RedisRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	return r.client.Ping(ctx).Err()
}

// Load reads the three collections. Missing keys yield empty collections.
func (r *RedisRepository) Load(ctx context.Context) (models.Dataset, error) {
	ds := models.Dataset{Students: []models.Student{}, Classes: []models.Class{}, Monitors: []models.Monitor{}}
	if err := r.get(ctx, KeyStudents, &ds.Students); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		return models.Dataset{}, err
	}
	if err := r.get(ctx, KeyClasses, &ds.Classes); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		return models.Dataset{}, err
	}
	if err := r.get(ctx, KeyMonitors, &ds.Monitors); err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		return models.Dataset{}, err
	}
	return ds, nil
}

// SaveAll writes the three collections in a single MULTI/EXEC block.
func (r *RedisRepository) SaveAll(ctx context.Context, ds models.Dataset) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	payloads := make(map[string][]byte, 3)
	for suffix, value := range map[string]interface{}{
		KeyStudents: nonNil(ds.Students),
		KeyClasses:  nonNil(ds.Classes),
		KeyMonitors: nonNil(ds.Monitors),
	} {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", suffix, err)
		}
		payloads[suffix] = raw
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for suffix, raw := range payloads {
			pipe.Set(ctx, r.Key(suffix), raw, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save dataset: %w", err)
	}
	r.logger.Debug("dataset cached",
		zap.Int("students", len(ds.Students)),
		zap.Int("classes", len(ds.Classes)),
		zap.Int("monitors", len(ds.Monitors)),
	)
	return nil
}

// LoadCurrentUser returns the cached session identity, nil when none is stored.
func (r *RedisRepository) LoadCurrentUser(ctx context.Context) (*models.CurrentUser, error) {
	var user models.CurrentUser
	if err := r.get(ctx, KeyCurrentUser, &user); err != nil {
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// SaveCurrentUser stores the session identity; nil removes it.
func (r *RedisRepository) SaveCurrentUser(ctx context.Context, user *models.CurrentUser) error {
	if r.client == nil {
		return errors.New("redis client not configured")
	}
	key := r.Key(KeyCurrentUser)
	if user == nil {
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
		return nil
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal current user: %w", err)
	}
	if err := r.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying Redis connection if present.
func (r *RedisRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}

func (r *RedisRepository) get(ctx context.Context, suffix string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	key := r.Key(suffix)
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return appErrors.ErrCacheMiss
		}
		return fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("unmarshal cache value for %s: %w", key, err)
	}
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
