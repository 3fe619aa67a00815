package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	domain "user-admin-console/internal/domain/user"
)

// keyPrefix namespaces cached users. Bump it when cachedUser changes shape.
const keyPrefix = "console:user:v1:"

// UserCache stores user records keyed by ID.
type UserCache interface {
	// Get returns nil, nil on a cache miss.
	Get(ctx context.Context, id string) (*domain.User, error)
	Set(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}

// RedisUserCache implements UserCache on Redis.
type RedisUserCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.Logger
}

// NewRedisUserCache creates a Redis-backed user cache whose entries expire after ttl.
func NewRedisUserCache(client *redis.Client, ttl time.Duration, log *zap.Logger) *RedisUserCache {
	return &RedisUserCache{
		client: client,
		ttl:    ttl,
		log:    log,
	}
}

// cachedUser is the wire form of a cached record.
type cachedUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Enabled   bool   `json:"enabled"`
	Org       string `json:"org"`
	Role      string `json:"role"`
}

func cacheKey(id string) string {
	return keyPrefix + id
}

// Get retrieves a user from Redis. An entry that no longer decodes is dropped and
// reported as a miss.
func (c *RedisUserCache) Get(ctx context.Context, id string) (*domain.User, error) {
	key := cacheKey(id)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.log.Debug("cache miss", zap.String("user_id", id))
		return nil, nil
	}
	if err != nil {
		c.log.Error("failed to get from cache", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}

	var entry cachedUser
	if err := json.Unmarshal(data, &entry); err != nil {
		c.log.Warn("dropping undecodable cache entry", zap.String("user_id", id), zap.Error(err))
		if delErr := c.client.Del(ctx, key).Err(); delErr != nil {
			c.log.Error("failed to drop cache entry", zap.String("user_id", id), zap.Error(delErr))
		}
		return nil, nil
	}

	c.log.Debug("cache hit", zap.String("user_id", id))
	return &domain.User{
		ID:        entry.ID,
		FirstName: entry.FirstName,
		LastName:  entry.LastName,
		Email:     entry.Email,
		Enabled:   entry.Enabled,
		Org:       domain.Org(entry.Org),
		Role:      domain.Role(entry.Role),
	}, nil
}

// Set stores a user with the configured TTL.
func (c *RedisUserCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil {
		return errors.New("cannot cache nil user")
	}

	data, err := json.Marshal(cachedUser{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Enabled:   user.Enabled,
		Org:       string(user.Org),
		Role:      string(user.Role),
	})
	if err != nil {
		return err
	}

	if err := c.client.Set(ctx, cacheKey(user.ID), data, c.ttl).Err(); err != nil {
		c.log.Error("failed to set cache", zap.String("user_id", user.ID), zap.Error(err))
		return err
	}

	c.log.Debug("cached user", zap.String("user_id", user.ID), zap.Duration("ttl", c.ttl))
	return nil
}

// Delete evicts a user. Evicting an absent key is not an error.
func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		c.log.Error("failed to delete from cache", zap.String("user_id", id), zap.Error(err))
		return err
	}

	c.log.Debug("deleted from cache", zap.String("user_id", id))
	return nil
}
