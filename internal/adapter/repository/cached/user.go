package cached

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"user-admin-console/internal/adapter/cache"
	domain "user-admin-console/internal/domain/user"
	"user-admin-console/internal/metrics"
	"user-admin-console/internal/usecase/user"
)

// UserRepository decorates a persistent user.Repository with a cache-aside read
// path. Reads by ID for the same user are collapsed into one database call.
type UserRepository struct {
	dbRepo user.Repository
	cache  cache.UserCache
	log    *zap.Logger
	group  singleflight.Group
}

// NewUserRepository wraps dbRepo. A nil cache turns the decorator into a
// pass-through that still collapses concurrent reads.
func NewUserRepository(dbRepo user.Repository, c cache.UserCache, log *zap.Logger) *UserRepository {
	return &UserRepository{
		dbRepo: dbRepo,
		cache:  c,
		log:    log,
	}
}

// Create delegates to the DB repository.
func (r *UserRepository) Create(ctx context.Context, u *domain.User) (string, error) {
	return r.dbRepo.Create(ctx, u)
}

// GetByID serves a user from the cache, falling back to the database on a miss or
// a cache failure.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u := r.fromCache(ctx, id); u != nil {
		return u, nil
	}

	result, err, shared := r.group.Do(id, func() (any, error) {
		// Another caller may have filled the cache while this one queued
		if u := r.fromCache(ctx, id); u != nil {
			return u, nil
		}

		u, err := r.dbRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if r.cache != nil {
			if err := r.cache.Set(ctx, u); err != nil {
				r.log.Warn("failed to cache user", zap.String("id", id), zap.Error(err))
			}
		}
		return u, nil
	})
	if err != nil {
		return nil, err
	}

	u := result.(*domain.User)
	if shared {
		// Callers must not alias one record
		clone := *u
		return &clone, nil
	}
	return u, nil
}

func (r *UserRepository) fromCache(ctx context.Context, id string) *domain.User {
	if r.cache == nil {
		return nil
	}

	u, err := r.cache.Get(ctx, id)
	switch {
	case err != nil:
		metrics.ObserveCacheLookup("error")
		r.log.Warn("cache get error, falling back to database", zap.String("id", id), zap.Error(err))
		return nil
	case u == nil:
		metrics.ObserveCacheLookup("miss")
		return nil
	default:
		metrics.ObserveCacheLookup("hit")
		return u
	}
}

// GetByEmail delegates to the DB repository.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.dbRepo.GetByEmail(ctx, email)
}

// Update writes through to the database and evicts the cached copy.
func (r *UserRepository) Update(ctx context.Context, u *domain.User) (string, error) {
	id, err := r.dbRepo.Update(ctx, u)
	if err != nil {
		return "", err
	}

	if r.cache != nil {
		if err := r.cache.Delete(ctx, u.ID); err != nil {
			r.log.Warn("failed to invalidate cache after update", zap.String("id", u.ID), zap.Error(err))
		}
	}

	return id, nil
}

// List delegates to the DB repository. Pages are never cached.
func (r *UserRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	return r.dbRepo.List(ctx, query, page, limit)
}
