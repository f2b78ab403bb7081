package storage

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
	session "github.com/kentecode/go-session"
	"github.com/redis/go-redis/v9"
)

// Redis is a Storage backed by a Redis key. Useful when the hosting process
// wants session state to survive restarts or be shared across replicas.
type Redis struct {
	client redis.UniversalClient
	prefix string
}

var _ session.Storage = (*Redis)(nil)

// NewRedis creates a Redis storage. prefix namespaces the session keys;
// pass "" for none.
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, session.ErrNoRecord
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "redis session read failed")
	}

	return raw, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "redis session write failed")
	}
	return nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "redis session delete failed")
	}
	return nil
}
