package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	RDB    *redis.Client
	Prefix string
	// TTL is refreshed on every save; zero keeps keys forever.
	TTL   time.Duration
	codec codec
}

func NewRedisBackend(rdb *redis.Client, ttl time.Duration, sealer *Sealer) *RedisBackend {
	return &RedisBackend{RDB: rdb, Prefix: "storefront:session:", TTL: ttl, codec: codec{sealer: sealer}}
}

func (r *RedisBackend) key(id string) string { return r.Prefix + id }

func (r *RedisBackend) Load(ctx context.Context, id string) (Session, bool, error) {
	b, err := r.RDB.Get(ctx, r.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	s, err := r.codec.decode(b)
	if err != nil {
		return Session{}, false, err
	}
	return s, true, nil
}

func (r *RedisBackend) Save(ctx context.Context, id string, s Session) error {
	data, err := r.codec.encode(s)
	if err != nil {
		return err
	}
	return r.RDB.Set(ctx, r.key(id), data, r.TTL).Err()
}

func (r *RedisBackend) Delete(ctx context.Context, id string) error {
	return r.RDB.Del(ctx, r.key(id)).Err()
}
