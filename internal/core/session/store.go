package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store 服务端会话记录。登出/拉黑直接删记录，旧 Cookie 即刻作废。
type Store interface {
	Save(ctx context.Context, sid, uid string, ttl time.Duration) error
	Get(ctx context.Context, sid string) (uid string, ok bool, err error)
	Delete(ctx context.Context, sid string) error
}

type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(addr, pass string, db int) *RedisStore {
	return &RedisStore{rdb: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

func (s *RedisStore) key(sid string) string { return "session:" + sid }

func (s *RedisStore) Save(ctx context.Context, sid, uid string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.key(sid), uid, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, sid string) (string, bool, error) {
	uid, err := s.rdb.Get(ctx, s.key(sid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return uid, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.rdb.Del(ctx, s.key(sid)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }
