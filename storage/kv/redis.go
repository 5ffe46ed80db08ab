package kv

import (
	"context"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the redis connection settings.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

type redisStore struct {
	client redis.UniversalClient
}

// OpenRedis connects to redis and pings it before returning.
func OpenRedis(ctx context.Context, conf RedisConfig) (Store, error) {
	if conf.DialTimeout <= 0 {
		conf.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        conf.Addr,
		Password:    conf.Password,
		DB:          conf.DB,
		DialTimeout: conf.DialTimeout,
	})

	ctx, cancel := context.WithTimeout(ctx, conf.DialTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, pkgerrors.Wrapf(err, "connecting to redis at %s", conf.Addr)
	}
	return NewRedis(client), nil
}

// NewRedis wraps an existing client.
func NewRedis(client redis.UniversalClient) Store {
	return &redisStore{client: client}
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (s *redisStore) Put(ctx context.Context, key string, value []byte) error {
	return s.client.Set(ctx, key, value, 0).Err()
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
