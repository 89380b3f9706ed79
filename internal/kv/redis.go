package kv

import (
	"context"
	"errors"
	"fmt"

	radix "github.com/mediocregopher/radix/v3"
)

const redisPoolSize = 10

// RedisStore namespaces every key with Prefix so several storefronts can
// share one Redis.
type RedisStore struct {
	Client radix.Client
	Prefix string
}

func OpenRedis(addr, prefix string) (*RedisStore, error) {
	if addr == "" {
		return nil, errors.New("REDIS_ADDR is empty")
	}
	pool, err := radix.NewPool("tcp", addr, redisPoolSize)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return &RedisStore{Client: pool, Prefix: prefix}, nil
}

func (s *RedisStore) key(k string) string {
	return s.Prefix + k
}

func (s *RedisStore) Load(_ context.Context, key string) ([]byte, error) {
	var val []byte
	mn := radix.MaybeNil{Rcv: &val}
	if err := s.Client.Do(radix.Cmd(&mn, "GET", s.key(key))); err != nil {
		return nil, err
	}
	if mn.Nil {
		return nil, ErrNotFound
	}
	return val, nil
}

func (s *RedisStore) Save(_ context.Context, key string, value []byte) error {
	return s.Client.Do(radix.FlatCmd(nil, "SET", s.key(key), value))
}

func (s *RedisStore) Delete(_ context.Context, key string) error {
	return s.Client.Do(radix.Cmd(nil, "DEL", s.key(key)))
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
