package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/msomdec/campuscoders/internal/domain"
)

// DB is the Redis-backed implementation of domain.Database.
type DB struct {
	client *goredis.Client
	prefix string
}

// New connects to the Redis server at addr. Keys are namespaced by prefix.
func New(ctx context.Context, addr, prefix string) (*DB, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &DB{client: client, prefix: prefix}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *goredis.Client, prefix string) *DB {
	return &DB{client: client, prefix: prefix}
}

// Migrate is a no-op: Redis needs no schema.
func (d *DB) Migrate(ctx context.Context) error {
	return nil
}

func (d *DB) Records() domain.RecordStore {
	return &RecordStore{client: d.client, prefix: d.prefix}
}

func (d *DB) Close() error {
	return d.client.Close()
}

// RecordStore implements domain.RecordStore with plain GET/SET/DEL.
type RecordStore struct {
	client *goredis.Client
	prefix string
}

func (s *RecordStore) key(k string) string {
	return s.prefix + k
}

func (s *RecordStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

func (s *RecordStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *RecordStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", key, err)
	}
	return nil
}
