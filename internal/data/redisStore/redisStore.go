package redisStore

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocQA/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

type Store struct {
	client *redis.Client
	Type   int
	logger *logger_i.Logger
}

// New connects to one logical redis database and fails if it does not answer a ping.
func New(ctx context.Context, addr, password string, dbType int) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  addr,
		Password:              password,
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		_ = newClient.Close()
		return nil, fmt.Errorf("redis is offline at %s: %w", addr, err)
	}

	logger := logger_i.NewLogger(fmt.Sprintf("Redis Store %d", dbType))
	logger.Info("Redis store init successfully")
	return &Store{client: newClient, Type: dbType, logger: logger}, nil
}

// FromClient wraps an existing client, used with miniredis in tests.
func FromClient(client *redis.Client) *Store {
	return &Store{client: client, logger: logger_i.NewLogger("Redis Store")}
}

func (s *Store) Close() error {
	s.logger.Info("Closing Redis Store")
	return s.client.Close()
}
