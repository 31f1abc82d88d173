package storage

import (
	"context"
	"os"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/port"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func cleanRedisBooks(t *testing.T, client *redis.Client) {
	keys := []string{booksSetKey}
	for _, isbn := range contractISBNs {
		keys = append(keys, bookKeyPrefix+isbn.String())
	}
	require.NoError(t, client.Del(context.Background(), keys...).Err())
}

func TestRedisRepository(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	runRepositoryContract(t, func(t *testing.T) port.BookRepository {
		cleanRedisBooks(t, client)
		return NewRedisRepository(client)
	})
}

func TestRedisRepository_ConcurrentSell(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()
	cleanRedisBooks(t, client)

	runConcurrentSell(t, NewRedisRepository(client))
}
