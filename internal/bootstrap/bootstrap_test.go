package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/core/domain"
)

func TestOpenRepository_Memory(t *testing.T) {
	repo, err := OpenRepository(context.Background(), config.Default())
	require.NoError(t, err)
	defer repo.Close()

	_, ok := repo.BookRepository.(*storage.MemoryRepository)
	assert.True(t, ok)
}

func TestOpenRepository_Unknown(t *testing.T) {
	cfg := config.Default()
	cfg.Storage = "mongo"

	_, err := OpenRepository(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown storage")
}

func TestOpenEventSender_LogFallback(t *testing.T) {
	cfg := config.Default()
	cfg.EventTopic = ""
	cfg.WorkerCount = 2

	sender := OpenEventSender(context.Background(), cfg)
	event := domain.BuildBookSoldOut(domain.MustISBN13("978-3-86490-387-8"), time.Now())
	require.NoError(t, sender.Send(context.Background(), event))

	sender.Close()
	assert.Nil(t, sender.rdb)
}
