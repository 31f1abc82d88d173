package storage

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const (
	bookKeyPrefix = "book:"
	booksSetKey   = "books"
	stockField    = "stock"
	versionField  = "version"
)

var addBookScript = redis.NewScript(`
local key = KEYS[1]

if redis.call('EXISTS', key) == 1 then
	return 0
end

redis.call('HSET', key, 'stock', ARGV[1], 'version', ARGV[2])
redis.call('SADD', KEYS[2], ARGV[3])
return 1
`)

var updateBookScript = redis.NewScript(`
local key = KEYS[1]

local version = redis.call('HGET', key, 'version')
if not version then
	return -1
end

if tonumber(version) ~= tonumber(ARGV[2]) then
	return 0
end

redis.call('HSET', key, 'stock', ARGV[1], 'version', tonumber(version) + 1)
return 1
`)

// RedisRepository stores each book as a hash and keeps the set of registered ISBNs.
// Writes go through Lua scripts so the version check and the write are atomic.
type RedisRepository struct {
	client *redis.Client
}

var _ port.BookRepository = (*RedisRepository)(nil)

func NewRedisRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

func (r *RedisRepository) Add(ctx context.Context, book *domain.Book) error {
	isbn := book.ISBN13().String()
	keys := []string{bookKeyPrefix + isbn, booksSetKey}

	if err := addBookScript.Run(ctx, r.client, keys, book.AmountInStock(), book.Version(), isbn).Err(); err != nil {
		return fmt.Errorf("add book: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	book, err := r.Search(ctx, isbn13)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (r *RedisRepository) IsRegistered(ctx context.Context, isbn13 domain.ISBN13) (bool, error) {
	n, err := r.client.Exists(ctx, bookKeyPrefix+isbn13.String()).Result()
	if err != nil {
		return false, fmt.Errorf("exists book: %w", err)
	}
	return n == 1, nil
}

func (r *RedisRepository) Search(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	fields, err := r.client.HGetAll(ctx, bookKeyPrefix+isbn13.String()).Result()
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}
	if len(fields) == 0 {
		return nil, nil
	}
	return restoreHash(isbn13, fields)
}

func (r *RedisRepository) Update(ctx context.Context, book *domain.Book) error {
	key := bookKeyPrefix + book.ISBN13().String()

	result, err := updateBookScript.Run(ctx, r.client, []string{key}, book.AmountInStock(), book.Version()).Int()
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	switch result {
	case -1:
		return domain.ErrBookNotFound
	case 0:
		return port.ErrOptimisticLock
	}

	book.IncrementVersion()
	return nil
}

func (r *RedisRepository) GetAll(ctx context.Context) ([]*domain.Book, error) {
	members, err := r.client.SMembers(ctx, booksSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	sort.Strings(members)

	cmds := make([]*redis.MapStringStringCmd, len(members))
	_, err = r.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, member := range members {
			cmds[i] = pipe.HGetAll(ctx, bookKeyPrefix+member)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("get books: %w", err)
	}

	books := make([]*domain.Book, 0, len(members))
	for i, member := range members {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue
		}
		isbn13, err := domain.NewISBN13(member)
		if err != nil {
			return nil, fmt.Errorf("stored isbn13: %w", err)
		}
		book, err := restoreHash(isbn13, fields)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, nil
}

func restoreHash(isbn13 domain.ISBN13, fields map[string]string) (*domain.Book, error) {
	amount, err := strconv.Atoi(fields[stockField])
	if err != nil {
		return nil, fmt.Errorf("parse stock of %s: %w", isbn13, err)
	}
	version, err := strconv.Atoi(fields[versionField])
	if err != nil {
		return nil, fmt.Errorf("parse version of %s: %w", isbn13, err)
	}
	return domain.RestoreBook(isbn13, amount, version)
}
