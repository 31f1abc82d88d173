// Package bootstrap connects the adapters selected by config.
package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/bookstore/internal/adapter/messaging"
	"github.com/rl1809/bookstore/internal/adapter/storage"
	"github.com/rl1809/bookstore/internal/config"
	"github.com/rl1809/bookstore/internal/port"
)

// Repository is a BookRepository together with the connection behind it.
type Repository struct {
	port.BookRepository
	close func()
}

func (r *Repository) Close() {
	if r.close != nil {
		r.close()
	}
}

// OpenRepository connects to the configured storage and creates its schema.
func OpenRepository(ctx context.Context, cfg config.Config) (*Repository, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return &Repository{BookRepository: storage.NewMemoryRepository()}, nil

	case config.StorageMySQL:
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			return nil, fmt.Errorf("open mysql: %w", err)
		}
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(5 * time.Minute)

		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("ping mysql: %w", err)
		}
		log.Println("connected to mysql")

		repo := storage.NewMySQLRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return &Repository{BookRepository: repo, close: func() { db.Close() }}, nil

	case config.StoragePostgres:
		pool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		log.Println("connected to postgres")

		repo := storage.NewPostgresRepository(pool)
		if err := repo.Migrate(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		return &Repository{BookRepository: repo, close: pool.Close}, nil

	case config.StorageRedis:
		rdb, err := ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		return &Repository{BookRepository: storage.NewRedisRepository(rdb), close: func() { rdb.Close() }}, nil
	}

	return nil, fmt.Errorf("unknown storage %q", cfg.Storage)
}

func ConnectRedis(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	log.Println("connected to redis")
	return rdb, nil
}

// EventSender is the asynchronous sender the service publishes through.
type EventSender struct {
	*messaging.AsyncSender
	rdb *redis.Client
}

// Close drains pending events before releasing the broker connection.
func (e *EventSender) Close() {
	e.AsyncSender.Close()
	if e.rdb != nil {
		e.rdb.Close()
	}
}

// OpenEventSender starts the worker pool. Events go to Redis pub/sub on the
// configured topic, or to the log when no topic is set or Redis is unreachable.
func OpenEventSender(ctx context.Context, cfg config.Config) *EventSender {
	var (
		next port.DomainEventSender = messaging.LogSender{}
		rdb  *redis.Client
	)

	if cfg.EventTopic != "" {
		client, err := ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Printf("events: falling back to log sender: %v", err)
		} else {
			rdb = client
			next = messaging.NewRedisPublisher(client, cfg.EventTopic)
		}
	}

	sender := messaging.NewAsyncSender(next, cfg.QueueSize, cfg.EventTimeout)
	sender.Start(cfg.WorkerCount)
	log.Printf("started %d event workers", cfg.WorkerCount)

	return &EventSender{AsyncSender: sender, rdb: rdb}
}
