package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS books (
	isbn13          CHAR(13)    PRIMARY KEY,
	amount_in_stock INTEGER     NOT NULL DEFAULT 0 CHECK (amount_in_stock >= 0),
	version         INTEGER     NOT NULL DEFAULT 0,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

type PostgresRepository struct {
	db *pgxpool.Pool
}

var _ port.BookRepository = (*PostgresRepository)(nil)

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates the books table if it does not exist.
func (p *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Add(ctx context.Context, book *domain.Book) error {
	_, err := p.db.Exec(ctx, `
		INSERT INTO books (isbn13, amount_in_stock, version)
		VALUES ($1, $2, $3)
		ON CONFLICT (isbn13) DO NOTHING`,
		book.ISBN13().String(), book.AmountInStock(), book.Version(),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Get(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	book, err := p.Search(ctx, isbn13)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (p *PostgresRepository) IsRegistered(ctx context.Context, isbn13 domain.ISBN13) (bool, error) {
	var exists bool
	err := p.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn13 = $1)`, isbn13.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query book: %w", err)
	}
	return exists, nil
}

func (p *PostgresRepository) Search(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	var amount, version int
	err := p.db.QueryRow(ctx, `
		SELECT amount_in_stock, version
		FROM books WHERE isbn13 = $1`, isbn13.String(),
	).Scan(&amount, &version)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}

	return domain.RestoreBook(isbn13, amount, version)
}

func (p *PostgresRepository) Update(ctx context.Context, book *domain.Book) error {
	tag, err := p.db.Exec(ctx, `
		UPDATE books
		SET amount_in_stock = $1, version = version + 1, updated_at = NOW()
		WHERE isbn13 = $2 AND version = $3`,
		book.AmountInStock(), book.ISBN13().String(), book.Version(),
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	if tag.RowsAffected() == 0 {
		registered, err := p.IsRegistered(ctx, book.ISBN13())
		if err != nil {
			return err
		}
		if !registered {
			return domain.ErrBookNotFound
		}
		return port.ErrOptimisticLock
	}

	book.IncrementVersion()
	return nil
}

func (p *PostgresRepository) GetAll(ctx context.Context) ([]*domain.Book, error) {
	rows, err := p.db.Query(ctx, `
		SELECT isbn13, amount_in_stock, version
		FROM books ORDER BY isbn13`)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		var raw string
		var amount, version int
		if err := rows.Scan(&raw, &amount, &version); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		book, err := restoreRow(raw, amount, version)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate books: %w", err)
	}

	return books, nil
}
