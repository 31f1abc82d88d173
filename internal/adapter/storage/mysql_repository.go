package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS books (
	isbn13          CHAR(13)  NOT NULL PRIMARY KEY,
	amount_in_stock INT       NOT NULL DEFAULT 0,
	version         INT       NOT NULL DEFAULT 0,
	created_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at      TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	CHECK (amount_in_stock >= 0)
)`

type MySQLRepository struct {
	db *sql.DB
}

var _ port.BookRepository = (*MySQLRepository)(nil)

func NewMySQLRepository(db *sql.DB) *MySQLRepository {
	return &MySQLRepository{db: db}
}

// Migrate creates the books table if it does not exist.
func (m *MySQLRepository) Migrate(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, mysqlSchema); err != nil {
		return fmt.Errorf("create books table: %w", err)
	}
	return nil
}

func (m *MySQLRepository) Add(ctx context.Context, book *domain.Book) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT IGNORE INTO books (isbn13, amount_in_stock, version)
		VALUES (?, ?, ?)`,
		book.ISBN13().String(), book.AmountInStock(), book.Version(),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

func (m *MySQLRepository) Get(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	book, err := m.Search(ctx, isbn13)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (m *MySQLRepository) IsRegistered(ctx context.Context, isbn13 domain.ISBN13) (bool, error) {
	var exists bool
	err := m.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM books WHERE isbn13 = ?)`, isbn13.String(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query book: %w", err)
	}
	return exists, nil
}

func (m *MySQLRepository) Search(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	var amount, version int
	err := m.db.QueryRowContext(ctx, `
		SELECT amount_in_stock, version
		FROM books WHERE isbn13 = ?`, isbn13.String(),
	).Scan(&amount, &version)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query book: %w", err)
	}

	return domain.RestoreBook(isbn13, amount, version)
}

func (m *MySQLRepository) Update(ctx context.Context, book *domain.Book) error {
	result, err := m.db.ExecContext(ctx, `
		UPDATE books
		SET amount_in_stock = ?, version = version + 1
		WHERE isbn13 = ? AND version = ?`,
		book.AmountInStock(), book.ISBN13().String(), book.Version(),
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return m.missingOrConflict(ctx, book.ISBN13())
	}

	book.IncrementVersion()
	return nil
}

func (m *MySQLRepository) GetAll(ctx context.Context) ([]*domain.Book, error) {
	rows, err := m.db.QueryContext(ctx, `
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

func (m *MySQLRepository) missingOrConflict(ctx context.Context, isbn13 domain.ISBN13) error {
	registered, err := m.IsRegistered(ctx, isbn13)
	if err != nil {
		return err
	}
	if !registered {
		return domain.ErrBookNotFound
	}
	return port.ErrOptimisticLock
}

func restoreRow(raw string, amount, version int) (*domain.Book, error) {
	isbn13, err := domain.NewISBN13(raw)
	if err != nil {
		return nil, fmt.Errorf("stored isbn13: %w", err)
	}
	return domain.RestoreBook(isbn13, amount, version)
}
