package port

import (
	"context"
	"errors"

	"github.com/rl1809/bookstore/internal/core/domain"
)

var ErrOptimisticLock = errors.New("optimistic lock conflict")

type BookRepository interface {
	// Add registers a new book; an already registered ISBN is left untouched
	Add(ctx context.Context, book *domain.Book) error

	// Get returns domain.ErrBookNotFound for an unregistered ISBN
	Get(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error)

	IsRegistered(ctx context.Context, isbn13 domain.ISBN13) (bool, error)

	// Search returns nil without error for an unregistered ISBN
	Search(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error)

	// Update stores the book with version check for optimistic locking
	Update(ctx context.Context, book *domain.Book) error

	GetAll(ctx context.Context) ([]*domain.Book, error)
}
