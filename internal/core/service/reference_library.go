package service

import (
	"context"
	"fmt"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

// LatestBooks are registered on startup when no other list is configured.
var LatestBooks = []string{
	"978-1-60309-322-4",
	"978-1-891830-85-3",
	"978-1-60309-047-6",
	"978-1-60309-025-4",
	"978-1-60309-016-2",
	"978-1-60309-265-4",
}

// ReferenceLibrary seeds the repository with a catalog of known books.
type ReferenceLibrary struct {
	books  port.BookRepository
	latest []domain.ISBN13
}

func NewReferenceLibrary(books port.BookRepository, latest []domain.ISBN13) *ReferenceLibrary {
	return &ReferenceLibrary{books: books, latest: latest}
}

// AddLatestBooks registers every latest book that is unknown so far, with zero stock.
// It returns the number of books added.
func (l *ReferenceLibrary) AddLatestBooks(ctx context.Context) (int, error) {
	added := 0
	for _, isbn13 := range l.latest {
		registered, err := l.books.IsRegistered(ctx, isbn13)
		if err != nil {
			return added, fmt.Errorf("check %s: %w", isbn13, err)
		}
		if registered {
			continue
		}

		if err := l.books.Add(ctx, domain.NewBook(isbn13)); err != nil {
			return added, fmt.Errorf("add %s: %w", isbn13, err)
		}
		added++
	}

	return added, nil
}

// ParseISBNs validates a list of raw ISBN strings.
func ParseISBNs(raw []string) ([]domain.ISBN13, error) {
	isbns := make([]domain.ISBN13, 0, len(raw))
	for _, r := range raw {
		isbn13, err := domain.NewISBN13(r)
		if err != nil {
			return nil, err
		}
		isbns = append(isbns, isbn13)
	}
	return isbns, nil
}
