package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

type bookRecord struct {
	amountInStock int
	version       int
}

// MemoryRepository keeps books in process memory. Callers always receive copies,
// so a mutated Book is only visible to others after Update.
type MemoryRepository struct {
	mu    sync.RWMutex
	books map[domain.ISBN13]bookRecord
}

var _ port.BookRepository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{books: make(map[domain.ISBN13]bookRecord)}
}

func (m *MemoryRepository) Add(ctx context.Context, book *domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.books[book.ISBN13()]; ok {
		return nil
	}
	m.books[book.ISBN13()] = bookRecord{amountInStock: book.AmountInStock(), version: book.Version()}
	return nil
}

func (m *MemoryRepository) Get(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	book, err := m.Search(ctx, isbn13)
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, domain.ErrBookNotFound
	}
	return book, nil
}

func (m *MemoryRepository) IsRegistered(ctx context.Context, isbn13 domain.ISBN13) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.books[isbn13]
	return ok, nil
}

func (m *MemoryRepository) Search(ctx context.Context, isbn13 domain.ISBN13) (*domain.Book, error) {
	m.mu.RLock()
	rec, ok := m.books[isbn13]
	m.mu.RUnlock()

	if !ok {
		return nil, nil
	}
	return domain.RestoreBook(isbn13, rec.amountInStock, rec.version)
}

func (m *MemoryRepository) Update(ctx context.Context, book *domain.Book) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.books[book.ISBN13()]
	if !ok {
		return domain.ErrBookNotFound
	}
	if rec.version != book.Version() {
		return port.ErrOptimisticLock
	}

	m.books[book.ISBN13()] = bookRecord{amountInStock: book.AmountInStock(), version: rec.version + 1}
	book.IncrementVersion()
	return nil
}

func (m *MemoryRepository) GetAll(ctx context.Context) ([]*domain.Book, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	books := make([]*domain.Book, 0, len(m.books))
	for isbn13, rec := range m.books {
		book, err := domain.RestoreBook(isbn13, rec.amountInStock, rec.version)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	sort.Slice(books, func(i, j int) bool {
		return books[i].ISBN13().String() < books[j].ISBN13().String()
	})
	return books, nil
}
