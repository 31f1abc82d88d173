package domain

import (
	"fmt"
	"math"
	"time"
)

// Book is the stock aggregate for one ISBN. Its stock never drops below zero.
type Book struct {
	isbn13        ISBN13
	amountInStock int
	version       int // optimistic locking
}

func NewBook(isbn13 ISBN13) *Book {
	return &Book{isbn13: isbn13}
}

// RestoreBook rebuilds a Book from persisted state.
func RestoreBook(isbn13 ISBN13, amountInStock, version int) (*Book, error) {
	if isbn13.IsZero() {
		return nil, fmt.Errorf("%w: missing isbn13", ErrInvalidArgument)
	}
	if amountInStock < 0 {
		return nil, fmt.Errorf("%w: negative stock %d for %s", ErrInvalidArgument, amountInStock, isbn13)
	}
	return &Book{isbn13: isbn13, amountInStock: amountInStock, version: version}, nil
}

func (b *Book) ISBN13() ISBN13 {
	return b.isbn13
}

func (b *Book) AmountInStock() int {
	return b.amountInStock
}

func (b *Book) IsSoldOut() bool {
	return b.amountInStock == 0
}

func (b *Book) Version() int {
	return b.version
}

// IncrementVersion is called by repositories after the book was written.
func (b *Book) IncrementVersion() {
	b.version++
}

func (b *Book) AddToStock(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", ErrInvalidArgument, amount)
	}
	if amount > math.MaxInt-b.amountInStock {
		return fmt.Errorf("%w: adding %d to stock %d of %s overflows", ErrInvalidArgument, amount, b.amountInStock, b.isbn13)
	}
	b.amountInStock += amount
	return nil
}

// Sell removes one copy from stock. When the last copy is sold the returned events
// contain a single BookSoldOut; the caller is responsible for publishing it.
func (b *Book) Sell(at time.Time) ([]DomainEvent, error) {
	if b.amountInStock == 0 {
		return nil, fmt.Errorf("%w: %s", ErrBookNotInStock, b.isbn13)
	}

	b.amountInStock--
	if b.amountInStock > 0 {
		return nil, nil
	}

	return []DomainEvent{BuildBookSoldOut(b.isbn13, at)}, nil
}
