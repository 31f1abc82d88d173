package domain

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var anyBook = MustISBN13("978-3-86490-387-8")

func TestNewBook(t *testing.T) {
	book := NewBook(anyBook)

	assert.Equal(t, anyBook, book.ISBN13())
	assert.Equal(t, 0, book.AmountInStock())
	assert.True(t, book.IsSoldOut())
	assert.Equal(t, 0, book.Version())
}

func TestRestoreBook(t *testing.T) {
	book, err := RestoreBook(anyBook, 7, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, book.AmountInStock())
	assert.Equal(t, 3, book.Version())

	_, err = RestoreBook(anyBook, -1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = RestoreBook(ISBN13{}, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestBook_AddToStock_NonPositive(t *testing.T) {
	book := NewBook(anyBook)

	assert.ErrorIs(t, book.AddToStock(0), ErrInvalidArgument)
	assert.ErrorIs(t, book.AddToStock(-3), ErrInvalidArgument)
	assert.Equal(t, 0, book.AmountInStock())
}

func TestBook_AddToStock_Overflow(t *testing.T) {
	book := NewBook(anyBook)
	require.NoError(t, book.AddToStock(math.MaxInt-1))

	require.NoError(t, book.AddToStock(1))
	assert.Equal(t, math.MaxInt, book.AmountInStock())

	assert.ErrorIs(t, book.AddToStock(1), ErrInvalidArgument)
	assert.ErrorIs(t, book.AddToStock(math.MaxInt), ErrInvalidArgument)
	assert.Equal(t, math.MaxInt, book.AmountInStock())
}

func TestBook_Sell(t *testing.T) {
	book := NewBook(anyBook)
	require.NoError(t, book.AddToStock(2))
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	events, err := book.Sell(at)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, 1, book.AmountInStock())

	events, err = book.Sell(at)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, BookSoldOut{ISBN13: anyBook, OccurredAt: at}, events[0])
	assert.Equal(t, BookSoldOutEventType, events[0].EventType())
	assert.True(t, book.IsSoldOut())
}

func TestBook_Sell_NotInStock(t *testing.T) {
	book := NewBook(anyBook)

	events, err := book.Sell(time.Now())

	assert.ErrorIs(t, err, ErrBookNotInStock)
	assert.Nil(t, events)
	assert.Equal(t, 0, book.AmountInStock())
}

func TestBook_AddToStock_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(0, 1_000_000).Draw(t, "start")
		amount := rapid.IntRange(1, 1_000_000).Draw(t, "amount")
		book, err := RestoreBook(anyBook, start, 0)
		require.NoError(t, err)

		require.NoError(t, book.AddToStock(amount))

		assert.Equal(t, start+amount, book.AmountInStock())
	})
}

func TestBook_Sell_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		start := rapid.IntRange(0, 1000).Draw(t, "start")
		book, err := RestoreBook(anyBook, start, 0)
		require.NoError(t, err)

		events, err := book.Sell(time.Now())

		if start == 0 {
			assert.ErrorIs(t, err, ErrBookNotInStock)
			assert.Equal(t, 0, book.AmountInStock())
			assert.Empty(t, events)
			return
		}
		require.NoError(t, err)
		assert.Equal(t, start-1, book.AmountInStock())
		if start == 1 {
			assert.Len(t, events, 1)
		} else {
			assert.Empty(t, events)
		}
	})
}
