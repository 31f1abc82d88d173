package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rl1809/bookstore/internal/core/domain"
	"github.com/rl1809/bookstore/internal/port"
)

const tracerName = "github.com/rl1809/bookstore/internal/core/service"

type BookStoreService struct {
	books  port.BookRepository
	events port.DomainEventSender
	now    func() time.Time
	tracer trace.Tracer
}

type Option func(*BookStoreService)

// WithClock replaces time.Now as the source of event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *BookStoreService) {
		s.now = now
	}
}

func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(s *BookStoreService) {
		s.tracer = tp.Tracer(tracerName)
	}
}

func NewBookStoreService(books port.BookRepository, events port.DomainEventSender, opts ...Option) *BookStoreService {
	s := &BookStoreService{
		books:  books,
		events: events,
		now:    time.Now,
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddToStock increases the stock of isbn13, registering the book first if needed.
func (s *BookStoreService) AddToStock(ctx context.Context, isbn13 domain.ISBN13, amount int) (err error) {
	ctx, span := s.startSpan(ctx, "addToStock", isbn13, attribute.Int("amount", amount))
	defer func() { endSpan(span, err) }()

	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive, got %d", domain.ErrInvalidArgument, amount)
	}

	book, err := s.books.Search(ctx, isbn13)
	if err != nil {
		return fmt.Errorf("search book: %w", err)
	}
	if book == nil {
		if err := s.books.Add(ctx, domain.NewBook(isbn13)); err != nil {
			return fmt.Errorf("add book: %w", err)
		}
		if book, err = s.books.Get(ctx, isbn13); err != nil {
			return fmt.Errorf("get book: %w", err)
		}
	}

	if err := book.AddToStock(amount); err != nil {
		return err
	}

	if err := s.books.Update(ctx, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	return nil
}

// Sell sells one copy of isbn13. Selling the last copy publishes BookSoldOut.
func (s *BookStoreService) Sell(ctx context.Context, isbn13 domain.ISBN13) (err error) {
	ctx, span := s.startSpan(ctx, "sell", isbn13)
	defer func() { endSpan(span, err) }()

	book, err := s.books.Search(ctx, isbn13)
	if err != nil {
		return fmt.Errorf("search book: %w", err)
	}
	if book == nil {
		return fmt.Errorf("%w: %s is not registered", domain.ErrBookNotInStock, isbn13)
	}

	events, err := book.Sell(s.now())
	if err != nil {
		return err
	}

	if err := s.books.Update(ctx, book); err != nil {
		return fmt.Errorf("update book: %w", err)
	}

	for _, event := range events {
		span.AddEvent("domain_event", trace.WithAttributes(attribute.String("event.type", event.EventType())))
		if err := s.events.Send(ctx, event); err != nil {
			return fmt.Errorf("send %s: %w", event.EventType(), err)
		}
	}

	return nil
}

// AmountInStock returns the current stock, 0 for an unregistered book.
func (s *BookStoreService) AmountInStock(ctx context.Context, isbn13 domain.ISBN13) (amount int, err error) {
	ctx, span := s.startSpan(ctx, "amountInStock", isbn13)
	defer func() { endSpan(span, err) }()

	book, err := s.books.Search(ctx, isbn13)
	if err != nil {
		return 0, fmt.Errorf("search book: %w", err)
	}
	if book == nil {
		return 0, nil
	}

	return book.AmountInStock(), nil
}

// GetBooks lists the ISBNs of all registered books in ascending order.
func (s *BookStoreService) GetBooks(ctx context.Context) (isbns []domain.ISBN13, err error) {
	ctx, span := s.tracer.Start(ctx, "bookstore.service.getBooks")
	defer func() { endSpan(span, err) }()

	books, err := s.books.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all books: %w", err)
	}

	isbns = make([]domain.ISBN13, 0, len(books))
	for _, book := range books {
		isbns = append(isbns, book.ISBN13())
	}
	sort.Slice(isbns, func(i, j int) bool {
		return isbns[i].String() < isbns[j].String()
	})

	span.SetAttributes(attribute.Int("books.count", len(isbns)))
	return isbns, nil
}

func (s *BookStoreService) startSpan(ctx context.Context, op string, isbn13 domain.ISBN13, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("book.isbn13", isbn13.String()))
	return s.tracer.Start(ctx, "bookstore.service."+op, trace.WithAttributes(attrs...))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
