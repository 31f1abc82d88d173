package domain

import "time"

// DomainEvent is an immutable fact that already happened in the domain.
type DomainEvent interface {
	EventType() string
	HasOccurredAt() time.Time
}

const BookSoldOutEventType = "BookSoldOut"

// BookSoldOut is published when the last copy of a book was sold.
type BookSoldOut struct {
	ISBN13     ISBN13    `json:"isbn13"`
	OccurredAt time.Time `json:"occurred_at"`
}

func BuildBookSoldOut(isbn13 ISBN13, occurredAt time.Time) BookSoldOut {
	return BookSoldOut{
		ISBN13:     isbn13,
		OccurredAt: occurredAt.UTC(),
	}
}

func (e BookSoldOut) EventType() string {
	return BookSoldOutEventType
}

func (e BookSoldOut) HasOccurredAt() time.Time {
	return e.OccurredAt
}
