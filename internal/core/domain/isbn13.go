package domain

import (
	"fmt"
	"strings"
)

const isbn13Length = 13

// ISBN13 is a validated 13-digit book identifier. The zero value is not a valid ISBN.
type ISBN13 struct {
	digits string
}

// NewISBN13 validates raw and returns its normalized form. Hyphens and spaces are
// accepted as separators, e.g. "978-3-86490-387-8".
func NewISBN13(raw string) (ISBN13, error) {
	digits := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, raw)

	if len(digits) != isbn13Length {
		return ISBN13{}, fmt.Errorf("%w: isbn13 %q must have 13 digits", ErrInvalidArgument, raw)
	}

	sum := 0
	for i := 0; i < isbn13Length; i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return ISBN13{}, fmt.Errorf("%w: isbn13 %q contains a non-digit", ErrInvalidArgument, raw)
		}
		if i == isbn13Length-1 {
			break
		}
		weight := 1
		if i%2 == 1 {
			weight = 3
		}
		sum += int(c-'0') * weight
	}

	check := (10 - sum%10) % 10
	if int(digits[isbn13Length-1]-'0') != check {
		return ISBN13{}, fmt.Errorf("%w: isbn13 %q fails checksum", ErrInvalidArgument, raw)
	}

	return ISBN13{digits: digits}, nil
}

// MustISBN13 is like NewISBN13 but panics on invalid input.
func MustISBN13(raw string) ISBN13 {
	isbn, err := NewISBN13(raw)
	if err != nil {
		panic(err)
	}
	return isbn
}

func (i ISBN13) String() string {
	return i.digits
}

func (i ISBN13) IsZero() bool {
	return i.digits == ""
}

func (i ISBN13) MarshalText() ([]byte, error) {
	return []byte(i.digits), nil
}

func (i *ISBN13) UnmarshalText(text []byte) error {
	parsed, err := NewISBN13(string(text))
	if err != nil {
		return err
	}
	*i = parsed
	return nil
}
