package domain

import "errors"

var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrBookNotInStock  = errors.New("book not in stock")
	ErrBookNotFound    = errors.New("book not found")
)
