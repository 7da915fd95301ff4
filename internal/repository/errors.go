package repository

import "errors"

var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicate    = errors.New("duplicate resource")
	ErrInvalidInput = errors.New("invalid input data")
	ErrNotEnough    = errors.New("not enough stock available")
)

// StockError reports which size ran out; it matches ErrNotEnough through
// errors.Is.
type StockError struct {
	Size string
}

func (e *StockError) Error() string {
	return "insufficient stock for size " + e.Size
}

func (e *StockError) Unwrap() error {
	return ErrNotEnough
}
