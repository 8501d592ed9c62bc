package gpu

import "github.com/go-faster/errors"

var (
	ErrInvalidAddress = errors.New("invalid physical address")
	ErrInvalidRange   = errors.New("invalid memory range")
	ErrZeroSize       = errors.New("zero size")
	ErrUnimplemented  = errors.New("unimplemented")
	ErrOutOfBounds    = errors.New("access out of memory bounds")
)
