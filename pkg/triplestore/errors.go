package triplestore

import "errors"

var (
	ErrInvalidTriple = errors.New("invalid triple")
	ErrReadOnly      = errors.New("store is read-only")
)
