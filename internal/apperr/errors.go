package apperr

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrAlreadyExists     = errors.New("already exists")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrCyclicInheritance = errors.New("cyclic inheritance")
	ErrEmptySelection    = errors.New("empty selection")
)
