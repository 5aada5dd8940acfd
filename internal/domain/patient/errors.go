package patient

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrNotFound           = errors.New("not found")
	ErrDuplicate          = errors.New("patient already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
