package scheduling

import "errors"

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotFound         = errors.New("not found")
	ErrSlotTaken        = errors.New("slot is no longer available")
	ErrAlreadyCancelled = errors.New("appointment already cancelled")
)
