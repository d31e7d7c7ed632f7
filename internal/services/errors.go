package services

import "errors"

// Common service errors. Handlers map these to HTTP status codes with
// errors.Is, so services wrap them with fmt.Errorf("...: %w", Err...) when
// adding detail.
var (
	ErrNotFound          = errors.New("record not found")
	ErrValidation        = errors.New("validation failed")
	ErrInvalidState      = errors.New("invalid state transition")
	ErrAllocation        = errors.New("allocation not permitted")
	ErrQuantityExceeded  = errors.New("returned quantity exceeds remaining source quantity")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrPrecondition      = errors.New("precondition not met")
)
