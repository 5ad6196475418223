package services

import "errors"

// Failure taxonomy of the order lifecycle. Handlers map these to HTTP
// status codes; callers match with errors.Is.
var (
	ErrValidation          = errors.New("validation failed")
	ErrMealUnavailable     = errors.New("meal is not available for ordering")
	ErrInsufficientStock   = errors.New("not enough portions available")
	ErrInvalidDeliveryType = errors.New("delivery type not supported for this meal")
	ErrNotOwner            = errors.New("not allowed to act on this order")
	ErrInvalidTransition   = errors.New("order cannot be changed from its current status")
	ErrDuplicateRating     = errors.New("order has already been rated")
	ErrNotFound            = errors.New("not found")
)
