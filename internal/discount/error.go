package discount

import "errors"

var (
	ErrDiscountNotFound = errors.New("discount code not found")
	ErrInvalidCode      = errors.New("invalid discount code")
)
