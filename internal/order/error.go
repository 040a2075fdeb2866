package order

import "errors"

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrOrderNotFound   = errors.New("order not found")
	ErrProductNotFound = errors.New("product referenced by order not found")
	ErrStockExhausted  = errors.New("not enough stock")
	ErrForbidden       = errors.New("forbidden")
	ErrInvalidStatus   = errors.New("invalid status transition")
)
