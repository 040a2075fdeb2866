package product

import "errors"

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNegativeStock   = errors.New("stock must not be negative")
)
