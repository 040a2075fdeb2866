package payment

import "errors"

var (
	ErrHashMismatch       = errors.New("hash verification failed")
	ErrMissingCredentials = errors.New("missing PayU merchant key or salt")
	ErrMissingFields      = errors.New("missing required payment fields")
)
