package errors

import "errors"

var (
	ErrInvalidField = errors.New("invalid lookup field")

	ErrEmptyValue = errors.New("lookup value must not be empty")
)
