package errors

import "errors"

var (
	ErrDepotNotFound = errors.New("depot not found")

	ErrItemNotFound = errors.New("item not found")

	ErrInvalidID = errors.New("invalid depot or item ID format")
)
