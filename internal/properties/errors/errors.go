package errors

import "errors"

var (
	ErrNotFound = errors.New("property not found")

	ErrInvalidID = errors.New("invalid property ID format")

	ErrLinkNotFound = errors.New("member link not found")

	ErrDuplicateLink = errors.New("member is already linked to this property")
)
