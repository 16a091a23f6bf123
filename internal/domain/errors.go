package domain

import "errors"

var (
	ErrPersonNotFound = errors.New("person not found")
	ErrInvalidLogin   = errors.New("invalid login")
)
