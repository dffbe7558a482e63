package domain

import "errors"

var (
	ErrInvalidData   = errors.New("invalid data")
	ErrNotFound      = errors.New("rate not found")
	ErrAlreadyExists = errors.New("rate already exists")
)
