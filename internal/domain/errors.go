package domain

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrUserExists           = errors.New("username or email already taken")
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvalidRating        = errors.New("invalid rating value")
	ErrInvalidAccess        = errors.New("invalid access status")
	ErrCustomerNotFound     = errors.New("customer not found")
	ErrVersionConflict      = errors.New("optimistic lock conflict")
	ErrDuplicateTransaction = errors.New("transaction id already exists")
	ErrInvalidRequest       = errors.New("invalid request")
)
