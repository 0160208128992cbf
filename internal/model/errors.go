package model

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnauthorized     = errors.New("unauthorized")
)
