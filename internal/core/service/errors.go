package service

import "errors"

var (
	ErrInvalidAmount = errors.New("payment amount must not be negative")
	ErrEmptyOrder    = errors.New("order has no line items")
)
