package repository

import "errors"

var (
	ErrRevenueUnderflow  = errors.New("revenue ledger underflow")
	ErrInsufficientStock = errors.New("insufficient stock")
)
