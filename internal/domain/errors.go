package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidAmount      = errors.New("invalid ledger amount")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrItemFinalized      = errors.New("order item already finalized")
	ErrOrderNotApprovable = errors.New("order items not all approved")
)
