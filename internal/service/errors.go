package service

import "errors"

var (
	ErrLoginRequired        = errors.New("login required")
	ErrCartEmpty            = errors.New("cart is empty")
	ErrInvalidItem          = errors.New("menu and restaurant are required")
	ErrInvalidQuantity      = errors.New("quantity must be at least 1")
	ErrItemNotFound         = errors.New("cart item not found")
	ErrConfirmationRequired = errors.New("clearing the cart must be confirmed first")

	ErrOrderNotFound     = errors.New("order not found")
	ErrProofRequired     = errors.New("proof of payment image is required")
	ErrProofTooLarge     = errors.New("proof of payment image exceeds 5MB")
	ErrProofNotImage     = errors.New("proof of payment must be an image")
	ErrUnsupportedMethod = errors.New("unsupported payment method")
	ErrInvalidState      = errors.New("action not allowed in current state")
)
