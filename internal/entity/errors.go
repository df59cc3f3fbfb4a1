package entity

import "errors"

var (
	// authorization
	ErrNotOwner      = errors.New("caller is not the administrator")
	ErrNotItemOwner  = errors.New("caller is not the item owner")
	ErrNotAuthorized = errors.New("caller is not owner nor approved")

	// state
	ErrAlreadyListed     = errors.New("item already listed")
	ErrNotListed         = errors.New("item not listed")
	ErrUnknownItem       = errors.New("unknown item")
	ErrUnknownCollection = errors.New("unknown collection")

	// validation
	ErrInvalidPrice        = errors.New("price must be above zero")
	ErrInsufficientPayment = errors.New("insufficient payment")
	ErrInvalidAmount       = errors.New("amount out of range")
	ErrInvalidReceiver     = errors.New("invalid receiver")

	ErrNotApprovedForSale = errors.New("marketplace not approved for item")

	// resource
	ErrNoProceeds       = errors.New("no proceeds")
	ErrTransferFailed   = errors.New("transfer failed")
	ErrTransferRejected = errors.New("transfer rejected by receiver")
)
