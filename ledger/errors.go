package ledger

import "errors"

var (
	// Data-quality rejections for incoming notifications.
	ErrMissingTxID    = errors.New("notification has no transaction id")
	ErrIncompleteData = errors.New("notification is missing a positive amount")
	ErrUnknownPayer   = errors.New("no user matches the notification payer")

	// Money-safety rejections. These are audit-logged with full context.
	ErrDuplicateTransaction = errors.New("transaction already processed")
	ErrInsufficientBalance  = errors.New("insufficient balance")

	ErrNotFound           = errors.New("record not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrBelowMinimum       = errors.New("amount below minimum")
	ErrAboveMaximum       = errors.New("amount above maximum")
	ErrInvalidTransaction = errors.New("transaction is not a pending withdrawal")
)
