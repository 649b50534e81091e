package ledger

import "errors"

// Named failures surfaced by ledger operations. All are terminal for the
// current operation; callers assert on cause with errors.Is.
var (
	ErrAccountNotRegistered = errors.New("account not registered")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrOverflow             = errors.New("balance overflow")
	ErrSelfTransfer         = errors.New("sender and receiver are the same account")
	ErrZeroAmount           = errors.New("transfer amount must be positive")
)
