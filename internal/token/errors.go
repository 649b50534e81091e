package token

import "errors"

var (
	// ErrExplicitIntentRequired is returned when a transfer call does not
	// attach exactly one base unit as its explicit-intent marker.
	ErrExplicitIntentRequired = errors.New("transfer requires an attached deposit of exactly 1")

	// ErrUnknownIntent is returned when resolving a transfer intent that
	// does not exist or was already resolved.
	ErrUnknownIntent = errors.New("unknown transfer intent")

	// ErrAlreadyInitialized is returned when genesis runs against a ledger
	// that already holds supply.
	ErrAlreadyInitialized = errors.New("ledger already initialized")
)
