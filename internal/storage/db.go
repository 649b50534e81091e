// Package storage provides database abstractions.
package storage

import "errors"

// ErrNotFound is returned by Get when a key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// DB is the interface for key-value storage.
type DB interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// ForEach iterates over all keys with the given prefix.
	// The callback receives a copy of the key and value.
	// Return a non-nil error from fn to stop iteration early.
	ForEach(prefix []byte, fn func(key, value []byte) error) error
	Close() error
}

// Usage returns the persisted footprint of all keys under prefix, counted
// as len(key)+len(value) per entry. Prefix may be nil for the whole DB.
func Usage(db DB, prefix []byte) (uint64, error) {
	var total uint64
	err := db.ForEach(prefix, func(key, value []byte) error {
		total += uint64(len(key) + len(value))
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
