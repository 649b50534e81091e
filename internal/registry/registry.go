// Package registry tracks which accounts are registered to hold a balance
// and the storage deposit backing each registration.
package registry

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/crypto"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

// Named failures surfaced by registration operations.
var (
	ErrNonZeroBalance             = errors.New("account holds a nonzero balance")
	ErrInsufficientStorageDeposit = errors.New("attached deposit below minimum storage balance")
)

var prefixRecord = []byte("r/") // r/<blake3(accountID)> -> 16-byte deposit

// Bounds are the storage-balance limits for one account. Max equals Min in
// this deployment: the per-account footprint is fixed (no optional fields),
// so a registration can never require more than the minimum.
type Bounds struct {
	Min types.Amount `json:"min"`
	Max types.Amount `json:"max"`
}

// StorageBalance reports the deposit held against an account's footprint.
// Available is always zero: the whole deposit stays locked while the
// account is registered.
type StorageBalance struct {
	Total     types.Amount `json:"total"`
	Available types.Amount `json:"available"`
}

// Manager reads and mutates registration records in a backing store. Like
// the ledger, it is a cheap view constructed over whichever store the
// operation runs against.
type Manager struct {
	db storage.DB
}

// New creates a registration manager view over db.
func New(db storage.DB) *Manager {
	return &Manager{db: db}
}

func recordKey(id types.AccountID) []byte {
	h := crypto.AccountKey(id)
	key := make([]byte, len(prefixRecord)+types.HashSize)
	copy(key, prefixRecord)
	copy(key[len(prefixRecord):], h[:])
	return key
}

// IsRegistered reports whether a registration record exists for the account.
func (m *Manager) IsRegistered(acct types.AccountID) (bool, error) {
	return m.db.Has(recordKey(acct))
}

// Create stores a registration record holding the given deposit.
func (m *Manager) Create(acct types.AccountID, deposit types.Amount) error {
	buf := deposit.Bytes16()
	return m.db.Put(recordKey(acct), buf[:])
}

// Remove deletes the account's registration record and returns the deposit
// it held. existed is false when there was no record.
func (m *Manager) Remove(acct types.AccountID) (deposit types.Amount, existed bool, err error) {
	deposit, existed, err = m.deposit(acct)
	if err != nil || !existed {
		return deposit, existed, err
	}
	return deposit, true, m.db.Delete(recordKey(acct))
}

// StorageBalance returns the account's deposit record, or nil if the
// account is not registered.
func (m *Manager) StorageBalance(acct types.AccountID) (*StorageBalance, error) {
	deposit, existed, err := m.deposit(acct)
	if err != nil {
		return nil, err
	}
	if !existed {
		return nil, nil
	}
	return &StorageBalance{Total: deposit}, nil
}

func (m *Manager) deposit(acct types.AccountID) (types.Amount, bool, error) {
	data, err := m.db.Get(recordKey(acct))
	if errors.Is(err, storage.ErrNotFound) {
		return types.Amount{}, false, nil
	}
	if err != nil {
		return types.Amount{}, false, err
	}
	if len(data) != types.AmountBytes {
		return types.Amount{}, false, fmt.Errorf("corrupt registration record: %d bytes", len(data))
	}
	var buf [types.AmountBytes]byte
	copy(buf[:], data)
	return types.AmountFromBytes16(buf), true, nil
}
