// Package ledger implements the per-account balance ledger and its total
// supply invariant: at every point between operations, the sum of all
// registered accounts' balances equals the total supply.
//
// Accounts are keyed by the BLAKE3 hash of their ID, so every entry has an
// identical persisted footprint. An unregistered account has no entry at
// all; registration is binary, not a balance of zero.
package ledger

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/crypto"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

var (
	prefixAccount = []byte("a/") // a/<blake3(accountID)> -> 16-byte balance
	keySupply     = []byte("s/supply")
)

// Ledger reads and mutates balances in a backing store. It is a cheap view:
// construct one over whichever store (base or overlay) the operation runs
// against.
type Ledger struct {
	db storage.DB
}

// New creates a ledger view over db.
func New(db storage.DB) *Ledger {
	return &Ledger{db: db}
}

func accountKey(id types.AccountID) []byte {
	h := crypto.AccountKey(id)
	key := make([]byte, len(prefixAccount)+types.HashSize)
	copy(key, prefixAccount)
	copy(key[len(prefixAccount):], h[:])
	return key
}

// readAmount loads a 16-byte amount from key. Returns ok=false when the key
// does not exist.
func (l *Ledger) readAmount(key []byte) (types.Amount, bool, error) {
	data, err := l.db.Get(key)
	if errors.Is(err, storage.ErrNotFound) {
		return types.Amount{}, false, nil
	}
	if err != nil {
		return types.Amount{}, false, err
	}
	if len(data) != types.AmountBytes {
		return types.Amount{}, false, fmt.Errorf("corrupt amount entry: %d bytes", len(data))
	}
	var buf [types.AmountBytes]byte
	copy(buf[:], data)
	return types.AmountFromBytes16(buf), true, nil
}

func (l *Ledger) writeAmount(key []byte, a types.Amount) error {
	buf := a.Bytes16()
	return l.db.Put(key, buf[:])
}

// TotalSupply returns the current total supply.
func (l *Ledger) TotalSupply() (types.Amount, error) {
	supply, _, err := l.readAmount(keySupply)
	return supply, err
}

// IsRegistered reports whether the account holds a ledger entry.
func (l *Ledger) IsRegistered(acct types.AccountID) (bool, error) {
	return l.db.Has(accountKey(acct))
}

// BalanceOf returns the account's balance, or zero if unregistered.
// It never fails on an unknown account.
func (l *Ledger) BalanceOf(acct types.AccountID) (types.Amount, error) {
	bal, _, err := l.readAmount(accountKey(acct))
	return bal, err
}

// CreateAccount inserts a zero-balance entry for the account. Returns true
// if the entry was created, false if it already existed.
func (l *Ledger) CreateAccount(acct types.AccountID) (bool, error) {
	key := accountKey(acct)
	exists, err := l.db.Has(key)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}
	if err := l.writeAmount(key, types.Amount{}); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAccount deletes the account's entry, returning the balance it held.
// The caller is responsible for burning a nonzero balance first so the
// supply invariant is preserved.
func (l *Ledger) RemoveAccount(acct types.AccountID) (types.Amount, error) {
	key := accountKey(acct)
	bal, exists, err := l.readAmount(key)
	if err != nil {
		return types.Amount{}, err
	}
	if !exists {
		return types.Amount{}, ErrAccountNotRegistered
	}
	if err := l.db.Delete(key); err != nil {
		return types.Amount{}, err
	}
	return bal, nil
}

// Deposit adds amount to a registered account's balance.
func (l *Ledger) Deposit(acct types.AccountID, amount types.Amount) error {
	key := accountKey(acct)
	bal, exists, err := l.readAmount(key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("deposit to %s: %w", acct, ErrAccountNotRegistered)
	}
	sum, ok := bal.Add(amount)
	if !ok {
		return fmt.Errorf("deposit to %s: %w", acct, ErrOverflow)
	}
	return l.writeAmount(key, sum)
}

// Withdraw removes amount from a registered account's balance.
func (l *Ledger) Withdraw(acct types.AccountID, amount types.Amount) error {
	key := accountKey(acct)
	bal, exists, err := l.readAmount(key)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("withdraw from %s: %w", acct, ErrAccountNotRegistered)
	}
	rest, ok := bal.Sub(amount)
	if !ok {
		return fmt.Errorf("withdraw from %s: %w", acct, ErrInsufficientBalance)
	}
	return l.writeAmount(key, rest)
}

// Transfer atomically moves amount from sender to receiver. All
// preconditions are checked before any write, so either both legs apply or
// neither does.
func (l *Ledger) Transfer(sender, receiver types.AccountID, amount types.Amount) error {
	if sender == receiver {
		return fmt.Errorf("transfer %s -> %s: %w", sender, receiver, ErrSelfTransfer)
	}
	if amount.IsZero() {
		return fmt.Errorf("transfer %s -> %s: %w", sender, receiver, ErrZeroAmount)
	}

	senderKey := accountKey(sender)
	senderBal, senderExists, err := l.readAmount(senderKey)
	if err != nil {
		return err
	}
	if !senderExists {
		return fmt.Errorf("sender %s: %w", sender, ErrAccountNotRegistered)
	}

	receiverKey := accountKey(receiver)
	receiverBal, receiverExists, err := l.readAmount(receiverKey)
	if err != nil {
		return err
	}
	if !receiverExists {
		return fmt.Errorf("receiver %s: %w", receiver, ErrAccountNotRegistered)
	}

	senderRest, ok := senderBal.Sub(amount)
	if !ok {
		return fmt.Errorf("sender %s: %w", sender, ErrInsufficientBalance)
	}
	receiverSum, ok := receiverBal.Add(amount)
	if !ok {
		return fmt.Errorf("receiver %s: %w", receiver, ErrOverflow)
	}

	if err := l.writeAmount(senderKey, senderRest); err != nil {
		return err
	}
	return l.writeAmount(receiverKey, receiverSum)
}

// Mint credits amount to a registered account and grows the total supply.
// Only the genesis bootstrap mints in this design.
func (l *Ledger) Mint(acct types.AccountID, amount types.Amount) error {
	supply, _, err := l.readAmount(keySupply)
	if err != nil {
		return err
	}
	newSupply, ok := supply.Add(amount)
	if !ok {
		return fmt.Errorf("mint %s: supply %w", acct, ErrOverflow)
	}
	if err := l.Deposit(acct, amount); err != nil {
		return err
	}
	return l.writeAmount(keySupply, newSupply)
}

// Burn removes amount from a registered account's balance and shrinks the
// total supply by the same amount.
func (l *Ledger) Burn(acct types.AccountID, amount types.Amount) error {
	supply, _, err := l.readAmount(keySupply)
	if err != nil {
		return err
	}
	newSupply, ok := supply.Sub(amount)
	if !ok {
		return fmt.Errorf("burn %s: supply underflow", acct)
	}
	if err := l.Withdraw(acct, amount); err != nil {
		return err
	}
	return l.writeAmount(keySupply, newSupply)
}

// SumBalances returns the sum of all account balances. Used to verify the
// supply invariant.
func (l *Ledger) SumBalances() (types.Amount, error) {
	var total types.Amount
	err := l.db.ForEach(prefixAccount, func(_, value []byte) error {
		if len(value) != types.AmountBytes {
			return fmt.Errorf("corrupt balance entry: %d bytes", len(value))
		}
		var buf [types.AmountBytes]byte
		copy(buf[:], value)
		sum, ok := total.Add(types.AmountFromBytes16(buf))
		if !ok {
			return fmt.Errorf("balance sum %w", ErrOverflow)
		}
		total = sum
		return nil
	})
	if err != nil {
		return types.Amount{}, err
	}
	return total, nil
}

// AccountCount returns the number of registered ledger entries.
func (l *Ledger) AccountCount() (int, error) {
	n := 0
	err := l.db.ForEach(prefixAccount, func(_, _ []byte) error {
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
