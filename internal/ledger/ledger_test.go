package ledger

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-token/internal/storage"
	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

const (
	alice = types.AccountID("alice.klingnet")
	bob   = types.AccountID("bob.klingnet")
	carol = types.AccountID("carol.klingnet")
)

// newLedger builds a ledger with alice and bob registered and the full
// supply minted to alice.
func newLedger(t *testing.T, supply uint64) *Ledger {
	t.Helper()
	l := New(storage.NewMemory())
	for _, acct := range []types.AccountID{alice, bob} {
		created, err := l.CreateAccount(acct)
		if err != nil || !created {
			t.Fatalf("create %s: created=%v err=%v", acct, created, err)
		}
	}
	if err := l.Mint(alice, types.NewAmount(supply)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	return l
}

// checkInvariant asserts sum(balances) == total supply.
func checkInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	supply, err := l.TotalSupply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	sum, err := l.SumBalances()
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if sum.Cmp(supply) != 0 {
		t.Fatalf("invariant broken: sum %s != supply %s", sum, supply)
	}
}

func TestCreateAccountIdempotent(t *testing.T) {
	l := New(storage.NewMemory())

	created, err := l.CreateAccount(alice)
	if err != nil || !created {
		t.Fatalf("first create: created=%v err=%v", created, err)
	}
	created, err = l.CreateAccount(alice)
	if err != nil || created {
		t.Fatalf("second create: created=%v err=%v", created, err)
	}

	bal, err := l.BalanceOf(alice)
	if err != nil || !bal.IsZero() {
		t.Fatalf("fresh account balance = %s, %v", bal, err)
	}
}

func TestBalanceOfUnregistered(t *testing.T) {
	l := New(storage.NewMemory())

	bal, err := l.BalanceOf(carol)
	if err != nil {
		t.Fatalf("BalanceOf unregistered: %v", err)
	}
	if !bal.IsZero() {
		t.Fatalf("unregistered balance = %s, want 0", bal)
	}

	ok, err := l.IsRegistered(carol)
	if err != nil || ok {
		t.Fatalf("IsRegistered = %v, %v", ok, err)
	}
}

func TestTransfer(t *testing.T) {
	l := newLedger(t, 1000)

	if err := l.Transfer(alice, bob, types.NewAmount(300)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	aliceBal, _ := l.BalanceOf(alice)
	bobBal, _ := l.BalanceOf(bob)
	if aliceBal.Uint64() != 700 || bobBal.Uint64() != 300 {
		t.Fatalf("balances = %s/%s, want 700/300", aliceBal, bobBal)
	}
	checkInvariant(t, l)
}

func TestTransferRejections(t *testing.T) {
	l := newLedger(t, 1000)

	tests := []struct {
		name     string
		sender   types.AccountID
		receiver types.AccountID
		amount   uint64
		wantErr  error
	}{
		{"self transfer", alice, alice, 10, ErrSelfTransfer},
		{"zero amount", alice, bob, 0, ErrZeroAmount},
		{"insufficient balance", alice, bob, 1001, ErrInsufficientBalance},
		{"unregistered sender", carol, bob, 10, ErrAccountNotRegistered},
		{"unregistered receiver", alice, carol, 10, ErrAccountNotRegistered},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := l.Transfer(tt.sender, tt.receiver, types.NewAmount(tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			// Failed transfers leave nothing behind.
			checkInvariant(t, l)
			aliceBal, _ := l.BalanceOf(alice)
			if aliceBal.Uint64() != 1000 {
				t.Fatalf("alice balance changed to %s", aliceBal)
			}
		})
	}
}

func TestTransferExactBalance(t *testing.T) {
	l := newLedger(t, 1000)

	if err := l.Transfer(alice, bob, types.NewAmount(1000)); err != nil {
		t.Fatalf("transfer all: %v", err)
	}
	aliceBal, _ := l.BalanceOf(alice)
	if !aliceBal.IsZero() {
		t.Fatalf("alice should be empty, has %s", aliceBal)
	}
	// Alice stays registered with a zero balance.
	ok, _ := l.IsRegistered(alice)
	if !ok {
		t.Fatal("alice should remain registered")
	}
	checkInvariant(t, l)
}

func TestMintBurn(t *testing.T) {
	l := newLedger(t, 1000)

	if err := l.Burn(alice, types.NewAmount(400)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	supply, _ := l.TotalSupply()
	if supply.Uint64() != 600 {
		t.Fatalf("supply after burn = %s, want 600", supply)
	}
	checkInvariant(t, l)

	// Burning more than the balance fails cleanly.
	if err := l.Burn(alice, types.NewAmount(601)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("overburn err = %v", err)
	}
	checkInvariant(t, l)
}

func TestRemoveAccount(t *testing.T) {
	l := newLedger(t, 1000)

	bal, err := l.RemoveAccount(bob)
	if err != nil || !bal.IsZero() {
		t.Fatalf("remove bob: bal=%s err=%v", bal, err)
	}
	ok, _ := l.IsRegistered(bob)
	if ok {
		t.Fatal("bob should be gone")
	}

	// Removing again fails.
	if _, err := l.RemoveAccount(bob); !errors.Is(err, ErrAccountNotRegistered) {
		t.Fatalf("double remove err = %v", err)
	}
	checkInvariant(t, l)
}

func TestDepositWithdrawUnregistered(t *testing.T) {
	l := New(storage.NewMemory())

	if err := l.Deposit(carol, types.NewAmount(1)); !errors.Is(err, ErrAccountNotRegistered) {
		t.Fatalf("deposit err = %v", err)
	}
	if err := l.Withdraw(carol, types.NewAmount(1)); !errors.Is(err, ErrAccountNotRegistered) {
		t.Fatalf("withdraw err = %v", err)
	}
}

func TestAccountCount(t *testing.T) {
	l := newLedger(t, 10)

	n, err := l.AccountCount()
	if err != nil || n != 2 {
		t.Fatalf("count = %d, %v", n, err)
	}

	if _, err := l.CreateAccount(carol); err != nil {
		t.Fatal(err)
	}
	n, _ = l.AccountCount()
	if n != 3 {
		t.Fatalf("count after create = %d", n)
	}
}

func TestMaxAmountTransfer(t *testing.T) {
	l := New(storage.NewMemory())
	l.CreateAccount(alice)
	l.CreateAccount(bob)

	max := types.MaxAmount()
	if err := l.Mint(alice, max); err != nil {
		t.Fatalf("mint max: %v", err)
	}
	if err := l.Transfer(alice, bob, max); err != nil {
		t.Fatalf("transfer max: %v", err)
	}
	bobBal, _ := l.BalanceOf(bob)
	if bobBal.Cmp(max) != 0 {
		t.Fatalf("bob balance = %s", bobBal)
	}
	checkInvariant(t, l)

	// A further mint overflows the supply.
	l.CreateAccount(carol)
	if err := l.Mint(carol, types.NewAmount(1)); !errors.Is(err, ErrOverflow) {
		t.Fatalf("overflow mint err = %v", err)
	}
}
