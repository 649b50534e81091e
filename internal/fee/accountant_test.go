package fee

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

func TestCost(t *testing.T) {
	a := New(10_000)

	if got := a.Cost(0); !got.IsZero() {
		t.Fatalf("Cost(0) = %s", got)
	}
	if got := a.Cost(100); got.Uint64() != 1_000_000 {
		t.Fatalf("Cost(100) = %s, want 1000000", got)
	}
}

func TestSettleGrowth(t *testing.T) {
	a := New(10)

	// 50 new bytes cost 500; attach 800, get 300 back.
	s, err := a.Settle(types.NewAmount(800), 1000, 1050)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if s.Charge.Uint64() != 500 {
		t.Errorf("Charge = %s, want 500", s.Charge)
	}
	if s.Refund.Uint64() != 300 {
		t.Errorf("Refund = %s, want 300", s.Refund)
	}

	// Exact payment: no refund.
	s, err = a.Settle(types.NewAmount(500), 1000, 1050)
	if err != nil {
		t.Fatalf("Settle exact: %v", err)
	}
	if s.Charge.Uint64() != 500 || !s.Refund.IsZero() {
		t.Errorf("exact settle = charge %s refund %s", s.Charge, s.Refund)
	}
}

func TestSettleInsufficientDeposit(t *testing.T) {
	a := New(10)

	_, err := a.Settle(types.NewAmount(499), 1000, 1050)
	if !errors.Is(err, ErrInsufficientDeposit) {
		t.Fatalf("err = %v, want ErrInsufficientDeposit", err)
	}

	// Zero attached on growth fails too.
	_, err = a.Settle(types.Amount{}, 0, 1)
	if !errors.Is(err, ErrInsufficientDeposit) {
		t.Fatalf("err = %v, want ErrInsufficientDeposit", err)
	}
}

func TestSettleShrink(t *testing.T) {
	a := New(10)

	// Freeing 30 bytes releases 300, plus the untouched attachment.
	s, err := a.Settle(types.NewAmount(50), 1050, 1020)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !s.Charge.IsZero() {
		t.Errorf("Charge = %s, want 0", s.Charge)
	}
	if s.Refund.Uint64() != 350 {
		t.Errorf("Refund = %s, want 350", s.Refund)
	}
}

func TestSettleNoChange(t *testing.T) {
	a := New(10)

	// Pure balance moves: whatever was attached comes back.
	s, err := a.Settle(types.NewAmount(7), 1000, 1000)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !s.Charge.IsZero() || s.Refund.Uint64() != 7 {
		t.Errorf("no-change settle = charge %s refund %s", s.Charge, s.Refund)
	}
}

func TestSettleZeroPrice(t *testing.T) {
	a := New(0)

	// Free storage: growth costs nothing, everything refunds.
	s, err := a.Settle(types.NewAmount(5), 0, 10_000)
	if err != nil {
		t.Fatalf("Settle: %v", err)
	}
	if !s.Charge.IsZero() || s.Refund.Uint64() != 5 {
		t.Errorf("zero-price settle = charge %s refund %s", s.Charge, s.Refund)
	}
}
