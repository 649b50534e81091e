// Package fee converts storage-footprint deltas into caller-facing charges.
// It is the only place byte counts become economic amounts, keeping pricing
// policy out of the ledger and registration logic.
package fee

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingnet-token/pkg/types"
)

// ErrInsufficientDeposit is returned when the attached payment does not
// cover the cost of a storage increase. The operation that caused the
// increase must be rolled back in full.
var ErrInsufficientDeposit = errors.New("insufficient deposit for storage")

// Accountant prices storage-footprint changes.
type Accountant struct {
	pricePerByte uint64
}

// New creates an accountant with the given price per persisted byte.
func New(pricePerByte uint64) *Accountant {
	return &Accountant{pricePerByte: pricePerByte}
}

// PricePerByte returns the configured price per persisted byte.
func (a *Accountant) PricePerByte() uint64 {
	return a.pricePerByte
}

// Cost returns the price of holding the given number of bytes.
func (a *Accountant) Cost(bytes uint64) types.Amount {
	// uint64 * uint64 always fits in 128 bits.
	cost, _ := types.NewAmount(bytes).MulUint64(a.pricePerByte)
	return cost
}

// Settlement is the outcome of pricing one operation's storage delta.
type Settlement struct {
	// Charge is the amount retained to pay for a net storage increase.
	Charge types.Amount
	// Refund is returned to the caller: unused attached payment plus the
	// released cost of any net storage decrease.
	Refund types.Amount
}

// Settle prices the footprint change from before to after bytes against the
// caller's attached payment. A net increase the payment cannot cover fails
// with ErrInsufficientDeposit; everything not strictly required by storage
// is refunded.
func (a *Accountant) Settle(attached types.Amount, before, after uint64) (Settlement, error) {
	if after > before {
		required := a.Cost(after - before)
		if attached.Cmp(required) < 0 {
			return Settlement{}, fmt.Errorf("%w: need %s, attached %s", ErrInsufficientDeposit, required, attached)
		}
		refund, _ := attached.Sub(required)
		return Settlement{Charge: required, Refund: refund}, nil
	}

	released := a.Cost(before - after)
	refund, ok := attached.Add(released)
	if !ok {
		return Settlement{}, fmt.Errorf("storage refund overflows: attached %s released %s", attached, released)
	}
	return Settlement{Refund: refund}, nil
}
