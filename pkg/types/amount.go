package types

import (
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// AmountBytes is the fixed storage width of an encoded amount.
const AmountBytes = 16

// Amount is an unsigned 128-bit token quantity. Arithmetic never wraps:
// Add, Sub and MulUint64 report overflow/underflow explicitly. JSON
// encoding is a base-10 string, so callers are not exposed to any
// float precision loss.
type Amount struct {
	v uint256.Int
}

// NewAmount returns an Amount holding the given uint64 value.
func NewAmount(u uint64) Amount {
	var a Amount
	a.v.SetUint64(u)
	return a
}

// MaxAmount returns the largest representable amount (2^128 - 1).
func MaxAmount() Amount {
	var a Amount
	a.v.SetAllOne()
	a.v.Rsh(&a.v, 128)
	return a
}

// ParseAmount parses a base-10 string into an Amount.
func ParseAmount(s string) (Amount, error) {
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if v.BitLen() > 128 {
		return Amount{}, fmt.Errorf("amount %q exceeds 128 bits", s)
	}
	var a Amount
	a.v.Set(v)
	return a, nil
}

// Add returns a+b. ok is false if the sum exceeds 128 bits.
func (a Amount) Add(b Amount) (Amount, bool) {
	var sum Amount
	sum.v.Add(&a.v, &b.v)
	if sum.v.BitLen() > 128 {
		return Amount{}, false
	}
	return sum, true
}

// Sub returns a-b. ok is false if b > a.
func (a Amount) Sub(b Amount) (Amount, bool) {
	if a.v.Lt(&b.v) {
		return Amount{}, false
	}
	var diff Amount
	diff.v.Sub(&a.v, &b.v)
	return diff, true
}

// MulUint64 returns a*u. ok is false if the product exceeds 128 bits.
func (a Amount) MulUint64(u uint64) (Amount, bool) {
	var prod Amount
	var m uint256.Int
	m.SetUint64(u)
	prod.v.Mul(&a.v, &m)
	if prod.v.BitLen() > 128 {
		return Amount{}, false
	}
	// Mul truncates at 256 bits; detect wraparound for huge inputs.
	if !a.v.IsZero() && u != 0 {
		var check uint256.Int
		check.Div(&prod.v, &m)
		if !check.Eq(&a.v) {
			return Amount{}, false
		}
	}
	return prod, true
}

// Min returns the smaller of a and b.
func (a Amount) Min(b Amount) Amount {
	if a.v.Lt(&b.v) {
		return a
	}
	return b
}

// Cmp compares a and b: -1 if a < b, 0 if equal, +1 if a > b.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Uint64 returns the amount as a uint64, truncating higher bits.
func (a Amount) Uint64() uint64 {
	return a.v.Uint64()
}

// String returns the base-10 representation.
func (a Amount) String() string {
	return a.v.Dec()
}

// Bytes16 returns the fixed-width big-endian encoding.
func (a Amount) Bytes16() [AmountBytes]byte {
	full := a.v.Bytes32()
	var out [AmountBytes]byte
	copy(out[:], full[AmountBytes:])
	return out
}

// AmountFromBytes16 decodes a fixed-width big-endian amount.
func AmountFromBytes16(b [AmountBytes]byte) Amount {
	var a Amount
	a.v.SetBytes(b[:])
	return a
}

// MarshalJSON encodes the amount as a base-10 JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes a base-10 JSON string amount. An empty or absent
// string decodes as zero.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
