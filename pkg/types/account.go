package types

import (
	"encoding/json"
	"fmt"
)

// Account ID length limits.
const (
	MinAccountIDLen = 2
	MaxAccountIDLen = 64
)

// AccountID is an opaque account identifier. Valid IDs are 2-64 characters
// of lowercase alphanumerics, with "." separating non-empty parts and "_"
// or "-" allowed inside a part (never at its edges).
type AccountID string

// ParseAccountID validates s and returns it as an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	a := AccountID(s)
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

// Validate checks that the account ID is well-formed.
func (a AccountID) Validate() error {
	if len(a) < MinAccountIDLen || len(a) > MaxAccountIDLen {
		return fmt.Errorf("account ID must be %d-%d characters, got %d", MinAccountIDLen, MaxAccountIDLen, len(a))
	}
	// Each dot-separated part must start and end with a lowercase
	// alphanumeric; "_" and "-" are only allowed in the middle.
	partStart := true
	for i := 0; i < len(a); i++ {
		c := a[i]
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
			partStart = false
		case c == '_' || c == '-':
			if partStart || i+1 == len(a) || a[i+1] == '.' {
				return fmt.Errorf("account ID %q: separator %q at part boundary", a, string(c))
			}
		case c == '.':
			if partStart || i+1 == len(a) {
				return fmt.Errorf("account ID %q: empty part", a)
			}
			partStart = true
		default:
			return fmt.Errorf("account ID %q: invalid character %q", a, string(c))
		}
	}
	return nil
}

// IsZero returns true if the account ID is empty.
func (a AccountID) IsZero() bool {
	return a == ""
}

// String returns the account ID as a plain string.
func (a AccountID) String() string {
	return string(a)
}

// MarshalJSON encodes the account ID as a JSON string.
func (a AccountID) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(a))
}

// UnmarshalJSON decodes and validates a JSON string account ID.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*a = ""
		return nil
	}
	parsed, err := ParseAccountID(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
