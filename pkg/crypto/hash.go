// Package crypto provides cryptographic primitives for the token ledger.
package crypto

import (
	"github.com/Klingon-tech/klingnet-token/pkg/types"
	"github.com/zeebo/blake3"
)

// Hash computes a BLAKE3-256 hash of the input data.
func Hash(data []byte) types.Hash {
	return blake3.Sum256(data)
}

// AccountKey derives the fixed-width storage key material for an account ID.
// Hashing keeps every account's persisted footprint identical regardless of
// the ID's length, so storage costs are uniform per account.
func AccountKey(id types.AccountID) types.Hash {
	return Hash([]byte(id))
}
