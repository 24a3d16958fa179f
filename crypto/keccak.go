// Package crypto provides the deterministic hashing primitives that the
// commitment scheme is built on: raw Keccak256, canonical value hashing,
// and the non-commutative two-hash binding.
package crypto

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/sha3"

	"github.com/zacksfF/shadow-evm/core/types"
)

// EmptyCodeHash is the Keccak256 hash of empty code. Accounts without
// code always carry this sentinel.
var EmptyCodeHash = Keccak256Hash(nil)

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}

// Bind hashes the 64-byte concatenation of a and b, in that order. It is
// non-commutative: Bind(a, b) != Bind(b, a) whenever a != b. The bound
// hash of an input hash and an output hash is the public commitment a
// verifier checks.
func Bind(a, b types.Hash) types.Hash {
	var buf [2 * types.HashLength]byte
	copy(buf[:types.HashLength], a[:])
	copy(buf[types.HashLength:], b[:])
	return Keccak256Hash(buf[:])
}

// HashValue canonically serializes v with RLP and hashes the result.
// Field order is fixed by the type definition, never by insertion order,
// so structurally equal values hash byte-identically across processes.
func HashValue(v interface{}) (types.Hash, error) {
	enc, err := rlp.EncodeToBytes(v)
	if err != nil {
		return types.Hash{}, fmt.Errorf("crypto: canonical encoding: %w", err)
	}
	return Keccak256Hash(enc), nil
}

// MustHashValue is HashValue for values whose canonical encoding cannot
// fail by construction. It panics on encoding errors.
func MustHashValue(v interface{}) types.Hash {
	h, err := HashValue(v)
	if err != nil {
		panic(err)
	}
	return h
}
