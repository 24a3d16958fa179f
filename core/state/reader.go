package state

import (
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
)

// AccountInfo is the basic account metadata exposed through Reader.
type AccountInfo struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash types.Hash
}

// Reader is the read contract an execution engine consumes. None of the
// reads can fail: missing data is reported as absence (false, nil, or a
// zero value), never as an error.
//
// Implementations must not be mutated while an engine holds a live
// reference; reconciliation happens only after the engine call returns.
type Reader interface {
	// Basic returns account metadata, or ok=false when no account exists.
	Basic(addr types.Address) (AccountInfo, bool)
	// CodeByHash returns the code bytes matching codeHash, or nil. The
	// empty code hash resolves to nil without searching.
	CodeByHash(codeHash types.Hash) []byte
	// StorageSlot returns the stored value, or the zero hash when absent.
	StorageSlot(addr types.Address, key types.Hash) types.Hash
	// BlockHash returns the recorded block hash, or the zero hash.
	BlockHash(number uint64) types.Hash
}

var _ Reader = (*StateDB)(nil)
