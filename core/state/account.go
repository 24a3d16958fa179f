// Package state implements the in-memory account store the execution
// pipeline reads from and reconciles into. It is a flat, canonically
// ordered snapshot, not an authenticated trie: the root hash commits to
// the full account contents, not to inclusion proofs.
package state

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// ContractNonce is the nonce a freshly deployed contract account starts at.
const ContractNonce = 1

// Account is one address's complete on-chain footprint: balance, nonce,
// code with its content hash, and sparse storage.
//
// Two invariants keep the canonical representation unique regardless of
// write history: a storage slot is present iff its value is non-zero
// (SetStorage deletes zero writes), and CodeHash is keccak256 of Code
// when code is non-empty and crypto.EmptyCodeHash otherwise.
type Account struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash types.Hash
	Code     []byte

	storage map[types.Hash]types.Hash
}

// NewAccount creates an externally owned account with the given balance.
func NewAccount(balance *uint256.Int) *Account {
	if balance == nil {
		balance = new(uint256.Int)
	}
	return &Account{
		Balance:  new(uint256.Int).Set(balance),
		CodeHash: crypto.EmptyCodeHash,
		storage:  make(map[types.Hash]types.Hash),
	}
}

// NewContract creates a contract account holding code and balance.
func NewContract(code []byte, balance *uint256.Int) *Account {
	acct := NewAccount(balance)
	acct.Nonce = ContractNonce
	acct.SetCode(code)
	return acct
}

// NewContractWithStorage creates a contract account with initial storage.
// Zero-valued entries in the given map are dropped.
func NewContractWithStorage(code []byte, balance *uint256.Int, storage map[types.Hash]types.Hash) *Account {
	acct := NewContract(code, balance)
	for k, v := range storage {
		acct.SetStorage(k, v)
	}
	return acct
}

// SetCode replaces the account code and recomputes the code hash.
func (a *Account) SetCode(code []byte) {
	if len(code) == 0 {
		a.Code = nil
		a.CodeHash = crypto.EmptyCodeHash
		return
	}
	a.Code = code
	a.CodeHash = crypto.Keccak256Hash(code)
}

// SetStorage writes a storage slot. Writing a zero value removes the slot,
// preserving the sparseness invariant.
func (a *Account) SetStorage(key, value types.Hash) {
	if value.IsZero() {
		delete(a.storage, key)
		return
	}
	if a.storage == nil {
		a.storage = make(map[types.Hash]types.Hash)
	}
	a.storage[key] = value
}

// GetStorage reads a storage slot. Absent slots read as zero.
func (a *Account) GetStorage(key types.Hash) types.Hash {
	return a.storage[key]
}

// StorageLen returns the number of populated storage slots.
func (a *Account) StorageLen() int { return len(a.storage) }

// IsContract reports whether the account holds code.
func (a *Account) IsContract() bool { return len(a.Code) > 0 }

// IsEmpty reports whether the account could be pruned: zero balance,
// zero nonce, and no code. Pruning is the caller's decision; the store
// never removes accounts on its own.
func (a *Account) IsEmpty() bool {
	return a.Balance.IsZero() && a.Nonce == 0 && len(a.Code) == 0
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cp := &Account{
		Balance:  new(uint256.Int).Set(a.Balance),
		Nonce:    a.Nonce,
		CodeHash: a.CodeHash,
		storage:  make(map[types.Hash]types.Hash, len(a.storage)),
	}
	if a.Code != nil {
		cp.Code = make([]byte, len(a.Code))
		copy(cp.Code, a.Code)
	}
	for k, v := range a.storage {
		cp.storage[k] = v
	}
	return cp
}

type accountJSON struct {
	Balance  *uint256.Int              `json:"balance"`
	Nonce    uint64                    `json:"nonce"`
	CodeHash types.Hash                `json:"codeHash"`
	Code     hexutil.Bytes             `json:"code"`
	Storage  map[types.Hash]types.Hash `json:"storage,omitempty"`
}

// MarshalJSON implements json.Marshaler. This is the human-inspectable
// interchange encoding; hashes are never computed over it.
func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(accountJSON{
		Balance:  a.Balance,
		Nonce:    a.Nonce,
		CodeHash: a.CodeHash,
		Code:     a.Code,
		Storage:  a.storage,
	})
}

// UnmarshalJSON implements json.Unmarshaler. The code hash is recomputed
// from the code bytes and zero-valued slots are dropped, so decoding
// re-establishes the account invariants.
func (a *Account) UnmarshalJSON(data []byte) error {
	var dec accountJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.Balance == nil {
		dec.Balance = new(uint256.Int)
	}
	a.Balance = dec.Balance
	a.Nonce = dec.Nonce
	a.storage = make(map[types.Hash]types.Hash, len(dec.Storage))
	a.SetCode(dec.Code)
	for k, v := range dec.Storage {
		a.SetStorage(k, v)
	}
	return nil
}
