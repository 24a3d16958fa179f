package state

import (
	"encoding/json"
	"sort"

	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// StateDB owns a collection of accounts keyed by address plus a side
// table of historical block hashes for the BLOCKHASH read. Iteration for
// hashing is always address-sorted, so two stores with identical contents
// serialize to identical canonical bytes independent of insertion order.
type StateDB struct {
	accounts    map[types.Address]*Account
	blockHashes map[uint64]types.Hash
}

// New creates an empty state store.
func New() *StateDB {
	return &StateDB{
		accounts:    make(map[types.Address]*Account),
		blockHashes: make(map[uint64]types.Hash),
	}
}

// SetAccount inserts or fully replaces the account at addr.
func (s *StateDB) SetAccount(addr types.Address, acct *Account) {
	s.accounts[addr] = acct
}

// Account returns the account at addr, or nil if none exists. The
// returned pointer aliases store state; mutate it to update the store.
func (s *StateDB) Account(addr types.Address) *Account {
	return s.accounts[addr]
}

// RemoveAccount deletes the account at addr, if present.
func (s *StateDB) RemoveAccount(addr types.Address) {
	delete(s.accounts, addr)
}

// Exists reports whether an account exists at addr.
func (s *StateDB) Exists(addr types.Address) bool {
	_, ok := s.accounts[addr]
	return ok
}

// Len returns the number of accounts in the store.
func (s *StateDB) Len() int { return len(s.accounts) }

// SetBlockHash records a block number to hash association.
func (s *StateDB) SetBlockHash(number uint64, hash types.Hash) {
	s.blockHashes[number] = hash
}

// Clear removes all accounts and block hashes.
func (s *StateDB) Clear() {
	s.accounts = make(map[types.Address]*Account)
	s.blockHashes = make(map[uint64]types.Hash)
}

// Copy returns a deep copy of the store.
func (s *StateDB) Copy() *StateDB {
	cp := &StateDB{
		accounts:    make(map[types.Address]*Account, len(s.accounts)),
		blockHashes: make(map[uint64]types.Hash, len(s.blockHashes)),
	}
	for addr, acct := range s.accounts {
		cp.accounts[addr] = acct.Copy()
	}
	for n, h := range s.blockHashes {
		cp.blockHashes[n] = h
	}
	return cp
}

// Merge folds another store's accounts into this one. On address
// collision the other store wins with a full record replacement; there is
// no field-level merging. Block hashes merge the same way.
func (s *StateDB) Merge(other *StateDB) {
	for addr, acct := range other.accounts {
		s.accounts[addr] = acct.Copy()
	}
	for n, h := range other.blockHashes {
		s.blockHashes[n] = h
	}
}

// Addresses returns all account addresses in sorted order.
func (s *StateDB) Addresses() []types.Address {
	addrs := make([]types.Address, 0, len(s.accounts))
	for addr := range s.accounts {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		return lessAddress(addrs[i], addrs[j])
	})
	return addrs
}

// Root computes the store's root hash: keccak256 over the address-sorted
// canonical encoding of the account collection. It is a structural hash,
// not a Merkle-Patricia commitment; block hashes do not participate.
func (s *StateDB) Root() types.Hash {
	return crypto.MustHashValue(s.canonicalAccounts())
}

// --- Reader implementation (read contract consumed by engines) ---

// Basic returns basic account metadata at addr, or ok=false when absent.
// Absence is a valid, silent result.
func (s *StateDB) Basic(addr types.Address) (AccountInfo, bool) {
	acct, ok := s.accounts[addr]
	if !ok {
		return AccountInfo{}, false
	}
	return AccountInfo{
		Balance:  acct.Balance.Clone(),
		Nonce:    acct.Nonce,
		CodeHash: acct.CodeHash,
	}, true
}

// CodeByHash returns the code bytes matching codeHash if any account
// holds them. The empty code hash resolves to nil without searching.
func (s *StateDB) CodeByHash(codeHash types.Hash) []byte {
	if codeHash == crypto.EmptyCodeHash || codeHash.IsZero() {
		return nil
	}
	for _, acct := range s.accounts {
		if acct.CodeHash == codeHash && len(acct.Code) > 0 {
			return acct.Code
		}
	}
	return nil
}

// StorageSlot returns the stored value at (addr, key), or the zero hash
// when the account or slot is absent.
func (s *StateDB) StorageSlot(addr types.Address, key types.Hash) types.Hash {
	if acct, ok := s.accounts[addr]; ok {
		return acct.GetStorage(key)
	}
	return types.Hash{}
}

// BlockHash returns the recorded hash for the block number, or the zero
// hash when unknown.
func (s *StateDB) BlockHash(number uint64) types.Hash {
	return s.blockHashes[number]
}

// --- JSON interchange encoding ---

type stateDBJSON struct {
	Accounts    map[types.Address]*Account `json:"accounts"`
	BlockHashes map[uint64]types.Hash      `json:"blockHashes,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (s *StateDB) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateDBJSON{Accounts: s.accounts, BlockHashes: s.blockHashes})
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *StateDB) UnmarshalJSON(data []byte) error {
	var dec stateDBJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	s.accounts = dec.Accounts
	if s.accounts == nil {
		s.accounts = make(map[types.Address]*Account)
	}
	s.blockHashes = dec.BlockHashes
	if s.blockHashes == nil {
		s.blockHashes = make(map[uint64]types.Hash)
	}
	return nil
}

func lessAddress(a, b types.Address) bool {
	for i := 0; i < types.AddressLength; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func lessHash(a, b types.Hash) bool {
	for i := 0; i < types.HashLength; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
