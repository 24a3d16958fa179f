package state

import (
	"io"
	"sort"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
)

// Canonical encoding of the store. Accounts are listed in address order
// and each account's storage in key order, so the encoding is a pure
// function of the store's contents. This is encoding (i) of the external
// contract: it is what hashes are computed over, and it doubles as the
// wire format on the proving runtime's input channel. The JSON encoding
// in statedb.go is encoding (ii) and is never hashed.

type storageEntryRLP struct {
	Key   types.Hash
	Value types.Hash
}

type accountRLP struct {
	Nonce    uint64
	Balance  *uint256.Int
	CodeHash types.Hash
	Code     []byte
	Storage  []storageEntryRLP
}

type accountEntryRLP struct {
	Address types.Address
	Account accountRLP
}

type blockHashEntryRLP struct {
	Number uint64
	Hash   types.Hash
}

type stateRLP struct {
	Accounts    []accountEntryRLP
	BlockHashes []blockHashEntryRLP
}

func (a *Account) canonical() accountRLP {
	entries := make([]storageEntryRLP, 0, len(a.storage))
	for k, v := range a.storage {
		entries = append(entries, storageEntryRLP{Key: k, Value: v})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessHash(entries[i].Key, entries[j].Key)
	})
	return accountRLP{
		Nonce:    a.Nonce,
		Balance:  a.Balance,
		CodeHash: a.CodeHash,
		Code:     a.Code,
		Storage:  entries,
	}
}

func accountFromCanonical(enc accountRLP) *Account {
	acct := NewAccount(enc.Balance)
	acct.Nonce = enc.Nonce
	acct.SetCode(enc.Code)
	for _, e := range enc.Storage {
		acct.SetStorage(e.Key, e.Value)
	}
	return acct
}

func (s *StateDB) canonicalAccounts() []accountEntryRLP {
	entries := make([]accountEntryRLP, 0, len(s.accounts))
	for addr, acct := range s.accounts {
		entries = append(entries, accountEntryRLP{Address: addr, Account: acct.canonical()})
	}
	sort.Slice(entries, func(i, j int) bool {
		return lessAddress(entries[i].Address, entries[j].Address)
	})
	return entries
}

func (s *StateDB) canonical() stateRLP {
	hashes := make([]blockHashEntryRLP, 0, len(s.blockHashes))
	for n, h := range s.blockHashes {
		hashes = append(hashes, blockHashEntryRLP{Number: n, Hash: h})
	}
	sort.Slice(hashes, func(i, j int) bool {
		return hashes[i].Number < hashes[j].Number
	})
	return stateRLP{Accounts: s.canonicalAccounts(), BlockHashes: hashes}
}

// EncodeRLP implements rlp.Encoder.
func (s *StateDB) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, s.canonical())
}

// DecodeRLP implements rlp.Decoder.
func (s *StateDB) DecodeRLP(st *rlp.Stream) error {
	var dec stateRLP
	if err := st.Decode(&dec); err != nil {
		return err
	}
	s.accounts = make(map[types.Address]*Account, len(dec.Accounts))
	s.blockHashes = make(map[uint64]types.Hash, len(dec.BlockHashes))
	for _, e := range dec.Accounts {
		s.accounts[e.Address] = accountFromCanonical(e.Account)
	}
	for _, e := range dec.BlockHashes {
		s.blockHashes[e.Number] = e.Hash
	}
	return nil
}
