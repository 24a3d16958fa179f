package vm

import (
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// StateDB is the interpreter's mutable view over an immutable pre-state.
// All writes land in an in-memory overlay recorded in a journal, so any
// prefix of the work can be unwound via Snapshot/RevertToSnapshot. When
// execution finishes, Deltas extracts the touched accounts in the form
// the reconciler consumes.
type StateDB struct {
	reader state.Reader

	objects map[types.Address]*stateObject
	refund  uint64
	logs    []types.Log
	journal []journalEntry

	// EIP-2929 access list.
	accessAddrs map[types.Address]struct{}
	accessSlots map[types.Address]map[types.Hash]struct{}
}

// stateObject is the overlay record for one account.
type stateObject struct {
	balance  uint256.Int
	nonce    uint64
	code     []byte
	codeHash types.Hash

	// storage holds every slot read or written this execution. origin
	// holds the pre-state value for slots that have been loaded, used
	// for SSTORE gas and refund accounting.
	storage map[types.Hash]types.Hash
	origin  map[types.Hash]types.Hash

	exists  bool // present in pre-state or created this execution
	created bool // created this execution
	touched bool // written this execution
}

// NewStateDB wraps a read-only pre-state in a mutable overlay.
func NewStateDB(reader state.Reader) *StateDB {
	return &StateDB{
		reader:      reader,
		objects:     make(map[types.Address]*stateObject),
		accessAddrs: make(map[types.Address]struct{}),
		accessSlots: make(map[types.Address]map[types.Hash]struct{}),
	}
}

// getObject loads an account into the overlay, creating a non-existent
// placeholder for absent accounts.
func (s *StateDB) getObject(addr types.Address) *stateObject {
	if obj, ok := s.objects[addr]; ok {
		return obj
	}
	obj := &stateObject{
		codeHash: crypto.EmptyCodeHash,
		storage:  make(map[types.Hash]types.Hash),
		origin:   make(map[types.Hash]types.Hash),
	}
	if info, ok := s.reader.Basic(addr); ok {
		obj.balance.Set(info.Balance)
		obj.nonce = info.Nonce
		obj.codeHash = info.CodeHash
		obj.code = s.reader.CodeByHash(info.CodeHash)
		obj.exists = true
	}
	s.objects[addr] = obj
	return obj
}

// --- journal ---

type journalEntry interface {
	revert(s *StateDB)
}

type (
	createChange struct {
		addr types.Address
	}
	balanceChange struct {
		addr types.Address
		prev uint256.Int
	}
	nonceChange struct {
		addr types.Address
		prev uint64
	}
	codeChange struct {
		addr     types.Address
		prevCode []byte
		prevHash types.Hash
	}
	storageChange struct {
		addr types.Address
		key  types.Hash
		prev types.Hash
	}
	touchChange struct {
		addr types.Address
		prev bool
	}
	refundChange struct {
		prev uint64
	}
	logChange struct{}
	accessAddrChange struct {
		addr types.Address
	}
	accessSlotChange struct {
		addr types.Address
		slot types.Hash
	}
)

func (c createChange) revert(s *StateDB) {
	obj := s.objects[c.addr]
	obj.exists = false
	obj.created = false
}
func (c balanceChange) revert(s *StateDB) { s.objects[c.addr].balance = c.prev }
func (c nonceChange) revert(s *StateDB)   { s.objects[c.addr].nonce = c.prev }
func (c codeChange) revert(s *StateDB) {
	obj := s.objects[c.addr]
	obj.code = c.prevCode
	obj.codeHash = c.prevHash
}
func (c storageChange) revert(s *StateDB) { s.objects[c.addr].storage[c.key] = c.prev }
func (c touchChange) revert(s *StateDB)   { s.objects[c.addr].touched = c.prev }
func (c refundChange) revert(s *StateDB)  { s.refund = c.prev }
func (c logChange) revert(s *StateDB)     { s.logs = s.logs[:len(s.logs)-1] }
func (c accessAddrChange) revert(s *StateDB) { delete(s.accessAddrs, c.addr) }
func (c accessSlotChange) revert(s *StateDB) {
	if slots, ok := s.accessSlots[c.addr]; ok {
		delete(slots, c.slot)
	}
}

// Snapshot returns an identifier for the current revision of the state.
func (s *StateDB) Snapshot() int {
	return len(s.journal)
}

// RevertToSnapshot unwinds all changes made since the given snapshot.
func (s *StateDB) RevertToSnapshot(id int) {
	for i := len(s.journal) - 1; i >= id; i-- {
		s.journal[i].revert(s)
	}
	s.journal = s.journal[:id]
}

func (s *StateDB) touch(addr types.Address) {
	obj := s.getObject(addr)
	if !obj.touched {
		s.journal = append(s.journal, touchChange{addr: addr, prev: obj.touched})
		obj.touched = true
	}
}

// --- account operations ---

// CreateAccount marks addr as existing. Pre-existing balance survives,
// matching the semantics of creating at an address that already holds
// funds.
func (s *StateDB) CreateAccount(addr types.Address) {
	obj := s.getObject(addr)
	if !obj.exists {
		s.journal = append(s.journal, createChange{addr: addr})
		obj.exists = true
		obj.created = true
	}
	s.touch(addr)
}

// GetBalance returns addr's balance.
func (s *StateDB) GetBalance(addr types.Address) *uint256.Int {
	obj := s.getObject(addr)
	return new(uint256.Int).Set(&obj.balance)
}

// AddBalance credits addr.
func (s *StateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getObject(addr)
	s.journal = append(s.journal, balanceChange{addr: addr, prev: obj.balance})
	obj.balance.Add(&obj.balance, amount)
	obj.exists = true
	s.touch(addr)
}

// SubBalance debits addr. The caller checks sufficiency.
func (s *StateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getObject(addr)
	s.journal = append(s.journal, balanceChange{addr: addr, prev: obj.balance})
	obj.balance.Sub(&obj.balance, amount)
	s.touch(addr)
}

// GetNonce returns addr's nonce.
func (s *StateDB) GetNonce(addr types.Address) uint64 {
	return s.getObject(addr).nonce
}

// SetNonce sets addr's nonce.
func (s *StateDB) SetNonce(addr types.Address, nonce uint64) {
	obj := s.getObject(addr)
	s.journal = append(s.journal, nonceChange{addr: addr, prev: obj.nonce})
	obj.nonce = nonce
	obj.exists = true
	s.touch(addr)
}

// GetCode returns addr's code.
func (s *StateDB) GetCode(addr types.Address) []byte {
	return s.getObject(addr).code
}

// GetCodeSize returns the length of addr's code.
func (s *StateDB) GetCodeSize(addr types.Address) int {
	return len(s.getObject(addr).code)
}

// GetCodeHash returns the hash of addr's code, or the zero hash for a
// non-existent account.
func (s *StateDB) GetCodeHash(addr types.Address) types.Hash {
	obj := s.getObject(addr)
	if !obj.exists {
		return types.Hash{}
	}
	return obj.codeHash
}

// SetCode installs code at addr.
func (s *StateDB) SetCode(addr types.Address, code []byte) {
	obj := s.getObject(addr)
	s.journal = append(s.journal, codeChange{addr: addr, prevCode: obj.code, prevHash: obj.codeHash})
	if len(code) == 0 {
		obj.code = nil
		obj.codeHash = crypto.EmptyCodeHash
	} else {
		obj.code = code
		obj.codeHash = crypto.Keccak256Hash(code)
	}
	obj.exists = true
	s.touch(addr)
}

// --- storage ---

// loadSlot caches the pre-state value of a slot on first access.
func (s *StateDB) loadSlot(obj *stateObject, addr types.Address, key types.Hash) types.Hash {
	if val, ok := obj.storage[key]; ok {
		return val
	}
	var val types.Hash
	// Accounts created this execution start with empty storage; their
	// pre-state slots are unreachable.
	if !obj.created {
		val = s.reader.StorageSlot(addr, key)
	}
	obj.storage[key] = val
	obj.origin[key] = val
	return val
}

// GetState returns the current value of a storage slot.
func (s *StateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	obj := s.getObject(addr)
	return s.loadSlot(obj, addr, key)
}

// GetCommittedState returns the slot value as of the start of the
// execution, regardless of writes since.
func (s *StateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	obj := s.getObject(addr)
	s.loadSlot(obj, addr, key)
	return obj.origin[key]
}

// SetState writes a storage slot.
func (s *StateDB) SetState(addr types.Address, key, value types.Hash) {
	obj := s.getObject(addr)
	prev := s.loadSlot(obj, addr, key)
	if prev == value {
		return
	}
	s.journal = append(s.journal, storageChange{addr: addr, key: key, prev: prev})
	obj.storage[key] = value
	obj.exists = true
	s.touch(addr)
}

// --- existence ---

// Exist reports whether addr exists in the overlay or pre-state.
func (s *StateDB) Exist(addr types.Address) bool {
	return s.getObject(addr).exists
}

// Empty reports whether addr is empty per EIP-161 (zero balance, zero
// nonce, no code).
func (s *StateDB) Empty(addr types.Address) bool {
	obj := s.getObject(addr)
	return !obj.exists ||
		(obj.balance.IsZero() && obj.nonce == 0 && obj.codeHash == crypto.EmptyCodeHash)
}

// --- logs ---

// AddLog appends a log record.
func (s *StateDB) AddLog(log types.Log) {
	s.journal = append(s.journal, logChange{})
	s.logs = append(s.logs, log)
}

// Logs returns the accumulated logs.
func (s *StateDB) Logs() []types.Log {
	return s.logs
}

// --- refund counter (EIP-3529) ---

// AddRefund increments the refund counter.
func (s *StateDB) AddRefund(gas uint64) {
	s.journal = append(s.journal, refundChange{prev: s.refund})
	s.refund += gas
}

// SubRefund decrements the refund counter. Going below zero indicates a
// bug in SSTORE accounting and panics.
func (s *StateDB) SubRefund(gas uint64) {
	if gas > s.refund {
		panic("refund counter below zero")
	}
	s.journal = append(s.journal, refundChange{prev: s.refund})
	s.refund -= gas
}

// GetRefund returns the current refund counter.
func (s *StateDB) GetRefund() uint64 {
	return s.refund
}

// --- access list (EIP-2929) ---

// AddAddressToAccessList warms an address.
func (s *StateDB) AddAddressToAccessList(addr types.Address) {
	if _, ok := s.accessAddrs[addr]; ok {
		return
	}
	s.journal = append(s.journal, accessAddrChange{addr: addr})
	s.accessAddrs[addr] = struct{}{}
}

// AddSlotToAccessList warms a storage slot (and its address).
func (s *StateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	s.AddAddressToAccessList(addr)
	slots, ok := s.accessSlots[addr]
	if !ok {
		slots = make(map[types.Hash]struct{})
		s.accessSlots[addr] = slots
	}
	if _, ok := slots[slot]; ok {
		return
	}
	s.journal = append(s.journal, accessSlotChange{addr: addr, slot: slot})
	slots[slot] = struct{}{}
}

// AddressInAccessList reports whether addr is warm.
func (s *StateDB) AddressInAccessList(addr types.Address) bool {
	_, ok := s.accessAddrs[addr]
	return ok
}

// SlotInAccessList reports whether addr and (addr, slot) are warm.
func (s *StateDB) SlotInAccessList(addr types.Address, slot types.Hash) (bool, bool) {
	_, addrOk := s.accessAddrs[addr]
	slots, ok := s.accessSlots[addr]
	if !ok {
		return addrOk, false
	}
	_, slotOk := slots[slot]
	return addrOk, slotOk
}

// BlockHash resolves a historical block hash from the pre-state.
func (s *StateDB) BlockHash(number uint64) types.Hash {
	return s.reader.BlockHash(number)
}

// Deltas extracts the final shape of every touched account. Storage
// reports only the slots whose value changed this execution, comparing
// the overlay against the cached pre-state values; a zero value marks a
// cleared slot. Slots that were merely read, or written back to their
// original value, are not reported.
func (s *StateDB) Deltas() map[types.Address]core.AccountDelta {
	deltas := make(map[types.Address]core.AccountDelta)
	for addr, obj := range s.objects {
		if !obj.touched {
			continue
		}
		delta := core.AccountDelta{
			Balance:  new(uint256.Int).Set(&obj.balance),
			Nonce:    obj.nonce,
			CodeHash: obj.codeHash,
			Storage:  make(map[types.Hash]types.Hash),
		}
		if len(obj.code) > 0 {
			delta.Code = obj.code
		}
		for key, val := range obj.storage {
			if val != obj.origin[key] {
				delta.Storage[key] = val
			}
		}
		deltas[addr] = delta
	}
	return deltas
}
