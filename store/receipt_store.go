// Package store persists sealed receipts keyed by the commitment they
// carry. It is the durable side of the prove/verify pipeline: a host
// proves once, stores the receipt, and serves later verification
// requests from disk.
package store

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	leveldbstorage "github.com/syndtr/goleveldb/leveldb/storage"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/zkvm"
)

// receiptPrefix namespaces receipt keys so other record kinds can
// share the database later.
var receiptPrefix = []byte("r/")

// ReceiptStore wraps LevelDB for receipt persistence. Thread-safe:
// LevelDB handles its own synchronization.
type ReceiptStore struct {
	db *leveldb.DB
}

// Open opens or creates a receipt store at the given path. An empty
// path opens an in-memory store.
func Open(path string) (*ReceiptStore, error) {
	var db *leveldb.DB
	var err error

	if path == "" {
		db, err = leveldb.Open(leveldbstorage.NewMemStorage(), nil)
	} else {
		db, err = leveldb.OpenFile(path, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %q: %v", core.ErrDatabase, path, err)
	}
	return &ReceiptStore{db: db}, nil
}

// OpenMemory opens an in-memory receipt store for testing.
func OpenMemory() (*ReceiptStore, error) {
	return Open("")
}

func receiptKey(commitment types.Hash) []byte {
	return append(append([]byte(nil), receiptPrefix...), commitment[:]...)
}

// PutReceipt stores a receipt keyed by the commitment hash inside its
// journal. Storing a second receipt for the same commitment overwrites
// the first; both describe the same execution.
func (s *ReceiptStore) PutReceipt(r *zkvm.Receipt) (types.Hash, error) {
	commitment, err := r.Commitment()
	if err != nil {
		return types.Hash{}, err
	}
	data, err := zkvm.EncodeReceipt(r)
	if err != nil {
		return types.Hash{}, err
	}
	if err := s.db.Put(receiptKey(commitment.Commitment), data, nil); err != nil {
		return types.Hash{}, fmt.Errorf("%w: put %s: %v", core.ErrDatabase, commitment.Commitment, err)
	}
	return commitment.Commitment, nil
}

// GetReceipt loads the receipt for a commitment. Absence is not an
// error: it returns (nil, false, nil).
func (s *ReceiptStore) GetReceipt(commitment types.Hash) (*zkvm.Receipt, bool, error) {
	data, err := s.db.Get(receiptKey(commitment), nil)
	if err == leveldb.ErrNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %v", core.ErrDatabase, commitment, err)
	}
	r, err := zkvm.DecodeReceipt(data)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// DeleteReceipt removes the receipt for a commitment. Deleting an
// absent receipt is a no-op.
func (s *ReceiptStore) DeleteReceipt(commitment types.Hash) error {
	if err := s.db.Delete(receiptKey(commitment), nil); err != nil {
		return fmt.Errorf("%w: delete %s: %v", core.ErrDatabase, commitment, err)
	}
	return nil
}

// Commitments returns the commitment hashes of all stored receipts,
// in key order.
func (s *ReceiptStore) Commitments() ([]types.Hash, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()

	var out []types.Hash
	for ok := iter.Seek(receiptPrefix); ok; ok = iter.Next() {
		key := iter.Key()
		if len(key) != len(receiptPrefix)+types.HashLength {
			break
		}
		match := true
		for i := range receiptPrefix {
			if key[i] != receiptPrefix[i] {
				match = false
				break
			}
		}
		if !match {
			break
		}
		var h types.Hash
		copy(h[:], key[len(receiptPrefix):])
		out = append(out, h)
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("%w: iterate: %v", core.ErrDatabase, err)
	}
	return out, nil
}

// Close releases the underlying database.
func (s *ReceiptStore) Close() error {
	return s.db.Close()
}
