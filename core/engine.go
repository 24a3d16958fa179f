package core

import (
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
)

// SpecVersion pins the execution rule set an engine must apply. Every
// execution runs under exactly one spec so identical inputs yield
// identical outputs regardless of when they are replayed.
type SpecVersion uint8

const (
	// SpecShanghai is the only rule set currently supported.
	SpecShanghai SpecVersion = iota
)

// String implements fmt.Stringer.
func (s SpecVersion) String() string {
	switch s {
	case SpecShanghai:
		return "shanghai"
	default:
		return "unknown"
	}
}

// EngineConfig carries everything an engine needs to run one
// transaction: the pinned rule set and the block and transaction
// environments.
type EngineConfig struct {
	Spec    SpecVersion
	ChainID uint64
	Block   BlockEnv
	Tx      TxEnv
}

// AccountDelta is the engine's report of one touched account's final
// shape. Balance and nonce are final values, not increments. Storage
// carries only the slots whose value changed during execution; a zero
// value marks a cleared slot. Slots the delta does not mention are left
// alone by reconciliation, and accounts are never deleted.
type AccountDelta struct {
	Balance  *uint256.Int
	Nonce    uint64
	Code     []byte
	CodeHash types.Hash
	Storage  map[types.Hash]types.Hash
}

// EngineResult is the raw outcome of one engine run, before the
// outcome is reconciled into a post-state.
type EngineResult struct {
	Status         ExecutionStatus
	ReturnData     []byte
	CreatedAddress *types.Address
	GasUsed        types.Gas
	GasRefunded    types.Gas
	Logs           []types.Log
	// HaltReason is a short human-readable reason, set only for
	// StatusHalt results.
	HaltReason string
	// State maps each touched account to its final shape.
	State map[types.Address]AccountDelta
}

// Engine executes a single transaction against a read-only view of the
// pre-state. An error return means the engine itself could not run
// (malformed input, internal failure), not that the transaction
// reverted or halted: those outcomes are statuses on a nil-error
// result.
type Engine interface {
	Run(cfg *EngineConfig, pre state.Reader) (*EngineResult, error)
}
