package core

import (
	"fmt"
	"sort"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// ExecutionArtifact bundles everything one execution produced: the
// input it ran on, the full output, and the commitment binding them.
type ExecutionArtifact struct {
	Input      *ExecutionInput
	Output     *ExecutionOutput
	Commitment *ExecutionCommitment
}

// Executor drives one execution end to end: hash the input, run the
// engine against the pre-state, reconcile the touched accounts into a
// post-state, and bind input to output in a commitment.
type Executor struct {
	engine Engine
}

// NewExecutor returns an executor backed by the given engine.
func NewExecutor(engine Engine) *Executor {
	return &Executor{engine: engine}
}

// Execute runs the input's transaction to completion. The input's
// pre-state is never mutated: the post-state is built on a copy. Engine
// failures (as opposed to reverted or halted transactions) surface as
// ErrExecutionHalted.
func (e *Executor) Execute(input *ExecutionInput) (*ExecutionArtifact, error) {
	inputHash, err := input.Hash()
	if err != nil {
		return nil, err
	}
	preRoot := input.PreStateRoot()

	cfg := &EngineConfig{
		Spec:    SpecShanghai,
		ChainID: input.Block.ChainID,
		Block:   input.Block,
		Tx:      input.Tx,
	}
	res, err := e.engine.Run(cfg, input.PreState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionHalted, err)
	}

	postState := input.PreState.Copy()
	reconcile(postState, res.State)

	var output *ExecutionOutput
	switch {
	case res.Status.IsSuccess():
		output = NewSuccessOutput(res.ReturnData, res.GasUsed, res.GasRefunded, res.Logs, postState)
		if res.CreatedAddress != nil {
			output.SetCreatedAddress(*res.CreatedAddress)
		}
	case res.Status.IsRevert():
		output = NewRevertOutput(res.ReturnData, res.GasUsed, postState)
	default:
		output = NewHaltOutput(res.GasUsed, postState)
	}

	outputHash, err := output.Hash()
	if err != nil {
		return nil, err
	}
	commitment := NewCommitment(inputHash, outputHash, preRoot, postState.Root())

	return &ExecutionArtifact{
		Input:      input,
		Output:     output,
		Commitment: commitment,
	}, nil
}

// Simulate runs the transaction without materializing a post-state: the
// output carries the untouched pre-state and the commitment binds the
// pre-state root on both sides. Useful for gas estimation and revert
// probing.
func (e *Executor) Simulate(input *ExecutionInput) (*ExecutionOutput, error) {
	cfg := &EngineConfig{
		Spec:    SpecShanghai,
		ChainID: input.Block.ChainID,
		Block:   input.Block,
		Tx:      input.Tx,
	}
	res, err := e.engine.Run(cfg, input.PreState)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExecutionHalted, err)
	}
	switch {
	case res.Status.IsSuccess():
		output := NewSuccessOutput(res.ReturnData, res.GasUsed, res.GasRefunded, res.Logs, input.PreState)
		if res.CreatedAddress != nil {
			output.SetCreatedAddress(*res.CreatedAddress)
		}
		return output, nil
	case res.Status.IsRevert():
		return NewRevertOutput(res.ReturnData, res.GasUsed, input.PreState), nil
	default:
		return NewHaltOutput(res.GasUsed, input.PreState), nil
	}
}

// reconcile folds the engine's account deltas into the post-state.
// Existing accounts are updated in place: balance and nonce take the
// delta's final values, and each reported storage pair is set-or-cleared
// (zero value clears the slot). Slots the delta does not report are left
// untouched, and accounts are never removed. Missing accounts are
// created from the delta. Code is overwritten only when the delta
// carries code of its own; a delta explicitly reporting the empty code
// hash strips it. Addresses are applied in sorted order so
// reconciliation itself is deterministic.
func reconcile(post *state.StateDB, deltas map[types.Address]AccountDelta) {
	addrs := make([]types.Address, 0, len(deltas))
	for addr := range deltas {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool {
		a, b := addrs[i], addrs[j]
		for k := 0; k < types.AddressLength; k++ {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})

	for _, addr := range addrs {
		delta := deltas[addr]
		acct := post.Account(addr)
		if acct == nil {
			acct = state.NewAccount(nil)
			post.SetAccount(addr, acct)
		}
		if delta.Balance != nil {
			acct.Balance.Set(delta.Balance)
		} else {
			acct.Balance.Clear()
		}
		acct.Nonce = delta.Nonce
		if len(delta.Code) > 0 || delta.CodeHash == crypto.EmptyCodeHash {
			acct.SetCode(delta.Code)
		}
		for slot, value := range delta.Storage {
			acct.SetStorage(slot, value)
		}
	}
}
