package core

import (
	"github.com/zacksfF/shadow-evm/core/state"
)

// InputBuilder assembles an ExecutionInput piece by piece. Unset pieces
// fall back to defaults: the default block environment and an empty
// pre-state.
type InputBuilder struct {
	block *BlockEnv
	tx    *TxEnv
	pre   *state.StateDB
}

// NewInputBuilder returns an empty builder.
func NewInputBuilder() *InputBuilder {
	return &InputBuilder{}
}

// WithBlock sets the block environment.
func (b *InputBuilder) WithBlock(block BlockEnv) *InputBuilder {
	b.block = &block
	return b
}

// WithTx sets the transaction environment.
func (b *InputBuilder) WithTx(tx TxEnv) *InputBuilder {
	b.tx = &tx
	return b
}

// WithState sets the pre-state snapshot.
func (b *InputBuilder) WithState(pre *state.StateDB) *InputBuilder {
	b.pre = pre
	return b
}

// Build assembles the execution input, filling unset pieces with
// defaults.
func (b *InputBuilder) Build() *ExecutionInput {
	block := DefaultBlockEnv()
	if b.block != nil {
		block = *b.block
	}
	tx := DefaultTxEnv()
	if b.tx != nil {
		tx = *b.tx
	}
	return NewExecutionInput(block, tx, b.pre)
}

// Execute builds the input and runs it through the given executor.
func (b *InputBuilder) Execute(e *Executor) (*ExecutionArtifact, error) {
	return e.Execute(b.Build())
}
