package vm

import (
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
)

// MaxCallDepth is the EVM call stack limit.
const MaxCallDepth = 1024

// BlockContext provides block-level information to executing code.
type BlockContext struct {
	BlockNumber uint64
	Time        uint64
	Coinbase    types.Address
	GasLimit    uint64
	BaseFee     *uint256.Int
	PrevRandao  types.Hash
}

// TxContext provides transaction-level information to executing code.
type TxContext struct {
	Origin   types.Address
	GasPrice *uint256.Int
}

// EVM is the execution environment for one transaction: the interpreter
// loop, call stack and the mutable state overlay.
type EVM struct {
	Context   BlockContext
	TxContext TxContext
	StateDB   *StateDB

	chainID     uint64
	depth       int
	readOnly    bool
	jumpTable   JumpTable
	precompiles map[types.Address]PrecompiledContract
	returnData  []byte // return data of the last CALL/CREATE

	// callGasTemp carries the gas resolved under the 63/64 rule from the
	// dynamic gas calculation to the call opcode's execution.
	callGasTemp uint64
}

// NewEVM creates an EVM operating on the given state overlay.
func NewEVM(blockCtx BlockContext, txCtx TxContext, statedb *StateDB, chainID uint64) *EVM {
	if blockCtx.BaseFee == nil {
		blockCtx.BaseFee = new(uint256.Int)
	}
	if txCtx.GasPrice == nil {
		txCtx.GasPrice = new(uint256.Int)
	}
	return &EVM{
		Context:     blockCtx,
		TxContext:   txCtx,
		StateDB:     statedb,
		chainID:     chainID,
		jumpTable:   newShanghaiJumpTable(),
		precompiles: precompiledContracts,
	}
}

// precompile returns the precompiled contract at addr, if any.
func (evm *EVM) precompile(addr types.Address) (PrecompiledContract, bool) {
	p, ok := evm.precompiles[addr]
	return p, ok
}

// PreWarmAccessList warms the origin, recipient and all precompile
// addresses before execution starts (EIP-2929, EIP-3651 for coinbase).
func (evm *EVM) PreWarmAccessList(sender types.Address, to *types.Address) {
	evm.StateDB.AddAddressToAccessList(sender)
	if to != nil {
		evm.StateDB.AddAddressToAccessList(*to)
	}
	for addr := range evm.precompiles {
		evm.StateDB.AddAddressToAccessList(addr)
	}
	evm.StateDB.AddAddressToAccessList(evm.Context.Coinbase)
}

// Run executes the contract bytecode against the current frame.
func (evm *EVM) Run(contract *Contract, input []byte) ([]byte, error) {
	contract.Input = input

	var (
		pc    uint64
		stack = NewStack()
		mem   = NewMemory()
	)

	for {
		op := contract.GetOp(pc)
		operation := evm.jumpTable[op]
		if operation == nil {
			return nil, ErrInvalidOpCode
		}

		sLen := stack.Len()
		if sLen < operation.minStack {
			return nil, ErrStackUnderflow
		}
		if sLen > operation.maxStack {
			return nil, ErrStackOverflow
		}
		if evm.readOnly && operation.writes {
			return nil, ErrWriteProtection
		}

		if operation.constantGas > 0 {
			if !contract.UseGas(operation.constantGas) {
				return nil, ErrOutOfGas
			}
		}

		// Word-align the memory requirement before charging expansion.
		var memSize uint64
		if operation.memorySize != nil {
			size, overflow := operation.memorySize(stack)
			if overflow {
				return nil, ErrGasUintOverflow
			}
			memSize = toWordSize(size) * 32
		}

		if operation.dynamicGas != nil {
			cost, err := operation.dynamicGas(evm, contract, stack, mem, memSize)
			if err != nil {
				return nil, err
			}
			if !contract.UseGas(cost) {
				return nil, ErrOutOfGas
			}
		}
		if memSize > 0 {
			mem.Resize(memSize)
		}

		ret, err := operation.execute(&pc, evm, contract, mem, stack)
		if err != nil {
			return ret, err
		}
		if operation.halts {
			return ret, nil
		}
		if operation.jumps {
			continue
		}
		pc++
	}
}

// runPrecompile executes a precompiled contract.
func runPrecompile(p PrecompiledContract, input []byte, gas uint64) ([]byte, uint64, error) {
	cost := p.RequiredGas(input)
	if gas < cost {
		return nil, 0, ErrOutOfGas
	}
	output, err := p.Run(input)
	return output, gas - cost, err
}
