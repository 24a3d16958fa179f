package vm

import "github.com/holiman/uint256"

// executionFunc executes one opcode against the current frame.
type executionFunc func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error)

// dynamicGasFunc calculates dynamic gas cost for an operation.
type dynamicGasFunc func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error)

// memorySizeFunc returns the required memory size for an operation. The
// bool return reports overflow; the interpreter treats it as out of gas.
type memorySizeFunc func(stack *Stack) (uint64, bool)

// operation is one opcode's execution metadata.
type operation struct {
	execute     executionFunc
	constantGas uint64
	dynamicGas  dynamicGasFunc
	minStack    int // minimum stack items required
	maxStack    int // maximum stack length allowed before execution
	memorySize  memorySizeFunc
	halts       bool // opcode terminates the frame (STOP, RETURN, REVERT)
	jumps       bool // opcode sets pc itself (JUMP, JUMPI)
	writes      bool // opcode modifies state; forbidden in static calls
}

// JumpTable maps every possible opcode to its operation definition.
type JumpTable [256]*operation

// --- overflow-safe helpers for memory size calculations ---

func stackUint64(v *uint256.Int) (uint64, bool) {
	return v.Uint64WithOverflow()
}

func safeAddOv(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a {
		return 0, true
	}
	return sum, false
}

// memOffsetSize computes offset+size from two stack positions.
func memOffsetSize(stack *Stack, offsetPos, sizePos int) (uint64, bool) {
	size, overflow := stackUint64(stack.Back(sizePos))
	if overflow {
		return 0, true
	}
	if size == 0 {
		return 0, false
	}
	offset, overflow := stackUint64(stack.Back(offsetPos))
	if overflow {
		return 0, true
	}
	end, overflow := safeAddOv(offset, size)
	return end, overflow
}

func memoryMload(stack *Stack) (uint64, bool) {
	offset, overflow := stackUint64(stack.Back(0))
	if overflow {
		return 0, true
	}
	return safeAddOv(offset, 32)
}

func memoryMstore(stack *Stack) (uint64, bool) {
	return memoryMload(stack)
}

func memoryMstore8(stack *Stack) (uint64, bool) {
	offset, overflow := stackUint64(stack.Back(0))
	if overflow {
		return 0, true
	}
	return safeAddOv(offset, 1)
}

func memoryReturn(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 0, 1)
}

func memoryKeccak256(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 0, 1)
}

func memoryCopy(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 0, 2)
}

func memoryLog(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 0, 1)
}

// memoryCall covers CALL: gas, addr, value, argsOff, argsLen, retOff, retLen.
func memoryCall(stack *Stack) (uint64, bool) {
	argsEnd, overflow := memOffsetSize(stack, 3, 4)
	if overflow {
		return 0, true
	}
	retEnd, overflow := memOffsetSize(stack, 5, 6)
	if overflow {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

// memoryDelegateCall covers DELEGATECALL and STATICCALL (no value word).
func memoryDelegateCall(stack *Stack) (uint64, bool) {
	argsEnd, overflow := memOffsetSize(stack, 2, 3)
	if overflow {
		return 0, true
	}
	retEnd, overflow := memOffsetSize(stack, 4, 5)
	if overflow {
		return 0, true
	}
	if argsEnd > retEnd {
		return argsEnd, false
	}
	return retEnd, false
}

// memoryExtcodecopy covers EXTCODECOPY: addr, memOff, codeOff, length.
func memoryExtcodecopy(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 1, 3)
}

// memoryCreate covers CREATE and CREATE2: value, offset, length, [salt].
func memoryCreate(stack *Stack) (uint64, bool) {
	return memOffsetSize(stack, 1, 2)
}

// newShanghaiJumpTable builds the full Shanghai instruction set. The
// engine executes exactly one rule set, so the table is constructed
// directly rather than layered fork by fork.
func newShanghaiJumpTable() JumpTable {
	var tbl JumpTable

	// Arithmetic.
	tbl[STOP] = &operation{execute: opStop, minStack: 0, maxStack: 1024, halts: true}
	tbl[ADD] = &operation{execute: opAdd, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[MUL] = &operation{execute: opMul, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[SUB] = &operation{execute: opSub, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[DIV] = &operation{execute: opDiv, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[SDIV] = &operation{execute: opSdiv, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[MOD] = &operation{execute: opMod, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[SMOD] = &operation{execute: opSmod, constantGas: GasFastStep, minStack: 2, maxStack: 1024}
	tbl[ADDMOD] = &operation{execute: opAddmod, constantGas: GasMidStep, minStack: 3, maxStack: 1024}
	tbl[MULMOD] = &operation{execute: opMulmod, constantGas: GasMidStep, minStack: 3, maxStack: 1024}
	tbl[EXP] = &operation{execute: opExp, constantGas: GasSlowStep, dynamicGas: gasExp, minStack: 2, maxStack: 1024}
	tbl[SIGNEXTEND] = &operation{execute: opSignExtend, constantGas: GasFastStep, minStack: 2, maxStack: 1024}

	// Comparison.
	tbl[LT] = &operation{execute: opLt, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[GT] = &operation{execute: opGt, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SLT] = &operation{execute: opSlt, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SGT] = &operation{execute: opSgt, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[EQ] = &operation{execute: opEq, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[ISZERO] = &operation{execute: opIsZero, constantGas: GasFastestStep, minStack: 1, maxStack: 1024}

	// Bitwise.
	tbl[AND] = &operation{execute: opAnd, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[OR] = &operation{execute: opOr, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[XOR] = &operation{execute: opXor, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[NOT] = &operation{execute: opNot, constantGas: GasFastestStep, minStack: 1, maxStack: 1024}
	tbl[BYTE] = &operation{execute: opByte, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SHL] = &operation{execute: opSHL, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SHR] = &operation{execute: opSHR, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}
	tbl[SAR] = &operation{execute: opSAR, constantGas: GasFastestStep, minStack: 2, maxStack: 1024}

	// Hashing.
	tbl[KECCAK256] = &operation{execute: opKeccak256, constantGas: GasKeccak256, minStack: 2, maxStack: 1024, memorySize: memoryKeccak256, dynamicGas: gasKeccak256}

	// Environment.
	tbl[ADDRESS] = &operation{execute: opAddress, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[BALANCE] = &operation{execute: opBalance, constantGas: WarmStorageReadCost, dynamicGas: gasAccountAccess, minStack: 1, maxStack: 1024}
	tbl[ORIGIN] = &operation{execute: opOrigin, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLER] = &operation{execute: opCaller, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLVALUE] = &operation{execute: opCallValue, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLDATALOAD] = &operation{execute: opCalldataLoad, constantGas: GasFastestStep, minStack: 1, maxStack: 1024}
	tbl[CALLDATASIZE] = &operation{execute: opCalldataSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CALLDATACOPY] = &operation{execute: opCalldataCopy, constantGas: GasFastestStep, minStack: 3, maxStack: 1024, memorySize: memoryCopy, dynamicGas: gasCopyOp}
	tbl[CODESIZE] = &operation{execute: opCodeSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CODECOPY] = &operation{execute: opCodeCopy, constantGas: GasFastestStep, minStack: 3, maxStack: 1024, memorySize: memoryCopy, dynamicGas: gasCopyOp}
	tbl[GASPRICE] = &operation{execute: opGasPrice, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[EXTCODESIZE] = &operation{execute: opExtcodesize, constantGas: WarmStorageReadCost, dynamicGas: gasAccountAccess, minStack: 1, maxStack: 1024}
	tbl[EXTCODECOPY] = &operation{execute: opExtcodecopy, constantGas: WarmStorageReadCost, minStack: 4, maxStack: 1024, memorySize: memoryExtcodecopy, dynamicGas: gasExtCodeCopy}
	tbl[RETURNDATASIZE] = &operation{execute: opReturndataSize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[RETURNDATACOPY] = &operation{execute: opReturndataCopy, constantGas: GasFastestStep, minStack: 3, maxStack: 1024, memorySize: memoryCopy, dynamicGas: gasCopyOp}
	tbl[EXTCODEHASH] = &operation{execute: opExtcodehash, constantGas: WarmStorageReadCost, dynamicGas: gasAccountAccess, minStack: 1, maxStack: 1024}

	// Block information.
	tbl[BLOCKHASH] = &operation{execute: opBlockhash, constantGas: GasExtStep, minStack: 1, maxStack: 1024}
	tbl[COINBASE] = &operation{execute: opCoinbase, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[TIMESTAMP] = &operation{execute: opTimestamp, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[NUMBER] = &operation{execute: opNumber, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[PREVRANDAO] = &operation{execute: opPrevRandao, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[GASLIMIT] = &operation{execute: opGasLimit, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[CHAINID] = &operation{execute: opChainID, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[SELFBALANCE] = &operation{execute: opSelfBalance, constantGas: GasFastStep, minStack: 0, maxStack: 1023}
	tbl[BASEFEE] = &operation{execute: opBaseFee, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}

	// Stack, memory, flow.
	tbl[POP] = &operation{execute: opPop, constantGas: GasQuickStep, minStack: 1, maxStack: 1024}
	tbl[MLOAD] = &operation{execute: opMload, constantGas: GasFastestStep, minStack: 1, maxStack: 1024, memorySize: memoryMload, dynamicGas: gasMemExpansion}
	tbl[MSTORE] = &operation{execute: opMstore, constantGas: GasFastestStep, minStack: 2, maxStack: 1024, memorySize: memoryMstore, dynamicGas: gasMemExpansion}
	tbl[MSTORE8] = &operation{execute: opMstore8, constantGas: GasFastestStep, minStack: 2, maxStack: 1024, memorySize: memoryMstore8, dynamicGas: gasMemExpansion}
	tbl[SLOAD] = &operation{execute: opSload, constantGas: WarmStorageReadCost, dynamicGas: gasSload, minStack: 1, maxStack: 1024}
	tbl[SSTORE] = &operation{execute: opSstore, dynamicGas: gasSstore, minStack: 2, maxStack: 1024, writes: true}
	tbl[JUMP] = &operation{execute: opJump, constantGas: GasJump, minStack: 1, maxStack: 1024, jumps: true}
	tbl[JUMPI] = &operation{execute: opJumpi, constantGas: GasJumpi, minStack: 2, maxStack: 1024, jumps: true}
	tbl[PC] = &operation{execute: opPc, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[MSIZE] = &operation{execute: opMsize, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[GAS] = &operation{execute: opGas, constantGas: GasQuickStep, minStack: 0, maxStack: 1023}
	tbl[JUMPDEST] = &operation{execute: opJumpdest, constantGas: GasJumpDest, minStack: 0, maxStack: 1024}

	// Pushes (EIP-3855 PUSH0 plus PUSH1..PUSH32).
	tbl[PUSH0] = &operation{execute: opPush0, constantGas: GasPush0, minStack: 0, maxStack: 1023}
	for i := 1; i <= 32; i++ {
		tbl[PUSH1+OpCode(i-1)] = &operation{
			execute:     makePush(uint64(i)),
			constantGas: GasFastestStep,
			minStack:    0,
			maxStack:    1023,
		}
	}

	// Dups and swaps.
	for i := 1; i <= 16; i++ {
		tbl[DUP1+OpCode(i-1)] = &operation{
			execute:     makeDup(i),
			constantGas: GasFastestStep,
			minStack:    i,
			maxStack:    1023,
		}
		tbl[SWAP1+OpCode(i-1)] = &operation{
			execute:     makeSwap(i),
			constantGas: GasFastestStep,
			minStack:    i + 1,
			maxStack:    1024,
		}
	}

	// Logging.
	for i := 0; i <= 4; i++ {
		n := i
		tbl[LOG0+OpCode(i)] = &operation{
			execute:     makeLog(n),
			minStack:    2 + n,
			maxStack:    1024,
			writes:      true,
			memorySize:  memoryLog,
			dynamicGas:  makeGasLog(uint64(n)),
		}
	}

	// Calls and system operations.
	tbl[CREATE] = &operation{execute: opCreate, minStack: 3, maxStack: 1024, memorySize: memoryCreate, dynamicGas: gasCreate, writes: true}
	tbl[CALL] = &operation{execute: opCall, constantGas: WarmStorageReadCost, minStack: 7, maxStack: 1024, memorySize: memoryCall, dynamicGas: gasCall}
	tbl[RETURN] = &operation{execute: opReturn, minStack: 2, maxStack: 1024, halts: true, memorySize: memoryReturn, dynamicGas: gasMemExpansion}
	tbl[DELEGATECALL] = &operation{execute: opDelegateCall, constantGas: WarmStorageReadCost, minStack: 6, maxStack: 1024, memorySize: memoryDelegateCall, dynamicGas: gasCallVariant}
	tbl[CREATE2] = &operation{execute: opCreate2, minStack: 4, maxStack: 1024, memorySize: memoryCreate, dynamicGas: gasCreate2, writes: true}
	tbl[STATICCALL] = &operation{execute: opStaticCall, constantGas: WarmStorageReadCost, minStack: 6, maxStack: 1024, memorySize: memoryDelegateCall, dynamicGas: gasCallVariant}
	tbl[REVERT] = &operation{execute: opRevert, minStack: 2, maxStack: 1024, halts: true, memorySize: memoryReturn, dynamicGas: gasMemExpansion}
	tbl[INVALID] = &operation{execute: opInvalid, minStack: 0, maxStack: 1024}

	return tbl
}
