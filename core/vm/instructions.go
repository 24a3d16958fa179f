package vm

import (
	"errors"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// getData returns a zero-padded slice of data[start:start+size], treating
// out-of-range reads as zeros.
func getData(data []byte, start, size uint64) []byte {
	length := uint64(len(data))
	if start > length {
		start = length
	}
	end := start + size
	if end > length {
		end = length
	}
	out := make([]byte, size)
	copy(out, data[start:end])
	return out
}

// --- arithmetic ---

func opStop(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

func opAdd(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Add(&x, y)
	return nil, nil
}

func opMul(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Mul(&x, y)
	return nil, nil
}

func opSub(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Sub(&x, y)
	return nil, nil
}

func opDiv(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Div(&x, y)
	return nil, nil
}

func opSdiv(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.SDiv(&x, y)
	return nil, nil
}

func opMod(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Mod(&x, y)
	return nil, nil
}

func opSmod(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.SMod(&x, y)
	return nil, nil
}

func opAddmod(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Pop()
	z := stack.Peek()
	z.AddMod(&x, &y, z)
	return nil, nil
}

func opMulmod(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Pop()
	z := stack.Peek()
	z.MulMod(&x, &y, z)
	return nil, nil
}

func opExp(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	base := stack.Pop()
	exponent := stack.Peek()
	exponent.Exp(&base, exponent)
	return nil, nil
}

func opSignExtend(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	back := stack.Pop()
	num := stack.Peek()
	num.ExtendSign(num, &back)
	return nil, nil
}

// --- comparison ---

func opLt(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	if x.Lt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opGt(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	if x.Gt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSlt(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	if x.Slt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opSgt(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	if x.Sgt(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opEq(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	if x.Eq(y) {
		y.SetOne()
	} else {
		y.Clear()
	}
	return nil, nil
}

func opIsZero(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	if x.IsZero() {
		x.SetOne()
	} else {
		x.Clear()
	}
	return nil, nil
}

// --- bitwise ---

func opAnd(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.And(&x, y)
	return nil, nil
}

func opOr(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Or(&x, y)
	return nil, nil
}

func opXor(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Pop()
	y := stack.Peek()
	y.Xor(&x, y)
	return nil, nil
}

func opNot(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	x.Not(x)
	return nil, nil
}

func opByte(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	th := stack.Pop()
	val := stack.Peek()
	val.Byte(&th)
	return nil, nil
}

func opSHL(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift := stack.Pop()
	value := stack.Peek()
	if shift.LtUint64(256) {
		value.Lsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSHR(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift := stack.Pop()
	value := stack.Peek()
	if shift.LtUint64(256) {
		value.Rsh(value, uint(shift.Uint64()))
	} else {
		value.Clear()
	}
	return nil, nil
}

func opSAR(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	shift := stack.Pop()
	value := stack.Peek()
	if shift.GtUint64(255) {
		if value.Sign() >= 0 {
			value.Clear()
		} else {
			value.SetAllOne()
		}
		return nil, nil
	}
	value.SRsh(value, uint(shift.Uint64()))
	return nil, nil
}

// --- hashing ---

func opKeccak256(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Pop()
	size := stack.Peek()
	data := mem.GetPtr(offset.Uint64(), size.Uint64())
	hash := crypto.Keccak256(data)
	size.SetBytes(hash)
	return nil, nil
}

// --- execution environment ---

func opAddress(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetBytes(contract.Address[:]))
	return nil, nil
}

func opBalance(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	addr := types.Address(slot.Bytes20())
	slot.Set(evm.StateDB.GetBalance(addr))
	return nil, nil
}

func opOrigin(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetBytes(evm.TxContext.Origin[:]))
	return nil, nil
}

func opCaller(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetBytes(contract.CallerAddress[:]))
	return nil, nil
}

func opCallValue(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).Set(contract.Value))
	return nil, nil
}

func opCalldataLoad(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	x := stack.Peek()
	if offset, overflow := x.Uint64WithOverflow(); !overflow {
		x.SetBytes(getData(contract.Input, offset, 32))
	} else {
		x.Clear()
	}
	return nil, nil
}

func opCalldataSize(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(uint64(len(contract.Input))))
	return nil, nil
}

func opCalldataCopy(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	memOffset := stack.Pop()
	dataOffset := stack.Pop()
	length := stack.Pop()

	dataOff, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		dataOff = ^uint64(0)
	}
	mem.Set(memOffset.Uint64(), length.Uint64(), getData(contract.Input, dataOff, length.Uint64()))
	return nil, nil
}

func opCodeSize(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(uint64(len(contract.Code))))
	return nil, nil
}

func opCodeCopy(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	memOffset := stack.Pop()
	codeOffset := stack.Pop()
	length := stack.Pop()

	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = ^uint64(0)
	}
	mem.Set(memOffset.Uint64(), length.Uint64(), getData(contract.Code, codeOff, length.Uint64()))
	return nil, nil
}

func opGasPrice(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).Set(evm.TxContext.GasPrice))
	return nil, nil
}

func opExtcodesize(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	addr := types.Address(slot.Bytes20())
	slot.SetUint64(uint64(evm.StateDB.GetCodeSize(addr)))
	return nil, nil
}

func opExtcodecopy(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	a := stack.Pop()
	memOffset := stack.Pop()
	codeOffset := stack.Pop()
	length := stack.Pop()

	addr := types.Address(a.Bytes20())
	codeOff, overflow := codeOffset.Uint64WithOverflow()
	if overflow {
		codeOff = ^uint64(0)
	}
	code := evm.StateDB.GetCode(addr)
	mem.Set(memOffset.Uint64(), length.Uint64(), getData(code, codeOff, length.Uint64()))
	return nil, nil
}

func opReturndataSize(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(uint64(len(evm.returnData))))
	return nil, nil
}

func opReturndataCopy(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	memOffset := stack.Pop()
	dataOffset := stack.Pop()
	length := stack.Pop()

	offset, overflow := dataOffset.Uint64WithOverflow()
	if overflow {
		return nil, ErrReturnDataOutOfBounds
	}
	end, overflow := safeAddOv(offset, length.Uint64())
	if overflow || end > uint64(len(evm.returnData)) {
		return nil, ErrReturnDataOutOfBounds
	}
	mem.Set(memOffset.Uint64(), length.Uint64(), evm.returnData[offset:end])
	return nil, nil
}

func opExtcodehash(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	addr := types.Address(slot.Bytes20())
	if evm.StateDB.Empty(addr) {
		slot.Clear()
	} else {
		hash := evm.StateDB.GetCodeHash(addr)
		slot.SetBytes(hash[:])
	}
	return nil, nil
}

// --- block information ---

func opBlockhash(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	num := stack.Peek()
	requested, overflow := num.Uint64WithOverflow()
	if overflow {
		num.Clear()
		return nil, nil
	}
	current := evm.Context.BlockNumber
	if requested >= current || current-requested > 256 {
		num.Clear()
		return nil, nil
	}
	hash := evm.StateDB.BlockHash(requested)
	num.SetBytes(hash[:])
	return nil, nil
}

func opCoinbase(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetBytes(evm.Context.Coinbase[:]))
	return nil, nil
}

func opTimestamp(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(evm.Context.Time))
	return nil, nil
}

func opNumber(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(evm.Context.BlockNumber))
	return nil, nil
}

func opPrevRandao(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetBytes(evm.Context.PrevRandao[:]))
	return nil, nil
}

func opGasLimit(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(evm.Context.GasLimit))
	return nil, nil
}

func opChainID(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(evm.chainID))
	return nil, nil
}

func opSelfBalance(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(evm.StateDB.GetBalance(contract.Address))
	return nil, nil
}

func opBaseFee(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).Set(evm.Context.BaseFee))
	return nil, nil
}

// --- stack, memory and flow ---

func opPop(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	return nil, nil
}

func opMload(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	v := stack.Peek()
	offset := v.Uint64()
	v.SetBytes(mem.GetPtr(offset, 32))
	return nil, nil
}

func opMstore(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Pop()
	value := stack.Pop()
	mem.Set32(offset.Uint64(), &value)
	return nil, nil
}

func opMstore8(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Pop()
	value := stack.Pop()
	mem.Set(offset.Uint64(), 1, []byte{byte(value.Uint64())})
	return nil, nil
}

func opSload(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Peek()
	key := types.Hash(slot.Bytes32())
	val := evm.StateDB.GetState(contract.Address, key)
	slot.SetBytes(val[:])
	return nil, nil
}

func opSstore(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	slot := stack.Pop()
	value := stack.Pop()
	evm.StateDB.SetState(contract.Address, types.Hash(slot.Bytes32()), types.Hash(value.Bytes32()))
	return nil, nil
}

func opJump(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest := stack.Pop()
	if !contract.validJumpdest(&dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opJumpi(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	dest := stack.Pop()
	cond := stack.Pop()
	if cond.IsZero() {
		*pc++
		return nil, nil
	}
	if !contract.validJumpdest(&dest) {
		return nil, ErrInvalidJump
	}
	*pc = dest.Uint64()
	return nil, nil
}

func opPc(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(*pc))
	return nil, nil
}

func opMsize(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(uint64(mem.Len())))
	return nil, nil
}

func opGas(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int).SetUint64(contract.Gas))
	return nil, nil
}

func opJumpdest(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, nil
}

// --- pushes, dups, swaps ---

func opPush0(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Push(new(uint256.Int))
	return nil, nil
}

func makePush(size uint64) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		stack.Push(new(uint256.Int).SetBytes(getData(contract.Code, *pc+1, size)))
		*pc += size
		return nil, nil
	}
}

func makeDup(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		stack.Dup(n)
		return nil, nil
	}
}

func makeSwap(n int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		stack.Swap(n)
		return nil, nil
	}
}

// --- logging ---

func makeLog(topics int) executionFunc {
	return func(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
		offset := stack.Pop()
		size := stack.Pop()
		log := types.Log{
			Address: contract.Address,
			Topics:  make([]types.Hash, topics),
		}
		for i := 0; i < topics; i++ {
			t := stack.Pop()
			log.Topics[i] = types.Hash(t.Bytes32())
		}
		log.Data = mem.Get(offset.Uint64(), size.Uint64())
		evm.StateDB.AddLog(log)
		return nil, nil
	}
}

// --- calls and system operations ---

func opCreate(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	value := stack.Pop()
	offset := stack.Pop()
	size := stack.Pop()

	code := mem.Get(offset.Uint64(), size.Uint64())
	gas := evm.callGasTemp

	ret, addr, returnGas, err := evm.Create(contract.Address, code, gas, &value)
	contract.RefundGas(returnGas)

	v := new(uint256.Int)
	if err == nil {
		v.SetBytes(addr[:])
	}
	stack.Push(v)

	if errors.Is(err, ErrExecutionReverted) {
		evm.returnData = ret
	} else {
		evm.returnData = nil
	}
	return nil, nil
}

func opCreate2(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	value := stack.Pop()
	offset := stack.Pop()
	size := stack.Pop()
	salt := stack.Pop()

	code := mem.Get(offset.Uint64(), size.Uint64())
	gas := evm.callGasTemp

	ret, addr, returnGas, err := evm.Create2(contract.Address, code, gas, &value, &salt)
	contract.RefundGas(returnGas)

	v := new(uint256.Int)
	if err == nil {
		v.SetBytes(addr[:])
	}
	stack.Push(v)

	if errors.Is(err, ErrExecutionReverted) {
		evm.returnData = ret
	} else {
		evm.returnData = nil
	}
	return nil, nil
}

func opCall(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop() // requested gas, already resolved into callGasTemp
	a := stack.Pop()
	value := stack.Pop()
	inOffset := stack.Pop()
	inSize := stack.Pop()
	retOffset := stack.Pop()
	retSize := stack.Pop()

	addr := types.Address(a.Bytes20())
	gas := evm.callGasTemp
	if !value.IsZero() {
		if evm.readOnly {
			return nil, ErrWriteProtection
		}
		gas += GasCallStipend
	}
	args := mem.Get(inOffset.Uint64(), inSize.Uint64())

	ret, returnGas, err := evm.Call(contract.Address, addr, args, gas, &value)
	contract.RefundGas(returnGas)

	v := new(uint256.Int)
	if err == nil {
		v.SetOne()
	}
	stack.Push(v)

	if err == nil || errors.Is(err, ErrExecutionReverted) {
		n := uint64(len(ret))
		if n > retSize.Uint64() {
			n = retSize.Uint64()
		}
		mem.Set(retOffset.Uint64(), n, ret)
	}
	evm.returnData = ret
	return nil, nil
}

func opDelegateCall(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	a := stack.Pop()
	inOffset := stack.Pop()
	inSize := stack.Pop()
	retOffset := stack.Pop()
	retSize := stack.Pop()

	addr := types.Address(a.Bytes20())
	args := mem.Get(inOffset.Uint64(), inSize.Uint64())

	ret, returnGas, err := evm.DelegateCall(contract, addr, args, evm.callGasTemp)
	contract.RefundGas(returnGas)

	v := new(uint256.Int)
	if err == nil {
		v.SetOne()
	}
	stack.Push(v)

	if err == nil || errors.Is(err, ErrExecutionReverted) {
		n := uint64(len(ret))
		if n > retSize.Uint64() {
			n = retSize.Uint64()
		}
		mem.Set(retOffset.Uint64(), n, ret)
	}
	evm.returnData = ret
	return nil, nil
}

func opStaticCall(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	stack.Pop()
	a := stack.Pop()
	inOffset := stack.Pop()
	inSize := stack.Pop()
	retOffset := stack.Pop()
	retSize := stack.Pop()

	addr := types.Address(a.Bytes20())
	args := mem.Get(inOffset.Uint64(), inSize.Uint64())

	ret, returnGas, err := evm.StaticCall(contract.Address, addr, args, evm.callGasTemp)
	contract.RefundGas(returnGas)

	v := new(uint256.Int)
	if err == nil {
		v.SetOne()
	}
	stack.Push(v)

	if err == nil || errors.Is(err, ErrExecutionReverted) {
		n := uint64(len(ret))
		if n > retSize.Uint64() {
			n = retSize.Uint64()
		}
		mem.Set(retOffset.Uint64(), n, ret)
	}
	evm.returnData = ret
	return nil, nil
}

func opReturn(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Pop()
	size := stack.Pop()
	return mem.Get(offset.Uint64(), size.Uint64()), nil
}

func opRevert(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	offset := stack.Pop()
	size := stack.Pop()
	return mem.Get(offset.Uint64(), size.Uint64()), ErrExecutionReverted
}

func opInvalid(pc *uint64, evm *EVM, contract *Contract, mem *Memory, stack *Stack) ([]byte, error) {
	return nil, ErrInvalidOpCode
}
