package vm

import (
	"github.com/zacksfF/shadow-evm/core/types"
)

// gasMemExpansion charges only for memory growth.
func gasMemExpansion(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	cost, ok := memoryExpansionCost(uint64(mem.Len()), memorySize)
	if !ok {
		return 0, ErrGasUintOverflow
	}
	return cost, nil
}

// gasExp charges 50 per byte of the exponent (EIP-160).
func gasExp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	expBytes := uint64((stack.Back(1).BitLen() + 7) / 8)
	return safeMul(GasExpByte, expBytes), nil
}

// gasKeccak256 charges 6 per word hashed plus memory expansion.
func gasKeccak256(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	size, overflow := stack.Back(1).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	return safeAdd(memGas, safeMul(GasKeccak256Word, toWordSize(size))), nil
}

// gasCopyOp charges 3 per word copied plus memory expansion. Covers
// CALLDATACOPY, CODECOPY and RETURNDATACOPY (size at stack position 2).
func gasCopyOp(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	size, overflow := stack.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	return safeAdd(memGas, safeMul(GasCopy, toWordSize(size))), nil
}

// accountAccessGas warms addr and returns the extra cold access cost, if
// any (EIP-2929). The warm cost is the operation's constant gas.
func accountAccessGas(evm *EVM, addr types.Address) uint64 {
	if evm.StateDB.AddressInAccessList(addr) {
		return 0
	}
	evm.StateDB.AddAddressToAccessList(addr)
	return ColdAccountAccessCost - WarmStorageReadCost
}

// slotAccessGas warms (addr, slot) and returns the extra cold cost.
func slotAccessGas(evm *EVM, addr types.Address, slot types.Hash) uint64 {
	if _, slotWarm := evm.StateDB.SlotInAccessList(addr, slot); slotWarm {
		return 0
	}
	evm.StateDB.AddSlotToAccessList(addr, slot)
	return ColdSloadCost - WarmStorageReadCost
}

// gasAccountAccess covers BALANCE, EXTCODESIZE and EXTCODEHASH: address
// on top of the stack, cold surcharge only.
func gasAccountAccess(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	addr := types.Address(stack.Back(0).Bytes20())
	return accountAccessGas(evm, addr), nil
}

// gasExtCodeCopy charges copy gas, memory expansion and the cold
// account surcharge.
func gasExtCodeCopy(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	size, overflow := stack.Back(3).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	gas := safeAdd(memGas, safeMul(GasCopy, toWordSize(size)))
	addr := types.Address(stack.Back(0).Bytes20())
	return safeAdd(gas, accountAccessGas(evm, addr)), nil
}

// gasSload charges the cold slot surcharge (EIP-2929).
func gasSload(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	slot := types.Hash(stack.Back(0).Bytes32())
	return slotAccessGas(evm, contract.Address, slot), nil
}

// gasSstore implements the Berlin/London SSTORE gas and refund rules
// (EIP-2929 access costs, EIP-3529 refunds, EIP-2200 structure).
func gasSstore(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	// EIP-2200 sentry: refuse to run with at most the stipend left, so a
	// value-call stipend can never trigger a state change.
	if contract.Gas <= GasCallStipend {
		return 0, ErrOutOfGas
	}

	var (
		slot  = types.Hash(stack.Back(0).Bytes32())
		value = types.Hash(stack.Back(1).Bytes32())
		gas   uint64
	)
	// SSTORE has no warm constant gas, so a cold slot pays the full cold
	// cost here rather than the SLOAD-style surcharge.
	if _, slotWarm := evm.StateDB.SlotInAccessList(contract.Address, slot); !slotWarm {
		evm.StateDB.AddSlotToAccessList(contract.Address, slot)
		gas = ColdSloadCost
	}

	var (
		current  = evm.StateDB.GetState(contract.Address, slot)
		original = evm.StateDB.GetCommittedState(contract.Address, slot)
	)

	switch {
	case current == value:
		// No-op write.
		return gas + WarmStorageReadCost, nil
	case original == current:
		// Clean slot, first real write this execution.
		if original.IsZero() {
			return gas + GasSstoreSet, nil
		}
		if value.IsZero() {
			evm.StateDB.AddRefund(SstoreClearsRefund)
		}
		return gas + GasSstoreReset, nil
	default:
		// Dirty slot: adjust refunds for transitions through zero and
		// restorations to the original value.
		if !original.IsZero() {
			if current.IsZero() {
				evm.StateDB.SubRefund(SstoreClearsRefund)
			} else if value.IsZero() {
				evm.StateDB.AddRefund(SstoreClearsRefund)
			}
		}
		if original == value {
			if original.IsZero() {
				evm.StateDB.AddRefund(GasSstoreSet - WarmStorageReadCost)
			} else {
				evm.StateDB.AddRefund(GasSstoreReset - WarmStorageReadCost)
			}
		}
		return gas + WarmStorageReadCost, nil
	}
}

// makeGasLog builds the dynamic gas function for LOGn.
func makeGasLog(topics uint64) dynamicGasFunc {
	return func(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
		memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
		if err != nil {
			return 0, err
		}
		size, overflow := stack.Back(1).Uint64WithOverflow()
		if overflow {
			return 0, ErrGasUintOverflow
		}
		gas := safeAdd(GasLog, safeMul(GasLogTopic, topics))
		gas = safeAdd(gas, safeMul(GasLogData, size))
		return safeAdd(gas, memGas), nil
	}
}

// gasCall computes the CALL surcharges: memory expansion, cold account
// access, value transfer and new account creation. It also resolves the
// gas forwarded to the callee under the 63/64 rule and stashes it in
// evm.callGasTemp, charging it as part of the cost so the interpreter
// withholds it from the frame.
func gasCall(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	addr := types.Address(stack.Back(1).Bytes20())
	gas := safeAdd(memGas, accountAccessGas(evm, addr))

	value := stack.Back(2)
	if !value.IsZero() {
		gas = safeAdd(gas, GasCallValue)
		if !evm.StateDB.Exist(addr) || evm.StateDB.Empty(addr) {
			gas = safeAdd(gas, GasNewAccount)
		}
	}

	if contract.Gas < gas {
		return 0, ErrOutOfGas
	}
	requested, overflow := stack.Back(0).Uint64WithOverflow()
	if overflow {
		requested = ^uint64(0)
	}
	evm.callGasTemp = callGas(contract.Gas-gas, requested)
	return safeAdd(gas, evm.callGasTemp), nil
}

// gasCallVariant covers DELEGATECALL and STATICCALL: no value words.
func gasCallVariant(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	addr := types.Address(stack.Back(1).Bytes20())
	gas := safeAdd(memGas, accountAccessGas(evm, addr))

	if contract.Gas < gas {
		return 0, ErrOutOfGas
	}
	requested, overflow := stack.Back(0).Uint64WithOverflow()
	if overflow {
		requested = ^uint64(0)
	}
	evm.callGasTemp = callGas(contract.Gas-gas, requested)
	return safeAdd(gas, evm.callGasTemp), nil
}

// gasCreate charges the CREATE base cost, EIP-3860 init code word gas
// and memory expansion, then withholds all but one 64th for the init
// frame via evm.callGasTemp.
func gasCreate(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCreateCommon(evm, contract, stack, mem, memorySize, false)
}

// gasCreate2 additionally charges keccak word gas for hashing the init
// code into the deployment address.
func gasCreate2(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64) (uint64, error) {
	return gasCreateCommon(evm, contract, stack, mem, memorySize, true)
}

func gasCreateCommon(evm *EVM, contract *Contract, stack *Stack, mem *Memory, memorySize uint64, hashed bool) (uint64, error) {
	memGas, err := gasMemExpansion(evm, contract, stack, mem, memorySize)
	if err != nil {
		return 0, err
	}
	size, overflow := stack.Back(2).Uint64WithOverflow()
	if overflow {
		return 0, ErrGasUintOverflow
	}
	words := toWordSize(size)
	gas := safeAdd(GasCreate, memGas)
	gas = safeAdd(gas, safeMul(InitCodeWordGas, words))
	if hashed {
		gas = safeAdd(gas, safeMul(GasKeccak256Word, words))
	}

	if contract.Gas < gas {
		return 0, ErrOutOfGas
	}
	avail := contract.Gas - gas
	evm.callGasTemp = avail - avail/CallGasFraction
	return safeAdd(gas, evm.callGasTemp), nil
}
