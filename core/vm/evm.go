package vm

import (
	"errors"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// Call executes a message call to addr with the given input, gas and
// value. Returns the output, the gas left and any error. Revert carries
// ErrExecutionReverted with the revert data.
func (evm *EVM) Call(caller, addr types.Address, input []byte, gas uint64, value *uint256.Int) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, gas, ErrInsufficientBalance
	}

	snapshot := evm.StateDB.Snapshot()

	if !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(addr, value)
	}

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
			gasLeft = 0
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, value, gas)
	contract.SetCallCode(evm.StateDB.GetCodeHash(addr), code)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// DelegateCall runs addr's code in the parent frame's context: storage,
// caller and value all come from the parent.
func (evm *EVM) DelegateCall(parent *Contract, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}

	snapshot := evm.StateDB.Snapshot()

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
			gasLeft = 0
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(parent.CallerAddress, parent.Address, parent.Value, gas)
	contract.SetCallCode(evm.StateDB.GetCodeHash(addr), code)

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// StaticCall executes a read-only message call. Any state modification
// aborts with ErrWriteProtection.
func (evm *EVM) StaticCall(caller, addr types.Address, input []byte, gas uint64) ([]byte, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, gas, ErrMaxCallDepthExceeded
	}

	snapshot := evm.StateDB.Snapshot()

	if p, ok := evm.precompile(addr); ok {
		ret, gasLeft, err := runPrecompile(p, input, gas)
		if err != nil {
			evm.StateDB.RevertToSnapshot(snapshot)
			gasLeft = 0
		}
		return ret, gasLeft, err
	}

	code := evm.StateDB.GetCode(addr)
	if len(code) == 0 {
		return nil, gas, nil
	}

	contract := NewContract(caller, addr, new(uint256.Int), gas)
	contract.SetCallCode(evm.StateDB.GetCodeHash(addr), code)

	prevReadOnly := evm.readOnly
	evm.readOnly = true

	evm.depth++
	ret, err := evm.Run(contract, input)
	evm.depth--

	evm.readOnly = prevReadOnly

	gasLeft := contract.Gas
	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
	}
	return ret, gasLeft, err
}

// CreateAddress computes the deployment address for CREATE:
// keccak256(rlp([sender, nonce]))[12:].
func CreateAddress(caller types.Address, nonce uint64) types.Address {
	enc, _ := rlp.EncodeToBytes([]interface{}{caller[:], nonce})
	hash := crypto.Keccak256(enc)
	var addr types.Address
	addr.SetBytes(hash[12:])
	return addr
}

// Create2Address computes the deployment address for CREATE2:
// keccak256(0xff ++ sender ++ salt ++ keccak256(initCode))[12:].
func Create2Address(caller types.Address, salt types.Hash, initCodeHash []byte) types.Address {
	data := make([]byte, 0, 85)
	data = append(data, 0xff)
	data = append(data, caller[:]...)
	data = append(data, salt[:]...)
	data = append(data, initCodeHash...)
	hash := crypto.Keccak256(data)
	var addr types.Address
	addr.SetBytes(hash[12:])
	return addr
}

// Create deploys a contract using the CREATE address scheme.
func (evm *EVM) Create(caller types.Address, code []byte, gas uint64, value *uint256.Int) ([]byte, types.Address, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, types.Address{}, gas, ErrMaxCallDepthExceeded
	}
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}

	nonce := evm.StateDB.GetNonce(caller)
	if nonce == ^uint64(0) {
		return nil, types.Address{}, gas, ErrNonceOverflow
	}
	evm.StateDB.SetNonce(caller, nonce+1)
	contractAddr := CreateAddress(caller, nonce)

	return evm.create(caller, code, gas, value, contractAddr)
}

// Create2 deploys a contract using the CREATE2 address scheme.
func (evm *EVM) Create2(caller types.Address, code []byte, gas uint64, value, salt *uint256.Int) ([]byte, types.Address, uint64, error) {
	if evm.depth > MaxCallDepth {
		return nil, types.Address{}, gas, ErrMaxCallDepthExceeded
	}
	if evm.readOnly {
		return nil, types.Address{}, gas, ErrWriteProtection
	}

	nonce := evm.StateDB.GetNonce(caller)
	if nonce == ^uint64(0) {
		return nil, types.Address{}, gas, ErrNonceOverflow
	}
	evm.StateDB.SetNonce(caller, nonce+1)
	contractAddr := Create2Address(caller, types.Hash(salt.Bytes32()), crypto.Keccak256(code))

	return evm.create(caller, code, gas, value, contractAddr)
}

// create is the shared deployment path for Create and Create2.
func (evm *EVM) create(caller types.Address, code []byte, gas uint64, value *uint256.Int, contractAddr types.Address) ([]byte, types.Address, uint64, error) {
	if len(code) > MaxInitCodeSize {
		return nil, types.Address{}, gas, ErrMaxInitCodeSizeExceeded
	}
	if value == nil {
		value = new(uint256.Int)
	}
	if !value.IsZero() && evm.StateDB.GetBalance(caller).Lt(value) {
		return nil, types.Address{}, gas, ErrInsufficientBalance
	}

	// The deployment address is warm from here on (EIP-2929).
	evm.StateDB.AddAddressToAccessList(contractAddr)

	// A pre-existing nonce or code at the target is a collision; the
	// deployment burns all gas.
	if evm.StateDB.GetNonce(contractAddr) != 0 ||
		(evm.StateDB.GetCodeHash(contractAddr) != types.Hash{} && evm.StateDB.GetCodeHash(contractAddr) != crypto.EmptyCodeHash) {
		return nil, types.Address{}, 0, ErrContractAddressCollision
	}

	snapshot := evm.StateDB.Snapshot()

	evm.StateDB.CreateAccount(contractAddr)
	evm.StateDB.SetNonce(contractAddr, 1) // EIP-158

	if !value.IsZero() {
		evm.StateDB.SubBalance(caller, value)
		evm.StateDB.AddBalance(contractAddr, value)
	}

	contract := NewContract(caller, contractAddr, value, gas)
	contract.Code = code

	evm.depth++
	ret, err := evm.Run(contract, nil)
	evm.depth--

	if err != nil {
		evm.StateDB.RevertToSnapshot(snapshot)
		gasLeft := contract.Gas
		if !errors.Is(err, ErrExecutionReverted) {
			gasLeft = 0
		}
		return ret, types.Address{}, gasLeft, err
	}

	// EIP-3541: deployed code must not begin with 0xEF.
	if len(ret) > 0 && ret[0] == 0xEF {
		evm.StateDB.RevertToSnapshot(snapshot)
		return nil, types.Address{}, 0, ErrInvalidCode
	}
	// EIP-170: deployed code size limit.
	if len(ret) > MaxCodeSize {
		evm.StateDB.RevertToSnapshot(snapshot)
		return nil, types.Address{}, 0, ErrMaxCodeSizeExceeded
	}
	// Code deposit cost, 200 per byte.
	depositCost := safeMul(uint64(len(ret)), CreateDataGas)
	if !contract.UseGas(depositCost) {
		evm.StateDB.RevertToSnapshot(snapshot)
		return nil, types.Address{}, 0, ErrOutOfGas
	}
	evm.StateDB.SetCode(contractAddr, ret)

	return ret, contractAddr, contract.Gas, nil
}
