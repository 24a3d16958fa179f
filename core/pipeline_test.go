package core_test

import (
	"testing"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/core/vm"
)

// These tests run the whole pipeline with the real engine, end to end:
// input construction, execution, reconciliation, and commitment.

func addr(b byte) types.Address {
	var a types.Address
	a[types.AddressLength-1] = b
	return a
}

func TestPipelineTransfer(t *testing.T) {
	pre := state.New()
	pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))

	input := core.NewExecutionInput(core.DefaultBlockEnv(),
		core.Transfer(addr(1), addr(2), uint256.NewInt(12345)), pre)

	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(input)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("status = %v", artifact.Output.Status)
	}
	if artifact.Output.GasUsed != core.TransferGasLimit {
		t.Fatalf("gas used = %d, want %d", artifact.Output.GasUsed, core.TransferGasLimit)
	}

	post := artifact.Output.PostState
	recipient := post.Account(addr(2))
	if recipient == nil || recipient.Balance.Uint64() != 12345 {
		t.Fatalf("recipient not credited: %+v", recipient)
	}
	// The input's pre-state stays untouched.
	if pre.Account(addr(2)) != nil {
		t.Fatalf("pre-state mutated by execution")
	}

	inputHash, err := input.Hash()
	if err != nil {
		t.Fatalf("input hash: %v", err)
	}
	outputHash, err := artifact.Output.Hash()
	if err != nil {
		t.Fatalf("output hash: %v", err)
	}
	if err := artifact.Commitment.Verify(inputHash, outputHash); err != nil {
		t.Fatalf("commitment: %v", err)
	}
	if artifact.Commitment.PostStateRoot != post.Root() {
		t.Fatalf("commitment post-state root diverges from post-state")
	}
}

func TestPipelineDeterminism(t *testing.T) {
	build := func() *core.ExecutionInput {
		pre := state.New()
		pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))
		// Counter contract: SSTORE(0, SLOAD(0)+1).
		pre.SetAccount(addr(2), state.NewContract([]byte{
			0x60, 0x00, 0x54, 0x60, 0x01, 0x01, 0x60, 0x00, 0x55, 0x00,
		}, nil))
		tx := core.Call(addr(1), addr(2), nil)
		tx.GasLimit = 100_000
		return core.NewExecutionInput(core.DefaultBlockEnv(), tx, pre)
	}

	first, err := core.NewExecutor(vm.NewEngine()).Execute(build())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	second, err := core.NewExecutor(vm.NewEngine()).Execute(build())
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !first.Commitment.Equal(second.Commitment) {
		t.Fatalf("identical inputs produced different commitments")
	}
}

func TestPipelineCreateThenCall(t *testing.T) {
	pre := state.New()
	pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))

	// Deploys a contract whose runtime code returns 0x2a as one word.
	// Runtime: PUSH1 0x2a PUSH1 0 MSTORE PUSH1 32 PUSH1 0 RETURN
	runtime := []byte{0x60, 0x2a, 0x60, 0x00, 0x52, 0x60, 0x20, 0x60, 0x00, 0xf3}
	// Init: copies the runtime code to memory and returns it.
	initCode := append([]byte{
		0x60, byte(len(runtime)), // PUSH1 len
		0x60, 0x0c, // PUSH1 12 (runtime offset in init code)
		0x60, 0x00, // PUSH1 0
		0x39,                     // CODECOPY
		0x60, byte(len(runtime)), // PUSH1 len
		0x60, 0x00, // PUSH1 0
		0xf3, // RETURN
	}, runtime...)

	create := core.Create(addr(1), initCode, nil)
	create.GasLimit = 500_000
	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(
		core.NewExecutionInput(core.DefaultBlockEnv(), create, pre))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("create status = %v", artifact.Output.Status)
	}
	if artifact.Output.CreatedAddress == nil {
		t.Fatalf("created address missing")
	}
	deployed := *artifact.Output.CreatedAddress

	// Second transaction against the reconciled post-state.
	call := core.Call(addr(1), deployed, nil).WithNonce(1)
	call.GasLimit = 100_000
	artifact, err = core.NewExecutor(vm.NewEngine()).Execute(
		core.NewExecutionInput(core.DefaultBlockEnv(), call, artifact.Output.PostState))
	if err != nil {
		t.Fatalf("call: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("call status = %v", artifact.Output.Status)
	}
	ret := artifact.Output.ReturnData
	if len(ret) != 32 || ret[31] != 0x2a {
		t.Fatalf("return data = %x, want word 0x2a", ret)
	}
}

func TestPipelineStoragePreservedAcrossWrite(t *testing.T) {
	pre := state.New()
	pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))
	// PUSH1 0x2a PUSH1 0 SSTORE STOP writes slot 0 only; slot 5 is
	// never touched and must survive into the post-state.
	var slot5, slot5val types.Hash
	slot5[types.HashLength-1] = 5
	slot5val[types.HashLength-1] = 0xee
	pre.SetAccount(addr(2), state.NewContractWithStorage(
		[]byte{0x60, 0x2a, 0x60, 0x00, 0x55, 0x00}, nil,
		map[types.Hash]types.Hash{slot5: slot5val}))

	tx := core.Call(addr(1), addr(2), nil)
	tx.GasLimit = 100_000
	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(
		core.NewExecutionInput(core.DefaultBlockEnv(), tx, pre))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("status = %v", artifact.Output.Status)
	}

	contract := artifact.Output.PostState.Account(addr(2))
	var slot0, want types.Hash
	want[types.HashLength-1] = 0x2a
	if contract.GetStorage(slot0) != want {
		t.Fatalf("written slot = %v, want 0x2a", contract.GetStorage(slot0))
	}
	if contract.GetStorage(slot5) != slot5val {
		t.Fatalf("untouched slot lost: %v", contract.GetStorage(slot5))
	}
}

func TestPipelineStorageClear(t *testing.T) {
	pre := state.New()
	pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))
	// PUSH1 0 PUSH1 0 SSTORE STOP clears slot 0.
	var slot0, slot0val types.Hash
	slot0val[types.HashLength-1] = 7
	pre.SetAccount(addr(2), state.NewContractWithStorage(
		[]byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00}, nil,
		map[types.Hash]types.Hash{slot0: slot0val}))

	tx := core.Call(addr(1), addr(2), nil)
	tx.GasLimit = 100_000
	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(
		core.NewExecutionInput(core.DefaultBlockEnv(), tx, pre))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	contract := artifact.Output.PostState.Account(addr(2))
	if !contract.GetStorage(slot0).IsZero() {
		t.Fatalf("cleared slot survives: %v", contract.GetStorage(slot0))
	}
	if contract.StorageLen() != 0 {
		t.Fatalf("post-state storage not sparse after clear: %d slots", contract.StorageLen())
	}
}

func TestPipelineBuilder(t *testing.T) {
	pre := state.New()
	pre.SetAccount(addr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))

	artifact, err := core.NewInputBuilder().
		WithState(pre).
		WithTx(core.Transfer(addr(1), addr(2), uint256.NewInt(1))).
		Execute(core.NewExecutor(vm.NewEngine()))
	if err != nil {
		t.Fatalf("builder execute: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("status = %v", artifact.Output.Status)
	}
}
