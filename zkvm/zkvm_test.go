package zkvm

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/core/vm"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[types.AddressLength-1] = b
	return a
}

func transferInput() *core.ExecutionInput {
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))
	tx := core.Transfer(testAddr(1), testAddr(2), uint256.NewInt(500))
	return core.NewExecutionInput(core.DefaultBlockEnv(), tx, pre)
}

func TestProveVerifyRoundTrip(t *testing.T) {
	prover, err := NewProver(vm.NewEngine())
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	input := transferInput()

	receipt, err := prover.Prove(input)
	if err != nil {
		t.Fatalf("prove: %v", err)
	}
	if receipt.ImageID != ImageID() {
		t.Fatalf("image id = %s, want %s", receipt.ImageID, ImageID())
	}

	commitment, err := NewVerifier().Verify(receipt)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}

	// The verified commitment must be the one direct execution yields.
	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(input)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !commitment.Equal(artifact.Commitment) {
		t.Fatalf("receipt commitment diverges from direct execution")
	}

	if _, err := NewVerifier().VerifyAgainst(receipt, artifact.Commitment.Commitment); err != nil {
		t.Fatalf("verify against: %v", err)
	}
}

func TestVerifyRejectsTamperedJournal(t *testing.T) {
	prover, err := NewProver(vm.NewEngine())
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	receipt, err := prover.Prove(transferInput())
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	receipt.Journal[0] ^= 0xff
	if _, err := NewVerifier().Verify(receipt); !errors.Is(err, ErrBadSeal) {
		t.Fatalf("tampered journal accepted: %v", err)
	}
}

func TestVerifyRejectsForeignImage(t *testing.T) {
	prover, err := NewProver(vm.NewEngine())
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	receipt, err := prover.Prove(transferInput())
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	receipt.ImageID[0] ^= 0xff
	if _, err := NewVerifier().Verify(receipt); !errors.Is(err, ErrUnknownImage) {
		t.Fatalf("foreign image accepted: %v", err)
	}
}

func TestVerifyAgainstMismatch(t *testing.T) {
	prover, err := NewProver(vm.NewEngine())
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	receipt, err := prover.Prove(transferInput())
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	var wrong types.Hash
	wrong[0] = 0xaa
	if _, err := NewVerifier().VerifyAgainst(receipt, wrong); !errors.Is(err, core.ErrCommitmentMismatch) {
		t.Fatalf("mismatched commitment accepted: %v", err)
	}
}

func TestReceiptEncodeDecode(t *testing.T) {
	prover, err := NewProver(vm.NewEngine())
	if err != nil {
		t.Fatalf("new prover: %v", err)
	}
	receipt, err := prover.Prove(transferInput())
	if err != nil {
		t.Fatalf("prove: %v", err)
	}

	data, err := EncodeReceipt(receipt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeReceipt(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, err := NewVerifier().Verify(decoded); err != nil {
		t.Fatalf("decoded receipt does not verify: %v", err)
	}
}

func TestGuestFailStop(t *testing.T) {
	guest, err := NewGuest(vm.NewEngine())
	if err != nil {
		t.Fatalf("new guest: %v", err)
	}

	rt := NewBufferRuntime([]byte{0xde, 0xad})
	if err := guest.Run(rt); !errors.Is(err, ErrGuestFailed) {
		t.Fatalf("garbage input: %v", err)
	}
	if rt.Committed() {
		t.Fatalf("failed guest committed a journal")
	}

	// Invalid transaction (nonce mismatch) also aborts with no output.
	input := transferInput()
	input.Tx = input.Tx.WithNonce(9)
	raw, err := core.EncodeInput(input)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	rt = NewBufferRuntime(raw)
	if err := guest.Run(rt); !errors.Is(err, ErrGuestFailed) {
		t.Fatalf("invalid tx: %v", err)
	}
	if rt.Committed() {
		t.Fatalf("failed guest committed a journal")
	}
}

func TestBufferRuntimeCommitOnce(t *testing.T) {
	rt := NewBufferRuntime([]byte{0x01})
	if err := rt.Commit([]byte{0x02}); err != nil {
		t.Fatalf("first commit: %v", err)
	}
	if err := rt.Commit([]byte{0x03}); !errors.Is(err, ErrAlreadyCommitted) {
		t.Fatalf("second commit: %v", err)
	}
	if got := rt.Journal(); len(got) != 1 || got[0] != 0x02 {
		t.Fatalf("journal = %x", got)
	}
}
