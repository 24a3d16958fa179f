package core

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// stubEngine returns a canned result (or error) regardless of input.
type stubEngine struct {
	result *EngineResult
	err    error
	// lastCfg records the config the executor passed in.
	lastCfg *EngineConfig
}

func (s *stubEngine) Run(cfg *EngineConfig, pre state.Reader) (*EngineResult, error) {
	s.lastCfg = cfg
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func transferInput(t *testing.T) *ExecutionInput {
	t.Helper()
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewAccount(uint256.NewInt(0)))
	tx := Transfer(testAddr(1), testAddr(2), uint256.NewInt(500))
	return NewInputBuilder().WithTx(tx).WithState(pre).Build()
}

func TestExecuteSuccess(t *testing.T) {
	input := transferInput(t)

	eng := &stubEngine{result: &EngineResult{
		Status:  StatusSuccess,
		GasUsed: 21000,
		State: map[types.Address]AccountDelta{
			testAddr(1): {Balance: uint256.NewInt(999_500), Nonce: 1},
			testAddr(2): {Balance: uint256.NewInt(500)},
		},
	}}
	art, err := NewExecutor(eng).Execute(input)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}

	if eng.lastCfg.Spec != SpecShanghai {
		t.Fatalf("engine spec = %v, want shanghai", eng.lastCfg.Spec)
	}
	if !art.Output.IsSuccess() || art.Output.GasUsed != 21000 {
		t.Fatalf("unexpected output: %+v", art.Output)
	}

	post := art.Output.PostState
	sender := post.Account(testAddr(1))
	if sender == nil || sender.Balance.Uint64() != 999_500 || sender.Nonce != 1 {
		t.Fatalf("sender not reconciled: %+v", sender)
	}
	recipient := post.Account(testAddr(2))
	if recipient == nil || recipient.Balance.Uint64() != 500 {
		t.Fatalf("recipient not reconciled: %+v", recipient)
	}

	// The pre-state is untouched.
	if input.PreState.Account(testAddr(1)).Balance.Uint64() != 1_000_000 {
		t.Fatalf("pre-state mutated by execution")
	}

	// The commitment binds the actual input and output hashes.
	inHash, _ := input.Hash()
	outHash, _ := art.Output.Hash()
	if err := art.Commitment.Verify(inHash, outHash); err != nil {
		t.Fatalf("commitment does not verify: %v", err)
	}
	if art.Commitment.PreStateRoot != input.PreStateRoot() {
		t.Fatalf("commitment pre-state root mismatch")
	}
	if art.Commitment.PostStateRoot != post.Root() {
		t.Fatalf("commitment post-state root mismatch")
	}
}

func TestExecuteDeterministic(t *testing.T) {
	eng := &stubEngine{result: &EngineResult{
		Status:  StatusSuccess,
		GasUsed: 21000,
		State: map[types.Address]AccountDelta{
			testAddr(1): {Balance: uint256.NewInt(999_500), Nonce: 1},
			testAddr(2): {Balance: uint256.NewInt(500)},
		},
	}}
	exec := NewExecutor(eng)

	a, err := exec.Execute(transferInput(t))
	if err != nil {
		t.Fatalf("first execute: %v", err)
	}
	b, err := exec.Execute(transferInput(t))
	if err != nil {
		t.Fatalf("second execute: %v", err)
	}
	if !a.Commitment.Equal(b.Commitment) {
		t.Fatalf("identical inputs produced different commitments:\n%+v\n%+v", a.Commitment, b.Commitment)
	}
}

func TestExecuteEngineFailure(t *testing.T) {
	eng := &stubEngine{err: errors.New("engine exploded")}
	_, err := NewExecutor(eng).Execute(transferInput(t))
	if !errors.Is(err, ErrExecutionHalted) {
		t.Fatalf("engine failure surfaced as %v, want ErrExecutionHalted", err)
	}
}

func TestExecuteRevertClearsEffects(t *testing.T) {
	eng := &stubEngine{result: &EngineResult{
		Status:     StatusRevert,
		ReturnData: []byte{0x08, 0xc3, 0x79, 0xa0},
		GasUsed:    30000,
		// A buggy engine might still report logs and refunds; the
		// revert constructor must drop them.
		GasRefunded: 999,
		Logs:        []types.Log{{Address: testAddr(1)}},
	}}
	art, err := NewExecutor(eng).Execute(transferInput(t))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	out := art.Output
	if !out.IsRevert() || out.GasRefunded != 0 || len(out.Logs) != 0 {
		t.Fatalf("revert output carries effects: %+v", out)
	}
}

func TestReconcileCodePreservation(t *testing.T) {
	code := []byte{0x60, 0x00, 0x60, 0x00, 0xf3}
	post := state.New()
	post.SetAccount(testAddr(3), state.NewContract(code, uint256.NewInt(100)))

	// Delta without code: the contract's code survives the rewrite.
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(3): {Balance: uint256.NewInt(50), Nonce: 2},
	})
	acct := post.Account(testAddr(3))
	if acct == nil || !acct.IsContract() {
		t.Fatalf("contract code lost on codeless delta: %+v", acct)
	}
	if acct.Balance.Uint64() != 50 || acct.Nonce != 2 {
		t.Fatalf("delta fields not applied: %+v", acct)
	}

	// Delta explicitly carrying the empty code hash strips the code.
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(3): {Balance: uint256.NewInt(50), Nonce: 2, CodeHash: crypto.EmptyCodeHash},
	})
	if post.Account(testAddr(3)).IsContract() {
		t.Fatalf("explicit empty code hash did not strip code")
	}

	// Delta with new code replaces it.
	newCode := []byte{0x60, 0x01, 0x60, 0x00, 0xf3}
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(3): {Balance: uint256.NewInt(50), Nonce: 2, Code: newCode, CodeHash: crypto.Keccak256Hash(newCode)},
	})
	acct = post.Account(testAddr(3))
	if acct.CodeHash != crypto.Keccak256Hash(newCode) {
		t.Fatalf("delta code not applied: %+v", acct)
	}
}

func TestReconcilePreservesUnreportedSlots(t *testing.T) {
	post := state.New()
	acct := state.NewContractWithStorage([]byte{0x60, 0x00, 0xf3}, uint256.NewInt(100),
		map[types.Hash]types.Hash{testHash(1): testHash(7)})
	post.SetAccount(testAddr(4), acct)

	// The delta mentions slot 2 only: slot 1 must survive untouched.
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(4): {
			Balance: uint256.NewInt(60),
			Nonce:   2,
			Storage: map[types.Hash]types.Hash{testHash(2): testHash(8)},
		},
	})
	got := post.Account(testAddr(4))
	if got.Balance.Uint64() != 60 || got.Nonce != 2 {
		t.Fatalf("balance/nonce not updated in place: %+v", got)
	}
	if got.GetStorage(testHash(1)) != testHash(7) {
		t.Fatalf("unreported slot lost: %v", got.GetStorage(testHash(1)))
	}
	if got.GetStorage(testHash(2)) != testHash(8) {
		t.Fatalf("reported slot not applied: %v", got.GetStorage(testHash(2)))
	}
	if got.StorageLen() != 2 {
		t.Fatalf("storage len = %d, want 2", got.StorageLen())
	}
}

func TestReconcileClearsReportedSlot(t *testing.T) {
	post := state.New()
	post.SetAccount(testAddr(4), state.NewContractWithStorage(nil, uint256.NewInt(1),
		map[types.Hash]types.Hash{
			testHash(1): testHash(7),
			testHash(2): testHash(8),
		}))

	// A zero-valued pair clears exactly that slot.
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(4): {
			Balance: uint256.NewInt(1),
			Storage: map[types.Hash]types.Hash{testHash(1): {}},
		},
	})
	got := post.Account(testAddr(4))
	if !got.GetStorage(testHash(1)).IsZero() {
		t.Fatalf("reported zero pair did not clear the slot")
	}
	if got.GetStorage(testHash(2)) != testHash(8) {
		t.Fatalf("unreported slot lost: %v", got.GetStorage(testHash(2)))
	}
}

func TestReconcileNeverDeletesAccounts(t *testing.T) {
	post := state.New()
	empty := state.NewAccount(nil)
	empty.SetStorage(testHash(1), testHash(7))
	post.SetAccount(testAddr(4), empty)

	// A touched account that stayed zero-balance/zero-nonce/codeless is
	// an ordinary delta; the account and its storage persist.
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(4): {Balance: uint256.NewInt(0)},
	})
	got := post.Account(testAddr(4))
	if got == nil {
		t.Fatalf("touched empty account removed from post-state")
	}
	if got.GetStorage(testHash(1)) != testHash(7) {
		t.Fatalf("empty account storage lost: %v", got.GetStorage(testHash(1)))
	}
}

func TestReconcileStorage(t *testing.T) {
	post := state.New()
	reconcile(post, map[types.Address]AccountDelta{
		testAddr(5): {
			Balance: uint256.NewInt(0),
			Storage: map[types.Hash]types.Hash{
				testHash(1): testHash(9),
				testHash(2): {}, // zero write must not materialize
			},
		},
	})
	acct := post.Account(testAddr(5))
	if acct.GetStorage(testHash(1)) != testHash(9) {
		t.Fatalf("storage slot not applied")
	}
	if acct.StorageLen() != 1 {
		t.Fatalf("zero storage write materialized, len = %d", acct.StorageLen())
	}
}

func TestSimulateLeavesStateAlone(t *testing.T) {
	input := transferInput(t)
	eng := &stubEngine{result: &EngineResult{
		Status:  StatusSuccess,
		GasUsed: 21000,
		State: map[types.Address]AccountDelta{
			testAddr(1): {Balance: uint256.NewInt(0), Nonce: 1},
		},
	}}
	out, err := NewExecutor(eng).Simulate(input)
	if err != nil {
		t.Fatalf("simulate: %v", err)
	}
	if out.PostState != input.PreState {
		t.Fatalf("simulate materialized a post-state")
	}
	if input.PreState.Account(testAddr(1)).Balance.Uint64() != 1_000_000 {
		t.Fatalf("simulate mutated the pre-state")
	}
}

func TestBuilderDefaults(t *testing.T) {
	input := NewInputBuilder().Build()
	if input.PreState == nil || input.PreState.Len() != 0 {
		t.Fatalf("builder default pre-state not empty")
	}
	if input.Block.Number != DefaultBlockEnv().Number {
		t.Fatalf("builder default block env not applied")
	}
	if _, err := input.Hash(); err != nil {
		t.Fatalf("default input does not hash: %v", err)
	}
}
