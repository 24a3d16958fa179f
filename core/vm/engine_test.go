package vm

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

func testConfig(tx core.TxEnv) *core.EngineConfig {
	return &core.EngineConfig{
		Spec:    core.SpecShanghai,
		ChainID: 1,
		Block: core.BlockEnv{
			Number:   1,
			Time:     1700000000,
			GasLimit: 30_000_000,
			BaseFee:  new(uint256.Int),
			ChainID:  1,
		},
		Tx: tx,
	}
}

func TestEngineTransfer(t *testing.T) {
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(100_000)))

	tx := core.Transfer(testAddr(1), testAddr(2), uint256.NewInt(500))
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}
	if res.GasUsed != TxGas {
		t.Fatalf("gas used = %d, want %d", res.GasUsed, TxGas)
	}

	sender := res.State[testAddr(1)]
	if sender.Nonce != 1 {
		t.Fatalf("sender nonce = %d, want 1", sender.Nonce)
	}
	wantBalance := uint64(100_000 - 21000 - 500)
	if sender.Balance.Uint64() != wantBalance {
		t.Fatalf("sender balance = %v, want %d", sender.Balance, wantBalance)
	}
	recipient := res.State[testAddr(2)]
	if recipient.Balance == nil || recipient.Balance.Uint64() != 500 {
		t.Fatalf("recipient balance wrong: %+v", recipient)
	}
}

func TestEngineStorageWrite(t *testing.T) {
	// PUSH1 0x2a PUSH1 0x00 SSTORE STOP
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x55, 0x00}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContract(code, nil))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 100_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}

	// Intrinsic 21000 + 2*PUSH1 (3) + cold SSTORE set (22100).
	want := TxGas + 3 + 3 + ColdSloadCost + GasSstoreSet
	if res.GasUsed != want {
		t.Fatalf("gas used = %d, want %d", res.GasUsed, want)
	}

	delta := res.State[testAddr(2)]
	if got := delta.Storage[types.Hash{}]; got != testHash(0x2a) {
		t.Fatalf("slot 0 = %v, want 0x2a", got)
	}
}

func TestEngineStorageClearRefund(t *testing.T) {
	// PUSH1 0x00 PUSH1 0x00 SSTORE STOP clears slot 0.
	code := []byte{0x60, 0x00, 0x60, 0x00, 0x55, 0x00}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContractWithStorage(code, nil,
		map[types.Hash]types.Hash{{}: testHash(1)}))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 100_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}
	if res.GasRefunded != SstoreClearsRefund {
		t.Fatalf("refund = %d, want %d", res.GasRefunded, SstoreClearsRefund)
	}

	// Cold clean reset: 2100 + 2900 = the legacy 5000.
	want := TxGas + 3 + 3 + ColdSloadCost + GasSstoreReset
	if res.GasUsed != want {
		t.Fatalf("gas used = %d, want %d", res.GasUsed, want)
	}

	// The clear is reported as an explicit zero-valued pair.
	delta := res.State[testAddr(2)]
	val, ok := delta.Storage[types.Hash{}]
	if !ok {
		t.Fatalf("cleared slot missing from delta: %v", delta.Storage)
	}
	if !val.IsZero() {
		t.Fatalf("cleared slot = %v, want zero", val)
	}
}

func TestEngineReturnValue(t *testing.T) {
	// Computes 3+4 and returns it as a 32-byte word.
	code := []byte{
		0x60, 0x03, // PUSH1 3
		0x60, 0x04, // PUSH1 4
		0x01,       // ADD
		0x60, 0x00, // PUSH1 0
		0x52,       // MSTORE
		0x60, 0x20, // PUSH1 32
		0x60, 0x00, // PUSH1 0
		0xf3, // RETURN
	}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContract(code, nil))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 100_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}
	if len(res.ReturnData) != 32 || res.ReturnData[31] != 7 {
		t.Fatalf("return data = %x, want 32-byte word ending in 7", res.ReturnData)
	}
}

func TestEngineRevertUnwindsState(t *testing.T) {
	// Writes storage, then reverts.
	code := []byte{
		0x60, 0x2a, 0x60, 0x00, 0x55, // SSTORE(0, 42)
		0x60, 0x00, 0x60, 0x00, 0xfd, // REVERT(0, 0)
	}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContract(code, nil))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 100_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusRevert {
		t.Fatalf("status = %v, want revert", res.Status)
	}
	if _, touched := res.State[testAddr(2)]; touched {
		t.Fatalf("reverted storage write still in deltas")
	}
	// Gas accounting survives the revert: the sender still paid.
	sender := res.State[testAddr(1)]
	if sender.Balance.Uint64() >= 1_000_000 {
		t.Fatalf("sender balance not charged on revert: %v", sender.Balance)
	}
	if sender.Nonce != 1 {
		t.Fatalf("sender nonce not bumped on revert")
	}
}

func TestEngineOutOfGasHalts(t *testing.T) {
	code := []byte{0x60, 0x2a, 0x60, 0x00, 0x55, 0x00}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContract(code, nil))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 22_000 // enough for intrinsic, not for the SSTORE
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusHalt {
		t.Fatalf("status = %v, want halt", res.Status)
	}
	if res.GasUsed != 22_000 {
		t.Fatalf("halt must consume all gas, used %d", res.GasUsed)
	}
	if !strings.Contains(res.HaltReason, "out of gas") {
		t.Fatalf("halt reason = %q", res.HaltReason)
	}
}

func TestEngineCreate(t *testing.T) {
	// Init code that deploys the single byte 0x42.
	initCode := []byte{
		0x60, 0x42, // PUSH1 0x42
		0x60, 0x00, // PUSH1 0
		0x53,       // MSTORE8
		0x60, 0x01, // PUSH1 1
		0x60, 0x00, // PUSH1 0
		0xf3, // RETURN
	}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(10_000_000)))

	tx := core.Create(testAddr(1), initCode, nil)
	tx.GasLimit = 200_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}
	if res.CreatedAddress == nil {
		t.Fatalf("created address missing")
	}
	if want := CreateAddress(testAddr(1), 0); *res.CreatedAddress != want {
		t.Fatalf("created address = %v, want %v", res.CreatedAddress, want)
	}

	created := res.State[*res.CreatedAddress]
	if len(created.Code) != 1 || created.Code[0] != 0x42 {
		t.Fatalf("deployed code = %x, want 42", created.Code)
	}
	if created.Nonce != 1 {
		t.Fatalf("contract nonce = %d, want 1", created.Nonce)
	}
	sender := res.State[testAddr(1)]
	if sender.Nonce != 1 {
		t.Fatalf("sender nonce = %d, want 1", sender.Nonce)
	}
}

func TestEngineLogs(t *testing.T) {
	// LOG1 with topic 0x2a over empty data.
	code := []byte{
		0x60, 0x2a, // PUSH1 0x2a (topic)
		0x60, 0x00, // PUSH1 0 (size)
		0x60, 0x00, // PUSH1 0 (offset)
		0xa1, // LOG1
		0x00, // STOP
	}
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))
	pre.SetAccount(testAddr(2), state.NewContract(code, nil))

	tx := core.Call(testAddr(1), testAddr(2), nil)
	tx.GasLimit = 100_000
	tx.GasPrice = uint256.NewInt(1)

	res, err := NewEngine().Run(testConfig(tx), pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.Status != core.StatusSuccess {
		t.Fatalf("status = %v (%s), want success", res.Status, res.HaltReason)
	}
	if len(res.Logs) != 1 {
		t.Fatalf("log count = %d, want 1", len(res.Logs))
	}
	log := res.Logs[0]
	if log.Address != testAddr(2) || len(log.Topics) != 1 || log.Topics[0] != testHash(0x2a) {
		t.Fatalf("unexpected log: %+v", log)
	}
}

func TestEngineRejectsBadNonce(t *testing.T) {
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(1_000_000)))

	tx := core.Transfer(testAddr(1), testAddr(2), uint256.NewInt(1)).WithNonce(5)
	tx.GasPrice = uint256.NewInt(1)

	if _, err := NewEngine().Run(testConfig(tx), pre); !errors.Is(err, core.ErrInvalidTransaction) {
		t.Fatalf("nonce mismatch: %v", err)
	}
}

func TestEngineRejectsUnpayableGas(t *testing.T) {
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(100)))

	tx := core.Transfer(testAddr(1), testAddr(2), uint256.NewInt(1))
	tx.GasPrice = uint256.NewInt(1)

	if _, err := NewEngine().Run(testConfig(tx), pre); !errors.Is(err, core.ErrInvalidTransaction) {
		t.Fatalf("unpayable gas: %v", err)
	}
}

func TestEngineCoinbaseTip(t *testing.T) {
	pre := state.New()
	pre.SetAccount(testAddr(1), state.NewAccount(uint256.NewInt(10_000_000)))

	cfg := testConfig(core.Transfer(testAddr(1), testAddr(2), uint256.NewInt(1)))
	cfg.Block.BaseFee = uint256.NewInt(1)
	cfg.Block.Coinbase = testAddr(0xcb)
	cfg.Tx.GasPrice = uint256.NewInt(3) // tip of 2 per gas

	res, err := NewEngine().Run(cfg, pre)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	coinbase := res.State[testAddr(0xcb)]
	if want := uint64(2 * TxGas); coinbase.Balance == nil || coinbase.Balance.Uint64() != want {
		t.Fatalf("coinbase balance = %+v, want %d", coinbase, want)
	}
}

func TestCreate2AddressVector(t *testing.T) {
	// EIP-1014 example: zero address, zero salt, init code 0x00.
	var caller types.Address
	var salt types.Hash
	got := Create2Address(caller, salt, crypto.Keccak256([]byte{0x00}))

	raw, err := hex.DecodeString("4d1a2e2bb4f88f0250f26ffff098b0b30b26bf38")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	var want types.Address
	copy(want[:], raw)
	if got != want {
		t.Fatalf("create2 address = %v, want %v", got, want)
	}
}
