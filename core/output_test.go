package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
)

func testAddr(b byte) types.Address {
	var a types.Address
	a[types.AddressLength-1] = b
	return a
}

func testHash(b byte) types.Hash {
	var h types.Hash
	h[types.HashLength-1] = b
	return h
}

func TestOutputConstructors(t *testing.T) {
	post := state.New()
	logs := []types.Log{{Address: testAddr(1), Topics: []types.Hash{testHash(1)}, Data: []byte{0x01}}}

	success := NewSuccessOutput([]byte{0xaa}, 21000, 100, logs, post)
	if !success.IsSuccess() || success.GasRefunded != 100 || len(success.Logs) != 1 {
		t.Fatalf("unexpected success output: %+v", success)
	}

	revert := NewRevertOutput([]byte{0x08}, 5000, post)
	if !revert.IsRevert() {
		t.Fatalf("status = %v, want revert", revert.Status)
	}
	if revert.GasRefunded != 0 || len(revert.Logs) != 0 {
		t.Fatalf("revert output carries refund or logs: %+v", revert)
	}
	if !bytes.Equal(revert.ReturnData, []byte{0x08}) {
		t.Fatalf("revert data = %x, want 08", revert.ReturnData)
	}

	halt := NewHaltOutput(30000, post)
	if !halt.IsHalt() {
		t.Fatalf("status = %v, want halt", halt.Status)
	}
	if halt.GasRefunded != 0 || len(halt.Logs) != 0 || len(halt.ReturnData) != 0 {
		t.Fatalf("halt output not empty: %+v", halt)
	}
}

func TestEffectiveGasUsed(t *testing.T) {
	tests := []struct {
		gasUsed, refunded, want types.Gas
	}{
		{100000, 60000, 50000}, // refund capped at half
		{100000, 20000, 80000}, // refund below cap applies in full
		{100000, 50000, 50000}, // refund at exactly the cap
		{21000, 0, 21000},
		{1, 1, 1}, // cap is 1/2 = 0
	}
	post := state.New()
	for _, tt := range tests {
		out := NewSuccessOutput(nil, tt.gasUsed, tt.refunded, nil, post)
		if got := out.EffectiveGasUsed(); got != tt.want {
			t.Errorf("EffectiveGasUsed(%d, %d) = %d, want %d", tt.gasUsed, tt.refunded, got, tt.want)
		}
	}
}

func TestOutputHashDependsOnStatus(t *testing.T) {
	post := state.New()
	a := NewSuccessOutput([]byte{0x01}, 21000, 0, nil, post)
	b := NewRevertOutput([]byte{0x01}, 21000, post)

	ha, err := a.Hash()
	if err != nil {
		t.Fatalf("hash success output: %v", err)
	}
	hb, err := b.Hash()
	if err != nil {
		t.Fatalf("hash revert output: %v", err)
	}
	if ha == hb {
		t.Fatalf("outputs differing only in status hash equal: %v", ha)
	}
}

func TestOutputJSONRoundTrip(t *testing.T) {
	post := state.New()
	post.SetAccount(testAddr(7), state.NewAccount(uint256.NewInt(42)))

	out := NewSuccessOutput([]byte{0xde, 0xad}, 53000, 4800,
		[]types.Log{{Address: testAddr(7), Topics: []types.Hash{testHash(9)}, Data: []byte{0xff}}}, post)
	out.SetCreatedAddress(testAddr(7))

	enc, err := json.Marshal(out)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var dec ExecutionOutput
	if err := json.Unmarshal(enc, &dec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if dec.Status != StatusSuccess || dec.GasUsed != 53000 || dec.GasRefunded != 4800 {
		t.Fatalf("decoded output mismatch: %+v", dec)
	}
	if dec.CreatedAddress == nil || *dec.CreatedAddress != testAddr(7) {
		t.Fatalf("created address lost in round trip")
	}
	if len(dec.Logs) != 1 || dec.Logs[0].Address != testAddr(7) {
		t.Fatalf("logs lost in round trip: %+v", dec.Logs)
	}

	h1, _ := out.Hash()
	h2, _ := dec.Hash()
	if h1 != h2 {
		t.Fatalf("hash changed across JSON round trip: %v != %v", h1, h2)
	}
}

func TestCommitmentVerify(t *testing.T) {
	in, out := testHash(1), testHash(2)
	c := NewCommitment(in, out, testHash(3), testHash(4))

	if err := c.Verify(in, out); err != nil {
		t.Fatalf("verify with correct hashes: %v", err)
	}
	if err := c.Verify(testHash(9), out); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("verify with wrong input hash: %v, want ErrCommitmentMismatch", err)
	}
	if err := c.Verify(in, testHash(9)); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("verify with wrong output hash: %v, want ErrCommitmentMismatch", err)
	}

	tampered := *c
	tampered.Commitment = testHash(5)
	if err := tampered.Verify(in, out); !errors.Is(err, ErrCommitmentMismatch) {
		t.Fatalf("verify tampered binding: %v, want ErrCommitmentMismatch", err)
	}
}

func TestCommitmentBytesRoundTrip(t *testing.T) {
	c := NewCommitment(testHash(1), testHash(2), testHash(3), testHash(4))
	enc, err := c.Bytes()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	dec, err := DecodeCommitment(enc)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !c.Equal(dec) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", dec, c)
	}

	if _, err := DecodeCommitment([]byte{0xff, 0x00}); !errors.Is(err, ErrSerialization) {
		t.Fatalf("decode garbage: %v, want ErrSerialization", err)
	}
}

func TestCommitmentOrderMatters(t *testing.T) {
	a := NewCommitment(testHash(1), testHash(2), testHash(0), testHash(0))
	b := NewCommitment(testHash(2), testHash(1), testHash(0), testHash(0))
	if a.Commitment == b.Commitment {
		t.Fatalf("binding commutes over input/output hashes")
	}
}
