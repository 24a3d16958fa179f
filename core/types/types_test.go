package types

import (
	"encoding/json"
	"testing"
)

func TestHashSetBytesPadding(t *testing.T) {
	h := BytesToHash([]byte{0x01, 0x02})
	if h[31] != 0x02 || h[30] != 0x01 {
		t.Fatalf("expected right-aligned bytes, got %x", h)
	}
	for i := 0; i < 30; i++ {
		if h[i] != 0 {
			t.Fatalf("expected zero padding at %d, got %x", i, h[i])
		}
	}
}

func TestHashSetBytesTruncation(t *testing.T) {
	long := make([]byte, 40)
	long[39] = 0xAB
	h := BytesToHash(long)
	if h[31] != 0xAB {
		t.Fatalf("expected last byte kept, got %x", h)
	}
}

func TestHashHexRoundtrip(t *testing.T) {
	h := HexToHash("0x00000000000000000000000000000000000000000000000000000000000000ff")
	if h[31] != 0xff {
		t.Fatalf("hex decode failed: %x", h)
	}
	if h.Hex() != "0x00000000000000000000000000000000000000000000000000000000000000ff" {
		t.Fatalf("unexpected hex: %s", h.Hex())
	}
}

func TestHashIsZero(t *testing.T) {
	var h Hash
	if !h.IsZero() {
		t.Fatal("zero hash should report IsZero")
	}
	h[0] = 1
	if h.IsZero() {
		t.Fatal("non-zero hash should not report IsZero")
	}
}

func TestAddressTextRoundtrip(t *testing.T) {
	a := HexToAddress("0x0102030405060708090a0b0c0d0e0f1011121314")
	text, err := a.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Address
	if err := back.UnmarshalText(text); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != a {
		t.Fatalf("roundtrip mismatch: %s != %s", back, a)
	}
}

func TestAddressUnmarshalRejectsBadLength(t *testing.T) {
	var a Address
	if err := a.UnmarshalText([]byte("0x0102")); err == nil {
		t.Fatal("expected error for short address")
	}
}

func TestLogJSON(t *testing.T) {
	log := NewLog(
		BytesToAddress([]byte{0x01}),
		[]Hash{BytesToHash([]byte{0x02})},
		[]byte{0xde, 0xad},
	)
	data, err := json.Marshal(log)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back Log
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back.Address != log.Address || len(back.Topics) != 1 || back.Topics[0] != log.Topics[0] {
		t.Fatalf("roundtrip mismatch: %+v", back)
	}
	if string(back.Data) != string(log.Data) {
		t.Fatalf("data mismatch: %x", back.Data)
	}
}

func TestLogCopyIsDeep(t *testing.T) {
	log := NewLog(Address{}, []Hash{{}}, []byte{1, 2, 3})
	cp := log.Copy()
	cp.Data[0] = 9
	cp.Topics[0][0] = 9
	if log.Data[0] == 9 || log.Topics[0][0] == 9 {
		t.Fatal("Copy shares backing arrays")
	}
}

func TestLogEventSignature(t *testing.T) {
	sig := BytesToHash([]byte{0xAA})
	log := NewLog(Address{}, []Hash{sig}, nil)
	got, ok := log.EventSignature()
	if !ok || got != sig {
		t.Fatalf("expected signature %s, got %s (ok=%v)", sig, got, ok)
	}
	empty := NewLog(Address{}, nil, nil)
	if _, ok := empty.EventSignature(); ok {
		t.Fatal("empty topics should have no signature")
	}
}
