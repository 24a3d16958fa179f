package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/vm"
	"github.com/zacksfF/shadow-evm/zkvm"
)

func TestSampleInputExecutes(t *testing.T) {
	artifact, err := core.NewExecutor(vm.NewEngine()).Execute(sampleInput())
	if err != nil {
		t.Fatalf("execute sample: %v", err)
	}
	if !artifact.Output.Status.IsSuccess() {
		t.Fatalf("sample execution status = %v", artifact.Output.Status)
	}
}

func TestSampleInputJSONRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.json")
	if err := writeJSON(path, sampleInput()); err != nil {
		t.Fatalf("write: %v", err)
	}

	decoded := new(core.ExecutionInput)
	if err := readJSON(path, decoded); err != nil {
		t.Fatalf("read: %v", err)
	}

	want, err := sampleInput().Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	got, err := decoded.Hash()
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if got != want {
		t.Fatalf("round-tripped input hash = %s, want %s", got, want)
	}
}

func TestProveVerifyCommands(t *testing.T) {
	dir := t.TempDir()
	inPath := filepath.Join(dir, "in.json")
	receiptPath := filepath.Join(dir, "receipt.json")

	if err := writeJSON(inPath, sampleInput()); err != nil {
		t.Fatalf("write input: %v", err)
	}

	root := newRootCmd()
	root.SetArgs([]string{"prove", "--input", inPath, "--output", receiptPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("prove: %v", err)
	}

	receipt := new(zkvm.Receipt)
	if err := readJSON(receiptPath, receipt); err != nil {
		t.Fatalf("read receipt: %v", err)
	}
	if _, err := zkvm.NewVerifier().Verify(receipt); err != nil {
		t.Fatalf("receipt does not verify: %v", err)
	}

	var out bytes.Buffer
	root = newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"verify", "--proof", receiptPath})
	if err := root.Execute(); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !bytes.HasPrefix(out.Bytes(), []byte("OK")) {
		t.Fatalf("verify output = %q", out.String())
	}
}

func TestImageIDCommand(t *testing.T) {
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"image-id"})
	if err := root.Execute(); err != nil {
		t.Fatalf("image-id: %v", err)
	}
	if got := out.String(); got != zkvm.ImageID().Hex()+"\n" {
		t.Fatalf("image-id output = %q", got)
	}
}
