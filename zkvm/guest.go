package zkvm

import (
	"errors"
	"fmt"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// Guest execution errors.
var (
	ErrNilEngine   = errors.New("zkvm: nil engine")
	ErrGuestFailed = errors.New("zkvm: guest execution failed")
)

// guestIdentity names the guest program. It is hashed together with
// the core version into the image id, so any change to the execution
// semantics that bumps the version also changes the id.
const guestIdentity = "shadow-evm/guest/tx-executor"

// ImageID returns the stable identifier of the guest program. Hosts
// and verifiers use it to check that a receipt was produced by the
// guest they expect.
func ImageID() types.Hash {
	return crypto.Keccak256Hash([]byte(guestIdentity), []byte(core.Version))
}

// Guest re-executes a single transaction inside the runtime boundary.
// It is fail-stop: any failure aborts the run with no partial output,
// so a committed journal always describes a complete execution.
type Guest struct {
	executor *core.Executor
}

// NewGuest creates a guest backed by the given execution engine.
func NewGuest(engine core.Engine) (*Guest, error) {
	if engine == nil {
		return nil, ErrNilEngine
	}
	return &Guest{executor: core.NewExecutor(engine)}, nil
}

// Run reads the serialized execution input from the runtime, executes
// it, and commits the canonical encoding of the resulting commitment
// as the journal. The journal is the only data that leaves the guest.
func (g *Guest) Run(rt Runtime) error {
	if rt == nil {
		return ErrNilRuntime
	}

	raw, err := rt.ReadInput()
	if err != nil {
		return fmt.Errorf("%w: read input: %v", ErrGuestFailed, err)
	}
	input, err := core.DecodeInput(raw)
	if err != nil {
		return fmt.Errorf("%w: decode input: %v", ErrGuestFailed, err)
	}

	artifact, err := g.executor.Execute(input)
	if err != nil {
		return fmt.Errorf("%w: execute: %v", ErrGuestFailed, err)
	}

	journal, err := artifact.Commitment.Bytes()
	if err != nil {
		return fmt.Errorf("%w: encode commitment: %v", ErrGuestFailed, err)
	}
	if err := rt.Commit(journal); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrGuestFailed, err)
	}
	return nil
}
