// Package zkvm hosts the proving-runtime boundary: the guest program
// that re-executes a transaction inside a restricted environment, the
// prover that wraps it into a receipt, and the verifier that checks
// receipts without re-running the engine.
package zkvm

import "errors"

// Runtime boundary errors.
var (
	ErrNilRuntime       = errors.New("zkvm: nil runtime")
	ErrNoInput          = errors.New("zkvm: no input available")
	ErrAlreadyCommitted = errors.New("zkvm: journal already committed")
	ErrEmptyJournal     = errors.New("zkvm: empty journal")
)

// Runtime is the channel between a guest program and its host. The
// guest sees exactly two operations: read the opaque input blob, and
// commit the public output (the journal). Everything else is sealed
// off.
type Runtime interface {
	// ReadInput returns the serialized execution input. It may be
	// called more than once and always returns the same bytes.
	ReadInput() ([]byte, error)

	// Commit publishes the journal. A guest commits at most once;
	// a second call is an error.
	Commit(journal []byte) error
}

// BufferRuntime is the host-side in-memory Runtime used by the prover
// and by tests. It hands the guest a fixed input and captures the
// committed journal.
type BufferRuntime struct {
	input     []byte
	journal   []byte
	committed bool
}

// NewBufferRuntime creates a runtime serving the given input bytes.
func NewBufferRuntime(input []byte) *BufferRuntime {
	return &BufferRuntime{input: input}
}

// ReadInput implements Runtime.
func (rt *BufferRuntime) ReadInput() ([]byte, error) {
	if len(rt.input) == 0 {
		return nil, ErrNoInput
	}
	return rt.input, nil
}

// Commit implements Runtime.
func (rt *BufferRuntime) Commit(journal []byte) error {
	if rt.committed {
		return ErrAlreadyCommitted
	}
	if len(journal) == 0 {
		return ErrEmptyJournal
	}
	rt.journal = append([]byte(nil), journal...)
	rt.committed = true
	return nil
}

// Committed reports whether the guest has published a journal.
func (rt *BufferRuntime) Committed() bool { return rt.committed }

// Journal returns the committed journal, or nil if the guest has not
// committed yet.
func (rt *BufferRuntime) Journal() []byte { return rt.journal }
