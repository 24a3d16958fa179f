package core

import "errors"

// Error taxonomy for the execution and commitment pipeline. Every
// fallible operation returns a typed error immediately; there is no
// local recovery or retry anywhere in the core. Several kinds are never
// raised by the orchestrator itself and exist for collaborators: a
// persistent store raises ErrDatabase, a verifier raises
// ErrCommitmentMismatch, an engine validating code raises
// ErrInvalidBytecode.
var (
	// ErrAccountNotFound is reserved for state-reader collaborators that
	// treat absence as a failure. The core read contract never does.
	ErrAccountNotFound = errors.New("account not found")

	// ErrStorageNotFound is reserved for state-reader collaborators.
	ErrStorageNotFound = errors.New("storage not found")

	// ErrExecutionReverted reports a revert outcome where an error value
	// is required. The orchestrator models reverts as Output states, not
	// errors.
	ErrExecutionReverted = errors.New("execution reverted")

	// ErrExecutionHalted reports that the engine invocation itself could
	// not be completed. Fatal: the caller must fix the input and resubmit.
	ErrExecutionHalted = errors.New("execution halted")

	// ErrInvalidBytecode is reserved for engines that validate code
	// before running it.
	ErrInvalidBytecode = errors.New("invalid bytecode")

	// ErrSerialization reports a canonical-encoding failure while
	// computing a hash. Fatal.
	ErrSerialization = errors.New("serialization error")

	// ErrCommitmentMismatch is raised by verifiers comparing an expected
	// against a computed commitment.
	ErrCommitmentMismatch = errors.New("commitment mismatch")

	// ErrInvalidTransaction reports transaction parameters an engine
	// refused to execute.
	ErrInvalidTransaction = errors.New("invalid transaction")

	// ErrDatabase is reserved for persistent-store collaborators.
	ErrDatabase = errors.New("database error")
)
