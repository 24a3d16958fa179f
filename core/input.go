package core

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// ExecutionInput is the complete, closed description of a single
// execution request: block environment, transaction environment, and the
// pre-execution state. It is immutable once constructed; its hash is a
// pure function of its canonical byte encoding. Constructing an input
// transfers ownership of the pre-state to it.
type ExecutionInput struct {
	Block    BlockEnv
	Tx       TxEnv
	PreState *state.StateDB
}

// NewExecutionInput builds an execution input. A nil preState is
// replaced by an empty store.
func NewExecutionInput(block BlockEnv, tx TxEnv, preState *state.StateDB) *ExecutionInput {
	if preState == nil {
		preState = state.New()
	}
	return &ExecutionInput{Block: block, Tx: tx, PreState: preState}
}

// Hash computes the deterministic hash of the input over its canonical
// encoding. It binds every block field, every transaction field, and the
// full pre-state (including recorded block hashes).
func (in *ExecutionInput) Hash() (types.Hash, error) {
	h, err := crypto.HashValue(in)
	if err != nil {
		return types.Hash{}, fmt.Errorf("%w: input: %v", ErrSerialization, err)
	}
	return h, nil
}

// PreStateRoot returns the pre-state's store root.
func (in *ExecutionInput) PreStateRoot() types.Hash {
	return in.PreState.Root()
}

// Caller returns the transaction caller.
func (in *ExecutionInput) Caller() types.Address { return in.Tx.Caller }

// To returns the call target, or nil for contract creation.
func (in *ExecutionInput) To() *types.Address { return in.Tx.To }

// IsCreate reports whether the input describes a contract creation.
func (in *ExecutionInput) IsCreate() bool { return in.Tx.IsCreate() }

// EncodeInput serializes the input with its canonical encoding. This is
// the wire format of the proving runtime's input channel.
func EncodeInput(in *ExecutionInput) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(in)
	if err != nil {
		return nil, fmt.Errorf("%w: input: %v", ErrSerialization, err)
	}
	return enc, nil
}

// DecodeInput deserializes an input from its canonical encoding.
func DecodeInput(data []byte) (*ExecutionInput, error) {
	in := new(ExecutionInput)
	if err := rlp.DecodeBytes(data, in); err != nil {
		return nil, fmt.Errorf("%w: input: %v", ErrSerialization, err)
	}
	if in.PreState == nil {
		in.PreState = state.New()
	}
	return in, nil
}

type inputJSON struct {
	Block    BlockEnv       `json:"block"`
	Tx       TxEnv          `json:"tx"`
	PreState *state.StateDB `json:"preState"`
}

// MarshalJSON implements json.Marshaler (interchange encoding only;
// hashes are computed over the canonical encoding, never this one).
func (in *ExecutionInput) MarshalJSON() ([]byte, error) {
	return json.Marshal(inputJSON{Block: in.Block, Tx: in.Tx, PreState: in.PreState})
}

// UnmarshalJSON implements json.Unmarshaler.
func (in *ExecutionInput) UnmarshalJSON(data []byte) error {
	var dec inputJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.PreState == nil {
		dec.PreState = state.New()
	}
	in.Block = dec.Block
	in.Tx = dec.Tx
	in.PreState = dec.PreState
	return nil
}
