package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// ExecutionCommitment binds one execution's input to its output. The
// binding commitment is keccak over the concatenation of the input and
// output hashes, so any party holding the same input and output can
// recompute and check it without the full state.
type ExecutionCommitment struct {
	InputHash     types.Hash
	OutputHash    types.Hash
	PreStateRoot  types.Hash
	PostStateRoot types.Hash
	Commitment    types.Hash
}

// NewCommitment derives a commitment from already-computed hashes.
func NewCommitment(inputHash, outputHash, preRoot, postRoot types.Hash) *ExecutionCommitment {
	return &ExecutionCommitment{
		InputHash:     inputHash,
		OutputHash:    outputHash,
		PreStateRoot:  preRoot,
		PostStateRoot: postRoot,
		Commitment:    crypto.Bind(inputHash, outputHash),
	}
}

// CommitmentFromExecution hashes the given input and output and builds
// the commitment binding them.
func CommitmentFromExecution(input *ExecutionInput, output *ExecutionOutput) (*ExecutionCommitment, error) {
	inHash, err := input.Hash()
	if err != nil {
		return nil, err
	}
	outHash, err := output.Hash()
	if err != nil {
		return nil, err
	}
	return NewCommitment(inHash, outHash, input.PreStateRoot(), output.PostStateRoot()), nil
}

// Verify checks the commitment against independently supplied input and
// output hashes. It returns ErrCommitmentMismatch when either hash does
// not match or the binding does not recompute.
func (c *ExecutionCommitment) Verify(inputHash, outputHash types.Hash) error {
	if c.InputHash != inputHash {
		return fmt.Errorf("%w: input hash", ErrCommitmentMismatch)
	}
	if c.OutputHash != outputHash {
		return fmt.Errorf("%w: output hash", ErrCommitmentMismatch)
	}
	if c.Commitment != crypto.Bind(inputHash, outputHash) {
		return fmt.Errorf("%w: binding", ErrCommitmentMismatch)
	}
	return nil
}

// Bytes returns the canonical encoding of the commitment, suitable for
// journaling into a receipt.
func (c *ExecutionCommitment) Bytes() ([]byte, error) {
	enc, err := rlp.EncodeToBytes(c)
	if err != nil {
		return nil, fmt.Errorf("%w: commitment: %v", ErrSerialization, err)
	}
	return enc, nil
}

// DecodeCommitment decodes a commitment from its canonical encoding.
func DecodeCommitment(data []byte) (*ExecutionCommitment, error) {
	var c ExecutionCommitment
	if err := rlp.DecodeBytes(data, &c); err != nil {
		return nil, fmt.Errorf("%w: commitment: %v", ErrSerialization, err)
	}
	return &c, nil
}

// Equal reports whether two commitments are field-for-field identical.
func (c *ExecutionCommitment) Equal(other *ExecutionCommitment) bool {
	if c == nil || other == nil {
		return c == other
	}
	return c.InputHash == other.InputHash &&
		c.OutputHash == other.OutputHash &&
		c.PreStateRoot == other.PreStateRoot &&
		c.PostStateRoot == other.PostStateRoot &&
		c.Commitment == other.Commitment
}

// EncodeJSON returns the interchange encoding of the commitment.
func (c *ExecutionCommitment) EncodeJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	if err := enc.Encode(c); err != nil {
		return nil, fmt.Errorf("%w: commitment: %v", ErrSerialization, err)
	}
	return buf.Bytes(), nil
}

type commitmentJSON struct {
	InputHash     types.Hash `json:"inputHash"`
	OutputHash    types.Hash `json:"outputHash"`
	PreStateRoot  types.Hash `json:"preStateRoot"`
	PostStateRoot types.Hash `json:"postStateRoot"`
	Commitment    types.Hash `json:"commitment"`
}

// MarshalJSON implements json.Marshaler.
func (c *ExecutionCommitment) MarshalJSON() ([]byte, error) {
	return json.Marshal(commitmentJSON(*c))
}

// UnmarshalJSON implements json.Unmarshaler.
func (c *ExecutionCommitment) UnmarshalJSON(data []byte) error {
	var dec commitmentJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	*c = ExecutionCommitment(dec)
	return nil
}
