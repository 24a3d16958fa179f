package zkvm

import (
	"errors"
	"fmt"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/types"
)

// Verifier errors.
var (
	ErrUnknownImage = errors.New("zkvm: receipt from unknown guest image")
	ErrBadSeal      = errors.New("zkvm: seal does not bind journal")
)

// Verifier checks receipts without re-running the guest. It accepts
// only receipts produced by the guest image it was built for.
type Verifier struct {
	imageID types.Hash
}

// NewVerifier creates a verifier pinned to the current guest image.
func NewVerifier() *Verifier {
	return &Verifier{imageID: ImageID()}
}

// Verify checks the receipt's image id and seal, then decodes the
// journal into the execution commitment it carries.
func (v *Verifier) Verify(r *Receipt) (*core.ExecutionCommitment, error) {
	if r == nil {
		return nil, ErrNilReceipt
	}
	if r.ImageID != v.imageID {
		return nil, fmt.Errorf("%w: got %s, want %s", ErrUnknownImage, r.ImageID, v.imageID)
	}
	if computeSeal(r.ImageID, r.Journal) != r.Seal {
		return nil, ErrBadSeal
	}
	return core.DecodeCommitment(r.Journal)
}

// VerifyAgainst verifies the receipt and additionally checks that the
// commitment it carries matches the expected one.
func (v *Verifier) VerifyAgainst(r *Receipt, expected types.Hash) (*core.ExecutionCommitment, error) {
	commitment, err := v.Verify(r)
	if err != nil {
		return nil, err
	}
	if commitment.Commitment != expected {
		return nil, fmt.Errorf("%w: receipt carries %s, want %s",
			core.ErrCommitmentMismatch, commitment.Commitment, expected)
	}
	return commitment, nil
}
