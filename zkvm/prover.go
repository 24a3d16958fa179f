package zkvm

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// Prover errors.
var (
	ErrNilInput   = errors.New("zkvm: nil execution input")
	ErrNilReceipt = errors.New("zkvm: nil receipt")
)

// sealDomain separates the seal derivation from every other keccak use
// in the system.
const sealDomain = "shadow-evm/seal/v1"

// Receipt is the prover's output: the image id of the guest that ran,
// the journal it committed (the canonical commitment encoding), and a
// seal binding the two. The seal stands in for a proof; a real proving
// backend would replace computeSeal without touching the receipt shape.
type Receipt struct {
	ImageID types.Hash
	Journal []byte
	Seal    types.Hash
}

// computeSeal derives the deterministic binding of image id and
// journal.
func computeSeal(imageID types.Hash, journal []byte) types.Hash {
	return crypto.Keccak256Hash([]byte(sealDomain), imageID[:], journal)
}

// Commitment decodes the receipt's journal into the execution
// commitment it carries. It does not verify the seal; use a Verifier
// for that.
func (r *Receipt) Commitment() (*core.ExecutionCommitment, error) {
	return core.DecodeCommitment(r.Journal)
}

// EncodeReceipt serializes a receipt to its canonical encoding.
func EncodeReceipt(r *Receipt) ([]byte, error) {
	if r == nil {
		return nil, ErrNilReceipt
	}
	data, err := rlp.EncodeToBytes(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSerialization, err)
	}
	return data, nil
}

type receiptJSON struct {
	ImageID types.Hash    `json:"imageId"`
	Journal hexutil.Bytes `json:"journal"`
	Seal    types.Hash    `json:"seal"`
}

// MarshalJSON implements json.Marshaler.
func (r *Receipt) MarshalJSON() ([]byte, error) {
	return json.Marshal(receiptJSON{ImageID: r.ImageID, Journal: r.Journal, Seal: r.Seal})
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	var dec receiptJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	*r = Receipt{ImageID: dec.ImageID, Journal: dec.Journal, Seal: dec.Seal}
	return nil
}

// DecodeReceipt deserializes a canonically encoded receipt.
func DecodeReceipt(data []byte) (*Receipt, error) {
	var r Receipt
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSerialization, err)
	}
	return &r, nil
}

// Prover runs the guest over a concrete execution input and wraps the
// committed journal into a sealed receipt.
type Prover struct {
	guest *Guest
}

// NewProver creates a prover whose guest is backed by the given engine.
func NewProver(engine core.Engine) (*Prover, error) {
	guest, err := NewGuest(engine)
	if err != nil {
		return nil, err
	}
	return &Prover{guest: guest}, nil
}

// Prove executes the input inside the guest and returns the receipt.
func (p *Prover) Prove(input *core.ExecutionInput) (*Receipt, error) {
	if input == nil {
		return nil, ErrNilInput
	}
	raw, err := core.EncodeInput(input)
	if err != nil {
		return nil, err
	}
	return p.ProveBytes(raw)
}

// ProveBytes is Prove over an already-serialized input, as a host
// would receive it off the wire.
func (p *Prover) ProveBytes(raw []byte) (*Receipt, error) {
	rt := NewBufferRuntime(raw)
	if err := p.guest.Run(rt); err != nil {
		return nil, err
	}

	imageID := ImageID()
	journal := rt.Journal()
	return &Receipt{
		ImageID: imageID,
		Journal: journal,
		Seal:    computeSeal(imageID, journal),
	}, nil
}
