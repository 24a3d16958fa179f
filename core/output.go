package core

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/crypto"
)

// ExecutionStatus is the terminal state of one execution. An output is
// constructed once in a single terminal state and never transitions.
type ExecutionStatus uint8

const (
	// StatusSuccess means execution completed and its state changes hold.
	StatusSuccess ExecutionStatus = iota
	// StatusRevert means execution reverted; return data may carry the
	// revert reason, all other effects are unwound.
	StatusRevert
	// StatusHalt means execution stopped abnormally (out of gas, invalid
	// opcode); nothing is returned.
	StatusHalt
)

// IsSuccess reports whether the status is Success.
func (s ExecutionStatus) IsSuccess() bool { return s == StatusSuccess }

// IsRevert reports whether the status is Revert.
func (s ExecutionStatus) IsRevert() bool { return s == StatusRevert }

// IsHalt reports whether the status is Halt.
func (s ExecutionStatus) IsHalt() bool { return s == StatusHalt }

// String implements fmt.Stringer.
func (s ExecutionStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRevert:
		return "revert"
	case StatusHalt:
		return "halt"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// ExecutionOutput is the complete, closed description of one execution
// result. Revert and halt outputs never carry logs or refunds: those are
// not meaningful once execution has unwound, and the constructors
// enforce it. The field order is the canonical encoding order.
type ExecutionOutput struct {
	Status         ExecutionStatus
	ReturnData     []byte
	GasUsed        types.Gas
	GasRefunded    types.Gas
	Logs           []types.Log
	PostState      *state.StateDB
	CreatedAddress *types.Address `rlp:"nil"`
}

// NewSuccessOutput builds a successful execution output.
func NewSuccessOutput(returnData []byte, gasUsed, gasRefunded types.Gas, logs []types.Log, postState *state.StateDB) *ExecutionOutput {
	return &ExecutionOutput{
		Status:      StatusSuccess,
		ReturnData:  returnData,
		GasUsed:     gasUsed,
		GasRefunded: gasRefunded,
		Logs:        logs,
		PostState:   postState,
	}
}

// NewRevertOutput builds a reverted execution output. The refund is
// forced to zero and logs are forced empty.
func NewRevertOutput(returnData []byte, gasUsed types.Gas, postState *state.StateDB) *ExecutionOutput {
	return &ExecutionOutput{
		Status:     StatusRevert,
		ReturnData: returnData,
		GasUsed:    gasUsed,
		PostState:  postState,
	}
}

// NewHaltOutput builds a halted execution output. Return data, refund,
// and logs are all forced empty.
func NewHaltOutput(gasUsed types.Gas, postState *state.StateDB) *ExecutionOutput {
	return &ExecutionOutput{
		Status:    StatusHalt,
		GasUsed:   gasUsed,
		PostState: postState,
	}
}

// SetCreatedAddress attaches the address of a newly created contract.
// Only sensible on a successful creation output.
func (o *ExecutionOutput) SetCreatedAddress(addr types.Address) {
	o.CreatedAddress = &addr
}

// Hash computes the deterministic hash of the output over its canonical
// encoding.
func (o *ExecutionOutput) Hash() (types.Hash, error) {
	h, err := crypto.HashValue(o)
	if err != nil {
		return types.Hash{}, fmt.Errorf("%w: output: %v", ErrSerialization, err)
	}
	return h, nil
}

// PostStateRoot returns the post-state's store root.
func (o *ExecutionOutput) PostStateRoot() types.Hash {
	return o.PostState.Root()
}

// IsSuccess reports whether execution succeeded.
func (o *ExecutionOutput) IsSuccess() bool { return o.Status.IsSuccess() }

// IsRevert reports whether execution reverted.
func (o *ExecutionOutput) IsRevert() bool { return o.Status.IsRevert() }

// IsHalt reports whether execution halted.
func (o *ExecutionOutput) IsHalt() bool { return o.Status.IsHalt() }

// EffectiveGasUsed returns the gas used after applying the refund,
// which is capped at exactly half of the gas used (integer division
// truncating toward zero).
func (o *ExecutionOutput) EffectiveGasUsed() types.Gas {
	maxRefund := o.GasUsed / 2
	refund := o.GasRefunded
	if refund > maxRefund {
		refund = maxRefund
	}
	return o.GasUsed - refund
}

type outputJSON struct {
	Status         string         `json:"status"`
	ReturnData     hexutil.Bytes  `json:"returnData"`
	GasUsed        types.Gas      `json:"gasUsed"`
	GasRefunded    types.Gas      `json:"gasRefunded"`
	Logs           []types.Log    `json:"logs"`
	PostState      *state.StateDB `json:"postState"`
	CreatedAddress *types.Address `json:"createdAddress,omitempty"`
}

// MarshalJSON implements json.Marshaler (interchange encoding only).
func (o *ExecutionOutput) MarshalJSON() ([]byte, error) {
	return json.Marshal(outputJSON{
		Status:         o.Status.String(),
		ReturnData:     o.ReturnData,
		GasUsed:        o.GasUsed,
		GasRefunded:    o.GasRefunded,
		Logs:           o.Logs,
		PostState:      o.PostState,
		CreatedAddress: o.CreatedAddress,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *ExecutionOutput) UnmarshalJSON(data []byte) error {
	var dec outputJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	var status ExecutionStatus
	switch dec.Status {
	case "success":
		status = StatusSuccess
	case "revert":
		status = StatusRevert
	case "halt":
		status = StatusHalt
	default:
		return fmt.Errorf("unknown execution status %q", dec.Status)
	}
	*o = ExecutionOutput{
		Status:         status,
		ReturnData:     dec.ReturnData,
		GasUsed:        dec.GasUsed,
		GasRefunded:    dec.GasRefunded,
		Logs:           dec.Logs,
		PostState:      dec.PostState,
		CreatedAddress: dec.CreatedAddress,
	}
	return nil
}
