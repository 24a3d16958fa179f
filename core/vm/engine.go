package vm

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
)

// Engine is the bundled execution engine: a self-contained Shanghai
// interpreter that satisfies the core.Engine contract. Engine errors
// mean the transaction could not be run at all (bad nonce, unpayable
// gas); reverted and halted transactions come back as statuses.
type Engine struct{}

var _ core.Engine = (*Engine)(nil)

// NewEngine returns the bundled interpreter engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Run executes one transaction against the pre-state and reports the
// touched accounts.
func (e *Engine) Run(cfg *core.EngineConfig, pre state.Reader) (*core.EngineResult, error) {
	if cfg == nil {
		return nil, errors.New("nil engine config")
	}
	if cfg.Spec != core.SpecShanghai {
		return nil, fmt.Errorf("unsupported spec version %s", cfg.Spec)
	}

	var (
		block = cfg.Block
		tx    = cfg.Tx
	)
	if tx.GasLimit > block.GasLimit {
		return nil, fmt.Errorf("%w: tx gas limit %d exceeds block gas limit %d", core.ErrInvalidTransaction, tx.GasLimit, block.GasLimit)
	}
	gasPrice := tx.GasPrice
	if gasPrice == nil {
		gasPrice = new(uint256.Int)
	}
	baseFee := block.BaseFee
	if baseFee == nil {
		baseFee = new(uint256.Int)
	}
	if gasPrice.Lt(baseFee) {
		return nil, fmt.Errorf("%w: gas price %s below base fee %s", core.ErrInvalidTransaction, gasPrice, baseFee)
	}
	intrinsic, ok := IntrinsicGas(tx.Data, tx.IsCreate())
	if !ok {
		return nil, fmt.Errorf("%w: intrinsic gas overflow", core.ErrInvalidTransaction)
	}
	if tx.GasLimit < intrinsic {
		return nil, fmt.Errorf("%w: gas limit %d below intrinsic gas %d", core.ErrInvalidTransaction, tx.GasLimit, intrinsic)
	}

	statedb := NewStateDB(pre)

	if have := statedb.GetNonce(tx.Caller); have != tx.Nonce {
		return nil, fmt.Errorf("%w: nonce mismatch: account %d, tx %d", core.ErrInvalidTransaction, have, tx.Nonce)
	}

	value := tx.Value
	if value == nil {
		value = new(uint256.Int)
	}

	// Buy gas up front: the caller must cover gasLimit*gasPrice plus the
	// transferred value.
	gasCost := new(uint256.Int).Mul(gasPrice, uint256.NewInt(tx.GasLimit))
	totalCost := new(uint256.Int).Add(gasCost, value)
	if statedb.GetBalance(tx.Caller).Lt(totalCost) {
		return nil, fmt.Errorf("%w: insufficient funds: need %s", core.ErrInvalidTransaction, totalCost)
	}
	statedb.SubBalance(tx.Caller, gasCost)

	evm := NewEVM(
		BlockContext{
			BlockNumber: block.Number,
			Time:        block.Time,
			Coinbase:    block.Coinbase,
			GasLimit:    block.GasLimit,
			BaseFee:     baseFee,
			PrevRandao:  block.PrevRandao,
		},
		TxContext{
			Origin:   tx.Caller,
			GasPrice: gasPrice,
		},
		statedb,
		cfg.ChainID,
	)
	evm.PreWarmAccessList(tx.Caller, tx.To)

	gas := tx.GasLimit - intrinsic

	var (
		ret            []byte
		gasLeft        uint64
		vmerr          error
		createdAddress *types.Address
	)
	if tx.IsCreate() {
		var addr types.Address
		ret, addr, gasLeft, vmerr = evm.Create(tx.Caller, tx.Data, gas, value)
		if vmerr == nil {
			createdAddress = &addr
		}
	} else {
		statedb.SetNonce(tx.Caller, tx.Nonce+1)
		ret, gasLeft, vmerr = evm.Call(tx.Caller, *tx.To, tx.Data, gas, value)
	}

	// Gas spent before refunds; intrinsic gas is included since gasLeft
	// counts only what survived the execution frame.
	gasUsed := tx.GasLimit - gasLeft
	refund := statedb.GetRefund()

	// Reimburse the caller for unspent gas plus the capped refund.
	cappedRefund := refund
	if max := gasUsed / 2; cappedRefund > max {
		cappedRefund = max
	}
	reimbursed := new(uint256.Int).Mul(gasPrice, uint256.NewInt(gasLeft+cappedRefund))
	statedb.AddBalance(tx.Caller, reimbursed)

	// Pay the coinbase the priority fee on the gas actually consumed.
	tip := new(uint256.Int).Sub(gasPrice, baseFee)
	if !tip.IsZero() {
		effective := gasUsed - cappedRefund
		statedb.AddBalance(block.Coinbase, new(uint256.Int).Mul(tip, uint256.NewInt(effective)))
	}

	res := &core.EngineResult{
		GasUsed: gasUsed,
		State:   statedb.Deltas(),
	}
	switch {
	case vmerr == nil:
		res.Status = core.StatusSuccess
		res.ReturnData = ret
		res.GasRefunded = refund
		res.Logs = statedb.Logs()
		res.CreatedAddress = createdAddress
	case errors.Is(vmerr, ErrExecutionReverted):
		res.Status = core.StatusRevert
		res.ReturnData = ret
	default:
		res.Status = core.StatusHalt
		res.HaltReason = vmerr.Error()
	}
	return res, nil
}
