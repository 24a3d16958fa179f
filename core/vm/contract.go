package vm

import (
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
)

// Contract is one frame of EVM execution: the code being run, who is
// running it, and the gas and value attached to the frame.
type Contract struct {
	CallerAddress types.Address
	Address       types.Address
	Code          []byte
	CodeHash      types.Hash
	Input         []byte
	Gas           uint64
	Value         *uint256.Int

	jumpdests map[uint64]bool // cached JUMPDEST analysis
}

// NewContract creates a new contract frame.
func NewContract(caller, addr types.Address, value *uint256.Int, gas uint64) *Contract {
	if value == nil {
		value = new(uint256.Int)
	}
	return &Contract{
		CallerAddress: caller,
		Address:       addr,
		Value:         value,
		Gas:           gas,
	}
}

// GetOp returns the opcode at position n in the contract code. Positions
// past the end of code read as STOP.
func (c *Contract) GetOp(n uint64) OpCode {
	if n < uint64(len(c.Code)) {
		return OpCode(c.Code[n])
	}
	return STOP
}

// UseGas attempts to consume the given gas. Returns false if insufficient.
func (c *Contract) UseGas(gas uint64) bool {
	if c.Gas < gas {
		return false
	}
	c.Gas -= gas
	return true
}

// RefundGas returns unspent gas to the frame.
func (c *Contract) RefundGas(gas uint64) {
	c.Gas += gas
}

// SetCallCode sets the code and code hash for a call-type execution.
func (c *Contract) SetCallCode(hash types.Hash, code []byte) {
	c.Code = code
	c.CodeHash = hash
	c.jumpdests = nil
}

// validJumpdest reports whether dest is a JUMPDEST that is not inside
// PUSH data.
func (c *Contract) validJumpdest(dest *uint256.Int) bool {
	udest, overflow := dest.Uint64WithOverflow()
	if overflow || udest >= uint64(len(c.Code)) {
		return false
	}
	if OpCode(c.Code[udest]) != JUMPDEST {
		return false
	}
	return c.isCode(udest)
}

// isCode reports whether the byte at pos is an opcode, not PUSH data.
func (c *Contract) isCode(pos uint64) bool {
	if c.jumpdests == nil {
		c.jumpdests = make(map[uint64]bool)
		c.analyzeJumpdests()
	}
	return c.jumpdests[pos]
}

func (c *Contract) analyzeJumpdests() {
	for i := uint64(0); i < uint64(len(c.Code)); i++ {
		op := OpCode(c.Code[i])
		if op == JUMPDEST {
			c.jumpdests[i] = true
		}
		if op.IsPush() {
			i += uint64(op - PUSH1 + 1)
		}
	}
}
