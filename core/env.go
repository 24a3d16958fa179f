package core

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/zacksfF/shadow-evm/core/types"
)

// Default environment values, matching a post-merge mainnet-shaped chain.
const (
	// DefaultBlockGasLimit is the block gas limit used by DefaultBlockEnv.
	DefaultBlockGasLimit = 30_000_000
	// DefaultTxGasLimit is the transaction gas limit used by DefaultTxEnv.
	DefaultTxGasLimit = 10_000_000
	// TransferGasLimit is the intrinsic cost of a plain value transfer.
	TransferGasLimit = 21_000
	// TestnetChainID is the conventional local-development chain id.
	TestnetChainID = 31337
)

// BlockEnv carries the block-level parameters execution runs under. The
// field order is the canonical encoding order; do not reorder.
type BlockEnv struct {
	Number     types.BlockNumber
	Time       types.Timestamp
	GasLimit   types.Gas
	Coinbase   types.Address
	BaseFee    *uint256.Int
	PrevRandao types.Hash
	ChainID    uint64
}

// DefaultBlockEnv returns a block environment with mainnet-shaped
// defaults: block 1, a 30M gas limit, and a 1 gwei base fee.
func DefaultBlockEnv() BlockEnv {
	return BlockEnv{
		Number:   1,
		Time:     1700000000,
		GasLimit: DefaultBlockGasLimit,
		BaseFee:  uint256.NewInt(1_000_000_000),
		ChainID:  1,
	}
}

// TestnetBlockEnv returns DefaultBlockEnv with the local chain id.
func TestnetBlockEnv() BlockEnv {
	env := DefaultBlockEnv()
	env.ChainID = TestnetChainID
	return env
}

// TxEnv carries the transaction-level parameters of a single execution
// request. A nil To signals contract creation. The field order is the
// canonical encoding order; do not reorder.
type TxEnv struct {
	Caller   types.Address
	To       *types.Address `rlp:"nil"`
	Value    *uint256.Int
	Data     []byte
	GasLimit types.Gas
	GasPrice *uint256.Int
	Nonce    uint64
}

// DefaultTxEnv returns a transaction environment with a 10M gas limit
// and a 1 gwei gas price.
func DefaultTxEnv() TxEnv {
	return TxEnv{
		Value:    new(uint256.Int),
		GasLimit: DefaultTxGasLimit,
		GasPrice: uint256.NewInt(1_000_000_000),
	}
}

// Call builds a contract call transaction.
func Call(caller, to types.Address, data []byte) TxEnv {
	tx := DefaultTxEnv()
	tx.Caller = caller
	tx.To = &to
	tx.Data = data
	return tx
}

// Transfer builds a plain value transfer with the standard 21000 gas
// limit.
func Transfer(caller, to types.Address, value *uint256.Int) TxEnv {
	tx := DefaultTxEnv()
	tx.Caller = caller
	tx.To = &to
	tx.Value = new(uint256.Int).Set(value)
	tx.GasLimit = TransferGasLimit
	return tx
}

// Create builds a contract creation transaction carrying initCode.
func Create(caller types.Address, initCode []byte, value *uint256.Int) TxEnv {
	tx := DefaultTxEnv()
	tx.Caller = caller
	tx.Data = initCode
	tx.Value = new(uint256.Int).Set(value)
	return tx
}

// IsCreate reports whether the transaction creates a contract.
func (tx TxEnv) IsCreate() bool { return tx.To == nil }

// WithGasLimit returns a copy with the gas limit replaced.
func (tx TxEnv) WithGasLimit(gasLimit types.Gas) TxEnv {
	tx.GasLimit = gasLimit
	return tx
}

// WithNonce returns a copy with the nonce replaced.
func (tx TxEnv) WithNonce(nonce uint64) TxEnv {
	tx.Nonce = nonce
	return tx
}

// WithGasPrice returns a copy with the gas price replaced.
func (tx TxEnv) WithGasPrice(gasPrice *uint256.Int) TxEnv {
	tx.GasPrice = new(uint256.Int).Set(gasPrice)
	return tx
}

type txEnvJSON struct {
	Caller   types.Address  `json:"caller"`
	To       *types.Address `json:"to,omitempty"`
	Value    *uint256.Int   `json:"value"`
	Data     hexutil.Bytes  `json:"data"`
	GasLimit types.Gas      `json:"gasLimit"`
	GasPrice *uint256.Int   `json:"gasPrice"`
	Nonce    uint64         `json:"nonce"`
}

// MarshalJSON implements json.Marshaler.
func (tx TxEnv) MarshalJSON() ([]byte, error) {
	return json.Marshal(txEnvJSON{
		Caller:   tx.Caller,
		To:       tx.To,
		Value:    tx.Value,
		Data:     tx.Data,
		GasLimit: tx.GasLimit,
		GasPrice: tx.GasPrice,
		Nonce:    tx.Nonce,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (tx *TxEnv) UnmarshalJSON(data []byte) error {
	var dec txEnvJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.Value == nil {
		dec.Value = new(uint256.Int)
	}
	if dec.GasPrice == nil {
		dec.GasPrice = new(uint256.Int)
	}
	*tx = TxEnv{
		Caller:   dec.Caller,
		To:       dec.To,
		Value:    dec.Value,
		Data:     dec.Data,
		GasLimit: dec.GasLimit,
		GasPrice: dec.GasPrice,
		Nonce:    dec.Nonce,
	}
	return nil
}

type blockEnvJSON struct {
	Number     types.BlockNumber `json:"number"`
	Time       types.Timestamp   `json:"timestamp"`
	GasLimit   types.Gas         `json:"gasLimit"`
	Coinbase   types.Address     `json:"coinbase"`
	BaseFee    *uint256.Int      `json:"baseFee"`
	PrevRandao types.Hash        `json:"prevRandao"`
	ChainID    uint64            `json:"chainId"`
}

// MarshalJSON implements json.Marshaler.
func (b BlockEnv) MarshalJSON() ([]byte, error) {
	return json.Marshal(blockEnvJSON{
		Number:     b.Number,
		Time:       b.Time,
		GasLimit:   b.GasLimit,
		Coinbase:   b.Coinbase,
		BaseFee:    b.BaseFee,
		PrevRandao: b.PrevRandao,
		ChainID:    b.ChainID,
	})
}

// UnmarshalJSON implements json.Unmarshaler.
func (b *BlockEnv) UnmarshalJSON(data []byte) error {
	var dec blockEnvJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	if dec.BaseFee == nil {
		dec.BaseFee = new(uint256.Int)
	}
	*b = BlockEnv{
		Number:     dec.Number,
		Time:       dec.Time,
		GasLimit:   dec.GasLimit,
		Coinbase:   dec.Coinbase,
		BaseFee:    dec.BaseFee,
		PrevRandao: dec.PrevRandao,
		ChainID:    dec.ChainID,
	}
	return nil
}
