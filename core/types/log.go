package types

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// MaxLogTopics is the maximum number of topics a log entry can carry.
const MaxLogTopics = 4

// Log is an event record emitted by a contract during execution. Logs are
// immutable and keep the order in which they were emitted within a
// transaction.
type Log struct {
	// Address of the contract that emitted the log.
	Address Address
	// Topics holds up to four indexed topic hashes. The first topic
	// conventionally identifies the event signature.
	Topics []Hash
	// Data is the opaque, ABI-encoded event payload.
	Data []byte
}

// NewLog creates a log entry.
func NewLog(address Address, topics []Hash, data []byte) Log {
	return Log{Address: address, Topics: topics, Data: data}
}

// EventSignature returns the first topic and whether one is present.
func (l Log) EventSignature() (Hash, bool) {
	if len(l.Topics) == 0 {
		return Hash{}, false
	}
	return l.Topics[0], true
}

// Copy returns a deep copy of the log.
func (l Log) Copy() Log {
	cp := Log{Address: l.Address}
	if l.Topics != nil {
		cp.Topics = make([]Hash, len(l.Topics))
		copy(cp.Topics, l.Topics)
	}
	if l.Data != nil {
		cp.Data = make([]byte, len(l.Data))
		copy(cp.Data, l.Data)
	}
	return cp
}

type logJSON struct {
	Address Address       `json:"address"`
	Topics  []Hash        `json:"topics"`
	Data    hexutil.Bytes `json:"data"`
}

// MarshalJSON implements json.Marshaler, rendering Data as 0x-hex.
func (l Log) MarshalJSON() ([]byte, error) {
	return json.Marshal(logJSON{Address: l.Address, Topics: l.Topics, Data: l.Data})
}

// UnmarshalJSON implements json.Unmarshaler.
func (l *Log) UnmarshalJSON(data []byte) error {
	var dec logJSON
	if err := json.Unmarshal(data, &dec); err != nil {
		return err
	}
	l.Address = dec.Address
	l.Topics = dec.Topics
	l.Data = dec.Data
	return nil
}
