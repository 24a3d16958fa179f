package vm

import (
	"crypto/sha256"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/ripemd160"

	"github.com/zacksfF/shadow-evm/core/types"
)

// PrecompiledContract is the interface for native contracts at reserved
// addresses.
type PrecompiledContract interface {
	RequiredGas(input []byte) uint64
	Run(input []byte) ([]byte, error)
}

// precompiledContracts holds the active precompile set: the original
// four contracts at 0x01..0x04.
var precompiledContracts = map[types.Address]PrecompiledContract{
	precompileAddr(1): &ecrecover{},
	precompileAddr(2): &sha256hash{},
	precompileAddr(3): &ripemd160hash{},
	precompileAddr(4): &dataCopy{},
}

func precompileAddr(n byte) types.Address {
	var addr types.Address
	addr[types.AddressLength-1] = n
	return addr
}

// Precompile gas costs.
const (
	ecrecoverGas        uint64 = 3000
	sha256BaseGas       uint64 = 60
	sha256PerWordGas    uint64 = 12
	ripemd160BaseGas    uint64 = 600
	ripemd160PerWordGas uint64 = 120
	identityBaseGas     uint64 = 15
	identityPerWordGas  uint64 = 3
)

// ecrecover implements the ECDSA public key recovery precompile (0x01).
type ecrecover struct{}

func (c *ecrecover) RequiredGas(input []byte) uint64 {
	return ecrecoverGas
}

func (c *ecrecover) Run(input []byte) ([]byte, error) {
	const inputLen = 128
	input = getData(input, 0, inputLen)

	// Input layout: hash (32) ++ v (32) ++ r (32) ++ s (32).
	// v must be 27 or 28, encoded as a 32-byte big-endian word.
	for _, b := range input[32:63] {
		if b != 0 {
			return nil, nil
		}
	}
	v := input[63]
	if v != 27 && v != 28 {
		return nil, nil
	}

	sig := make([]byte, 65)
	copy(sig, input[64:128]) // r ++ s
	sig[64] = v - 27

	pubkey, err := ethcrypto.Ecrecover(input[:32], sig)
	if err != nil {
		// Invalid signatures return empty output, not an error.
		return nil, nil
	}

	out := make([]byte, 32)
	hash := ethcrypto.Keccak256(pubkey[1:])
	copy(out[12:], hash[12:])
	return out, nil
}

// sha256hash implements the SHA-256 precompile (0x02).
type sha256hash struct{}

func (c *sha256hash) RequiredGas(input []byte) uint64 {
	return safeAdd(sha256BaseGas, safeMul(sha256PerWordGas, toWordSize(uint64(len(input)))))
}

func (c *sha256hash) Run(input []byte) ([]byte, error) {
	h := sha256.Sum256(input)
	return h[:], nil
}

// ripemd160hash implements the RIPEMD-160 precompile (0x03).
type ripemd160hash struct{}

func (c *ripemd160hash) RequiredGas(input []byte) uint64 {
	return safeAdd(ripemd160BaseGas, safeMul(ripemd160PerWordGas, toWordSize(uint64(len(input)))))
}

func (c *ripemd160hash) Run(input []byte) ([]byte, error) {
	h := ripemd160.New()
	h.Write(input)
	// Left-pad the 20-byte digest to a 32-byte word.
	out := make([]byte, 32)
	copy(out[12:], h.Sum(nil))
	return out, nil
}

// dataCopy implements the identity precompile (0x04).
type dataCopy struct{}

func (c *dataCopy) RequiredGas(input []byte) uint64 {
	return safeAdd(identityBaseGas, safeMul(identityPerWordGas, toWordSize(uint64(len(input)))))
}

func (c *dataCopy) Run(input []byte) ([]byte, error) {
	out := make([]byte, len(input))
	copy(out, input)
	return out, nil
}
