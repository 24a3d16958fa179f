package vm

// Gas cost constants following the Shanghai hard fork specification.
const (
	GasQuickStep   uint64 = 2
	GasFastestStep uint64 = 3
	GasFastStep    uint64 = 5
	GasMidStep     uint64 = 8
	GasSlowStep    uint64 = 10
	GasExtStep     uint64 = 20 // BLOCKHASH

	// EIP-2929 warm/cold access costs.
	ColdAccountAccessCost uint64 = 2600
	ColdSloadCost         uint64 = 2100
	WarmStorageReadCost   uint64 = 100

	// EIP-3529 SSTORE costs and refund.
	GasSstoreSet       uint64 = 20000 // zero to non-zero
	GasSstoreReset     uint64 = 2900  // non-zero to non-zero (5000 - ColdSloadCost)
	SstoreClearsRefund uint64 = 4800  // refund for clearing a slot (EIP-3529)

	GasCreate       uint64 = 32000
	GasCallValue    uint64 = 9000  // surcharge for non-zero value transfer
	GasCallStipend  uint64 = 2300  // free gas given to the callee on value transfer
	GasNewAccount   uint64 = 25000 // surcharge for calling a non-existent account with value
	CallGasFraction uint64 = 64    // EIP-150: one 64th withheld from subcalls

	GasLog      uint64 = 375
	GasLogTopic uint64 = 375
	GasLogData  uint64 = 8

	GasKeccak256     uint64 = 30
	GasKeccak256Word uint64 = 6

	GasMemory uint64 = 3 // per word of memory expansion
	GasCopy   uint64 = 3 // per word copied

	GasExpByte uint64 = 50 // EIP-160: per byte of EXP exponent

	GasJumpDest uint64 = 1
	GasJump     uint64 = 8
	GasJumpi    uint64 = 10

	GasPush0 uint64 = 2

	// Code deposit and size limits.
	CreateDataGas   uint64 = 200             // per byte of deployed code
	InitCodeWordGas uint64 = 2               // EIP-3860: per word of init code
	MaxCodeSize            = 24576           // EIP-170
	MaxInitCodeSize        = 2 * MaxCodeSize // EIP-3860

	// Intrinsic transaction costs.
	TxGas                 uint64 = 21000
	TxGasContractCreation uint64 = 53000
	TxDataZeroGas         uint64 = 4
	TxDataNonZeroGas      uint64 = 16 // EIP-2028
)

// toWordSize returns the number of 32-byte words required to hold size bytes.
func toWordSize(size uint64) uint64 {
	if size > (^uint64(0))-31 {
		return (^uint64(0))/32 + 1
	}
	return (size + 31) / 32
}

// memoryGasCost returns the total gas cost of a memory of the given size
// in bytes: 3 per word plus a quadratic term.
func memoryGasCost(size uint64) (uint64, bool) {
	words := toWordSize(size)
	if words > 0x1FFFFFFFF {
		// Quadratic term would overflow well before this; any realistic
		// gas limit runs out long sooner.
		return 0, false
	}
	return words*GasMemory + words*words/512, true
}

// memoryExpansionCost returns the gas to grow memory from oldSize to
// newSize bytes. Returns ok=false on overflow.
func memoryExpansionCost(oldSize, newSize uint64) (uint64, bool) {
	if newSize <= oldSize {
		return 0, true
	}
	newCost, ok := memoryGasCost(newSize)
	if !ok {
		return 0, false
	}
	oldCost, _ := memoryGasCost(oldSize)
	return newCost - oldCost, true
}

// safeAdd returns a+b, saturating on overflow.
func safeAdd(a, b uint64) uint64 {
	sum := a + b
	if sum < a {
		return ^uint64(0)
	}
	return sum
}

// safeMul returns a*b, saturating on overflow.
func safeMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	prod := a * b
	if prod/a != b {
		return ^uint64(0)
	}
	return prod
}

// callGas applies the EIP-150 63/64 rule: the caller may pass at most
// all but one 64th of its remaining gas to a subcall.
func callGas(available, requested uint64) uint64 {
	limit := available - available/CallGasFraction
	if requested > limit {
		return limit
	}
	return requested
}

// IntrinsicGas returns the intrinsic cost of a transaction with the
// given calldata: the base fee, per-byte calldata fees, and for
// creations the EIP-3860 init code word fee.
func IntrinsicGas(data []byte, isCreate bool) (uint64, bool) {
	gas := TxGas
	if isCreate {
		gas = TxGasContractCreation
	}
	if len(data) > 0 {
		var nonZero uint64
		for _, b := range data {
			if b != 0 {
				nonZero++
			}
		}
		zero := uint64(len(data)) - nonZero
		gas = safeAdd(gas, safeMul(nonZero, TxDataNonZeroGas))
		gas = safeAdd(gas, safeMul(zero, TxDataZeroGas))
	}
	if isCreate {
		gas = safeAdd(gas, safeMul(toWordSize(uint64(len(data))), InitCodeWordGas))
	}
	if gas == ^uint64(0) {
		return 0, false
	}
	return gas, true
}
