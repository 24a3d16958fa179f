package main

import (
	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/state"
	"github.com/zacksfF/shadow-evm/core/types"
)

func newSampleCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "write a sample execution input",
		Long: `Writes a ready-to-run execution input: a funded caller
transferring 1000 wei to a counter contract that increments its first
storage slot on every call.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(outputPath, sampleInput())
		},
	}

	cmd.Flags().StringVar(&outputPath, "output", "", "input destination (default stdout)")
	return cmd
}

// sampleInput builds the canned demonstration input.
func sampleInput() *core.ExecutionInput {
	caller := types.HexToAddress("0x1000000000000000000000000000000000000001")
	counter := types.HexToAddress("0x2000000000000000000000000000000000000002")

	// SSTORE(0, SLOAD(0) + 1); STOP.
	code := []byte{
		0x60, 0x00, // PUSH1 0
		0x54,       // SLOAD
		0x60, 0x01, // PUSH1 1
		0x01,       // ADD
		0x60, 0x00, // PUSH1 0
		0x55, // SSTORE
		0x00, // STOP
	}

	pre := state.New()
	pre.SetAccount(caller, state.NewAccount(uint256.MustFromDecimal("1000000000000000000")))
	pre.SetAccount(counter, state.NewContract(code, nil))

	tx := core.Call(caller, counter, nil)
	tx.Value = uint256.NewInt(1000)
	tx.GasLimit = 100_000

	return core.NewExecutionInput(core.DefaultBlockEnv(), tx, pre)
}
