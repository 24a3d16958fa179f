package main

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/vm"
)

// executeReport is what the execute command prints: the output plus,
// for full executions, the commitment binding it to the input.
type executeReport struct {
	Output     *core.ExecutionOutput     `json:"output"`
	Commitment *core.ExecutionCommitment `json:"commitment,omitempty"`
}

func newExecuteCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		simulate   bool
	)

	cmd := &cobra.Command{
		Use:   "execute",
		Short: "execute a transaction against its state snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := new(core.ExecutionInput)
			if err := readJSON(inputPath, input); err != nil {
				return err
			}

			executor := core.NewExecutor(vm.NewEngine())
			var report executeReport
			if simulate {
				output, err := executor.Simulate(input)
				if err != nil {
					return err
				}
				report.Output = output
			} else {
				artifact, err := executor.Execute(input)
				if err != nil {
					return err
				}
				report.Output = artifact.Output
				report.Commitment = artifact.Commitment
			}

			log.Info("Execution finished",
				"status", report.Output.Status,
				"gasUsed", report.Output.GasUsed,
				"effectiveGas", report.Output.EffectiveGasUsed(),
				"logs", len(report.Output.Logs))
			return writeJSON(outputPath, &report)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "execution input JSON file")
	cmd.Flags().StringVar(&outputPath, "output", "", "report destination (default stdout)")
	cmd.Flags().BoolVar(&simulate, "simulate", false, "run without materializing a post-state")
	cmd.MarkFlagRequired("input")
	return cmd
}
