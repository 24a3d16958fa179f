package main

import (
	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/vm"
	"github.com/zacksfF/shadow-evm/store"
	"github.com/zacksfF/shadow-evm/zkvm"
)

func newProveCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
		dbPath     string
	)

	cmd := &cobra.Command{
		Use:   "prove",
		Short: "execute inside the guest and emit a sealed receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			input := new(core.ExecutionInput)
			if err := readJSON(inputPath, input); err != nil {
				return err
			}

			prover, err := zkvm.NewProver(vm.NewEngine())
			if err != nil {
				return err
			}
			receipt, err := prover.Prove(input)
			if err != nil {
				return err
			}
			commitment, err := receipt.Commitment()
			if err != nil {
				return err
			}
			log.Info("Proved execution",
				"imageId", receipt.ImageID,
				"commitment", commitment.Commitment)

			if dbPath != "" {
				s, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				key, err := s.PutReceipt(receipt)
				if err != nil {
					return err
				}
				log.Info("Stored receipt", "db", dbPath, "key", key)
			}
			return writeJSON(outputPath, receipt)
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "execution input JSON file")
	cmd.Flags().StringVar(&outputPath, "output", "", "receipt destination (default stdout)")
	cmd.Flags().StringVar(&dbPath, "db", "", "also persist the receipt to this store")
	cmd.MarkFlagRequired("input")
	return cmd
}
