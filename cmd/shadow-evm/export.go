package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/zkvm"
)

func newExportCmd() *cobra.Command {
	var (
		proofPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "extract the public commitment from a receipt",
		RunE: func(cmd *cobra.Command, args []string) error {
			receipt := new(zkvm.Receipt)
			if err := readJSON(proofPath, receipt); err != nil {
				return err
			}
			// Verify before exporting so a tampered receipt cannot
			// pass its commitment along.
			commitment, err := zkvm.NewVerifier().Verify(receipt)
			if err != nil {
				return err
			}
			return writeJSON(outputPath, commitment)
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "receipt JSON file")
	cmd.Flags().StringVar(&outputPath, "output", "", "commitment destination (default stdout)")
	cmd.MarkFlagRequired("proof")
	return cmd
}

func newImageIDCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "image-id",
		Short: "print the guest program identifier",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), zkvm.ImageID())
			return err
		},
	}
}
