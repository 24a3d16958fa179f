package main

import (
	"fmt"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/core"
	"github.com/zacksfF/shadow-evm/core/types"
	"github.com/zacksfF/shadow-evm/store"
	"github.com/zacksfF/shadow-evm/zkvm"
)

func newVerifyCmd() *cobra.Command {
	var (
		proofPath     string
		commitmentHex string
		dbPath        string
	)

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "verify a receipt without re-executing",
		RunE: func(cmd *cobra.Command, args []string) error {
			var receipt *zkvm.Receipt
			switch {
			case proofPath != "":
				receipt = new(zkvm.Receipt)
				if err := readJSON(proofPath, receipt); err != nil {
					return err
				}
			case dbPath != "" && commitmentHex != "":
				var key types.Hash
				if err := key.UnmarshalText([]byte(commitmentHex)); err != nil {
					return err
				}
				s, err := store.Open(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				var found bool
				receipt, found, err = s.GetReceipt(key)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("no receipt stored for %s", key)
				}
			default:
				return fmt.Errorf("need --proof, or --db together with --commitment")
			}

			verifier := zkvm.NewVerifier()
			var (
				commitment *core.ExecutionCommitment
				err        error
			)
			if commitmentHex != "" {
				var expected types.Hash
				if err := expected.UnmarshalText([]byte(commitmentHex)); err != nil {
					return err
				}
				commitment, err = verifier.VerifyAgainst(receipt, expected)
			} else {
				commitment, err = verifier.Verify(receipt)
			}
			if err != nil {
				return err
			}

			log.Info("Receipt verified",
				"commitment", commitment.Commitment,
				"preStateRoot", commitment.PreStateRoot,
				"postStateRoot", commitment.PostStateRoot)
			fmt.Fprintln(cmd.OutOrStdout(), "OK", commitment.Commitment)
			return nil
		},
	}

	cmd.Flags().StringVar(&proofPath, "proof", "", "receipt JSON file")
	cmd.Flags().StringVar(&commitmentHex, "commitment", "", "expected commitment hash")
	cmd.Flags().StringVar(&dbPath, "db", "", "load the receipt from this store")
	return cmd
}
