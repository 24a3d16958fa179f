// Command shadow-evm drives the execution and proving pipeline from
// the command line: execute a transaction against a state snapshot,
// prove it inside the guest, verify receipts, and manage the receipt
// store.
//
// Usage:
//
//	shadow-evm execute --input in.json [--simulate]
//	shadow-evm prove --input in.json --output receipt.json [--db path]
//	shadow-evm verify --proof receipt.json [--commitment 0x...] [--db path]
//	shadow-evm export --proof receipt.json --output commitment.json
//	shadow-evm image-id
//	shadow-evm sample --output in.json
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/spf13/cobra"

	"github.com/zacksfF/shadow-evm/core"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0"
var version = "v" + core.Version

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbosity int

	root := &cobra.Command{
		Use:           "shadow-evm",
		Short:         "single-transaction EVM execution with verifiable commitments",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log.SetDefault(log.NewLogger(log.NewTerminalHandlerWithLevel(
				os.Stderr, log.FromLegacyLevel(verbosity), false)))
		},
	}
	root.PersistentFlags().IntVar(&verbosity, "verbosity", 3, "log level 0-5")

	root.AddCommand(
		newExecuteCmd(),
		newProveCmd(),
		newVerifyCmd(),
		newExportCmd(),
		newImageIDCmd(),
		newSampleCmd(),
	)
	return root
}

// readJSON loads and decodes a JSON file into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// writeJSON encodes v and writes it to path, or to stdout when path is
// empty or "-".
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" || path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
