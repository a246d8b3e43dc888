// Command r55gen generates the calldata dispatcher for a guest contract.
//
// It parses a Go package, finds the type marked with a //r55vm:contract
// doc comment, and emits <type>_dispatch.go: a Dispatch method that reads
// a 4-byte selector off calldata, decodes the matching exported method's
// arguments with internal/abiword, calls it, and encodes its result. The
// selector for each method is its zero-based declaration order, not a
// Solidity-style function-signature hash — r55vm contracts are not meant
// to be binary compatible with Solidity ABI callers.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

func main() {
	var (
		dir      string
		typeName string
		out      string
	)

	rootCmd := &cobra.Command{
		Use:   "r55gen [flags]",
		Short: "Generate a guest contract's calldata dispatcher",
		Long: `r55gen parses a Go package for a type marked //r55vm:contract and writes
<type>_dispatch.go alongside it: a guest.Contract implementation whose
Dispatch method decodes calldata arguments with internal/abiword and
calls the matching exported method.

Example:
  r55gen --dir ./examples/erc20`,
		Args:                  cobra.NoArgs,
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(dir, typeName, out)
		},
	}
	rootCmd.Flags().StringVar(&dir, "dir", ".", "package directory to scan")
	rootCmd.Flags().StringVar(&typeName, "type", "", "contract type name (required only if the package marks more than one)")
	rootCmd.Flags().StringVar(&out, "out", "", "output file (default <type>_dispatch.go in --dir, snake_cased)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(dir, typeName, out string) error {
	spec, err := loadContract(dir, typeName)
	if err != nil {
		return err
	}
	src, err := render(spec)
	if err != nil {
		return err
	}
	if out == "" {
		out = filepath.Join(dir, fmt.Sprintf("%s_dispatch.go", toSnake(spec.TypeName)))
	}
	if err := os.WriteFile(out, src, 0o644); err != nil {
		return fmt.Errorf("r55gen: writing %s: %w", out, err)
	}
	fmt.Fprintf(os.Stdout, "r55gen: wrote %s (%d methods on %s)\n", out, len(spec.Methods), spec.TypeName)
	return nil
}

func toSnake(s string) string {
	var out []rune
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				out = append(out, '_')
			}
			r = r - 'A' + 'a'
		}
		out = append(out, r)
	}
	return string(out)
}
