// Command r55vm drives internal/demohost end to end: deploying a guest
// binary, calling into deployed code, inspecting an ELF's segments, and
// replaying a recorded syscall trace — the same shape cmd/galago's
// single cobra binary takes, retargeted from ARM64/Android extraction to
// the RV64IMC/EVM-bridge domain.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/r55-labs/r55vm/internal/config"
	"github.com/r55-labs/r55vm/internal/log"
)

var (
	configPath string
	statePath  string
	verbose    bool
	cfg        config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "r55vm",
		Short: "Drive the RV64IMC guest execution bridge against a demo host",
		Long: `r55vm deploys and calls RV64IMC guest contracts against
internal/demohost, a minimal in-process stand-in for an EVM host.

Examples:
  r55vm deploy --target 0x...01 --deployer 0x...02 --initcode deploy.elf
  r55vm call --target 0x...01 --caller 0x...02 --calldata 00000000...
  r55vm demo --runtime-elf runtime.elf --deploy-elf deploy.elf
  r55vm info runtime.elf
  r55vm trace r55vm-trace.jsonl`,
		DisableFlagsInUseLine: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(config.Resolve(configPath))
			if err != nil {
				return err
			}
			cfg = loaded
			log.Init(verbose || cfg.LogLevel == "debug")
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: "+config.EnvVar+" env var)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "r55vm-state.gob", "demo host state snapshot file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose debug logging")

	rootCmd.AddCommand(
		newDeployCmd(),
		newCallCmd(),
		newDemoCmd(),
		newInfoCmd(),
		newTraceCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "r55vm:", err)
		os.Exit(1)
	}
}

func effectiveGasLimit() uint64 {
	return cfg.GasLimit
}

func effectiveTraceSink() string {
	return cfg.TraceSink
}
