package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/r55-labs/r55vm/internal/demohost"
	"github.com/r55-labs/r55vm/internal/log"
)

func newDeployCmd() *cobra.Command {
	var (
		target, deployer string
		initcodePath     string
		ctorInputHex     string
	)

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Run a constructor ELF and install its Return payload as target's code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(target) {
				return fmt.Errorf("deploy: --target %q is not a hex address", target)
			}
			if !common.IsHexAddress(deployer) {
				return fmt.Errorf("deploy: --deployer %q is not a hex address", deployer)
			}
			initcode, err := os.ReadFile(initcodePath)
			if err != nil {
				return fmt.Errorf("deploy: reading %s: %w", initcodePath, err)
			}
			ctorInput, err := hex.DecodeString(trim0x(ctorInputHex))
			if err != nil {
				return fmt.Errorf("deploy: --ctor-input is not valid hex: %w", err)
			}

			h, err := loadState(statePath, effectiveGasLimit())
			if err != nil {
				return err
			}
			rec := newRecorder()
			rec.attach(log.L)

			driver := demohost.NewDriver(h)
			output, err := driver.Deploy(common.HexToAddress(target), common.HexToAddress(deployer), initcode, ctorInput)
			if err != nil {
				return fmt.Errorf("deploy: %w", err)
			}
			if err := saveState(statePath, h); err != nil {
				return err
			}
			if err := rec.writeJSONL(effectiveTraceSink()); err != nil {
				return err
			}

			fmt.Printf("deployed %s: runtime code = 0x%x (%d bytes)\n", target, output, len(output))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "address to install the runtime code at (required)")
	cmd.Flags().StringVar(&deployer, "deployer", "", "address running the constructor (required)")
	cmd.Flags().StringVar(&initcodePath, "initcode", "", "path to the constructor's RV64IMC ELF (required)")
	cmd.Flags().StringVar(&ctorInputHex, "ctor-input", "", "hex-encoded constructor calldata")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("deployer")
	_ = cmd.MarkFlagRequired("initcode")
	return cmd
}

func trim0x(s string) string {
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}
	return s
}
