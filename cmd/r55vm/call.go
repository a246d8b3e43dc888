package main

import (
	"encoding/hex"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/cobra"

	"github.com/r55-labs/r55vm/internal/demohost"
	"github.com/r55-labs/r55vm/internal/log"
)

func newCallCmd() *cobra.Command {
	var target, caller, calldataHex string

	cmd := &cobra.Command{
		Use:   "call",
		Short: "Call a deployed contract's installed code",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !common.IsHexAddress(target) {
				return fmt.Errorf("call: --target %q is not a hex address", target)
			}
			if !common.IsHexAddress(caller) {
				return fmt.Errorf("call: --caller %q is not a hex address", caller)
			}
			calldata, err := hex.DecodeString(trim0x(calldataHex))
			if err != nil {
				return fmt.Errorf("call: --calldata is not valid hex: %w", err)
			}

			h, err := loadState(statePath, effectiveGasLimit())
			if err != nil {
				return err
			}
			rec := newRecorder()
			rec.attach(log.L)

			driver := demohost.NewDriver(h)
			output, reverted := driver.Call(common.HexToAddress(target), common.HexToAddress(caller), calldata)
			if err := saveState(statePath, h); err != nil {
				return err
			}
			if err := rec.writeJSONL(effectiveTraceSink()); err != nil {
				return err
			}

			if reverted {
				fmt.Printf("call to %s reverted\n", target)
				return nil
			}
			fmt.Printf("call to %s returned 0x%x (%d bytes)\n", target, output, len(output))
			return nil
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "address to call (required)")
	cmd.Flags().StringVar(&caller, "caller", "", "calling address (required)")
	cmd.Flags().StringVar(&calldataHex, "calldata", "", "hex-encoded calldata (required)")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("caller")
	_ = cmd.MarkFlagRequired("calldata")
	return cmd
}
