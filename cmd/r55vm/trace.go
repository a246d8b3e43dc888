package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r55-labs/r55vm/internal/ui/traceview"
)

func newTraceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace <trace-file>",
		Short: "Replay a recorded JSONL trace in an interactive viewer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := readJSONL(args[0])
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Println("trace: no events recorded")
				return nil
			}
			return traceview.Run(events)
		},
	}
	return cmd
}
