package main

import (
	"bytes"
	"debug/elf"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <elf-file>",
		Short: "Show an RV64IMC guest ELF's header and PT_LOAD segments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return showInfo(args[0])
		},
	}
	return cmd
}

func showInfo(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("info: reading %s: %w", path, err)
	}
	f, err := elf.NewFile(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("info: parsing %s: %w", path, err)
	}
	defer f.Close()

	fmt.Printf("%s: machine=%s class=%s entry=0x%x\n", path, f.Machine, f.Class, f.Entry)
	if f.Machine != elf.EM_RISCV {
		fmt.Println("warning: not an EM_RISCV binary; internal/riscv.Setup would reject it")
	}
	for _, ph := range f.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		fmt.Printf("  PT_LOAD vaddr=0x%x filesz=%d memsz=%d flags=%s\n", ph.Vaddr, ph.Filesz, ph.Memsz, ph.Flags)
	}
	return nil
}
