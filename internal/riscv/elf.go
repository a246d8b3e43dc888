package riscv

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
)

// MaxCalldataPayload is the largest calldata payload Setup will accept,
// leaving room for the 8-byte length prefix inside CalldataRegionSize.
const MaxCalldataPayload = CalldataRegionSize - 8

// Setup builds a fresh CPU from a compiled RV64IMC ELF binary and a
// calldata payload, following the same shape as the guest loader's
// setup_from_elf: the calldata region is written first (an 8-byte
// little-endian length prefix followed by the payload, at DramBase), then
// every PT_LOAD segment is copied into DRAM at p_vaddr-DramBase, and PC is
// set to the ELF entry point.
func Setup(elfData []byte, callData []byte) (*CPU, error) {
	if len(callData) > MaxCalldataPayload {
		return nil, fmt.Errorf("riscv: calldata too large (%d > %d)", len(callData), MaxCalldataPayload)
	}

	f, err := elf.NewFile(bytes.NewReader(elfData))
	if err != nil {
		return nil, fmt.Errorf("riscv: parse ELF: %w", err)
	}
	defer f.Close()

	if f.Machine != elf.EM_RISCV {
		return nil, fmt.Errorf("riscv: expected EM_RISCV, got %v", f.Machine)
	}
	if f.Class != elf.ELFCLASS64 {
		return nil, fmt.Errorf("riscv: expected 64-bit ELF, got %v", f.Class)
	}

	cpu := New()

	var prefix [8]byte
	binary.LittleEndian.PutUint64(prefix[:], uint64(len(callData)))
	if err := cpu.Mem.Write(DramBase, prefix[:]); err != nil {
		return nil, fmt.Errorf("riscv: write calldata length: %w", err)
	}
	if len(callData) > 0 {
		if err := cpu.Mem.Write(DramBase+8, callData); err != nil {
			return nil, fmt.Errorf("riscv: write calldata payload: %w", err)
		}
	}

	for _, ph := range f.Progs {
		if ph.Type != elf.PT_LOAD {
			continue
		}
		if ph.Vaddr < DramBase {
			return nil, fmt.Errorf("riscv: PT_LOAD vaddr 0x%x below DramBase 0x%x", ph.Vaddr, DramBase)
		}
		if ph.Memsz > DramSize {
			return nil, fmt.Errorf("riscv: PT_LOAD memsz %d exceeds DramSize %d", ph.Memsz, DramSize)
		}

		// Later segments win on overlap: zero-fill first (ensure covers the
		// full memsz, including any .bss tail beyond filesz), then copy the
		// file-backed bytes on top.
		if err := cpu.Mem.Write(ph.Vaddr, make([]byte, ph.Memsz)); err != nil {
			return nil, fmt.Errorf("riscv: zero-fill segment at 0x%x: %w", ph.Vaddr, err)
		}

		data := make([]byte, ph.Filesz)
		if _, err := ph.ReadAt(data, 0); err != nil {
			return nil, fmt.Errorf("riscv: read segment at 0x%x: %w", ph.Vaddr, err)
		}
		if err := cpu.Mem.Write(ph.Vaddr, data); err != nil {
			return nil, fmt.Errorf("riscv: copy segment at 0x%x: %w", ph.Vaddr, err)
		}
	}

	cpu.PC = f.Entry
	return cpu, nil
}
