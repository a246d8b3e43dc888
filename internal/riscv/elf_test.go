package riscv

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildMiniELF hand-assembles a minimal valid ELF64/RISC-V executable with a
// single PT_LOAD segment, since there is no RV64 toolchain available to
// produce a real test fixture. The layout mirrors what an actual linker
// would emit: a 64-byte ELF header, one 56-byte program header, then the
// raw code bytes.
func buildMiniELF(t *testing.T, vaddr, entry uint64, code []byte) []byte {
	t.Helper()
	const ehsize = 64
	const phentsize = 56
	offset := uint64(ehsize + phentsize)

	var buf bytes.Buffer
	ident := [16]byte{0x7f, 'E', 'L', 'F', 2 /* ELFCLASS64 */, 1 /* little endian */, 1 /* EV_CURRENT */}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))     // e_type = ET_EXEC
	binary.Write(&buf, binary.LittleEndian, uint16(243))   // e_machine = EM_RISCV
	binary.Write(&buf, binary.LittleEndian, uint32(1))     // e_version
	binary.Write(&buf, binary.LittleEndian, entry)         // e_entry
	binary.Write(&buf, binary.LittleEndian, uint64(ehsize)) // e_phoff
	binary.Write(&buf, binary.LittleEndian, uint64(0))     // e_shoff
	binary.Write(&buf, binary.LittleEndian, uint32(0))     // e_flags
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // e_phnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shentsize
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shnum
	binary.Write(&buf, binary.LittleEndian, uint16(0)) // e_shstrndx

	binary.Write(&buf, binary.LittleEndian, uint32(1)) // p_type = PT_LOAD
	binary.Write(&buf, binary.LittleEndian, uint32(5)) // p_flags = R|X
	binary.Write(&buf, binary.LittleEndian, offset)    // p_offset
	binary.Write(&buf, binary.LittleEndian, vaddr)     // p_vaddr
	binary.Write(&buf, binary.LittleEndian, vaddr)     // p_paddr
	binary.Write(&buf, binary.LittleEndian, uint64(len(code))) // p_filesz
	binary.Write(&buf, binary.LittleEndian, uint64(len(code))) // p_memsz
	binary.Write(&buf, binary.LittleEndian, uint64(4096))      // p_align

	buf.Write(code)
	return buf.Bytes()
}

func TestSetupLoadsSegmentAndCalldata(t *testing.T) {
	code := asmWords(
		encodeI(0x13, RegA0, 0, 0, 5),
		encodeI(0x13, RegT0, 0, 0, 0),
		0x00000073,
	)
	// Guest code lives above the fixed calldata region, matching the
	// linker layout an actual guest binary would use, so loading it
	// doesn't clobber the calldata this test also checks.
	codeAddr := DramBase + CalldataRegionSize
	elfBytes := buildMiniELF(t, codeAddr, codeAddr, code)
	calldata := []byte{1, 2, 3, 4}

	cpu, err := Setup(elfBytes, calldata)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if cpu.PC != codeAddr {
		t.Fatalf("PC = 0x%x, want 0x%x", cpu.PC, codeAddr)
	}

	length, err := cpu.Mem.readUint(DramBase, 8)
	if err != nil {
		t.Fatalf("read calldata length: %v", err)
	}
	if length != uint64(len(calldata)) {
		t.Fatalf("calldata length = %d, want %d", length, len(calldata))
	}
	payload, err := cpu.Mem.Read(DramBase+8, uint64(len(calldata)))
	if err != nil {
		t.Fatalf("read calldata payload: %v", err)
	}
	if !bytes.Equal(payload, calldata) {
		t.Fatalf("calldata payload = %x, want %x", payload, calldata)
	}

	trap, err := cpu.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if trap == nil || trap.Kind != TrapEnvCall {
		t.Fatalf("expected TrapEnvCall, got %+v", trap)
	}
	if got := cpu.GetX(RegA0); got != 5 {
		t.Errorf("a0 = %d, want 5", got)
	}
}

func TestSetupRejectsVaddrBelowDramBase(t *testing.T) {
	elfBytes := buildMiniELF(t, DramBase-0x1000, DramBase-0x1000, []byte{0x73, 0, 0, 0})
	if _, err := Setup(elfBytes, nil); err == nil {
		t.Fatal("expected error for segment below DramBase")
	}
}

func TestSetupRejectsOversizedCalldata(t *testing.T) {
	elfBytes := buildMiniELF(t, DramBase, DramBase, []byte{0x73, 0, 0, 0})
	big := make([]byte, MaxCalldataPayload+1)
	if _, err := Setup(elfBytes, big); err == nil {
		t.Fatal("expected error for oversized calldata")
	}
}
