package bridge

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/r55-labs/r55vm/internal/riscv"
	"github.com/r55-labs/r55vm/internal/syscall"
)

// fakeHost is a minimal in-memory Host for exercising the bridge without a
// real EVM, mirroring the teacher's preference for small hand-rolled test
// doubles over a mocking framework.
type fakeHost struct {
	storage  map[common.Address]map[uint64]uint64
	denySLoad bool
	gasLimit uint64
}

func newFakeHost() *fakeHost {
	return &fakeHost{storage: make(map[common.Address]map[uint64]uint64), gasLimit: 1_000_000}
}

func (h *fakeHost) SLoad(contract common.Address, key *uint256.Int) (*uint256.Int, bool) {
	if h.denySLoad {
		return nil, false
	}
	m, ok := h.storage[contract]
	if !ok {
		return uint256.NewInt(0), true
	}
	return uint256.NewInt(m[key.Uint64()]), true
}

func (h *fakeHost) SStore(contract common.Address, key, value *uint256.Int) {
	m, ok := h.storage[contract]
	if !ok {
		m = make(map[uint64]uint64)
		h.storage[contract] = m
	}
	m[key.Uint64()] = value.Uint64()
}

func (h *fakeHost) GasLimit() uint64 { return h.gasLimit }

// buildMiniELF mirrors internal/riscv's test helper; duplicated here (kept
// small, package-private) since bridge tests need guest images too and
// importing riscv's unexported test helper isn't possible across packages.
func buildMiniELF(t *testing.T, vaddr, entry uint64, code []byte) []byte {
	t.Helper()
	const ehsize = 64
	const phentsize = 56
	offset := uint64(ehsize + phentsize)

	var buf bytes.Buffer
	ident := [16]byte{0x7f, 'E', 'L', 'F', 2, 1, 1}
	buf.Write(ident[:])
	binary.Write(&buf, binary.LittleEndian, uint16(2))
	binary.Write(&buf, binary.LittleEndian, uint16(243))
	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, entry)
	binary.Write(&buf, binary.LittleEndian, uint64(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint64(0))
	binary.Write(&buf, binary.LittleEndian, uint32(0))
	binary.Write(&buf, binary.LittleEndian, uint16(ehsize))
	binary.Write(&buf, binary.LittleEndian, uint16(phentsize))
	binary.Write(&buf, binary.LittleEndian, uint16(1))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))
	binary.Write(&buf, binary.LittleEndian, uint16(0))

	binary.Write(&buf, binary.LittleEndian, uint32(1))
	binary.Write(&buf, binary.LittleEndian, uint32(5))
	binary.Write(&buf, binary.LittleEndian, offset)
	binary.Write(&buf, binary.LittleEndian, vaddr)
	binary.Write(&buf, binary.LittleEndian, vaddr)
	binary.Write(&buf, binary.LittleEndian, uint64(len(code)))
	binary.Write(&buf, binary.LittleEndian, uint64(len(code)))
	binary.Write(&buf, binary.LittleEndian, uint64(4096))

	buf.Write(code)
	return buf.Bytes()
}

// asmWords packs 32-bit little-endian words into bytes.
func asmWords(words ...uint32) []byte {
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		buf[i*4+0] = byte(w)
		buf[i*4+1] = byte(w >> 8)
		buf[i*4+2] = byte(w >> 16)
		buf[i*4+3] = byte(w >> 24)
	}
	return buf
}

func encodeI(opcode, rd, funct3, rs1 uint32, imm int64) uint32 {
	return opcode&0x7f | (rd&0x1f)<<7 | (funct3&0x7)<<12 | (rs1&0x1f)<<15 | (uint32(imm)&0xfff)<<20
}

const codeAddr = 0x80000000 + (1 << 20) // DramBase + CalldataRegionSize

func guestImage(t *testing.T, code []byte) []byte {
	t.Helper()
	elfBytes := buildMiniELF(t, codeAddr, codeAddr, code)
	return append([]byte{0xFF}, elfBytes...)
}

func TestExecuteReturn(t *testing.T) {
	code := asmWords(
		encodeI(0x13, 10, 0, 0, 7), // ADDI a0, zero, 7
		encodeI(0x13, 11, 0, 0, 0), // ADDI a1, zero, 0 (zero-length return)
		encodeI(0x13, 5, 0, 0, 0),  // ADDI t0, zero, 0 (Return)
		0x00000073,
	)
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, guestImage(t, code), nil)

	action, err := br.Execute(newFakeHost(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionReturn {
		t.Fatalf("Kind = %v, want return", action.Kind)
	}
	if len(action.Output) != 0 {
		t.Fatalf("Output = %x, want empty", action.Output)
	}
}

func TestExecuteSStoreThenSLoad(t *testing.T) {
	code := asmWords(
		encodeI(0x13, 10, 0, 0, 42), // a0 = key 42
		encodeI(0x13, 11, 0, 0, 99), // a1 = value 99
		encodeI(0x13, 5, 0, 0, 2),   // t0 = 2 (SStore)
		0x00000073,
		encodeI(0x13, 10, 0, 0, 42), // a0 = key 42 again
		encodeI(0x13, 5, 0, 0, 1),   // t0 = 1 (SLoad)
		0x00000073,
		encodeI(0x13, 11, 0, 0, 0), // a1 = 0 (return length; a0 already holds loaded value)
		encodeI(0x13, 5, 0, 0, 0),  // t0 = 0 (Return)
		0x00000073,
	)
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, guestImage(t, code), nil)
	host := newFakeHost()

	action, err := br.Execute(host, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionReturn {
		t.Fatalf("Kind = %v, want return", action.Kind)
	}
	if got := host.storage[common.Address{1}][42]; got != 99 {
		t.Fatalf("stored value = %d, want 99", got)
	}
}

func TestExecuteSLoadDeniedReverts(t *testing.T) {
	code := asmWords(
		encodeI(0x13, 10, 0, 0, 1),
		encodeI(0x13, 5, 0, 0, 1), // SLoad
		0x00000073,
	)
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, guestImage(t, code), nil)
	host := newFakeHost()
	host.denySLoad = true

	action, err := br.Execute(host, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionRevert {
		t.Fatalf("Kind = %v, want revert", action.Kind)
	}
}

func TestExecuteRevertSyscallYieldsFourZeroBytes(t *testing.T) {
	code := asmWords(
		encodeI(0x13, 5, 0, 0, 4), // t0 = 4 (Revert)
		0x00000073,
	)
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, guestImage(t, code), nil)

	action, err := br.Execute(newFakeHost(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionRevert {
		t.Fatalf("Kind = %v, want revert", action.Kind)
	}
	if !bytes.Equal(action.Output, make([]byte, 4)) {
		t.Fatalf("Output = %x, want 4 zero bytes", action.Output)
	}
}

func TestExecuteUnknownSyscallReverts(t *testing.T) {
	code := asmWords(
		encodeI(0x13, 5, 0, 0, 99), // t0 = 99 (unknown)
		0x00000073,
	)
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, guestImage(t, code), nil)

	action, err := br.Execute(newFakeHost(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionRevert {
		t.Fatalf("Kind = %v, want revert", action.Kind)
	}
}

func TestExecuteNonEmulatedFrameDelegates(t *testing.T) {
	br := New()
	br.OnFrameCreate(common.Address{1}, common.Address{2}, []byte{0x60, 0x00}, nil)

	_, err := br.Execute(newFakeHost(), nil)
	if err != ErrNotEmulated {
		t.Fatalf("err = %v, want ErrNotEmulated", err)
	}
}

func TestExecuteCallSuspendsAndPopsOnResume(t *testing.T) {
	// Materializing a 20-byte callee address and the Call syscall's DRAM
	// arguments via hand-assembled RV64 immediates isn't worth the
	// complexity here: seed the CPU's registers and memory directly, with
	// the guest program consisting only of the ecall itself, then resume
	// it exactly as the bridge would for a real guest.
	target := common.Address{0xAA, 0xBB}
	addrScratch := riscv.DramBase + 0x1000
	retScratch := riscv.DramBase + 0x2000

	cpu := riscv.New()
	if err := cpu.Mem.Write(addrScratch, target.Bytes()); err != nil {
		t.Fatalf("write target address: %v", err)
	}
	if err := cpu.Mem.Write(riscv.DramBase, []byte{0x73, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("write ecall: %v", err)
	}
	cpu.PC = riscv.DramBase
	cpu.SetX(riscv.RegT0, uint64(3)) // Call
	cpu.SetX(riscv.RegA0, addrScratch)
	cpu.SetX(riscv.RegA1, 7) // value
	cpu.SetX(riscv.RegA2, riscv.DramBase)
	cpu.SetX(riscv.RegA3, 0) // zero-length args
	cpu.SetX(riscv.RegA4, retScratch)
	cpu.SetX(riscv.RegA5, 4) // expect a 4-byte return

	br := New()
	frame := &frameCtx{
		emulated: true,
		cpu:      cpu,
		target:   common.Address{1},
		caller:   common.Address{2},
	}
	br.stack = append(br.stack, frame)

	action, err := br.Execute(newFakeHost(), nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if action.Kind != ActionCall {
		t.Fatalf("Kind = %v, want call", action.Kind)
	}
	if action.Call.Target != target {
		t.Fatalf("Call.Target = %v, want %v", action.Call.Target, target)
	}
	if len(br.stack) != 1 {
		t.Fatalf("stack len = %d, want 1 (frame suspended, not popped)", len(br.stack))
	}

	// Simulate the guest's post-resumption continuation: read back the
	// destiny buffer and return it. Materializing this via real RV64
	// load-immediate sequences isn't worth it for a test that only cares
	// about the bridge's resumption bookkeeping, so the next ecall's
	// registers are seeded directly, exactly as if the guest had computed
	// them itself.
	if err := cpu.Mem.Write(riscv.DramBase+4, []byte{0x73, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("write second ecall: %v", err)
	}
	cpu.PC = riscv.DramBase + 4
	cpu.SetX(riscv.RegA0, retScratch)
	cpu.SetX(riscv.RegA1, 4)
	cpu.SetX(riscv.RegT0, 0) // Return

	action, err = br.Execute(newFakeHost(), []byte{0xde, 0xad, 0xbe, 0xef})
	if err != nil {
		t.Fatalf("Execute (resume): %v", err)
	}
	if action.Kind != ActionReturn {
		t.Fatalf("Kind = %v, want return", action.Kind)
	}
	if !bytes.Equal(action.Output, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Fatalf("Output = %x, want deadbeef", action.Output)
	}
	if len(br.stack) != 0 {
		t.Fatalf("stack len = %d, want 0 after terminal return", len(br.stack))
	}
}

// TestExecuteKeccak256PacksDigestBigEndian guards against regressing to a
// little-endian limb pack: spec.md requires the 32-byte digest placed
// across a0-a3 as four big-endian u64 limbs, the same convention Caller
// already uses for the 20-byte address.
func TestExecuteKeccak256PacksDigestBigEndian(t *testing.T) {
	data := []byte("hello")
	hash := sha3.NewLegacyKeccak256()
	hash.Write(data)
	want := hash.Sum(nil)

	dataAddr := riscv.DramBase + 0x1000
	cpu := riscv.New()
	if err := cpu.Mem.Write(dataAddr, data); err != nil {
		t.Fatalf("write data: %v", err)
	}
	if err := cpu.Mem.Write(riscv.DramBase, []byte{0x73, 0x00, 0x00, 0x00}); err != nil {
		t.Fatalf("write ecall: %v", err)
	}
	cpu.PC = riscv.DramBase + 4 // dispatch reads the ecall it serviced as cpu.PC-4
	cpu.SetX(riscv.RegT0, uint64(syscall.Keccak256))
	cpu.SetX(riscv.RegA0, dataAddr)
	cpu.SetX(riscv.RegA1, uint64(len(data)))

	br := New()
	frame := &frameCtx{
		emulated: true,
		cpu:      cpu,
		target:   common.Address{1},
		caller:   common.Address{2},
	}
	br.stack = append(br.stack, frame)

	_, suspended, terminal := br.dispatch(frame, newFakeHost())
	if suspended || terminal {
		t.Fatalf("suspended=%v terminal=%v, want both false", suspended, terminal)
	}

	gotWords := [4]uint64{
		cpu.GetX(riscv.RegA0),
		cpu.GetX(riscv.RegA1),
		cpu.GetX(riscv.RegA2),
		cpu.GetX(riscv.RegA3),
	}
	var wantWords [4]uint64
	for i := range wantWords {
		wantWords[i] = beUint64(want[i*8 : i*8+8])
	}
	if gotWords != wantWords {
		t.Fatalf("digest words = %x, want %x (big-endian limbs of %x)", gotWords, wantWords, want)
	}
}
