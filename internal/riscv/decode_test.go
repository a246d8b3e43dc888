package riscv

import "testing"

// encodeI builds a standard I-type 32-bit instruction word.
func encodeI(opcode, rd, funct3, rs1 uint32, imm int64) uint32 {
	return opcode&0x7f | (rd&0x1f)<<7 | (funct3&0x7)<<12 | (rs1&0x1f)<<15 | (uint32(imm)&0xfff)<<20
}

func encodeR(opcode, rd, funct3, rs1, rs2, funct7 uint32) uint32 {
	return opcode&0x7f | (rd&0x1f)<<7 | (funct3&0x7)<<12 | (rs1&0x1f)<<15 | (rs2&0x1f)<<20 | (funct7&0x7f)<<25
}

func TestDecodeAddi(t *testing.T) {
	w := encodeI(0x13, 5, 0, 6, -1) // ADDI x5, x6, -1
	o, err := decode32(w)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if o.kind != opAluImm || o.rd != 5 || o.rs1 != 6 || o.imm != -1 {
		t.Fatalf("unexpected decode: %+v", o)
	}
}

func TestDecodeAdd(t *testing.T) {
	w := encodeR(0x33, 1, 0, 2, 3, 0) // ADD x1, x2, x3
	o, err := decode32(w)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if o.kind != opAluReg || o.fn != 0 {
		t.Fatalf("unexpected decode: %+v", o)
	}
}

func TestDecodeSub(t *testing.T) {
	w := encodeR(0x33, 1, 0, 2, 3, 0x20) // SUB x1, x2, x3
	o, err := decode32(w)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if aluOp(o.fn, 10, 3) != 7 {
		t.Fatalf("SUB produced wrong result")
	}
}

func TestDecodeMul(t *testing.T) {
	w := encodeR(0x33, 1, 0, 2, 3, 1) // MUL x1, x2, x3
	o, err := decode32(w)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if aluOp(o.fn, 6, 7) != 42 {
		t.Fatalf("MUL produced wrong result")
	}
}

func TestDecodeEcall(t *testing.T) {
	o, err := decode32(0x00000073)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if o.kind != opEcall {
		t.Fatalf("expected opEcall, got %+v", o)
	}
}

func TestDecodeIllegalOpcode(t *testing.T) {
	if _, err := decode32(0x0000007f); err == nil {
		t.Fatal("expected error for unknown opcode")
	}
}

func TestDecodeLui(t *testing.T) {
	w := uint32(0x12345037) // LUI x0, 0x12345
	o, err := decode32(w)
	if err != nil {
		t.Fatalf("decode32: %v", err)
	}
	if o.kind != opLUI || o.imm != 0x12345000 {
		t.Fatalf("unexpected LUI decode: %+v", o)
	}
}

func TestDecodeCompressedAddi4spn(t *testing.T) {
	// bit6 set -> nzuimm[2], rd' bits (4:2) zero -> rd=x8.
	o, err := decodeCompressed(0x0040)
	if err != nil {
		t.Fatalf("decodeCompressed: %v", err)
	}
	if o.kind != opAluImm || o.rd != 8 || o.rs1 != RegSP || o.imm != 4 {
		t.Fatalf("unexpected C.ADDI4SPN decode: %+v", o)
	}
}

func TestDecodeCompressedNop(t *testing.T) {
	o, err := decodeCompressed(0x0001) // C.NOP
	if err != nil {
		t.Fatalf("decodeCompressed: %v", err)
	}
	if o.kind != opFence {
		t.Fatalf("expected C.NOP to decode as no-op, got %+v", o)
	}
}

func TestDecodeCompressedLi(t *testing.T) {
	// C.LI x1, 5 : 010 0 00001 00101 01 -> 0x4095
	o, err := decodeCompressed(0x4095)
	if err != nil {
		t.Fatalf("decodeCompressed: %v", err)
	}
	if o.kind != opAluImm || o.rd != 1 || o.imm != 5 {
		t.Fatalf("unexpected C.LI decode: %+v", o)
	}
}
