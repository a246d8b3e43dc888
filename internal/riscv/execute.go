package riscv

import "math/bits"

// execute applies a decoded instruction to CPU state. *nextPC is the
// sequential successor PC (startPC + instruction size); branches and jumps
// overwrite it. A non-nil Trap means Step must stop without advancing PC
// past what execute already decided (nextPC is meaningless in that case).
func (c *CPU) execute(o op, startPC uint64, nextPC *uint64) (*Trap, error) {
	switch o.kind {
	case opLUI:
		c.SetX(o.rd, uint64(o.imm))
	case opAUIPC:
		c.SetX(o.rd, startPC+uint64(o.imm))
	case opJAL:
		c.SetX(o.rd, *nextPC)
		*nextPC = startPC + uint64(o.imm)
	case opJALR:
		target := (c.GetX(o.rs1) + uint64(o.imm)) &^ 1
		link := *nextPC
		*nextPC = target
		c.SetX(o.rd, link)
	case opBranch:
		if branchTaken(o.fn, c.GetX(o.rs1), c.GetX(o.rs2)) {
			*nextPC = startPC + uint64(o.imm)
		}
	case opLoad:
		addr := c.GetX(o.rs1) + uint64(o.imm)
		raw, err := c.Mem.readUint(addr, o.width)
		if err != nil {
			return &Trap{Kind: TrapLoadAccessFault, PC: startPC}, nil
		}
		if !o.unsigned && o.width < 8 {
			raw = uint64(signExtend(uint32(raw), uint(o.width*8)))
		}
		c.SetX(o.rd, raw)
	case opStore:
		addr := c.GetX(o.rs1) + uint64(o.imm)
		if err := c.Mem.writeUint(addr, c.GetX(o.rs2), o.width); err != nil {
			return &Trap{Kind: TrapStoreAccessFault, PC: startPC}, nil
		}
	case opAluImm:
		c.SetX(o.rd, aluOp(o.fn, c.GetX(o.rs1), uint64(o.imm)))
	case opAluImmW:
		r := aluOpW(o.fn, uint32(c.GetX(o.rs1)), uint32(o.imm))
		c.SetX(o.rd, uint64(int64(int32(r))))
	case opAluReg:
		c.SetX(o.rd, aluOp(o.fn, c.GetX(o.rs1), c.GetX(o.rs2)))
	case opAluRegW:
		r := aluOpW(o.fn, uint32(c.GetX(o.rs1)), uint32(c.GetX(o.rs2)))
		c.SetX(o.rd, uint64(int64(int32(r))))
	case opFence:
		// FENCE / FENCE.I / C.NOP: no-op in a single-hart, single-threaded
		// interpreter with no instruction cache to flush.
	case opCSR:
		// No CSR file is modeled; reads return zero, writes are discarded.
		c.SetX(o.rd, 0)
	case opEcall:
		return &Trap{Kind: TrapEnvCall, PC: startPC}, nil
	default:
		return &Trap{Kind: TrapIllegalInstruction, PC: startPC}, nil
	}
	return nil, nil
}

func branchTaken(fn uint32, a, b uint64) bool {
	switch fn {
	case 0: // BEQ
		return a == b
	case 1: // BNE
		return a != b
	case 4: // BLT
		return int64(a) < int64(b)
	case 5: // BGE
		return int64(a) >= int64(b)
	case 6: // BLTU
		return a < b
	case 7: // BGEU
		return a >= b
	default:
		return false
	}
}

// aluOp implements the OP/OP-IMM funct3 (and an alt bit, funct7 bit 5
// packed at fn&(0x20<<3), distinguishing SUB/SRA/SRAI from ADD/SRL/SRLI, or
// the M-extension when fn's packed funct7 is 1) space, operating on full
// 64-bit values.
func aluOp(fn uint32, a, b uint64) uint64 {
	funct7 := fn >> 3
	funct3 := fn & 0x7
	if funct7 == 1 { // M extension (register-register only)
		return mulDivOp(funct3, a, b)
	}
	alt := funct7&0x20 != 0 // funct7 == 0b0100000
	switch funct3 {
	case 0: // ADD / ADDI / SUB
		if alt {
			return a - b
		}
		return a + b
	case 1: // SLL / SLLI
		return a << (b & 0x3f)
	case 2: // SLT / SLTI
		if int64(a) < int64(b) {
			return 1
		}
		return 0
	case 3: // SLTU / SLTIU
		if a < b {
			return 1
		}
		return 0
	case 4: // XOR / XORI
		return a ^ b
	case 5: // SRL / SRLI / SRA / SRAI
		if alt {
			return uint64(int64(a) >> (b & 0x3f))
		}
		return a >> (b & 0x3f)
	case 6: // OR / ORI
		return a | b
	case 7: // AND / ANDI
		return a & b
	default:
		return 0
	}
}

// aluOpW is the 32-bit-result counterpart used by *W instructions; callers
// sign-extend the low 32 bits of the result into the destination register.
func aluOpW(fn uint32, a, b uint32) uint32 {
	funct7 := fn >> 3
	funct3 := fn & 0x7
	if funct7 == 1 {
		return uint32(mulDivOp(funct3, uint64(a), uint64(b)))
	}
	alt := funct7&0x20 != 0
	switch funct3 {
	case 0:
		if alt {
			return a - b
		}
		return a + b
	case 1:
		return a << (b & 0x1f)
	case 5:
		if alt {
			return uint32(int32(a) >> (b & 0x1f))
		}
		return a >> (b & 0x1f)
	default:
		return 0
	}
}

func mulDivOp(funct3 uint32, a, b uint64) uint64 {
	switch funct3 {
	case 0: // MUL
		return a * b
	case 1: // MULH
		return uint64(mulHigh(int64(a), int64(b)))
	case 2: // MULHSU
		return uint64(mulHighSU(int64(a), b))
	case 3: // MULHU
		return mulHighU(a, b)
	case 4: // DIV
		if b == 0 {
			return ^uint64(0)
		}
		if int64(a) == minInt64 && int64(b) == -1 {
			return a
		}
		return uint64(int64(a) / int64(b))
	case 5: // DIVU
		if b == 0 {
			return ^uint64(0)
		}
		return a / b
	case 6: // REM
		if b == 0 {
			return a
		}
		if int64(a) == minInt64 && int64(b) == -1 {
			return 0
		}
		return uint64(int64(a) % int64(b))
	case 7: // REMU
		if b == 0 {
			return a
		}
		return a % b
	default:
		return 0
	}
}

const minInt64 = -1 << 63

func mulHigh(a, b int64) int64 {
	hi, _ := bits.Mul64(uint64(a), uint64(b))
	result := int64(hi)
	if a < 0 {
		result -= b
	}
	if b < 0 {
		result -= a
	}
	return result
}

func mulHighSU(a int64, b uint64) int64 {
	hi, _ := bits.Mul64(uint64(a), b)
	result := int64(hi)
	if a < 0 {
		result -= int64(b)
	}
	return result
}

func mulHighU(a, b uint64) uint64 {
	hi, _ := bits.Mul64(a, b)
	return hi
}
