package riscv

import "fmt"

// rvc maps a compressed 3-bit register field (0-7) to its full register
// number (x8-x15): the RVC "popular" register window.
func rvc(field uint16) uint32 {
	return uint32(field&0x7) + 8
}

// decodeCompressed decodes a 2-byte RVC instruction into the same op shape
// used by the 32-bit decoder, so execute() never needs to know which form
// an instruction arrived in.
func decodeCompressed(h uint16) (op, error) {
	quadrant := h & 0x3
	funct3 := (h >> 13) & 0x7

	switch quadrant {
	case 0x0:
		return decodeQuadrant0(h, funct3)
	case 0x1:
		return decodeQuadrant1(h, funct3)
	case 0x2:
		return decodeQuadrant2(h, funct3)
	default:
		return op{}, fmt.Errorf("bad RVC quadrant")
	}
}

func decodeQuadrant0(h, funct3 uint16) (op, error) {
	rdp := rvc(h >> 2)
	rs1p := rvc(h >> 7)
	switch funct3 {
	case 0x0: // C.ADDI4SPN
		nzuimm := uint16(h>>11&0x3)<<4 | uint16(h>>7&0xf)<<6 | uint16(h>>6&1)<<2 | uint16(h>>5&1)<<3
		if nzuimm == 0 {
			return op{}, fmt.Errorf("reserved C.ADDI4SPN")
		}
		return op{kind: opAluImm, rd: rdp, rs1: RegSP, fn: 0, imm: int64(nzuimm)}, nil
	case 0x2: // C.LW
		imm := cLwImm(h)
		return op{kind: opLoad, rd: rdp, rs1: rs1p, imm: int64(imm), width: 4}, nil
	case 0x3: // C.LD
		imm := cLdImm(h)
		return op{kind: opLoad, rd: rdp, rs1: rs1p, imm: int64(imm), width: 8}, nil
	case 0x6: // C.SW
		imm := cLwImm(h)
		return op{kind: opStore, rs1: rs1p, rs2: rdp, imm: int64(imm), width: 4}, nil
	case 0x7: // C.SD
		imm := cLdImm(h)
		return op{kind: opStore, rs1: rs1p, rs2: rdp, imm: int64(imm), width: 8}, nil
	default:
		return op{}, fmt.Errorf("bad RVC quadrant0 funct3 %d", funct3)
	}
}

// cLwImm extracts the CL-format word offset used by C.LW/C.SW: imm[6|5:3|2].
func cLwImm(h uint16) uint16 {
	return (h>>10&0x7)<<3 | (h>>6&1)<<2 | (h>>5&1)<<6
}

// cLdImm extracts the CL-format doubleword offset used by C.LD/C.SD: imm[7:6|5:3].
func cLdImm(h uint16) uint16 {
	return (h>>10&0x7)<<3 | (h>>5&0x3)<<6
}

func decodeQuadrant1(h, funct3 uint16) (op, error) {
	rd := uint32(h >> 7 & 0x1f)
	nzimm6 := signExtend6(h)
	switch funct3 {
	case 0x0: // C.ADDI / C.NOP
		if rd == 0 {
			return op{kind: opFence}, nil
		}
		return op{kind: opAluImm, rd: rd, rs1: rd, fn: 0, imm: nzimm6}, nil
	case 0x1: // C.ADDIW
		return op{kind: opAluImmW, rd: rd, rs1: rd, fn: 0, imm: nzimm6}, nil
	case 0x2: // C.LI
		return op{kind: opAluImm, rd: rd, rs1: RegZero, fn: 0, imm: nzimm6}, nil
	case 0x3:
		if rd == RegSP {
			imm := cAddi16spImm(h)
			if imm == 0 {
				return op{}, fmt.Errorf("reserved C.ADDI16SP")
			}
			return op{kind: opAluImm, rd: RegSP, rs1: RegSP, fn: 0, imm: imm}, nil
		}
		imm := cLuiImm(h)
		if imm == 0 || rd == 0 {
			return op{}, fmt.Errorf("reserved C.LUI")
		}
		return op{kind: opLUI, rd: rd, imm: imm}, nil
	case 0x4:
		return decodeQuadrant1Arith(h)
	case 0x5: // C.J
		return op{kind: opJAL, rd: RegZero, imm: cJImm(h)}, nil
	case 0x6: // C.BEQZ
		return op{kind: opBranch, fn: 0, rs1: rvc(h >> 7), rs2: RegZero, imm: cBImm(h)}, nil
	case 0x7: // C.BNEZ
		return op{kind: opBranch, fn: 1, rs1: rvc(h >> 7), rs2: RegZero, imm: cBImm(h)}, nil
	default:
		return op{}, fmt.Errorf("bad RVC quadrant1 funct3 %d", funct3)
	}
}

func decodeQuadrant1Arith(h uint16) (op, error) {
	rdp := rvc(h >> 7)
	sub := (h >> 10) & 0x3
	switch sub {
	case 0x0: // C.SRLI
		shamt := h>>2&0x1f | (h >> 12 & 1 << 5)
		return op{kind: opAluImm, rd: rdp, rs1: rdp, fn: 5, imm: int64(shamt)}, nil
	case 0x1: // C.SRAI
		shamt := h>>2&0x1f | (h >> 12 & 1 << 5)
		return op{kind: opAluImm, rd: rdp, rs1: rdp, fn: 5 | 0x20<<3, imm: int64(shamt)}, nil
	case 0x2: // C.ANDI
		return op{kind: opAluImm, rd: rdp, rs1: rdp, fn: 7, imm: signExtend6(h)}, nil
	case 0x3:
		rs2p := rvc(h >> 2)
		isWord := (h >> 12 & 1) == 1
		switch (h >> 5) & 0x3 {
		case 0x0:
			if isWord {
				return op{kind: opAluRegW, rd: rdp, rs1: rdp, rs2: rs2p, fn: 0 | 32<<3}, nil // SUBW
			}
			return op{kind: opAluReg, rd: rdp, rs1: rdp, rs2: rs2p, fn: 0 | 32<<3}, nil // SUB
		case 0x1:
			if isWord {
				return op{kind: opAluRegW, rd: rdp, rs1: rdp, rs2: rs2p, fn: 0}, nil // ADDW
			}
			return op{kind: opAluReg, rd: rdp, rs1: rdp, rs2: rs2p, fn: 4}, nil // XOR
		case 0x2:
			if isWord {
				return op{}, fmt.Errorf("reserved RVC arith")
			}
			return op{kind: opAluReg, rd: rdp, rs1: rdp, rs2: rs2p, fn: 6}, nil // OR
		default: // 0x3
			if isWord {
				return op{}, fmt.Errorf("reserved RVC arith")
			}
			return op{kind: opAluReg, rd: rdp, rs1: rdp, rs2: rs2p, fn: 7}, nil // AND
		}
	default:
		return op{}, fmt.Errorf("unreachable RVC arith")
	}
}

func decodeQuadrant2(h, funct3 uint16) (op, error) {
	rd := uint32(h >> 7 & 0x1f)
	rs2 := uint32(h >> 2 & 0x1f)
	switch funct3 {
	case 0x0: // C.SLLI
		shamt := h>>2&0x1f | (h >> 12 & 1 << 5)
		if rd == 0 {
			return op{}, fmt.Errorf("reserved C.SLLI")
		}
		return op{kind: opAluImm, rd: rd, rs1: rd, fn: 1, imm: int64(shamt)}, nil
	case 0x2: // C.LWSP
		if rd == 0 {
			return op{}, fmt.Errorf("reserved C.LWSP")
		}
		imm := cLwspImm(h)
		return op{kind: opLoad, rd: rd, rs1: RegSP, imm: int64(imm), width: 4}, nil
	case 0x3: // C.LDSP
		if rd == 0 {
			return op{}, fmt.Errorf("reserved C.LDSP")
		}
		imm := cLdspImm(h)
		return op{kind: opLoad, rd: rd, rs1: RegSP, imm: int64(imm), width: 8}, nil
	case 0x4:
		bit12 := h >> 12 & 1
		if bit12 == 0 {
			if rs2 == 0 {
				if rd == 0 {
					return op{}, fmt.Errorf("reserved")
				}
				return op{kind: opJALR, rd: RegZero, rs1: rd, imm: 0}, nil // C.JR
			}
			return op{kind: opAluReg, rd: rd, rs1: RegZero, rs2: rs2, fn: 0}, nil // C.MV
		}
		if rs2 == 0 {
			if rd == 0 {
				return op{}, fmt.Errorf("unsupported C.EBREAK")
			}
			return op{kind: opJALR, rd: RegRA, rs1: rd, imm: 0}, nil // C.JALR
		}
		return op{kind: opAluReg, rd: rd, rs1: rd, rs2: rs2, fn: 0}, nil // C.ADD
	case 0x6: // C.SWSP
		imm := cSwspImm(h)
		return op{kind: opStore, rs1: RegSP, rs2: rs2, imm: int64(imm), width: 4}, nil
	case 0x7: // C.SDSP
		imm := cSdspImm(h)
		return op{kind: opStore, rs1: RegSP, rs2: rs2, imm: int64(imm), width: 8}, nil
	default:
		return op{}, fmt.Errorf("bad RVC quadrant2 funct3 %d", funct3)
	}
}

func signExtend6(h uint16) int64 {
	v := uint32(h>>2&0x1f) | uint32(h>>12&1)<<5
	return signExtend(v, 6)
}

func cAddi16spImm(h uint16) int64 {
	v := uint32(h>>6&1)<<4 | uint32(h>>2&1)<<5 | uint32(h>>5&1)<<6 | uint32(h>>3&0x3)<<7 | uint32(h>>12&1)<<9
	return signExtend(v, 10)
}

func cLuiImm(h uint16) int64 {
	v := uint32(h>>2&0x1f)<<12 | uint32(h>>12&1)<<17
	return signExtend(v, 18)
}

func cJImm(h uint16) int64 {
	v := uint32(h>>3&0x7)<<1 | uint32(h>>11&1)<<4 | uint32(h>>2&1)<<5 | uint32(h>>7&1)<<6 |
		uint32(h>>6&1)<<7 | uint32(h>>9&0x3)<<8 | uint32(h>>8&1)<<10 | uint32(h>>12&1)<<11
	return signExtend(v, 12)
}

func cBImm(h uint16) int64 {
	v := uint32(h>>3&0x3)<<1 | uint32(h>>10&0x3)<<3 | uint32(h>>2&1)<<5 | uint32(h>>5&0x3)<<6 | uint32(h>>12&1)<<8
	return signExtend(v, 9)
}

func cLwspImm(h uint16) uint32 {
	return uint32(h>>4&0x7)<<2 | uint32(h>>12&1)<<5 | uint32(h>>2&0x3)<<6
}

func cLdspImm(h uint16) uint32 {
	return uint32(h>>5&0x3)<<3 | uint32(h>>12&1)<<5 | uint32(h>>2&0x7)<<6
}

func cSwspImm(h uint16) uint32 {
	return uint32(h>>9&0xf)<<2 | uint32(h>>7&0x3)<<6
}

func cSdspImm(h uint16) uint32 {
	return uint32(h>>10&0x7)<<3 | uint32(h>>7&0x7)<<6
}
