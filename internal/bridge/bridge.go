// Package bridge is the host execution bridge (C5): it drives an
// internal/riscv.CPU per emulated EVM frame, servicing each syscall
// against a Host and relaying nested calls back to the outer EVM. It is
// grounded in original_source/r55/src/exec.rs's handle_register /
// execute_riscv, adapted from revm's handler-register extension points
// (which Go has no equivalent of in this corpus) to a plain method
// surface a caller wires into whatever outer EVM it has.
package bridge

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"

	"github.com/r55-labs/r55vm/internal/log"
	"github.com/r55-labs/r55vm/internal/riscv"
	"github.com/r55-labs/r55vm/internal/syscall"
)

// guestMagic is the leading byte that marks bytecode as an emulated guest
// image; bytecode without this prefix is left to the outer EVM's stock
// interpreter.
const guestMagic = 0xFF

// destinyRange is the pending ReturnDataDestiny: a DRAM range awaiting the
// result of a suspended Call.
type destinyRange struct {
	lo, hi uint64
}

// frameCtx is one entry of the context stack: either an emulated guest
// frame (cpu != nil) or a passthrough marker for a frame the outer EVM's
// stock interpreter should run (emulated == false).
type frameCtx struct {
	emulated bool
	cpu      *riscv.CPU
	setupErr error

	target common.Address
	caller common.Address

	destiny *destinyRange
}

// Bridge holds the per-transaction context stack. It mirrors the outer
// EVM's frame depth and is owned by a single handler installation, per
// spec's concurrency model: it is not safe for concurrent use.
type Bridge struct {
	stack []*frameCtx
}

// New returns an empty Bridge.
func New() *Bridge {
	return &Bridge{}
}

// OnFrameCreate inspects newly-resolved frame bytecode and pushes a
// context entry: an emulated guest frame when bytecode starts with the
// 0xFF magic byte, a passthrough marker otherwise. target/caller identify
// the frame's contract address and its caller, threaded through to the
// Caller syscall and to any nested Call the frame issues.
func (b *Bridge) OnFrameCreate(target, caller common.Address, bytecode, input []byte) {
	depth := len(b.stack)
	if len(bytecode) == 0 || bytecode[0] != guestMagic {
		b.stack = append(b.stack, &frameCtx{emulated: false})
		logFrame("create-passthrough", depth, target)
		return
	}

	cpu, err := riscv.Setup(bytecode[1:], input)
	b.stack = append(b.stack, &frameCtx{
		emulated: true,
		cpu:      cpu,
		setupErr: err,
		target:   target,
		caller:   caller,
	})
	logFrame("create", depth, target)
}

// Execute drains pending syscalls from the frame at the top of the
// context stack until it terminates (Return/Revert, which pops the
// stack) or suspends on a nested Call (which leaves the frame on the
// stack for resumption). resumeData is the callee output available this
// entry, used to service a pending destiny from a previous Call; pass nil
// when there is none.
//
// ErrNotEmulated is returned when the top frame is a passthrough marker:
// the caller should run its own stock interpreter instead.
func (b *Bridge) Execute(h Host, resumeData []byte) (Action, error) {
	if len(b.stack) == 0 {
		return Action{}, ErrEmptyStack
	}
	top := b.stack[len(b.stack)-1]
	if !top.emulated {
		return Action{}, ErrNotEmulated
	}
	if top.setupErr != nil {
		b.popTop()
		return Action{Kind: ActionRevert}, nil
	}

	if top.destiny != nil {
		d := top.destiny
		top.destiny = nil
		n := d.hi - d.lo
		if uint64(len(resumeData)) < n {
			n = uint64(len(resumeData))
		}
		if n > 0 {
			// Partial outputs leave the tail untouched, not zero-filled.
			if err := top.cpu.Mem.Write(d.lo, resumeData[:n]); err != nil {
				b.popTop()
				return Action{Kind: ActionRevert}, nil
			}
		}
	}

	for {
		trap, err := top.cpu.Run()
		if err != nil || trap.Kind != riscv.TrapEnvCall {
			// Any non-ecall trap (illegal instruction, access fault) is
			// GuestFault: fatal, collapses the frame to an empty revert.
			b.popTop()
			return Action{Kind: ActionRevert}, nil
		}

		// ECALL does not auto-advance PC (it traps directly to the
		// bridge, which stands in for a trap handler); advance past the
		// always-4-byte ecall instruction before servicing it, so a
		// resumed or continued frame doesn't re-trap on the same ecall.
		top.cpu.PC += 4

		action, suspended, terminal := b.dispatch(top, h)
		if suspended {
			logFrame("suspend", len(b.stack)-1, top.target)
			// Frame stays on the stack awaiting resumption.
			return action, nil
		}
		if terminal {
			logFrame(action.Kind.String(), len(b.stack)-1, top.target)
			b.popTop()
			return action, nil
		}
		// Syscall handled in place (SLoad/SStore/Caller/Keccak256); keep
		// stepping the same frame.
	}
}

func (b *Bridge) popTop() {
	b.stack = b.stack[:len(b.stack)-1]
}

func logFrame(event string, depth int, target common.Address) {
	if log.L == nil {
		return
	}
	log.L.Frame(event, depth, target.Hex())
}

func logSyscall(pc uint64, depth int, name, detail string) {
	if log.L == nil {
		return
	}
	log.L.Syscall(pc, depth, name, detail)
}

func logHostDenied(name string, pc uint64) {
	if log.L == nil {
		return
	}
	log.L.HostDenied(name, pc)
}

// dispatch services one ecall trap. terminal reports the frame ended
// (Return/Revert/unknown-syscall/host-denied); suspended reports a Call
// action the caller must resume later.
func (b *Bridge) dispatch(f *frameCtx, h Host) (action Action, suspended, terminal bool) {
	cpu := f.cpu
	num := syscall.Num(cpu.GetX(riscv.RegT0))
	depth := len(b.stack) - 1
	pc := cpu.PC - 4 // the ecall instruction this trap serviced

	switch num {
	case syscall.Return:
		offset := cpu.GetX(riscv.RegA0)
		size := cpu.GetX(riscv.RegA1)
		var out []byte
		if size != 0 {
			data, err := cpu.Mem.Read(offset, size)
			if err != nil {
				return Action{Kind: ActionRevert}, false, true
			}
			out = data
		}
		logSyscall(pc, depth, num.String(), fmt.Sprintf("size=%d", len(out)))
		return Action{Kind: ActionReturn, Output: out}, false, true

	case syscall.SLoad:
		key := new(uint256.Int).SetUint64(cpu.GetX(riscv.RegA0))
		value, ok := h.SLoad(f.target, key)
		if !ok {
			logHostDenied(num.String(), pc)
			return Action{Kind: ActionRevert}, false, true
		}
		logSyscall(pc, depth, num.String(), fmt.Sprintf("key=0x%x value=0x%x", key, value))
		cpu.SetX(riscv.RegA0, value.Uint64())
		return Action{}, false, false

	case syscall.SStore:
		key := new(uint256.Int).SetUint64(cpu.GetX(riscv.RegA0))
		value := new(uint256.Int).SetUint64(cpu.GetX(riscv.RegA1))
		h.SStore(f.target, key, value)
		logSyscall(pc, depth, num.String(), fmt.Sprintf("key=0x%x value=0x%x", key, value))
		return Action{}, false, false

	case syscall.Call:
		addrBytes, err := cpu.Mem.Read(cpu.GetX(riscv.RegA0), 20)
		if err != nil {
			return Action{Kind: ActionRevert}, false, true
		}
		value := cpu.GetX(riscv.RegA1)
		argsOffset := cpu.GetX(riscv.RegA2)
		argsSize := cpu.GetX(riscv.RegA3)
		retOffset := cpu.GetX(riscv.RegA4)
		retSize := cpu.GetX(riscv.RegA5)

		input, err := cpu.Mem.Read(argsOffset, argsSize)
		if err != nil {
			return Action{Kind: ActionRevert}, false, true
		}

		f.destiny = &destinyRange{lo: retOffset, hi: retOffset + retSize}

		req := &CallRequest{
			Target:       common.BytesToAddress(addrBytes),
			Caller:       f.target,
			Value:        uint256.NewInt(value),
			Input:        input,
			GasLimit:     h.GasLimit(),
			ReturnOffset: retOffset,
			ReturnSize:   retSize,
		}
		logSyscall(pc, depth, num.String(), fmt.Sprintf("target=%s value=%s", req.Target.Hex(), req.Value))
		return Action{Kind: ActionCall, Call: req}, true, false

	case syscall.Revert:
		logSyscall(pc, depth, num.String(), "")
		return Action{Kind: ActionRevert, Output: make([]byte, 4)}, false, true

	case syscall.Caller:
		addr := f.caller.Bytes() // 20 bytes, big-endian address
		cpu.SetX(riscv.RegA0, beUint64(addr[0:8]))
		cpu.SetX(riscv.RegA1, beUint64(addr[8:16]))
		var tail [8]byte
		copy(tail[:4], addr[16:20])
		cpu.SetX(riscv.RegA2, beUint64(tail[:]))
		logSyscall(pc, depth, num.String(), f.caller.Hex())
		return Action{}, false, false

	case syscall.Keccak256:
		offset := cpu.GetX(riscv.RegA0)
		size := cpu.GetX(riscv.RegA1)
		var data []byte
		if size != 0 {
			var err error
			data, err = cpu.Mem.Read(offset, size)
			if err != nil {
				return Action{Kind: ActionRevert}, false, true
			}
		}
		hash := sha3.NewLegacyKeccak256()
		hash.Write(data)
		sum := hash.Sum(nil)
		cpu.SetX(riscv.RegA0, beUint64(sum[0:8]))
		cpu.SetX(riscv.RegA1, beUint64(sum[8:16]))
		cpu.SetX(riscv.RegA2, beUint64(sum[16:24]))
		cpu.SetX(riscv.RegA3, beUint64(sum[24:32]))
		logSyscall(pc, depth, num.String(), fmt.Sprintf("len=%d", len(data)))
		return Action{}, false, false

	default:
		logHostDenied(num.String(), pc)
		return Action{Kind: ActionRevert}, false, true
	}
}

func beUint64(b []byte) uint64 {
	var v uint64
	for i := 0; i < 8; i++ {
		v = v<<8 | uint64(b[i])
	}
	return v
}
