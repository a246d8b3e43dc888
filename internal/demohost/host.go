// Package demohost is a minimal, self-contained bridge.Host implementation
// and driver loop — not a real EVM, just enough state (per-contract
// storage, a code registry, a log sink) to run the bridge end to end. It
// is what demohost's own driver tests exercise the Bridge against when a
// scenario needs more than one frame, and what cmd/r55vm's demo
// subcommand drives.
package demohost

import (
	"bytes"
	"encoding/gob"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// DefaultGasLimit is the GasLimit reported to every frame; demohost does
// not meter gas, it just needs a value to hand back for the Call
// syscall's caller-visible gas limit.
const DefaultGasLimit = 30_000_000

// LogEntry is one record appended via a Call against bridge.LogSinkAddress.
type LogEntry struct {
	Emitter common.Address
	Data    []byte
}

// Host is an in-memory bridge.Host: per-contract 64-bit-keyed storage
// slots (the syscall ABI only ever carries a 64-bit key/value in
// registers; demohost widens to uint256 only because that's what the
// Host interface carries), a code registry keyed by address, and a log
// sink.
type Host struct {
	storage  map[common.Address]map[uint64]*uint256.Int
	code     map[common.Address][]byte
	logs     []LogEntry
	gasLimit uint64
}

// New returns an empty Host. gasLimit of 0 selects DefaultGasLimit.
func New(gasLimit uint64) *Host {
	if gasLimit == 0 {
		gasLimit = DefaultGasLimit
	}
	return &Host{
		storage:  make(map[common.Address]map[uint64]*uint256.Int),
		code:     make(map[common.Address][]byte),
		gasLimit: gasLimit,
	}
}

// SLoad reads one storage slot. An uninitialized slot reads as zero, the
// same convention as a real EVM's SLOAD — it is never denied.
func (h *Host) SLoad(contract common.Address, key *uint256.Int) (*uint256.Int, bool) {
	slots := h.storage[contract]
	if slots == nil {
		return uint256.NewInt(0), true
	}
	if v, ok := slots[key.Uint64()]; ok {
		return v, true
	}
	return uint256.NewInt(0), true
}

// SStore writes one storage slot.
func (h *Host) SStore(contract common.Address, key, value *uint256.Int) {
	slots := h.storage[contract]
	if slots == nil {
		slots = make(map[uint64]*uint256.Int)
		h.storage[contract] = slots
	}
	slots[key.Uint64()] = new(uint256.Int).Set(value)
}

// GasLimit satisfies bridge.Host.
func (h *Host) GasLimit() uint64 {
	return h.gasLimit
}

// SetCode installs bytecode (already magic-prefixed) at an address. Used
// directly by tests that skip the constructor-execution path; Driver.Deploy
// is the realistic entry point.
func (h *Host) SetCode(addr common.Address, image []byte) {
	h.code[addr] = image
}

// CodeAt returns the bytecode installed at addr, if any.
func (h *Host) CodeAt(addr common.Address) ([]byte, bool) {
	img, ok := h.code[addr]
	return img, ok
}

// RecordLog appends a log entry.
func (h *Host) RecordLog(emitter common.Address, data []byte) {
	h.logs = append(h.logs, LogEntry{Emitter: emitter, Data: append([]byte{}, data...)})
}

// Logs returns every recorded log entry, in emission order.
func (h *Host) Logs() []LogEntry {
	return h.logs
}

// hostSnapshot is Host's on-disk shape for cmd/r55vm's --state file: a
// gob encoding needs exported fields, and *uint256.Int doesn't gob-encode
// on its own, so storage values round-trip as big-endian byte slices.
type hostSnapshot struct {
	Storage  map[common.Address]map[uint64][]byte
	Code     map[common.Address][]byte
	Logs     []LogEntry
	GasLimit uint64
}

// GobEncode implements gob.GobEncoder so a Host can be written to a
// state-snapshot file directly.
func (h *Host) GobEncode() ([]byte, error) {
	snap := hostSnapshot{
		Storage:  make(map[common.Address]map[uint64][]byte, len(h.storage)),
		Code:     h.code,
		Logs:     h.logs,
		GasLimit: h.gasLimit,
	}
	for addr, slots := range h.storage {
		m := make(map[uint64][]byte, len(slots))
		for k, v := range slots {
			m[k] = v.Bytes()
		}
		snap.Storage[addr] = m
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(snap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder, the inverse of GobEncode.
func (h *Host) GobDecode(data []byte) error {
	var snap hostSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	h.code = snap.Code
	h.logs = snap.Logs
	h.gasLimit = snap.GasLimit
	h.storage = make(map[common.Address]map[uint64]*uint256.Int, len(snap.Storage))
	for addr, slots := range snap.Storage {
		m := make(map[uint64]*uint256.Int, len(slots))
		for k, v := range slots {
			m[k] = new(uint256.Int).SetBytes(v)
		}
		h.storage[addr] = m
	}
	return nil
}
