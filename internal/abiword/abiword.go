// Package abiword implements the fixed-width word codec the generated
// contract dispatcher uses to decode calldata arguments and encode return
// values. It is intentionally not a full Solidity ABI (no dynamic types,
// no tuples beyond a flat argument list): it moves 8-byte integers,
// 20-byte addresses and 1-byte bools across the syscall/calldata
// boundary, word by word, little-endian.
//
// This package is imported from both sides of the bridge: the host
// module (internal/bridge, internal/demohost, cmd/r55vm) and the
// TinyGo-freestanding guest binaries cmd/r55gen generates dispatchers
// for. It therefore cannot depend on go-ethereum or anything else that
// assumes an operating system is present — Address is a plain [20]byte,
// the same shape pkg/guest.Address uses, and callers on the host side
// convert to/from common.Address at the boundary.
package abiword

import (
	"encoding/binary"
	"fmt"
)

// WordSizeUint64 and WordSizeAddress are the encoded widths of an 8-byte
// little-endian uint64 and a 20-byte address (a Bool is encoded as 1 byte).
// Unlike Solidity's 32-byte words, slots here are exactly as wide as the
// value they carry; the dispatcher knows each parameter's width from the
// generated method signature, not from a fixed stride.
const (
	WordSizeUint64  = 8
	WordSizeAddress = 20
)

// Address is the 20-byte account address word shape, matching
// pkg/guest.Address and go-ethereum's common.Address byte-for-byte
// without importing either.
type Address [WordSizeAddress]byte

// ErrShortCalldata is returned when a decode reads past the end of the
// supplied buffer.
var ErrShortCalldata = fmt.Errorf("abiword: calldata too short")

// Decoder reads successive fixed-width words from a calldata buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder wraps buf (typically calldata with the 4-byte selector
// already consumed) for sequential word decoding.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Uint64 decodes the next 8-byte little-endian word.
func (d *Decoder) Uint64() (uint64, error) {
	if d.pos+WordSizeUint64 > len(d.buf) {
		return 0, ErrShortCalldata
	}
	v := binary.LittleEndian.Uint64(d.buf[d.pos : d.pos+WordSizeUint64])
	d.pos += WordSizeUint64
	return v, nil
}

// Address decodes the next 20-byte address word.
func (d *Decoder) Address() (Address, error) {
	if d.pos+WordSizeAddress > len(d.buf) {
		return Address{}, ErrShortCalldata
	}
	var a Address
	copy(a[:], d.buf[d.pos:d.pos+WordSizeAddress])
	d.pos += WordSizeAddress
	return a, nil
}

// Bool decodes a single byte, non-zero meaning true.
func (d *Decoder) Bool() (bool, error) {
	if d.pos+1 > len(d.buf) {
		return false, ErrShortCalldata
	}
	v := d.buf[d.pos] != 0
	d.pos++
	return v, nil
}

// Remaining reports how many bytes are left unread.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// Encoder appends fixed-width words to an output buffer, mirroring
// Decoder's word shapes so a round-trip through Encoder then Decoder is
// lossless.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an empty Encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Uint64(v uint64) *Encoder {
	var b [WordSizeUint64]byte
	binary.LittleEndian.PutUint64(b[:], v)
	e.buf = append(e.buf, b[:]...)
	return e
}

func (e *Encoder) Address(a Address) *Encoder {
	e.buf = append(e.buf, a[:]...)
	return e
}

func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		e.buf = append(e.buf, 1)
	} else {
		e.buf = append(e.buf, 0)
	}
	return e
}

// Bytes returns the encoded buffer.
func (e *Encoder) Bytes() []byte {
	return e.buf
}
