package guest

import "encoding/binary"

// Address is a 20-byte account address, the guest-side counterpart of
// go-ethereum's common.Address used on the host. The guest runtime is its
// own compilation target and does not import go-ethereum.
type Address [20]byte

// Bytes satisfies Key for use as a Mapping key.
func (a Address) Bytes() []byte { return a[:] }

// Uint64Key adapts a plain uint64 for use as a Mapping key, little-endian,
// matching every other fixed-width value the syscall ABI moves.
type Uint64Key uint64

// Bytes satisfies Key.
func (k Uint64Key) Bytes() []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(k))
	return b[:]
}
