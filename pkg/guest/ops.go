package guest

import "unsafe"

// Numbered ops mirror internal/syscall's frozen ABI; the guest side has no
// import path back to the host module (it is a separate compilation
// target), so the numbers are repeated here and must be kept in lockstep.
const (
	opReturn    = 0
	opSLoad     = 1
	opSStore    = 2
	opCall      = 3
	opRevert    = 4
	opCaller    = 5
	opKeccak256 = 6
)

func ptrLen(b []byte) (ptr, length uint64) {
	if len(b) == 0 {
		return 0, 0
	}
	return uint64(uintptr(unsafe.Pointer(&b[0]))), uint64(len(b))
}

// Return ends the contract call successfully with output as the return
// data. Like the bridge it traps to, it never returns control to the
// caller.
func Return(output []byte) {
	ptr, length := ptrLen(output)
	rawEcall(opReturn, ptr, length, 0, 0, 0, 0)
}

// Revert aborts the contract call. It passes no output of its own; the
// bridge reports the revert with 4 zero bytes of output. It never returns.
func Revert() {
	rawEcall(opRevert, 0, 0, 0, 0, 0, 0)
}

// SLoad reads one storage slot of the calling contract.
func SLoad(key uint64) uint64 {
	r0, _, _, _ := rawEcall(opSLoad, key, 0, 0, 0, 0, 0)
	return r0
}

// SStore writes one storage slot of the calling contract.
func SStore(key, value uint64) {
	rawEcall(opSStore, key, value, 0, 0, 0, 0)
}

// Call invokes another contract, value wei attached, args as calldata. The
// first retLen bytes of the callee's return data are written into retBuf
// once the call resolves; retBuf may be nil (or shorter than the callee's
// actual output, in which case the output is truncated).
func Call(target Address, value uint64, args []byte, retBuf []byte) {
	argsPtr, argsLen := ptrLen(args)
	retPtr, retLen := ptrLen(retBuf)
	rawEcall(opCall, uint64(uintptr(unsafe.Pointer(&target[0]))), value, argsPtr, argsLen, retPtr, retLen)
}

// Caller returns the address that invoked the running contract.
func Caller() Address {
	r0, r1, r2, _ := rawEcall(opCaller, 0, 0, 0, 0, 0, 0)
	var a Address
	putBE64(a[0:8], r0)
	putBE64(a[8:16], r1)
	var tail [8]byte
	putBE64(tail[:], r2)
	copy(a[16:20], tail[:4])
	return a
}

// Keccak256 hashes data and returns the 32-byte digest. The bridge packs
// the digest across the four result registers as big-endian u64 limbs, so
// decoding here must match with putBE64, not a little-endian unpack.
func Keccak256(data []byte) [32]byte {
	ptr, length := ptrLen(data)
	r0, r1, r2, r3 := rawEcall(opKeccak256, ptr, length, 0, 0, 0, 0)
	var out [32]byte
	putBE64(out[0:8], r0)
	putBE64(out[8:16], r1)
	putBE64(out[16:24], r2)
	putBE64(out[24:32], r3)
	return out
}

func putBE64(b []byte, v uint64) {
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
}
