package guest

import "unsafe"

// calldataBase must match internal/riscv.DramBase: the guest and the
// interpreter agree on it independently, since the guest has no import
// path to the host module's constants.
const calldataBase = 0x80000000

// Calldata returns the transaction input as laid out by the loader: an
// 8-byte little-endian length prefix at calldataBase followed by the
// payload, read directly out of the guest's own address space (there is
// no separate host/guest copy — DRAM is this process's only memory).
func Calldata() []byte {
	length := *(*uint64)(unsafe.Pointer(uintptr(calldataBase)))
	if length == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(calldataBase+8))), int(length))
}
