//go:build riscv64

// Package guest is the runtime shim linked into every contract: the Go
// analogue of original_source's eth-riscv-runtime crate. It is meant to be
// cross-compiled with TinyGo for a freestanding riscv64 target
// (tinygo build -target=riscv64 -scheduler=none -gc=none), exactly as the
// original crate is a #![no_std] Rust crate built for
// riscv64imac-unknown-none-elf: no goroutines, no OS, just the syscall ABI
// and a dispatcher calling into user contract methods.
package guest

// rawEcall issues the single environment-call instruction the bridge
// traps on, with num in t0 and up to six arguments in a0-a5. It always
// reports back four result registers (a0-a3); callers that only need
// fewer simply ignore the rest. Implemented in syscall_riscv64.s using
// the same register-named mnemonics (T0, A0..A5) the Go runtime itself
// uses for raw riscv64 syscalls, the idiomatic equivalent of
// original_source's `asm!("ecall", in("t0") ..., in("a0") ...)`.
//
// This file (and its asm counterpart) only build for GOARCH=riscv64, the
// sole target rawEcall has a real implementation for; syscall_other.go
// supplies a panicking stand-in everywhere else so `go build ./...` /
// `go vet ./...` / `go test ./...` from the module root succeed on an
// ordinary amd64/arm64 dev machine without ever executing a contract.
//
//go:noescape
func rawEcall(num, a0, a1, a2, a3, a4, a5 uint64) (r0, r1, r2, r3 uint64)
