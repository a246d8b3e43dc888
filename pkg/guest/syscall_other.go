//go:build !riscv64

package guest

// rawEcall has no real implementation outside GOARCH=riscv64: there is no
// ecall trap to issue, and no bridge on the other end of it. This stand-in
// exists solely so the package (and examples/erc20, which imports it)
// builds, vets, and tests on an ordinary dev machine; calling it from a
// binary not built with TinyGo's riscv64 target is a programming error.
func rawEcall(num, a0, a1, a2, a3, a4, a5 uint64) (r0, r1, r2, r3 uint64) {
	panic("guest: rawEcall has no implementation outside GOARCH=riscv64 (build with tinygo -target=riscv64)")
}
