// Package syscall defines the numbered ABI between the RV64IMC guest and
// the host execution bridge. Numbers are frozen; new syscalls are appended,
// never renumbered or reused.
package syscall

import "fmt"

// Num identifies a syscall by its stable wire number, conveyed in register
// t0 (x5) before an ecall trap.
type Num uint32

// Syscall numbers, frozen per the catalog in the bridge specification.
const (
	Return    Num = 0
	SLoad     Num = 1
	SStore    Num = 2
	Call      Num = 3
	Revert    Num = 4
	Caller    Num = 5
	Keccak256 Num = 6
)

type entry struct {
	num  Num
	name string
}

// catalog is the closed enumeration. Order matches the wire numbers.
var catalog = [...]entry{
	{Return, "return"},
	{SLoad, "sload"},
	{SStore, "sstore"},
	{Call, "call"},
	{Revert, "revert"},
	{Caller, "caller"},
	{Keccak256, "keccak256"},
}

// String renders the syscall's text form, or "syscall(N)" if unknown.
func (n Num) String() string {
	for _, e := range catalog {
		if e.num == n {
			return e.name
		}
	}
	return fmt.Sprintf("syscall(%d)", uint32(n))
}

// Known reports whether n is a recognized syscall number.
func (n Num) Known() bool {
	for _, e := range catalog {
		if e.num == n {
			return true
		}
	}
	return false
}

// Parse resolves a text form back to its number. Returns false if the name
// is not in the catalog.
func Parse(name string) (Num, bool) {
	for _, e := range catalog {
		if e.name == name {
			return e.num, true
		}
	}
	return 0, false
}

// Diverges reports whether the syscall never returns control to the guest
// (return and revert both end the frame).
func (n Num) Diverges() bool {
	return n == Return || n == Revert
}
