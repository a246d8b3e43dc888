package guest

// Contract is implemented by generated dispatcher code (cmd/r55gen's
// output): Dispatch decodes the selector, routes to the matching method,
// and encodes its result as return data.
type Contract interface {
	Dispatch(calldata []byte) []byte
}

// panicking guards against a panic during unwind itself re-entering
// Revert and recursing forever, the Go equivalent of
// original_source/eth-riscv-runtime's IS_PANICKING static guard in its
// panic handler.
var panicking bool

// Main is the contract's sole entry point: it reads calldata, dispatches
// it, and ends the call with Return or, on any panic, Revert. It never
// returns, matching the guest's single-shot, single-threaded lifetime.
func Main(c Contract) {
	defer func() {
		if r := recover(); r != nil {
			if panicking {
				Revert()
				return
			}
			panicking = true
			Revert()
		}
	}()
	out := c.Dispatch(Calldata())
	Return(out)
}
