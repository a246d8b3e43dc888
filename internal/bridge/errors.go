package bridge

import "errors"

// Sentinel errors naming the error taxonomy. Execute never returns any of
// them: every class, GuestRevert included, ends the frame as an
// ActionRevert (4 zero bytes of output for the revert syscall, empty
// output otherwise), and the Action does not say which class caused it.
var (
	// ErrBadImage covers ELF parse failures and out-of-bounds segments.
	ErrBadImage = errors.New("bridge: bad guest image")
	// ErrBadCalldata covers calldata the dispatcher could not decode.
	ErrBadCalldata = errors.New("bridge: bad calldata")
	// ErrBadSyscall covers an unknown syscall number or malformed arguments.
	ErrBadSyscall = errors.New("bridge: unknown or malformed syscall")
	// ErrHostDenied covers a storage lookup the host refused to service.
	ErrHostDenied = errors.New("bridge: host denied request")
	// ErrGuestFault covers any non-ecall emulator trap (illegal instruction,
	// out-of-range memory access).
	ErrGuestFault = errors.New("bridge: guest fault")
	// ErrGuestRevert is the explicit revert syscall, the guest's intentional
	// outcome rather than a failure; like the other classes it reaches the
	// caller only as an ActionRevert.
	ErrGuestRevert = errors.New("bridge: guest revert")
)

// ErrNotEmulated is returned by Execute when the top frame is not a guest
// image (no 0xFF prefix was seen at OnFrameCreate); the caller should run
// its own stock interpreter for this frame instead.
var ErrNotEmulated = errors.New("bridge: frame is not an emulated guest")

// ErrEmptyStack is returned by Execute when no frame has been pushed.
var ErrEmptyStack = errors.New("bridge: context stack is empty")
