package bridge

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ActionKind is the outcome of a single Execute call: either the frame
// terminated (Return/Revert) or it suspended on a nested Call, handing
// control to the outer EVM until that call's result is fed back in via
// the resumeData argument of the next Bridge.Execute call.
type ActionKind int

const (
	ActionReturn ActionKind = iota
	ActionRevert
	ActionCall
)

func (k ActionKind) String() string {
	switch k {
	case ActionReturn:
		return "return"
	case ActionRevert:
		return "revert"
	case ActionCall:
		return "call"
	default:
		return "unknown"
	}
}

// CallRequest is the nested call a guest issued via the Call syscall. The
// outer EVM is expected to execute it (as a plain CALL, static=false) and
// feed the result back through Bridge.Execute's resumeData parameter on
// the next re-entry into this frame.
type CallRequest struct {
	Target       common.Address
	Caller       common.Address
	Value        *uint256.Int
	Input        []byte
	GasLimit     uint64
	ReturnOffset uint64
	ReturnSize   uint64
}

// Action is what Bridge.Execute yields for the outer EVM to act on.
type Action struct {
	Kind   ActionKind
	Output []byte       // valid for ActionReturn/ActionRevert
	Call   *CallRequest // valid for ActionCall
}

// LogSinkAddress is the pseudo-address pkg/guest.Log calls against. A
// driver resuming an ActionCall whose Target is this address should
// record Input as a log entry and resume the frame with an empty return
// rather than routing the call to another contract. It must stay in
// lockstep with pkg/guest.LogSinkAddress; the two packages compile for
// different targets and share no import path.
var LogSinkAddress = common.Address{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
}
