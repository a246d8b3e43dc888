package demohost

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"github.com/r55-labs/r55vm/internal/bridge"
)

// guestMagic mirrors internal/bridge's unexported guestMagic: the leading
// byte that marks an image as an emulated RV64IMC guest rather than
// passthrough bytecode. Duplicated here because demohost builds images
// from raw ELF bytes the same way a real deploy pipeline would.
const guestMagic = 0xFF

// ErrDeployReverted is returned when a contract's constructor frame
// reverted instead of returning runtime bytecode.
var ErrDeployReverted = errors.New("demohost: deploy constructor reverted")

// Driver runs one call to completion against a Host, resolving any nested
// Call actions the bridge suspends on: a Call to another deployed
// contract recurses into a fresh frame, a Call to bridge.LogSinkAddress is
// recorded as a log and resumed immediately with no output, and a Call to
// an address with no code resumes immediately with no output (the same
// no-op-on-EOA behavior a real CALL has).
type Driver struct {
	host *Host
}

// NewDriver returns a Driver over h.
func NewDriver(h *Host) *Driver {
	return &Driver{host: h}
}

// Deploy runs initcodeELF (an unprefixed RV64IMC ELF image) as a
// constructor frame against ctorInput, mirroring
// original_source/erc20/src/deploy.rs: the constructor's only job is to
// Return the runtime image's bytes, which Deploy then installs as addr's
// code. There is no separate code-size or value-transfer accounting here;
// demohost is not a real EVM.
func (d *Driver) Deploy(addr, deployer common.Address, initcodeELF, ctorInput []byte) ([]byte, error) {
	image := append([]byte{guestMagic}, initcodeELF...)
	output, reverted := d.run(addr, deployer, image, ctorInput)
	if reverted {
		return nil, ErrDeployReverted
	}
	d.host.SetCode(addr, append([]byte{guestMagic}, output...))
	return output, nil
}

// Call invokes addr's installed code with calldata from caller, running
// it to completion (including any nested calls) and reporting whether the
// outermost frame reverted.
func (d *Driver) Call(addr, caller common.Address, calldata []byte) (output []byte, reverted bool) {
	image, ok := d.host.CodeAt(addr)
	if !ok {
		return nil, false // calling an address with no code is a no-op, like a real CALL to an EOA
	}
	return d.run(addr, caller, image, calldata)
}

// run drives one frame (target/caller/image/input) to completion on a
// fresh Bridge, recursing into d.Call for any nested Call action.
func (d *Driver) run(target, caller common.Address, image, input []byte) (output []byte, reverted bool) {
	br := bridge.New()
	br.OnFrameCreate(target, caller, image, input)
	return d.resume(br, nil)
}

func (d *Driver) resume(br *bridge.Bridge, resumeData []byte) (output []byte, reverted bool) {
	action, err := br.Execute(d.host, resumeData)
	if err != nil {
		return nil, true
	}

	switch action.Kind {
	case bridge.ActionReturn:
		return action.Output, false
	case bridge.ActionRevert:
		return action.Output, true
	case bridge.ActionCall:
		req := action.Call
		if req.Target == bridge.LogSinkAddress {
			d.host.RecordLog(req.Caller, req.Input)
			return d.resume(br, nil)
		}
		childOut, childReverted := d.Call(req.Target, req.Caller, req.Input)
		if childReverted {
			childOut = nil
		}
		return d.resume(br, childOut)
	default:
		return nil, true
	}
}
