package bridge

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Host is the surface the bridge consumes from the outer EVM: storage
// access scoped to a contract address, plus the ambient transaction gas
// limit. It deliberately excludes "call" — a nested Call syscall is
// expressed as a suspended Action the outer EVM executes and resumes,
// never as a direct method on Host, matching spec's "no assumption about
// the outer EVM's concrete type beyond this surface."
type Host interface {
	// SLoad returns the value stored at (contract, key) and whether the
	// lookup succeeded. A false ok is HostDenied and reverts the frame.
	SLoad(contract common.Address, key *uint256.Int) (value *uint256.Int, ok bool)
	// SStore writes value at (contract, key). Warm/cold accounting is the
	// host's concern; the bridge ignores it.
	SStore(contract common.Address, key, value *uint256.Int)
	// GasLimit returns the active transaction's gas limit, threaded into
	// any CallRequest the bridge yields.
	GasLimit() uint64
}
