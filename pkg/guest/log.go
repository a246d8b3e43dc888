package guest

// LogSinkAddress is a well-known pseudo-address: a Call targeting it
// carries no value and expects no return, and the driver resuming the
// suspended Action is expected to recognize it and record the input as a
// log entry rather than routing it to another contract frame. The 0xFF
// run mirrors the 0xFF guest-image magic byte the bridge itself looks
// for, keeping the convention visually distinct from any real deployed
// address.
var LogSinkAddress = Address{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFE,
}

// Log records data as a log entry by issuing a Call against
// LogSinkAddress. It does not wait for or inspect a return value.
func Log(data []byte) {
	Call(LogSinkAddress, 0, data, nil)
}
