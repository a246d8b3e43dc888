package demohost

import (
	"bytes"
	"encoding/gob"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

func TestHostGobRoundTrip(t *testing.T) {
	h := New(0)
	contract := common.Address{19: 0x01}
	h.SStore(contract, uint256.NewInt(7), uint256.NewInt(1234))
	h.SetCode(contract, []byte{0xFF, 0x01, 0x02})
	h.RecordLog(contract, []byte("hello"))

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(h); err != nil {
		t.Fatalf("encode: %v", err)
	}

	got := New(0)
	if err := gob.NewDecoder(&buf).Decode(got); err != nil {
		t.Fatalf("decode: %v", err)
	}

	v, ok := got.SLoad(contract, uint256.NewInt(7))
	if !ok || v.Uint64() != 1234 {
		t.Fatalf("SLoad after round-trip = %v, %v, want 1234, true", v, ok)
	}
	code, ok := got.CodeAt(contract)
	if !ok || !bytes.Equal(code, []byte{0xFF, 0x01, 0x02}) {
		t.Fatalf("CodeAt after round-trip = %v, %v", code, ok)
	}
	logs := got.Logs()
	if len(logs) != 1 || string(logs[0].Data) != "hello" {
		t.Fatalf("Logs after round-trip = %+v", logs)
	}
	if got.GasLimit() != DefaultGasLimit {
		t.Fatalf("GasLimit after round-trip = %d, want %d", got.GasLimit(), DefaultGasLimit)
	}
}
