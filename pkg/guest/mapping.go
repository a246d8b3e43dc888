package guest

import "encoding/binary"

// Key is anything a Mapping can hash into a storage slot.
type Key interface {
	Bytes() []byte
}

// Mapping is a keyed view over contract storage, the guest-side analogue
// of original_source/eth-riscv-runtime's Slot/Mapping helpers. Every
// Mapping in a contract is given a distinct id so that otherwise-colliding
// keys across mappings land on different slots.
type Mapping[K Key] struct {
	id uint64
}

// NewMapping returns a Mapping bound to id. Ids are not assigned
// automatically: each mapping field needs its own distinct id from the
// caller, and a zero-value Mapping uses id 0.
func NewMapping[K Key](id uint64) Mapping[K] {
	return Mapping[K]{id: id}
}

func (m Mapping[K]) slot(key K) uint64 {
	var idBytes [8]byte
	binary.LittleEndian.PutUint64(idBytes[:], m.id)
	buf := append(append([]byte{}, key.Bytes()...), idBytes[:]...)
	hash := Keccak256(buf)
	return binary.LittleEndian.Uint64(hash[0:8])
}

// Get reads the value stored under key.
func (m Mapping[K]) Get(key K) uint64 {
	return SLoad(m.slot(key))
}

// Set writes value under key.
func (m Mapping[K]) Set(key K, value uint64) {
	SStore(m.slot(key), value)
}
