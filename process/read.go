package process

import (
	"encoding/binary"
	"fmt"
)

// PointerSize is the word size of 64-bit targets
const PointerSize = ProcessMemorySize(8)

// ReadUnsigned reads a little-endian unsigned integer of size bytes (1, 2, 4 or 8) at addr.
// On failure the value is zero and err says why; nothing is read into uninitialized state.
func ReadUnsigned(mem MemoryReader, addr ProcessMemoryAddress, size ProcessMemorySize) (uint64, error) {
	switch size {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidReadSize, size)
	}

	data, err := mem.ReadMemory(addr, size)
	if err != nil {
		return 0, err
	}
	if ProcessMemorySize(len(data)) < size {
		return 0, fmt.Errorf("short read at %s: %d of %d bytes", addr.ToString(), len(data), size)
	}

	switch size {
	case 1:
		return uint64(data[0]), nil
	case 2:
		return uint64(binary.LittleEndian.Uint16(data)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(data)), nil
	default:
		return binary.LittleEndian.Uint64(data), nil
	}
}

// ReadPointer reads a pointer of the given width at addr
func ReadPointer(mem MemoryReader, addr ProcessMemoryAddress, width ProcessMemorySize) (ProcessMemoryAddress, error) {
	v, err := ReadUnsigned(mem, addr, width)
	if err != nil {
		return 0, err
	}
	return ProcessMemoryAddress(v), nil
}
