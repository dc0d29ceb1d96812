package vm

import "encoding/binary"

// Memory region bases and the default data region size. Addresses are
// offsets into an owned byte region rather than host pointers: a Go slice
// cannot be safely treated as an arbitrary machine address. The bases are
// spaced far enough apart that a realistically sized program never causes
// them to overlap.
const (
	CodeBase   = 0x00001000
	RODataBase = 0x00100000
	DataBase   = 0x00200000

	DefaultDataSize = 64 * 1024 * 1024 // 64 MiB, heap+stack
)

// MemoryPermission is a per-region read/write/execute bitset.
type MemoryPermission byte

const (
	PermNone    MemoryPermission = 0
	PermRead    MemoryPermission = 1 << 0
	PermWrite   MemoryPermission = 1 << 1
	PermExecute MemoryPermission = 1 << 2
)

// Memory owns the three independent byte regions: code (read and execute,
// loaded once), data (heap+stack, read-write), and rodata (read-only,
// loaded once).
type Memory struct {
	Code   []byte
	ROData []byte
	Data   []byte
}

// NewMemory allocates a Memory with a zero-filled data region of the given
// size. Code and ROData start empty until Load fills them.
func NewMemory(dataSize int) *Memory {
	if dataSize <= 0 {
		dataSize = DefaultDataSize
	}
	return &Memory{Data: make([]byte, dataSize)}
}

// region locates the byte slice and permission set owning addr, along with
// the offset of addr within that slice.
func (m *Memory) region(addr uint64) (buf []byte, offset uint64, perm MemoryPermission, ok bool) {
	switch {
	case addr >= CodeBase && addr < CodeBase+uint64(len(m.Code)):
		return m.Code, addr - CodeBase, PermRead | PermExecute, true
	case addr >= RODataBase && addr < RODataBase+uint64(len(m.ROData)):
		return m.ROData, addr - RODataBase, PermRead, true
	case addr >= DataBase && addr < DataBase+uint64(len(m.Data)):
		return m.Data, addr - DataBase, PermRead | PermWrite, true
	default:
		return nil, 0, PermNone, false
	}
}

// inBounds reports whether a n-byte access starting at addr lies entirely
// within one owned region with the requested permission.
func (m *Memory) inBounds(addr uint64, n int, need MemoryPermission) bool {
	buf, off, perm, ok := m.region(addr)
	if !ok || perm&need != need {
		return false
	}
	return off+uint64(n) <= uint64(len(buf))
}

// ReadBytes reads n bytes at addr from any readable region: code, rodata,
// or data.
func (m *Memory) ReadBytes(addr uint64, n int) ([]byte, bool) {
	buf, off, perm, ok := m.region(addr)
	if !ok || perm&PermRead == 0 || off+uint64(n) > uint64(len(buf)) {
		return nil, false
	}
	return buf[off : off+uint64(n)], true
}

// WriteBytes writes src into the data region at addr. Writes outside the
// data region (rodata, code, or out of range) fail.
func (m *Memory) WriteBytes(addr uint64, src []byte) bool {
	buf, off, perm, ok := m.region(addr)
	if !ok || perm&PermWrite == 0 || off+uint64(len(src)) > uint64(len(buf)) {
		return false
	}
	copy(buf[off:off+uint64(len(src))], src)
	return true
}

// ReadUint8/16/32/64 and WriteUint8/16/32/64 decode/encode little-endian
// values at a guest address, made explicit rather than relying on native
// byte order.

func (m *Memory) ReadUint8(addr uint64) (uint8, bool) {
	b, ok := m.ReadBytes(addr, 1)
	if !ok {
		return 0, false
	}
	return b[0], true
}

func (m *Memory) ReadUint16(addr uint64) (uint16, bool) {
	b, ok := m.ReadBytes(addr, 2)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint16(b), true
}

func (m *Memory) ReadUint32(addr uint64) (uint32, bool) {
	b, ok := m.ReadBytes(addr, 4)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint32(b), true
}

func (m *Memory) ReadUint64(addr uint64) (uint64, bool) {
	b, ok := m.ReadBytes(addr, 8)
	if !ok {
		return 0, false
	}
	return binary.LittleEndian.Uint64(b), true
}

func (m *Memory) WriteUint8(addr uint64, v uint8) bool {
	return m.WriteBytes(addr, []byte{v})
}

func (m *Memory) WriteUint16(addr uint64, v uint16) bool {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	return m.WriteBytes(addr, b[:])
}

func (m *Memory) WriteUint32(addr uint64, v uint32) bool {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return m.WriteBytes(addr, b[:])
}

func (m *Memory) WriteUint64(addr uint64, v uint64) bool {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return m.WriteBytes(addr, b[:])
}

// FetchWord reads the 32-bit instruction word at addr from the code
// region only; it does not fall through to data or rodata.
func (m *Memory) FetchWord(addr uint64) (Word, bool) {
	if addr < CodeBase || addr+4 > CodeBase+uint64(len(m.Code)) {
		return 0, false
	}
	off := addr - CodeBase
	return binary.LittleEndian.Uint32(m.Code[off : off+4]), true
}
