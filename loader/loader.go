// Package loader reads an assembled program image and installs it into a
// vm.VM's code and read-only data regions.
package loader

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/lookbusy1344/rv64-regvm/vm"
)

// magic identifies an rv64-regvm program image.
var magic = [4]byte{'R', 'V', 'V', 'M'}

const headerVersion = 1

// header is the fixed-size image header: magic, format version, then the
// byte lengths of the code and rodata sections that immediately follow it
// in the file.
type header struct {
	Magic     [4]byte
	Version   uint8
	Reserved  [3]byte // padding, keeps the struct 4-byte aligned
	CodeLen   uint32
	RODataLen uint32
}

const headerSize = 16

// Image is a decoded program: the code section feeds vm.Memory.Code, the
// rodata section feeds vm.Memory.ROData.
type Image struct {
	Code   []byte
	ROData []byte
}

// Encode packs code and rodata into the on-disk image format.
func Encode(code, rodata []byte) []byte {
	h := header{Magic: magic, Version: headerVersion, CodeLen: uint32(len(code)), RODataLen: uint32(len(rodata))}
	buf := new(bytes.Buffer)
	_ = binary.Write(buf, binary.LittleEndian, h)
	buf.Write(code)
	buf.Write(rodata)
	return buf.Bytes()
}

// Decode parses the on-disk image format produced by Encode. If data does
// not start with the magic header, it is treated as a headerless raw code
// image (no rodata) -- this lets a bare assembled .bin load directly.
func Decode(data []byte) (*Image, error) {
	if len(data) < headerSize || !bytes.Equal(data[:4], magic[:]) {
		return &Image{Code: data}, nil
	}

	var h header
	if err := binary.Read(bytes.NewReader(data[:headerSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("failed to parse image header: %w", err)
	}
	if h.Version != headerVersion {
		return nil, fmt.Errorf("unsupported image version %d", h.Version)
	}

	body := data[headerSize:]
	needed := int(h.CodeLen) + int(h.RODataLen)
	if len(body) < needed {
		return nil, fmt.Errorf("truncated image: need %d bytes after header, have %d", needed, len(body))
	}

	return &Image{
		Code:   body[:h.CodeLen],
		ROData: body[h.CodeLen : h.CodeLen+h.RODataLen],
	}, nil
}

// LoadFile reads and decodes a program image from path.
func LoadFile(path string) (*Image, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied program path
	if err != nil {
		return nil, fmt.Errorf("failed to read program file: %w", err)
	}
	return Decode(data)
}

// LoadProgramIntoVM reads the program image at path and installs it into
// machine, leaving the VM in vm.StateReady with PC at vm.CodeBase.
func LoadProgramIntoVM(machine *vm.VM, path string) error {
	img, err := LoadFile(path)
	if err != nil {
		return err
	}
	machine.Load(img.Code, img.ROData)
	return nil
}
