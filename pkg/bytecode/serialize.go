package bytecode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// FormatVersion is the current bytecode artifact version. Increment when
// making incompatible changes to the instruction set or encoding. The format
// is a cache artifact, not a compatibility surface.
const FormatVersion uint16 = 1

// FormatMagic identifies a serialized program: "RRBC" (RickRoll ByteCode).
var FormatMagic = []byte{'R', 'R', 'B', 'C'}

// Serialize encodes the program for storage. Layout:
//
//	[magic:4] [version:2 BE] [cbor body]
func (p *Program) Serialize() ([]byte, error) {
	body, err := cbor.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encoding program: %w", err)
	}
	buf := make([]byte, 0, 6+len(body))
	buf = append(buf, FormatMagic...)
	buf = binary.BigEndian.AppendUint16(buf, FormatVersion)
	buf = append(buf, body...)
	return buf, nil
}

// Deserialize decodes a program produced by Serialize.
func Deserialize(data []byte) (*Program, error) {
	if len(data) < 6 {
		return nil, fmt.Errorf("bytecode too short: need at least 6 bytes, got %d", len(data))
	}
	if !bytes.Equal(data[0:4], FormatMagic) {
		return nil, fmt.Errorf("invalid bytecode magic: expected %q, got %q", FormatMagic, data[0:4])
	}
	version := binary.BigEndian.Uint16(data[4:6])
	if version > FormatVersion {
		return nil, fmt.Errorf("bytecode version %d is newer than supported version %d", version, FormatVersion)
	}
	p := NewProgram()
	if err := cbor.Unmarshal(data[6:], p); err != nil {
		return nil, fmt.Errorf("decoding program: %w", err)
	}
	if p.Funcs == nil {
		p.Funcs = make(map[string]*Function)
	}
	return p, nil
}
