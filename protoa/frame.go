package protoa

import (
	"encoding/binary"
	"fmt"

	"github.com/vxfw/vxfw/crc16"
	"github.com/vxfw/vxfw/protocol"
)

// RespSuccess is the byte every successful family-A response carries at
// offset 0 of its payload.
const RespSuccess = 0x4F

// Frame is one 64-byte family-A request or response.
type Frame struct {
	Cmd     byte
	Subcmd  byte
	Payload [60]byte
}

// NewFrame builds a request Frame, copying data into the front of the
// payload and zero-filling the rest.
func NewFrame(cmd, subcmd byte, data []byte) (Frame, error) {
	if len(data) > len(Frame{}.Payload) {
		return Frame{}, fmt.Errorf("protoa: payload %d bytes exceeds frame capacity %d", len(data), len(Frame{}.Payload))
	}
	f := Frame{Cmd: cmd, Subcmd: subcmd}
	copy(f.Payload[:], data)
	return f, nil
}

// Encode serializes f to 64 bytes with the CRC-16/XMODEM of the frame
// (CRC field zeroed) written into bytes [2:4].
func (f Frame) Encode() []byte {
	buf := make([]byte, protocol.FrameSize)
	buf[0] = f.Cmd
	buf[1] = f.Subcmd
	copy(buf[4:], f.Payload[:])

	sum := crc16.Checksum(buf)
	binary.LittleEndian.PutUint16(buf[2:4], sum)
	return buf
}

// checkSuccess confirms that raw, a response read back over the GET_REPORT
// control pipe, carries RespSuccess at the given offset. Unlike a request
// frame, a family-A response is not a mirrored (cmd, subcmd, crc, payload)
// structure: it is raw data whose success byte sits at a command-specific
// offset (0 for most commands, 2 for CRC, which packs its 2-byte result
// ahead of it).
func checkSuccess(raw []byte, offset int) error {
	if len(raw) <= offset {
		return fmt.Errorf("protoa: response too short for success byte at offset %d", offset)
	}
	if raw[offset] != RespSuccess {
		return &protocol.ProtocolMismatchError{
			Op:       "family-A response",
			Expected: fmt.Sprintf("success byte 0x%02X", RespSuccess),
			Got:      fmt.Sprintf("0x%02X", raw[offset]),
		}
	}
	return nil
}
