package protob

import (
	"fmt"

	"github.com/vxfw/vxfw/protocol"
)

// Frame is one 64-byte family-B request or response.
type Frame struct {
	Cmd     byte
	Subcmd  byte
	Payload [60]byte
}

// NewFrame builds a request Frame. The reserved third frame field is always
// zero for family B; it is not a checksum.
func NewFrame(cmd, subcmd byte, data []byte) (Frame, error) {
	if len(data) > len(Frame{}.Payload) {
		return Frame{}, fmt.Errorf("protob: payload %d bytes exceeds frame capacity %d", len(data), len(Frame{}.Payload))
	}
	f := Frame{Cmd: cmd, Subcmd: subcmd}
	copy(f.Payload[:], data)
	return f, nil
}

// Encode serializes f to 64 bytes: cmd, subcmd, two zero bytes, payload.
func (f Frame) Encode() []byte {
	buf := make([]byte, protocol.FrameSize)
	buf[0] = f.Cmd
	buf[1] = f.Subcmd
	copy(buf[4:], f.Payload[:])
	return buf
}

// DecodeResponse parses a 64-byte response and checks that it echoes the
// requested cmd/subcmd and carries zero in the reserved field.
func DecodeResponse(raw []byte, wantCmd, wantSubcmd byte) (Frame, error) {
	if len(raw) != protocol.FrameSize {
		return Frame{}, fmt.Errorf("protob: response must be %d bytes, got %d", protocol.FrameSize, len(raw))
	}
	f := Frame{Cmd: raw[0], Subcmd: raw[1]}
	copy(f.Payload[:], raw[4:])

	if f.Cmd != wantCmd || f.Subcmd != wantSubcmd {
		return f, &protocol.ProtocolMismatchError{
			Op:       "family-B response",
			Expected: fmt.Sprintf("cmd=0x%02X subcmd=0x%02X", wantCmd, wantSubcmd),
			Got:      fmt.Sprintf("cmd=0x%02X subcmd=0x%02X", f.Cmd, f.Subcmd),
		}
	}
	if raw[2] != 0 || raw[3] != 0 {
		return f, &protocol.ProtocolMismatchError{
			Op:       "family-B response",
			Expected: "zero reserved field",
			Got:      fmt.Sprintf("0x%02X%02X", raw[3], raw[2]),
		}
	}
	return f, nil
}
