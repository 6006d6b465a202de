package protob

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"testing"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/protocol"
)

// fakeDevice simulates a family-B bootloader behind the Transport
// interface: every response echoes cmd/subcmd with a zero reserved field,
// writes advance an internal address pointer, and the CRC command covers
// the raw (encoded) bytes in flash, exactly as the real device does.
type fakeDevice struct {
	flash     []byte
	flashSize uint32
	writeAddr uint32

	// misreportWrite makes write responses echo a stale address,
	// simulating a dropped write.
	misreportWrite bool

	pending []byte
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		flash:     bytes.Repeat([]byte{0xFF}, 0x10000),
		flashSize: 0xA000,
	}
}

func (f *fakeDevice) respond(cmd, subcmd byte, payload []byte) {
	resp := make([]byte, protocol.FrameSize)
	resp[0], resp[1] = cmd, subcmd
	copy(resp[4:], payload)
	f.pending = resp
}

func (f *fakeDevice) Send(frame []byte) error {
	if len(frame) != protocol.FrameSize {
		return errors.New("fake: frame size")
	}
	cmd, subcmd := frame[0], frame[1]
	payload := frame[4:]

	switch cmd {
	case CmdReset:
		// The real device reboots without responding.
	case CmdRead:
		switch subcmd {
		case SubReadMode:
			f.respond(cmd, subcmd, []byte{0}) // bootloader
		case SubRead400, SubRead3C00:
			out := make([]byte, 4)
			binary.LittleEndian.PutUint32(out, f.flashSize)
			f.respond(cmd, subcmd, out)
		default:
			i := int(subcmd) - 0x20
			chunk := f.flash[i*60 : i*60+60]
			f.respond(cmd, subcmd, chunk)
		}
	case CmdFW:
		switch subcmd {
		case SubFWErase:
			addr := binary.LittleEndian.Uint32(payload[0:4])
			size := binary.LittleEndian.Uint32(payload[4:8])
			for i := addr; i < addr+size && i < uint32(len(f.flash)); i++ {
				f.flash[i] = 0xFF
			}
			f.respond(cmd, subcmd, nil)
		case SubFWSum:
			size := binary.LittleEndian.Uint32(payload[0:4])
			var sum uint32
			for off := uint32(Flash3C00Addr); off+4 <= Flash3C00Addr+size; off += protocol.FrameSize - 4 {
				sum += binary.LittleEndian.Uint32(f.flash[off : off+4])
			}
			out := make([]byte, 4)
			binary.LittleEndian.PutUint32(out, sum)
			f.respond(cmd, subcmd, out)
		case SubFWCRC:
			size := binary.LittleEndian.Uint32(payload[0:4])
			out := make([]byte, 4)
			binary.LittleEndian.PutUint32(out, crc32.ChecksumIEEE(f.flash[Flash3C00Addr:Flash3C00Addr+size]))
			f.respond(cmd, subcmd, out)
		}
	case CmdAddr:
		switch subcmd {
		case SubAddrSet:
			f.writeAddr = binary.LittleEndian.Uint32(payload[0:4])
			f.respond(cmd, subcmd, nil)
		case SubAddrGet:
			out := make([]byte, 4)
			binary.LittleEndian.PutUint32(out, f.writeAddr)
			f.respond(cmd, subcmd, out)
		}
	case CmdWrite:
		n := int(subcmd)
		copy(f.flash[f.writeAddr:], payload[:n])
		if !f.misreportWrite {
			f.writeAddr += uint32(n)
		}
		out := make([]byte, 4)
		binary.LittleEndian.PutUint32(out, f.writeAddr)
		f.respond(cmd, subcmd, out)
	default:
		return errors.New("fake: unknown command")
	}
	return nil
}

func (f *fakeDevice) Recv(size int) ([]byte, error) {
	if f.pending == nil {
		return nil, errors.New("fake: no response pending")
	}
	resp := f.pending
	f.pending = nil
	return resp, nil
}

func TestDecodeResponseEcho(t *testing.T) {
	raw := make([]byte, protocol.FrameSize)
	raw[0], raw[1] = CmdAddr, SubAddrGet

	if _, err := DecodeResponse(raw, CmdAddr, SubAddrGet); err != nil {
		t.Errorf("DecodeResponse rejected a matching echo: %v", err)
	}
	if _, err := DecodeResponse(raw, CmdAddr, SubAddrSet); err == nil {
		t.Error("DecodeResponse accepted a subcmd mismatch")
	}

	raw[2] = 0x12 // non-zero reserved field
	if _, err := DecodeResponse(raw, CmdAddr, SubAddrGet); err == nil {
		t.Error("DecodeResponse accepted a non-zero reserved field")
	}
}

func TestAddrSetGetFence(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, false)

	if err := d.AddrSet(0x5000); err != nil {
		t.Fatalf("AddrSet: %v", err)
	}
	got, err := d.AddrGet()
	if err != nil {
		t.Fatalf("AddrGet: %v", err)
	}
	if got != 0x5000 {
		t.Errorf("AddrGet = 0x%X, want 0x5000", got)
	}
}

func TestWriteAddressFence(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, false)

	if err := d.AddrSet(Flash3C00Addr); err != nil {
		t.Fatalf("AddrSet: %v", err)
	}

	// Each write's echoed address must advance by exactly the chunk size.
	chunk := make([]byte, protocol.PacketSize)
	for i := 0; i < 4; i++ {
		if err := d.Write(chunk); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
	}
	if dev.writeAddr != Flash3C00Addr+4*protocol.PacketSize {
		t.Errorf("device write address = 0x%X", dev.writeAddr)
	}
}

func TestWriteFenceCatchesDroppedWrite(t *testing.T) {
	dev := newFakeDevice()
	dev.misreportWrite = true
	d := New(dev, false)

	if err := d.AddrSet(Flash3C00Addr); err != nil {
		t.Fatalf("AddrSet: %v", err)
	}
	err := d.Write(make([]byte, protocol.PacketSize))
	var mismatch *protocol.ProtocolMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("err = %v, want ProtocolMismatchError", err)
	}
}

func TestFlashRoundTrip(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, false)

	plain := make([]byte, 8*protocol.PacketSize)
	for i := range plain {
		plain[i] = byte(i * 3)
	}

	if err := d.Flash(plain, "V1.30", nil); err != nil {
		t.Fatalf("Flash: %v", err)
	}

	stored := dev.flash[Flash3C00Addr : Flash3C00Addr+len(plain)]
	dec, err := codec.DecodeFirmwareB(stored)
	if err != nil {
		t.Fatalf("DecodeFirmwareB: %v", err)
	}
	if !bytes.Equal(dec, plain) {
		t.Error("flash contents do not decode back to the plaintext image")
	}

	// Version record at flash offset 0 with the magic block at 0xB0.
	if got := binary.LittleEndian.Uint32(dev.flash[0:4]); got != 5 {
		t.Errorf("version length = %d, want 5", got)
	}
	magic := binary.LittleEndian.Uint32(dev.flash[0xB0:0xB4])
	if magic&0x3FFFF != versionMagicBase {
		t.Errorf("magic word low bits = 0x%X, want 0x%X", magic&0x3FFFF, versionMagicBase)
	}
}

func TestFlashCMMKStoresPlaintext(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, true)

	plain := make([]byte, 4*protocol.PacketSize)
	for i := range plain {
		plain[i] = byte(i)
	}
	if err := d.Flash(plain, "V1", nil); err != nil {
		t.Fatalf("Flash: %v", err)
	}
	if !bytes.Equal(dev.flash[Flash3C00Addr:Flash3C00Addr+len(plain)], plain) {
		t.Error("CMMK flash contents are not stored in the clear")
	}
}

func TestFlashRejectsOversizedImage(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, false)

	plain := make([]byte, int(dev.flashSize)+4)
	err := d.Flash(plain, "V1", nil)
	var sizeErr *protocol.SizeExceededError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("err = %v, want SizeExceededError", err)
	}
}

func TestFlashRejectsLongVersion(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, false)

	long := make([]byte, 0x79)
	for i := range long {
		long[i] = 'v'
	}
	if err := d.Flash(make([]byte, protocol.PacketSize), string(long), nil); err == nil {
		t.Error("Flash accepted an over-long version string")
	}
}

func TestHostSumQuirk(t *testing.T) {
	// The device sums only the first 4-byte word of every 60-byte chunk.
	data := make([]byte, 120)
	binary.LittleEndian.PutUint32(data[0:4], 10)
	binary.LittleEndian.PutUint32(data[4:8], 0xFFFF) // ignored by the quirk
	binary.LittleEndian.PutUint32(data[60:64], 32)

	if got := HostSum(data); got != 42 {
		t.Errorf("HostSum = %d, want 42", got)
	}
}

func TestSumMatchesHostSum(t *testing.T) {
	dev := newFakeDevice()
	d := New(dev, true)

	plain := make([]byte, 4*protocol.PacketSize)
	for i := range plain {
		plain[i] = byte(i * 11)
	}
	if err := d.Flash(plain, "V1", nil); err != nil {
		t.Fatalf("Flash: %v", err)
	}

	got, err := d.Sum(uint32(len(plain)))
	if err != nil {
		t.Fatalf("Sum: %v", err)
	}
	if want := HostSum(plain); got != want {
		t.Errorf("device sum = %d, host sum = %d", got, want)
	}
}
