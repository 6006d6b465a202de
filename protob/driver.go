package protob

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"time"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/progress"
	"github.com/vxfw/vxfw/protocol"
)

// Transport is the subset of the HID transport (package transport) the
// family-B driver needs. Unlike family A, every family-B response arrives
// on the interrupt IN endpoint; AltRecv is not used.
type Transport interface {
	Send(frame []byte) error
	Recv(size int) ([]byte, error)
}

// sumCrcDelay is the small pause before reading back a sum/crc response,
// giving the device time to finish the accumulation.
const sumCrcDelay = 100 * time.Millisecond

// Driver speaks the family-B bootloader protocol over a Transport.
type Driver struct {
	tp      Transport
	cmmk    bool // true selects the identity firmware codec (CMMK variant)
	writeAt uint32
}

// New returns a Driver bound to tp. cmmk selects the identity firmware
// codec used by CMMK-variant silicon instead of the Holtek word-XOR codec.
func New(tp Transport, cmmk bool) *Driver {
	return &Driver{tp: tp, cmmk: cmmk}
}

func (d *Driver) do(cmd, subcmd byte, payload []byte) (Frame, error) {
	f, err := NewFrame(cmd, subcmd, payload)
	if err != nil {
		return Frame{}, err
	}
	if err := d.tp.Send(f.Encode()); err != nil {
		return Frame{}, err
	}
	raw, err := d.tp.Recv(protocol.FrameSize)
	if err != nil {
		return Frame{}, err
	}
	return DecodeResponse(raw, cmd, subcmd)
}

// reset sends a reboot command: bootloader, application, or disconnect.
// The device reboots immediately and sends no response; callers must
// follow with device.Rediscover.
func (d *Driver) reset(sub byte) error {
	return d.send(CmdReset, sub, nil)
}

func (d *Driver) ResetBootloader() error { return d.reset(SubResetBootloader) }
func (d *Driver) ResetApplication() error { return d.reset(SubResetApp) }
func (d *Driver) Disconnect() error       { return d.reset(SubResetDisconnect) }

// ReadMode returns true if the device reports being in bootloader mode.
func (d *Driver) ReadMode() (bool, error) {
	resp, err := d.do(CmdRead, SubReadMode, nil)
	if err != nil {
		return false, err
	}
	return resp.Payload[0] == 0, nil
}

// ReadBootInfo returns bootloader-side metadata from flash 0x400.
func (d *Driver) ReadBootInfo() (BootInfo, error) {
	resp, err := d.do(CmdRead, SubRead400, nil)
	if err != nil {
		return BootInfo{}, err
	}
	return BootInfo{BootloaderVersion: binary.LittleEndian.Uint32(resp.Payload[0:4])}, nil
}

// ReadAppInfo returns application-side metadata, including the device's
// reported flash size.
func (d *Driver) ReadAppInfo() (AppInfo, error) {
	resp, err := d.do(CmdRead, SubRead3C00, nil)
	if err != nil {
		return AppInfo{}, err
	}
	return AppInfo{FlashSize: binary.LittleEndian.Uint32(resp.Payload[0:4])}, nil
}

// ReadVersionChunk returns the i-th 60-byte chunk of the version page.
func (d *Driver) ReadVersionChunk(i int) ([]byte, error) {
	resp, err := d.do(CmdRead, versionChunkSubcmd(i), nil)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(resp.Payload))
	copy(out, resp.Payload[:])
	return out, nil
}

// Erase erases [addr, addr+size).
func (d *Driver) Erase(addr, size uint32) error {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], addr)
	binary.LittleEndian.PutUint32(payload[4:8], size)
	_, err := d.do(CmdFW, SubFWErase, payload)
	return err
}

// Sum reproduces the device's lossy "sum" verification: it accumulates one
// 32-bit word per 4-byte group requested, i.e. it reads only the first word
// of each 4-byte group rather than the whole chunk. Callers verifying
// against this command must mirror the quirk; CRC (below) is the sound
// check.
func (d *Driver) Sum(size uint32) (uint32, error) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, size)

	if err := d.send(CmdFW, SubFWSum, payload); err != nil {
		return 0, err
	}
	time.Sleep(sumCrcDelay)
	resp, err := d.recv(CmdFW, SubFWSum)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp.Payload[0:4]), nil
}

// HostSum mirrors the device's lossy sum over a host-side buffer split into
// 60-byte chunks: for each chunk, only the first 4-byte word contributes.
func HostSum(encoded []byte) uint32 {
	var sum uint32
	for off := 0; off < len(encoded); off += protocol.FrameSize - 4 {
		if off+4 > len(encoded) {
			break
		}
		sum += binary.LittleEndian.Uint32(encoded[off : off+4])
	}
	return sum
}

// CRC returns the CRC-32 of the encoded (still-obfuscated) bytes currently
// in flash over size bytes. This is the sound integrity check; Sum exists
// only for protocol compatibility with the device's own quirky verifier.
func (d *Driver) CRC(size uint32) (uint32, error) {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, size)

	if err := d.send(CmdFW, SubFWCRC, payload); err != nil {
		return 0, err
	}
	time.Sleep(sumCrcDelay)
	resp, err := d.recv(CmdFW, SubFWCRC)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp.Payload[0:4]), nil
}

func (d *Driver) send(cmd, subcmd byte, payload []byte) error {
	f, err := NewFrame(cmd, subcmd, payload)
	if err != nil {
		return err
	}
	return d.tp.Send(f.Encode())
}

func (d *Driver) recv(wantCmd, wantSubcmd byte) (Frame, error) {
	raw, err := d.tp.Recv(protocol.FrameSize)
	if err != nil {
		return Frame{}, err
	}
	return DecodeResponse(raw, wantCmd, wantSubcmd)
}

// AddrGet returns the device's current write address.
func (d *Driver) AddrGet() (uint32, error) {
	resp, err := d.do(CmdAddr, SubAddrGet, nil)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(resp.Payload[0:4]), nil
}

// AddrSet sets the device's write address and reads it back, asserting the
// readback matches: this fence is mandatory before the first Write.
func (d *Driver) AddrSet(addr uint32) error {
	payload := make([]byte, 4)
	binary.LittleEndian.PutUint32(payload, addr)
	if _, err := d.do(CmdAddr, SubAddrSet, payload); err != nil {
		return err
	}
	got, err := d.AddrGet()
	if err != nil {
		return err
	}
	if got != addr {
		return &protocol.ProtocolMismatchError{
			Op:       "protob address set/get fence",
			Expected: fmt.Sprintf("0x%08X", addr),
			Got:      fmt.Sprintf("0x%08X", got),
		}
	}
	d.writeAt = addr
	return nil
}

// Write writes a 52-byte chunk at the current write address and asserts the
// response's updated address equals current+len(chunk): the ordering fence
// that catches a dropped or duplicated write.
func (d *Driver) Write(chunk []byte) error {
	if len(chunk) != protocol.PacketSize {
		return fmt.Errorf("protob: write: chunk must be %d bytes, got %d", protocol.PacketSize, len(chunk))
	}
	resp, err := d.do(CmdWrite, byte(len(chunk)), chunk)
	if err != nil {
		return err
	}
	newAddr := binary.LittleEndian.Uint32(resp.Payload[0:4])
	want := d.writeAt + uint32(len(chunk))
	if newAddr != want {
		return &protocol.ProtocolMismatchError{
			Op:       "protob write address fence",
			Expected: fmt.Sprintf("0x%08X", want),
			Got:      fmt.Sprintf("0x%08X", newAddr),
		}
	}
	d.writeAt = newAddr
	return nil
}

func (d *Driver) encodeFirmware(data []byte) ([]byte, error) {
	if d.cmmk {
		return codec.EncodeFirmwareCMMK(data)
	}
	return codec.EncodeFirmwareB(data)
}

// Flash performs the full family-B flash workflow: erase, address-set/get
// fence, chunked write with the per-write address fence, CRC-32 check
// against the encoded plaintext, version write, and reboot to application.
func (d *Driver) Flash(plaintext []byte, version string, report progress.Callback) error {
	if report == nil {
		report = progress.Nop
	}

	appInfo, err := d.ReadAppInfo()
	if err != nil {
		return fmt.Errorf("protob: flash: read app info: %w", err)
	}
	if uint32(len(plaintext)) > appInfo.FlashSize {
		return &protocol.SizeExceededError{Size: len(plaintext), MaxSize: int(appInfo.FlashSize)}
	}
	if len(version) > 0x78 {
		return fmt.Errorf("protob: flash: version string exceeds 0x78 bytes")
	}

	encoded, err := d.encodeFirmware(plaintext)
	if err != nil {
		return fmt.Errorf("protob: flash: encode firmware: %w", err)
	}

	report(progress.Progress{Phase: progress.PhaseErasing})
	if err := d.Erase(Flash3C00Addr, uint32(len(encoded))); err != nil {
		return fmt.Errorf("protob: flash: erase: %w", err)
	}

	if err := d.AddrSet(Flash3C00Addr); err != nil {
		return fmt.Errorf("protob: flash: address fence: %w", err)
	}

	blockCount := (len(encoded) + protocol.PacketSize - 1) / protocol.PacketSize
	for i := 0; i*protocol.PacketSize < len(encoded); i++ {
		start := i * protocol.PacketSize
		end := start + protocol.PacketSize
		if end > len(encoded) {
			end = len(encoded)
		}
		block := make([]byte, protocol.PacketSize)
		copy(block, encoded[start:end])

		if err := d.Write(block); err != nil {
			return fmt.Errorf("protob: flash: write block %d: %w", i, err)
		}
		report(progress.Progress{
			Phase:       progress.PhaseWriting,
			CurrentItem: i + 1,
			TotalItems:  blockCount,
			Percentage:  100 * float64(i+1) / float64(blockCount),
		})
	}

	report(progress.Progress{Phase: progress.PhaseVerifying})
	deviceCRC, err := d.CRC(uint32(len(encoded)))
	if err != nil {
		return fmt.Errorf("protob: flash: crc: %w", err)
	}
	wantCRC := crc32.ChecksumIEEE(encoded)
	if deviceCRC != wantCRC {
		return &protocol.CRCMismatchError{Expected: wantCRC, Got: deviceCRC}
	}

	if err := d.WriteVersion(version); err != nil {
		return fmt.Errorf("protob: flash: write version: %w", err)
	}

	report(progress.Progress{Phase: progress.PhaseRebooting})
	return d.ResetApplication()
}

// versionMagicWordCount is the number of 32-bit words in the family-B magic
// block at flash offset 0xB0.
const versionMagicWordCount = 15

// versionMagicBase is the fixed low-18-bit signature every word of the
// magic block after the count-encoding word must carry.
const versionMagicBase = 0x5AA5

// encodeVersionMagic builds the 15-word magic block required at offset
// 0xB0: each word's low 18 bits equal versionMagicBase, and the high bits
// encode the index of that word among the block (the count of preceding
// value words), per the device's expectations.
func encodeVersionMagic() [versionMagicWordCount]uint32 {
	var words [versionMagicWordCount]uint32
	for i := range words {
		words[i] = uint32(i)<<18 | versionMagicBase
	}
	return words
}

// EncodeVersionRecordB builds the family-B version record: a 4-byte
// little-endian length, the UTF-8 version string zero-padded to a 4-byte
// boundary, stored starting at flash offset 0, with the magic block placed
// at offset 0xB0.
func EncodeVersionRecordB(version string) []byte {
	strBytes := []byte(version)
	l := len(strBytes)

	const magicOffset = 0xB0
	total := magicOffset + 4*versionMagicWordCount

	out := make([]byte, total)
	binary.LittleEndian.PutUint32(out[0:4], uint32(l))
	copy(out[4:4+l], strBytes)

	words := encodeVersionMagic()
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[magicOffset+4*i:magicOffset+4*i+4], w)
	}
	return out
}

// WriteVersion writes the version record at flash offset 0, per-52-byte
// block. The erase call before this assumes page 0 holds only version data
// for known devices; see DESIGN.md.
func (d *Driver) WriteVersion(version string) error {
	record := EncodeVersionRecordB(version)
	if err := d.Erase(VersionAddr, uint32(len(record))); err != nil {
		return err
	}
	if err := d.AddrSet(VersionAddr); err != nil {
		return err
	}
	for off := 0; off < len(record); off += protocol.PacketSize {
		end := off + protocol.PacketSize
		block := make([]byte, protocol.PacketSize)
		if end > len(record) {
			copy(block, record[off:])
		} else {
			copy(block, record[off:end])
		}
		if err := d.Write(block); err != nil {
			return err
		}
	}
	return nil
}
