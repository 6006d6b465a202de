package protoa

import (
	"encoding/binary"
	"fmt"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/crc16"
	"github.com/vxfw/vxfw/progress"
	"github.com/vxfw/vxfw/protocol"
)

// Transport is the subset of the HID transport (package transport) the
// family-A driver needs: send a frame, and read a response either via the
// interrupt IN endpoint or, as family A does for every command response,
// via the control-pipe GET_REPORT fallback.
type Transport interface {
	Send(frame []byte) error
	Recv(size int) ([]byte, error)
	AltRecv(size int) ([]byte, error)
}

// eraseRetryBudget bounds how many times Erase retries AltRecv after a
// transport timeout before giving up; a real erase may legitimately take
// several polling rounds.
const eraseRetryBudget = 40

// Driver speaks the family-A bootloader protocol over a Transport.
type Driver struct {
	tp Transport
}

// New returns a Driver bound to tp.
func New(tp Transport) *Driver {
	return &Driver{tp: tp}
}

// send encodes and transmits one request frame.
func (d *Driver) send(cmd, subcmd byte, payload []byte) error {
	f, err := NewFrame(cmd, subcmd, payload)
	if err != nil {
		return err
	}
	return d.tp.Send(f.Encode())
}

// doAck sends a request and reads back its acknowledgement over the
// control-pipe GET_REPORT path, the pattern every family-A command except
// CRC and the data-returning commands uses: the response carries nothing
// but RespSuccess at offset 0.
func (d *Driver) doAck(cmd, subcmd byte, payload []byte) error {
	if err := d.send(cmd, subcmd, payload); err != nil {
		return err
	}
	raw, err := d.tp.AltRecv(protocol.FrameSize)
	if err != nil {
		return err
	}
	return checkSuccess(raw, 0)
}

// doRead sends a request whose data payload arrives over the interrupt IN
// endpoint, with a separate GET_REPORT read used only to confirm success.
// FLASH_READ and GET_INFO both follow this pattern.
func (d *Driver) doRead(cmd, subcmd byte, payload []byte, size int) ([]byte, error) {
	if err := d.send(cmd, subcmd, payload); err != nil {
		return nil, err
	}
	data, err := d.tp.Recv(size)
	if err != nil {
		return nil, err
	}
	raw, err := d.tp.AltRecv(protocol.FrameSize)
	if err != nil {
		return nil, err
	}
	if err := checkSuccess(raw, 0); err != nil {
		return nil, err
	}
	return data, nil
}

// Erase erases the flash pages covering [start, end). Erase responses may
// legitimately be delayed while the device is busy clearing pages; a
// transport timeout on the readback is treated as "still erasing" and
// retried up to eraseRetryBudget times before surfacing the error.
func (d *Driver) Erase(start, end uint32) error {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], start)
	binary.LittleEndian.PutUint32(payload[4:8], end)

	if err := d.send(CmdErase, 0, payload); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < eraseRetryBudget; attempt++ {
		raw, err := d.tp.AltRecv(protocol.FrameSize)
		if err != nil {
			lastErr = err
			continue
		}
		return checkSuccess(raw, 0)
	}
	return fmt.Errorf("protoa: erase: no response after %d retries: %w", eraseRetryBudget, lastErr)
}

// FlashVerify asks the device to confirm the 52 bytes at address match
// what was previously written. The request payload is (start, inclusive
// end, data) packed into the 60-byte frame payload.
func (d *Driver) FlashVerify(address uint32, data []byte) error {
	if len(data) != protocol.PacketSize {
		return fmt.Errorf("protoa: flash verify: data must be %d bytes, got %d", protocol.PacketSize, len(data))
	}
	payload := make([]byte, 8+protocol.PacketSize)
	binary.LittleEndian.PutUint32(payload[0:4], address)
	binary.LittleEndian.PutUint32(payload[4:8], address+uint32(len(data))-1)
	copy(payload[8:], data)

	if err := d.doAck(CmdFlash, SubFlashVerify, payload); err != nil {
		if _, ok := err.(*protocol.ProtocolMismatchError); ok {
			return &protocol.VerifyMismatchError{Address: address}
		}
		return err
	}
	return nil
}

// FlashWrite writes 52 bytes of (already encoded) firmware to address.
func (d *Driver) FlashWrite(address uint32, data []byte) error {
	if len(data) != protocol.PacketSize {
		return fmt.Errorf("protoa: flash write: data must be %d bytes, got %d", protocol.PacketSize, len(data))
	}
	payload := make([]byte, 8+protocol.PacketSize)
	binary.LittleEndian.PutUint32(payload[0:4], address)
	binary.LittleEndian.PutUint32(payload[4:8], address+uint32(len(data))-1)
	copy(payload[8:], data)

	return d.doAck(CmdFlash, SubFlashWrite, payload)
}

// FlashRead returns the 64 bytes the device holds at address. The data
// itself arrives over the interrupt IN endpoint; the GET_REPORT read that
// follows carries only the success confirmation.
func (d *Driver) FlashRead(address uint32) ([]byte, error) {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], address)
	binary.LittleEndian.PutUint32(payload[4:8], address+protocol.FrameSize)

	return d.doRead(CmdFlash, SubFlashRead, payload, protocol.FrameSize)
}

// FlashEraseCheck verifies that [start, end) reads as erased.
func (d *Driver) FlashEraseCheck(start, end uint32) error {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], start)
	binary.LittleEndian.PutUint32(payload[4:8], end)

	if err := d.doAck(CmdFlash, SubFlashEraseCheck, payload); err != nil {
		return fmt.Errorf("protoa: region [0x%08X, 0x%08X) is not erased: %w", start, end, err)
	}
	return nil
}

// CRC returns the CRC-16/XMODEM of size bytes starting at address. The
// command places no restriction on address or size, which is what makes
// the single-byte dump oracle in Dump possible. Unlike the other family-A
// responses, the CRC value occupies the first 2 bytes of the GET_REPORT
// reply and the success byte follows at offset 2.
func (d *Driver) CRC(address, size uint32) (uint16, error) {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], address)
	binary.LittleEndian.PutUint32(payload[4:8], size)

	if err := d.send(CmdCRC, 0, payload); err != nil {
		return 0, err
	}
	raw, err := d.tp.AltRecv(protocol.FrameSize)
	if err != nil {
		return 0, err
	}
	if err := checkSuccess(raw, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(raw[0:2]), nil
}

// GetInfo returns the device's flash layout and chip metadata. Like
// FlashRead, the struct arrives over the interrupt endpoint and the
// GET_REPORT read only confirms success.
func (d *Driver) GetInfo() (Info, error) {
	data, err := d.doRead(CmdGetInfo, 0, nil, protocol.FrameSize)
	if err != nil {
		return Info{}, err
	}
	return Info{
		AppAddr:      binary.LittleEndian.Uint32(data[0:4]),
		PageSize:     binary.LittleEndian.Uint32(data[4:8]),
		VersionAddr:  binary.LittleEndian.Uint32(data[8:12]),
		ChipMetadata: binary.LittleEndian.Uint32(data[12:16]),
	}, nil
}

// ResetSwitch reboots to the other firmware: application if currently in
// bootloader, bootloader otherwise. The device reboots immediately on
// receiving this command and sends no acknowledgement; callers must follow
// with device.Rediscover.
func (d *Driver) ResetSwitch() error {
	return d.send(CmdReset, SubResetSwitch, nil)
}

// ResetBoot reboots into the bootloader. As with ResetSwitch, no
// acknowledgement follows.
func (d *Driver) ResetBoot() error {
	return d.send(CmdReset, SubResetBoot, nil)
}

// Disconnect releases the USB pull-up and waits for the watchdog to reset
// the device; no response is expected.
func (d *Driver) Disconnect() error {
	f, err := NewFrame(CmdDisconnect, 0, nil)
	if err != nil {
		return err
	}
	return d.tp.Send(f.Encode())
}

// versionMagicWords are the fixed metadata words family A appends after the
// version string. The bootloader requires their presence but the
// specification does not pin their values beyond "fixed magic metadata";
// zero is used as the neutral placeholder (see DESIGN.md).
var versionMagicWords = [4]uint32{0, 0, 0, 0}

// EncodeVersionRecord builds the family-A version record: a 4-byte
// little-endian length, the UTF-8 version string zero-padded up to the next
// 4-byte boundary, then the fixed magic words.
func EncodeVersionRecord(version string) []byte {
	strBytes := []byte(version)
	l := len(strBytes)
	padded := 4 * ((l + 3) / 4)

	out := make([]byte, 4+padded+4*len(versionMagicWords))
	binary.LittleEndian.PutUint32(out[0:4], uint32(l))
	copy(out[4:4+l], strBytes)
	off := 4 + padded
	for _, w := range versionMagicWords {
		binary.LittleEndian.PutUint32(out[off:off+4], w)
		off += 4
	}
	return out
}

// maxVersionLen bounds the version string so its record, including magic
// words, fits between ver_addr and app_addr.
func maxVersionLen(verAddr, appAddr uint32) int {
	gap := int(appAddr) - int(verAddr)
	overhead := 4 + 4*len(versionMagicWords)
	if gap <= overhead {
		return 0
	}
	return gap - overhead
}

// Flash performs the full family-A flash workflow: size check, firmware
// encode, erase, write, verify, CRC check against the plaintext, version
// write, and reboot to application. Callers are responsible for getting
// the device into bootloader mode first (see package device).
func (d *Driver) Flash(plaintext []byte, version string, report progress.Callback) error {
	if report == nil {
		report = progress.Nop
	}

	info, err := d.GetInfo()
	if err != nil {
		return fmt.Errorf("protoa: flash: get info: %w", err)
	}

	if len(version) > maxVersionLen(info.VersionAddr, info.AppAddr) {
		return fmt.Errorf("protoa: flash: version string too long for the version/app region gap")
	}

	if uint32(len(plaintext)) > info.FlashSize()-info.AppAddr {
		return &protocol.SizeExceededError{Size: len(plaintext), MaxSize: int(info.FlashSize() - info.AppAddr)}
	}

	encoded, err := codec.EncodeFirmwareA(plaintext)
	if err != nil {
		return fmt.Errorf("protoa: flash: encode firmware: %w", err)
	}

	report(progress.Progress{Phase: progress.PhaseErasing})
	if err := d.Erase(info.VersionAddr, info.AppAddr+uint32(len(encoded))); err != nil {
		return fmt.Errorf("protoa: flash: erase: %w", err)
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
		addr := info.AppAddr + uint32(start)

		if err := d.FlashWrite(addr, block); err != nil {
			return fmt.Errorf("protoa: flash: write block %d: %w", i, err)
		}
		report(progress.Progress{
			Phase:       progress.PhaseWriting,
			CurrentItem: i + 1,
			TotalItems:  blockCount,
			Percentage:  100 * float64(i+1) / float64(blockCount),
		})
	}

	report(progress.Progress{Phase: progress.PhaseVerifying})
	for i := 0; i*protocol.PacketSize < len(encoded); i++ {
		start := i * protocol.PacketSize
		end := start + protocol.PacketSize
		if end > len(encoded) {
			end = len(encoded)
		}
		block := make([]byte, protocol.PacketSize)
		copy(block, encoded[start:end])
		addr := info.AppAddr + uint32(start)
		if err := d.FlashVerify(addr, block); err != nil {
			return fmt.Errorf("protoa: flash: verify block %d: %w", i, err)
		}
	}

	deviceCRC, err := d.CRC(info.AppAddr, uint32(len(encoded)))
	if err != nil {
		return fmt.Errorf("protoa: flash: crc: %w", err)
	}
	wantCRC := crc16.Checksum(plaintext)
	if deviceCRC != wantCRC {
		return &protocol.CRCMismatchError{Expected: uint32(wantCRC), Got: uint32(deviceCRC)}
	}

	if err := d.WriteVersion(info.VersionAddr, version); err != nil {
		return fmt.Errorf("protoa: flash: write version: %w", err)
	}

	report(progress.Progress{Phase: progress.PhaseRebooting})
	return d.ResetSwitch()
}

// WriteVersion writes a version record at address in 52-byte blocks,
// matching the flow used for firmware blocks.
func (d *Driver) WriteVersion(address uint32, version string) error {
	record := EncodeVersionRecord(version)
	for off := 0; off < len(record); off += protocol.PacketSize {
		end := off + protocol.PacketSize
		block := make([]byte, protocol.PacketSize)
		if end > len(record) {
			copy(block, record[off:])
		} else {
			copy(block, record[off:end])
		}
		if err := d.FlashWrite(address+uint32(off), block); err != nil {
			return err
		}
	}
	return nil
}

// Dump reads size bytes starting at address using the CRC oracle: the CRC
// command accepts size 1, and CRC-16/XMODEM over a single byte is a
// bijection (see crc16.BuildInverseTable), so one query per address
// recovers the byte stored there without a dedicated flash-read command.
func (d *Driver) Dump(address, size uint32, report progress.Callback) ([]byte, error) {
	if report == nil {
		report = progress.Nop
	}
	inv := crc16.BuildInverseTable()

	out := make([]byte, size)
	for i := uint32(0); i < size; i++ {
		sum, err := d.CRC(address+i, 1)
		if err != nil {
			return nil, fmt.Errorf("protoa: dump: crc at 0x%08X: %w", address+i, err)
		}
		b, ok := inv.Invert(sum)
		if !ok {
			return nil, fmt.Errorf("protoa: dump: no byte inverts to CRC 0x%04X at 0x%08X", sum, address+i)
		}
		out[i] = b

		if i%protocol.PacketSize == 0 {
			report(progress.Progress{
				Phase:       progress.PhaseReading,
				CurrentItem: int(i),
				TotalItems:  int(size),
				Percentage:  100 * float64(i) / float64(size),
			})
		}
	}
	return out, nil
}
