package installer

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/progress"
	"github.com/vxfw/vxfw/protocol"
)

// KBP installers keep their firmware at a fixed file offset rather than
// stacking it against the trailer.
const kbpFirmwareOffset = 0x54000

// kbp trailer field offsets: the per-file key seed occupies the first 4
// bytes, the firmware length sits at 4, the product name at 0xB8.
const (
	kbpNameOffset = 0xB8
	kbpNameSize   = 32
)

// extractKBP decodes a KBP (CYKB-bootloader) updater: derive the per-file
// key from the trailer head, decode the trailer with the "strings"
// schedule and the firmware with the "firmware" schedule, then run the
// firmware through the family-A codec.
func (e *Extractor) extractKBP(data []byte) (*Result, error) {
	if len(data) < kbpTrailerSize {
		return nil, fmt.Errorf("installer: file shorter (%d bytes) than the kbp trailer (%d bytes)", len(data), kbpTrailerSize)
	}

	encStrs := data[len(data)-kbpTrailerSize:]
	key := codec.KBPDeriveKey(encStrs)
	e.cfg.Logger.Debug("kbp key derived", "key", fmt.Sprintf("%08X", key))

	strs := codec.KBPDecrypt(encStrs, key, true)
	if !bytes.Equal(strs[len(strs)-4:], []byte("lins")) {
		return nil, &protocol.SignatureMismatchError{Format: "kbp_cykb"}
	}

	name := asciiString(strs[kbpNameOffset : kbpNameOffset+kbpNameSize])
	fwLen := int(binary.LittleEndian.Uint32(strs[4:8]))
	if kbpFirmwareOffset+fwLen > len(data) {
		return nil, fmt.Errorf("installer: kbp firmware (%d bytes at %#x) exceeds file size (%d bytes)", fwLen, kbpFirmwareOffset, len(data))
	}

	fw := codec.KBPDecrypt(data[kbpFirmwareOffset:kbpFirmwareOffset+fwLen], key, false)

	dec, err := codec.DecodeFirmwareA(fw)
	if err != nil {
		return nil, fmt.Errorf("installer: decode kbp firmware: %w", err)
	}
	check, err := codec.EncodeFirmwareA(dec)
	if err != nil {
		return nil, fmt.Errorf("installer: re-encode kbp firmware: %w", err)
	}
	if !bytes.Equal(check, fw) {
		return nil, &protocol.SelfTestFailureError{Section: name}
	}

	e.cfg.Logger.Info("extracted firmware", "name", name, "size", len(dec))
	e.cfg.Progress(progress.Progress{
		Phase:       progress.PhaseExtracting,
		CurrentItem: 1,
		TotalItems:  1,
		Percentage:  100,
	})

	return &Result{
		Product:   name,
		Firmwares: []Firmware{{Name: outputName(name), Data: dec}},
	}, nil
}
