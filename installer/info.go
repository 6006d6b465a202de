package installer

import (
	"bytes"
	"encoding/binary"
)

// SectionInfo is the decoded per-section info block maaV102/105/106
// installers place after each firmware section. It mirrors the layout of
// the device's own version page: a UTF-16 version string up front, numeric
// chip fields at 0x78, and the target VID/PID at 0x90. It is diagnostic
// metadata only and is never written to disk.
type SectionInfo struct {
	Version string
	Fields  [6]uint32
	VID     uint16
	PID     uint16
}

// minimum info-section length covering every field parseInfoSection reads.
const infoSectionMinSize = 0x94

// parseInfoSection decodes a package-transform-decoded info block. A block
// whose version length reads as all-FF comes from erased flash and yields
// the version "CLEARED", matching what the device itself would report.
func parseInfoSection(data []byte) SectionInfo {
	var info SectionInfo
	if len(data) < infoSectionMinSize {
		return info
	}

	if bytes.Equal(data[:4], []byte{0xFF, 0xFF, 0xFF, 0xFF}) {
		info.Version = "CLEARED"
	} else {
		// The length field counts the whole record, so the string spans
		// [4, vlen); a length under 4 means no string at all.
		vlen := int(binary.LittleEndian.Uint32(data[:4]))
		if vlen > 60 {
			vlen = 60
		}
		if vlen > 4 {
			info.Version = utf16String(data[4:vlen])
		}
	}

	for i := range info.Fields {
		off := 0x78 + 4*i
		info.Fields[i] = binary.LittleEndian.Uint32(data[off : off+4])
	}
	info.VID = binary.LittleEndian.Uint16(data[0x90:0x92])
	info.PID = binary.LittleEndian.Uint16(data[0x92:0x94])
	return info
}
