package installer

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vxfw/vxfw/protocol"
)

// Trailer sizes, fixed by each format's metadata struct layout.
const (
	maajonsnTrailerSize = 0x4B8
	maav101TrailerSize  = 0x4BC
	maav102TrailerSize  = 0xB24
	maav105TrailerSize  = 0x2B58
	maav106TrailerSize  = 0x2C98
	kbpTrailerSize      = 588
)

// wchar field width shared by all maa formats: 0x104 UTF-16 code units.
const wideFieldSize = 0x104 * 2

// maaLayoutSize is the per-layout record size in maaV102/105/106.
const maaLayoutSize = 0x50

// section is one firmware section described by a trailer: its layout name,
// any per-section description/version strings the format carries, and the
// sizes of the obfuscated firmware and info blocks preceding the trailer.
type section struct {
	Desc           string // V105/V106 section description
	SectionVersion string // V105/V106 section version
	Layout         string
	LayoutVersion  string // maajonsn/V101 per-layout version
	FirmwareSize   int
	InfoSize       int
}

// trailer is the decoded metadata common to every maa-format installer.
type trailer struct {
	Desc     string
	Company  string
	Product  string
	Version  string
	Sections []section
}

// parseMaajonsn decodes the POK3R updater trailer: one firmware section,
// no info sections.
func parseMaajonsn(strs []byte) (trailer, error) {
	if len(strs) != maajonsnTrailerSize {
		return trailer{}, fmt.Errorf("installer: maajonsn trailer must be %d bytes, got %d", maajonsnTrailerSize, len(strs))
	}
	if !bytes.Equal(strs[len(strs)-10:len(strs)-1], []byte(".maajonsn")) {
		return trailer{}, &protocol.SignatureMismatchError{Format: "maajonsn"}
	}

	fwSize := int(binary.LittleEndian.Uint32(strs[1056:1060]))
	return trailer{
		Company: utf16String(strs[16 : 16+wideFieldSize]),
		Product: utf16String(strs[536 : 536+wideFieldSize]),
		Sections: []section{{
			Layout:        utf16String(strs[1060:1120]),
			LayoutVersion: asciiString(strs[1120:1132]),
			FirmwareSize:  fwSize,
		}},
	}, nil
}

// parseMaaV101 decodes the MK Pro S/L updater trailer: up to two layouts,
// each with its own version string, no info sections.
func parseMaaV101(strs []byte) (trailer, error) {
	if len(strs) != maav101TrailerSize {
		return trailer{}, fmt.Errorf("installer: maaV101 trailer must be %d bytes, got %d", maav101TrailerSize, len(strs))
	}
	if !bytes.Equal(strs[len(strs)-13:len(strs)-5], []byte(".maaV101")) {
		return trailer{}, &protocol.SignatureMismatchError{Format: "maav101"}
	}

	t := trailer{
		Company: utf16String(strs[16 : 16+wideFieldSize]),
		Product: utf16String(strs[536 : 536+wideFieldSize]),
	}
	const layoutSize = 72
	for i := 0; i < 2; i++ {
		off := 1056 + i*layoutSize
		fwSize := int(binary.LittleEndian.Uint32(strs[off : off+4]))
		if fwSize == 0 {
			continue
		}
		t.Sections = append(t.Sections, section{
			Layout:        utf16String(strs[off+4 : off+64]),
			LayoutVersion: asciiString(strs[off+64 : off+70]),
			FirmwareSize:  fwSize,
		})
	}
	return t, nil
}

// parseMaaV102 decodes the POK3R RGB / Vortex Core updater trailer: up to
// nine layouts, each followed by an info section of version_size bytes.
func parseMaaV102(strs []byte) (trailer, error) {
	if len(strs) != maav102TrailerSize {
		return trailer{}, fmt.Errorf("installer: maaV102 trailer must be %d bytes, got %d", maav102TrailerSize, len(strs))
	}
	if !bytes.Equal(strs[len(strs)-11:len(strs)-3], []byte(".maaV102")) {
		return trailer{}, &protocol.SignatureMismatchError{Format: "maav102"}
	}

	t := trailer{
		Desc:    utf16String(strs[38 : 38+wideFieldSize]),
		Company: utf16String(strs[558 : 558+wideFieldSize]),
		Product: utf16String(strs[1078 : 1078+wideFieldSize]),
		Version: utf16String(strs[1598 : 1598+wideFieldSize]),
	}
	for i := 0; i < 9; i++ {
		off := 2120 + i*maaLayoutSize
		fwSize := int(binary.LittleEndian.Uint32(strs[off : off+4]))
		if fwSize == 0 {
			continue
		}
		t.Sections = append(t.Sections, section{
			Layout:       utf16String(strs[off+8 : off+68]),
			FirmwareSize: fwSize,
			InfoSize:     int(binary.LittleEndian.Uint32(strs[off+4 : off+8])),
		})
	}
	return t, nil
}

// maaSectionBlock parses one V105/V106 section block: desc, version, and
// nine layout slots.
func maaSectionBlock(strs []byte, out *[]section) {
	desc := utf16String(strs[0:wideFieldSize])
	version := utf16String(strs[wideFieldSize : 2*wideFieldSize])
	for j := 0; j < 9; j++ {
		off := 2*wideFieldSize + j*maaLayoutSize
		fwSize := int(binary.LittleEndian.Uint32(strs[off : off+4]))
		if fwSize == 0 {
			continue
		}
		*out = append(*out, section{
			Desc:           desc,
			SectionVersion: version,
			Layout:         utf16String(strs[off+8 : off+68]),
			FirmwareSize:   fwSize,
			InfoSize:       int(binary.LittleEndian.Uint32(strs[off+4 : off+8])),
		})
	}
}

// sectionBlockSize is the V105/V106 per-section record size: two wide
// strings plus nine layout slots.
const sectionBlockSize = 2*wideFieldSize + 9*maaLayoutSize

// parseMaaV105V106 decodes the shared V105/V106 shape: five device slots,
// five section blocks, then the top-level strings. The two formats differ
// only in device-record size and signature.
func parseMaaV105V106(strs []byte, wantSize, deviceSize int, sig, format string) (trailer, error) {
	if len(strs) != wantSize {
		return trailer{}, fmt.Errorf("installer: %s trailer must be %d bytes, got %d", format, wantSize, len(strs))
	}
	if !bytes.Equal(strs[len(strs)-13:], []byte(sig)) {
		return trailer{}, &protocol.SignatureMismatchError{Format: format}
	}

	var t trailer
	sectionsOff := 5 * deviceSize
	for i := 0; i < 5; i++ {
		off := sectionsOff + i*sectionBlockSize
		maaSectionBlock(strs[off:off+sectionBlockSize], &t.Sections)
	}

	stringsOff := sectionsOff + 5*sectionBlockSize + 2
	t.Desc = utf16String(strs[stringsOff : stringsOff+wideFieldSize])
	t.Company = utf16String(strs[stringsOff+wideFieldSize : stringsOff+2*wideFieldSize])
	t.Product = utf16String(strs[stringsOff+2*wideFieldSize : stringsOff+3*wideFieldSize])
	t.Version = utf16String(strs[stringsOff+3*wideFieldSize : stringsOff+4*wideFieldSize])
	return t, nil
}

func parseMaaV105(strs []byte) (trailer, error) {
	return parseMaaV105V106(strs, maav105TrailerSize, 40, ".maaV105\x00\x00\x00\x00\x00", "maav105")
}

func parseMaaV106(strs []byte) (trailer, error) {
	return parseMaaV105V106(strs, maav106TrailerSize, 104, ".maaV106\x00\x00\x00\x00\x00", "maav106")
}
