package installer

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

// utf16String decodes a UTF-16LE field, stopping at the first NUL code
// unit. Trailing garbage after the NUL is vendor padding and is ignored.
func utf16String(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+1 < len(b); i += 2 {
		u := binary.LittleEndian.Uint16(b[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}

// asciiString decodes a fixed-size char field, stopping at the first NUL.
func asciiString(b []byte) string {
	if i := strings.IndexByte(string(b), 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}

// outputName builds the on-disk firmware file name from its parts, joined
// with dashes and with spaces replaced by underscores.
func outputName(parts ...string) string {
	name := strings.Join(parts, "-") + ".bin"
	return strings.ReplaceAll(name, " ", "_")
}
