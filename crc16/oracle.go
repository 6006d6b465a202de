package crc16

// InverseTable maps every possible CRC-16/XMODEM result of a single input
// byte back to that byte. The family-A bootloader's CRC command accepts an
// arbitrary address and size, including size 1; since Of1 is a bijection on
// byte values (see BuildInverseTable), a single CRC query per flash address
// is enough to recover the byte stored there without ever reading flash
// directly.
type InverseTable map[uint16]byte

// BuildInverseTable computes InverseTable and asserts the CRC-16/XMODEM
// single-byte bijection holds: 256 input bytes must produce 256 distinct
// outputs. If a collision is ever found the dump oracle is unsound and this
// panics rather than return a lossy table.
func BuildInverseTable() InverseTable {
	table := make(InverseTable, 256)
	for i := 0; i < 256; i++ {
		b := byte(i)
		crc := Of1(b)
		if _, ok := table[crc]; ok {
			panic("crc16: single-byte CRC-16/XMODEM is not a bijection: " +
				"bytes collide at the same checksum (dump oracle broken)")
		}
		table[crc] = b
	}
	return table
}

// Invert returns the byte whose CRC-16/XMODEM equals crc, using a table
// built by BuildInverseTable.
func (t InverseTable) Invert(crc uint16) (byte, bool) {
	b, ok := t[crc]
	return b, ok
}
