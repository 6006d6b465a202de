package crc16

import "testing"

func TestChecksumKnownVectors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want uint16
	}{
		{"empty", nil, 0x0000},
		{"single zero byte", []byte{0x00}, Of1(0x00)},
		{"123456789", []byte("123456789"), 0x31C3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Checksum(tt.data); got != tt.want {
				t.Errorf("Checksum(%v) = 0x%04X, want 0x%04X", tt.data, got, tt.want)
			}
		})
	}
}

func TestOf1MatchesChecksum(t *testing.T) {
	for i := 0; i < 256; i++ {
		b := byte(i)
		if got, want := Of1(b), Checksum([]byte{b}); got != want {
			t.Errorf("Of1(0x%02X) = 0x%04X, want 0x%04X", b, got, want)
		}
	}
}

func TestSingleByteBijection(t *testing.T) {
	seen := make(map[uint16]byte, 256)
	for i := 0; i < 256; i++ {
		b := byte(i)
		crc := Of1(b)
		if other, ok := seen[crc]; ok {
			t.Fatalf("CRC-16/XMODEM collision: byte 0x%02X and 0x%02X both produce 0x%04X", b, other, crc)
		}
		seen[crc] = b
	}
	if len(seen) != 256 {
		t.Fatalf("expected 256 distinct CRC values, got %d", len(seen))
	}
}

func TestBuildInverseTableRoundTrip(t *testing.T) {
	table := BuildInverseTable()
	if len(table) != 256 {
		t.Fatalf("expected inverse table of size 256, got %d", len(table))
	}
	for i := 0; i < 256; i++ {
		b := byte(i)
		crc := Of1(b)
		got, ok := table.Invert(crc)
		if !ok {
			t.Fatalf("Invert(0x%04X) not found for byte 0x%02X", crc, b)
		}
		if got != b {
			t.Errorf("Invert(0x%04X) = 0x%02X, want 0x%02X", crc, got, b)
		}
	}
}

func TestInvertUnknownChecksum(t *testing.T) {
	table := BuildInverseTable()
	// 0xFFFF is not CRC-16/XMODEM(init 0) of any single byte in practice;
	// guard against false positives by checking a value known absent.
	if _, ok := table.Invert(0xDEAD); ok {
		t.Skip("0xDEAD happens to be a valid single-byte CRC; not a useful negative case")
	}
}
