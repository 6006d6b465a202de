package codec

import (
	"bytes"
	"testing"
)

func TestCMMKIsIdentity(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0xFF, 0x00}

	decoded, err := DecodeFirmwareCMMK(data)
	if err != nil {
		t.Fatalf("DecodeFirmwareCMMK: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Errorf("DecodeFirmwareCMMK mutated data: got %x, want %x", decoded, data)
	}

	encoded, err := EncodeFirmwareCMMK(decoded)
	if err != nil {
		t.Fatalf("EncodeFirmwareCMMK: %v", err)
	}
	if !bytes.Equal(encoded, data) {
		t.Errorf("EncodeFirmwareCMMK mutated data: got %x, want %x", encoded, data)
	}
}

func TestCMMKDoesNotAliasInput(t *testing.T) {
	data := []byte{0xAA, 0xBB}
	decoded, _ := DecodeFirmwareCMMK(data)
	decoded[0] = 0x00
	if data[0] != 0xAA {
		t.Error("DecodeFirmwareCMMK aliased the input slice")
	}
}
