package codec

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func TestFamilyBAllZeroYieldsKey(t *testing.T) {
	zero := make([]byte, PacketSizeA) // 52 bytes = 13 words, same size as an A packet
	decoded, err := DecodeFirmwareB(zero)
	if err != nil {
		t.Fatalf("DecodeFirmwareB: %v", err)
	}

	want := make([]byte, PacketSizeA)
	for i, key := range xorKeyB {
		binary.LittleEndian.PutUint32(want[i*4:], key)
	}

	if !bytes.Equal(decoded, want) {
		t.Errorf("decode(zeros) = %x, want %x", decoded, want)
	}
}

func TestFamilyBIsInvolution(t *testing.T) {
	data := make([]byte, 260)
	for i := range data {
		data[i] = byte(i * 3)
	}

	once, err := DecodeFirmwareB(data)
	if err != nil {
		t.Fatalf("DecodeFirmwareB: %v", err)
	}
	twice, err := DecodeFirmwareB(once)
	if err != nil {
		t.Fatalf("DecodeFirmwareB: %v", err)
	}
	if !bytes.Equal(twice, data) {
		t.Error("family-B codec is not its own inverse")
	}
}

func TestFamilyBRejectsUnalignedLength(t *testing.T) {
	if _, err := DecodeFirmwareB(make([]byte, 5)); err == nil {
		t.Error("expected error for length not a multiple of 4")
	}
}

func TestFamilyBCodecLaw(t *testing.T) {
	data := make([]byte, 520)
	for i := range data {
		data[i] = byte((i*11 + 5) % 256)
	}

	encoded, err := EncodeFirmwareB(data)
	if err != nil {
		t.Fatalf("EncodeFirmwareB: %v", err)
	}
	decoded, err := DecodeFirmwareB(encoded)
	if err != nil {
		t.Fatalf("DecodeFirmwareB: %v", err)
	}
	if !bytes.Equal(decoded, data) {
		t.Fatal("decode(encode(x)) != x")
	}
}
