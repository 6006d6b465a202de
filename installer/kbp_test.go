package installer

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/vxfw/vxfw/codec"
	"github.com/vxfw/vxfw/protocol"
)

// buildKBP assembles a synthetic KBP updater. The first 4 trailer bytes are
// left zero in plaintext so the key-derivation identity holds: with the
// strings schedule, encrypting zeros at positions 0..3 yields exactly
// key ^ 0x00010203 in the file, which is what KBPDeriveKey inverts.
func buildKBP(t *testing.T, plain []byte, name string, key uint32) []byte {
	t.Helper()

	strs := make([]byte, kbpTrailerSize)
	binary.LittleEndian.PutUint32(strs[4:8], uint32(len(plain)))
	copy(strs[kbpNameOffset:], name)
	copy(strs[len(strs)-4:], "lins")

	// XOR schedules are involutions, so encrypting is the same operation as
	// decrypting under the same key and mode.
	encStrs := codec.KBPDecrypt(strs, key, true)

	encA, err := codec.EncodeFirmwareA(plain)
	if err != nil {
		t.Fatalf("EncodeFirmwareA: %v", err)
	}
	encFw := codec.KBPDecrypt(encA, key, false)

	file := make([]byte, kbpFirmwareOffset+len(encFw))
	copy(file[kbpFirmwareOffset:], encFw)
	return append(file, encStrs...)
}

func TestExtractKBP(t *testing.T) {
	plain := testFirmware(t, 120)
	file := buildKBP(t, plain, "CYKB112 V103", 0xDEADBEEF)

	res, err := New().Extract(FormatKBP, file, false)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if len(res.Firmwares) != 1 {
		t.Fatalf("got %d firmwares, want 1", len(res.Firmwares))
	}
	fw := res.Firmwares[0]
	if fw.Name != "CYKB112_V103.bin" {
		t.Errorf("name = %q, want %q", fw.Name, "CYKB112_V103.bin")
	}
	if !bytes.Equal(fw.Data, plain) {
		t.Error("decoded firmware differs from original plaintext")
	}
}

func TestExtractKBPKeyDerivation(t *testing.T) {
	plain := testFirmware(t, 12)
	file := buildKBP(t, plain, "CYKB", 0x12345678)

	encStrs := file[len(file)-kbpTrailerSize:]
	if got := codec.KBPDeriveKey(encStrs); got != 0x12345678 {
		t.Errorf("derived key = %08X, want 12345678", got)
	}
}

func TestExtractKBPBadSignature(t *testing.T) {
	plain := testFirmware(t, 12)
	file := buildKBP(t, plain, "CYKB", 0xCAFEBABE)
	file[len(file)-1] ^= 0xFF

	_, err := New().Extract(FormatKBP, file, false)
	var sigErr *protocol.SignatureMismatchError
	if !errors.As(err, &sigErr) {
		t.Fatalf("err = %v, want SignatureMismatchError", err)
	}
}
