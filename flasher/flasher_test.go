package flasher

import (
	"errors"
	"testing"

	"github.com/vxfw/vxfw/device"
	"github.com/vxfw/vxfw/protocol"
)

func TestVersionString(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
		want string
	}{
		{"plain", []byte("V1.17"), "V1.17"},
		{"nul padded", []byte("V1.17\x00\x00\x00"), "V1.17"},
		{"erased fill", []byte{0xFF, 0xFF, 0xFF}, "CLEARED"},
		{"empty", nil, "CLEARED"},
		{"nul then erased", []byte("V2\x00\xff\xff"), "V2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := versionString(tt.raw); got != tt.want {
				t.Errorf("versionString(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFlashRejectsEmptyFirmware(t *testing.T) {
	// The empty-image check must fire before any device traffic, so a
	// handle with no endpoint is enough.
	f := New(&device.Handle{})

	err := f.Flash(nil, "V1")
	var sizeErr *protocol.SizeExceededError
	if !errors.As(err, &sizeErr) {
		t.Fatalf("err = %v, want SizeExceededError", err)
	}
	if sizeErr.Size != 0 {
		t.Errorf("Size = %d, want 0", sizeErr.Size)
	}
}

func TestDumpUnsupportedForFamilyB(t *testing.T) {
	h := &device.Handle{Class: device.Class{Family: protocol.FamilyB}}
	if _, err := New(h).Dump(); err == nil {
		t.Fatal("Dump succeeded for a family-B device")
	}
}
