package device

import (
	"testing"

	"github.com/vxfw/vxfw/protocol"
)

func TestProductIDModeMath(t *testing.T) {
	tests := []struct {
		name     string
		class    Class
		wantBoot uint16
		wantApp  uint16
	}{
		{
			name:     "holtek family B",
			class:    Class{ProductID: 0x0167, BootMask: 0x1000},
			wantBoot: 0x1167,
			wantApp:  0x0167,
		},
		{
			name:     "cmmk low bit",
			class:    Class{ProductID: 0x003C, BootMask: 0x0001},
			wantBoot: 0x003D,
			wantApp:  0x003C,
		},
		{
			name:     "already in bootloader",
			class:    Class{ProductID: 0x1141, BootMask: 0x1000},
			wantBoot: 0x1141,
			wantApp:  0x0141,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.class.BootloaderProductID(); got != tt.wantBoot {
				t.Errorf("BootloaderProductID() = 0x%04X, want 0x%04X", got, tt.wantBoot)
			}
			if got := tt.class.ApplicationProductID(); got != tt.wantApp {
				t.Errorf("ApplicationProductID() = 0x%04X, want 0x%04X", got, tt.wantApp)
			}
		})
	}
}

func TestHandleExpectedProductID(t *testing.T) {
	class, ok := LookupExact(0x04D9, 0x0167)
	if !ok {
		t.Fatal("POK3R RGB missing from registry")
	}

	h := &Handle{Class: class, ProductID: 0x0167}
	if h.InBootloader() {
		t.Error("application-mode handle reports bootloader")
	}
	if got := h.ExpectedProductID(); got != 0x1167 {
		t.Errorf("ExpectedProductID() = 0x%04X, want 0x1167", got)
	}

	h.ProductID = 0x1167
	if !h.InBootloader() {
		t.Error("bootloader-mode handle reports application")
	}
	if got := h.ExpectedProductID(); got != 0x0167 {
		t.Errorf("ExpectedProductID() = 0x%04X, want 0x0167", got)
	}
}

func TestLookupMatchesBootloaderPIDs(t *testing.T) {
	// Lookup must match both mode variants of a known device.
	for _, pid := range []uint16{0x0141, 0x1141} {
		class, ok := Lookup(0x04D9, pid)
		if !ok {
			t.Errorf("Lookup(04D9, %04X) found nothing", pid)
			continue
		}
		if class.Name != "Vortex POK3R" {
			t.Errorf("Lookup(04D9, %04X) = %q", pid, class.Name)
		}
	}

	if _, ok := Lookup(0x04D9, 0x9999); ok {
		t.Error("Lookup matched an unknown product id")
	}
}

func TestRegistryFamilies(t *testing.T) {
	for _, c := range KnownDevices {
		switch c.Family {
		case protocol.FamilyA:
			if c.Usage != usageA {
				t.Errorf("%s: family-A device with usage 0x%02X", c.Name, c.Usage)
			}
			if c.Variant != protocol.VariantNone {
				t.Errorf("%s: family-A device with a variant", c.Name)
			}
		case protocol.FamilyB:
			if c.Usage != usageB {
				t.Errorf("%s: family-B device with usage 0x%02X", c.Name, c.Usage)
			}
			if c.Variant == protocol.VariantNone {
				t.Errorf("%s: family-B device without a variant", c.Name)
			}
			if c.Variant == protocol.VariantCMMK && c.BootMask != 0x0001 {
				t.Errorf("%s: CMMK device with boot mask 0x%04X", c.Name, c.BootMask)
			}
		}
		if c.BootMask&c.ProductID != 0 {
			t.Errorf("%s: application product id 0x%04X already has the boot bit set", c.Name, c.ProductID)
		}
	}
}
