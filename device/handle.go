package device

import (
	"github.com/google/gousb"

	"github.com/vxfw/vxfw/transport"
)

// Handle is one opened device: its class, current product ID, and the
// claimed HID transport endpoint. It is created by enumeration, mutated
// only by Replace after a reboot, and closed at scope exit.
type Handle struct {
	Class     Class
	VendorID  uint16
	ProductID uint16
	Endpoint  *transport.Endpoint

	ctx *gousb.Context
	dev *gousb.Device
}

// InBootloader reports whether the device is currently advertising its
// bootloader-mode product ID.
func (h *Handle) InBootloader() bool {
	return h.ProductID&h.Class.BootMask != 0
}

// ExpectedProductID returns the product ID the device should advertise
// after successfully rebooting into the opposite mode.
func (h *Handle) ExpectedProductID() uint16 {
	if h.InBootloader() {
		return h.Class.ApplicationProductID()
	}
	return h.Class.BootloaderProductID()
}

// Close releases the claimed interface and the underlying USB device
// handle.
func (h *Handle) Close() {
	if h.Endpoint != nil {
		h.Endpoint.Close()
		h.Endpoint = nil
	}
	if h.dev != nil {
		h.dev.Close()
		h.dev = nil
	}
}

// Replace swaps h's underlying device and endpoint for a freshly discovered
// one, used after a reboot invalidates the old USB handle. Client code that
// already holds *Handle sees the new endpoint without rebinding anything
// itself, matching the transport's Replace contract.
func (h *Handle) Replace(fresh *Handle) {
	if h.dev != nil {
		h.dev.Close()
	}
	h.dev = fresh.dev
	h.VendorID = fresh.VendorID
	h.ProductID = fresh.ProductID
	h.Endpoint = fresh.Endpoint
	fresh.dev = nil
	fresh.Endpoint = nil
}
