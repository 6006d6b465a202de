package device

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/vxfw/vxfw/protocol"
	"github.com/vxfw/vxfw/transport"
)

// hidReportDescriptorType and the standard GET_DESCRIPTOR request used to
// fetch it from an interface.
const (
	reqGetDescriptor    = 0x06
	descTypeHIDReport   = 0x22
	hidReportBufferSize = 4096

	usbDirIn       = 0x80
	usbTypeStandard = 0x00
	usbRecipIface   = 0x01
)

// Enumerate walks every attached USB device, keeps the ones matching a
// known (vendor, product) pair in either application or bootloader mode,
// and opens the first interface on each whose HID report descriptor
// declares that class's (usage page, usage) tuple.
func Enumerate(ctx *gousb.Context) ([]*Handle, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		_, ok := Lookup(uint16(desc.Vendor), uint16(desc.Product))
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("device: enumerate: %w", err)
	}

	var handles []*Handle
	ok := false
	defer func() {
		if !ok {
			for _, h := range handles {
				h.Close()
			}
		}
	}()

	for _, dev := range devs {
		class, _ := Lookup(uint16(dev.Desc.Vendor), uint16(dev.Desc.Product))

		ifaceNum, found := selectInterface(dev, class)
		if !found {
			dev.Close()
			continue
		}

		ep, err := transport.Open(dev, ifaceNum)
		if err != nil {
			dev.Close()
			return nil, fmt.Errorf("device: open %s: %w", class.Name, err)
		}

		handles = append(handles, &Handle{
			Class:     class,
			VendorID:  uint16(dev.Desc.Vendor),
			ProductID: uint16(dev.Desc.Product),
			Endpoint:  ep,
			ctx:       ctx,
			dev:       dev,
		})
	}

	ok = true
	return handles, nil
}

// selectInterface returns the number of the first interface on dev whose
// HID report descriptor declares class's (usage page, usage) tuple.
func selectInterface(dev *gousb.Device, class Class) (int, bool) {
	for _, cfg := range dev.Desc.Configs {
		for _, intf := range cfg.Interfaces {
			buf := make([]byte, hidReportBufferSize)
			n, err := dev.Control(
				usbDirIn|usbTypeStandard|usbRecipIface,
				reqGetDescriptor,
				uint16(descTypeHIDReport)<<8,
				uint16(intf.Number),
				buf,
			)
			if err != nil {
				continue
			}
			if matchesUsage(buf[:n], class.UsagePage, class.Usage) {
				return intf.Number, true
			}
		}
	}
	return 0, false
}

// openSingle opens exactly one device matching vid/pid's class, used by
// Rediscover. It fails loudly (via DeviceAmbiguousError) if ctx currently
// exposes more than one candidate, since that means another known device
// is plugged in and the identity of "the" rebooted device is ambiguous.
func openSingle(ctx *gousb.Context, class Class, wantPID uint16) (*Handle, error) {
	devs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return uint16(desc.Vendor) == class.VendorID && uint16(desc.Product) == wantPID
	})
	if err != nil {
		return nil, err
	}
	if len(devs) == 0 {
		return nil, nil
	}
	if len(devs) > 1 {
		for _, d := range devs {
			d.Close()
		}
		return nil, &protocol.DeviceAmbiguousError{Op: "rediscover", Count: len(devs)}
	}

	dev := devs[0]
	ifaceNum, found := selectInterface(dev, class)
	if !found {
		dev.Close()
		return nil, fmt.Errorf("device: rediscover: %s: no matching HID interface", class.Name)
	}
	ep, err := transport.Open(dev, ifaceNum)
	if err != nil {
		dev.Close()
		return nil, err
	}
	return &Handle{
		Class:     class,
		VendorID:  uint16(dev.Desc.Vendor),
		ProductID: uint16(dev.Desc.Product),
		Endpoint:  ep,
		ctx:       ctx,
		dev:       dev,
	}, nil
}
