package main

import (
	"fmt"

	"github.com/google/gousb"

	"github.com/vxfw/vxfw/device"
	"github.com/vxfw/vxfw/flasher"
	"github.com/vxfw/vxfw/protocol"
)

// withDevices enumerates every known device, runs fn, and cleans up all
// handles and the USB context afterwards.
func withDevices(fn func([]*device.Handle) error) error {
	ctx := gousb.NewContext()
	defer ctx.Close()

	handles, err := device.Enumerate(ctx)
	if err != nil {
		return err
	}
	defer func() {
		for _, h := range handles {
			h.Close()
		}
	}()

	return fn(handles)
}

// withDevice selects one device by index (-1 means "the only one") and
// hands a Flasher for it to fn. Zero candidates is a DeviceMissingError;
// more than one without an explicit index is a DeviceAmbiguousError.
func withDevice(index int, fn func(*flasher.Flasher) error) error {
	return withDevices(func(handles []*device.Handle) error {
		if len(handles) == 0 {
			return &protocol.DeviceMissingError{Op: "enumerate"}
		}

		var h *device.Handle
		switch {
		case index >= 0:
			if index >= len(handles) {
				return fmt.Errorf("device index %d out of range (%d found)", index, len(handles))
			}
			h = handles[index]
		case len(handles) > 1:
			return &protocol.DeviceAmbiguousError{Op: "enumerate", Count: len(handles)}
		default:
			h = handles[0]
		}

		return fn(flasher.New(h,
			flasher.WithLogger(log),
			flasher.WithProgress(newBarReporter().report),
		))
	})
}
