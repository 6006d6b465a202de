package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gousb"
)

// FrameSize is the fixed HID report size used by both protocol families.
const FrameSize = 64

// Timeout is the USB transfer timeout applied to every send, recv, and
// control transfer. Matches the original tool's USB_TIMEOUT.
const Timeout = 500 * time.Millisecond

const (
	claimAttempts = 3
	claimBackoff  = 1 * time.Second
)

// control transfer constants for the GET_REPORT fallback read.
const (
	usbDirIn      = 0x80
	usbTypeClass  = 0x20
	usbRecipIface = 0x01

	hidGetReport   = 0x01
	reportTypeIn   = 0x01
)

// Endpoint is a claimed USB HID interface with its interrupt IN/OUT
// endpoints opened. Callers obtain one from Open and must Close it when
// done, or hand it to Replace after a device reboot invalidates the
// underlying handle.
type Endpoint struct {
	dev      *gousb.Device
	cfg      *gousb.Config
	intf     *gousb.Interface
	ifaceNum int
	epIn     *gousb.InEndpoint
	epOut    *gousb.OutEndpoint
}

// Open claims interface ifaceNum on dev and opens its interrupt endpoints.
// The kernel driver is detached automatically and the claim is retried up
// to three times, one second apart, to ride out a transient EBUSY from a
// driver that hasn't released the interface yet.
func Open(dev *gousb.Device, ifaceNum int) (*Endpoint, error) {
	dev.SetAutoDetach(true)

	configNum, err := firstConfigNum(dev)
	if err != nil {
		return nil, err
	}

	cfg, err := dev.Config(configNum)
	if err != nil {
		return nil, &OpenError{Op: "set configuration", Err: err}
	}

	var intf *gousb.Interface
	for attempt := 0; attempt < claimAttempts; attempt++ {
		intf, err = cfg.Interface(ifaceNum, 0)
		if err == nil {
			break
		}
		if attempt < claimAttempts-1 {
			time.Sleep(claimBackoff)
		}
	}
	if err != nil {
		cfg.Close()
		return nil, &OpenError{Op: "claim interface", Err: err}
	}

	epIn, epOut, err := interruptEndpoints(intf)
	if err != nil {
		intf.Close()
		cfg.Close()
		return nil, err
	}

	return &Endpoint{dev: dev, cfg: cfg, intf: intf, ifaceNum: ifaceNum, epIn: epIn, epOut: epOut}, nil
}

func firstConfigNum(dev *gousb.Device) (int, error) {
	for num := range dev.Desc.Configs {
		return num, nil
	}
	return 0, &OpenError{Op: "set configuration", Err: fmt.Errorf("device exposes no USB configuration")}
}

func interruptEndpoints(intf *gousb.Interface) (*gousb.InEndpoint, *gousb.OutEndpoint, error) {
	var inAddr, outAddr gousb.EndpointAddress
	var haveIn, haveOut bool

	for addr, ep := range intf.Setting.Endpoints {
		if ep.TransferType != gousb.TransferTypeInterrupt {
			continue
		}
		if ep.Direction == gousb.EndpointDirectionIn && !haveIn {
			inAddr, haveIn = addr, true
		}
		if ep.Direction == gousb.EndpointDirectionOut && !haveOut {
			outAddr, haveOut = addr, true
		}
	}
	if !haveIn {
		return nil, nil, &OpenError{Op: "find IN endpoint", Err: fmt.Errorf("no interrupt IN endpoint on interface %d", intf.Setting.Number)}
	}
	if !haveOut {
		return nil, nil, &OpenError{Op: "find OUT endpoint", Err: fmt.Errorf("no interrupt OUT endpoint on interface %d", intf.Setting.Number)}
	}

	epIn, err := intf.InEndpoint(inAddr.Number)
	if err != nil {
		return nil, nil, &OpenError{Op: "open IN endpoint", Err: err}
	}
	epOut, err := intf.OutEndpoint(outAddr.Number)
	if err != nil {
		return nil, nil, &OpenError{Op: "open OUT endpoint", Err: err}
	}
	return epIn, epOut, nil
}

// Close releases the claimed interface and configuration. It does not close
// the underlying *gousb.Device; the owning device package is responsible
// for that, since the same handle is reused across Open/Close cycles during
// reboot-and-rediscover.
func (e *Endpoint) Close() {
	if e.intf != nil {
		e.intf.Close()
		e.intf = nil
	}
	if e.cfg != nil {
		e.cfg.Close()
		e.cfg = nil
	}
	e.epIn = nil
	e.epOut = nil
}

// Replace re-claims the interface against a freshly discovered device
// handle, used after a reboot command invalidates the old one.
func (e *Endpoint) Replace(dev *gousb.Device) error {
	e.Close()
	fresh, err := Open(dev, e.ifaceNum)
	if err != nil {
		return err
	}
	*e = *fresh
	return nil
}

// Send writes a single frame to the OUT endpoint. pkt must be exactly
// FrameSize bytes for the higher-level protocols, but Send itself places no
// restriction on length.
func (e *Endpoint) Send(pkt []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	n, err := e.epOut.WriteContext(ctx, pkt)
	if err != nil {
		return &IOError{Op: "send", Err: err}
	}
	if n != len(pkt) {
		return &ShortTransferError{Op: "send", Want: len(pkt), Got: n}
	}
	return nil
}

// Recv reads size bytes from the IN endpoint.
func (e *Endpoint) Recv(size int) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), Timeout)
	defer cancel()

	buf := make([]byte, size)
	n, err := e.epIn.ReadContext(ctx, buf)
	if err != nil {
		return nil, &IOError{Op: "recv", Err: err}
	}
	return buf[:n], nil
}

// AltRecv reads a report via a GET_REPORT control transfer instead of the
// interrupt IN endpoint. Some bootloaders answer only on this path.
func (e *Endpoint) AltRecv(size int) ([]byte, error) {
	buf := make([]byte, size)
	n, err := e.dev.Control(
		usbDirIn|usbTypeClass|usbRecipIface,
		hidGetReport,
		uint16(reportTypeIn)<<8,
		uint16(e.ifaceNum),
		buf,
	)
	if err != nil {
		return nil, &IOError{Op: "alt_recv", Err: err}
	}
	return buf[:n], nil
}
