package flasher

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/vxfw/vxfw/device"
	"github.com/vxfw/vxfw/logging"
	"github.com/vxfw/vxfw/progress"
	"github.com/vxfw/vxfw/protoa"
	"github.com/vxfw/vxfw/protob"
	"github.com/vxfw/vxfw/protocol"
)

// Flasher drives one device through the high-level workflows. It owns the
// handle for its whole lifetime; reboots rebind the handle in place.
type Flasher struct {
	h   *device.Handle
	cfg Config
}

// New returns a Flasher bound to h.
func New(h *device.Handle, opts ...Option) *Flasher {
	cfg := Config{Logger: logging.Nop(), Progress: progress.Nop}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Flasher{h: h, cfg: cfg}
}

// Handle returns the device handle the Flasher drives.
func (f *Flasher) Handle() *device.Handle { return f.h }

// Name returns the device's human-readable name.
func (f *Flasher) Name() string { return f.h.Class.Name }

func (f *Flasher) driverA() *protoa.Driver {
	return protoa.New(f.h.Endpoint)
}

func (f *Flasher) driverB() *protob.Driver {
	return protob.New(f.h.Endpoint, f.h.Class.Variant == protocol.VariantCMMK)
}

// EnterBootloader reboots the device into bootloader mode if it isn't
// there already, rediscovering it under its bootloader product ID.
func (f *Flasher) EnterBootloader() error {
	if f.h.InBootloader() {
		return nil
	}
	f.cfg.Logger.Info("rebooting to bootloader", "device", f.Name())
	f.cfg.Progress(progress.Progress{Phase: progress.PhaseRebooting})

	var err error
	switch f.h.Class.Family {
	case protocol.FamilyA:
		err = f.driverA().ResetBoot()
	case protocol.FamilyB:
		err = f.driverB().ResetBootloader()
	}
	if err != nil {
		return fmt.Errorf("flasher: reset to bootloader: %w", err)
	}

	if err := device.Rediscover(f.h); err != nil {
		return err
	}
	if !f.h.InBootloader() {
		return &protocol.ProtocolMismatchError{
			Op:       "enter bootloader",
			Expected: fmt.Sprintf("bootloader product id 0x%04X", f.h.Class.BootloaderProductID()),
			Got:      fmt.Sprintf("0x%04X", f.h.ProductID),
		}
	}
	return nil
}

// Reboot reboots the device into bootloader or application mode. Rebooting
// into the mode the device is already in is a no-op.
func (f *Flasher) Reboot(toBootloader bool) error {
	if toBootloader {
		return f.EnterBootloader()
	}
	if !f.h.InBootloader() {
		return nil
	}
	f.cfg.Logger.Info("rebooting to application", "device", f.Name())

	var err error
	switch f.h.Class.Family {
	case protocol.FamilyA:
		err = f.driverA().ResetSwitch()
	case protocol.FamilyB:
		err = f.driverB().ResetApplication()
	}
	if err != nil {
		return fmt.Errorf("flasher: reset to application: %w", err)
	}
	return device.Rediscover(f.h)
}

// Version reads the device's current version string. An erased version
// region reads as "CLEARED".
func (f *Flasher) Version() (string, error) {
	switch f.h.Class.Family {
	case protocol.FamilyA:
		return f.versionA()
	case protocol.FamilyB:
		return f.versionB()
	}
	return "", fmt.Errorf("flasher: unknown family %v", f.h.Class.Family)
}

// maxVersionLen bounds how much version data is read back: longer length
// fields come from corrupted or foreign flash contents, not a real record.
const maxVersionLen = 0x400

func (f *Flasher) versionA() (string, error) {
	d := f.driverA()
	info, err := d.GetInfo()
	if err != nil {
		return "", err
	}

	head, err := d.FlashRead(info.VersionAddr)
	if err != nil {
		return "", err
	}
	vlen := binary.LittleEndian.Uint32(head[0:4])
	if vlen == 0xFFFFFFFF {
		return "CLEARED", nil
	}
	if vlen > maxVersionLen {
		return "", fmt.Errorf("flasher: implausible version length %d", vlen)
	}

	vdata := head
	for uint32(len(vdata)) < 4+vlen {
		more, err := d.FlashRead(info.VersionAddr + uint32(len(vdata)))
		if err != nil {
			return "", err
		}
		vdata = append(vdata, more...)
	}
	return versionString(vdata[4 : 4+vlen]), nil
}

func (f *Flasher) versionB() (string, error) {
	d := f.driverB()

	head, err := d.ReadVersionChunk(0)
	if err != nil {
		return "", err
	}
	vlen := binary.LittleEndian.Uint32(head[0:4])
	if vlen == 0xFFFFFFFF {
		return "CLEARED", nil
	}
	if vlen > maxVersionLen {
		return "", fmt.Errorf("flasher: implausible version length %d", vlen)
	}

	vdata := head
	for i := 1; uint32(len(vdata)) < 4+vlen; i++ {
		more, err := d.ReadVersionChunk(i)
		if err != nil {
			return "", err
		}
		vdata = append(vdata, more...)
	}
	return versionString(vdata[4 : 4+vlen]), nil
}

// versionString trims erased-flash fill and NUL padding from a raw version
// field; an empty result reads as "CLEARED".
func versionString(raw []byte) string {
	s := bytes.TrimRight(raw, "\xff")
	s = bytes.TrimRight(s, "\x00")
	if len(s) == 0 {
		return "CLEARED"
	}
	return string(s)
}

// SetVersion writes a new version record, entering the bootloader first and
// rebooting back to the application afterwards.
func (f *Flasher) SetVersion(version string) error {
	if err := f.EnterBootloader(); err != nil {
		return err
	}

	switch f.h.Class.Family {
	case protocol.FamilyA:
		d := f.driverA()
		info, err := d.GetInfo()
		if err != nil {
			return err
		}
		record := protoa.EncodeVersionRecord(version)
		if info.VersionAddr+uint32(len(record)) > info.AppAddr {
			return fmt.Errorf("flasher: version record (%d bytes) exceeds the version/app region gap", len(record))
		}
		if err := d.Erase(info.VersionAddr, info.VersionAddr+uint32(len(record))); err != nil {
			return err
		}
		if err := d.WriteVersion(info.VersionAddr, version); err != nil {
			return err
		}
	case protocol.FamilyB:
		if err := f.driverB().WriteVersion(version); err != nil {
			return err
		}
	}

	f.cfg.Logger.Info("version written", "device", f.Name(), "version", version)
	return f.Reboot(false)
}

// Flash writes a firmware image and its version record, then reboots to the
// application and verifies the device reappears under its application
// product ID. Empty images are rejected before anything is touched.
func (f *Flasher) Flash(plaintext []byte, version string) error {
	if len(plaintext) == 0 {
		return &protocol.SizeExceededError{Size: 0, MaxSize: 0}
	}

	if err := f.EnterBootloader(); err != nil {
		return err
	}

	var err error
	switch f.h.Class.Family {
	case protocol.FamilyA:
		err = f.driverA().Flash(plaintext, version, f.cfg.Progress)
	case protocol.FamilyB:
		err = f.driverB().Flash(plaintext, version, f.cfg.Progress)
	}
	if err != nil {
		return err
	}

	if err := device.Rediscover(f.h); err != nil {
		return err
	}
	if f.h.InBootloader() {
		return &protocol.ProtocolMismatchError{
			Op:       "flash",
			Expected: fmt.Sprintf("application product id 0x%04X", f.h.Class.ApplicationProductID()),
			Got:      fmt.Sprintf("0x%04X", f.h.ProductID),
		}
	}

	f.cfg.Progress(progress.Progress{Phase: progress.PhaseComplete, Percentage: 100})
	f.cfg.Logger.Info("flash complete", "device", f.Name(), "version", version)
	return nil
}

// Dump reads the device's whole flash. Only family A exposes the
// single-byte CRC command the dump oracle needs; family B has no sound way
// to read arbitrary flash back.
func (f *Flasher) Dump() ([]byte, error) {
	if f.h.Class.Family != protocol.FamilyA {
		return nil, fmt.Errorf("flasher: dump is not supported for family %v devices", f.h.Class.Family)
	}

	if err := f.EnterBootloader(); err != nil {
		return nil, err
	}

	d := f.driverA()
	info, err := d.GetInfo()
	if err != nil {
		return nil, err
	}

	f.cfg.Logger.Info("dumping flash", "device", f.Name(), "size", info.FlashSize())
	return d.Dump(0, info.FlashSize(), f.cfg.Progress)
}
