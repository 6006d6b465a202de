// Package flasher composes the per-family protocol drivers, the device
// lifecycle, and the firmware codecs into the user-facing workflows:
// reading and writing the version record, rebooting between application
// and bootloader, flashing a firmware image, and dumping flash.
//
// A Flasher owns one device.Handle for its whole lifetime, including the
// reboot round-trips inside a flash: device selection is not stable across
// reboot, so the handle is rebound in place rather than re-enumerated.
// Family dispatch happens once, at construction, off the handle's class.
package flasher
