// Package device implements device lifecycle: enumeration of known HID
// bootloader devices, HID report-descriptor-based interface selection,
// open/close, and the reboot-and-rediscover dance that rebinds a driver's
// transport to a device that just reappeared under a different product ID.
package device
