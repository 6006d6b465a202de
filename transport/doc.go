// Package transport implements raw interrupt-endpoint I/O against a
// claimed USB HID interface, plus the control-transfer fallback used to
// read a report when a bootloader answers only on the control pipe.
//
// Built on github.com/google/gousb: every transfer runs with a 500ms
// timeout, the kernel HID driver is detached on open, and the interface
// claim is retried three times with a one-second backoff to ride out a
// transient EBUSY.
package transport
