// Package crc16 implements CRC-16/XMODEM (polynomial 0x1021, init 0) and the
// single-byte inversion table that the family-A bootloader protocol relies on
// to turn its CRC command into a full-flash read oracle.
package crc16
