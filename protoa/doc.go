// Package protoa implements the family-A bootloader protocol: frame
// encoding with a CRC-16/XMODEM checksum, the ERASE/FLASH/CRC/GET_INFO/RESET
// command set, and the flash/dump/version workflows built on top of them.
//
// Every request frame is 64 bytes: cmd, subcmd, a little-endian CRC-16 of
// the frame with the CRC field zeroed, and a 60-byte payload. Responses
// carry a fixed RESP_SUCCESS byte that every caller must check before
// trusting the rest of the payload.
package protoa
