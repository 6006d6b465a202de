// Package protob implements the family-B bootloader protocol: unchecksummed
// request frames, a write-pointer-based flash command set, the lossy "sum"
// verification quirk, and the flash and version workflows built on them.
//
// Unlike family A, family-B requests carry no checksum; responses echo the
// requested cmd and subcmd and must carry zero in the reserved third frame
// field. Writes track a device-side write address that must be explicitly
// set and read back before use.
package protob
