// Package codec implements the firmware and installer-metadata obfuscation
// schemes used by the two bootloader protocol families and by the vendor
// installer packages that embed their firmware images.
//
// None of these are cryptography. They are reversible byte and bit
// permutations the original updater tools used to keep firmware images from
// being trivially readable in a hex editor; this package exists to undo (and,
// where the protocol round-trip requires it, redo) them.
//
// # Family A
//
// FamilyA operates on 52-byte packets (13 little-endian words), XORing each
// word with a fixed key and permuting bytes within each word by a table
// indexed on the low 3 bits of the packet number. Only packets 10 through 100
// of a firmware image are transformed; DecodeFirmwareA/EncodeFirmwareA apply
// that packet windowing automatically.
//
// # Family B
//
// FamilyB XORs every 4-byte little-endian word of the whole image with a
// 13-word key cycling by word position. It is its own inverse.
//
// # CMMK
//
// CMMK devices store firmware unobfuscated; DecodeFirmwareCMMK and
// EncodeFirmwareCMMK are both the identity function, kept as named functions
// so callers can treat all three families uniformly.
//
// # Package transform
//
// Decode is the three-step byte transform vendor installers use to obfuscate
// their trailing metadata block (see package installer). KBPDecrypt is the
// unrelated stream-XOR scheme used only by the KBP installer format.
package codec
