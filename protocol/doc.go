// Package protocol holds the types and error kinds shared by both
// bootloader dialects (family A in package protoa, family B in package
// protob) and by the device and installer packages that dispatch on them.
//
// Neither family's frame layout nor command set lives here — they differ
// too much to share code, per the sum-type split described in protoa and
// protob. What's common is the vocabulary: which family a device belongs
// to, and the named failure modes every driver, the device lifecycle, and
// the installer extractor can all produce.
package protocol
