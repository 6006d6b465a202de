// Package installer extracts firmware images from vendor updater
// executables without touching a device.
//
// Every supported installer carries its metadata in an obfuscated block at
// the tail of the .exe (the "trailer"), decoded with the package transform
// in package codec. The firmware sections sit immediately before the
// trailer (KBP instead stores firmware at a fixed file offset) and are
// obfuscated twice: once with the package transform, and inside that with
// the firmware codec of the device family the installer targets.
//
// Some installers arrive wrapped: inside a ZIP archive, or appended to a
// self-extracting RAR stub whose payload starts right after the PE .rsrc
// section. Extraction tries the file as-is first and falls through to the
// wrapper candidates only when the trailer signature does not match.
package installer
