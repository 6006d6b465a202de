// Package progress defines the observer-only progress reporting hook shared
// by every long-running operation in this module (flash, dump, extract): a
// Phase string enum and a Progress struct delivered through a functional
// callback, so callers can wire in any rendering (a CLI progress bar, a
// structured log line, nothing at all).
package progress
