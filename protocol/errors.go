package protocol

import "fmt"

// TransportTimeoutError reports a transfer that did not complete within the
// transport's timeout. Drivers recover from this automatically during erase
// (see protoa/protob Erase); it surfaces everywhere else.
type TransportTimeoutError struct {
	Op string
}

func (e *TransportTimeoutError) Error() string {
	return fmt.Sprintf("protocol: %s: transport timeout", e.Op)
}

// ProtocolMismatchError reports a response whose cmd/subcmd/status fields
// don't match what was requested. Fatal for the current operation.
type ProtocolMismatchError struct {
	Op       string
	Expected string
	Got      string
}

func (e *ProtocolMismatchError) Error() string {
	return fmt.Sprintf("protocol: %s: expected %s, got %s", e.Op, e.Expected, e.Got)
}

// CRCMismatchError reports a post-write CRC check that didn't match the
// plaintext firmware's CRC. The device is left in bootloader mode.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("protocol: CRC mismatch: expected 0x%08X, got 0x%08X", e.Expected, e.Got)
}

// VerifyMismatchError reports a FLASH_VERIFY (family A) or sum (family B)
// response that didn't match the written block.
type VerifyMismatchError struct {
	Address uint32
}

func (e *VerifyMismatchError) Error() string {
	return fmt.Sprintf("protocol: verify mismatch at address 0x%08X", e.Address)
}

// DeviceAmbiguousError reports more than one candidate device found during
// enumeration or post-reboot rediscovery.
type DeviceAmbiguousError struct {
	Op    string
	Count int
}

func (e *DeviceAmbiguousError) Error() string {
	return fmt.Sprintf("protocol: %s: %d candidate devices found, unplug all but one", e.Op, e.Count)
}

// DeviceMissingError reports zero candidate devices after the rediscovery
// retry budget is exhausted.
type DeviceMissingError struct {
	Op string
}

func (e *DeviceMissingError) Error() string {
	return fmt.Sprintf("protocol: %s: no matching device found", e.Op)
}

// SignatureMismatchError reports an installer trailer whose signature did
// not match the format being tried. The extractor falls through to the next
// candidate wrapper on this error.
type SignatureMismatchError struct {
	Format string
}

func (e *SignatureMismatchError) Error() string {
	return fmt.Sprintf("protocol: %s: trailer signature mismatch", e.Format)
}

// SelfTestFailureError reports encode(decode(x)) != x for an extracted
// firmware section. Fatal extraction error.
type SelfTestFailureError struct {
	Section string
}

func (e *SelfTestFailureError) Error() string {
	return fmt.Sprintf("protocol: %s: codec self-test failed", e.Section)
}

// SizeExceededError reports firmware larger than the device's advertised
// flash region. Reported before any destructive operation.
type SizeExceededError struct {
	Size    int
	MaxSize int
}

func (e *SizeExceededError) Error() string {
	return fmt.Sprintf("protocol: firmware size %d exceeds device maximum %d", e.Size, e.MaxSize)
}
