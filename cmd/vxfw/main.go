// vxfw is the host-side firmware tool for Vortex-family keyboards: it
// lists supported devices, reads and writes version records, reboots
// between application and bootloader, flashes and dumps firmware, and
// extracts firmware images from vendor installers offline.
package main

import (
	"errors"
	"os"

	"github.com/vxfw/vxfw/protocol"
)

// Exit codes: 2 means no matching device, 3 means more than one candidate
// and no index was given to disambiguate.
const (
	exitUsage     = 1
	exitNoDevice  = 2
	exitAmbiguous = 3
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var missing *protocol.DeviceMissingError
	if errors.As(err, &missing) {
		return exitNoDevice
	}
	var ambiguous *protocol.DeviceAmbiguousError
	if errors.As(err, &ambiguous) {
		return exitAmbiguous
	}
	return exitUsage
}
