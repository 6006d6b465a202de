package device

import (
	"time"

	"github.com/vxfw/vxfw/protocol"
)

// rediscoverAttempts and rediscoverInterval bound the post-reboot polling
// window: up to 3 attempts, 1 second apart.
const (
	rediscoverAttempts = 3
	rediscoverInterval = 1 * time.Second
)

// Rediscover closes h's current handle, then polls for either h's current
// product ID or its expected post-reboot product ID (bootloader bit
// toggled) reappearing on the bus. On success it rebinds h in place via
// Handle.Replace, so callers that already hold h see the new endpoint
// without re-enumerating.
//
// Finding candidates under both product IDs simultaneously, or more than
// one candidate under either, is a hard failure: the caller cannot tell
// which device is the one it just rebooted.
func Rediscover(h *Handle) error {
	class := h.Class
	oldPID := h.ProductID
	expectedPID := h.ExpectedProductID()

	h.Close()

	var lastErr error
	for attempt := 0; attempt < rediscoverAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(rediscoverInterval)
		}

		oldCandidate, err := openSingle(h.ctx, class, oldPID)
		if err != nil {
			lastErr = err
			continue
		}
		newCandidate, err := openSingle(h.ctx, class, expectedPID)
		if err != nil {
			if oldCandidate != nil {
				oldCandidate.Close()
			}
			lastErr = err
			continue
		}

		switch {
		case oldCandidate != nil && newCandidate != nil:
			oldCandidate.Close()
			newCandidate.Close()
			return &protocol.DeviceAmbiguousError{Op: "rediscover", Count: 2}
		case newCandidate != nil:
			h.Replace(newCandidate)
			return nil
		case oldCandidate != nil:
			// Device hasn't flipped yet; keep polling.
			oldCandidate.Close()
			continue
		default:
			continue
		}
	}

	if lastErr != nil {
		return lastErr
	}
	return &protocol.DeviceMissingError{Op: "rediscover"}
}
