package progress

import "time"

// Phase describes which stage of a long-running operation is in progress.
// Use the exported Phase constants for comparisons.
type Phase string

const (
	PhaseEnumerating Phase = "enumerating"
	PhaseRebooting   Phase = "rebooting"
	PhaseErasing     Phase = "erasing"
	PhaseWriting     Phase = "writing"
	PhaseVerifying   Phase = "verifying"
	PhaseReading     Phase = "reading"
	PhaseExtracting  Phase = "extracting"
	PhaseComplete    Phase = "complete"
)

// Progress is delivered to a Callback during flash, dump, and extract
// operations.
type Progress struct {
	Phase Phase

	// CurrentItem and TotalItems count whatever unit the current phase
	// works in: 52-byte blocks while writing, firmware sections while
	// extracting, and so on.
	CurrentItem int
	TotalItems  int

	Percentage float64

	BytesWritten int
	ElapsedTime  time.Duration
}

// Callback is called synchronously to report progress. Implementations
// should return quickly; they run inline on the device I/O path.
type Callback func(Progress)

// Nop discards all progress reports. Used as the default when no callback is
// configured.
func Nop(Progress) {}
