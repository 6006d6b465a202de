package progress

import "testing"

func TestNopDoesNotPanic(t *testing.T) {
	Nop(Progress{Phase: PhaseWriting, CurrentItem: 1, TotalItems: 10})
}

func TestPhaseConstantsAreDistinct(t *testing.T) {
	phases := []Phase{
		PhaseEnumerating, PhaseRebooting, PhaseErasing, PhaseWriting,
		PhaseVerifying, PhaseReading, PhaseExtracting, PhaseComplete,
	}
	seen := make(map[Phase]bool, len(phases))
	for _, p := range phases {
		if seen[p] {
			t.Fatalf("duplicate phase value %q", p)
		}
		seen[p] = true
	}
}
