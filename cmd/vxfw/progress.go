package main

import (
	"fmt"

	"github.com/schollz/progressbar/v3"

	"github.com/vxfw/vxfw/progress"
)

// barReporter renders progress callbacks as a terminal progress bar, one
// bar per phase that reports item counts; phases without counts print a
// single status line instead.
type barReporter struct {
	phase progress.Phase
	bar   *progressbar.ProgressBar
}

func newBarReporter() *barReporter {
	return &barReporter{}
}

func (r *barReporter) report(p progress.Progress) {
	if p.Phase != r.phase {
		if r.bar != nil {
			r.bar.Finish()
			fmt.Println()
			r.bar = nil
		}
		r.phase = p.Phase

		if p.TotalItems > 0 {
			r.bar = progressbar.NewOptions(p.TotalItems,
				progressbar.OptionSetDescription(string(p.Phase)),
				progressbar.OptionShowCount(),
			)
		} else {
			fmt.Printf("%s...\n", p.Phase)
		}
	}

	if r.bar != nil && p.TotalItems > 0 {
		r.bar.Set(p.CurrentItem)
	}
}
