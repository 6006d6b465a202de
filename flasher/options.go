package flasher

import (
	"github.com/vxfw/vxfw/logging"
	"github.com/vxfw/vxfw/progress"
)

// Config holds the flasher configuration.
type Config struct {
	Logger   logging.Logger
	Progress progress.Callback
}

// Option is a functional option for configuring a Flasher.
type Option func(*Config)

// WithLogger sets a logger for workflow diagnostics.
func WithLogger(l logging.Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithProgress sets a callback invoked during flash and dump.
func WithProgress(cb progress.Callback) Option {
	return func(c *Config) { c.Progress = cb }
}
