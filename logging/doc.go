// Package logging defines the minimal leveled-KV logging interface used
// throughout this module and a default implementation backed by logrus.
//
// Every orchestrating type accepts a Logger through a functional option
// rather than importing a logging backend directly, so callers can supply
// their own adapter; NewLogrusLogger exists so the CLI has a sensible
// default without forcing every embedder of this module to pull in logrus.
package logging
