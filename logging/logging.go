// Package logging wraps erigon-lib's structured logger with the two
// fields every engine component attaches to its output: scope (which
// executor or subsystem produced the line) and, where relevant, key
// (the catalog key the line is about).
package logging

import (
	"github.com/erigontech/erigon-lib/log/v3"
)

// Scoped returns a logger pre-bound to a scope tag, e.g. "mgmt",
// "writer:b1", "reader", "cron", "httpapi".
func Scoped(scope string) log.Logger {
	return log.Root().New("scope", scope)
}

// WithKey further binds a catalog key to an already-scoped logger.
func WithKey(l log.Logger, key string) log.Logger {
	return l.New("key", key)
}

// Setup installs the process-wide log level and format. Called once
// from cmd/simbase-engine's main.
func Setup(verbosity log.Lvl) {
	log.Root().SetHandler(log.LvlFilterHandler(verbosity, log.StderrHandler))
}
