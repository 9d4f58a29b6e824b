package hkaccessory

import (
	"io"
	"time"

	"github.com/pion/logging"
)

const (
	// DefaultHandlerTimeout bounds a single get or set handler invocation.
	DefaultHandlerTimeout = 10 * time.Second
	// DefaultSlowHandlerThreshold is when a running handler is reported as slow.
	DefaultSlowHandlerThreshold = 3 * time.Second
)

// Config tunes a characteristic. The zero value is usable.
type Config struct {
	// LoggerFactory creates the characteristic logger.
	// Defaults to logging.NewDefaultLoggerFactory().
	LoggerFactory logging.LoggerFactory

	// HandlerTimeout is the deadline for one handler call, it is applied to
	// the context handed to the handler. Negative disables the deadline.
	HandlerTimeout time.Duration

	// SlowHandlerThreshold emits a slow read/write warning while a handler
	// is still running. Negative disables the warning.
	SlowHandlerThreshold time.Duration

	// NullPolicy overrides the uuid derived null policy.
	NullPolicy NullPolicy

	// NullTolerance is the number of nulls NullTolerate accepts. Zero means
	// DefaultNullTolerance, use NullReject to accept none.
	NullTolerance int

	// EventOnly marks a characteristic whose reads always return null.
	// nil derives it from the uuid (Programmable Switch Event).
	EventOnly *bool
}

func (c Config) withDefaults() Config {
	if c.LoggerFactory == nil {
		c.LoggerFactory = logging.NewDefaultLoggerFactory()
	}
	if c.HandlerTimeout == 0 {
		c.HandlerTimeout = DefaultHandlerTimeout
	}
	if c.SlowHandlerThreshold == 0 {
		c.SlowHandlerThreshold = DefaultSlowHandlerThreshold
	}
	if c.NullTolerance == 0 {
		c.NullTolerance = DefaultNullTolerance
	}
	return c
}

// quietLoggerFactory drops everything, used for throwaway characteristics.
func quietLoggerFactory() logging.LoggerFactory {
	return &logging.DefaultLoggerFactory{
		Writer:          io.Discard,
		DefaultLogLevel: logging.LogLevelDisabled,
	}
}
