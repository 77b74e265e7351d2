// Package workflow implements the composite, human-in-the-loop procedures
// built on top of a session's command layer: enroll, search, match,
// download-image, upload-and-search, and their non-interactive variants.
// Every workflow runs under a single session-wide mutex, polls finger
// presence between commands, and accepts cooperative cancellation through
// an Activity handle.
package workflow

import (
	"sync"
	"time"

	"github.com/ics-upjs/FPM10FingerprintSensor/sensor"
)

// Engine drives workflows against a single *sensor.Sensor. Engine is safe
// for concurrent use: the *Async and the synchronous workflow methods serialize
// against the same session-wide mutex, so two workflows submitted
// concurrently never interleave their sensor commands.
type Engine struct {
	mu sync.Mutex

	sensor *sensor.Sensor

	// settleDelay is slept between the first capture's finger-removal and
	// the second put-finger callback in the non-data-returning enrol
	// variant only. See Config's doc comment for why the
	// data-returning variant does not sleep here.
	settleDelay time.Duration
}

// Config holds Engine configuration.
type Config struct {
	// SettleDelay is the pause between the first and second captures of
	// the interactive enrol workflow, giving the operator a moment to
	// reposition the finger. Default equals the sensor's default command
	// timeout, matching the original driver's choice of duration.
	//
	// This delay is applied only by Enroll/EnrollAsync and
	// EnrollFromScans — never by EnrollAndGetData/EnrollAndGetDataAsync.
	// That asymmetry is preserved deliberately rather than "fixed": see
	// the doc comment of EnrollAndGetData.
	SettleDelay time.Duration
}

// Option is a functional option for configuring an Engine.
type Option func(*Config)

// WithSettleDelay overrides the pause between the two captures of the
// interactive enrol workflow.
func WithSettleDelay(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.SettleDelay = d
		}
	}
}

// NewEngine constructs an Engine driving s. By default SettleDelay equals
// s's configured default command timeout.
func NewEngine(s *sensor.Sensor, opts ...Option) *Engine {
	cfg := Config{SettleDelay: s.DefaultTimeout()}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Engine{sensor: s, settleDelay: cfg.SettleDelay}
}

// waitForFingerprint polls GetImage until a finger is detected, checking
// for cancellation before each poll.
func (e *Engine) waitForFingerprint(c canceller) error {
	for {
		if c != nil && c.cancelled() {
			return ErrCancelled
		}
		present, err := e.sensor.GetImage()
		if err != nil {
			return err
		}
		if present {
			return nil
		}
	}
}

// waitForFingerRemoved polls GetImage until no finger is detected,
// checking for cancellation before each poll.
func (e *Engine) waitForFingerRemoved(c canceller) error {
	for {
		if c != nil && c.cancelled() {
			return ErrCancelled
		}
		present, err := e.sensor.GetImage()
		if err != nil {
			return err
		}
		if !present {
			return nil
		}
	}
}
