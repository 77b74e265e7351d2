package sensor

import "time"

// defaultModuleAddress is the module address used before the handshake has
// read the real address back from the sensor.
const defaultModuleAddress = 0xFFFFFFFF

// Config holds session configuration.
type Config struct {
	// Baud is the serial link speed. Default is 57600, the FPM10 factory
	// default.
	Baud int

	// DefaultTimeout bounds every command's wait for its Ack, and every
	// individual packet read within a data stream. Default is 2s.
	DefaultTimeout time.Duration

	// Password is sent during the handshake's VerifyPassword step.
	// Default is 0, the factory default.
	Password uint32

	// Logger receives session lifecycle and command tracing (optional).
	Logger Logger

	// ReadBufferSize overrides the transport's initial ring buffer
	// capacity. Zero uses the transport package's default.
	ReadBufferSize int
}

func defaultConfig() Config {
	return Config{
		Baud:           57600,
		DefaultTimeout: 2 * time.Second,
		Password:       0,
		Logger:         nopLogger{},
	}
}

// Option is a functional option for configuring a session.
type Option func(*Config)

// WithBaud sets the serial link speed.
func WithBaud(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.Baud = baud
		}
	}
}

// WithDefaultTimeout sets the timeout used for every command and data
// packet wait.
func WithDefaultTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.DefaultTimeout = timeout
		}
	}
}

// WithPassword sets the handshake password.
func WithPassword(password uint32) Option {
	return func(c *Config) {
		c.Password = password
	}
}

// WithLogger sets a logger for session operations.
func WithLogger(logger Logger) Option {
	return func(c *Config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithReadBufferSize overrides the transport's initial ring buffer size.
func WithReadBufferSize(size int) Option {
	return func(c *Config) {
		if size > 0 {
			c.ReadBufferSize = size
		}
	}
}
