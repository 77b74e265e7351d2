// Package sensor implements the command layer and data-stream layer of an
// FPM10 session: opening and handshaking with the module, issuing one-shot
// commands and reading their Ack, and streaming multi-packet data in and
// out of the module's char buffers and image buffer.
//
// A Sensor is safe for concurrent use: every exported method that talks to
// the wire takes the session mutex, so a session's commands are always
// serialized onto the single physical link. Composite human-in-the-loop
// procedures (enroll, search, match) are built on top of this package by
// package workflow.
package sensor

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
	"github.com/ics-upjs/FPM10FingerprintSensor/transport"
)

var (
	errTimeout        = errors.New("timed out waiting for reply")
	errUnexpectedType = errors.New("unexpected reply packet type")
	errReplyLength    = errors.New("unexpected reply payload length")
)

// Sensor is a session with a single FPM10 module over a single serial
// port. Create one with New, then Open it before issuing any command.
type Sensor struct {
	mu sync.Mutex

	portName string
	cfg      Config

	link   *transport.Link
	closer closer
	params protocol.SessionParams
	open   bool
}

// closer is satisfied by the concrete serial port; it is nil when the
// session was opened over a caller-supplied io.ReadWriter that the caller
// owns the lifetime of.
type closer interface {
	Close() error
}

// New constructs a session bound to the named serial port. The port is not
// opened until Open is called.
func New(portName string, opts ...Option) *Sensor {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Sensor{portName: portName, cfg: cfg}
}

// Open opens the serial port at the configured baud rate and performs the
// handshake: VerifyPassword followed by ReadSysParam. On any failure the
// port is closed and a *protocol.SensorError with Kind handshake_failed is
// returned.
func (s *Sensor) Open() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}

	port, err := transport.OpenPort(s.portName, s.cfg.Baud)
	if err != nil {
		return err
	}

	if err := s.attach(port, port); err != nil {
		port.Close()
		return err
	}
	s.closer = port
	s.open = true
	return nil
}

// OpenTransport performs the same handshake as Open but over a
// caller-supplied byte stream instead of a named serial port. This is the
// seam tests and mock devices use in place of real hardware; the caller
// retains ownership of rw and is responsible for closing it.
func (s *Sensor) OpenTransport(rw io.ReadWriter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.open {
		return nil
	}
	if err := s.attach(rw, rw); err != nil {
		return err
	}
	s.open = true
	return nil
}

func (s *Sensor) attach(r io.Reader, w io.Writer) error {
	s.link = transport.NewLinkSize(w, r, s.cfg.Baud, defaultModuleAddress, s.cfg.ReadBufferSize)

	if err := s.verifyPassword(); err != nil {
		s.cfg.Logger.Error("handshake: verify password failed", "err", err)
		return protocol.NewSensorErrorKind(protocol.KindHandshakeFailed)
	}

	params, err := s.readSystemParams()
	if err != nil {
		s.cfg.Logger.Error("handshake: read system params failed", "err", err)
		return protocol.NewSensorErrorKind(protocol.KindHandshakeFailed)
	}

	s.params = params
	s.link.SetAddress(params.ModuleAddress)
	s.cfg.Logger.Info("session open",
		"library_capacity", params.LibraryCapacity,
		"data_package_length", params.DataPackageLength)
	return nil
}

// Close releases the underlying serial port, if this session opened one
// itself. Closing a session opened with OpenTransport is a no-op; the
// caller owns that stream. Close is idempotent.
func (s *Sensor) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return nil
	}
	s.open = false
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Params returns the session parameters read during the handshake.
func (s *Sensor) Params() protocol.SessionParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params
}

// DefaultTimeout returns the timeout configured for this session's
// commands and data packet reads.
func (s *Sensor) DefaultTimeout() time.Duration {
	return s.cfg.DefaultTimeout
}

// exec writes a single Command packet and waits for its Ack, enforcing the
// session's default timeout. op names the calling command for error
// messages only.
func (s *Sensor) exec(op string, payload []byte) (transport.Packet, error) {
	if err := s.link.Write(transport.TypeCommand, payload); err != nil {
		return transport.Packet{}, err
	}

	deadline := time.Now().Add(s.cfg.DefaultTimeout)
	pkt, ok := s.link.Read(deadline)
	if !ok {
		return transport.Packet{}, &transport.Error{Op: op, Err: errTimeout}
	}
	if pkt.Type != transport.TypeAck {
		return transport.Packet{}, &transport.Error{Op: op, Err: errUnexpectedType}
	}
	return pkt, nil
}
