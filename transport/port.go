package transport

import (
	"time"

	"github.com/tarm/serial"
)

// SerialPort is the concrete UART connection opened by OpenPort. It
// implements io.ReadWriter and is the only type in this module that talks
// to an operating-system serial device; everything above it deals only in
// io.Reader/io.Writer and *Link.
type SerialPort struct {
	port *serial.Port
}

// OpenPort opens name at the given baud rate with the framing the sensor
// requires: 8 data bits, 1 stop bit, no parity. The OS-level read timeout
// is kept short on purpose — the byte reader's own deadline, not the
// driver's, governs how long a command waits for a reply.
func OpenPort(name string, baud int) (*SerialPort, error) {
	cfg := &serial.Config{
		Name:        name,
		Baud:        baud,
		Size:        8,
		Parity:      serial.ParityNone,
		StopBits:    serial.Stop1,
		ReadTimeout: 50 * time.Millisecond,
	}

	p, err := serial.OpenPort(cfg)
	if err != nil {
		return nil, newError("open", err)
	}

	return &SerialPort{port: p}, nil
}

func (s *SerialPort) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *SerialPort) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

// Close closes the underlying serial port.
func (s *SerialPort) Close() error {
	return s.port.Close()
}
