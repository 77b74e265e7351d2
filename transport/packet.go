// Package transport implements the FPM10 framed wire protocol on top of a
// raw byte stream: packet serialization, prolog synchronization, checksum
// validation, and the buffered, deadline-aware byte reader that absorbs
// UART chunking underneath it. It knows nothing about instruction opcodes
// or confirmation codes — that belongs to package protocol.
package transport

import (
	"encoding/binary"
	"io"
	"time"
)

// Packet types, per the FPM10 wire protocol.
const (
	TypeCommand byte = 0x01
	TypeData    byte = 0x02
	TypeAck     byte = 0x07
	TypeEndData byte = 0x08
)

var headerBytes = [2]byte{0xEF, 0x01}

// Packet is the atomic wire unit exchanged with the sensor: a type and a
// payload. Length and checksum are framing details hidden behind Write/Read.
type Packet struct {
	Type    byte
	Payload []byte
}

// Link frames packets on top of a raw byte stream (typically a serial
// port). It owns the ByteReader used to synchronize to the prolog and read
// metadata/payload/checksum under a deadline.
//
// Link is the sole place module address and checksum handling live; the
// command layer above it only ever sees Packet values.
type Link struct {
	w       io.Writer
	reader  *ByteReader
	address uint32
}

// NewLink constructs a framed transport over w for writing and r (wrapped
// in a ByteReader at the given baud) for reading. address is the module
// address placed in every packet's prolog.
func NewLink(w io.Writer, r io.Reader, baud int, address uint32) *Link {
	return NewLinkSize(w, r, baud, address, 0)
}

// NewLinkSize is like NewLink but starts the underlying ByteReader with a
// ring buffer of the given capacity instead of the default.
func NewLinkSize(w io.Writer, r io.Reader, baud int, address uint32, bufferSize int) *Link {
	return &Link{
		w:       w,
		reader:  NewByteReaderSize(r, baud, bufferSize),
		address: address,
	}
}

// SetAddress updates the module address used in the prolog of subsequent
// writes and reads. Called once the handshake has read the real address
// back from the sensor (spec default is 0xFFFFFFFF until then).
func (l *Link) SetAddress(address uint32) {
	l.address = address
}

// Write serializes and sends a single packet: prolog, type, big-endian
// length, payload, big-endian checksum. The only failure mode is a write
// error on the underlying stream.
func (l *Link) Write(ptype byte, payload []byte) error {
	frame := l.buildFrame(ptype, payload)
	if _, err := l.w.Write(frame); err != nil {
		return newError("write", err)
	}
	return nil
}

func (l *Link) buildFrame(ptype byte, payload []byte) []byte {
	length := len(payload) + 2

	frame := make([]byte, 0, 6+3+len(payload)+2)
	frame = append(frame, headerBytes[0], headerBytes[1])
	frame = binary.BigEndian.AppendUint32(frame, l.address)
	frame = append(frame, ptype, byte(length>>8), byte(length))
	frame = append(frame, payload...)

	checksum := packetChecksum(ptype, length, payload)
	frame = append(frame, byte(checksum>>8), byte(checksum))

	return frame
}

func packetChecksum(ptype byte, length int, payload []byte) uint16 {
	sum := uint16(ptype) + uint16(byte(length>>8)) + uint16(byte(length))
	for _, b := range payload {
		sum += uint16(b)
	}
	return sum
}

// prolog returns the 6-byte prolog (header + module address) the reader
// synchronizes to before every packet.
func (l *Link) prolog() [6]byte {
	var p [6]byte
	p[0], p[1] = headerBytes[0], headerBytes[1]
	binary.BigEndian.PutUint32(p[2:], l.address)
	return p
}

// Read synchronizes to the next packet's prolog and parses it, honoring
// deadline across the whole operation. ok is false on timeout, a checksum
// mismatch, or a malformed length — the caller treats any of these as a
// transport-level failure.
//
// Synchronization slides a match index across incoming bytes: a mismatch
// resets the index to zero rather than re-examining earlier bytes. This is
// safe because the header byte 0xEF is distinctive and the driver never
// begins a read while unread bytes from a previous packet remain.
func (l *Link) Read(deadline time.Time) (Packet, bool) {
	prolog := l.prolog()

	matched := 0
	for matched < len(prolog) {
		b, ok := l.reader.ReadByte(deadline)
		if !ok {
			return Packet{}, false
		}
		if b == prolog[matched] {
			matched++
		} else {
			matched = 0
		}
	}

	metadata, ok := l.reader.ReadN(3, deadline)
	if !ok {
		return Packet{}, false
	}

	ptype := metadata[0]
	length := int(metadata[1])<<8 | int(metadata[2])
	if length < 2 {
		return Packet{}, false
	}

	payload, ok := l.reader.ReadN(length-2, deadline)
	if !ok {
		return Packet{}, false
	}

	checksumBytes, ok := l.reader.ReadN(2, deadline)
	if !ok {
		return Packet{}, false
	}

	expected := packetChecksum(ptype, length, payload)
	actual := uint16(checksumBytes[0])<<8 | uint16(checksumBytes[1])
	if expected != actual {
		return Packet{}, false
	}

	return Packet{Type: ptype, Payload: payload}, true
}
