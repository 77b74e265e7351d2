package sensor

import (
	"bytes"
	"testing"
	"time"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
	"github.com/ics-upjs/FPM10FingerprintSensor/transport"
)

func TestDownloadCharConcatenatesPackets(t *testing.T) {
	s, dev := newTestSensor(t)
	defer s.Close()

	dev.enqueue(
		encodeFrame(t, testModuleAddress, transport.TypeAck, []byte{protocol.CCOk}),
		encodeFrame(t, testModuleAddress, transport.TypeData, []byte{0x01, 0x02, 0x03}),
		encodeFrame(t, testModuleAddress, transport.TypeEndData, []byte{0x04, 0x05}),
	)

	got, err := s.DownloadChar(protocol.CharBuffer1)
	if err != nil {
		t.Fatalf("DownloadChar() error = %v", err)
	}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	if !bytes.Equal(got, want) {
		t.Errorf("DownloadChar() = % X, want % X", got, want)
	}
}

func TestDownloadCharRejectsNonOkAck(t *testing.T) {
	s, dev := newTestSensor(t)
	defer s.Close()
	dev.enqueue(encodeFrame(t, testModuleAddress, transport.TypeAck, []byte{protocol.CCTemplateReadError}))

	_, err := s.DownloadChar(protocol.CharBuffer1)
	if err == nil {
		t.Fatal("DownloadChar() error = nil, want template read error")
	}
}

// moduleStub is a minimal protocol-aware fake module: it remembers
// whatever template bytes the driver uploads to a char buffer and echoes
// them back verbatim on the next DownloadChar for that buffer. It is only
// wired to respond to the commands the round-trip test below issues.
type moduleStub struct {
	dev      *fakeDevice
	charBuf  map[byte][]byte
	uploadTo byte
	uploaded []byte
}

func newModuleStub() *moduleStub {
	m := &moduleStub{charBuf: map[byte][]byte{}}
	m.dev = &fakeDevice{onFrame: m.onFrame}
	return m
}

func (m *moduleStub) onFrame(dev *fakeDevice, ptype byte, payload []byte) {
	switch ptype {
	case transport.TypeCommand:
		switch payload[0] {
		case protocol.ICUploadChar:
			m.uploadTo = payload[1]
			m.uploaded = nil
			dev.enqueue(ackFrame(protocol.CCOk))
		case protocol.ICDownloadChar:
			dev.enqueue(ackFrame(protocol.CCOk))
			dev.enqueue(dataFrame(transport.TypeEndData, m.charBuf[payload[1]]))
		}
	case transport.TypeData:
		m.uploaded = append(m.uploaded, payload...)
	case transport.TypeEndData:
		m.uploaded = append(m.uploaded, payload...)
		m.charBuf[m.uploadTo] = m.uploaded
	}
}

func ackFrame(code byte) []byte {
	var out bytes.Buffer
	link := transport.NewLink(&out, bytes.NewReader(nil), 57600, testModuleAddress)
	link.Write(transport.TypeAck, []byte{code})
	return out.Bytes()
}

func dataFrame(ptype byte, payload []byte) []byte {
	var out bytes.Buffer
	link := transport.NewLink(&out, bytes.NewReader(nil), 57600, testModuleAddress)
	link.Write(ptype, payload)
	return out.Bytes()
}

func TestUploadCharRoundTrip(t *testing.T) {
	m := newModuleStub()
	m.dev.enqueue(
		encodeFrame(t, testModuleAddress, transport.TypeAck, []byte{protocol.CCOk}),
		encodeFrame(t, testModuleAddress, transport.TypeAck, defaultParamsPayload()),
	)

	s := New("", WithDefaultTimeout(80*time.Millisecond))
	if err := s.OpenTransport(m.dev); err != nil {
		t.Fatalf("OpenTransport() error = %v", err)
	}
	defer s.Close()

	template := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	ok, err := s.UploadChar(protocol.CharBuffer2, template)
	if err != nil {
		t.Fatalf("UploadChar() error = %v", err)
	}
	if !ok {
		t.Errorf("UploadChar() ok = false, want true (round trip should match)")
	}
}

func TestUploadCharRoundTripMismatch(t *testing.T) {
	m := newModuleStub()
	m.dev.enqueue(
		encodeFrame(t, testModuleAddress, transport.TypeAck, []byte{protocol.CCOk}),
		encodeFrame(t, testModuleAddress, transport.TypeAck, defaultParamsPayload()),
	)

	s := New("", WithDefaultTimeout(80*time.Millisecond))
	if err := s.OpenTransport(m.dev); err != nil {
		t.Fatalf("OpenTransport() error = %v", err)
	}
	defer s.Close()

	template := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	// Corrupt what the module stores so the echoed bytes diverge.
	m.dev.onFrame = func(dev *fakeDevice, ptype byte, payload []byte) {
		m.onFrame(dev, ptype, payload)
		if ptype == transport.TypeEndData {
			m.charBuf[m.uploadTo][0] ^= 0xFF
		}
	}

	ok, err := s.UploadChar(protocol.CharBuffer2, template)
	if err != nil {
		t.Fatalf("UploadChar() error = %v", err)
	}
	if ok {
		t.Errorf("UploadChar() ok = true, want false (round trip should not match)")
	}
}
