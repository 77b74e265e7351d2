package sensor

import (
	"bytes"
	"time"

	"github.com/samber/lo"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
	"github.com/ics-upjs/FPM10FingerprintSensor/transport"
)

// DownloadChar downloads the template currently held in buf.
func (s *Sensor) DownloadChar(buf byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloadStream("download char", protocol.BuildDownloadChar(buf))
}

// DownloadImage downloads the nibble-packed image currently in the image
// buffer. Use package imaging to turn the result into a Scan or PNG.
func (s *Sensor) DownloadImage() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloadStream("download image", protocol.BuildDownloadImage())
}

// UploadChar uploads template into buf, then downloads it back and
// confirms the echoed bytes equal what was sent. A template that survives
// upload but fails this round trip is reported as ok == false, not an
// error — the module accepted the data but did not store it faithfully.
func (s *Sensor) UploadChar(buf byte, template []byte) (ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.uploadStream("upload char", protocol.BuildUploadChar(buf), template); err != nil {
		return false, err
	}
	echoed, err := s.downloadStream("download char", protocol.BuildDownloadChar(buf))
	if err != nil {
		return false, err
	}
	return bytes.Equal(template, echoed), nil
}

// packedImageSize is the number of bytes a nibble-packed 288x256 image
// occupies on the wire: two pixels per byte.
const packedImageSize = protocol.ImageRows * protocol.ImageCols / 2

// UploadImage uploads a nibble-packed image into the image buffer. packed
// must be exactly packedImageSize bytes.
func (s *Sensor) UploadImage(packed []byte) error {
	if len(packed) != packedImageSize {
		return protocol.NewSensorErrorKind(protocol.KindWrongScanSize)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploadStream("upload image", protocol.BuildUploadImage(), packed)
}

// downloadStream executes cmdPayload, expects a CCOk Ack, and then reads
// Data packets until an EndData packet arrives, concatenating the payload
// of every packet read after the Ack in arrival order, including the
// terminal EndData packet's own payload. The loop below starts with the
// Ack as its "reply" without inspecting its type; the Ack's own payload is
// not part of the returned data.
func (s *Sensor) downloadStream(op string, cmdPayload []byte) ([]byte, error) {
	ack, err := s.exec(op, cmdPayload)
	if err != nil {
		return nil, err
	}
	if len(ack.Payload) != 1 {
		return nil, errReplyLength
	}
	if ack.Payload[0] != protocol.CCOk {
		return nil, protocol.NewSensorError(ack.Payload[0])
	}

	var data []byte
	reply := ack
	for reply.Type != transport.TypeEndData {
		pkt, ok := s.link.Read(time.Now().Add(s.cfg.DefaultTimeout))
		if !ok {
			return nil, &transport.Error{Op: op, Err: errTimeout}
		}
		reply = pkt
		data = append(data, reply.Payload...)
	}

	s.drain(op)
	return data, nil
}

// uploadStream executes cmdPayload, expects a CCOk Ack, drains any packets
// that might still be in flight, and then writes data as a sequence of
// Data packets chunked to the session's data package length, the last one
// marked EndData.
func (s *Sensor) uploadStream(op string, cmdPayload, data []byte) error {
	ack, err := s.exec(op, cmdPayload)
	if err != nil {
		return err
	}
	if len(ack.Payload) != 1 {
		return errReplyLength
	}
	if ack.Payload[0] != protocol.CCOk {
		return protocol.NewSensorError(ack.Payload[0])
	}

	s.drain(op)

	chunks := lo.Chunk(data, s.params.DataPackageLength)
	if len(chunks) == 0 {
		chunks = [][]byte{{}}
	}
	for i, chunk := range chunks {
		ptype := transport.TypeData
		if i == len(chunks)-1 {
			ptype = transport.TypeEndData
		}
		if err := s.link.Write(ptype, chunk); err != nil {
			return err
		}
	}
	return nil
}

// drain reads and discards packets until one times out, matching the
// original driver's defensive sweep for stray packets left on the wire.
// uploadStream calls it right after the Ack, before sending any data;
// downloadStream calls it after the terminal EndData packet.
func (s *Sensor) drain(op string) {
	for {
		if _, ok := s.link.Read(time.Now().Add(s.cfg.DefaultTimeout)); !ok {
			return
		}
	}
}
