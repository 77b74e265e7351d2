package sensor

import (
	"github.com/samber/mo"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
)

// GetImage asks the sensor to capture the finger currently on the scanner
// into its image buffer. ok is false, with no error, when no finger is
// present — that is a benign negative, not a failure.
func (s *Sensor) GetImage() (ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt, err := s.exec("get image", protocol.BuildGetImage())
	if err != nil {
		return false, err
	}
	if len(pkt.Payload) != 1 {
		return false, errReplyLength
	}
	switch code := pkt.Payload[0]; code {
	case protocol.CCOk:
		return true, nil
	case protocol.CCNoFinger:
		return false, nil
	default:
		return false, protocol.NewSensorError(code)
	}
}

// GenerateCharacteristics extracts features from the image buffer into the
// given char buffer (protocol.CharBuffer1 or protocol.CharBuffer2).
func (s *Sensor) GenerateCharacteristics(buf byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("image2tz", protocol.BuildImage2Tz(buf))
}

// Match compares char buffer 1 against char buffer 2 and returns their
// match score. ok is false, with no error, when the two do not match.
func (s *Sensor) Match() (score int, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt, err := s.exec("match", protocol.BuildMatch())
	if err != nil {
		return 0, false, err
	}
	if len(pkt.Payload) != 3 {
		return 0, false, errReplyLength
	}
	switch code := pkt.Payload[0]; code {
	case protocol.CCOk:
		return int(pkt.Payload[1])<<8 | int(pkt.Payload[2]), true, nil
	case protocol.CCTemplatesNoMatch:
		return 0, false, nil
	default:
		return 0, false, protocol.NewSensorError(code)
	}
}

// Search compares char buffer 1 against every occupied slot in the
// library and returns the best match, if any. A search that completes
// with no match is reported as mo.None, not an error.
func (s *Sensor) Search() (mo.Option[protocol.SearchResult], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	capacity := s.params.LibraryCapacity
	pkt, err := s.exec("search", protocol.BuildSearch(0, capacity))
	if err != nil {
		return mo.None[protocol.SearchResult](), err
	}
	if len(pkt.Payload) != 5 {
		return mo.None[protocol.SearchResult](), errReplyLength
	}
	switch code := pkt.Payload[0]; code {
	case protocol.CCOk:
		result := protocol.SearchResult{
			ID:         int(pkt.Payload[1])<<8 | int(pkt.Payload[2]),
			MatchScore: int(pkt.Payload[3])<<8 | int(pkt.Payload[4]),
		}
		return mo.Some(result), nil
	case protocol.CCNoMatchInLibrary:
		return mo.None[protocol.SearchResult](), nil
	default:
		return mo.None[protocol.SearchResult](), protocol.NewSensorError(code)
	}
}

// CreateModel fuses char buffer 1 and char buffer 2 into a single template,
// failing if the two do not share enough features. The enrol workflows
// store and download the fused template from char buffer 2.
func (s *Sensor) CreateModel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("create model", protocol.BuildCreateModel())
}

// Store persists the template currently in buf at the given library slot.
func (s *Sensor) Store(buf byte, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("store", protocol.BuildStore(buf, slot))
}

// LoadChar loads the template at the given library slot into buf.
func (s *Sensor) LoadChar(buf byte, slot int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("load char", protocol.BuildLoadChar(buf, slot))
}

// DeleteModels deletes count templates starting at slot.
func (s *Sensor) DeleteModels(slot, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("delete char", protocol.BuildDeleteChar(slot, count))
}

// DeleteModel deletes the single template at slot.
func (s *Sensor) DeleteModel(slot int) error {
	return s.DeleteModels(slot, 1)
}

// EmptyLibrary deletes every template in the library.
func (s *Sensor) EmptyLibrary() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ack1("empty library", protocol.BuildEmptyLib())
}

// TemplateCount returns the number of templates currently stored.
func (s *Sensor) TemplateCount() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pkt, err := s.exec("template count", protocol.BuildTemplateCount())
	if err != nil {
		return 0, err
	}
	if len(pkt.Payload) != 3 {
		return 0, errReplyLength
	}
	if pkt.Payload[0] != protocol.CCOk {
		return 0, protocol.NewSensorError(pkt.Payload[0])
	}
	return int(pkt.Payload[1])<<8 | int(pkt.Payload[2]), nil
}

// ack1 executes a command whose reply carries nothing but a confirmation
// code, the common case for commands with no further outcome to report.
func (s *Sensor) ack1(op string, payload []byte) error {
	pkt, err := s.exec(op, payload)
	if err != nil {
		return err
	}
	if len(pkt.Payload) != 1 {
		return errReplyLength
	}
	if pkt.Payload[0] != protocol.CCOk {
		return protocol.NewSensorError(pkt.Payload[0])
	}
	return nil
}
