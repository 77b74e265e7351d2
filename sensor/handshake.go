package sensor

import (
	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
)

// verifyPassword sends VerifyPassword with the configured password and
// requires CCOk back.
func (s *Sensor) verifyPassword() error {
	pkt, err := s.exec("verify password", protocol.BuildVerifyPassword(s.cfg.Password))
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

// readSystemParams sends ReadSysParam and decodes the session parameters.
func (s *Sensor) readSystemParams() (protocol.SessionParams, error) {
	pkt, err := s.exec("read system params", protocol.BuildReadSysParam())
	if err != nil {
		return protocol.SessionParams{}, err
	}
	if len(pkt.Payload) != protocol.SystemParamsSize {
		return protocol.SessionParams{}, errReplyLength
	}
	if pkt.Payload[0] != protocol.CCOk {
		return protocol.SessionParams{}, protocol.NewSensorError(pkt.Payload[0])
	}
	return protocol.ParseSystemParams(pkt.Payload[1:])
}
