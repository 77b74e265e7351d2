package workflow

import (
	"time"

	"github.com/samber/mo"

	"github.com/ics-upjs/FPM10FingerprintSensor/protocol"
)

// EnrollmentBundle is the outcome of EnrollAndGetData: the two raw scans
// captured during enrolment and the feature vector of the combined
// template stored in char buffer 2.
type EnrollmentBundle struct {
	Scan1    []byte
	Scan2    []byte
	Features []byte
}

// Enroll captures two scans from listener's operator, fuses them into a
// template, and stores it at slot. It sleeps SettleDelay between the first
// capture's finger-removal and the second put-finger callback — see
// EnrollAndGetData for why that pause is not also present there.
func (e *Engine) Enroll(slot int, listener HumanActionListener) error {
	return e.enroll(slot, listener, nil)
}

// EnrollAsync is the non-blocking counterpart of Enroll.
func (e *Engine) EnrollAsync(slot int, listener HumanActionListener) *Activity[struct{}] {
	act := newActivity[struct{}]()
	go func() {
		err := e.enroll(slot, listener, act)
		act.setDone(struct{}{}, err)
	}()
	return act
}

func (e *Engine) enroll(slot int, listener HumanActionListener, c canceller) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer1); err != nil {
		return err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return err
	}

	time.Sleep(e.settleDelay)

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer2); err != nil {
		return err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return err
	}

	if err := e.sensor.CreateModel(); err != nil {
		return err
	}
	return e.sensor.Store(protocol.CharBuffer2, slot)
}

// EnrollAndGetData is Enroll's data-returning sibling: it downloads each
// raw scan (signalling listener.WaitWhileDataTransferring first) before
// deriving its characteristics, and downloads the fused template's
// features after CreateModel. It does not sleep between captures the way
// Enroll does — an asymmetry present in the original driver and preserved
// here rather than "fixed"; SettleDelay has no effect on this method.
func (e *Engine) EnrollAndGetData(slot int, listener HumanActionListener) (EnrollmentBundle, error) {
	return e.enrollAndGetData(slot, listener, nil)
}

// EnrollAndGetDataAsync is the non-blocking counterpart of
// EnrollAndGetData.
func (e *Engine) EnrollAndGetDataAsync(slot int, listener HumanActionListener) *Activity[EnrollmentBundle] {
	act := newActivity[EnrollmentBundle]()
	go func() {
		bundle, err := e.enrollAndGetData(slot, listener, act)
		act.setDone(bundle, err)
	}()
	return act
}

func (e *Engine) enrollAndGetData(slot int, listener HumanActionListener, c canceller) (EnrollmentBundle, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var bundle EnrollmentBundle

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return bundle, err
	}
	listener.WaitWhileDataTransferring()
	scan1, err := e.sensor.DownloadImage()
	if err != nil {
		return bundle, err
	}
	bundle.Scan1 = scan1
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer1); err != nil {
		return bundle, err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return bundle, err
	}

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return bundle, err
	}
	listener.WaitWhileDataTransferring()
	scan2, err := e.sensor.DownloadImage()
	if err != nil {
		return bundle, err
	}
	bundle.Scan2 = scan2
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer2); err != nil {
		return bundle, err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return bundle, err
	}

	if err := e.sensor.CreateModel(); err != nil {
		return bundle, err
	}
	if err := e.sensor.Store(protocol.CharBuffer2, slot); err != nil {
		return bundle, err
	}

	features, err := e.sensor.DownloadChar(protocol.CharBuffer2)
	if err != nil {
		return bundle, err
	}
	bundle.Features = features
	return bundle, nil
}

// Search captures a scan and searches the whole library for it.
func (e *Engine) Search(listener HumanActionListener) (mo.Option[protocol.SearchResult], error) {
	return e.search(listener, nil)
}

// SearchAsync is the non-blocking counterpart of Search.
func (e *Engine) SearchAsync(listener HumanActionListener) *Activity[mo.Option[protocol.SearchResult]] {
	act := newActivity[mo.Option[protocol.SearchResult]]()
	go func() {
		result, err := e.search(listener, act)
		act.setDone(result, err)
	}()
	return act
}

func (e *Engine) search(listener HumanActionListener, c canceller) (mo.Option[protocol.SearchResult], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	none := mo.None[protocol.SearchResult]()

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return none, err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer1); err != nil {
		return none, err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return none, err
	}

	return e.sensor.Search()
}

// Match captures a scan and compares it against the template stored at
// slot, returning the match score. ok is false, with no error, when the
// two do not match.
func (e *Engine) Match(slot int, listener HumanActionListener) (score int, ok bool, err error) {
	return e.match(slot, listener, nil)
}

// MatchAsync is the non-blocking counterpart of Match.
func (e *Engine) MatchAsync(slot int, listener HumanActionListener) *Activity[MatchResult] {
	act := newActivity[MatchResult]()
	go func() {
		score, ok, err := e.match(slot, listener, act)
		act.setDone(MatchResult{Score: score, Matched: ok}, err)
	}()
	return act
}

// MatchResult is Match's outcome, bundled for delivery through an
// Activity, which carries a single result value rather than a tuple.
type MatchResult struct {
	Score   int
	Matched bool
}

func (e *Engine) match(slot int, listener HumanActionListener, c canceller) (score int, ok bool, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sensor.LoadChar(protocol.CharBuffer1, slot); err != nil {
		return 0, false, err
	}

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return 0, false, err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer2); err != nil {
		return 0, false, err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return 0, false, err
	}

	return e.sensor.Match()
}

// DownloadImage captures a scan and downloads its nibble-packed image.
func (e *Engine) DownloadImage(listener HumanActionListener) ([]byte, error) {
	return e.downloadImage(listener, nil)
}

// DownloadImageAsync is the non-blocking counterpart of DownloadImage.
func (e *Engine) DownloadImageAsync(listener HumanActionListener) *Activity[[]byte] {
	act := newActivity[[]byte]()
	go func() {
		data, err := e.downloadImage(listener, act)
		act.setDone(data, err)
	}()
	return act
}

func (e *Engine) downloadImage(listener HumanActionListener, c canceller) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	listener.PutFinger()
	if err := e.waitForFingerprint(c); err != nil {
		return nil, err
	}

	listener.RemoveFinger()
	if err := e.waitForFingerRemoved(c); err != nil {
		return nil, err
	}

	return e.sensor.DownloadImage()
}

// UploadAndSearch uploads a nibble-packed scan straight into the image
// buffer, derives its characteristics, and searches the library for it.
// There is no finger-presence polling here — the scan already came from
// the host, not from the sensor's optical window.
func (e *Engine) UploadAndSearch(scan []byte) (mo.Option[protocol.SearchResult], error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	none := mo.None[protocol.SearchResult]()

	if err := e.sensor.UploadImage(scan); err != nil {
		return none, err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer1); err != nil {
		return none, err
	}
	return e.sensor.Search()
}

// EnrollFromTemplate stores a feature vector obtained off-device directly
// at slot, without capturing anything from the sensor's optical window.
func (e *Engine) EnrollFromTemplate(slot int, features []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	ok, err := e.sensor.UploadChar(protocol.CharBuffer2, features)
	if err != nil {
		return err
	}
	if !ok {
		return protocol.NewSensorErrorKind(protocol.KindUploadVerificationFailed)
	}
	return e.sensor.Store(protocol.CharBuffer2, slot)
}

// EnrollFromScans fuses two scans obtained off-device into a template and
// stores it at slot, pausing SettleDelay between the two uploads the same
// way the interactive Enroll does between its two captures.
func (e *Engine) EnrollFromScans(slot int, scan1, scan2 []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sensor.UploadImage(scan1); err != nil {
		return err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer1); err != nil {
		return err
	}

	time.Sleep(e.settleDelay)

	if err := e.sensor.UploadImage(scan2); err != nil {
		return err
	}
	if err := e.sensor.GenerateCharacteristics(protocol.CharBuffer2); err != nil {
		return err
	}

	if err := e.sensor.CreateModel(); err != nil {
		return err
	}
	return e.sensor.Store(protocol.CharBuffer2, slot)
}
