package workflow

// HumanActionListener is the callback surface a workflow drives as it
// walks a human operator through placing and removing a finger. The third
// method is only ever called by the data-returning enrol variant, while it
// downloads the raw scan.
type HumanActionListener interface {
	PutFinger()
	RemoveFinger()
	WaitWhileDataTransferring()
}

// NopListener implements HumanActionListener with no-ops, useful for the
// non-interactive workflows and in tests that don't care about the
// callback sequence.
type NopListener struct{}

func (NopListener) PutFinger()                 {}
func (NopListener) RemoveFinger()              {}
func (NopListener) WaitWhileDataTransferring() {}

// ListenerFuncs adapts three plain functions into a HumanActionListener,
// for callers that would rather pass closures than implement the
// interface on a named type.
type ListenerFuncs struct {
	PutFingerFunc                 func()
	RemoveFingerFunc              func()
	WaitWhileDataTransferringFunc func()
}

func (l ListenerFuncs) PutFinger() {
	if l.PutFingerFunc != nil {
		l.PutFingerFunc()
	}
}

func (l ListenerFuncs) RemoveFinger() {
	if l.RemoveFingerFunc != nil {
		l.RemoveFingerFunc()
	}
}

func (l ListenerFuncs) WaitWhileDataTransferring() {
	if l.WaitWhileDataTransferringFunc != nil {
		l.WaitWhileDataTransferringFunc()
	}
}
