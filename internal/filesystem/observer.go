package filesystem

import "sync/atomic"

// Observer receives retry outcomes labelled by operation ("stat", "open",
// "readdir", "rename") and volume. The metrics package implements it.
type Observer interface {
	ObserveRetryAttempt(op, volume string)
	ObserveRetrySuccess(op, volume string)
	ObserveRetryFailure(op, volume string)
	ObserveRetryDuration(op, volume string, seconds float64)
	ObserveStaleError(op, volume string)
}

type nopObserver struct{}

func (nopObserver) ObserveRetryAttempt(string, string)           {}
func (nopObserver) ObserveRetrySuccess(string, string)           {}
func (nopObserver) ObserveRetryFailure(string, string)           {}
func (nopObserver) ObserveRetryDuration(string, string, float64) {}
func (nopObserver) ObserveStaleError(string, string)             {}

type observerBox struct{ Observer }

var observer atomic.Pointer[observerBox]

// SetObserver installs o for every retrying operation. nil disables recording.
func SetObserver(o Observer) {
	if o == nil {
		observer.Store(nil)
		return
	}
	observer.Store(&observerBox{o})
}

func observe() Observer {
	if b := observer.Load(); b != nil {
		return b.Observer
	}
	return nopObserver{}
}
