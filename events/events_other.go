//go:build !windows
// +build !windows

package events

// StartCapture is a no-op; crash events are only read from the Windows
// event log.
func (e *Events) StartCapture() error {
	return nil
}
