package events

import (
	"fmt"
	"sync"
)

// DefaultWindowsQuery selects the crash reports Windows writes to the
// Application log.
const DefaultWindowsQuery = "*[System[Provider[@Name='Application Error' or @Name='Windows Error Reporting']]]"

type EventManager interface {
	StartCapture() error
	StopCapture()
	GetEventData() []string
}

// Events collects event log entries while a supervised process runs. On
// platforms without an event log it stays empty.
type Events struct {
	Query string

	mu   sync.Mutex
	data []string
	stop func()
}

func NewEvents(query string) *Events {
	return &Events{Query: query}
}

func (e *Events) add(level, provider, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data = append(e.data, fmt.Sprintf("%s: %s: %s", level, provider, msg))
}

func (e *Events) StopCapture() {
	e.mu.Lock()
	stop := e.stop
	e.stop = nil
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
}

func (e *Events) GetEventData() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.data...)
}
