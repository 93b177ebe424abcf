//go:build windows
// +build windows

package events

import (
	"github.com/pkg/errors"

	winlog "github.com/ofcoursedude/gowinlog"
)

func (e *Events) StartCapture() error {
	watcher, err := winlog.NewWinLogWatcher()
	if err != nil {
		return errors.Wrap(err, "Couldn't create watcher")
	}
	if err := watcher.SubscribeFromNow("Application", e.Query); err != nil {
		watcher.Shutdown()
		return errors.Wrap(err, "Couldn't subscribe to Application")
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case evt := <-watcher.Event():
				e.add(evt.LevelText, evt.ProviderName, evt.Msg)
			case err := <-watcher.Error():
				e.add("Error", "gowinlog", err.Error())
			}
		}
	}()

	e.mu.Lock()
	e.stop = func() {
		close(done)
		watcher.Shutdown()
	}
	e.mu.Unlock()
	return nil
}
