//go:build !windows
// +build !windows

package watcher

import (
	"os"
	"syscall"

	"github.com/lukjok/crashprobe/models"
)

// exitStatus reports a process killed by a signal as abnormal.
func exitStatus(state *os.ProcessState) (models.ExitStatus, bool) {
	st := models.ExitStatus{Code: state.ExitCode()}
	ws, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !ws.Signaled() {
		return st, false
	}
	st.Signal = ws.Signal().String()
	st.CoreDump = ws.CoreDump()
	return st, true
}
