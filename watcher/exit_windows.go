//go:build windows
// +build windows

package watcher

import (
	"fmt"
	"os"

	"github.com/lukjok/crashprobe/models"
)

// exitStatus reports NTSTATUS error exit codes (0xC...) as abnormal; those
// are what an unhandled exception terminates a process with.
func exitStatus(state *os.ProcessState) (models.ExitStatus, bool) {
	code := uint32(state.ExitCode())
	st := models.ExitStatus{Code: state.ExitCode()}
	if code&0xC0000000 != 0xC0000000 {
		return st, false
	}
	st.Signal = fmt.Sprintf("0x%08x", code)
	return st, true
}
