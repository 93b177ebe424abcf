package memdump

import (
	"context"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/lukjok/crashprobe/debugger"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

type MemoryDumpManager interface {
	StartDump(pid int) (*Monitor, error)
}

// MemoryDump attaches a procdump style dump writer to a running process so
// that a crash leaves <rootDir>\core.dmp behind for cdb.
type MemoryDump struct {
	RootDir      string
	DumpToolPath string
}

func NewMemoryDump(rootDir, dumpToolPath string) *MemoryDump {
	return &MemoryDump{
		RootDir:      rootDir,
		DumpToolPath: dumpToolPath,
	}
}

// Args are the dump tool parameters: accept the EULA, write a full dump
// when pid raises an unhandled exception.
func (m *MemoryDump) Args(pid int) []string {
	return []string{"-accepteula", "-ma", "-e", strconv.Itoa(pid), debugger.DumpPath(m.RootDir)}
}

func (m *MemoryDump) StartDump(pid int) (*Monitor, error) {
	if !util.FileExists(m.DumpToolPath) {
		return nil, errors.Errorf("Memory dump tool does not exist at given path: %v", m.DumpToolPath)
	}

	if !util.DirectoryExists(m.RootDir) {
		return nil, errors.Errorf("Root directory for the memory dump does not exist: %v", m.RootDir)
	}

	cmd := exec.Command(m.DumpToolPath, m.Args(pid)...)
	cmd.Dir = filepath.Dir(m.DumpToolPath)

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(err, "Failed to start memory dump tool")
	}

	return newMonitor(cmd.Wait), nil
}

// Monitor is the handle on a running dump writer.
type Monitor struct {
	done chan struct{}
	err  error
}

func newMonitor(wait func() error) *Monitor {
	m := &Monitor{done: make(chan struct{})}
	go func() {
		m.err = wait()
		close(m.done)
	}()
	return m
}

// Wait blocks until the dump writer exits or ctx is done.
func (m *Monitor) Wait(ctx context.Context) error {
	select {
	case <-m.done:
		return m.err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "dump writer still running")
	}
}
