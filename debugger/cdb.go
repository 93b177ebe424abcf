package debugger

import (
	"context"
	"os"
	"strings"

	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

const CdbDumpName = "core.dmp"

var cdbCommands = []string{
	"kp",          // current thread's backtrace with arguments
	"~*kb",        // stack traces of all threads
	"dv",          // local variables
	"!analyze -v", // verbose automated analysis
	"q",
}

type Cdb struct {
	base
}

func (c *Cdb) Name() string {
	return "cdb"
}

// DumpPath is where the dump writer leaves the dump of the process rooted
// at rootDir.
func DumpPath(rootDir string) string {
	return rootDir + `\` + CdbDumpName
}

func (c *Cdb) Analyze(ctx context.Context, target Target) *Session {
	core := DumpPath(target.RootDir)
	s := &Session{
		Debugger:     c.Name(),
		CoreLocation: core,
	}

	if target.Monitor != nil {
		waitCtx, cancel := ctx, context.CancelFunc(func() {})
		if c.opts.DumpWaitTimeout > 0 {
			waitCtx, cancel = context.WithTimeout(ctx, c.opts.DumpWaitTimeout)
		}
		err := target.Monitor.Wait(waitCtx)
		cancel()
		if err != nil {
			c.log.LogWarning("waiting for dump writer: " + err.Error())
		}
	}

	if !util.FileExists(core) {
		s.Skipped = true
		s.Err = errors.Wrapf(os.ErrNotExist, "core file %s not found?", core)
		c.log.LogError(s.Err.Error())
		return s
	}

	script := strings.Join(cdbCommands, "; ")
	s.Hint = "cdb -z " + core + ` -c "` + script + `"`

	if err := c.settle(ctx); err != nil {
		s.Err = errors.Wrap(err, "interrupted before starting cdb")
		s.Skipped = true
		return s
	}

	c.run(ctx, s, "cdb", func(string) []string {
		return []string{"-z", core, "-c", script}
	}, false)
	return s
}
