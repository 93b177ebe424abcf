package debugger

import (
	"context"
	"path"
	"strconv"

	"github.com/pkg/errors"
)

// lldb has no equivalent of gdb's "bt full", so the locals of the topmost
// frames are printed one frame at a time.
const lldbLocalFrames = 5

func lldbCommands() []string {
	cmds := []string{"bt"}
	for i := 0; i < lldbLocalFrames; i++ {
		cmds = append(cmds, "frame variable", "up")
	}
	return append(cmds, "thread backtrace all")
}

type Lldb struct {
	base
}

func (l *Lldb) Name() string {
	return "lldb"
}

func (l *Lldb) corePath(pid int) string {
	return path.Join(l.opts.LldbCoreDir, "core."+strconv.Itoa(pid))
}

func (l *Lldb) Analyze(ctx context.Context, target Target) *Session {
	core := l.corePath(target.Pid)
	s := &Session{
		Debugger:     l.Name(),
		CoreLocation: core,
		Hint:         "lldb " + shellQuote(target.Binary) + " -c " + core,
	}

	if err := l.settle(ctx); err != nil {
		s.Err = errors.Wrap(err, "interrupted before starting lldb")
		s.Skipped = true
		return s
	}

	if l.pipeMode() {
		l.run(ctx, s, "/bin/bash", func(outFile string) []string {
			dbg := "lldb " + shellQuote(target.Binary) + " -c " + shellQuote(core)
			return []string{"-c", pipeScript(lldbCommands(), l.opts.ThinkTime, l.opts.DrainDelay, dbg, outFile)}
		}, true)
		return s
	}

	l.run(ctx, s, "lldb", func(string) []string {
		args := []string{"--batch", "-c", core}
		for _, c := range lldbCommands() {
			args = append(args, "-o", c)
		}
		return append(args, target.Binary)
	}, false)
	return s
}
