package debugger

import (
	"context"

	"github.com/pkg/errors"
)

var gdbCommands = []string{
	"bt full",
	"thread apply all bt",
}

type Gdb struct {
	base
}

func (g *Gdb) Name() string {
	return "gdb"
}

// coreArgument is the literal file "core" in the working directory when no
// core directory is configured.
func (g *Gdb) coreArgument() string {
	if g.opts.CoreDirectory == "" {
		return "core"
	}
	return g.opts.CoreDirectory
}

func (g *Gdb) Analyze(ctx context.Context, target Target) *Session {
	core := g.coreArgument()
	s := &Session{
		Debugger:     g.Name(),
		CoreLocation: core,
		Hint:         "gdb " + shellQuote(target.Binary) + " " + core,
	}

	if err := g.settle(ctx); err != nil {
		s.Err = errors.Wrap(err, "interrupted before starting gdb")
		s.Skipped = true
		return s
	}

	if g.pipeMode() {
		g.run(ctx, s, "/bin/bash", func(outFile string) []string {
			dbg := "gdb " + shellQuote(target.Binary) + " " + core
			return []string{"-c", pipeScript(gdbCommands, g.opts.ThinkTime, g.opts.DrainDelay, dbg, outFile)}
		}, true)
		return s
	}

	g.run(ctx, s, "gdb", func(string) []string {
		args := []string{"-nx", "-batch"}
		for _, c := range gdbCommands {
			args = append(args, "-ex", c)
		}
		return append(args, target.Binary, locateCore(core))
	}, false)
	return s
}
