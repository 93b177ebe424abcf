// Package debugger drives the native debugger of the host platform against a
// crashed binary and its core file, capturing the session text and a command
// line a human can use to reopen the same session.
package debugger

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lukjok/crashprobe/config"
	"github.com/lukjok/crashprobe/models"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

type Target struct {
	Pid     int
	RootDir string
	// Binary is the preserved copy of the crashed executable.
	Binary  string
	Monitor models.Monitor
}

// Session is the outcome of one debugger run. Hint is the intended command
// line and is set even when the debugger itself failed.
type Session struct {
	Debugger     string
	CoreLocation string
	Command      []string
	Output       string
	Hint         string
	ExitCode     int
	Skipped      bool
	Err          error
}

type Strategy interface {
	Name() string
	Analyze(ctx context.Context, target Target) *Session
}

// New picks the strategy for platform. opts is read on every Analyze call,
// so changes made to it after construction are honoured.
func New(platform models.Platform, opts *config.AnalysisOptions, runner Runner, log util.Logger) Strategy {
	if runner == nil {
		runner = ExecRunner{}
	}
	b := base{opts: opts, runner: runner, log: log}
	switch platform {
	case models.Windows:
		return &Cdb{b}
	case models.Darwin:
		return &Lldb{b}
	default:
		return &Gdb{b}
	}
}

type base struct {
	opts   *config.AnalysisOptions
	runner Runner
	log    util.Logger
}

func (b *base) settle(ctx context.Context) error {
	return sleep(ctx, b.opts.SettleDelay)
}

func (b *base) pipeMode() bool {
	return b.opts.ScriptMode == config.ScriptModePipe
}

// run executes name with args, sending its output to a temporary file that is
// read back afterwards. With redirect set the file is not handed to the
// process; the caller's script is expected to write it.
func (b *base) run(ctx context.Context, s *Session, name string, args func(outFile string) []string, redirect bool) {
	outFile, err := util.TempFile(s.Debugger + "-*.log")
	if err != nil {
		s.Err = err
		return
	}
	defer os.Remove(outFile)

	s.Command = append([]string{name}, args(outFile)...)
	b.log.LogInfo("running " + strings.Join(s.Command, " "))

	var exitCode int
	if redirect {
		exitCode, err = b.runner.Run(ctx, name, s.Command[1:], nil)
	} else {
		var f *os.File
		f, err = os.OpenFile(outFile, os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			s.Err = errors.Wrap(err, "Failed to open debugger output file")
			return
		}
		exitCode, err = b.runner.Run(ctx, name, s.Command[1:], f)
		f.Close()
	}
	s.ExitCode = exitCode
	if err != nil {
		s.Err = errors.Wrapf(err, "%s exited abnormally", s.Debugger)
		b.log.LogWarning(s.Err.Error())
	}

	out, readErr := util.ReadTextFile(outFile)
	if readErr != nil {
		b.log.LogWarning("Failed to read debugger output: " + readErr.Error())
		if s.Err == nil {
			s.Err = readErr
		}
		return
	}
	s.Output = out
	if len(strings.TrimSpace(out)) == 0 && s.Err == nil {
		s.Err = errors.Errorf("%s produced no output", s.Debugger)
	}
}

// locateCore expands a glob to the most recently written match. Locations
// without glob characters, or globs matching nothing, are returned unchanged.
func locateCore(location string) string {
	if !strings.ContainsAny(location, "*?[") {
		return location
	}
	matches, err := filepath.Glob(location)
	if err != nil || len(matches) == 0 {
		return location
	}

	newest := matches[0]
	var newestTime time.Time
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if info.ModTime().After(newestTime) {
			newest, newestTime = m, info.ModTime()
		}
	}
	return newest
}

// shellQuote quotes s for /bin/sh unless it consists of safe characters only.
func shellQuote(s string) string {
	if s != "" && strings.IndexFunc(s, unsafeShellRune) < 0 {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func unsafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case strings.ContainsRune("/._-+:@%=,", r):
		return false
	}
	return true
}

// pipeScript builds the timed shell pipeline that feeds commands into an
// interactive debugger: the commands are printed, the debugger gets
// thinkTime to work, then quit is sent and the pipe is kept open for drain.
func pipeScript(commands []string, thinkTime, drain time.Duration, debuggerCmd, outFile string) string {
	var sb strings.Builder
	sb.WriteString("(printf '")
	for _, c := range commands {
		sb.WriteString(c)
		sb.WriteString(`\n`)
	}
	sb.WriteString("'; sleep ")
	sb.WriteString(seconds(thinkTime))
	sb.WriteString("; echo quit; sleep ")
	sb.WriteString(seconds(drain))
	sb.WriteString(") | ")
	sb.WriteString(debuggerCmd)
	sb.WriteString(" > ")
	sb.WriteString(shellQuote(outFile))
	sb.WriteString(" 2>&1")
	return sb.String()
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

var sleep = func(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
