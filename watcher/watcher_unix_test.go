//go:build linux || darwin
// +build linux darwin

package watcher

import (
	"context"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/lukjok/crashprobe/analyzer"
	"github.com/lukjok/crashprobe/config"
	"github.com/lukjok/crashprobe/models"
	"github.com/lukjok/crashprobe/output"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

type fakeRunner struct {
	calls  int
	output string
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, w io.Writer) (int, error) {
	f.calls++
	if w != nil {
		out := f.output
		if out == "" {
			out = "#0  0x0000 in main ()\n"
		}
		io.WriteString(w, out)
	}
	return 0, nil
}

func newTestWatcher(t *testing.T) (*Watcher, *fakeRunner, string) {
	t.Helper()
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("no /bin/sh")
	}
	dir := t.TempDir()
	settings := config.Configuration{
		ScriptMode:  config.ScriptModeBatch,
		LldbCoreDir: "/cores",
		OutputPath:  filepath.Join(dir, "out"),
	}
	runner := &fakeRunner{}
	log := util.NewLoggerTo(ioutil.Discard, true)
	a := analyzer.New(models.Linux, filepath.Join(dir, "no_core_pattern"), runner, log)
	return NewWatcher(settings, dir, a, log), runner, dir
}

func TestRunAnalyzesSignaledProcess(t *testing.T) {
	w, runner, dir := newTestWatcher(t)

	report, err := w.Run(context.Background(), "/bin/sh", []string{"-c", "echo dying >&2; kill -SEGV $$"}, "crash test")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report == nil {
		t.Fatal("expected a crash report")
	}
	if report.Signal != "segmentation fault" || report.Explanation != memoryCorruptionError {
		t.Errorf("Signal = %q, Explanation = %q", report.Signal, report.Explanation)
	}
	if !strings.Contains(report.ExecutableOutput, "dying") {
		t.Errorf("ExecutableOutput = %q", report.ExecutableOutput)
	}
	if runner.calls != 1 {
		t.Errorf("debugger calls = %d", runner.calls)
	}

	preserved := filepath.Join(dir, "sh_"+strconv.Itoa(report.Pid))
	if report.PreservedBinary != preserved || !util.FileExists(preserved) {
		t.Errorf("PreservedBinary = %q", report.PreservedBinary)
	}
	if report.DebuggerHint != `Run debugger with "gdb `+preserved+` core"` {
		t.Errorf("DebuggerHint = %q", report.DebuggerHint)
	}

	saved, err := output.LoadCrash(filepath.Join(w.Settings.OutputPath, output.CrashDirName, strconv.Itoa(report.Pid)+"_sh.json"))
	if err != nil {
		t.Fatalf("LoadCrash: %v", err)
	}
	if saved.DebuggerHint != report.DebuggerHint {
		t.Errorf("saved hint = %q", saved.DebuggerHint)
	}
}

func TestRunIgnoresNormalExit(t *testing.T) {
	w, runner, _ := newTestWatcher(t)

	report, err := w.Run(context.Background(), "/bin/sh", []string{"-c", "exit 3"}, "exit test")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report != nil {
		t.Errorf("unexpected report %+v", report)
	}
	if runner.calls != 0 {
		t.Errorf("debugger calls = %d", runner.calls)
	}
}

func TestRunMissingBinary(t *testing.T) {
	w, _, dir := newTestWatcher(t)
	if _, err := w.Run(context.Background(), filepath.Join(dir, "nope"), nil, "missing"); err == nil {
		t.Error("expected error")
	}
}

func TestRunInterruptedIsNotACrash(t *testing.T) {
	w, runner, dir := newTestWatcher(t)
	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(200*time.Millisecond, cancel)
	defer timer.Stop()

	start := time.Now()
	report, err := w.Run(ctx, "/bin/sh", []string{"-c", "sleep 5; echo done"}, "interrupt test")
	elapsed := time.Since(start)

	if errors.Cause(err) != context.Canceled {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if report != nil {
		t.Errorf("unexpected report %+v", report)
	}
	if runner.calls != 0 {
		t.Errorf("debugger calls = %d", runner.calls)
	}
	if elapsed > 3*time.Second {
		t.Errorf("Run returned after %v", elapsed)
	}
	matches, _ := filepath.Glob(filepath.Join(dir, "sh_*"))
	if len(matches) != 0 {
		t.Errorf("binary preserved for an interrupted run: %q", matches)
	}
	if util.DirectoryExists(filepath.Join(w.Settings.OutputPath, output.CrashDirName)) {
		t.Error("crash report written for an interrupted run")
	}
}

func TestAnalyzeIgnoresHexInBacktrace(t *testing.T) {
	w, runner, dir := newTestWatcher(t)
	runner.output = "#1  0x0000555555555151 in crash (p = 0xdeadbeef) at main.c:4\n"
	binary := filepath.Join(dir, "server")
	if err := os.WriteFile(binary, []byte("\x7fELF"), 0755); err != nil {
		t.Fatal(err)
	}
	record := &models.ProcessRecord{
		Pid:        4242,
		RootDir:    dir,
		Binary:     binary,
		ExitStatus: models.ExitStatus{Signal: "segmentation fault"},
	}

	report := w.Analyze(context.Background(), binary, record, "", "backtrace test")

	if report.ExceptionCode != "" {
		t.Errorf("ExceptionCode = %q", report.ExceptionCode)
	}
	if report.Explanation != memoryCorruptionError {
		t.Errorf("Explanation = %q", report.Explanation)
	}
}
