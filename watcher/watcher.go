package watcher

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"

	"github.com/lukjok/crashprobe/analyzer"
	"github.com/lukjok/crashprobe/config"
	"github.com/lukjok/crashprobe/events"
	"github.com/lukjok/crashprobe/memdump"
	"github.com/lukjok/crashprobe/models"
	"github.com/lukjok/crashprobe/output"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

const outputTailSize = 64 * 1024

// Watcher runs a binary, waits for it and hands an abnormal exit over to the
// analyzer. Crashes are handled one at a time.
type Watcher struct {
	Settings config.Configuration
	RootDir  string
	Analyzer *analyzer.Analyzer
	Output   output.OutputManager
	Events   events.EventManager
	Dumper   memdump.MemoryDumpManager
	Log      util.Logger

	mu sync.Mutex
}

func NewWatcher(settings config.Configuration, rootDir string, a *analyzer.Analyzer, log util.Logger) *Watcher {
	return &Watcher{
		Settings: settings,
		RootDir:  rootDir,
		Analyzer: a,
		Output:   output.NewFilesystem(settings.OutputPath),
		Events:   events.NewEvents(events.DefaultWindowsQuery),
		Log:      log,
	}
}

// Run returns a crash report when the process died abnormally and nil when
// it exited on its own.
func (w *Watcher) Run(ctx context.Context, binary string, args []string, label string) (*output.CrashOutput, error) {
	// Output goes to a file rather than a pipe so that Wait does not block on
	// grandchildren that inherited the descriptors.
	outFile, err := util.TempFile("crashprobe-output-*.log")
	if err != nil {
		return nil, err
	}
	defer os.Remove(outFile)
	out, err := os.OpenFile(outFile, os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to open process output file")
	}
	defer out.Close()

	cmd := exec.CommandContext(ctx, binary, args...)
	cmd.Dir = w.RootDir
	cmd.Stdout = out
	cmd.Stderr = out

	if w.Events != nil {
		if err := w.Events.StartCapture(); err != nil {
			w.Log.LogWarning("Error occured while starting event capture: " + err.Error())
		}
		defer w.Events.StopCapture()
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "Failed to start %s", binary)
	}
	pid := cmd.Process.Pid
	w.Log.WithField("pid", pid).LogInfo("started " + binary)

	var monitor models.Monitor
	if w.Dumper != nil {
		m, err := w.Dumper.StartDump(pid)
		if err != nil {
			w.Log.LogWarning("Failed to start the memory dump for the process: " + err.Error())
		} else {
			monitor = m
		}
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		// Killed on our behalf, not a crash.
		w.Log.WithField("pid", pid).LogInfo("supervision of " + binary + " interrupted")
		return nil, errors.Wrap(ctx.Err(), "Supervision interrupted")
	}
	if cmd.ProcessState == nil {
		return nil, errors.Wrapf(waitErr, "Failed to wait for %s", binary)
	}

	status, abnormal := exitStatus(cmd.ProcessState)
	if !abnormal {
		w.Log.WithField("pid", pid).LogInfo("process exited with code " + strconv.Itoa(status.Code))
		return nil, nil
	}

	record := &models.ProcessRecord{
		Pid:        pid,
		RootDir:    w.RootDir,
		Binary:     binary,
		ExitStatus: status,
		Monitor:    monitor,
	}
	processOutput, err := readTail(outFile, outputTailSize)
	if err != nil {
		w.Log.LogWarning("Failed to read process output: " + err.Error())
	}
	return w.Analyze(ctx, binary, record, processOutput, label), nil
}

// Analyze runs the analyzer for an already dead process and stores the
// crash report.
func (w *Watcher) Analyze(ctx context.Context, binary string, record *models.ProcessRecord, processOutput, label string) *output.CrashOutput {
	w.mu.Lock()
	defer w.mu.Unlock()

	opts := w.Settings.AnalysisOptions()
	res := w.Analyzer.AnalyzeCrash(ctx, binary, record, opts, label)

	report := &output.CrashOutput{
		Pid:              record.Pid,
		Binary:           binary,
		Context:          label,
		Platform:         res.Platform.String(),
		CrashTime:        time.Now(),
		ExitCode:         record.ExitStatus.Code,
		Signal:           record.ExitStatus.Signal,
		CoreLocation:     res.CoreLocation,
		PreservedBinary:  res.PreservedBinary,
		DebuggerHint:     record.ExitStatus.GdbHint,
		DebuggerOutput:   res.Output,
		ExecutableOutput: processOutput,
	}
	if w.Events != nil {
		report.ExecutableEvents = w.Events.GetEventData()
	}
	if res.Err != nil {
		report.Diagnostic = res.Kind.String() + ": " + res.Err.Error()
	}

	// Only cdb output and Windows exit codes carry NTSTATUS codes; in gdb
	// and lldb output a hex value is just an address or a variable.
	if res.Platform == models.Windows {
		code := ParseErrorCode(res.Output)
		if code == "" {
			code = ParseErrorCode(record.ExitStatus.Signal)
		}
		report.ExceptionCode = code
		if code != "" {
			report.Explanation = ExplainErrorCode(code)
		}
	} else {
		report.Explanation = ExplainSignal(record.ExitStatus.Signal)
	}

	if w.Output != nil {
		path, err := w.Output.SaveCrash(report)
		if err != nil {
			w.Log.LogError("Failed to write crash report: " + err.Error())
		} else {
			w.Log.LogInfo("crash report written to " + path)
		}
	}
	return report
}
