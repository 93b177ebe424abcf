// Package analyzer reacts to an abnormally terminated process: it finds the
// core file, keeps a copy of the crashed binary next to it and runs the
// platform debugger over both.
package analyzer

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"

	"github.com/lukjok/crashprobe/config"
	"github.com/lukjok/crashprobe/corepattern"
	"github.com/lukjok/crashprobe/debugger"
	"github.com/lukjok/crashprobe/models"
	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Result describes one analysis. Hint and Output are empty when the
// analysis was refused or the debugger was never started.
type Result struct {
	Platform        models.Platform
	Label           string
	Pid             int
	Binary          string
	CoreLocation    string
	PreservedBinary string
	Debugger        string
	Command         []string
	Output          string
	Hint            string
	Kind            models.CrashProbeError
	Err             error
}

type Analyzer struct {
	Platform        models.Platform
	CorePatternFile string
	Runner          debugger.Runner
	Log             util.Logger

	// NewStrategy builds the debugger strategy for one analysis.
	NewStrategy func(opts *config.AnalysisOptions) debugger.Strategy
	copyFile    func(src, dst string) error
}

func New(platform models.Platform, corePatternFile string, runner debugger.Runner, log util.Logger) *Analyzer {
	a := &Analyzer{
		Platform:        platform,
		CorePatternFile: corePatternFile,
		Runner:          runner,
		Log:             log,
		copyFile:        util.CopyFile,
	}
	a.NewStrategy = func(opts *config.AnalysisOptions) debugger.Strategy {
		return debugger.New(a.Platform, opts, a.Runner, a.Log)
	}
	return a
}

// NewForHost is New for the platform this program runs on.
func NewForHost(corePatternFile string, log util.Logger) *Analyzer {
	return New(models.PlatformFromGOOS(runtime.GOOS), corePatternFile, debugger.ExecRunner{}, log)
}

// PreservedPath is where the crashed binary is kept: its base name tagged
// with the pid, inside the process's root directory.
func PreservedPath(binary string, record *models.ProcessRecord) string {
	return filepath.Join(record.RootDir, util.BaseName(binary)+"_"+strconv.Itoa(record.Pid))
}

// AnalyzeCrash never fails. Problems are logged and reported through the
// returned Result; on success the reproduction hint is stored in
// record.ExitStatus.GdbHint.
func (a *Analyzer) AnalyzeCrash(ctx context.Context, binary string, record *models.ProcessRecord, opts *config.AnalysisOptions, label string) *Result {
	res := &Result{
		Platform: a.Platform,
		Label:    label,
		Pid:      record.Pid,
		Binary:   binary,
	}
	defer setLast(res)
	log := a.Log.WithField("pid", record.Pid)

	if a.CorePatternFile != "" {
		decision, ok, err := corepattern.FromFile(a.CorePatternFile, record.Pid)
		switch {
		case err != nil:
			log.LogWarning("Failed to read core pattern: " + err.Error())
		case ok && decision.Refused():
			log.Highlight(decision.Message)
			res.Kind = models.UnsupportedEnvironment
			res.Err = errors.New(decision.Message)
			return res
		case ok:
			opts.CoreDirectory = decision.CoreDirectory
		}
	}

	preserved := PreservedPath(binary, record)
	res.PreservedBinary = preserved

	dump, err := yaml.Marshal(record)
	if err != nil {
		dump = []byte(fmt.Sprintf("%+v\n", *record))
	}
	log.Highlight(fmt.Sprintf("during: %s: Core dump written; copying %s to %s for later analysis.\n"+
		"Server shut down with :\n%smarking build as crashy.", label, binary, preserved, dump))

	target := debugger.Target{
		Pid:     record.Pid,
		RootDir: record.RootDir,
		Binary:  preserved,
		Monitor: record.Monitor,
	}
	if a.Platform == models.Windows {
		// cdb reads the dump; nothing is copied.
		target.Binary = binary
		res.PreservedBinary = ""
	} else if err := a.copyFile(binary, preserved); err != nil {
		res.Kind = models.PreserveFailure
		res.Err = errors.Wrapf(err, "Failed to preserve %s", binary)
		if !util.FileExists(binary) {
			log.LogError(res.Err.Error() + "; skipping debugger")
			return res
		}
		log.LogWarning(res.Err.Error() + "; debugging the original binary")
		res.PreservedBinary = ""
		target.Binary = binary
	}

	session := a.NewStrategy(opts).Analyze(ctx, target)
	res.Debugger = session.Debugger
	res.CoreLocation = session.CoreLocation
	res.Command = session.Command
	res.Output = session.Output
	res.Hint = session.Hint
	if session.Err != nil && res.Err == nil {
		res.Err = session.Err
		res.Kind = util.ConvertError(session.Err)
	}

	if res.Output != "" {
		log.Raw(res.Output)
	}
	if res.Hint != "" {
		record.ExitStatus.GdbHint = `Run debugger with "` + res.Hint + `"`
	}
	return res
}

var (
	lastMu     sync.Mutex
	lastResult *Result
)

func setLast(r *Result) {
	lastMu.Lock()
	lastResult = r
	lastMu.Unlock()
}

// LastResult returns the result of the most recent AnalyzeCrash call, or
// nil. Crashes are expected to be analyzed one at a time; with concurrent
// analyses the last one to finish wins.
func LastResult() *Result {
	lastMu.Lock()
	defer lastMu.Unlock()
	return lastResult
}

// LastOutput is the debugger text captured by the most recent analysis.
func LastOutput() string {
	if r := LastResult(); r != nil {
		return r.Output
	}
	return ""
}
