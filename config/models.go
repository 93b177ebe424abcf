package config

import "time"

const (
	ScriptModeBatch = "batch"
	ScriptModePipe  = "pipe"
)

type Configuration struct {
	CoreDirectory      string   `json:"coreDirectory"`
	CorePatternFile    string   `json:"corePatternFile"`
	ScriptMode         string   `json:"scriptMode"`
	SettleDelay        Duration `json:"settleDelay"`
	ThinkTime          Duration `json:"thinkTime"`
	DrainDelay         Duration `json:"drainDelay"`
	DumpWaitTimeout    Duration `json:"dumpWaitTimeout"`
	LldbCoreDir        string   `json:"lldbCoreDir"`
	OutputPath         string   `json:"outputPath"`
	DumpExecutablePath string   `json:"dumpExecutablePath"`
	LogFile            string   `json:"logFile"`
	NoColor            bool     `json:"noColor"`
}

// AnalysisOptions is the part of the configuration the resolver and the
// debugger strategies read. CoreDirectory is rewritten by the core pattern
// resolver on every Linux crash.
type AnalysisOptions struct {
	CoreDirectory string
	ScriptMode    string
	SettleDelay   time.Duration
	ThinkTime     time.Duration
	DrainDelay    time.Duration
	// DumpWaitTimeout bounds the wait for the Windows dump writer. Zero
	// waits for as long as the dump writer runs.
	DumpWaitTimeout time.Duration
	LldbCoreDir     string
}

func (c Configuration) AnalysisOptions() *AnalysisOptions {
	return &AnalysisOptions{
		CoreDirectory:   c.CoreDirectory,
		ScriptMode:      c.ScriptMode,
		SettleDelay:     c.SettleDelay.Duration,
		ThinkTime:       c.ThinkTime.Duration,
		DrainDelay:      c.DrainDelay.Duration,
		DumpWaitTimeout: c.DumpWaitTimeout.Duration,
		LldbCoreDir:     c.LldbCoreDir,
	}
}
