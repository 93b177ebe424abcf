package output

import "time"

type CrashOutput struct {
	Pid              int       `json:"pid"`
	Binary           string    `json:"binary"`
	Context          string    `json:"context"`
	Platform         string    `json:"platform"`
	CrashTime        time.Time `json:"crashTime"`
	ExitCode         int       `json:"exitCode"`
	Signal           string    `json:"signal,omitempty"`
	CoreLocation     string    `json:"coreLocation,omitempty"`
	PreservedBinary  string    `json:"preservedBinary,omitempty"`
	DebuggerHint     string    `json:"debuggerHint,omitempty"`
	DebuggerOutput   string    `json:"debuggerOutput,omitempty"`
	ExecutableOutput string    `json:"executableOutput,omitempty"`
	ExecutableEvents []string  `json:"executableEvents,omitempty"`
	ExceptionCode    string    `json:"exceptionCode,omitempty"`
	Explanation      string    `json:"explanation,omitempty"`
	Diagnostic       string    `json:"diagnostic,omitempty"`
}
