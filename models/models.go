package models

import (
	"context"
	"strings"
)

type CrashProbeError int

const (
	Success CrashProbeError = iota
	UnsupportedEnvironment
	MissingCore
	DebuggerFailure
	PreserveFailure
	UnknownError
)

func (e CrashProbeError) String() string {
	switch e {
	case Success:
		return "success"
	case UnsupportedEnvironment:
		return "unsupported environment"
	case MissingCore:
		return "missing core"
	case DebuggerFailure:
		return "debugger failure"
	case PreserveFailure:
		return "preserve failure"
	default:
		return "unknown error"
	}
}

type Platform int

const (
	Linux Platform = iota
	Darwin
	Windows
)

// PlatformFromGOOS maps a host platform identifier to the debugger family
// used for it. Anything that is neither windows nor darwin is treated as Linux.
func PlatformFromGOOS(goos string) Platform {
	switch {
	case strings.HasPrefix(goos, "win"):
		return Windows
	case goos == "darwin":
		return Darwin
	default:
		return Linux
	}
}

func (p Platform) String() string {
	switch p {
	case Darwin:
		return "darwin"
	case Windows:
		return "windows"
	default:
		return "linux"
	}
}

// Monitor is a handle on the external utility that writes the dump file of a
// crashed process. Wait blocks until the utility is done or ctx expires.
type Monitor interface {
	Wait(ctx context.Context) error
}

type ExitStatus struct {
	Code     int    `yaml:"code" json:"code"`
	Signal   string `yaml:"signal,omitempty" json:"signal,omitempty"`
	CoreDump bool   `yaml:"coreDump" json:"coreDump"`
	GdbHint  string `yaml:"gdbHint,omitempty" json:"gdbHint,omitempty"`
}

type ProcessRecord struct {
	Pid        int        `yaml:"pid" json:"pid"`
	RootDir    string     `yaml:"rootDir" json:"rootDir"`
	Binary     string     `yaml:"binary" json:"binary"`
	ExitStatus ExitStatus `yaml:"exitStatus" json:"exitStatus"`
	Monitor    Monitor    `yaml:"-" json:"-"`
}
