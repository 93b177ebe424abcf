// Package corepattern classifies the kernel core_pattern setting and turns
// it into a location where the core file of a crashed process can be found.
package corepattern

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/lukjok/crashprobe/util"
	"github.com/pkg/errors"
)

const SystemdCoredumpDir = "/var/lib/systemd/coredump"

var (
	matchApport          = regexp.MustCompile(`apport`)
	matchSystemdCoredump = regexp.MustCompile(`systemd-coredump`)
	matchVarTmp          = regexp.MustCompile(`/var/tmp`)
)

type Reason int

const (
	None Reason = iota
	CrashHandler
	UnknownPattern
)

// Decision is either a resolved CoreDirectory or a refusal. Refusals carry a
// message meant for the operator.
type Decision struct {
	CoreDirectory string
	Reason        Reason
	Message       string
	Pattern       string
}

func (d Decision) Refused() bool {
	return d.Reason != None
}

// Resolve classifies pattern for the process pid. It depends on nothing but
// its arguments.
func Resolve(pattern string, pid int) Decision {
	cp := strings.TrimSpace(pattern)
	pidStr := strconv.Itoa(pid)

	switch {
	case matchApport.MatchString(cp):
		return Decision{
			Reason:  CrashHandler,
			Message: "apport handles corefiles on your system. Uninstall it if you want us to get corefiles for analysis.",
			Pattern: cp,
		}
	case matchSystemdCoredump.MatchString(cp):
		return Decision{
			CoreDirectory: SystemdCoredumpDir + "/*core*" + pidStr + "*",
			Pattern:       cp,
		}
	case matchVarTmp.MatchString(cp):
		return Decision{
			CoreDirectory: substitute(cp, pidStr),
			Pattern:       cp,
		}
	default:
		return Decision{
			Reason:  UnknownPattern,
			Message: fmt.Sprintf("Don't know how to locate corefiles in your system. core pattern contains: %q", cp),
			Pattern: cp,
		}
	}
}

func substitute(pattern, pid string) string {
	r := strings.NewReplacer("%e", "*", "%t", "*", "%p", pid)
	return r.Replace(pattern)
}

// FromFile reads the core pattern file at path and resolves it. ok is false
// when the file does not exist, in which case no resolution applies.
func FromFile(path string, pid int) (decision Decision, ok bool, err error) {
	if !util.FileExists(path) {
		return Decision{}, false, nil
	}

	cp, err := util.ReadTextFile(path)
	if err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return Decision{}, false, nil
		}
		return Decision{}, false, err
	}

	decision = Resolve(cp, pid)
	if decision.Reason == UnknownPattern {
		decision.Message = fmt.Sprintf("Don't know how to locate corefiles in your system. %q contains: %q", path, decision.Pattern)
	}
	return decision, true, nil
}
