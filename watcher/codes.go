package watcher

import (
	"regexp"
	"strings"
)

const (
	bufferOverflowError   = "Stack buffer overrun or stack exhaustion"
	memoryCorruptionError = "Invalid memory access or heap corruption"
	abortError            = "Process aborted or raised a fatal runtime exception"
	unknownError          = "Unknown error"
)

var (
	bufferOverflowCodes   = []string{"0xc0000409", "0xc00000fd"}
	memoryCorruptionCodes = []string{"0xc0000005", "0xc0000374", "0xc0000006", "0xc000001d"}
	abortCodes            = []string{"0xc0000602", "0x40000015", "0xe06d7363"}

	errorCodeRe = regexp.MustCompile(`(?i)(0x[0-9a-f]{8})(?:[^0-9a-f]|$)`)
)

// ParseErrorCode picks the Windows exception code out of debugger output.
func ParseErrorCode(output string) string {
	var matches []string
	for _, m := range errorCodeRe.FindAllStringSubmatch(output, -1) {
		matches = append(matches, m[1])
	}
	for i := 0; i < len(matches); i++ {
		// NTSTATUS error codes all carry the 0xC severity bits, addresses
		// in the same output usually don't.
		if strings.HasPrefix(strings.ToLower(matches[i]), "0xc") {
			return matches[i]
		}
	}
	if len(matches) > 0 {
		return matches[0]
	}
	return ""
}

func ExplainErrorCode(code string) string {
	code = strings.ToLower(code)
	for _, c := range bufferOverflowCodes {
		if code == c {
			return bufferOverflowError
		}
	}
	for _, c := range memoryCorruptionCodes {
		if code == c {
			return memoryCorruptionError
		}
	}
	for _, c := range abortCodes {
		if code == c {
			return abortError
		}
	}
	return unknownError
}

// ExplainSignal describes a fatal POSIX signal by its name as printed by
// the syscall package.
func ExplainSignal(signal string) string {
	switch signal {
	case "segmentation fault", "bus error":
		return memoryCorruptionError
	case "aborted", "abort trap":
		return abortError
	case "":
		return ""
	default:
		return unknownError
	}
}
