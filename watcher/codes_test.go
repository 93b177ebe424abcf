package watcher

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseErrorCode(t *testing.T) {
	tests := []struct {
		output string
		want   string
	}{
		{"ExceptionAddress: 0x00007ff6a1b2\nEXCEPTION_CODE: (NTSTATUS) 0xc0000005 - Access violation", "0xc0000005"},
		{"rip 0x7ffd1234 rsp 0x00401000", "0x7ffd1234"},
		{"FAILURE_BUCKET_ID: 0xC0000409_arangod.exe", "0xC0000409"},
		{"#0  raise () at raise.c:50", ""},
		{"rbx 0x123456789abc", ""},
		{"code 0xc0000005", "0xc0000005"},
	}
	for _, tt := range tests {
		if got := ParseErrorCode(tt.output); got != tt.want {
			t.Errorf("ParseErrorCode(%q) = %q, want %q", tt.output, got, tt.want)
		}
	}
}

func TestExplainErrorCode(t *testing.T) {
	tests := map[string]string{
		"0xC0000005": memoryCorruptionError,
		"0xc0000374": memoryCorruptionError,
		"0xc0000409": bufferOverflowError,
		"0xc00000fd": bufferOverflowError,
		"0xe06d7363": abortError,
		"0x12345678": unknownError,
	}
	for code, want := range tests {
		if got := ExplainErrorCode(code); got != want {
			t.Errorf("ExplainErrorCode(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestExplainSignal(t *testing.T) {
	if got := ExplainSignal("segmentation fault"); got != memoryCorruptionError {
		t.Errorf("SIGSEGV: %q", got)
	}
	if got := ExplainSignal("aborted"); got != abortError {
		t.Errorf("SIGABRT: %q", got)
	}
	if got := ExplainSignal(""); got != "" {
		t.Errorf("no signal: %q", got)
	}
}

func TestReadTail(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.log")
	if err := os.WriteFile(path, []byte("0123456789ab"), 0600); err != nil {
		t.Fatal(err)
	}
	if got, err := readTail(path, 8); err != nil || got != "456789ab" {
		t.Errorf("readTail = %q, %v", got, err)
	}
	if got, err := readTail(path, 64); err != nil || got != "0123456789ab" {
		t.Errorf("readTail = %q, %v", got, err)
	}
}
