package util

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lukjok/crashprobe/models"
	"github.com/pkg/errors"
)

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"/usr/sbin/arangod":         "arangod",
		`C:\build\bin\arangod.exe`:  "arangod.exe",
		"arangod":                   "arangod",
		"build/bin/":                "",
		`mixed/dir\with\sep/binary`: "binary",
	}
	for in, want := range tests {
		if got := BaseName(in); got != want {
			t.Errorf("BaseName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCopyFileKeepsMode(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "server")
	dst := filepath.Join(dir, "server_42")
	if err := os.WriteFile(src, []byte("\x7fELF"), 0755); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatalf("CopyFile: %v", err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "\x7fELF" {
		t.Errorf("copied contents = %q", got)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0100 == 0 {
		t.Errorf("copied file lost its executable bit: %v", info.Mode())
	}
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "gone"), filepath.Join(dir, "copy"))
	if err == nil {
		t.Fatal("expected error")
	}
	if FileExists(filepath.Join(dir, "copy")) {
		t.Error("destination should not be created")
	}
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "core_pattern")
	if err := os.WriteFile(path, []byte("core\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if !FileExists(path) || FileExists(dir) || FileExists(filepath.Join(dir, "nope")) {
		t.Error("FileExists returned wrong answers")
	}
	if !DirectoryExists(dir) || DirectoryExists(path) {
		t.Error("DirectoryExists returned wrong answers")
	}

	text, err := ReadTextFile(path)
	if err != nil || text != "core\n" {
		t.Errorf("ReadTextFile = %q, %v", text, err)
	}
	if _, err := ReadTextFile(""); err == nil {
		t.Error("expected error for empty path")
	}

	tmp, err := TempFile("gdb-*.log")
	if err != nil {
		t.Fatalf("TempFile: %v", err)
	}
	defer os.Remove(tmp)
	if !FileExists(tmp) {
		t.Errorf("temp file %s was not created", tmp)
	}
}

func TestConvertError(t *testing.T) {
	_, statErr := os.Stat(filepath.Join(t.TempDir(), "missing"))

	tests := []struct {
		name string
		err  error
		want models.CrashProbeError
	}{
		{"nil", nil, models.Success},
		{"exec not found", &exec.Error{Name: "gdb", Err: exec.ErrNotFound}, models.DebuggerFailure},
		{"wrapped exec", errors.Wrap(&exec.Error{Name: "cdb", Err: exec.ErrNotFound}, "run"), models.DebuggerFailure},
		{"missing file", errors.Wrap(statErr, "stat"), models.MissingCore},
		{"other", errors.New("boom"), models.UnknownError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ConvertError(tt.err); got != tt.want {
				t.Errorf("ConvertError = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHighlight(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, true).Highlight("Core dump written")
	if buf.String() != "Core dump written\n" {
		t.Errorf("plain highlight = %q", buf.String())
	}

	buf.Reset()
	l := NewLoggerTo(&buf, true).WithField("pid", 42)
	l.LogWarning("apport detected")
	if out := buf.String(); !strings.Contains(out, "apport detected") || !strings.Contains(out, "pid=42") {
		t.Errorf("log line = %q", out)
	}
}
