package models

import "testing"

func TestPlatformFromGOOS(t *testing.T) {
	tests := map[string]Platform{
		"windows": Windows,
		"win32":   Windows,
		"darwin":  Darwin,
		"linux":   Linux,
		"freebsd": Linux,
		"":        Linux,
	}
	for goos, want := range tests {
		if got := PlatformFromGOOS(goos); got != want {
			t.Errorf("PlatformFromGOOS(%q) = %v, want %v", goos, got, want)
		}
	}
}

func TestErrorKindString(t *testing.T) {
	if UnsupportedEnvironment.String() != "unsupported environment" || CrashProbeError(99).String() != "unknown error" {
		t.Error("unexpected error kind names")
	}
}
