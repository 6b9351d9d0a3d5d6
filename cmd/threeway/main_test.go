package main

import "testing"

func TestVersionString(t *testing.T) {
	// Without ldflags the build-info fallback still yields "dev"
	// under go test.
	if got := versionString(); got == "" {
		t.Errorf("versionString() = %q, want non-empty", got)
	}

	old := version
	defer func() { version = old }()
	version = "1.2.3"
	if got := versionString(); got != "1.2.3" {
		t.Errorf("versionString() = %q, want 1.2.3", got)
	}
}
