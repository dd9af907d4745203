package version

import (
	"strings"
	"testing"
)

func TestInitFallbacks(t *testing.T) {
	// Whatever the build environment supplies, both values resolve to
	// something printable after init.
	if Version == "" {
		t.Error("Version is empty")
	}
	if Commit == "" {
		t.Error("Commit is empty")
	}
}

func TestFull(t *testing.T) {
	full := Full()
	if !strings.Contains(full, Version) {
		t.Errorf("Full() = %q, missing version %q", full, Version)
	}
	if !strings.Contains(full, "(commit: "+Commit+")") {
		t.Errorf("Full() = %q, missing commit %q", full, Commit)
	}
}
