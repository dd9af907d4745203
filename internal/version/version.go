// Package version identifies the running build.
package version

import (
	"fmt"
	"runtime/debug"
	"time"
)

// Version and Commit are injected by release builds:
//
//	go build -ldflags="-X github.com/pbutterworth/gochlorinator/internal/version.Version=v1.2.3 \
//	                   -X github.com/pbutterworth/gochlorinator/internal/version.Commit=abc123"
//
// Builds without ldflags fall back to the VCS stamp embedded in the
// binary's build info, then to a dated dev placeholder.
var (
	Version = ""
	Commit  = ""
)

func init() {
	if Version == "" || Commit == "" {
		readBuildStamp()
	}
	if Version == "" {
		Version = fmt.Sprintf("dev-%s", time.Now().Format("20060102-150405"))
	}
	if Commit == "" {
		Commit = "unknown"
	}
}

// readBuildStamp fills in whatever the embedded VCS settings can supply.
// Build info carries no tags, so Version becomes a dev string dated to the
// commit rather than a release number.
func readBuildStamp() {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}
	settings := make(map[string]string, len(info.Settings))
	for _, s := range info.Settings {
		settings[s.Key] = s.Value
	}

	if rev := settings["vcs.revision"]; Commit == "" && rev != "" {
		if len(rev) > 7 {
			rev = rev[:7]
		}
		if settings["vcs.modified"] == "true" {
			rev += "-dirty"
		}
		Commit = rev
	}
	if Version == "" {
		if t, err := time.Parse(time.RFC3339, settings["vcs.time"]); err == nil {
			Version = fmt.Sprintf("dev-%s", t.Format("20060102"))
		}
	}
}

// Full returns the version with its commit, e.g. "v1.2.3 (commit: abc1234)".
func Full() string {
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}
