// Package version reports which PixelPad build is running. The values are
// printed by "pixelpad version", logged when the service starts, and sent in
// the User-Agent of preview source fetches.
//
// Release builds set them with ldflags, for example:
//
//	go build -ldflags "-X github.com/jmylchreest/pixelpad/internal/version.Version=1.0.0 \
//	  -X github.com/jmylchreest/pixelpad/internal/version.Commit=$(git rev-parse HEAD) \
//	  -X github.com/jmylchreest/pixelpad/internal/version.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
package version

import (
	"fmt"
	"runtime"
)

// unset marks a build value that ldflags did not provide.
const unset = "unknown"

var (
	// Version is the release of this build, "dev" for local builds.
	Version = "dev"

	// Commit is the source revision the binary was built from.
	Commit = unset

	// Date is the RFC3339 build timestamp.
	Date = unset

	// GoVersion is the toolchain that compiled the binary.
	GoVersion = runtime.Version()
)

// Info is a snapshot of the build values.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"` // GOOS/GOARCH
}

// GetInfo returns the build values of the running binary.
func GetInfo() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: GoVersion,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the "pixelpad version" line. Commit and date appear only when
// both were set at build time.
func String() string {
	info := GetInfo()
	if info.Commit == unset || info.Date == unset {
		return fmt.Sprintf("pixelpad version %s (%s, %s)", info.Version, info.GoVersion, info.Platform)
	}
	return fmt.Sprintf("pixelpad version %s (commit: %s, built: %s, %s, %s)",
		info.Version, shortCommit(info.Commit), info.Date, info.GoVersion, info.Platform)
}

// Short returns the bare release, as shown by --version.
func Short() string {
	return Version
}

// UserAgent returns the User-Agent value for outbound requests.
func UserAgent() string {
	return "pixelpad/" + Version
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
