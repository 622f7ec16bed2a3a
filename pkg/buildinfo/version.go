// Package buildinfo holds version information stamped at build time:
//
//	go build -ldflags "-X github.com/matzehuels/poddiff/pkg/buildinfo.Version=v0.3.0 \
//	    -X github.com/matzehuels/poddiff/pkg/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	    -X github.com/matzehuels/poddiff/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
//
// Binaries installed with `go install` carry no ldflags; [Resolve] then falls
// back to the module version recorded by the Go toolchain.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

var (
	Version = "dev"     // Release tag
	Commit  = "none"    // Short commit SHA
	Date    = "unknown" // UTC build time
)

// Resolve returns Version, or the main module version when Version was not
// stamped.
func Resolve() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return Version
}

// UserAgent is sent with every registry request.
func UserAgent() string {
	return "poddiff/" + Resolve()
}

// String returns the formatted build information.
func String() string {
	return fmt.Sprintf("version: %s\ncommit: %s\nbuilt: %s", Resolve(), Commit, Date)
}

// Template returns the cobra version template.
func Template() string {
	return fmt.Sprintf("{{.Name}} %s (%s, %s)\n", Resolve(), Commit, Date)
}
