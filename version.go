package main

import (
	"fmt"
	"io"
	"runtime"
)

// Build-time variables injected via linker flags (ldflags).
//
// These defaults are used for development builds (go build -o kmangle).
// Release builds run:
//
//	go build -ldflags "-X main.Version=$(git describe --tags) ..." -o kmangle
//
// The -X flag overwrites these string variables at link time.
// See: https://pkg.go.dev/cmd/link (-X importpath.name=value)
var (
	Version   = "dev"     // Overwritten with git tag (e.g., "v0.5.0")
	Commit    = "unknown" // Overwritten with git commit hash
	BuildDate = "unknown" // Overwritten with build timestamp
)

// printVersion prints version information to w.
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "kmangle %s (%s/%s)\n", Version, runtime.GOOS, runtime.GOARCH)
	if Commit != "unknown" {
		fmt.Fprintf(w, "  commit: %s\n", Commit)
	}
	if BuildDate != "unknown" {
		fmt.Fprintf(w, "  built:  %s\n", BuildDate)
	}
}
