// Package version reports the build metadata of the aggregator binary.
//
// Version, git commit, branch and build time are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/fanin/version.Version=1.2.0 \
//	  -X github.com/kbukum/fanin/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/aggregator
//
// Values left empty fall back to the VCS stamp in runtime/debug build info.
package version
