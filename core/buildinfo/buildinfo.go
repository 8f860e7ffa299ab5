// Package buildinfo carries release metadata stamped in with -ldflags, e.g.
//
//	go build -ldflags "-X github.com/m3rciful/pomobot/core/buildinfo.Version=v0.3.0 \
//	  -X github.com/m3rciful/pomobot/core/buildinfo.Commit=$(git rev-parse --short HEAD) \
//	  -X github.com/m3rciful/pomobot/core/buildinfo.Date=$(date -u +%FT%TZ)"
package buildinfo

var (
	Version = "dev"
	Commit  = "local"
	// Date is RFC 3339, empty for local builds.
	Date = ""
)
