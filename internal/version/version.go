// Package version reports which carbonscope build is running.
package version

import (
	"cmp"
	"runtime/debug"
)

// Stamped by release builds:
//
//	go build -ldflags "-X github.com/idlab-discover/carbonscope-cli/internal/version.Version=v1.2.0 \
//	  -X github.com/idlab-discover/carbonscope-cli/internal/version.Commit=abc1234"
var (
	Version string
	Commit  string
)

var readBuildInfo = debug.ReadBuildInfo

// Info describes the running binary.
type Info struct {
	Version  string
	Commit   string
	Modified bool
}

// Get resolves the build. Stamped values win over what the Go toolchain
// recorded in the binary.
func Get() Info {
	info := Info{Version: Version, Commit: Commit}
	bi, ok := readBuildInfo()
	if !ok {
		return info
	}
	if v := bi.Main.Version; v != "(devel)" {
		info.Version = cmp.Or(info.Version, v)
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Commit = cmp.Or(info.Commit, shortRev(s.Value))
		case "vcs.modified":
			info.Modified = s.Value == "true"
		}
	}
	return info
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}

// String is what --version prints and exported AIBOMs record: the release
// version, or "devel" with the commit for local builds.
func (i Info) String() string {
	switch {
	case i.Version != "":
		return i.Version
	case i.Commit == "":
		return "devel"
	case i.Modified:
		return "devel+" + i.Commit + "-dirty"
	default:
		return "devel+" + i.Commit
	}
}

// String is shorthand for Get().String().
func String() string { return Get().String() }
