package main

import (
	"os"
	"runtime/debug"
	"strings"
	"sync"
)

// appVersion resolves, in order: SOLVECHECK_VERSION, the module version, the
// VCS revision stamped by the go tool, and finally "development".
var appVersion = sync.OnceValue(func() string {
	if v := strings.TrimSpace(os.Getenv("SOLVECHECK_VERSION")); v != "" {
		return v
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "development"
	}
	if v := info.Main.Version; v != "" && v != "(devel)" {
		return v
	}
	var revision string
	var dirty bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if revision == "" {
		return "development"
	}
	if len(revision) > 12 {
		revision = revision[:12]
	}
	if dirty {
		revision += "-dirty"
	}
	return "dev-" + revision
})
