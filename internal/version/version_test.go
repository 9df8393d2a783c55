package version

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestGetDefaults(t *testing.T) {
	info := Get()

	if info.Version == "" {
		t.Error("Version should never be empty")
	}
	if info.Commit == "" {
		t.Error("Commit should never be empty")
	}
	if !strings.HasPrefix(info.GoVersion, "go") {
		t.Errorf("GoVersion = %v, want go prefix", info.GoVersion)
	}
	if !strings.Contains(info.Platform, "/") {
		t.Errorf("Platform = %v, want os/arch", info.Platform)
	}
}

func TestFromBuildInfo(t *testing.T) {
	bi := &debug.BuildInfo{
		Main: debug.Module{Version: "v1.2.3"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	var info Info
	fromBuildInfo(&info, bi)

	if info.Version != "v1.2.3" {
		t.Errorf("Version = %v, want v1.2.3", info.Version)
	}
	if info.Commit != "0123456" {
		t.Errorf("Commit = %v, want 0123456", info.Commit)
	}
	if !info.Dirty {
		t.Error("Dirty should be true")
	}
}

func TestFromBuildInfoKeepsLdflags(t *testing.T) {
	bi := &debug.BuildInfo{
		Main:     debug.Module{Version: "(devel)"},
		Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fedcba9876"}},
	}

	info := Info{Version: "v9.9.9", Commit: "release"}
	fromBuildInfo(&info, bi)

	if info.Version != "v9.9.9" || info.Commit != "release" {
		t.Errorf("ldflags values overwritten: %+v", info)
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v1.0.0", Commit: "abc1234", Dirty: true, GoVersion: "go1.24.10", Platform: "linux/amd64"}

	want := "v1.0.0 (commit abc1234-dirty, go1.24.10 linux/amd64)"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
