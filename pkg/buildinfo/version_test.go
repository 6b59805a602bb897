package buildinfo

import (
	"runtime/debug"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	bi := &debug.BuildInfo{
		GoVersion: "go1.24.0",
		Main:      debug.Module{Path: "github.com/matzehuels/lineage", Version: "v0.3.1"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.time", Value: "2025-01-02T03:04:05Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	tests := []struct {
		name                  string
		version, commit, date string
		bi                    *debug.BuildInfo
		want                  Info
	}{
		{
			name:    "no build info",
			version: defaultVersion, commit: defaultCommit, date: defaultDate,
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
		{
			name:    "from build info",
			version: defaultVersion, commit: defaultCommit, date: defaultDate,
			bi: bi,
			want: Info{
				Version:   "v0.3.1",
				Commit:    "0123456789abcdef0123",
				Date:      "2025-01-02T03:04:05Z",
				GoVersion: "go1.24.0",
				Modified:  true,
			},
		},
		{
			name:    "ldflags win",
			version: "v1.0.0", commit: "abc", date: "2025-06-01",
			bi:   bi,
			want: Info{Version: "v1.0.0", Commit: "abc", Date: "2025-06-01", GoVersion: "go1.24.0", Modified: true},
		},
		{
			name:    "devel module version",
			version: defaultVersion, commit: defaultCommit, date: defaultDate,
			bi:   &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}},
			want: Info{Version: "dev", Commit: "none", Date: "unknown"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := resolve(tt.version, tt.commit, tt.date, tt.bi); got != tt.want {
				t.Errorf("resolve() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestInfoString(t *testing.T) {
	info := Info{Version: "v0.3.1", Commit: "0123456789abcdef0123", Date: "2025-01-02", GoVersion: "go1.24.0", Modified: true}
	want := "version: v0.3.1\ncommit: 0123456789ab (modified)\nbuilt: 2025-01-02\ngo: go1.24.0"
	if got := info.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}

	if got := (Info{Version: "dev", Commit: "none", Date: "unknown"}).String(); strings.Contains(got, "go:") {
		t.Errorf("String() = %q, should omit empty Go version", got)
	}
}

func TestTemplate(t *testing.T) {
	got := Template()
	if !strings.HasPrefix(got, "{{.Name}} version: ") || !strings.HasSuffix(got, "\n") {
		t.Errorf("Template() = %q", got)
	}
	if !strings.Contains(got, "commit: ") {
		t.Errorf("Template() = %q, missing commit", got)
	}
}
