package version

import (
	"encoding/json"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"
)

func TestInfo_String(t *testing.T) {
	tests := []struct {
		name     string
		info     Info
		expected string
	}{
		{name: "clean state", info: Info{GitVersion: "v1.0.0", GitTreeState: "clean"}, expected: "v1.0.0"},
		{name: "dirty state", info: Info{GitVersion: "v1.0.0", GitTreeState: "dirty"}, expected: "v1.0.0-dirty"},
		{name: "empty state", info: Info{GitVersion: "v1.0.0"}, expected: "v1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.String(); got != tt.expected {
				t.Errorf("Info.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInfo_ShortCommit(t *testing.T) {
	if got := (Info{GitCommit: "0123456789abcdef"}).ShortCommit(); got != "0123456789ab" {
		t.Errorf("ShortCommit() = %q", got)
	}
	if got := (Info{GitCommit: "abc"}).ShortCommit(); got != "abc" {
		t.Errorf("ShortCommit() = %q", got)
	}
}

func TestInfo_JSON(t *testing.T) {
	info := Info{GitVersion: "v1.0.0", GitCommit: "abc123", Platform: "linux/amd64", Source: SourceLDFlags}

	s, err := info.JSON()
	if err != nil {
		t.Fatalf("JSON() error = %v", err)
	}
	var parsed Info
	if err := json.Unmarshal([]byte(s), &parsed); err != nil {
		t.Fatalf("parse JSON: %v", err)
	}
	if parsed != info {
		t.Errorf("decoded = %+v, want %+v", parsed, info)
	}
}

func TestInfo_TextSkipsUnknownFields(t *testing.T) {
	text := Info{GitVersion: "v1.0.0", GoVersion: "go1.24.0", Platform: "linux/amd64", Source: SourceNone}.Text()

	for _, field := range []string{"gitVersion:", "v1.0.0", "platform:", "source:", "none"} {
		if !strings.Contains(text, field) {
			t.Errorf("Text() missing %q", field)
		}
	}
	for _, field := range []string{"gitCommit:", "gitTreeState:", "buildDate:"} {
		if strings.Contains(text, field) {
			t.Errorf("Text() should omit empty %q", field)
		}
	}
}

func TestFromBuildInfo(t *testing.T) {
	tests := []struct {
		name string
		bi   debug.BuildInfo
		want Info
	}{
		{
			name: "local build",
			bi: debug.BuildInfo{
				Main: debug.Module{Version: "(devel)"},
				Settings: []debug.BuildSetting{
					{Key: "vcs.revision", Value: "deadbeef"},
					{Key: "vcs.time", Value: "2026-01-02T03:04:05Z"},
					{Key: "vcs.modified", Value: "true"},
				},
			},
			want: Info{GitVersion: develVersion, GitCommit: "deadbeef", BuildDate: "2026-01-02T03:04:05Z", GitTreeState: "dirty", Source: SourceBuildInfo},
		},
		{
			name: "go install at a tag",
			bi:   debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}},
			want: Info{GitVersion: "v1.2.3", Source: SourceBuildInfo},
		},
		{
			name: "clean tree",
			bi:   debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.modified", Value: "false"}}},
			want: Info{GitVersion: develVersion, GitTreeState: "clean", Source: SourceBuildInfo},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fromBuildInfo(Info{}, &tt.bi); got != tt.want {
				t.Errorf("fromBuildInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestGet(t *testing.T) {
	info := Get()
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %v, want %v", info.GoVersion, runtime.Version())
	}
	if info.Platform != runtime.GOOS+"/"+runtime.GOARCH {
		t.Errorf("Platform = %v", info.Platform)
	}
	if info.GitVersion == "" || info.Source == "" {
		t.Errorf("Get() = %+v", info)
	}
}

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "llmtrace/"+Get().String()+" (") || !strings.Contains(ua, runtime.GOOS) {
		t.Errorf("UserAgent() = %q", ua)
	}
}
