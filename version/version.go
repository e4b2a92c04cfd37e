// Package version reports which build of llmtrace is running.
//
// Release builds inject the values below with -ldflags "-X". Other builds,
// such as go install, fall back to the VCS stamp the go tool embeds.
package version

import (
	"encoding/json"
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/gosuri/uitable"
)

var (
	gitVersion   = ""
	gitCommit    = ""
	gitTreeState = ""
	buildDate    = ""
)

const develVersion = "v0.0.0-devel"

// Where the build details came from.
const (
	SourceLDFlags   = "ldflags"
	SourceBuildInfo = "buildinfo"
	SourceNone      = "none"
)

type Info struct {
	GitVersion   string `json:"gitVersion"`
	GitCommit    string `json:"gitCommit,omitempty"`
	GitTreeState string `json:"gitTreeState,omitempty"`
	BuildDate    string `json:"buildDate,omitempty"`
	GoVersion    string `json:"goVersion"`
	Platform     string `json:"platform"`
	Source       string `json:"source"`
}

func (info Info) String() string {
	if info.GitTreeState == "dirty" {
		return info.GitVersion + "-dirty"
	}
	return info.GitVersion
}

// ShortCommit is the first 12 characters of the commit hash.
func (info Info) ShortCommit() string {
	if len(info.GitCommit) > 12 {
		return info.GitCommit[:12]
	}
	return info.GitCommit
}

func (info Info) JSON() (string, error) {
	s, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal version info: %w", err)
	}
	return string(s), nil
}

// Text renders the known fields as a right-aligned table.
func (info Info) Text() string {
	table := uitable.New()
	table.RightAlign(0)
	table.Separator = " "
	for _, row := range [][2]string{
		{"gitVersion:", info.GitVersion},
		{"gitCommit:", info.GitCommit},
		{"gitTreeState:", info.GitTreeState},
		{"buildDate:", info.BuildDate},
		{"goVersion:", info.GoVersion},
		{"platform:", info.Platform},
		{"source:", info.Source},
	} {
		if row[1] != "" {
			table.AddRow(row[0], row[1])
		}
	}
	return table.String()
}

func Get() Info {
	info := Info{
		GitVersion:   gitVersion,
		GitCommit:    gitCommit,
		GitTreeState: gitTreeState,
		BuildDate:    buildDate,
		GoVersion:    runtime.Version(),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
		Source:       SourceLDFlags,
	}
	if info.GitVersion != "" {
		return info
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		info.GitVersion = develVersion
		info.Source = SourceNone
		return info
	}
	return fromBuildInfo(info, bi)
}

func fromBuildInfo(info Info, bi *debug.BuildInfo) Info {
	info.Source = SourceBuildInfo
	info.GitVersion = develVersion
	if v := bi.Main.Version; v != "" && v != "(devel)" {
		info.GitVersion = v
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.GitCommit = s.Value
		case "vcs.time":
			info.BuildDate = s.Value
		case "vcs.modified":
			info.GitTreeState = "clean"
			if s.Value == "true" {
				info.GitTreeState = "dirty"
			}
		}
	}
	return info
}

// UserAgent is sent on every collector request.
func UserAgent() string {
	info := Get()
	if c := info.ShortCommit(); c != "" {
		return fmt.Sprintf("llmtrace/%s (%s; %s)", info, info.Platform, c)
	}
	return fmt.Sprintf("llmtrace/%s (%s)", info, info.Platform)
}
