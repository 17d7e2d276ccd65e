package main

import (
	"fmt"
	"runtime"
	rtdebug "runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = ""
	commit  = ""
	date    = ""
)

type buildInfo struct {
	Version string
	Commit  string
	Built   string
	Go      string
}

func newVersionCmd() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			info := currentBuildInfo()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "print only the version number")
	return cmd
}

// currentBuildInfo prefers ldflags values and falls back to the module and
// VCS data embedded by the go tool.
func currentBuildInfo() buildInfo {
	info := buildInfo{
		Version: strings.TrimSpace(version),
		Commit:  strings.TrimSpace(commit),
		Built:   strings.TrimSpace(date),
		Go:      runtime.Version(),
	}
	if bi, ok := rtdebug.ReadBuildInfo(); ok {
		if info.Version == "" && bi.Main.Version != "(devel)" {
			info.Version = bi.Main.Version
		}
		for _, s := range bi.Settings {
			switch {
			case s.Key == "vcs.revision" && info.Commit == "":
				info.Commit = s.Value
			case s.Key == "vcs.time" && info.Built == "":
				info.Built = s.Value
			}
		}
	}
	if info.Version == "" {
		info.Version = "dev"
	}
	if len(info.Commit) > 12 {
		info.Commit = info.Commit[:12]
	}
	return info
}

// String renders "logmask <version> (<details>)", omitting unknown details.
func (b buildInfo) String() string {
	var details []string
	if b.Commit != "" {
		details = append(details, "commit "+b.Commit)
	}
	if b.Built != "" {
		details = append(details, "built "+b.Built)
	}
	if b.Go != "" {
		details = append(details, b.Go)
	}
	if len(details) == 0 {
		return "logmask " + b.Version
	}
	return fmt.Sprintf("logmask %s (%s)", b.Version, strings.Join(details, ", "))
}
