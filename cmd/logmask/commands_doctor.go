package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/suryansh-23/logmask/internal/redact"
)

func newDoctorCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Print configuration and environment diagnostics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runDoctor(cmd.OutOrStdout(), state)
			return nil
		},
	}
}

func runDoctor(w io.Writer, state *appState) {
	cfg := state.cfg
	fmt.Fprintf(w, "config_path=%s\n", state.cfgPath)
	fmt.Fprintf(w, "config_source=%s\n", state.cfgSource)
	fmt.Fprintf(w, "config_found=%t\n", state.cfgFound)
	fmt.Fprintf(w, "sensitive_enabled=%t\n", cfg.Redaction.Sensitive.Enabled)
	fmt.Fprintf(w, "markers=%s\n", joinOrNone(cfg.Redaction.Sensitive.Markers))
	fmt.Fprintf(w, "oversized_enabled=%t\n", cfg.Redaction.Oversized.Enabled)
	fmt.Fprintf(w, "oversized_threshold=%d\n", redact.OversizedThreshold)
	fmt.Fprintf(w, "rules=%s\n", joinOrNone(ruleNames(state.redactor)))
	fmt.Fprintf(w, "max_line_bytes=%d\n", cfg.Stream.MaxLineBytes)
	fmt.Fprintf(w, "allowlist_enabled=%t\n", cfg.Allowlist.Enabled)
	fmt.Fprintf(w, "allowlist=%s\n", joinOrNone(cfg.Allowlist.Commands))
	fmt.Fprintf(w, "redis_enabled=%t\n", cfg.Output.Redis.Enabled)
	if cfg.Output.Redis.Enabled {
		fmt.Fprintf(w, "redis_stream=%s\n", cfg.Output.Redis.Stream)
	}
	fmt.Fprintf(w, "summary_enabled=%t\n", cfg.Summary.Enabled)
	fmt.Fprintf(w, "debug_enabled=%t\n", cfg.Debug.Enabled)
	fmt.Fprintf(w, "term=%s\n", os.Getenv("TERM"))
	fmt.Fprintf(w, "stdin_tty=%t\n", term.IsTerminal(int(os.Stdin.Fd())))
	fmt.Fprintf(w, "stdout_tty=%t\n", term.IsTerminal(int(os.Stdout.Fd())))
	fmt.Fprintf(w, "wrapped=%t\n", os.Getenv(wrappedEnv) != "")
}

func ruleNames(r *redact.Redactor) []string {
	var out []string
	for _, info := range r.Rules() {
		out = append(out, info.Name)
	}
	return out
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "none"
	}
	return strings.Join(values, ",")
}
