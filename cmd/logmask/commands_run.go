package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/suryansh-23/logmask/internal/allowlist"
	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/debug"
	"github.com/suryansh-23/logmask/internal/ptywrap"
	"github.com/suryansh-23/logmask/internal/redact"
	"github.com/suryansh-23/logmask/internal/ui"
)

const wrappedEnv = "LOGMASK_WRAPPED"

func newRunCmd(state *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "run -- <command> [args...]",
		Short: "Run a command under a PTY and redact its output",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			command := exec.Command(args[0], args[1:]...)
			return runWithPTY(cmd.Context(), state, command)
		},
	}
}

func runWithPTY(ctx context.Context, state *appState, command *exec.Cmd) error {
	command.Env = os.Environ()
	if os.Getenv(wrappedEnv) == "" {
		command.Env = append(command.Env, wrappedEnv+"=1")
	}
	if state.cfgPath != "" && os.Getenv(configEnv) == "" {
		command.Env = append(command.Env, configEnv+"="+state.cfgPath)
	}

	bypass := shouldBypassRedaction(state.cfg, command, state.logger)
	var (
		output io.Writer = passthrough{os.Stdout}
		stream *redact.Stream
	)
	if !bypass {
		stream = redact.NewStream(os.Stdout, state.redactor, state.cfg.Stream, state.eventLogger("run"))
		output = stream
	}

	exitCode, err := ptywrap.RunCommand(ctx, command, ptywrap.Options{
		RawMode: term.IsTerminal(int(os.Stdin.Fd())),
		Output:  output,
	})
	if stream != nil && state.cfg.Summary.Enabled {
		if line := ui.Summary(summaryCounts(stream.Lines(), stream.Report()), isTerminal(os.Stderr)); line != "" {
			fmt.Fprintln(os.Stderr, line)
		}
	}
	if err != nil {
		return err
	}
	if exitCode != 0 {
		return &exitCodeError{code: exitCode}
	}
	return nil
}

// passthrough hides Close so that the PTY runner never closes stdout.
type passthrough struct {
	io.Writer
}

func shouldBypassRedaction(cfg config.Config, command *exec.Cmd, logger *debug.Logger) bool {
	if !cfg.Allowlist.Enabled || len(cfg.Allowlist.Commands) == 0 || command == nil {
		return false
	}
	list, err := allowlist.New(cfg.Allowlist.Commands)
	if err != nil {
		logger.Warnf("allowlist: %v", err)
		return false
	}
	argv0 := command.Path
	if len(command.Args) > 0 {
		argv0 = command.Args[0]
	}
	resolved := resolveCommandPath(argv0)
	matched := list.Match(argv0, resolved)
	if matched {
		logger.Infof("allowlist: bypassing redaction for %s (resolved=%s)", argv0, resolved)
	}
	return matched
}

func resolveCommandPath(argv0 string) string {
	if strings.TrimSpace(argv0) == "" {
		return ""
	}
	resolved, err := exec.LookPath(argv0)
	if err != nil {
		return argv0
	}
	return resolved
}
