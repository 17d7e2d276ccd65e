package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/redact"
	"github.com/suryansh-23/logmask/internal/sink"
	"github.com/suryansh-23/logmask/internal/ui"
)

type redactOptions struct {
	redisURL    string
	redisStream string
	stats       bool
}

func newRedactCmd(state *appState) *cobra.Command {
	var (
		text string
		opts redactOptions
	)
	cmd := &cobra.Command{
		Use:   "redact [file...]",
		Short: "Redact log lines from files or stdin",
		Long: "Redact reads each file (or stdin when none is given, or for \"-\") line by line\n" +
			"and writes the redacted lines to stdout.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("text") {
				if len(args) > 0 {
					return errors.New("--text cannot be combined with file arguments")
				}
				fmt.Fprintln(cmd.OutOrStdout(), state.redactor.Redact(text))
				return nil
			}
			return runRedact(cmd.Context(), state, args, opts, cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&text, "text", "", "redact this message and print the result")
	cmd.Flags().StringVar(&opts.redisURL, "redis-url", "", "also publish redacted lines to this Redis server")
	cmd.Flags().StringVar(&opts.redisStream, "redis-stream", "", "Redis stream key (default from config)")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print a summary line to stderr")
	return cmd
}

func runRedact(ctx context.Context, state *appState, inputs []string, opts redactOptions, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	var out io.Writer = stdout
	redisCfg, useRedis := redisConfig(state.cfg.Output.Redis, opts)
	if useRedis {
		publisher, err := sink.NewRedis(ctx, redisCfg)
		if err != nil {
			return err
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				state.logger.Warnf("close redis sink: %v", err)
			}
		}()
		out = sink.NewFanOut(stdout, publisher)
	}

	var (
		lines  int
		report redact.Report
	)
	for _, name := range inputs {
		n, rep, err := redactInput(state, name, stdin, out, stderr)
		lines += n
		report.Add(rep)
		if err != nil {
			return err
		}
	}

	if opts.stats || state.cfg.Summary.Enabled {
		if line := ui.Summary(summaryCounts(lines, report), isTerminal(stderr)); line != "" {
			fmt.Fprintln(stderr, line)
		}
	}
	return nil
}

// redactInput streams one named input through its own Stream so that a
// missing trailing newline never joins lines from different inputs.
func redactInput(state *appState, name string, stdin io.Reader, out, stderr io.Writer) (int, redact.Report, error) {
	var src io.Reader
	if name == "-" {
		if isTerminal(stdin) {
			fmt.Fprintln(stderr, "logmask: reading from terminal; press Ctrl-D to finish")
		}
		src = stdin
	} else {
		f, err := os.Open(name)
		if err != nil {
			return 0, redact.Report{}, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		src = f
	}

	stream := redact.NewStream(out, state.redactor, state.cfg.Stream, state.eventLogger("redact").With("input", name))
	_, err := io.Copy(stream, src)
	// Close reports the same sticky error after a failed write.
	if closeErr := stream.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return stream.Lines(), stream.Report(), fmt.Errorf("redact %s: %w", name, err)
	}
	return stream.Lines(), stream.Report(), nil
}

func redisConfig(base config.Redis, opts redactOptions) (config.Redis, bool) {
	cfg := base
	if url := strings.TrimSpace(opts.redisURL); url != "" {
		cfg.URL = url
		cfg.Enabled = true
	}
	if stream := strings.TrimSpace(opts.redisStream); stream != "" {
		cfg.Stream = stream
	}
	if cfg.Stream == "" {
		cfg.Stream = config.DefaultRedisStream
	}
	return cfg, cfg.Enabled
}

func summaryCounts(lines int, rep redact.Report) ui.Counts {
	return ui.Counts{
		Lines:       lines,
		Sensitive:   rep.Sensitive,
		Oversized:   rep.Oversized,
		StageErrors: rep.StageErrors,
		Failed:      rep.Failures,
	}
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
