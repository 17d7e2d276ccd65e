package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/redact"
	"github.com/suryansh-23/logmask/internal/types"
	"github.com/suryansh-23/logmask/internal/ui"
)

func newInitCmd(state *appState) *cobra.Command {
	var useDefaults bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file, interactively or with defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := state.cfgPath
			out := cmd.OutOrStdout()

			cfg := config.DefaultConfig()
			if useDefaults {
				if isRegularFile(path) {
					fmt.Fprintf(out, "Config exists, overwriting: %s\n", path)
				}
				return finishInit(out, path, cfg)
			}

			draft := newInitDraft(cfg)
			overwrite := false
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewConfirm().Title("Config exists. Overwrite?").Value(&overwrite),
				).WithHideFunc(func() bool { return !isRegularFile(path) }),
				huh.NewGroup(
					huh.NewConfirm().Title("Mask payloads wrapped in sensitive markers?").Value(&draft.sensitive),
					huh.NewInput().Title("Marker tags (comma-separated)").Value(&draft.markers).Validate(validateMarkerList),
					huh.NewMultiSelect[string]().Title("Payload encodings").Value(&draft.encodings).Options(
						huh.NewOption("Raw hex in plain tags", string(types.EncodingRawHex)),
						huh.NewOption("Hex with hex-encoded tags", string(types.EncodingHexEncoded)),
						huh.NewOption("Base64 in plain tags", string(types.EncodingBase64)),
					),
				),
				huh.NewGroup(
					huh.NewConfirm().
						Title(fmt.Sprintf("Replace hex/base64 runs longer than %d characters?", redact.OversizedThreshold)).
						Value(&draft.oversized),
					huh.NewMultiSelect[string]().Title("Run alphabets").Value(&draft.kinds).Options(
						huh.NewOption("Hex", string(types.RunHex)),
						huh.NewOption("Base64", string(types.RunBase64)),
					),
				),
				huh.NewGroup(
					huh.NewConfirm().Title("Skip redaction for selected commands under `logmask run`?").Value(&draft.allowlist),
					huh.NewInput().Title("Allowlisted commands (comma-separated globs)").Value(&draft.commands),
				),
				huh.NewGroup(
					huh.NewConfirm().Title("Print a summary line after each run?").Value(&draft.summary),
				),
			).WithTheme(ui.Theme())

			if err := runPreviewForm(form, draft); err != nil {
				return err
			}
			if isRegularFile(path) && !overwrite {
				return errors.New("init cancelled")
			}
			cfg = draft.apply(cfg)
			return finishInit(out, path, cfg)
		},
	}
	cmd.Flags().BoolVar(&useDefaults, "default", false, "write default config without prompts")
	return cmd
}

func finishInit(out io.Writer, path string, cfg config.Config) error {
	if err := runSelfTest(out, cfg); err != nil {
		return err
	}
	if err := config.Write(path, cfg); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote config to %s\n", path)
	return nil
}

// initDraft holds the form values bound by huh.
type initDraft struct {
	sensitive bool
	markers   string
	encodings []string
	oversized bool
	kinds     []string
	allowlist bool
	commands  string
	summary   bool
}

func newInitDraft(cfg config.Config) *initDraft {
	d := &initDraft{
		sensitive: cfg.Redaction.Sensitive.Enabled,
		markers:   strings.Join(cfg.Redaction.Sensitive.Markers, ", "),
		oversized: cfg.Redaction.Oversized.Enabled,
		allowlist: cfg.Allowlist.Enabled,
		commands:  strings.Join(cfg.Allowlist.Commands, ", "),
		summary:   cfg.Summary.Enabled,
	}
	for _, enc := range cfg.Redaction.Sensitive.Encodings {
		d.encodings = append(d.encodings, string(enc))
	}
	for _, kind := range cfg.Redaction.Oversized.Kinds {
		d.kinds = append(d.kinds, string(kind))
	}
	return d
}

func (d *initDraft) apply(cfg config.Config) config.Config {
	cfg.Redaction.Sensitive.Enabled = d.sensitive
	cfg.Redaction.Sensitive.Markers = splitList(d.markers)
	cfg.Redaction.Sensitive.Encodings = nil
	for _, enc := range d.encodings {
		cfg.Redaction.Sensitive.Encodings = append(cfg.Redaction.Sensitive.Encodings, types.Encoding(enc))
	}
	cfg.Redaction.Oversized.Enabled = d.oversized
	cfg.Redaction.Oversized.Kinds = nil
	for _, kind := range d.kinds {
		cfg.Redaction.Oversized.Kinds = append(cfg.Redaction.Oversized.Kinds, types.RunKind(kind))
	}
	cfg.Allowlist.Enabled = d.allowlist
	cfg.Allowlist.Commands = splitList(d.commands)
	cfg.Summary.Enabled = d.summary
	return cfg
}

func validateMarkerList(v string) error {
	markers := splitList(v)
	if len(markers) == 0 {
		return errors.New("enter at least one marker")
	}
	for _, m := range markers {
		if err := config.ValidateMarker(m); err != nil {
			return err
		}
	}
	return nil
}

// splitList splits a comma-separated value, trimming and de-duplicating entries.
func splitList(v string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, entry := range strings.Split(v, ",") {
		trimmed := strings.TrimSpace(entry)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

type selfTestCase struct {
	name string
	in   string
	want string
}

// selfTestCases returns canned samples for the stages cfg enables.
func selfTestCases(cfg config.Redaction) []selfTestCase {
	var cases []selfTestCase
	if cfg.Sensitive.Enabled && len(cfg.Sensitive.Markers) > 0 {
		m := cfg.Sensitive.Markers[0]
		open, closing := "<"+m+">", "</"+m+">"
		want := "token=" + open + "LENGTH:8" + closing
		if cfg.Sensitive.EncodingEnabled(types.EncodingRawHex) {
			cases = append(cases, selfTestCase{"raw hex", "token=" + open + "deadbeef" + closing, want})
		}
		if cfg.Sensitive.EncodingEnabled(types.EncodingHexEncoded) {
			in := "token=" + fmt.Sprintf("%x", open) + "deadbeef" + fmt.Sprintf("%x", closing)
			cases = append(cases, selfTestCase{"hex encoded", in, want})
		}
		if cfg.Sensitive.EncodingEnabled(types.EncodingBase64) {
			cases = append(cases, selfTestCase{"base64", "token=" + open + "SGVsbG8=" + closing, want})
		}
	}
	if cfg.Oversized.Enabled && cfg.Oversized.KindEnabled(types.RunHex) {
		dump := strings.Repeat("ab", redact.OversizedThreshold)
		cases = append(cases, selfTestCase{"oversized hex", "dump " + dump, fmt.Sprintf("dump <TOO BIG:%d>", len(dump))})
	}
	return cases
}

func runSelfTest(out io.Writer, cfg config.Config) error {
	redactor, err := redact.NewRedactor(cfg.Redaction)
	if err != nil {
		return fmt.Errorf("self-test: %w", err)
	}
	cases := selfTestCases(cfg.Redaction)
	for _, tc := range cases {
		if got := redactor.Redact(tc.in); got != tc.want {
			return fmt.Errorf("self-test failed: %s sample produced %q, want %q", tc.name, got, tc.want)
		}
	}
	fmt.Fprintf(out, "Self-test passed (%d samples)\n", len(cases))
	return nil
}
