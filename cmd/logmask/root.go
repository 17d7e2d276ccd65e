package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/suryansh-23/logmask/internal/config"
	"github.com/suryansh-23/logmask/internal/debug"
	"github.com/suryansh-23/logmask/internal/redact"
)

type globalFlags struct {
	cfgPath     string
	debug       bool
	noSensitive bool
	noOversized bool
}

func newRootCmd(state *appState) *cobra.Command {
	var flags globalFlags

	rootCmd := &cobra.Command{
		Use:           "logmask",
		Short:         "Mask sensitive payloads and oversized dumps in log output",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loc, err := locateConfig(flags.cfgPath)
			if err != nil {
				return err
			}
			cfg, found, err := config.Load(loc.path)
			if err != nil {
				// init rewrites the file, so a broken config must not block it.
				if cmd.Name() != "init" {
					return err
				}
				cfg, found = config.DefaultConfig(), true
			}
			applyOverrides(&cfg, flags)
			redactor, err := redact.NewRedactor(cfg.Redaction)
			if err != nil {
				return fmt.Errorf("build redactor: %w", err)
			}
			state.cfg = cfg
			state.cfgFound = found
			state.cfgPath = loc.path
			state.cfgSource = loc.source
			state.redactor = redactor
			state.logger = debug.New(cfg.Debug.Enabled, redact.NewHandler(debug.TextHandler(os.Stderr), redactor))
			state.logger.Infof("config path=%s source=%s found=%t rules=%d", loc.path, loc.source, found, len(redactor.Rules()))
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.cfgPath, "config", "", "config file path (env "+configEnv+")")
	rootCmd.PersistentFlags().BoolVar(&flags.debug, "debug", false, "enable redacted debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&flags.noSensitive, "no-sensitive", false, "disable sensitive marker masking")
	rootCmd.PersistentFlags().BoolVar(&flags.noOversized, "no-oversized", false, "disable oversized run replacement")

	rootCmd.AddCommand(newRedactCmd(state))
	rootCmd.AddCommand(newRunCmd(state))
	rootCmd.AddCommand(newInitCmd(state))
	rootCmd.AddCommand(newDoctorCmd(state))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func applyOverrides(cfg *config.Config, flags globalFlags) {
	if flags.debug {
		cfg.Debug.Enabled = true
	}
	if flags.noSensitive {
		cfg.Redaction.Sensitive.Enabled = false
	}
	if flags.noOversized {
		cfg.Redaction.Oversized.Enabled = false
	}
}
