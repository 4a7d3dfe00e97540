package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"mad-rewrite/internal/engine"
)

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	logLevel   string

	cfg    engine.Config
	logger *slog.Logger
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stderr: stderr}
	root := &cobra.Command{
		Use:           "rewrite",
		Short:         "Run grid rewriting models headlessly",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "engine config file (YAML or JSON)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(
		newRunCmd(c),
		newSweepCmd(c),
		newLsysCmd(),
		newModelsCmd(),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := engine.LoadConfig(c.configPath)
	if err != nil {
		return err
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	level, err := engine.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	c.logger = slog.New(slog.NewTextHandler(c.stderr, &slog.HandlerOptions{Level: level}))
	cfg.Logger = c.logger
	c.cfg = cfg
	return nil
}
