package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"solvecheck/internal/config"
	"solvecheck/internal/di"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	id "solvecheck/internal/utils/id"
)

// CLI holds state shared by every subcommand.
type CLI struct {
	stdout io.Writer
	stderr io.Writer

	configFile string
	flags      globalFlags

	cfg  config.Config
	meta config.Metadata

	// containerOptions are appended when building the container; tests use
	// them to inject a scripted LLM client.
	containerOptions []di.Option
}

type globalFlags struct {
	model         string
	baseURL       string
	temperature   float64
	maxIterations int
	logLevel      string
	noColor       bool
}

func newCLI(stdout, stderr io.Writer) *CLI {
	return &CLI{stdout: stdout, stderr: stderr}
}

// loadConfig resolves configuration, letting explicitly set flags win.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	var overrides config.Overrides
	flags := cmd.Flags()
	if flags.Changed("model") {
		overrides.Model = &c.flags.model
	}
	if flags.Changed("base-url") {
		overrides.BaseURL = &c.flags.baseURL
	}
	if flags.Changed("temperature") {
		overrides.Temperature = &c.flags.temperature
	}
	if flags.Changed("max-iterations") {
		overrides.MaxIterations = &c.flags.maxIterations
	}
	if flags.Changed("log-level") {
		overrides.LogLevel = &c.flags.logLevel
	}

	opts := []config.Option{config.WithOverrides(overrides)}
	if c.configFile != "" {
		opts = append(opts, config.WithConfigFile(c.configFile))
	}
	cfg, meta, err := config.Load(opts...)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.meta = meta

	strategy, err := id.ParseStrategy(cfg.IDs.Strategy)
	if err != nil {
		return err
	}
	id.SetStrategy(strategy)

	logging.SetDefault(observability.NewLogger(observability.LogConfig{
		Level:  cfg.Observability.Logging.Level,
		Format: cfg.Observability.Logging.Format,
		Output: c.stderr,
	}))
	if meta.ConfigFile != "" {
		logging.NewComponentLogger("CLI").Debug("using config file %s", meta.ConfigFile)
	}
	return nil
}

// buildContainer validates the configuration and wires the pipeline. The
// returned cleanup flushes telemetry.
func (c *CLI) buildContainer() (*di.Container, func(), error) {
	if err := c.cfg.Validate(); err != nil {
		return nil, nil, err
	}

	obs, err := observability.New(c.cfg.Observability, observability.WithLogOutput(c.stderr))
	if err != nil {
		return nil, nil, err
	}
	logging.SetDefault(obs.Logger)

	opts := append([]di.Option{di.WithObservability(obs)}, c.containerOptions...)
	container, err := di.BuildContainer(c.cfg, opts...)
	if err != nil {
		_ = obs.Shutdown(context.Background())
		return nil, nil, err
	}
	cleanup := func() {
		if err := obs.Shutdown(context.Background()); err != nil {
			fmt.Fprintf(c.stderr, "Cleanup error: %v\n", err)
		}
	}
	return container, cleanup, nil
}

func (c *CLI) palette() palette {
	return newPalette(!c.flags.noColor && isTTY(c.stdout))
}

// isTTY reports whether w is a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
