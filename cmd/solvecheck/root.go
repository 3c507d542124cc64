package main

import (
	"github.com/spf13/cobra"

	"solvecheck/internal/config"
)

// NewRootCommand assembles the solvecheck command tree.
func NewRootCommand(cli *CLI) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "solvecheck",
		Short: "Solve a math question with one agent and have a second agent verify it",
		Long: `solvecheck runs a two-stage pipeline. A worker agent answers the question
using the calculate tool and replies with {"value": <number>}. A verifier agent
then judges that answer and replies with a JSON verdict.`,
		Version:       appVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return cli.loadConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cli.configFile, "config", "c", "", "Config file (default: ./solvecheck.yaml or $HOME/solvecheck.yaml)")
	flags.StringVarP(&cli.flags.model, "model", "m", config.DefaultLLMModel, "Model used by both agents")
	flags.StringVar(&cli.flags.baseURL, "base-url", config.DefaultLLMBaseURL, "Chat completions API base URL")
	flags.Float64Var(&cli.flags.temperature, "temperature", config.DefaultTemperature, "Sampling temperature")
	flags.IntVar(&cli.flags.maxIterations, "max-iterations", config.DefaultMaxIterations, "Think/act cycles allowed per agent")
	flags.StringVar(&cli.flags.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")
	flags.BoolVar(&cli.flags.noColor, "no-color", false, "Disable colored output")

	rootCmd.AddCommand(
		newRunCommand(cli),
		newBatchCommand(cli),
		newREPLCommand(cli),
		newCalcCommand(cli),
		newToolsCommand(cli),
		newServeCommand(cli),
	)
	return rootCmd
}
