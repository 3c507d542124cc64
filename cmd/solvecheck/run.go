package main

import (
	"strings"

	"github.com/spf13/cobra"

	"solvecheck/internal/config"
)

func newRunCommand(cli *CLI) *cobra.Command {
	var (
		asJSON     bool
		showPrompt bool
	)
	cmd := &cobra.Command{
		Use:   "run [question]",
		Short: "Solve and verify one question",
		Long:  "Solve and verify one question. Without arguments the stock price question is used:\n  " + config.DefaultQuestion,
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.TrimSpace(strings.Join(args, " "))
			if question == "" {
				question = config.DefaultQuestion
			}

			container, cleanup, err := cli.buildContainer()
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := container.Pipeline.Run(cmd.Context(), question)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cli.stdout, result)
			}
			printResult(cli.stdout, result, cli.palette(), showPrompt)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full run report as JSON")
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "Print the prompt sent to the verifier")
	return cmd
}
