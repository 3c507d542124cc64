package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/toolregistry"
	"solvecheck/internal/tools/builtin"
	id "solvecheck/internal/utils/id"
)

func newCalcCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "calc <expression>",
		Short: "Evaluate an expression with the calculate tool",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := toolregistry.NewBuiltinRegistry(toolregistry.Config{})
			if err != nil {
				return err
			}
			tool, err := registry.Get(builtin.CalculateToolName)
			if err != nil {
				return err
			}
			result, err := tool.Execute(cmd.Context(), ports.ToolCall{
				ID:        id.NewCallID(),
				Name:      builtin.CalculateToolName,
				Arguments: map[string]any{"expression": strings.Join(args, " ")},
			})
			if err != nil {
				return err
			}
			if result.Failed() {
				return result.Error
			}
			fmt.Fprintln(cli.stdout, result.Content)
			return nil
		},
	}
}

func newToolsCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool schemas advertised to the worker",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := toolregistry.NewBuiltinRegistry(toolregistry.Config{})
			if err != nil {
				return err
			}
			return printJSON(cli.stdout, registry.List())
		},
	}
}
