package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"solvecheck/internal/pipeline"
)

// lineReader is the subset of *readline.Instance the REPL loop needs.
type lineReader interface {
	Readline() (string, error)
}

// questionRunner is satisfied by *pipeline.Pipeline.
type questionRunner interface {
	Run(ctx context.Context, question string) (*pipeline.Result, error)
}

func newREPLCommand(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Ask questions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			container, cleanup, err := cli.buildContainer()
			if err != nil {
				return err
			}
			defer cleanup()

			historyFile := ""
			if home, err := os.UserHomeDir(); err == nil {
				historyFile = filepath.Join(home, ".solvecheck_history")
			}
			rl, err := readline.NewEx(&readline.Config{
				Prompt:            "solvecheck> ",
				HistoryFile:       historyFile,
				InterruptPrompt:   "^C",
				EOFPrompt:         "exit",
				HistorySearchFold: true,
				UniqueEditLine:    true,
				Stdin:             readline.NewCancelableStdin(os.Stdin),
				Stdout:            cli.stdout,
				Stderr:            cli.stderr,
			})
			if err != nil {
				return fmt.Errorf("failed to initialize readline: %w", err)
			}
			defer rl.Close()

			fmt.Fprintln(cli.stdout, "Type a question and press Enter. Type 'exit' or 'quit' to leave.")
			return runREPL(cmd.Context(), rl, container.Pipeline, cli.stdout, cli.palette())
		},
	}
}

// runREPL answers one question per line until EOF, an exit command or an
// interrupt on an empty line. Run failures are printed and the loop goes on.
func runREPL(ctx context.Context, rl lineReader, runner questionRunner, out io.Writer, p palette) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				fmt.Fprintln(out, "Goodbye!")
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if err != nil {
			return err
		}

		question := strings.TrimSpace(line)
		switch question {
		case "":
			continue
		case "exit", "quit", "q":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		result, err := runner.Run(ctx, question)
		if err != nil {
			fmt.Fprintf(out, "%s %v\n\n", p.fail("Error:"), err)
			continue
		}
		printResult(out, result, p, false)
		fmt.Fprintln(out)
	}
}
