package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// batchFile is the YAML layout accepted by the batch command. A bare
// top-level list of strings is accepted too.
type batchFile struct {
	Questions []string `yaml:"questions"`
}

func loadBatchFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	return parseBatch(data)
}

func parseBatch(data []byte) ([]string, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse batch file: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, errors.New("batch file is empty")
	}

	var raw []string
	switch doc := root.Content[0]; doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse batch file: %w", err)
		}
	case yaml.MappingNode:
		var file batchFile
		if err := doc.Decode(&file); err != nil {
			return nil, fmt.Errorf("parse batch file: %w", err)
		}
		raw = file.Questions
	default:
		return nil, errors.New("batch file must be a list of questions or a mapping with a questions key")
	}

	questions := make([]string, 0, len(raw))
	for _, q := range raw {
		if trimmed := strings.TrimSpace(q); trimmed != "" {
			questions = append(questions, trimmed)
		}
	}
	if len(questions) == 0 {
		return nil, errors.New("batch file contains no questions")
	}
	return questions, nil
}

func newBatchCommand(cli *CLI) *cobra.Command {
	var (
		asJSON          bool
		concurrency     int
		failOnIncorrect bool
	)
	cmd := &cobra.Command{
		Use:   "batch <questions.yaml>",
		Short: "Solve and verify every question in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			questions, err := loadBatchFile(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("concurrency") {
				concurrency = cli.cfg.Batch.Concurrency
			}

			container, cleanup, err := cli.buildContainer()
			if err != nil {
				return err
			}
			defer cleanup()

			results, err := container.Pipeline.RunBatch(cmd.Context(), questions, concurrency)
			if err != nil {
				return err
			}

			if asJSON {
				if err := printJSON(cli.stdout, results); err != nil {
					return err
				}
			} else {
				p := cli.palette()
				for i, result := range results {
					fmt.Fprintf(cli.stdout, "%s %s\n", p.label(fmt.Sprintf("[%d/%d]", i+1, len(results))), result.Question)
					printResult(cli.stdout, result, p, false)
					fmt.Fprintln(cli.stdout)
				}
			}

			if failOnIncorrect {
				incorrect := 0
				for _, result := range results {
					if result.Verdict == nil || !result.Verdict.IsCorrect {
						incorrect++
					}
				}
				if incorrect > 0 {
					return &ExitCodeError{
						Code: exitCodeIncorrect,
						Err:  fmt.Errorf("%d of %d answers were not confirmed correct", incorrect, len(results)),
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print run reports as a JSON array")
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "Parallel runs (default from config)")
	cmd.Flags().BoolVar(&failOnIncorrect, "fail-on-incorrect", false, "Exit with code 2 unless every verdict is correct")
	return cmd
}
