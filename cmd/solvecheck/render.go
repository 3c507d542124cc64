package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"

	"solvecheck/internal/pipeline"
	"solvecheck/internal/prompts"
)

type palette struct {
	label  func(a ...any) string
	value  func(a ...any) string
	warn   func(a ...any) string
	fail   func(a ...any) string
	ok     func(a ...any) string
	subtle func(a ...any) string
}

func newPalette(enabled bool) palette {
	build := func(attrs ...color.Attribute) func(a ...any) string {
		c := color.New(attrs...)
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c.SprintFunc()
	}
	return palette{
		label:  build(color.FgCyan, color.Bold),
		value:  build(color.FgGreen),
		warn:   build(color.FgYellow),
		fail:   build(color.FgRed),
		ok:     build(color.FgGreen, color.Bold),
		subtle: build(color.FgHiBlack),
	}
}

// printResult writes the console report of one run: the worker's answer,
// then the verifier's normalized verdict.
func printResult(w io.Writer, result *pipeline.Result, p palette, showPrompt bool) {
	fmt.Fprintf(w, "%s %s\n", p.label("Worker returns:"), p.value(prompts.FormatValue(result.Coercion.Answer.Value)))
	if result.Coercion.Defaulted() {
		fmt.Fprintf(w, "%s\n", p.warn(fmt.Sprintf("worker output was not {\"value\": <number>}, using %s; raw: %q",
			prompts.FormatValue(pipeline.DefaultWorkerAnswer.Value), result.Coercion.Raw)))
	}
	if showPrompt {
		fmt.Fprintf(w, "%s\n%s\n", p.label("Verification prompt:"), p.subtle(result.VerificationPrompt))
	}
	fmt.Fprintf(w, "%s\n%s\n", p.label("Verifier Result:"), result.VerdictText)
	if result.Verdict != nil {
		if result.Verdict.IsCorrect {
			fmt.Fprintf(w, "%s\n", p.ok("verdict: correct"))
		} else {
			fmt.Fprintf(w, "%s %s\n", p.fail("verdict: incorrect, final answer"), result.Verdict.FinalAnswer)
		}
	}
	fmt.Fprintf(w, "%s\n", p.subtle(fmt.Sprintf("run %s in %s", result.RunID, result.Timings.Total)))
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
