package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/agent/ports/mocks"
	"solvecheck/internal/config"
	"solvecheck/internal/di"
	"solvecheck/internal/pipeline"
)

const correctVerdict = "```json\n{\"is_correct\": true, \"issues\": [], \"final_answer\": \"84\"}\n```"

func isolateCLIEnv(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SOLVECHECK_LLM_API_KEY", "")
}

func executeCLI(t *testing.T, opts []di.Option, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cli := newCLI(&stdout, &stderr)
	cli.containerOptions = opts
	cmd := NewRootCommand(cli)
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func scripted(responses ...string) *mocks.ScriptedLLMClient {
	client := &mocks.ScriptedLLMClient{}
	for _, content := range responses {
		client.Responses = append(client.Responses, &ports.CompletionResponse{Content: content})
	}
	return client
}

func TestRunCommandPrintsWorkerAndVerifier(t *testing.T) {
	isolateCLIEnv(t)
	client := scripted(`{"value": 84}`, correctVerdict)

	out, err := executeCLI(t, []di.Option{di.WithLLMClient(client)}, "run")
	require.NoError(t, err)

	assert.Contains(t, out, "Worker returns: 84\n")
	assert.Contains(t, out, "Verifier Result:\n{\n  \"final_answer\": \"84\",")
	assert.Contains(t, out, "verdict: correct")
	assert.NotContains(t, out, "\x1b[", "no ANSI codes when stdout is not a terminal")

	require.NotEmpty(t, client.Requests)
	last := client.Requests[0].Messages[len(client.Requests[0].Messages)-1]
	assert.Equal(t, config.DefaultQuestion, last.Content)
}

func TestRunCommandJSONReport(t *testing.T) {
	isolateCLIEnv(t)
	client := scripted("I think it is 84", "no json here")

	out, err := executeCLI(t, []di.Option{di.WithLLMClient(client)}, "run", "--json", "What", "is", "42*2?")
	require.NoError(t, err)

	var result pipeline.Result
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "What is 42*2?", result.Question)
	assert.Equal(t, pipeline.CoercionDefaulted, result.Coercion.Outcome)
	assert.Equal(t, 0.0, result.Coercion.Answer.Value)
	assert.Equal(t, "no json here", result.VerdictText)
	assert.Nil(t, result.Verdict)
}

func TestRunCommandRequiresAPIKey(t *testing.T) {
	isolateCLIEnv(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := executeCLI(t, nil, "run", "1+1")
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestRunCommandPropagatesEngineFailure(t *testing.T) {
	isolateCLIEnv(t)
	client := &mocks.ScriptedLLMClient{Err: errors.New("quota exceeded")}

	_, err := executeCLI(t, []di.Option{di.WithLLMClient(client)}, "run", "1+1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
	assert.Contains(t, err.Error(), string(pipeline.StageRunWorker))
}

func TestCalcCommand(t *testing.T) {
	isolateCLIEnv(t)

	out, err := executeCLI(t, nil, "calc", "100", "*", "1.4")
	require.NoError(t, err)
	assert.Equal(t, "140\n", out)

	_, err = executeCLI(t, nil, "calc", "2 +")
	require.Error(t, err)
}

func TestToolsCommandPrintsSchema(t *testing.T) {
	isolateCLIEnv(t)

	out, err := executeCLI(t, nil, "tools")
	require.NoError(t, err)

	var defs []ports.ToolDefinition
	require.NoError(t, json.Unmarshal([]byte(out), &defs))
	require.Len(t, defs, 1)
	assert.Equal(t, "calculate", defs[0].Name)
	assert.Contains(t, defs[0].Parameters.Required, "expression")
}

func TestParseBatch(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []string
		wantErr bool
	}{
		{name: "mapping", input: "questions:\n  - What is 2+2?\n  - '  What is 3*3?  '\n", want: []string{"What is 2+2?", "What is 3*3?"}},
		{name: "bare list", input: "- one\n- \"\"\n- two\n", want: []string{"one", "two"}},
		{name: "empty", input: "", wantErr: true},
		{name: "no questions", input: "questions: []\n", wantErr: true},
		{name: "scalar", input: "just text\n", wantErr: true},
		{name: "malformed", input: "questions: [\n", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseBatch([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBatchCommandFailOnIncorrect(t *testing.T) {
	isolateCLIEnv(t)
	path := filepath.Join(t.TempDir(), "questions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("questions:\n  - What is 1+1?\n"), 0o600))

	incorrect := "```json\n{\"is_correct\": false, \"issues\": [\"off by one\"], \"final_answer\": \"2\"}\n```"
	client := scripted(`{"value": 3}`, incorrect)

	out, err := executeCLI(t, []di.Option{di.WithLLMClient(client)}, "batch", path, "--fail-on-incorrect")
	require.Error(t, err)

	var exitErr *ExitCodeError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, exitCodeIncorrect, exitErr.Code)
	assert.Contains(t, out, "[1/1] What is 1+1?")
	assert.Contains(t, out, "verdict: incorrect, final answer 2")
}

type fakeReader struct {
	lines []string
	err   error
}

func (f *fakeReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		if f.err != nil {
			return "", f.err
		}
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

type runnerFunc func(ctx context.Context, question string) (*pipeline.Result, error)

func (f runnerFunc) Run(ctx context.Context, question string) (*pipeline.Result, error) {
	return f(ctx, question)
}

func TestRunREPL(t *testing.T) {
	var asked []string
	runner := runnerFunc(func(_ context.Context, question string) (*pipeline.Result, error) {
		asked = append(asked, question)
		if question == "boom" {
			return nil, errors.New("engine down")
		}
		return &pipeline.Result{
			Question:    question,
			Coercion:    pipeline.Coercion{Answer: pipeline.WorkerAnswer{Value: 4}, Outcome: pipeline.CoercionParsed},
			VerdictText: "{}",
		}, nil
	})

	var out bytes.Buffer
	reader := &fakeReader{lines: []string{"  ", "2 + 2", "boom", "quit", "never asked"}}
	require.NoError(t, runREPL(context.Background(), reader, runner, &out, newPalette(false)))

	assert.Equal(t, []string{"2 + 2", "boom"}, asked)
	assert.Contains(t, out.String(), "Worker returns: 4")
	assert.Contains(t, out.String(), "Error: engine down")
	assert.True(t, strings.HasSuffix(out.String(), "Goodbye!\n"))
}

func TestRunREPLStopsOnInterruptAndEOF(t *testing.T) {
	var out bytes.Buffer
	never := runnerFunc(func(context.Context, string) (*pipeline.Result, error) {
		t.Fatal("runner must not be called")
		return nil, nil
	})

	require.NoError(t, runREPL(context.Background(), &fakeReader{err: readline.ErrInterrupt}, never, &out, newPalette(false)))
	require.NoError(t, runREPL(context.Background(), &fakeReader{}, never, &out, newPalette(false)))
	assert.Equal(t, 2, strings.Count(out.String(), "Goodbye!"))
}

func TestPrintResultWarnsOnDefaultedAnswer(t *testing.T) {
	var out bytes.Buffer
	printResult(&out, &pipeline.Result{
		Coercion:    pipeline.CoerceWorkerAnswer("eighty-four"),
		VerdictText: "not json",
	}, newPalette(false), false)

	assert.Contains(t, out.String(), "Worker returns: 0\n")
	assert.Contains(t, out.String(), `raw: "eighty-four"`)
	assert.Contains(t, out.String(), "Verifier Result:\nnot json\n")
}
