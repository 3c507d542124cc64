package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/agent/ports/mocks"
	"solvecheck/internal/agent/react"
	apperrors "solvecheck/internal/errors"
	"solvecheck/internal/parser"
	"solvecheck/internal/prompts"
	"solvecheck/internal/toolregistry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verifierReply = "Here you go:\n```json\n{\"is_correct\": true, \"issues\": [], \"final_answer\": \"4\"}\n```"

// tickingClock advances one millisecond per reading so every stage gets a
// strictly increasing timestamp.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func newClock() *tickingClock {
	return &tickingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func TestRunEndToEndThroughReactEngine(t *testing.T) {
	registry, err := toolregistry.NewBuiltinRegistry(toolregistry.Config{})
	require.NoError(t, err)

	workerLLM := &mocks.ScriptedLLMClient{Responses: []*ports.CompletionResponse{
		{ToolCalls: []ports.ToolCall{{ID: "call-1", Name: "calculate", Arguments: map[string]any{"expression": "2 + 2"}}}},
		{Content: `{"value": 4}`},
	}}
	verifierLLM := &mocks.ScriptedLLMClient{Responses: []*ports.CompletionResponse{
		{Content: verifierReply},
	}}

	workerPrompt, err := prompts.WorkerSystemPrompt()
	require.NoError(t, err)
	verifierPrompt, err := prompts.VerifierSystemPrompt()
	require.NoError(t, err)

	worker, err := react.NewEngine(react.Config{Name: "worker", SystemPrompt: workerPrompt, LLM: workerLLM, Tools: registry})
	require.NoError(t, err)
	verifier, err := react.NewEngine(react.Config{Name: "verifier", SystemPrompt: verifierPrompt, LLM: verifierLLM})
	require.NoError(t, err)

	p, err := New(Config{Worker: worker, Verifier: verifier})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "2 + 2")
	require.NoError(t, err)

	// Worker saw the tool result.
	require.Len(t, workerLLM.Requests, 2)
	toolMsg := workerLLM.Requests[1].Messages[len(workerLLM.Requests[1].Messages)-1]
	assert.Equal(t, ports.RoleTool, toolMsg.Role)
	assert.Equal(t, "4", toolMsg.Content)

	assert.Equal(t, CoercionParsed, result.Coercion.Outcome)
	assert.Equal(t, 4.0, result.Coercion.Answer.Value)
	assert.Contains(t, result.VerificationPrompt, "4")
	assert.Contains(t, result.VerificationPrompt, "2 + 2")

	// Verifier gets no tools and none of the worker's conversation.
	require.Len(t, verifierLLM.Requests, 1)
	verifierReq := verifierLLM.Requests[0]
	assert.Empty(t, verifierReq.Tools)
	require.Len(t, verifierReq.Messages, 2)
	assert.Equal(t, verifierPrompt, verifierReq.Messages[0].Content)
	assert.Equal(t, result.VerificationPrompt, verifierReq.Messages[1].Content)
	for _, msg := range verifierReq.Messages {
		assert.NotEqual(t, ports.RoleTool, msg.Role)
		assert.NotContains(t, msg.Content, "call-1")
	}

	assert.Equal(t, parser.OutcomeNormalized, result.Extraction)
	assert.Equal(t, "{\n  \"final_answer\": \"4\",\n  \"is_correct\": true,\n  \"issues\": []\n}", result.VerdictText)
	require.NotNil(t, result.Verdict)
	assert.True(t, result.Verdict.IsCorrect)
	assert.Equal(t, []Stage{StageRunWorker, StageRunVerifier, StageDone}, result.States)
	assert.True(t, strings.HasPrefix(result.RunID, "run-"))
}

func TestRunOrdersStages(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
		times  = map[Stage]time.Time{}
	)
	record := func(name string) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, name)
	}

	worker := &mocks.MockEngine{NameValue: "worker", RunFunc: func(ctx context.Context, task ports.Task) (string, error) {
		record("worker")
		return `{"value": 84}`, nil
	}}
	verifier := &mocks.MockEngine{NameValue: "verifier", RunFunc: func(ctx context.Context, task ports.Task) (string, error) {
		record("verifier")
		return "no json", nil
	}}

	p, err := New(Config{
		Worker:   worker,
		Verifier: verifier,
		Clock:    newClock(),
		Hooks: Hooks{OnStage: func(stage Stage, at time.Time) {
			record(string(stage))
			times[stage] = at
		}},
	})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "stock question")
	require.NoError(t, err)

	assert.Equal(t, []string{"RUN_WORKER", "worker", "BUILD_PROMPT", "RUN_VERIFIER", "verifier", "DONE"}, events)
	assert.True(t, times[StageRunWorker].Before(times[StageBuildPrompt]))
	assert.True(t, times[StageBuildPrompt].Before(times[StageRunVerifier]))
	assert.True(t, times[StageRunVerifier].Before(times[StageDone]))

	require.Len(t, verifier.Tasks, 1)
	assert.Contains(t, verifier.Tasks[0].String(), "Solver answer:\n84\n")
	assert.Equal(t, "no json", result.VerdictText)
	assert.Equal(t, parser.OutcomeRaw, result.Extraction)
	assert.Nil(t, result.Verdict)
	assert.Positive(t, result.Timings.Total)
}

func TestRunFeedsDefaultedAnswerToVerifier(t *testing.T) {
	worker := &mocks.MockEngine{RunFunc: func(context.Context, ports.Task) (string, error) {
		return "I could not compute it", nil
	}}
	verifier := &mocks.MockEngine{RunFunc: func(context.Context, ports.Task) (string, error) {
		return `{"is_correct": false, "issues": ["no answer"], "final_answer": "84"}`, nil
	}}
	recorder := &fakeRecorder{}
	p, err := New(Config{Worker: worker, Verifier: verifier, Metrics: recorder})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "q")
	require.NoError(t, err)

	assert.True(t, result.Coercion.Defaulted())
	assert.Contains(t, verifier.Tasks[0].String(), "Solver answer:\n0\n")
	require.NotNil(t, result.Verdict)
	assert.False(t, result.Verdict.IsCorrect)
	assert.Equal(t, []string{"coercion:defaulted", "extraction:normalized", "stage:RUN_WORKER", "stage:RUN_VERIFIER", "run:success"}, recorder.entries())
}

func TestRunPropagatesWorkerFailure(t *testing.T) {
	boom := errors.New("401 unauthorized")
	worker := &mocks.MockEngine{NameValue: "worker", RunFunc: func(context.Context, ports.Task) (string, error) {
		return "", boom
	}}
	verifier := &mocks.MockEngine{NameValue: "verifier"}
	var stages []Stage
	recorder := &fakeRecorder{}
	p, err := New(Config{Worker: worker, Verifier: verifier, Metrics: recorder, Hooks: Hooks{OnStage: func(s Stage, _ time.Time) {
		stages = append(stages, s)
	}}})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "q")
	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, boom)

	var engineErr *apperrors.EngineInvocationError
	require.True(t, errors.As(err, &engineErr))
	assert.Equal(t, "RUN_WORKER", engineErr.Stage)
	assert.Equal(t, "worker", engineErr.Agent)

	assert.Empty(t, verifier.Tasks, "verifier must not run after a worker failure")
	assert.Equal(t, []Stage{StageRunWorker}, stages)
	assert.Equal(t, []string{"run:failed"}, recorder.entries())
}

func TestRunPropagatesVerifierFailure(t *testing.T) {
	boom := errors.New("connection reset")
	worker := &mocks.MockEngine{RunFunc: func(context.Context, ports.Task) (string, error) {
		return `{"value": 1}`, nil
	}}
	verifier := &mocks.MockEngine{NameValue: "verifier", RunFunc: func(context.Context, ports.Task) (string, error) {
		return "", boom
	}}
	p, err := New(Config{Worker: worker, Verifier: verifier})
	require.NoError(t, err)

	result, err := p.Run(context.Background(), "q")
	assert.Nil(t, result)
	assert.True(t, apperrors.IsEngineInvocation(err))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "RUN_VERIFIER")
}

func TestRunRejectsEmptyQuestion(t *testing.T) {
	worker := &mocks.MockEngine{}
	p, err := New(Config{Worker: worker, Verifier: &mocks.MockEngine{}})
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "  \n")
	assert.ErrorIs(t, err, ErrEmptyQuestion)
	assert.Empty(t, worker.Tasks)
}

func TestNewRequiresEngines(t *testing.T) {
	_, err := New(Config{Verifier: &mocks.MockEngine{}})
	assert.Error(t, err)
	_, err = New(Config{Worker: &mocks.MockEngine{}})
	assert.Error(t, err)
}

type fakeRecorder struct {
	mu   sync.Mutex
	list []string
}

func (f *fakeRecorder) add(entry string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.list = append(f.list, entry)
}

func (f *fakeRecorder) RecordPipelineRun(_ context.Context, status string) { f.add("run:" + status) }
func (f *fakeRecorder) RecordStage(_ context.Context, stage string, _ time.Duration) {
	f.add("stage:" + stage)
}
func (f *fakeRecorder) RecordCoercion(_ context.Context, outcome string)   { f.add("coercion:" + outcome) }
func (f *fakeRecorder) RecordExtraction(_ context.Context, outcome string) { f.add("extraction:" + outcome) }

func (f *fakeRecorder) entries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.list...)
}
