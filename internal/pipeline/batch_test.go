package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"solvecheck/internal/agent/ports"
	"solvecheck/internal/agent/ports/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoEngine answers with the numeric length of the task; safe for concurrent use.
type echoEngine struct {
	name  string
	calls atomic.Int32
	fail  string
}

func (e *echoEngine) Name() string { return e.name }

func (e *echoEngine) Run(_ context.Context, task ports.Task) (string, error) {
	e.calls.Add(1)
	if e.fail != "" && strings.Contains(task.String(), e.fail) {
		return "", errors.New("engine down")
	}
	return `{"value": 1}`, nil
}

func TestRunBatchKeepsOrder(t *testing.T) {
	worker := &echoEngine{name: "worker"}
	verifier := &echoEngine{name: "verifier"}
	p, err := New(Config{Worker: worker, Verifier: verifier})
	require.NoError(t, err)

	questions := []string{"q1", "q2", "q3", "q4", "q5"}
	results, err := p.RunBatch(context.Background(), questions, 2)
	require.NoError(t, err)
	require.Len(t, results, len(questions))

	seen := map[string]bool{}
	for i, result := range results {
		assert.Equal(t, questions[i], result.Question)
		assert.False(t, seen[result.RunID], "run IDs must be unique")
		seen[result.RunID] = true
	}
	assert.Equal(t, int32(5), worker.calls.Load())
	assert.Equal(t, int32(5), verifier.calls.Load())
}

func TestRunBatchFailsFast(t *testing.T) {
	worker := &echoEngine{name: "worker", fail: "bad"}
	p, err := New(Config{Worker: worker, Verifier: &echoEngine{name: "verifier"}})
	require.NoError(t, err)

	results, err := p.RunBatch(context.Background(), []string{"ok", "bad"}, 1)
	assert.Nil(t, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "engine down")
}

func TestRunBatchEmpty(t *testing.T) {
	p, err := New(Config{Worker: &mocks.MockEngine{}, Verifier: &mocks.MockEngine{}})
	require.NoError(t, err)

	results, err := p.RunBatch(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}
