package prompts

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const verificationSchema = `3) Return ONLY valid JSON:
{
  "is_correct": boolean,
  "issues": [string, ...],
  "final_answer": string
}`

func TestLoaderListsEmbeddedTemplates(t *testing.T) {
	loader, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"verification", "verifier", "worker"}, loader.Names())

	tmpl, err := loader.Template(TemplateVerification)
	require.NoError(t, err)
	assert.Equal(t, []string{"question", "answer"}, tmpl.Placeholders)

	_, err = loader.Template("missing")
	assert.Error(t, err)
}

func TestLoaderReadsAnyFileSystem(t *testing.T) {
	loader, err := NewLoader(fstest.MapFS{
		"greet.md":     {Data: []byte("Hello {{name}}, {{name}}!\n\n")},
		"notes.txt":    {Data: []byte("ignored")},
		"sub/inner.md": {Data: []byte("ignored too")},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"greet"}, loader.Names())

	out, err := loader.Render("greet", map[string]string{"name": "Ada", "unused": "x"})
	require.NoError(t, err)
	assert.Equal(t, "Hello Ada, Ada!", out)

	_, err = loader.Render("greet", nil)
	assert.ErrorContains(t, err, "no value for {{name}}")
}

func TestRenderIsSinglePass(t *testing.T) {
	loader, err := Default()
	require.NoError(t, err)

	out, err := loader.Render(TemplateVerification, map[string]string{
		"question": "what is {{answer}}?",
		"answer":   "7",
	})
	require.NoError(t, err)
	assert.Contains(t, out, "what is {{answer}}?")
	assert.Contains(t, out, "Solver answer:\n7\n")
}

func TestBuildVerificationPromptEmbedsQuestionAndValue(t *testing.T) {
	prompt, err := BuildVerificationPrompt("2 + 2", 4)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(prompt, "You are a strict verifier."))
	assert.Contains(t, prompt, "User question:\n2 + 2\n")
	assert.Contains(t, prompt, "Solver answer:\n4\n")
	assert.Contains(t, prompt, "1) Decide if the solver answer is correct.")
	assert.Contains(t, prompt, "2) If incorrect or incomplete, correct it.")
	assert.True(t, strings.HasSuffix(prompt, verificationSchema))
}

func TestBuildVerificationPromptIsDeterministic(t *testing.T) {
	first, err := BuildVerificationPrompt("A stock rises 40% then falls 40%", 84)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := BuildVerificationPrompt("A stock rises 40% then falls 40%", 84)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestBuildVerificationPromptSchemaIsIndependentOfInput(t *testing.T) {
	a, err := BuildVerificationPrompt("q1", 1)
	require.NoError(t, err)
	b, err := BuildVerificationPrompt("a much longer question\nwith lines", -0.5)
	require.NoError(t, err)

	schemaA := a[strings.Index(a, "Tasks:"):]
	schemaB := b[strings.Index(b, "Tasks:"):]
	assert.Equal(t, schemaA, schemaB)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "4", FormatValue(4))
	assert.Equal(t, "112", FormatValue(112))
	assert.Equal(t, "84.5", FormatValue(84.5))
	assert.Equal(t, "0", FormatValue(0))
	assert.Equal(t, "1000000000000000000000", FormatValue(1e21))
}

func TestSystemPrompts(t *testing.T) {
	worker, err := WorkerSystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, worker, "calculate")
	assert.Contains(t, worker, `{"value": <number>}`)

	verifier, err := VerifierSystemPrompt()
	require.NoError(t, err)
	assert.Contains(t, verifier, "independently")
}
