package prompts

import (
	"strconv"
)

// FormatValue renders a worker value the way it appears in prompts and
// console output: shortest round-trip decimal, no exponent.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildVerificationPrompt renders the verifier task for question and the
// worker's numeric answer. The output depends only on its arguments.
func BuildVerificationPrompt(question string, value float64) (string, error) {
	loader, err := Default()
	if err != nil {
		return "", err
	}
	return loader.Render(TemplateVerification, map[string]string{
		"question": question,
		"answer":   FormatValue(value),
	})
}

// WorkerSystemPrompt is the system prompt of the solving agent.
func WorkerSystemPrompt() (string, error) {
	return render(TemplateWorker)
}

// VerifierSystemPrompt is the system prompt of the verifying agent.
func VerifierSystemPrompt() (string, error) {
	return render(TemplateVerifier)
}

func render(name string) (string, error) {
	loader, err := Default()
	if err != nil {
		return "", err
	}
	return loader.Render(name, nil)
}
