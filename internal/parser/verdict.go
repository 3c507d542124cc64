package parser

import (
	"encoding/json"
	"strings"
)

// Verdict is the typed view of the verifier's JSON reply.
type Verdict struct {
	IsCorrect   bool     `json:"is_correct"`
	Issues      []string `json:"issues"`
	FinalAnswer string   `json:"final_answer"`
}

// ParseVerdict decodes text (raw or already normalized) into a Verdict.
// It reports false unless the payload is an object carrying both
// is_correct and final_answer with the expected types.
func ParseVerdict(text string) (Verdict, bool) {
	candidate, _ := ExtractJSONBlock(text)
	candidate = strings.TrimSpace(candidate)

	var shape struct {
		IsCorrect   *bool           `json:"is_correct"`
		Issues      []string        `json:"issues"`
		FinalAnswer json.RawMessage `json:"final_answer"`
	}
	if err := json.Unmarshal([]byte(candidate), &shape); err != nil {
		return Verdict{}, false
	}
	if shape.IsCorrect == nil || len(shape.FinalAnswer) == 0 {
		return Verdict{}, false
	}

	verdict := Verdict{IsCorrect: *shape.IsCorrect, Issues: shape.Issues}
	if verdict.Issues == nil {
		verdict.Issues = []string{}
	}
	// Models sometimes answer with a bare number despite the schema.
	var answer string
	if err := json.Unmarshal(shape.FinalAnswer, &answer); err == nil {
		verdict.FinalAnswer = answer
	} else {
		verdict.FinalAnswer = strings.TrimSpace(string(shape.FinalAnswer))
	}
	return verdict, true
}
