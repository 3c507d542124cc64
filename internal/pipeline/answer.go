package pipeline

import (
	"encoding/json"
	"strings"
)

// WorkerAnswer is the worker's final numeric answer.
type WorkerAnswer struct {
	Value float64 `json:"value"`
}

// CoercionOutcome tells a parsed answer apart from the fallback.
type CoercionOutcome string

const (
	// CoercionParsed means the worker output decoded into a WorkerAnswer.
	CoercionParsed CoercionOutcome = "parsed"
	// CoercionDefaulted means decoding failed and DefaultWorkerAnswer was used.
	CoercionDefaulted CoercionOutcome = "defaulted"
)

// DefaultWorkerAnswer substitutes for worker output that does not decode.
var DefaultWorkerAnswer = WorkerAnswer{Value: 0}

// Coercion is the result of CoerceWorkerAnswer. Downstream stages only read
// Answer; Outcome and Raw exist so callers can tell a computed zero from a
// fallback.
type Coercion struct {
	Answer  WorkerAnswer    `json:"answer"`
	Outcome CoercionOutcome `json:"outcome"`
	Raw     string          `json:"raw"`
}

// Defaulted reports whether the fallback answer was substituted.
func (c Coercion) Defaulted() bool {
	return c.Outcome == CoercionDefaulted
}

// CoerceWorkerAnswer decodes raw as {"value": <number>}. It never fails:
// malformed JSON, a missing value field or a non-numeric value yield
// DefaultWorkerAnswer. Unknown fields are ignored and the key must be spelled
// "value" exactly.
func CoerceWorkerAnswer(raw string) Coercion {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &fields); err != nil {
		return Coercion{Answer: DefaultWorkerAnswer, Outcome: CoercionDefaulted, Raw: raw}
	}
	var value *float64
	if err := json.Unmarshal(fields["value"], &value); err != nil || value == nil {
		return Coercion{Answer: DefaultWorkerAnswer, Outcome: CoercionDefaulted, Raw: raw}
	}
	return Coercion{Answer: WorkerAnswer{Value: *value}, Outcome: CoercionParsed, Raw: raw}
}
