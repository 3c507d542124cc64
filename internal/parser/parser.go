package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
)

const (
	fenceOpen  = "```json"
	fenceClose = "```"
)

// Outcome reports which branch produced the extracted text.
type Outcome string

const (
	// OutcomeNormalized means a JSON value was found and re-serialized.
	OutcomeNormalized Outcome = "normalized"
	// OutcomeRaw means nothing parsed and the input was returned verbatim.
	OutcomeRaw Outcome = "raw"
)

// Extraction is the result of Normalize.
type Extraction struct {
	Text    string
	Outcome Outcome
	// Fenced is true when the candidate came from a ```json block.
	Fenced bool
}

// ExtractJSONBlock returns the JSON candidate carried by text. The first
// ```json block wins and its body runs to the next ```. An unterminated block
// yields the text from the marker onward, which never parses. Without a block
// the whole text is the candidate.
func ExtractJSONBlock(text string) (candidate string, fenced bool) {
	start := strings.Index(text, fenceOpen)
	if start == -1 {
		return text, false
	}
	body := text[start+len(fenceOpen):]
	end := strings.Index(body, fenceClose)
	if end == -1 {
		return text[start:], true
	}
	return body[:end], true
}

// Normalize locates a JSON payload in text and re-serializes it with
// two-space indentation. When no candidate parses, Text is the original
// input byte for byte.
func Normalize(text string) Extraction {
	candidate, fenced := ExtractJSONBlock(text)
	value, err := decodeStrict(strings.TrimSpace(candidate))
	if err != nil {
		return Extraction{Text: text, Outcome: OutcomeRaw, Fenced: fenced}
	}
	pretty, err := encodeIndented(value)
	if err != nil {
		return Extraction{Text: text, Outcome: OutcomeRaw, Fenced: fenced}
	}
	return Extraction{Text: pretty, Outcome: OutcomeNormalized, Fenced: fenced}
}

// ExtractJSON is Normalize reduced to its text.
func ExtractJSON(text string) string {
	return Normalize(text).Text
}

var errTrailingData = errors.New("unexpected data after JSON value")

// decodeStrict parses exactly one JSON value. Numbers stay json.Number so
// re-serialization preserves their original spelling.
func decodeStrict(candidate string) (any, error) {
	if candidate == "" {
		return nil, io.ErrUnexpectedEOF
	}
	dec := json.NewDecoder(strings.NewReader(candidate))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return value, nil
}

func encodeIndented(value any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
