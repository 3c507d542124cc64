package builtin

import (
	"context"
	"testing"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluateArithmetic(t *testing.T) {
	tests := []struct {
		name       string
		expression string
		want       float64
	}{
		{"addition", "2 + 3", 5},
		{"precedence", "2 + 3 * 4", 14},
		{"parentheses", "(2 + 3) * 4", 20},
		{"division is floating", "7 / 2", 3.5},
		{"power", "2 ^ 10", 1024},
		{"power binds tighter than multiply", "3 * 2 ^ 2", 12},
		{"modulo", "10 % 3", 1},
		{"unary minus", "-4 + 10", 6},
		{"nested unary minus", "-(2 - 5)", 3},
		{"decimals", "100 * 1.4 * 0.6", 84},
		{"surrounding whitespace", "  1 + 1\n", 2},
		{"literal", "42", 42},
		{"product beyond int64", "3000000000 * 4000000000", 1.2e19},
		{"sum beyond int64", "9223372036854775807 + 1", 9223372036854775808},
		{"integer literal beyond int64", "99999999999999999999", 1e20},
		{"scientific notation", "1e3 + 2.5E-1", 1000.25},
		{"fractional modulo", "7.5 % 2", 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.expression)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestEvaluateRejectsMalformedInput(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"2 +",
		"(1 + 2",
		"1 + 2)",
		"abc",
		"2 * x",
		"len(\"abc\")",
		"1 / 0",
		"\"text\"",
		"e3",
		"1e",
		"2 % 0",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			_, err := Evaluate(input)
			require.Error(t, err)
			assert.True(t, apperrors.IsToolExecution(err), "expected ToolExecutionError, got %T", err)
		})
	}
}

func TestCalculateExecuteSuccess(t *testing.T) {
	tool := NewCalculate()

	result, err := tool.Execute(context.Background(), ports.ToolCall{
		ID:        "call-1",
		Name:      CalculateToolName,
		Arguments: map[string]any{"expression": "100 * 1.4"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "call-1", result.CallID)
	assert.NoError(t, result.Error)
	assert.Equal(t, "140", result.Content)
	assert.InDelta(t, 140.0, result.Metadata["value"], 1e-9)
}

func TestCalculateExecuteFoldsFailures(t *testing.T) {
	tool := NewCalculate()

	cases := map[string]map[string]any{
		"syntax error":   {"expression": "2 +* 3"},
		"missing arg":    {},
		"non-string arg": {"expression": 12},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			result, err := tool.Execute(context.Background(), ports.ToolCall{ID: "c", Name: CalculateToolName, Arguments: args})
			require.NoError(t, err, "bad input must not surface as an executor error")
			require.NotNil(t, result)
			assert.True(t, result.Failed())
			assert.True(t, apperrors.IsToolExecution(result.Error))
			assert.Equal(t, result.Error.Error(), result.Content)
		})
	}
}

func TestCalculateDefinition(t *testing.T) {
	def := NewCalculate().Definition()

	assert.Equal(t, "calculate", def.Name)
	assert.NotEmpty(t, def.Description)
	assert.Equal(t, "object", def.Parameters.Type)
	require.Contains(t, def.Parameters.Properties, "expression")
	assert.Equal(t, "string", def.Parameters.Properties["expression"].Type)
	assert.Equal(t, []string{"expression"}, def.Parameters.Required)
	assert.True(t, NewCalculate().Metadata().Pure)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "84", FormatNumber(84))
	assert.Equal(t, "0.5", FormatNumber(0.5))
	assert.Equal(t, "-3.25", FormatNumber(-3.25))
}
