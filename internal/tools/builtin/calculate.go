package builtin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

// CalculateToolName is the name under which the expression tool is exposed to the LLM.
const CalculateToolName = "calculate"

var (
	errEmptyExpression = errors.New("expression is empty")
	errNonFinite       = errors.New("result is not a finite number")
)

// calculate evaluates arithmetic expressions. It holds no state, so a single
// instance may be shared across agents and goroutines.
type calculate struct{}

// NewCalculate creates the arithmetic expression tool.
func NewCalculate() ports.ToolExecutor {
	return &calculate{}
}

func (t *calculate) Execute(ctx context.Context, call ports.ToolCall) (*ports.ToolResult, error) {
	raw, ok := call.Arguments["expression"]
	if !ok {
		return toolFailure(call.ID, apperrors.NewToolExecutionError(CalculateToolName, errors.New("missing 'expression' argument"))), nil
	}
	expression, ok := raw.(string)
	if !ok {
		return toolFailure(call.ID, apperrors.NewToolExecutionError(CalculateToolName, fmt.Errorf("'expression' must be a string, got %T", raw))), nil
	}

	value, err := Evaluate(expression)
	if err != nil {
		return toolFailure(call.ID, err), nil
	}

	return &ports.ToolResult{
		CallID:   call.ID,
		Content:  FormatNumber(value),
		Metadata: map[string]any{"value": value},
	}, nil
}

func (t *calculate) Definition() ports.ToolDefinition {
	return ports.ToolDefinition{
		Name:        CalculateToolName,
		Description: "Evaluate a math expression. Supports + - * / ^ % and parentheses, e.g. \"100 * 1.4 * 0.6\".",
		Parameters: ports.ParameterSchema{
			Type: "object",
			Properties: map[string]ports.Property{
				"expression": {
					Type:        "string",
					Description: "Arithmetic expression to evaluate.",
				},
			},
			Required: []string{"expression"},
		},
	}
}

func (t *calculate) Metadata() ports.ToolMetadata {
	return ports.ToolMetadata{
		Name:     CalculateToolName,
		Version:  "1.0.0",
		Category: "math",
		Tags:     []string{"arithmetic", "expression"},
		Pure:     true,
	}
}

// Evaluate parses and evaluates an arithmetic expression. Every failure is a
// *errors.ToolExecutionError carrying the evaluator diagnostic.
func Evaluate(expression string) (float64, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, errEmptyExpression)
	}
	if err := checkCharset(expression); err != nil {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, err)
	}

	program, err := expr.Compile(widenIntegerLiterals(expression),
		expr.Env(map[string]any{}),
		expr.DisableAllBuiltins(),
		expr.Function(moduloFunc, modulo, new(func(float64, float64) float64)),
		expr.Patch(floatArithmetic{}),
		expr.AsFloat64(),
	)
	if err != nil {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, fmt.Errorf("parse %q: %w", expression, err))
	}

	out, err := expr.Run(program, map[string]any{})
	if err != nil {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, fmt.Errorf("evaluate %q: %w", expression, err))
	}

	value, ok := out.(float64)
	if !ok {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, fmt.Errorf("unexpected result type %T", out))
	}
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, apperrors.NewToolExecutionError(CalculateToolName, errNonFinite)
	}
	return value, nil
}

// FormatNumber renders v as the shortest decimal string that round-trips.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// moduloFunc replaces the % operator, which the evaluator only defines for
// integers.
const moduloFunc = "mod"

func modulo(params ...any) (any, error) {
	return math.Mod(params[0].(float64), params[1].(float64)), nil
}

// floatArithmetic rewrites integer literals into floats so every operation runs
// in float64 and cannot wrap around.
type floatArithmetic struct{}

func (floatArithmetic) Visit(node *ast.Node) {
	switch n := (*node).(type) {
	case *ast.IntegerNode:
		ast.Patch(node, &ast.FloatNode{Value: float64(n.Value)})
	case *ast.BinaryNode:
		if n.Operator == "%" {
			ast.Patch(node, &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: moduloFunc},
				Arguments: []ast.Node{n.Left, n.Right},
			})
		}
	}
}

// widenIntegerLiterals marks integer literals outside the int64 range with an
// exponent so the parser reads them as floats.
func widenIntegerLiterals(expression string) string {
	var b strings.Builder
	for i := 0; i < len(expression); {
		c := expression[i]
		if !isDigit(c) && c != '.' {
			b.WriteByte(c)
			i++
			continue
		}
		j := i
		for j < len(expression) && (isDigit(expression[j]) || expression[j] == '.') {
			j++
		}
		if j < len(expression) && (expression[j] == 'e' || expression[j] == 'E') {
			j++
			if j < len(expression) && (expression[j] == '+' || expression[j] == '-') {
				j++
			}
			for j < len(expression) && isDigit(expression[j]) {
				j++
			}
		}
		literal := expression[i:j]
		b.WriteString(literal)
		if !strings.ContainsAny(literal, ".eE") {
			if _, err := strconv.ParseInt(literal, 10, 64); err != nil {
				b.WriteString("e0")
			}
		}
		i = j
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// checkCharset keeps the accepted grammar to numeric literals, operators and
// parentheses so identifiers, strings and member access never reach the
// compiler. An exponent marker is accepted only right after a digit or point.
func checkCharset(expression string) error {
	prev := rune(0)
	for i, r := range expression {
		switch {
		case r >= '0' && r <= '9':
		case (r == 'e' || r == 'E') && (prev == '.' || (prev >= '0' && prev <= '9')):
		case r == '.', r == '(', r == ')':
		case r == '+', r == '-', r == '*', r == '/', r == '^', r == '%':
		case r == ' ', r == '\t', r == '\n', r == '\r':
		default:
			return fmt.Errorf("unexpected character %q at position %d", r, i)
		}
		prev = r
	}
	return nil
}

func toolFailure(callID string, err error) *ports.ToolResult {
	return &ports.ToolResult{
		CallID:  callID,
		Content: err.Error(),
		Error:   err,
	}
}
