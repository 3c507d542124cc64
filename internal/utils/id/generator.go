package id

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// Strategy names the algorithm behind the body of generated identifiers.
type Strategy string

const (
	// StrategyKSUID yields 27 character, lexicographically sortable bodies.
	StrategyKSUID Strategy = "ksuid"
	// StrategyUUIDv7 yields time-ordered RFC 9562 UUIDs.
	StrategyUUIDv7 Strategy = "uuidv7"
)

// Identifier prefixes.
const (
	prefixRun     = "run"
	prefixRequest = "llm"
	prefixCall    = "call"
	prefixLog     = "log"
)

var current atomic.Value

func init() {
	current.Store(StrategyKSUID)
}

// ParseStrategy accepts "ksuid" or "uuidv7", case-insensitively. Empty means ksuid.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyKSUID:
		return StrategyKSUID, nil
	case StrategyUUIDv7:
		return StrategyUUIDv7, nil
	default:
		return "", fmt.Errorf("unknown id strategy %q (want ksuid or uuidv7)", s)
	}
}

// SetStrategy switches the algorithm used by every New*ID function.
func SetStrategy(strategy Strategy) {
	current.Store(strategy)
}

// CurrentStrategy reports the active algorithm.
func CurrentStrategy() Strategy {
	return current.Load().(Strategy)
}

// NewRunID identifies one solve then verify run.
func NewRunID() string { return newIdentifier(prefixRun) }

// NewRequestID identifies one LLM HTTP request.
func NewRequestID() string { return newIdentifier(prefixRequest) }

// NewCallID identifies a tool call that arrived without an id.
func NewCallID() string { return newIdentifier(prefixCall) }

// NewLogID identifies an inbound HTTP request in logs.
func NewLogID() string { return newIdentifier(prefixLog) }

func newIdentifier(prefix string) string {
	return prefix + "-" + body(CurrentStrategy())
}

func body(strategy Strategy) string {
	if strategy == StrategyUUIDv7 {
		if u, err := uuid.NewV7(); err == nil {
			return u.String()
		}
	}
	return ksuid.New().String()
}
