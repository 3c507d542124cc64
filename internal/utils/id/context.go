package id

import "context"

type contextKey int

const (
	runKey contextKey = iota
	agentKey
	logKey
)

// IDs are the identifiers that travel with a run: the run itself, the agent
// currently working on it and the inbound request that started it.
type IDs struct {
	RunID string
	Agent string
	LogID string
}

// WithRunID returns ctx carrying runID. Empty values leave ctx unchanged.
func WithRunID(ctx context.Context, runID string) context.Context {
	return with(ctx, runKey, runID)
}

// WithAgent returns ctx carrying the name of the agent being invoked.
func WithAgent(ctx context.Context, agent string) context.Context {
	return with(ctx, agentKey, agent)
}

// WithLogID returns ctx carrying the request log id.
func WithLogID(ctx context.Context, logID string) context.Context {
	return with(ctx, logKey, logID)
}

func RunIDFromContext(ctx context.Context) string { return lookup(ctx, runKey) }
func AgentFromContext(ctx context.Context) string { return lookup(ctx, agentKey) }
func LogIDFromContext(ctx context.Context) string { return lookup(ctx, logKey) }

// IDsFromContext returns every identifier ctx carries.
func IDsFromContext(ctx context.Context) IDs {
	return IDs{RunID: lookup(ctx, runKey), Agent: lookup(ctx, agentKey), LogID: lookup(ctx, logKey)}
}

func with(ctx context.Context, key contextKey, value string) context.Context {
	if value == "" {
		return ctx
	}
	return context.WithValue(ctx, key, value)
}

func lookup(ctx context.Context, key contextKey) string {
	if ctx == nil {
		return ""
	}
	value, _ := ctx.Value(key).(string)
	return value
}
