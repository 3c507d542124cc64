package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"solvecheck/internal/agent/ports"
	apperrors "solvecheck/internal/errors"
	"solvecheck/internal/logging"
	"solvecheck/internal/observability"
	"solvecheck/internal/parser"
	"solvecheck/internal/prompts"
	id "solvecheck/internal/utils/id"

	"go.opentelemetry.io/otel/attribute"
)

// Stage names a step of a run. RUN_WORKER, RUN_VERIFIER and DONE are the
// states a run passes through; BUILD_PROMPT marks prompt construction inside
// the verifier state.
type Stage string

const (
	StageRunWorker   Stage = "RUN_WORKER"
	StageBuildPrompt Stage = "BUILD_PROMPT"
	StageRunVerifier Stage = "RUN_VERIFIER"
	StageDone        Stage = "DONE"
)

// Run outcomes reported to the Recorder.
const (
	RunStatusSuccess = "success"
	RunStatusFailed  = "failed"
)

// ErrEmptyQuestion is returned before any agent is invoked.
var ErrEmptyQuestion = errors.New("question must not be empty")

// Recorder receives pipeline measurements. *observability.MetricsCollector satisfies it.
type Recorder interface {
	RecordPipelineRun(ctx context.Context, status string)
	RecordStage(ctx context.Context, stage string, duration time.Duration)
	RecordCoercion(ctx context.Context, outcome string)
	RecordExtraction(ctx context.Context, outcome string)
}

// Hooks observe a run. OnStage fires when the worker is invoked, when the
// verification prompt is built, when the verifier is invoked and when the run
// completes, always in that order.
type Hooks struct {
	OnStage func(stage Stage, at time.Time)
}

// Config wires a Pipeline.
type Config struct {
	Worker   ports.Engine
	Verifier ports.Engine
	Logger   logging.Logger
	Metrics  Recorder
	Tracer   *observability.TracerProvider
	Clock    ports.Clock
	Hooks    Hooks
}

// Timings records how long each state took.
type Timings struct {
	Worker   time.Duration `json:"worker"`
	Verifier time.Duration `json:"verifier"`
	Total    time.Duration `json:"total"`
}

// Result is everything one run produced. VerdictText is the terminal artifact.
type Result struct {
	RunID              string          `json:"run_id"`
	Question           string          `json:"question"`
	WorkerRaw          string          `json:"worker_raw"`
	Coercion           Coercion        `json:"coercion"`
	VerificationPrompt string          `json:"verification_prompt"`
	VerifierRaw        string          `json:"verifier_raw"`
	VerdictText        string          `json:"verdict_text"`
	Extraction         parser.Outcome  `json:"extraction"`
	Verdict            *parser.Verdict `json:"verdict,omitempty"`
	States             []Stage         `json:"states"`
	Timings            Timings         `json:"timings"`
}

// Pipeline runs the solve then verify sequence.
type Pipeline struct {
	worker   ports.Engine
	verifier ports.Engine
	logger   logging.Logger
	metrics  Recorder
	tracer   *observability.TracerProvider
	clock    ports.Clock
	hooks    Hooks
}

// New validates config and builds a Pipeline.
func New(config Config) (*Pipeline, error) {
	if config.Worker == nil {
		return nil, errors.New("pipeline requires a worker engine")
	}
	if config.Verifier == nil {
		return nil, errors.New("pipeline requires a verifier engine")
	}
	logger := config.Logger
	if logging.IsNil(logger) {
		logger = logging.NewComponentLogger("Pipeline")
	}
	tracer := config.Tracer
	if tracer == nil {
		tracer = observability.NoopTracer()
	}
	clock := config.Clock
	if clock == nil {
		clock = ports.SystemClock{}
	}
	return &Pipeline{
		worker:   config.Worker,
		verifier: config.Verifier,
		logger:   logger,
		metrics:  config.Metrics,
		tracer:   tracer,
		clock:    clock,
		hooks:    config.Hooks,
	}, nil
}

// Run answers question with the worker, has the verifier judge that answer
// and normalizes the verdict. Agent failures abort the run with an
// *errors.EngineInvocationError and no partial result.
func (p *Pipeline) Run(ctx context.Context, question string) (result *Result, err error) {
	if strings.TrimSpace(question) == "" {
		return nil, ErrEmptyQuestion
	}

	runID := id.RunIDFromContext(ctx)
	if runID == "" {
		runID = id.NewRunID()
		ctx = id.WithRunID(ctx, runID)
	}
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanPipelineRun)
	logger := logging.ForContext(ctx, p.logger)
	defer func() {
		observability.EndSpan(span, err)
		status := RunStatusSuccess
		if err != nil {
			status = RunStatusFailed
		}
		p.recordRun(ctx, status)
	}()

	started := p.clock.Now()
	result = &Result{RunID: runID, Question: question}
	logger.Info("run started")

	// RUN_WORKER
	result.States = append(result.States, StageRunWorker)
	workerStart := p.fire(StageRunWorker)
	workerRaw, err := p.invoke(ctx, StageRunWorker, p.worker, ports.Task(question))
	if err != nil {
		return nil, err
	}
	result.WorkerRaw = workerRaw
	result.Coercion = CoerceWorkerAnswer(workerRaw)
	p.recordCoercion(ctx, result.Coercion)
	result.Timings.Worker = p.clock.Now().Sub(workerStart)

	// RUN_VERIFIER
	result.States = append(result.States, StageRunVerifier)
	verifierStart := p.fire(StageBuildPrompt)
	prompt, err := prompts.BuildVerificationPrompt(question, result.Coercion.Answer.Value)
	if err != nil {
		return nil, err
	}
	result.VerificationPrompt = prompt

	p.fire(StageRunVerifier)
	verifierRaw, err := p.invoke(ctx, StageRunVerifier, p.verifier, ports.Task(prompt))
	if err != nil {
		return nil, err
	}
	result.VerifierRaw = verifierRaw
	result.Timings.Verifier = p.clock.Now().Sub(verifierStart)

	// DONE
	result.States = append(result.States, StageDone)
	extraction := parser.Normalize(verifierRaw)
	result.VerdictText = extraction.Text
	result.Extraction = extraction.Outcome
	if verdict, ok := parser.ParseVerdict(extraction.Text); ok {
		result.Verdict = &verdict
	}
	if p.metrics != nil {
		p.metrics.RecordExtraction(ctx, string(extraction.Outcome))
		p.metrics.RecordStage(ctx, string(StageRunWorker), result.Timings.Worker)
		p.metrics.RecordStage(ctx, string(StageRunVerifier), result.Timings.Verifier)
	}
	result.Timings.Total = p.fire(StageDone).Sub(started)

	logger.Info("run finished: worker=%s coercion=%s extraction=%s total=%s",
		prompts.FormatValue(result.Coercion.Answer.Value), result.Coercion.Outcome, extraction.Outcome, result.Timings.Total)
	return result, nil
}

// invoke runs one agent inside its own span, wrapping failures so the caller
// learns which stage broke.
func (p *Pipeline) invoke(ctx context.Context, stage Stage, engine ports.Engine, task ports.Task) (output string, err error) {
	ctx, span := p.tracer.StartSpan(ctx, observability.SpanPipelineStage,
		attribute.String(observability.AttrStage, string(stage)),
		attribute.String(observability.AttrAgent, engine.Name()),
	)
	defer func() { observability.EndSpan(span, err) }()

	logger := logging.ForContext(ctx, p.logger)
	logger.Debug("%s: invoking %s", stage, engine.Name())
	output, err = engine.Run(ctx, task)
	if err != nil {
		logger.Error("%s: %s failed: %v", stage, engine.Name(), err)
		return "", apperrors.NewEngineInvocationError(string(stage), engine.Name(), err)
	}
	return output, nil
}

func (p *Pipeline) fire(stage Stage) time.Time {
	now := p.clock.Now()
	if p.hooks.OnStage != nil {
		p.hooks.OnStage(stage, now)
	}
	return now
}

func (p *Pipeline) recordCoercion(ctx context.Context, c Coercion) {
	if c.Defaulted() {
		logging.ForContext(ctx, p.logger).Debug("worker output did not decode, using default answer: %q", c.Raw)
	}
	if p.metrics != nil {
		p.metrics.RecordCoercion(ctx, string(c.Outcome))
	}
}

func (p *Pipeline) recordRun(ctx context.Context, status string) {
	if p.metrics != nil {
		p.metrics.RecordPipelineRun(ctx, status)
	}
}
