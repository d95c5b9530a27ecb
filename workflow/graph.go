package workflow

import (
	"context"
	"fmt"
	"log/slog"
)

// Stage names the nodes of the pipeline graph.
type Stage string

const (
	StageGenerate  Stage = "generate_query"
	StageExecute   Stage = "execute_query"
	StageInterpret Stage = "interpret" // GenerateAnswer and ExplainQuery, concurrently
	StageVisualize Stage = "visualize"
	StageDone      Stage = "done"
	StageFailed    Stage = "failed"
)

// Config holds the pipeline dependencies.
type Config struct {
	LLM     LLM
	Querier Querier
	Schema  Schema
	Logger  *slog.Logger

	// MaxAnswerRows bounds how many result rows are serialized into the
	// answer prompt. 0 uses DefaultMaxAnswerRows.
	MaxAnswerRows int
}

// DefaultMaxAnswerRows caps result serialization into prompts.
const DefaultMaxAnswerRows = 50

// Pipeline sequences the five stages for one turn.
type Pipeline struct {
	llm           LLM
	querier       Querier
	schema        Schema
	log           *slog.Logger
	maxAnswerRows int
}

// New creates a Pipeline, validating its dependencies.
func New(cfg Config) (*Pipeline, error) {
	if cfg.LLM == nil {
		return nil, errMissing("LLM")
	}
	if cfg.Querier == nil {
		return nil, errMissing("querier")
	}
	if cfg.Schema == nil {
		return nil, errMissing("schema")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.MaxAnswerRows <= 0 {
		cfg.MaxAnswerRows = DefaultMaxAnswerRows
	}
	return &Pipeline{
		llm:           cfg.LLM,
		querier:       cfg.Querier,
		schema:        cfg.Schema,
		log:           cfg.Logger,
		maxAnswerRows: cfg.MaxAnswerRows,
	}, nil
}

// ProgressFunc observes stage transitions; used by frontends to show
// "generating / executing / ..." feedback.
type ProgressFunc func(Stage)

// Run executes the pipeline for one question and returns the completed
// turn. A terminal failure is recorded on the turn (Turn.Err), not
// returned: the caller always gets a renderable turn.
func (p *Pipeline) Run(ctx context.Context, question string, history []Exchange) *Turn {
	return p.RunWithProgress(ctx, question, history, nil)
}

// RunWithProgress is Run with a stage observer.
func (p *Pipeline) RunWithProgress(ctx context.Context, question string, history []Exchange, onProgress ProgressFunc) *Turn {
	t := &Turn{Question: question, History: history}

	stage := StageGenerate
	for stage != StageDone && stage != StageFailed {
		if onProgress != nil {
			onProgress(stage)
		}
		err := p.step(ctx, stage, t)
		if err != nil {
			t.Err = err
		}
		stage = next(stage, err)
	}
	if onProgress != nil {
		onProgress(stage)
	}
	return t
}

// step dispatches one stage. Each stage executes at most once per turn.
func (p *Pipeline) step(ctx context.Context, stage Stage, t *Turn) error {
	switch stage {
	case StageGenerate:
		return p.GenerateQuery(ctx, t)
	case StageExecute:
		return p.ExecuteQuery(ctx, t)
	case StageInterpret:
		return p.interpret(ctx, t)
	case StageVisualize:
		return p.Visualize(ctx, t)
	}
	return nil
}

// next is the transition function (stage, outcome) → stage. The only
// branching is into the error-terminal state from generation or
// execution; the visualization skip happens inside the stage, the
// transition itself always fires.
func next(stage Stage, err error) Stage {
	if err != nil {
		return StageFailed
	}
	switch stage {
	case StageGenerate:
		return StageExecute
	case StageExecute:
		return StageInterpret
	case StageInterpret:
		return StageVisualize
	case StageVisualize:
		return StageDone
	}
	return StageDone
}

func errMissing(what string) error {
	return fmt.Errorf("workflow: %s is required", what)
}
